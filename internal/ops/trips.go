package ops

import (
	"context"

	"github.com/hpungsan/mapjournal/internal/dao"
	"github.com/hpungsan/mapjournal/internal/journal"
)

// CreateTripInput contains parameters for the CreateTrip operation.
type CreateTripInput struct {
	Name        *string
	Description *string
}

// CreateTrip stores a new trip.
func CreateTrip(ctx context.Context, d *dao.DAO, input CreateTripInput) (*journal.Trip, error) {
	t := journal.NewTrip(nil, nil)
	applyText(&t.Name, input.Name)
	applyText(&t.Description, input.Description)
	if err := d.CreateTrip(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTripInput contains parameters for the UpdateTrip operation.
// Nil fields are left unchanged; empty strings clear the field.
type UpdateTripInput struct {
	ID          int64
	Name        *string
	Description *string
}

// UpdateTrip changes the named fields of an existing trip.
func UpdateTrip(ctx context.Context, d *dao.DAO, input UpdateTripInput) (*journal.Trip, error) {
	t, err := d.GetTrip(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	applyText(&t.Name, input.Name)
	applyText(&t.Description, input.Description)
	if err := d.UpdateTrip(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTrip removes a trip. Without Cascade its points stay in storage.
func DeleteTrip(ctx context.Context, d *dao.DAO, input DeleteInput) (*DeleteOutput, error) {
	t, err := d.GetTrip(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if !input.Cascade {
		if err := d.DeleteTrip(ctx, t); err != nil {
			return nil, err
		}
		return &DeleteOutput{Deleted: true, ID: t.ID}, nil
	}

	res, err := d.DeleteTripCascade(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	return &DeleteOutput{
		Deleted:       res.Trips > 0,
		ID:            t.ID,
		PointsDeleted: res.Points,
		MediaDeleted:  res.Media,
	}, nil
}
