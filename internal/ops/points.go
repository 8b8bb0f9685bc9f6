package ops

import (
	"context"

	"github.com/hpungsan/mapjournal/internal/dao"
	"github.com/hpungsan/mapjournal/internal/journal"
)

// CreatePointInput contains parameters for the CreatePoint operation.
type CreatePointInput struct {
	TripID    int64
	Title     *string
	Latitude  float64
	Longitude float64
	Altitude  float64
	Time      int32
	Address   *string
	Journal   *string
}

// CreatePoint stores a new point on an existing trip.
func CreatePoint(ctx context.Context, d *dao.DAO, input CreatePointInput) (*journal.Point, error) {
	if _, err := d.GetTrip(ctx, input.TripID); err != nil {
		return nil, err
	}

	p, err := journal.NewPoint(input.TripID, input.Latitude, input.Longitude, input.Altitude, input.Time)
	if err != nil {
		return nil, err
	}
	applyText(&p.Title, input.Title)
	applyText(&p.Address, input.Address)
	applyText(&p.Journal, input.Journal)

	if err := d.CreatePoint(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdatePointInput contains parameters for the UpdatePoint operation.
// Nil fields are left unchanged; empty strings clear text fields.
type UpdatePointInput struct {
	ID        int64
	TripID    *int64
	Title     *string
	Latitude  *float64
	Longitude *float64
	Altitude  *float64
	Time      *int32
	Address   *string
	Journal   *string
}

// UpdatePoint changes the named fields of an existing point. Coordinates and
// time are validated before anything is written.
func UpdatePoint(ctx context.Context, d *dao.DAO, input UpdatePointInput) (*journal.Point, error) {
	p, err := d.GetPoint(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.TripID != nil && *input.TripID != p.TripID {
		if _, err := d.GetTrip(ctx, *input.TripID); err != nil {
			return nil, err
		}
		p.TripID = *input.TripID
	}
	if input.Latitude != nil {
		if err := p.SetLatitude(*input.Latitude); err != nil {
			return nil, err
		}
	}
	if input.Longitude != nil {
		if err := p.SetLongitude(*input.Longitude); err != nil {
			return nil, err
		}
	}
	if input.Time != nil {
		if err := p.SetTime(*input.Time); err != nil {
			return nil, err
		}
	}
	if input.Altitude != nil {
		p.Altitude = *input.Altitude
	}
	applyText(&p.Title, input.Title)
	applyText(&p.Address, input.Address)
	applyText(&p.Journal, input.Journal)

	if err := d.UpdatePoint(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePoint removes a point and its media. Without Cascade the point's
// media are loaded first and removed through the loaded list; with Cascade
// every media row referencing the point is removed in one statement.
func DeletePoint(ctx context.Context, d *dao.DAO, input DeleteInput) (*DeleteOutput, error) {
	p, err := d.GetPoint(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Cascade {
		res, err := d.DeletePointCascade(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		return &DeleteOutput{
			Deleted:       res.Points > 0,
			ID:            p.ID,
			PointsDeleted: res.Points,
			MediaDeleted:  res.Media,
		}, nil
	}

	media, err := d.GetMediaByPoint(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.SetMedia(media)
	if err := d.DeletePoint(ctx, p); err != nil {
		return nil, err
	}
	return &DeleteOutput{
		Deleted:       true,
		ID:            p.ID,
		PointsDeleted: 1,
		MediaDeleted:  int64(len(media)),
	}, nil
}
