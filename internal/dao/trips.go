package dao

import (
	"context"
	"database/sql"

	"github.com/hpungsan/mapjournal/internal/db"
	"github.com/hpungsan/mapjournal/internal/errors"
	"github.com/hpungsan/mapjournal/internal/journal"
)

// CreateTrip inserts t and sets t.ID to the assigned identity.
func (d *DAO) CreateTrip(ctx context.Context, t *journal.Trip) error {
	conn, release, err := d.acquire()
	if err != nil {
		return err
	}
	defer release()
	return createTrip(ctx, conn, t)
}

// GetTrip returns the trip with the given id. Its points are not loaded.
func (d *DAO) GetTrip(ctx context.Context, id int64) (*journal.Trip, error) {
	conn, release, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return queryOne(ctx, conn, db.TripTable, "trip", db.TripColumns, scanTrip, db.SelectTrip, id)
}

// GetAllTrips returns every trip ordered by id, points not loaded.
func (d *DAO) GetAllTrips(ctx context.Context) ([]*journal.Trip, error) {
	conn, release, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return queryAll(ctx, conn, db.TripTable, db.TripColumns, scanTrip, db.SelectAllTrips)
}

// UpdateTrip overwrites the stored name and description of t.
// Updating a trip that does not exist changes nothing and is not an error.
func (d *DAO) UpdateTrip(ctx context.Context, t *journal.Trip) error {
	if t == nil {
		return errors.NewInvalidRequest("trip is required")
	}
	conn, release, err := d.acquire()
	if err != nil {
		return err
	}
	defer release()

	n, err := exec(ctx, conn, "update trip", db.UpdateTrip,
		db.ToNullString(t.Name), db.ToNullString(t.Description), t.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		d.log.Debug().Int64("trip_id", t.ID).Msg("update matched no trip")
	}
	return nil
}

// DeleteTrip removes the trip row. Points that reference it are left in place;
// use DeleteTripCascade to remove them too.
func (d *DAO) DeleteTrip(ctx context.Context, t *journal.Trip) error {
	if t == nil {
		return errors.NewInvalidRequest("trip is required")
	}
	conn, release, err := d.acquire()
	if err != nil {
		return err
	}
	defer release()

	_, err = exec(ctx, conn, "delete trip", db.DeleteTrip, t.ID)
	return err
}

// CascadeResult counts the rows removed by a cascading delete.
type CascadeResult struct {
	Trips  int64 `json:"trips"`
	Points int64 `json:"points"`
	Media  int64 `json:"media"`
}

// DeleteTripCascade removes a trip together with all of its points and their
// media rows in one transaction. Storage is the source of truth, not any
// in-memory point list.
func (d *DAO) DeleteTripCascade(ctx context.Context, tripID int64) (*CascadeResult, error) {
	conn, release, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageErr(ctx, "begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	points, err := queryAll(ctx, tx, db.PointTable, db.PointColumns, scanPoint, db.SelectPointsByTrip, tripID)
	if err != nil {
		return nil, err
	}

	res := &CascadeResult{}
	for _, p := range points {
		n, err := exec(ctx, tx, "delete media", db.DeleteMediaByPoint, p.ID)
		if err != nil {
			return nil, err
		}
		res.Media += n
	}
	if res.Points, err = exec(ctx, tx, "delete points", db.DeletePointsByTrip, tripID); err != nil {
		return nil, err
	}
	if res.Trips, err = exec(ctx, tx, "delete trip", db.DeleteTrip, tripID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr(ctx, "commit", err)
	}

	d.log.Debug().
		Int64("trip_id", tripID).
		Int64("points", res.Points).
		Int64("media", res.Media).
		Msg("trip deleted with cascade")
	return res, nil
}

// CreateTrip inserts t within the transaction.
func (tx *Tx) CreateTrip(ctx context.Context, t *journal.Trip) error {
	return createTrip(ctx, tx.tx, t)
}

func createTrip(ctx context.Context, q querier, t *journal.Trip) error {
	if t == nil {
		return errors.NewInvalidRequest("trip is required")
	}
	id, err := insert(ctx, q, "insert trip", db.InsertTrip,
		db.ToNullString(t.Name), db.ToNullString(t.Description))
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func scanTrip(s scanner) (*journal.Trip, error) {
	var (
		id   int64
		name sql.NullString
		desc sql.NullString
	)
	if err := s.Scan(&id, &name, &desc); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &journal.Trip{
		ID:          id,
		Name:        db.FromNullString(name),
		Description: db.FromNullString(desc),
	}, nil
}
