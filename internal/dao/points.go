package dao

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/hpungsan/mapjournal/internal/db"
	"github.com/hpungsan/mapjournal/internal/errors"
	"github.com/hpungsan/mapjournal/internal/journal"
)

// CreatePoint inserts p and sets p.ID to the assigned identity.
// The point's media list is not written.
func (d *DAO) CreatePoint(ctx context.Context, p *journal.Point) error {
	conn, release, err := d.acquire()
	if err != nil {
		return err
	}
	defer release()
	return createPoint(ctx, conn, p)
}

// GetPoint returns the point with the given id. Its media are not loaded.
func (d *DAO) GetPoint(ctx context.Context, id int64) (*journal.Point, error) {
	conn, release, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return queryOne(ctx, conn, db.PointTable, "point", db.PointColumns, scanPoint, db.SelectPoint, id)
}

// GetPointsByTrip returns the points of a trip ordered by time, then id.
func (d *DAO) GetPointsByTrip(ctx context.Context, tripID int64) ([]*journal.Point, error) {
	conn, release, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return queryAll(ctx, conn, db.PointTable, db.PointColumns, scanPoint, db.SelectPointsByTrip, tripID)
}

// UpdatePoint overwrites every stored field of p. A missing row is not an error.
func (d *DAO) UpdatePoint(ctx context.Context, p *journal.Point) error {
	if p == nil {
		return errors.NewInvalidRequest("point is required")
	}
	conn, release, err := d.acquire()
	if err != nil {
		return err
	}
	defer release()

	args := append(pointArgs(p), p.ID)
	n, err := exec(ctx, conn, "update point", db.UpdatePoint, args...)
	if err != nil {
		return err
	}
	if n == 0 {
		d.log.Debug().Int64("point_id", p.ID).Msg("update matched no point")
	}
	return nil
}

// DeletePoint removes the point row and every media item in p's loaded media
// list. Media rows that were never loaded onto p stay in storage; use
// DeletePointCascade to remove them by point id.
func (d *DAO) DeletePoint(ctx context.Context, p *journal.Point) error {
	if p == nil {
		return errors.NewInvalidRequest("point is required")
	}
	conn, release, err := d.acquire()
	if err != nil {
		return err
	}
	defer release()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(ctx, "begin transaction", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := exec(ctx, tx, "delete point", db.DeletePoint, p.ID); err != nil {
		return err
	}
	for _, m := range p.Media() {
		if _, err := exec(ctx, tx, "delete media", db.DeleteMedia, m.ID); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return storageErr(ctx, "commit", err)
	}
	return nil
}

// DeletePointCascade removes a point and all media rows that reference it,
// whether or not they were loaded.
func (d *DAO) DeletePointCascade(ctx context.Context, pointID int64) (*CascadeResult, error) {
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

	res := &CascadeResult{}
	if res.Media, err = exec(ctx, tx, "delete media", db.DeleteMediaByPoint, pointID); err != nil {
		return nil, err
	}
	if res.Points, err = exec(ctx, tx, "delete point", db.DeletePoint, pointID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr(ctx, "commit", err)
	}

	d.log.Debug().Int64("point_id", pointID).Int64("media", res.Media).Msg("point deleted with cascade")
	return res, nil
}

// CreatePoint inserts p within the transaction.
func (tx *Tx) CreatePoint(ctx context.Context, p *journal.Point) error {
	return createPoint(ctx, tx.tx, p)
}

func createPoint(ctx context.Context, q querier, p *journal.Point) error {
	if p == nil {
		return errors.NewInvalidRequest("point is required")
	}
	id, err := insert(ctx, q, "insert point", db.InsertPoint, pointArgs(p)...)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

// pointArgs lists p's values in db.PointColumns[1:] order.
func pointArgs(p *journal.Point) []any {
	return []any{
		db.ToNullString(p.Title),
		p.TripID,
		p.Latitude(),
		p.Longitude(),
		p.Altitude,
		p.Time(),
		db.ToNullString(p.Address),
		db.ToNullString(p.Journal),
	}
}

func scanPoint(s scanner) (*journal.Point, error) {
	var (
		id                    int64
		title, address, entry sql.NullString
		tripID, t             sql.NullInt64
		lat, lon, alt         sql.NullFloat64
	)
	if err := s.Scan(&id, &title, &tripID, &lat, &lon, &alt, &t, &address, &entry); err != nil {
		return nil, errors.NewInternal(err)
	}
	if t.Int64 > math.MaxInt32 || t.Int64 < math.MinInt32 {
		return nil, errors.NewValidation("time", fmt.Sprintf("stored value out of range for point %d: %d", id, t.Int64))
	}

	p, err := journal.NewPoint(tripID.Int64, lat.Float64, lon.Float64, alt.Float64, int32(t.Int64))
	if err != nil {
		return nil, err
	}
	p.ID = id
	p.Title = db.FromNullString(title)
	p.Address = db.FromNullString(address)
	p.Journal = db.FromNullString(entry)
	return p, nil
}
