package dao

import (
	"context"
	"database/sql"

	"github.com/hpungsan/mapjournal/internal/db"
	"github.com/hpungsan/mapjournal/internal/errors"
	"github.com/hpungsan/mapjournal/internal/journal"
)

// CreateMedia inserts m and sets m.ID to the assigned identity.
func (d *DAO) CreateMedia(ctx context.Context, m *journal.MediaItem) error {
	conn, release, err := d.acquire()
	if err != nil {
		return err
	}
	defer release()
	return createMedia(ctx, conn, m)
}

// GetMedia returns the media item with the given id.
func (d *DAO) GetMedia(ctx context.Context, id int64) (*journal.MediaItem, error) {
	conn, release, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return queryOne(ctx, conn, db.MediaTable, "media", db.MediaColumns, scanMedia, db.SelectMedia, id)
}

// GetMediaByPoint returns every media item stored for pointID, ordered by id.
func (d *DAO) GetMediaByPoint(ctx context.Context, pointID int64) ([]*journal.MediaItem, error) {
	conn, release, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer release()
	return queryAll(ctx, conn, db.MediaTable, db.MediaColumns, scanMedia, db.SelectMediaByPoint, pointID)
}

// UpdateMedia overwrites the stored point, caption and path of m.
func (d *DAO) UpdateMedia(ctx context.Context, m *journal.MediaItem) error {
	if m == nil {
		return errors.NewInvalidRequest("media item is required")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	conn, release, err := d.acquire()
	if err != nil {
		return err
	}
	defer release()

	n, err := exec(ctx, conn, "update media", db.UpdateMedia, m.PointID, db.ToNullString(m.Caption), m.FilePath, m.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		d.log.Debug().Int64("media_id", m.ID).Msg("update matched no media item")
	}
	return nil
}

// DeleteMedia removes the metadata row. The file at m.FilePath is untouched.
func (d *DAO) DeleteMedia(ctx context.Context, m *journal.MediaItem) error {
	if m == nil {
		return errors.NewInvalidRequest("media item is required")
	}
	conn, release, err := d.acquire()
	if err != nil {
		return err
	}
	defer release()

	_, err = exec(ctx, conn, "delete media", db.DeleteMedia, m.ID)
	return err
}

// CreateMedia inserts m within the transaction.
func (tx *Tx) CreateMedia(ctx context.Context, m *journal.MediaItem) error {
	return createMedia(ctx, tx.tx, m)
}

func createMedia(ctx context.Context, q querier, m *journal.MediaItem) error {
	if m == nil {
		return errors.NewInvalidRequest("media item is required")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	id, err := insert(ctx, q, "insert media", db.InsertMedia, m.PointID, db.ToNullString(m.Caption), m.FilePath)
	if err != nil {
		return err
	}
	m.ID = id
	return nil
}

func scanMedia(s scanner) (*journal.MediaItem, error) {
	var (
		id      int64
		pointID sql.NullInt64
		caption sql.NullString
		path    sql.NullString
	)
	if err := s.Scan(&id, &pointID, &caption, &path); err != nil {
		return nil, errors.NewInternal(err)
	}
	return &journal.MediaItem{
		ID:       id,
		PointID:  pointID.Int64,
		FilePath: path.String,
		Caption:  db.FromNullString(caption),
	}, nil
}
