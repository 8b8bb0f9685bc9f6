package dao

import (
	"context"

	"github.com/hpungsan/mapjournal/internal/db"
	"github.com/hpungsan/mapjournal/internal/journal"
)

// Orphans are rows whose parent no longer exists.
type Orphans struct {
	Points []*journal.Point     `json:"points"`
	Media  []*journal.MediaItem `json:"media"`
}

// FindOrphans lists points whose trip is gone and media whose point is gone.
func (d *DAO) FindOrphans(ctx context.Context) (*Orphans, error) {
	conn, release, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	points, err := queryAll(ctx, conn, db.PointTable, db.PointColumns, scanPoint, db.SelectOrphanPoints)
	if err != nil {
		return nil, err
	}
	media, err := queryAll(ctx, conn, db.MediaTable, db.MediaColumns, scanMedia, db.SelectOrphanMedia)
	if err != nil {
		return nil, err
	}
	return &Orphans{Points: points, Media: media}, nil
}

// PurgeOrphans deletes orphaned points, then every media row left without a
// point (including media of the points just removed), in one transaction.
func (d *DAO) PurgeOrphans(ctx context.Context) (*CascadeResult, error) {
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
	if res.Points, err = exec(ctx, tx, "purge points", db.DeleteOrphanPoints); err != nil {
		return nil, err
	}
	if res.Media, err = exec(ctx, tx, "purge media", db.DeleteOrphanMedia); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, storageErr(ctx, "commit", err)
	}

	d.log.Debug().Int64("points", res.Points).Int64("media", res.Media).Msg("orphans purged")
	return res, nil
}
