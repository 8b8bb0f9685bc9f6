package ops

import (
	"context"

	"github.com/hpungsan/mapjournal/internal/dao"
	"github.com/hpungsan/mapjournal/internal/journal"
)

// LoadTrip returns a trip with its points and every point's media loaded.
func LoadTrip(ctx context.Context, d *dao.DAO, id int64) (*journal.Trip, error) {
	t, err := d.GetTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	points, err := d.GetPointsByTrip(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, p := range points {
		media, err := d.GetMediaByPoint(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.SetMedia(media)
	}
	t.SetPoints(points)
	return t, nil
}

// LoadPoint returns a point with its media loaded.
func LoadPoint(ctx context.Context, d *dao.DAO, id int64) (*journal.Point, error) {
	p, err := d.GetPoint(ctx, id)
	if err != nil {
		return nil, err
	}
	media, err := d.GetMediaByPoint(ctx, id)
	if err != nil {
		return nil, err
	}
	p.SetMedia(media)
	return p, nil
}
