package ops

import (
	"context"
	"fmt"

	"github.com/hpungsan/mapjournal/internal/dao"
)

// PurgeInput contains parameters for the PurgeOrphans operation.
type PurgeInput struct {
	DryRun bool // count orphans without deleting them
}

// PurgeOutput contains the result of the PurgeOrphans operation.
type PurgeOutput struct {
	Points  int64  `json:"points"`
	Media   int64  `json:"media"`
	DryRun  bool   `json:"dry_run"`
	Message string `json:"message"`
}

// PurgeOrphans removes points whose trip is gone and media whose point is gone.
func PurgeOrphans(ctx context.Context, d *dao.DAO, input PurgeInput) (*PurgeOutput, error) {
	if input.DryRun {
		points, media, err := countOrphans(ctx, d)
		if err != nil {
			return nil, err
		}
		return &PurgeOutput{
			Points:  points,
			Media:   media,
			DryRun:  true,
			Message: formatPurgeMessage(points, media, true),
		}, nil
	}

	res, err := d.PurgeOrphans(ctx)
	if err != nil {
		return nil, err
	}
	return &PurgeOutput{
		Points:  res.Points,
		Media:   res.Media,
		Message: formatPurgeMessage(res.Points, res.Media, false),
	}, nil
}

// countOrphans counts what PurgeOrphans would delete: orphaned points, plus
// orphaned media and the media of orphaned points.
func countOrphans(ctx context.Context, d *dao.DAO) (points, media int64, err error) {
	o, err := d.FindOrphans(ctx)
	if err != nil {
		return 0, 0, err
	}
	points, media = int64(len(o.Points)), int64(len(o.Media))
	for _, p := range o.Points {
		items, err := d.GetMediaByPoint(ctx, p.ID)
		if err != nil {
			return 0, 0, err
		}
		media += int64(len(items))
	}
	return points, media, nil
}

func formatPurgeMessage(points, media int64, dryRun bool) string {
	if points == 0 && media == 0 {
		return "No orphaned rows"
	}
	verb := "Deleted"
	if dryRun {
		verb = "Would delete"
	}
	return fmt.Sprintf("%s %s and %s", verb, plural(points, "orphaned point"), plural(media, "orphaned media item"))
}
