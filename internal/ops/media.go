package ops

import (
	"context"

	"github.com/hpungsan/mapjournal/internal/dao"
	"github.com/hpungsan/mapjournal/internal/journal"
)

// CreateMediaInput contains parameters for the CreateMedia operation.
type CreateMediaInput struct {
	PointID int64
	Path    string // required; recorded as given, the file is not checked
	Caption *string
}

// CreateMedia records a media file reference on an existing point.
func CreateMedia(ctx context.Context, d *dao.DAO, input CreateMediaInput) (*journal.MediaItem, error) {
	if _, err := d.GetPoint(ctx, input.PointID); err != nil {
		return nil, err
	}
	m, err := journal.NewMediaItem(input.PointID, input.Path, nil)
	if err != nil {
		return nil, err
	}
	applyText(&m.Caption, input.Caption)
	if err := d.CreateMedia(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// UpdateMediaInput contains parameters for the UpdateMedia operation.
type UpdateMediaInput struct {
	ID      int64
	PointID *int64
	Path    *string
	Caption *string
}

// UpdateMedia changes the named fields of an existing media item.
func UpdateMedia(ctx context.Context, d *dao.DAO, input UpdateMediaInput) (*journal.MediaItem, error) {
	m, err := d.GetMedia(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if input.PointID != nil && *input.PointID != m.PointID {
		if _, err := d.GetPoint(ctx, *input.PointID); err != nil {
			return nil, err
		}
		m.PointID = *input.PointID
	}
	if input.Path != nil {
		m.FilePath = *input.Path
	}
	applyText(&m.Caption, input.Caption)

	if err := d.UpdateMedia(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// DeleteMedia removes a media item's metadata. The file is left on disk.
func DeleteMedia(ctx context.Context, d *dao.DAO, id int64) (*DeleteOutput, error) {
	m, err := d.GetMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := d.DeleteMedia(ctx, m); err != nil {
		return nil, err
	}
	return &DeleteOutput{Deleted: true, ID: m.ID, MediaDeleted: 1}, nil
}
