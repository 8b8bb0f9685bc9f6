package journal

import (
	"strings"

	"github.com/hpungsan/mapjournal/internal/errors"
)

// MediaItem references a photo or video on local storage. Deleting the item
// removes only this metadata, never the file.
type MediaItem struct {
	// ID is assigned by storage on insert; UnsavedID until then
	ID int64 `json:"id"`

	// PointID is the point this item is attached to
	PointID int64 `json:"point_id"`

	// FilePath is the location of the media file (required)
	FilePath string `json:"path"`

	// Caption is the user's caption (nullable)
	Caption *string `json:"caption"`
}

// NewMediaItem creates an unsaved media item. The file path is required.
func NewMediaItem(pointID int64, filePath string, caption *string) (*MediaItem, error) {
	m := &MediaItem{
		ID:       UnsavedID,
		PointID:  pointID,
		FilePath: filePath,
		Caption:  caption,
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the fields storage requires.
func (m *MediaItem) Validate() error {
	if strings.TrimSpace(m.FilePath) == "" {
		return errors.NewValidation("path", "media file path is required")
	}
	return nil
}
