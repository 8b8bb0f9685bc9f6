package ops

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/mapjournal/internal/config"
	"github.com/hpungsan/mapjournal/internal/dao"
	"github.com/hpungsan/mapjournal/internal/errors"
	"github.com/hpungsan/mapjournal/internal/journal"
)

// AttachMediaInput contains parameters for the AttachMedia operation.
type AttachMediaInput struct {
	PointID int64
	Source  string // file to copy into the media directory
	Caption *string
}

// AttachMedia copies Source into the media directory under a fresh ULID name
// and records it on the point. The source file is left in place.
func AttachMedia(ctx context.Context, d *dao.DAO, cfg *config.Config, input AttachMediaInput) (*journal.MediaItem, error) {
	if strings.TrimSpace(input.Source) == "" {
		return nil, errors.NewInvalidRequest("source is required")
	}
	if _, err := d.GetPoint(ctx, input.PointID); err != nil {
		return nil, err
	}

	info, err := os.Stat(input.Source)
	if os.IsNotExist(err) {
		return nil, errors.NewFileNotFound(input.Source)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("source is not a regular file: %s", input.Source))
	}

	mediaDir := cfg.MediaPath(d.BaseDir())
	if err := os.MkdirAll(mediaDir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create media directory: %w", err))
	}
	dest := filepath.Join(mediaDir, newMediaName(input.Source))
	if err := copyFile(input.Source, dest); err != nil {
		return nil, err
	}

	m, err := journal.NewMediaItem(input.PointID, dest, nil)
	if err != nil {
		os.Remove(dest)
		return nil, err
	}
	applyText(&m.Caption, input.Caption)
	if err := d.CreateMedia(ctx, m); err != nil {
		os.Remove(dest)
		return nil, err
	}
	return m, nil
}

// newMediaName returns a ULID file name keeping the source's extension.
func newMediaName(source string) string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
	return id + strings.ToLower(filepath.Ext(source))
}

// copyFile copies src to a new file at dst. dst must not exist.
func copyFile(src, dst string) error {
	in, err := openFileNoFollowRead(src)
	if err != nil {
		if errors.Is(err, errors.ErrFileNotFound) || errors.Is(err, errors.ErrInvalidRequest) {
			return err
		}
		return errors.NewInternal(fmt.Errorf("failed to open media source: %w", err))
	}
	defer in.Close()

	out, err := openFileNoFollow(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create media file: %w", err))
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return errors.NewInternal(fmt.Errorf("failed to copy media: %w", err))
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return errors.NewInternal(fmt.Errorf("failed to close media file: %w", err))
	}
	return nil
}
