package ops

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/hpungsan/mapjournal/internal/config"
	"github.com/hpungsan/mapjournal/internal/dao"
	"github.com/hpungsan/mapjournal/internal/errors"
	"github.com/hpungsan/mapjournal/internal/journal"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	Path   string // optional, default: <base>/exports/<trip-N|all>-<timestamp>.jsonl
	TripID *int64 // optional, export only this trip
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	Path       string `json:"path"`
	Trips      int    `json:"trips"`
	Points     int    `json:"points"`
	Media      int    `json:"media"`
	ExportedAt int64  `json:"exported_at"`

	// Orphaned rows have no trip to be written under and are left out of
	// an all-trips export. Reported so the omission is not silent.
	SkippedPoints int64  `json:"skipped_points,omitempty"`
	SkippedMedia  int64  `json:"skipped_media,omitempty"`
	Note          string `json:"note,omitempty"`
}

// Export writes trips, their points and the points' media to a JSONL file.
// Parents are always written before their children.
func Export(ctx context.Context, d *dao.DAO, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	now := time.Now()

	var trips []*journal.Trip
	if input.TripID != nil {
		t, err := d.GetTrip(ctx, *input.TripID)
		if err != nil {
			return nil, err
		}
		trips = []*journal.Trip{t}
	} else {
		var err error
		if trips, err = d.GetAllTrips(ctx); err != nil {
			return nil, err
		}
	}

	exportPath := input.Path
	if exportPath == "" {
		exportPath = defaultExportPath(d.BaseDir(), input.TripID, now)
	}
	if err := ValidatePath(exportPath, PathCheckWrite, cfg, d.BaseDir()); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	// Temp file plus rename keeps any existing file intact on failure.
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := exportPath + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}
	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	w := bufio.NewWriter(file)
	enc := json.NewEncoder(w)
	out := &ExportOutput{Path: exportPath, ExportedAt: now.Unix()}
	if input.TripID == nil {
		points, media, err := countOrphans(ctx, d)
		if err != nil {
			return nil, err
		}
		if points > 0 || media > 0 {
			out.SkippedPoints, out.SkippedMedia = points, media
			out.Note = fmt.Sprintf("Skipped %s and %s; run purge-orphans to remove them",
				plural(points, "orphaned point"), plural(media, "orphaned media item"))
		}
	}

	if err := enc.Encode(journal.ExportRecord{
		MapJournalExport: true,
		SchemaVersion:    ExportSchemaVersion,
		ExportedAt:       out.ExportedAt,
	}); err != nil {
		return nil, errors.NewInternal(err)
	}

	for _, t := range trips {
		if ctx.Err() != nil {
			return nil, errors.NewCancelled("export")
		}
		if err := enc.Encode(journal.ExportRecord{Kind: journal.KindTrip, Trip: t}); err != nil {
			return nil, errors.NewInternal(err)
		}
		out.Trips++

		points, err := d.GetPointsByTrip(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range points {
			if err := enc.Encode(journal.ExportRecord{Kind: journal.KindPoint, Point: p}); err != nil {
				return nil, errors.NewInternal(err)
			}
			out.Points++

			media, err := d.GetMediaByPoint(ctx, p.ID)
			if err != nil {
				return nil, err
			}
			for _, m := range media {
				if err := enc.Encode(journal.ExportRecord{Kind: journal.KindMedia, Media: m}); err != nil {
					return nil, errors.NewInternal(err)
				}
				out.Media++
			}
		}
	}

	if err := w.Flush(); err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return nil, errors.NewInternal(err)
	}
	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	// os.Rename would follow a symlinked destination.
	if info, err := os.Lstat(exportPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return nil, errors.NewInvalidRequest("export path must not be a symlink")
	}
	if err := os.Rename(tempPath, exportPath); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(exportPath); statErr == nil {
				return nil, errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return out, nil
}

// defaultExportPath builds <base>/exports/<trip-N|all>-<timestamp>.jsonl.
func defaultExportPath(baseDir string, tripID *int64, now time.Time) string {
	name := "all"
	if tripID != nil {
		name = fmt.Sprintf("trip-%d", *tripID)
	}
	return filepath.Join(ExportsDir(baseDir), fmt.Sprintf("%s-%s.jsonl", name, now.Format("2006-01-02T150405")))
}
