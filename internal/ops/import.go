package ops

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hpungsan/mapjournal/internal/config"
	"github.com/hpungsan/mapjournal/internal/dao"
	"github.com/hpungsan/mapjournal/internal/errors"
	"github.com/hpungsan/mapjournal/internal/journal"
)

// maxImportLine bounds one JSONL record; journal text can be long.
const maxImportLine = 16 * 1024 * 1024

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required
}

// ImportOutput contains the result of the Import operation. When Errors is
// non-empty nothing was written.
type ImportOutput struct {
	Trips  int           `json:"trips"`
	Points int           `json:"points"`
	Media  int           `json:"media"`
	Errors []ImportError `json:"errors"`
}

// ImportError describes one rejected line of an import file.
type ImportError struct {
	Line    int    `json:"line"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type importLine struct {
	num    int
	record journal.ExportRecord
}

// Import recreates the trips, points and media of an export file. Records get
// new identities; references between them are remapped. The whole file is
// written in one transaction, and any bad line aborts the import.
func Import(ctx context.Context, d *dao.DAO, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if err := ValidatePath(input.Path, PathCheckRead, cfg, d.BaseDir()); err != nil {
		return nil, err
	}
	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if errors.Is(err, errors.ErrFileNotFound) || errors.Is(err, errors.ErrInvalidRequest) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	lines, problems := parseImportFile(ctx, file)
	if ctx.Err() != nil {
		return nil, errors.NewCancelled("import")
	}
	problems = append(problems, checkReferences(lines)...)
	if len(problems) > 0 {
		return &ImportOutput{Errors: problems}, nil
	}

	out := &ImportOutput{Errors: []ImportError{}}
	err = d.InTx(ctx, func(tx *dao.Tx) error {
		trips := map[int64]int64{}
		points := map[int64]int64{}
		for _, l := range lines {
			if ctx.Err() != nil {
				return errors.NewCancelled("import")
			}
			switch l.record.Kind {
			case journal.KindTrip:
				t := l.record.Trip
				oldID := t.ID
				t.ID = journal.UnsavedID
				t.SetPoints(nil)
				if err := tx.CreateTrip(ctx, t); err != nil {
					return err
				}
				trips[oldID] = t.ID
				out.Trips++
			case journal.KindPoint:
				p := l.record.Point
				oldID := p.ID
				p.ID = journal.UnsavedID
				p.TripID = trips[p.TripID]
				p.SetMedia(nil)
				if err := tx.CreatePoint(ctx, p); err != nil {
					return err
				}
				points[oldID] = p.ID
				out.Points++
			case journal.KindMedia:
				m := l.record.Media
				m.ID = journal.UnsavedID
				m.PointID = points[m.PointID]
				if err := tx.CreateMedia(ctx, m); err != nil {
					return err
				}
				out.Media++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// parseImportFile decodes every line. Blank lines and the header are skipped.
func parseImportFile(ctx context.Context, r io.Reader) ([]importLine, []ImportError) {
	var lines []importLine
	var problems []ImportError

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxImportLine)
	num := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, nil
		}
		num++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var rec journal.ExportRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			code := "PARSE_ERROR"
			if errors.Is(err, errors.ErrValidation) {
				code = string(errors.ErrValidation)
			}
			problems = append(problems, ImportError{Line: num, Code: code, Message: err.Error()})
			continue
		}
		if rec.MapJournalExport {
			if rec.SchemaVersion != ExportSchemaVersion {
				problems = append(problems, ImportError{
					Line:    num,
					Code:    "UNSUPPORTED_VERSION",
					Message: fmt.Sprintf("export schema version %q is not supported (want %q)", rec.SchemaVersion, ExportSchemaVersion),
				})
			}
			continue
		}
		if msg := recordProblem(rec); msg != "" {
			problems = append(problems, ImportError{Line: num, Code: "INVALID_RECORD", Message: msg})
			continue
		}
		lines = append(lines, importLine{num: num, record: rec})
	}
	if err := scanner.Err(); err != nil {
		problems = append(problems, ImportError{
			Line:    num + 1,
			Code:    "READ_ERROR",
			Message: fmt.Sprintf("failed to read file: %v", err),
		})
	}
	return lines, problems
}

// recordProblem returns why rec cannot be imported, or "" if it can.
func recordProblem(rec journal.ExportRecord) string {
	switch rec.Kind {
	case journal.KindTrip:
		if rec.Trip == nil {
			return "trip record without trip"
		}
	case journal.KindPoint:
		if rec.Point == nil {
			return "point record without point"
		}
	case journal.KindMedia:
		if rec.Media == nil {
			return "media record without media"
		}
		if err := rec.Media.Validate(); err != nil {
			return err.Error()
		}
	case "":
		return "missing kind field"
	default:
		return fmt.Sprintf("unknown kind %q", rec.Kind)
	}
	return ""
}

// checkReferences verifies every point names a trip and every media item
// names a point that appears earlier in the file.
func checkReferences(lines []importLine) []ImportError {
	var problems []ImportError
	trips := map[int64]bool{}
	points := map[int64]bool{}
	for _, l := range lines {
		switch l.record.Kind {
		case journal.KindTrip:
			trips[l.record.Trip.ID] = true
		case journal.KindPoint:
			p := l.record.Point
			if !trips[p.TripID] {
				problems = append(problems, ImportError{
					Line:    l.num,
					Code:    "UNKNOWN_TRIP",
					Message: fmt.Sprintf("point %d references trip %d, which is not earlier in the file", p.ID, p.TripID),
				})
				continue
			}
			points[p.ID] = true
		case journal.KindMedia:
			m := l.record.Media
			if !points[m.PointID] {
				problems = append(problems, ImportError{
					Line:    l.num,
					Code:    "UNKNOWN_POINT",
					Message: fmt.Sprintf("media %d references point %d, which is not earlier in the file", m.ID, m.PointID),
				})
			}
		}
	}
	return problems
}
