// Package ops holds the journal use cases shared by the CLI, the MCP server
// and the web viewer. Each operation takes an Input struct and returns an
// Output struct or a *errors.JournalError.
package ops

import (
	"fmt"
	"strings"
)

// ExportSchemaVersion is written into every export header.
const ExportSchemaVersion = "1"

// DeleteInput addresses a trip, point or media item for deletion.
type DeleteInput struct {
	ID int64

	// Cascade removes dependent rows found in storage, not only loaded ones
	Cascade bool
}

// DeleteOutput reports what a delete removed.
type DeleteOutput struct {
	Deleted       bool  `json:"deleted"`
	ID            int64 `json:"id"`
	PointsDeleted int64 `json:"points_deleted"`
	MediaDeleted  int64 `json:"media_deleted"`
}

// applyText copies v into dst. A nil v leaves dst unchanged and an empty
// (after trimming) v clears it.
func applyText(dst **string, v *string) {
	if v == nil {
		return
	}
	if strings.TrimSpace(*v) == "" {
		*dst = nil
		return
	}
	s := *v
	*dst = &s
}

// plural formats a count with a singular or plural noun.
func plural(n int64, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
