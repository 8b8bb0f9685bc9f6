package journal

// RecordKind names the entity carried by an export record.
type RecordKind string

const (
	KindTrip  RecordKind = "trip"
	KindPoint RecordKind = "point"
	KindMedia RecordKind = "media"
)

// ExportRecord is one line of a JSONL export. The first line of a file is a
// header with MapJournalExport set; every other line carries exactly one entity.
type ExportRecord struct {
	MapJournalExport bool       `json:"_mapjournal_export,omitempty"`
	SchemaVersion    string     `json:"schema_version,omitempty"`
	ExportedAt       int64      `json:"exported_at,omitempty"`
	Kind             RecordKind `json:"kind,omitempty"`
	Trip             *Trip      `json:"trip,omitempty"`
	Point            *Point     `json:"point,omitempty"`
	Media            *MediaItem `json:"media,omitempty"`
}
