package domain

import (
	"strings"
	"time"
)

// ExportFormat identifies an export file format.
type ExportFormat string

// Available export formats.
const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
	ExportXLSX ExportFormat = "xlsx"
	ExportYAML ExportFormat = "yaml"
)

// ParseExportFormat returns the format named by s, case-insensitively.
func ParseExportFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case ExportCSV, ExportJSON, ExportXLSX, ExportYAML:
		return f, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Extension returns the file extension without the dot.
func (f ExportFormat) Extension() string {
	return string(f)
}

// String returns the string representation.
func (f ExportFormat) String() string {
	return string(f)
}

// ExportState is the phase of the export state machine.
type ExportState string

// Export states. A job moves Idle -> Counting -> Fetching -> Finalizing
// and returns to Idle after the reset delay.
const (
	ExportIdle       ExportState = "idle"
	ExportCounting   ExportState = "counting"
	ExportFetching   ExportState = "fetching"
	ExportFinalizing ExportState = "finalizing"
)

// ExportOutcome is how a finished export ended.
type ExportOutcome string

// Export outcomes.
const (
	ExportSucceeded ExportOutcome = "succeeded"
	ExportEmpty     ExportOutcome = "empty"
	ExportFailed    ExportOutcome = "failed"
)

// ExportJob is the observable state of one export.
type ExportJob struct {
	ID           string        `json:"id"`
	Format       ExportFormat  `json:"format"`
	Intent       SearchIntent  `json:"intent"`
	State        ExportState   `json:"state"`
	Outcome      ExportOutcome `json:"outcome,omitempty"`
	Running      bool          `json:"running"`
	TotalCount   int64         `json:"totalCount"`
	FetchedCount int64         `json:"fetchedCount"`
	Progress     int           `json:"progress"`
	Message      string        `json:"message"`
	Filename     string        `json:"filename,omitempty"`
	Location     string        `json:"location,omitempty"`
	Err          string        `json:"error,omitempty"`
	StartedAt    time.Time     `json:"startedAt"`
	FinishedAt   time.Time     `json:"finishedAt,omitempty"`
}

// ExportProgress is a progress notification emitted during an export.
type ExportProgress struct {
	JobID    string      `json:"jobId"`
	State    ExportState `json:"state"`
	Progress int         `json:"progress"`
	Message  string      `json:"message"`
	Running  bool        `json:"running"`
}

// ExportArtifact is an encoded export file ready for delivery.
type ExportArtifact struct {
	JobID       string
	Filename    string
	ContentType string
	Data        []byte
}

// ExportRecord is a finished export kept in the export history.
type ExportRecord struct {
	ID           string        `json:"id"`
	Format       ExportFormat  `json:"format"`
	Outcome      ExportOutcome `json:"outcome"`
	Filename     string        `json:"filename,omitempty"`
	Location     string        `json:"location,omitempty"`
	TotalCount   int64         `json:"totalCount"`
	FetchedCount int64         `json:"fetchedCount"`
	Message      string        `json:"message"`
	Err          string        `json:"error,omitempty"`
	Intent       SearchIntent  `json:"intent"`
	StartedAt    time.Time     `json:"startedAt"`
	FinishedAt   time.Time     `json:"finishedAt"`
}

// Record converts a finished job into a history record.
func (j ExportJob) Record() ExportRecord {
	return ExportRecord{
		ID:           j.ID,
		Format:       j.Format,
		Outcome:      j.Outcome,
		Filename:     j.Filename,
		Location:     j.Location,
		TotalCount:   j.TotalCount,
		FetchedCount: j.FetchedCount,
		Message:      j.Message,
		Err:          j.Err,
		Intent:       j.Intent,
		StartedAt:    j.StartedAt,
		FinishedAt:   j.FinishedAt,
	}
}
