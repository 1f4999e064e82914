package encoding

import (
	"encoding/json"
	"io"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driven"
)

// Ensure JSONEncoder implements the interface.
var _ driven.ExportEncoder = (*JSONEncoder)(nil)

// JSONEncoder writes an indented array of records.
type JSONEncoder struct {
	dates *Dates
}

// NewJSONEncoder creates a JSON encoder.
func NewJSONEncoder(dates *Dates) *JSONEncoder {
	return &JSONEncoder{dates: dates}
}

// Format returns domain.ExportJSON.
func (e *JSONEncoder) Format() domain.ExportFormat {
	return domain.ExportJSON
}

// ContentType returns the MIME type of the output.
func (e *JSONEncoder) ContentType() string {
	return "application/json"
}

// Encode writes items to w.
func (e *JSONEncoder) Encode(w io.Writer, items []domain.ScheduleItem) error {
	records := make([]record, len(items))
	for i, item := range items {
		records[i] = toRecord(item, e.dates)
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
