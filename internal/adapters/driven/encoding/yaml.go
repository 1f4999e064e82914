package encoding

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driven"
)

// Ensure YAMLEncoder implements the interface.
var _ driven.ExportEncoder = (*YAMLEncoder)(nil)

// YAMLEncoder writes a sequence of records.
type YAMLEncoder struct {
	dates *Dates
}

// NewYAMLEncoder creates a YAML encoder.
func NewYAMLEncoder(dates *Dates) *YAMLEncoder {
	return &YAMLEncoder{dates: dates}
}

// Format returns domain.ExportYAML.
func (e *YAMLEncoder) Format() domain.ExportFormat {
	return domain.ExportYAML
}

// ContentType returns the MIME type of the output.
func (e *YAMLEncoder) ContentType() string {
	return "application/yaml"
}

// Encode writes items to w.
func (e *YAMLEncoder) Encode(w io.Writer, items []domain.ScheduleItem) error {
	records := make([]record, len(items))
	for i, item := range items {
		records[i] = toRecord(item, e.dates)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}
