package encoding

import (
	"io"
	"strings"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driven"
)

// Ensure CSVEncoder implements the interface.
var _ driven.ExportEncoder = (*CSVEncoder)(nil)

// CSVEncoder writes a header row then one row per item. Text columns
// are always quoted with embedded quotes doubled; rows end with "\n".
type CSVEncoder struct {
	dates *Dates
}

// NewCSVEncoder creates a CSV encoder.
func NewCSVEncoder(dates *Dates) *CSVEncoder {
	return &CSVEncoder{dates: dates}
}

// Format returns domain.ExportCSV.
func (e *CSVEncoder) Format() domain.ExportFormat {
	return domain.ExportCSV
}

// ContentType returns the MIME type of the output.
func (e *CSVEncoder) ContentType() string {
	return "text/csv; charset=utf-8"
}

// Encode writes items to w.
func (e *CSVEncoder) Encode(w io.Writer, items []domain.ScheduleItem) error {
	var b strings.Builder
	b.WriteString(strings.Join(Headers, ","))
	for _, item := range items {
		b.WriteByte('\n')
		b.WriteString(strings.Join([]string{
			string(item.ItemNum),
			quoteCSV(item.Description),
			feeText(item.ScheduleFee),
			quoteCSV(item.CategoryDescription),
			quoteCSV(item.GroupDescription),
			quoteCSV(item.ItemType),
			e.dates.Format(item.ItemStartDate),
		}, ","))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// quoteCSV wraps s in double quotes. Empty text stays empty.
func quoteCSV(s string) string {
	if s == "" {
		return ""
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
