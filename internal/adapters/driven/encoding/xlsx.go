package encoding

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
	"github.com/custodia-labs/mbsearch/internal/core/ports/driven"
)

// Ensure XLSXEncoder implements the interface.
var _ driven.ExportEncoder = (*XLSXEncoder)(nil)

// SheetName is the worksheet holding exported rows.
const SheetName = "Results"

// XLSXEncoder writes a single-sheet workbook. Fees are numeric cells.
type XLSXEncoder struct {
	dates *Dates
}

// NewXLSXEncoder creates a spreadsheet encoder.
func NewXLSXEncoder(dates *Dates) *XLSXEncoder {
	return &XLSXEncoder{dates: dates}
}

// Format returns domain.ExportXLSX.
func (e *XLSXEncoder) Format() domain.ExportFormat {
	return domain.ExportXLSX
}

// ContentType returns the MIME type of the output.
func (e *XLSXEncoder) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Encode writes items to w.
func (e *XLSXEncoder) Encode(w io.Writer, items []domain.ScheduleItem) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, item := range items {
		rec := toRecord(item, e.dates)
		row := []any{rec.ItemNumber, rec.Description, nil, rec.Category, rec.Group, rec.ItemType, rec.StartDate}
		if rec.ScheduleFee != nil {
			row[2] = *rec.ScheduleFee
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	return f.Write(w)
}
