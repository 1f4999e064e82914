package encoding

import (
	"strconv"
	"sync"
	"time"

	"github.com/custodia-labs/mbsearch/internal/core/domain"
)

// Headers is the CSV and spreadsheet header row.
var Headers = []string{
	"Item Number",
	"Description",
	"Schedule Fee",
	"Category",
	"Group",
	"Item Type",
	"Start Date",
}

// record is one exported item in structured formats.
type record struct {
	ItemNumber  string   `json:"ItemNumber" yaml:"ItemNumber"`
	Description string   `json:"Description" yaml:"Description"`
	ScheduleFee *float64 `json:"ScheduleFee" yaml:"ScheduleFee"`
	Category    string   `json:"Category" yaml:"Category"`
	Group       string   `json:"Group" yaml:"Group"`
	ItemType    string   `json:"ItemType" yaml:"ItemType"`
	StartDate   string   `json:"StartDate" yaml:"StartDate"`
}

// Dates formats item dates in a timezone that can change at runtime.
type Dates struct {
	mu  sync.RWMutex
	loc *time.Location
}

// NewDates creates a formatter for the named IANA zone.
// An unknown or empty zone falls back to UTC.
func NewDates(timezone string) *Dates {
	d := &Dates{loc: time.UTC}
	_ = d.SetTimezone(timezone)
	return d
}

// SetTimezone switches the zone. The previous zone stays on error.
func (d *Dates) SetTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loc = loc
	return nil
}

// layouts are the date forms the index has been seen to return.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Format renders s as DD/MM/YYYY. Empty input gives "". Unparseable
// input is returned unchanged.
func (d *Dates) Format(s string) string {
	if s == "" {
		return ""
	}
	d.mu.RLock()
	loc := d.loc
	d.mu.RUnlock()

	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc).Format("02/01/2006")
		}
	}
	return s
}

// toRecord maps an item to its exported fields.
func toRecord(item domain.ScheduleItem, dates *Dates) record {
	return record{
		ItemNumber:  string(item.ItemNum),
		Description: item.Description,
		ScheduleFee: feeValue(item.ScheduleFee),
		Category:    item.CategoryDescription,
		Group:       item.GroupDescription,
		ItemType:    item.ItemType,
		StartDate:   dates.Format(item.ItemStartDate),
	}
}

// feeValue returns the fee amount, or nil when absent.
func feeValue(f domain.Fee) *float64 {
	if !f.Valid {
		return nil
	}
	amount := f.Amount
	return &amount
}

// feeText renders a fee as a plain number, or "" when absent.
func feeText(f domain.Fee) string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Amount, 'f', -1, 64)
}
