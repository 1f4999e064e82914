package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text is a field value the index may store as a string or a number.
// It always reads back as a string.
type Text string

// UnmarshalJSON accepts a JSON string, number or null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("text field: %w", err)
	}
	*t = Text(n.String())
	return nil
}

// String returns the value as a string.
func (t Text) String() string {
	return string(t)
}

// Fee is an optional dollar amount.
type Fee struct {
	Amount float64
	Valid  bool
}

// NewFee returns a valid fee.
func NewFee(amount float64) Fee {
	return Fee{Amount: amount, Valid: true}
}

// UnmarshalJSON accepts a number, a numeric string or null.
func (f *Fee) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = Fee{}
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			*f = Fee{}
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("fee field: %w", err)
	}
	*f = NewFee(v)
	return nil
}

// MarshalJSON writes the amount, or null when unset.
func (f Fee) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f.Amount, 'f', -1, 64)), nil
}

// String formats the fee as "$x.xx", or "N/A" when unset.
func (f Fee) String() string {
	if !f.Valid {
		return "N/A"
	}
	return fmt.Sprintf("$%.2f", f.Amount)
}

// ScheduleItem is one MBS schedule entry as stored in the search index.
type ScheduleItem struct {
	MBSItemID                Text   `json:"MBSItemId,omitempty"`
	ItemNum                  Text   `json:"ItemNum"`
	ItemNumAlias             Text   `json:"ItemNumAlias,omitempty"`
	Description              string `json:"Description"`
	HumanReadableDescription string `json:"HumanReadableDescription,omitempty"`
	Category                 Text   `json:"Category,omitempty"`
	CategoryDescription      string `json:"CategoryDescription,omitempty"`
	Group                    Text   `json:"Group,omitempty"`
	GroupDescription         string `json:"GroupDescription,omitempty"`
	SubGroup                 Text   `json:"SubGroup,omitempty"`
	SubHeading               Text   `json:"SubHeading,omitempty"`
	ItemType                 string `json:"ItemType,omitempty"`
	SubItemNum               Text   `json:"SubItemNum,omitempty"`
	ItemStartDate            string `json:"ItemStartDate,omitempty"`
	ItemEndDate              string `json:"ItemEndDate,omitempty"`
	FeeStartDate             string `json:"FeeStartDate,omitempty"`
	ScheduleFee              Fee    `json:"ScheduleFee"`
	Benefit75                Fee    `json:"Benefit75"`
	Benefit85                Fee    `json:"Benefit85"`
	Benefit100               Fee    `json:"Benefit100"`
	FeeType                  string `json:"FeeType,omitempty"`
	BenefitType              string `json:"BenefitType,omitempty"`
	ProviderType             string `json:"ProviderType,omitempty"`
	NewItem                  string `json:"NewItem,omitempty"`
	ItemChange               string `json:"ItemChange,omitempty"`
	FeeChange                string `json:"FeeChange,omitempty"`
}

// IsNew reports whether the item is flagged as new in this schedule.
func (s ScheduleItem) IsNew() bool {
	return strings.EqualFold(s.NewItem, "Y")
}
