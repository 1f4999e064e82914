package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleItem_UnmarshalMixedTypes(t *testing.T) {
	data := []byte(`{
		"MBSItemId": 1234,
		"ItemNum": "23",
		"Description": "Level B consultation",
		"Category": 1,
		"ScheduleFee": 41.4,
		"Benefit75": null,
		"Benefit85": "35.20",
		"NewItem": "Y"
	}`)

	var item ScheduleItem
	require.NoError(t, json.Unmarshal(data, &item))

	assert.Equal(t, Text("1234"), item.MBSItemID)
	assert.Equal(t, "23", item.ItemNum.String())
	assert.Equal(t, Text("1"), item.Category)
	assert.Equal(t, NewFee(41.4), item.ScheduleFee)
	assert.False(t, item.Benefit75.Valid)
	assert.Equal(t, NewFee(35.2), item.Benefit85)
	assert.True(t, item.IsNew())
}

func TestFee_String(t *testing.T) {
	assert.Equal(t, "$41.40", NewFee(41.4).String())
	assert.Equal(t, "$0.00", NewFee(0).String())
	assert.Equal(t, "N/A", Fee{}.String())
}

func TestFee_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Fee `json:"a"`
		B Fee `json:"b"`
	}{A: NewFee(12.5)})

	require.NoError(t, err)
	assert.JSONEq(t, `{"a":12.5,"b":null}`, string(data))
}

func TestFee_UnmarshalRejectsGarbage(t *testing.T) {
	var f Fee
	assert.Error(t, json.Unmarshal([]byte(`"twelve"`), &f))
	assert.Error(t, json.Unmarshal([]byte(`true`), &f))
}

func TestSearchPage_Range(t *testing.T) {
	page := &SearchPage{
		Results:  make([]ResultItem, 10),
		Count:    57,
		Page:     3,
		PageSize: 10,
	}

	first, last := page.Range()
	assert.Equal(t, int64(21), first)
	assert.Equal(t, int64(30), last)
	assert.Equal(t, 6, page.TotalPages())

	empty := &SearchPage{Page: 1, PageSize: 10}
	first, last = empty.Range()
	assert.Zero(t, first)
	assert.Zero(t, last)
	assert.Zero(t, empty.TotalPages())
}
