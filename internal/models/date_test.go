package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSONRoundTrip(t *testing.T) {
	var p struct {
		Day *Date `json:"day"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"day":"2025-03-09"}`), &p))
	require.NotNil(t, p.Day)
	assert.Equal(t, "2025-03-09", p.Day.String())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"day":"2025-03-09"}`, string(out))
}

func TestDateRejectsTimestamps(t *testing.T) {
	var d Date
	assert.Error(t, json.Unmarshal([]byte(`"09/03/2025"`), &d))
}

func TestDateScan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-03-09", d.String())

	require.NoError(t, d.Scan([]byte("2024-12-31T00:00:00Z")))
	assert.Equal(t, "2024-12-31", d.String())

	assert.Error(t, d.Scan(42))
}

func TestNewDateUsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	// 01:30 UTC on the 1st is still the 31st in Buenos Aires.
	instant := time.Date(2025, 4, 1, 1, 30, 0, 0, time.UTC).In(loc)
	assert.Equal(t, "2025-03-31", NewDate(instant).String())
}

func TestDateSameMonth(t *testing.T) {
	d, err := ParseDate("2025-03-02")
	require.NoError(t, err)
	assert.True(t, d.SameMonth(time.Date(2025, 3, 20, 10, 0, 0, 0, time.UTC)))
	assert.False(t, d.SameMonth(time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)))
}
