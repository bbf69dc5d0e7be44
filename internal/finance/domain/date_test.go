package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-02-29"}`), &payload))
	assert.Equal(t, NewDate(2024, time.February, 29), payload.Date)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-02-29"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"date":"29/02/2024"}`), &payload))
}

func TestDate_Arithmetic(t *testing.T) {
	from := NewDate(2024, time.January, 30)
	to := from.AddDays(3)

	assert.Equal(t, "2024-02-02", to.String())
	assert.Equal(t, 3, from.DaysUntil(to))
	assert.Equal(t, -3, to.DaysUntil(from))

	millennium := NewDate(1000, time.January, 1)
	end := NewDate(1999, time.December, 31)
	assert.Equal(t, 365241, millennium.DaysUntil(end))
	assert.Equal(t, end, millennium.AddDays(millennium.DaysUntil(end)))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2024-05-06", d.String())

	require.NoError(t, d.Scan([]byte("2024-05-07")))
	assert.Equal(t, "2024-05-07", d.String())

	assert.Error(t, d.Scan(42))

	v, err := NewDate(2024, time.May, 8).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-05-08", v)
}

func TestDateOf_UsesLocalCalendarDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	assert.Equal(t, "2024-03-02", DateOf(time.Date(2024, 3, 2, 1, 0, 0, 0, loc)).String())
}
