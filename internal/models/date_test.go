package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/memotica/memotica/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDate_KeepsLocalCalendarDay(t *testing.T) {
	zone := time.FixedZone("UTC+9", 9*3600)
	late := time.Date(2026, 1, 31, 23, 30, 0, 0, zone)

	d := models.NewDate(late)
	assert.Equal(t, "2026-01-31", d.String())
	assert.Equal(t, "2026-02-01", d.AddDays(1).String())
}

func TestParseDate(t *testing.T) {
	tests := map[string]string{
		"2026-07-04":                  "2026-07-04",
		"2026-07-04T10:11:12Z":        "2026-07-04",
		"2026-07-04 10:11:12":         "2026-07-04",
		"2026-07-04 10:11:12.5+02:00": "2026-07-04",
		"2026-07-04 10:11:12.123456":  "2026-07-04",
	}
	for in, want := range tests {
		d, err := models.ParseDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, d.String())
	}

	_, err := models.ParseDate("yesterday")
	assert.Error(t, err)
}

func TestDate_Scan(t *testing.T) {
	var d models.Date

	require.NoError(t, d.Scan("2026-02-03"))
	assert.Equal(t, "2026-02-03", d.String())

	require.NoError(t, d.Scan([]byte("2026-02-04")))
	assert.Equal(t, "2026-02-04", d.String())

	require.NoError(t, d.Scan(time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-02-05", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestDate_ValueAndJSON(t *testing.T) {
	d, err := models.ParseDate("2026-09-30")
	require.NoError(t, err)

	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "2026-09-30", v)

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `"2026-09-30"`, string(b))

	var back models.Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)
}
