package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidTimezone(t *testing.T) {
	assert.True(t, IsValidTimezone("UTC"))
	assert.True(t, IsValidTimezone("Asia/Kolkata"))
	assert.False(t, IsValidTimezone(""))
	assert.False(t, IsValidTimezone("Mars/Olympus"))
}

func TestParseDatetimeLocal(t *testing.T) {
	// Kolkata is UTC+5:30 year round.
	got, err := ParseDatetimeLocal("2026-01-15T10:00", "Asia/Kolkata")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 4, 30, 0, 0, time.UTC), got)

	got, err = ParseDatetimeLocal("2026-01-15T10:00", "UTC")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), got)

	_, err = ParseDatetimeLocal("", "UTC")
	assert.Error(t, err)
	_, err = ParseDatetimeLocal("15/01/2026", "UTC")
	assert.Error(t, err)
}

func TestLocalToUTCAndBack(t *testing.T) {
	wall := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	utc := LocalToUTC(wall, "Asia/Kolkata")
	assert.Equal(t, time.Date(2026, 1, 15, 4, 30, 0, 0, time.UTC), utc)

	local := ToLocal(utc, "Asia/Kolkata")
	assert.Equal(t, 10, local.Hour())
	assert.Equal(t, 30, local.Minute())
}

func TestUnknownZoneFallsBackToUTC(t *testing.T) {
	instant := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, instant, ToLocal(instant, "Nowhere/Nowhere"))
}

func TestFormatting(t *testing.T) {
	instant := time.Date(2026, 3, 1, 9, 5, 0, 0, time.UTC)

	assert.Equal(t, "2026-03-01 09:05", FmtDt(instant))
	assert.Equal(t, "", FmtDt(time.Time{}))

	assert.Equal(t, "2026-03-01 14:35", FmtDtPtr(&instant, "Asia/Kolkata"))
	assert.Equal(t, "", FmtDtPtr(nil, "UTC"))

	assert.Equal(t, "2026-03-01T14:35", FmtDatetimeLocalInput(instant, "Asia/Kolkata"))
	assert.Equal(t, "", FmtDatetimeLocalInput(time.Time{}, "UTC"))
}
