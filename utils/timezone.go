package utils

import (
	"time"
)

// TimezoneOptions is the list offered in settings and exam forms.
var TimezoneOptions = []string{
	"UTC",
	"Africa/Cairo",
	"America/Chicago",
	"America/Los_Angeles",
	"America/New_York",
	"America/Sao_Paulo",
	"Asia/Dubai",
	"Asia/Karachi",
	"Asia/Kolkata",
	"Asia/Shanghai",
	"Asia/Singapore",
	"Asia/Tehran",
	"Asia/Tokyo",
	"Australia/Sydney",
	"Europe/Berlin",
	"Europe/Istanbul",
	"Europe/London",
	"Europe/Moscow",
	"Europe/Paris",
}

// loadLocation resolves a zone name, falling back to UTC on anything unknown.
func loadLocation(tzName string) *time.Location {
	if tzName == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsValidTimezone reports whether the zone name resolves.
func IsValidTimezone(tzName string) bool {
	if tzName == "" {
		return false
	}
	_, err := time.LoadLocation(tzName)
	return err == nil
}

// ToLocal converts a stored UTC instant into the user's zone for display.
func ToLocal(t time.Time, tzName string) time.Time {
	return t.In(loadLocation(tzName))
}

// LocalToUTC reinterprets a wall-clock time as belonging to the given zone
// and converts it to UTC for storage.
func LocalToUTC(t time.Time, tzName string) time.Time {
	loc := loadLocation(tzName)
	local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
	return local.UTC()
}

// ParseDatetimeLocal parses an HTML datetime-local value ("2006-01-02T15:04")
// as wall-clock time in the given zone and returns the UTC instant.
func ParseDatetimeLocal(value, tzName string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02T15:04", value, loadLocation(tzName))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// FmtDt formats an instant for display: "2006-01-02 15:04".
func FmtDt(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

// FmtDtPtr formats an optional instant after converting to the given zone.
func FmtDtPtr(t *time.Time, tzName string) string {
	if t == nil {
		return ""
	}
	return FmtDt(ToLocal(*t, tzName))
}

// FmtDatetimeLocalInput renders an instant as a datetime-local input value
// in the given zone.
func FmtDatetimeLocalInput(t time.Time, tzName string) string {
	if t.IsZero() {
		return ""
	}
	return ToLocal(t, tzName).Format("2006-01-02T15:04")
}
