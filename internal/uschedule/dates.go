package uschedule

import "time"

// wireDateLayout is the vendor's fixed local-time pattern. No timezone
// offset: values are wall-clock times at the venue.
const wireDateLayout = "2006-01-02T15:04:05"

// wireParseLayouts are tried in order when reading vendor date strings.
// The vendor is not consistent across endpoints: some return the plain
// pattern, some add milliseconds, some a zone, some both.
var wireParseLayouts = []string{
	wireDateLayout,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05.000Z07:00",
}

// FormatWireDate renders the start of t's calendar day in the vendor wire
// format, e.g. "2025-10-25T00:00:00".
func FormatWireDate(t time.Time) string {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.Format(wireDateLayout)
}

// FormatWireTime renders a full timestamp in the vendor wire format.
func FormatWireTime(t time.Time) string {
	return t.Format(wireDateLayout)
}

// ParseWireDate attempts each known vendor pattern, then two ISO-8601
// variants. Naive patterns are interpreted as local wall-clock time.
// Returns ok=false when every attempt fails; never panics.
func ParseWireDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range wireParseLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, true
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
