package codec

import (
	"strings"
	"time"
)

// The live server emits Python isoformat() strings without a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses a wire timestamp. Zone-less values are taken as UTC.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func timestampPtr(s string) *time.Time {
	t, ok := ParseTimestamp(s)
	if !ok {
		return nil
	}
	return &t
}
