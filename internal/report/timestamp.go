package report

import (
	"strings"
	"time"
)

// DisplayLayout is the fixed-width layout used for timestamps in report rows.
const DisplayLayout = "2006-01-02 15:04:05"

// timestampLayouts are tried in order; the first match wins.
var timestampLayouts = []string{
	DisplayLayout,
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseTimestamp coerces a raw cell into a UTC timestamp.
// Blank cells, null markers and anything no layout accepts yield ok=false.
func ParseTimestamp(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	switch strings.ToLower(s) {
	case "", "nat", "nan", "null", "none":
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func formatTimestamp(t time.Time, ok bool) string {
	if !ok {
		return ""
	}
	return t.Format(DisplayLayout)
}
