package analysis

import (
	"strconv"
	"strings"
	"time"
)

// boughtAtLayouts are the accepted textual timestamp forms, tried in order.
var boughtAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseBoughtAt interprets a purchase timestamp given either as unix
// seconds or in one of the accepted layouts. Anything unparseable maps to
// the zero time, which downstream treats as an absent result.
func ParseBoughtAt(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		if secs > 0 {
			return time.Unix(secs, 0).UTC()
		}
		return time.Time{}
	}

	for _, layout := range boughtAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
