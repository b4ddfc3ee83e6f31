package filter

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	isoDateRegex  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	relativeRegex = regexp.MustCompile(`(?i)(\d+)\s*(minute|min|hour|hr|day|week|month)s?\s+ago`)
)

// ParseListedAt reads the datetime attribute of a card's <time> element, or its
// relative text ("3 days ago"). It returns nil when nothing can be parsed.
func ParseListedAt(raw string, now time.Time) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	//case 1: full timestamp
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}

	//case 2: ISO date "2026-10-17", taken as UTC midnight
	if isoDateRegex.MatchString(raw) {
		if t, err := time.Parse("2006-01-02", raw[:10]); err == nil {
			return &t
		}
	}

	//case 3: "2 hours ago", "1 week ago"
	if m := relativeRegex.FindStringSubmatch(raw); m != nil {
		n, _ := strconv.Atoi(m[1])
		var unit time.Duration
		switch strings.ToLower(m[2]) {
		case "minute", "min":
			unit = time.Minute
		case "hour", "hr":
			unit = time.Hour
		case "day":
			unit = 24 * time.Hour
		case "week":
			unit = 7 * 24 * time.Hour
		case "month":
			unit = 30 * 24 * time.Hour
		}
		t := now.Add(-time.Duration(n) * unit).UTC()
		return &t
	}

	//default
	return nil
}
