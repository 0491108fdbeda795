package discovery

import (
	"strconv"
	"strings"
	"time"
)

// ParseDuration converts a rendered duration string (HH:MM:SS, MM:SS or SS)
// to seconds. Malformed input yields 0.
func ParseDuration(duration string) int {
	parts := strings.Split(strings.TrimSpace(duration), ":")
	seconds := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0
		}
		seconds = seconds*60 + n
	}
	return seconds
}

// PublishedYear derives the publication year from a relative published-time
// string like "2 years ago" or "3 months ago", measured against now.
// Unparseable input yields the current year.
func PublishedYear(publishedTime string, now time.Time) int {
	fields := strings.Fields(strings.TrimSpace(publishedTime))
	if len(fields) < 2 {
		return now.Year()
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return now.Year()
	}
	unit := strings.TrimSuffix(strings.ToLower(fields[1]), "s")
	switch unit {
	case "year":
		return now.AddDate(-n, 0, 0).Year()
	case "month":
		return now.AddDate(0, -n, 0).Year()
	case "week":
		return now.AddDate(0, 0, -7*n).Year()
	case "day":
		return now.AddDate(0, 0, -n).Year()
	default:
		return now.Year()
	}
}
