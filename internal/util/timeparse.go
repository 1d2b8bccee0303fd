package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// absoluteLayouts are tried in order; dates without a zone use now's location.
var absoluteLayouts = []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// ParseTimeExpr turns a cutoff expression into a point in time. It accepts
// Go durations ("90m", "2h"), calendar shorthands counted back from now
// ("3d", "2w", "1mo"), "today" and "yesterday" (local midnight), and
// absolute timestamps.
func ParseTimeExpr(s string, now time.Time) (time.Time, error) {
	expr := strings.ToLower(strings.TrimSpace(s))
	switch expr {
	case "":
		return time.Time{}, fmt.Errorf("empty time expression")
	case "today":
		return midnight(now), nil
	case "yesterday":
		return midnight(now).AddDate(0, 0, -1), nil
	}

	if n, unit, ok := splitCount(expr); ok {
		switch unit {
		case "mo":
			return now.AddDate(0, -n, 0), nil
		case "w":
			return now.AddDate(0, 0, -7*n), nil
		case "d":
			return now.AddDate(0, 0, -n), nil
		}
	}
	if d, err := time.ParseDuration(expr); err == nil {
		return now.Add(-d), nil
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time expression: %q", s)
}

// splitCount splits "12d" into 12 and "d".
func splitCount(expr string) (int, string, bool) {
	i := 0
	for i < len(expr) && expr[i] >= '0' && expr[i] <= '9' {
		i++
	}
	if i == 0 || i == len(expr) {
		return 0, "", false
	}
	n, err := strconv.Atoi(expr[:i])
	if err != nil {
		return 0, "", false
	}
	return n, expr[i:], true
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
