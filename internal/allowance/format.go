package allowance

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders d as its non-zero day, hour and minute parts,
// e.g. "1 day 2 hours" or "3 minutes". A zero or negative duration is
// "0 minutes".
func FormatDuration(d time.Duration) string {
	return FormatMinutes(int64(d / time.Minute))
}

// FormatMinutes is FormatDuration for a whole number of minutes.
func FormatMinutes(total int64) string {
	if total < 0 {
		total = 0
	}

	days := total / minutesPerDay
	hours := total % minutesPerDay / 60
	minutes := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}

	if len(parts) == 0 {
		return "0 minutes"
	}
	return strings.Join(parts, " ")
}

// FormatDays renders a whole number of days, e.g. "2 days".
func FormatDays(days int) string {
	return plural(int64(max(days, 0)), "day")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
