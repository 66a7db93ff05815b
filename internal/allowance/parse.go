package allowance

import (
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/errs"
)

// DateTimeLayout is the layout timestamps are extracted in: DD-MM-YYYY HH:MM.
const DateTimeLayout = "02-01-2006 15:04"

// ParseDateTime parses text in DD-MM-YYYY HH:MM form into a naive instant
// (UTC is used as a stand-in for "no timezone").
//
// Out-of-range components are rejected with ErrInvalidDate instead of being
// rolled over into the next month or year.
func ParseDateTime(text string) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, ErrMissingData.New("empty date-time")
	}

	parts := strings.Split(text, " ")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return time.Time{}, ErrMalformedInput.New("%q: expected DD-MM-YYYY HH:MM", text)
	}

	dateFields, err := numericFields(parts[0], "-", 3)
	if err != nil {
		return time.Time{}, ErrMalformedInput.New("%q: date part: %v", text, err)
	}
	timeFields, err := numericFields(parts[1], ":", 2)
	if err != nil {
		return time.Time{}, ErrMalformedInput.New("%q: time part: %v", text, err)
	}

	day, month, year := dateFields[0], dateFields[1], dateFields[2]
	hour, minute := timeFields[0], timeFields[1]

	switch {
	case year < 1 || year > 9999:
		return time.Time{}, ErrInvalidDate.New("%q: year %d out of range", text, year)
	case month < 1 || month > 12:
		return time.Time{}, ErrInvalidDate.New("%q: month %d out of range", text, month)
	case day < 1 || day > daysIn(time.Month(month), year):
		return time.Time{}, ErrInvalidDate.New("%q: day %d out of range for %s %d", text, day, time.Month(month), year)
	case hour > 23:
		return time.Time{}, ErrInvalidDate.New("%q: hour %d out of range", text, hour)
	case minute > 59:
		return time.Time{}, ErrInvalidDate.New("%q: minute %d out of range", text, minute)
	}

	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC), nil
}

// FormatDateTime renders t in the layout ParseDateTime accepts.
func FormatDateTime(t time.Time) string {
	return t.Format(DateTimeLayout)
}

// numericFields splits s on sep into exactly n unsigned decimal integers.
func numericFields(s, sep string, n int) ([]int, error) {
	raw := strings.Split(s, sep)
	if len(raw) != n {
		return nil, errs.New("expected %d fields separated by %q, got %d", n, sep, len(raw))
	}

	values := make([]int, n)
	for i, field := range raw {
		if field == "" || strings.ContainsAny(field, "+-") {
			return nil, errs.New("field %d (%q) is not a number", i+1, field)
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, errs.New("field %d (%q) is not a number", i+1, field)
		}
		values[i] = v
	}
	return values, nil
}

// daysIn returns the number of days in month m of year y.
func daysIn(m time.Month, y int) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
