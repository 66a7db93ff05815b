// Package allowance splits a journey into departure-day, transit and
// arrival-day segments and works out the meal allowance owed for each.
package allowance

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	minutesPerDay = 24 * 60
	secondsPerDay = 24 * 60 * 60
)

// Allowance is the share of a daily meal allowance granted for a segment.
type Allowance struct {
	Factor decimal.Decimal `json:"factor"`
	Label  string          `json:"label"`
}

// Allowance bands, keyed by the hours spent travelling in a calendar day.
var (
	FullDay       = Allowance{Factor: decimal.NewFromInt(1), Label: "Full Day (100%)"}
	LongPartial   = Allowance{Factor: decimal.RequireFromString("0.7"), Label: "Partial Day (70%)"}
	ShortPartial  = Allowance{Factor: decimal.RequireFromString("0.3"), Label: "Partial Day (30%)"}
	NoCharge      = Allowance{Factor: decimal.Zero, Label: "No charge (< 1 minute)"}
	notApplicable = Allowance{Factor: decimal.Zero, Label: NotApplicable}
)

// AllowanceFor returns the band for a segment of the given length in
// fractional hours. Each lower edge is exclusive.
func AllowanceFor(hours float64) Allowance {
	switch {
	case hours > 12:
		return FullDay
	case hours > 6:
		return LongPartial
	case hours > 0:
		return ShortPartial
	default:
		return NoCharge
	}
}

// Segment is one contiguous part of a journey. Departure and arrival
// segments never exceed a day.
type Segment struct {
	Duration   time.Duration
	Allowance  Allowance
	Applicable bool
}

func newSegment(d time.Duration) Segment {
	return Segment{
		Duration:   d,
		Allowance:  AllowanceFor(d.Hours()),
		Applicable: true,
	}
}

// Breakdown is the result of partitioning a journey.
//
// The departure segment, TransitDays whole days and the arrival segment
// always add up to TotalMinutes. On a same-day journey the whole span is
// the departure segment and the arrival segment is not applicable.
//
// Journey lengths are kept in minutes and calendar days since a
// time.Duration saturates after about 292 years.
type Breakdown struct {
	Departure time.Time
	Arrival   time.Time
	SameDay   bool

	DepartureSegment Segment
	TransitDays      int
	ArrivalSegment   Segment

	TotalEffectiveDays decimal.Decimal
	TotalMinutes       int64
}

// Compute partitions the journey from departure to arrival and derives the
// allowance for each segment. It fails with ErrInvalidOrdering when arrival
// precedes departure.
func Compute(departure, arrival time.Time) (*Breakdown, error) {
	if arrival.Before(departure) {
		return nil, ErrInvalidOrdering.New("arrival %s is before departure %s",
			FormatDateTime(arrival), FormatDateTime(departure))
	}

	b := &Breakdown{
		Departure:    departure,
		Arrival:      arrival,
		SameDay:      sameDate(departure, arrival),
		TotalMinutes: (arrival.Unix() - departure.Unix()) / 60,
	}

	if b.SameDay {
		b.DepartureSegment = newSegment(arrival.Sub(departure))
		b.ArrivalSegment = Segment{Allowance: notApplicable}
	} else {
		b.DepartureSegment = newSegment(nextMidnight(departure).Sub(departure))
		b.ArrivalSegment = newSegment(arrival.Sub(startOfDay(arrival)))

		// Arrival on the day after departure leaves no full day in between.
		b.TransitDays = max(0, int(dayNumber(arrival)-dayNumber(departure)-1))
	}

	b.TotalEffectiveDays = b.DepartureSegment.Allowance.Factor.
		Add(decimal.NewFromInt(int64(b.TransitDays))).
		Add(b.ArrivalSegment.Allowance.Factor)

	return b, nil
}

// Calculate parses the raw departure and arrival strings returned by the
// extractor and computes the breakdown.
func Calculate(departureText, arrivalText string) (*Breakdown, error) {
	var missing []string
	if strings.TrimSpace(departureText) == "" {
		missing = append(missing, "departure")
	}
	if strings.TrimSpace(arrivalText) == "" {
		missing = append(missing, "arrival")
	}
	if len(missing) > 0 {
		return nil, ErrMissingData.New("%s time could not be extracted", strings.Join(missing, " and "))
	}

	departure, err := ParseDateTime(departureText)
	if err != nil {
		return nil, err
	}
	arrival, err := ParseDateTime(arrivalText)
	if err != nil {
		return nil, err
	}

	return Compute(departure, arrival)
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// startOfDay truncates t to midnight of its own wall-clock day.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// dayNumber counts calendar days since the Unix epoch.
func dayNumber(t time.Time) int64 {
	return startOfDay(t).Unix() / secondsPerDay
}

// nextMidnight returns the start of the calendar day after t.
func nextMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
}
