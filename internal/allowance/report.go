package allowance

import "fmt"

// NotApplicable marks the arrival segment of a journey that starts and ends
// on the same day.
const NotApplicable = "N/A"

// Summary is a Breakdown rendered for display.
type Summary struct {
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`

	DepartureSegment string `json:"departure_segment"`
	TransitSegment   string `json:"transit_segment"`
	ArrivalSegment   string `json:"arrival_segment"`

	DepartureAllowance string `json:"departure_allowance"`
	TransitAllowance   string `json:"transit_allowance"`
	ArrivalAllowance   string `json:"arrival_allowance"`

	TransitDays   int    `json:"transit_days"`
	EffectiveDays string `json:"effective_days"` // two decimal places
	TotalDuration string `json:"total_duration"`
}

// Summarize renders b.
func Summarize(b *Breakdown) Summary {
	r := Summary{
		Departure:     FormatDateTime(b.Departure),
		Arrival:       FormatDateTime(b.Arrival),
		TransitDays:   b.TransitDays,
		EffectiveDays: b.TotalEffectiveDays.StringFixed(2),
		TotalDuration: FormatMinutes(b.TotalMinutes),
	}

	if b.SameDay {
		r.DepartureSegment = FormatDuration(b.DepartureSegment.Duration)
		r.TransitSegment = "0 days"
		r.ArrivalSegment = NotApplicable
		r.DepartureAllowance = "Single Day Journey: " + b.DepartureSegment.Allowance.Label
		r.TransitAllowance = "0 days"
		r.ArrivalAllowance = NotApplicable
		return r
	}

	r.DepartureSegment = FormatDuration(b.DepartureSegment.Duration)
	r.TransitSegment = FormatDays(b.TransitDays)
	r.ArrivalSegment = FormatDuration(b.ArrivalSegment.Duration)
	r.DepartureAllowance = b.DepartureSegment.Allowance.Label
	r.TransitAllowance = fmt.Sprintf("%d day(s)", b.TransitDays)
	r.ArrivalAllowance = b.ArrivalSegment.Allowance.Label
	return r
}
