package journey

import (
	"errors"
	"time"

	"github.com/zombor/journey-allowance/internal/allowance"
)

var (
	// ErrNotFound is returned when a journey or claim does not exist
	ErrNotFound = errors.New("not found")
	// ErrAlreadyClaimed is returned when a journey is already part of a claim
	ErrAlreadyClaimed = errors.New("journey is already claimed")
	// ErrScanFailed is returned when the extraction backend could not read
	// an itinerary
	ErrScanFailed = errors.New("itinerary scan failed")
)

// Journey is a computed allowance for one trip
type Journey struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Departure     time.Time         `json:"departure"`
	Arrival       time.Time         `json:"arrival"`
	DepartureText string            `json:"departure_text"` // as extracted
	ArrivalText   string            `json:"arrival_text"`
	TransitDays   int               `json:"transit_days"`
	EffectiveDays string            `json:"effective_days"` // two decimal places
	Report        allowance.Summary `json:"report"`
	Filename      string            `json:"filename,omitempty"` // itinerary image, empty for manual entries
	ContentType   string            `json:"content_type,omitempty"`
	ClaimID       string            `json:"claim_id,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Claim bundles journeys into one meal allowance claim
type Claim struct {
	ID                 string    `json:"id"`
	JourneyIDs         []string  `json:"journey_ids"`
	TotalEffectiveDays string    `json:"total_effective_days"` // two decimal places
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
