package journey

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zombor/journey-allowance/internal/allowance"
	"github.com/zombor/journey-allowance/internal/scanning"
)

// IDGenerator generates unique IDs for journeys and claims
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles journey and claim operations
type Service struct {
	// claimMu orders claim creation against journey deletion
	claimMu sync.Mutex

	db          DB
	scanner     scanning.Scanner
	storage     Storage
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service with UUIDs and the wall clock
func NewService(db DB, scanner scanning.Scanner, storage Storage) *Service {
	return NewServiceWithDeps(db, scanner, storage, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		scanner:     scanner,
		storage:     storage,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	repeatedSpaces      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename shortens clipboard and phone generated names to
// something safe to store
func sanitizeFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = repeatedSpaces.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "itinerary"
	}

	return base + ext
}

// defaultTitle names a journey after its dates
func defaultTitle(b *allowance.Breakdown) string {
	from := b.Departure.Format("02 Jan 2006")
	if b.SameDay {
		return "Journey on " + from
	}
	return fmt.Sprintf("Journey %s to %s", from, b.Arrival.Format("02 Jan 2006"))
}

func (s *Service) newJourney(id, title string, data scanning.ItineraryData, b *allowance.Breakdown) *Journey {
	now := s.timeSource.Now()
	if strings.TrimSpace(title) == "" {
		title = defaultTitle(b)
	}

	report := allowance.Summarize(b)
	return &Journey{
		ID:            id,
		Title:         strings.TrimSpace(title),
		Departure:     b.Departure,
		Arrival:       b.Arrival,
		DepartureText: data.Departure,
		ArrivalText:   data.Arrival,
		TransitDays:   b.TransitDays,
		EffectiveDays: report.EffectiveDays,
		Report:        report,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// ProcessItinerary stores an itinerary image, extracts its first departure
// and last arrival, computes the allowance and saves the journey.
// The stored image is removed again if any later step fails.
func (s *Service) ProcessItinerary(filename, title string, data []byte, contentType string) (*Journey, error) {
	id := s.idGenerator.Generate()

	savedPath, err := s.storage.Save(fmt.Sprintf("%s_%s", id, sanitizeFilename(filename)), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	cleanup := func() {
		if err := s.storage.Delete(savedPath); err != nil {
			slog.Warn("Failed to delete itinerary file", "filename", savedPath, "error", err)
		}
	}

	extracted, err := s.scanner.ScanItinerary(data, contentType)
	if err != nil {
		slog.Error("Failed to scan itinerary",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		cleanup()
		return nil, fmt.Errorf("%w: %w", ErrScanFailed, err)
	}

	breakdown, err := allowance.Calculate(extracted.Departure, extracted.Arrival)
	if err != nil {
		slog.Warn("Extracted timestamps are unusable",
			"filename", filename,
			"departure", extracted.Departure,
			"arrival", extracted.Arrival,
			"error", err,
		)
		cleanup()
		return nil, fmt.Errorf("calculating allowance: %w", err)
	}

	journey := s.newJourney(id, title, *extracted, breakdown)
	journey.Filename = savedPath
	journey.ContentType = contentType

	if err := s.db.SaveJourney(journey); err != nil {
		cleanup()
		return nil, fmt.Errorf("saving journey to database: %w", err)
	}

	slog.Info("Journey computed",
		"id", journey.ID,
		"departure", journey.Report.Departure,
		"arrival", journey.Report.Arrival,
		"effective_days", journey.EffectiveDays,
	)
	return journey, nil
}

// Calculate computes a report for manually entered timestamps without
// saving anything
func (s *Service) Calculate(departureText, arrivalText string) (*allowance.Summary, error) {
	breakdown, err := allowance.Calculate(departureText, arrivalText)
	if err != nil {
		return nil, err
	}
	report := allowance.Summarize(breakdown)
	return &report, nil
}

// SaveManualJourney saves a journey from typed-in timestamps
func (s *Service) SaveManualJourney(title, departureText, arrivalText string) (*Journey, error) {
	breakdown, err := allowance.Calculate(departureText, arrivalText)
	if err != nil {
		return nil, err
	}

	journey := s.newJourney(s.idGenerator.Generate(), title, scanning.ItineraryData{
		Departure: strings.TrimSpace(departureText),
		Arrival:   strings.TrimSpace(arrivalText),
	}, breakdown)

	if err := s.db.SaveJourney(journey); err != nil {
		return nil, fmt.Errorf("saving journey to database: %w", err)
	}
	return journey, nil
}

// GetJourney retrieves a journey by ID
func (s *Service) GetJourney(id string) (*Journey, error) {
	journey, err := s.db.GetJourney(id)
	if err != nil {
		return nil, fmt.Errorf("getting journey: %w", err)
	}
	return journey, nil
}

// ListJourneys returns all journeys, latest departure first
func (s *Service) ListJourneys() ([]*Journey, error) {
	journeys, err := s.db.ListJourneys()
	if err != nil {
		return nil, fmt.Errorf("listing journeys: %w", err)
	}
	slices.SortStableFunc(journeys, func(a, b *Journey) int {
		return b.Departure.Compare(a.Departure)
	})
	return journeys, nil
}

// DeleteJourney removes an unclaimed journey and its itinerary image
func (s *Service) DeleteJourney(id string) error {
	s.claimMu.Lock()
	defer s.claimMu.Unlock()

	journey, err := s.db.GetJourney(id)
	if err != nil {
		return fmt.Errorf("getting journey for deletion: %w", err)
	}
	if journey.ClaimID != "" {
		return fmt.Errorf("deleting journey %s: %w", id, ErrAlreadyClaimed)
	}

	if journey.Filename != "" {
		if err := s.storage.Delete(journey.Filename); err != nil {
			// The record goes regardless; an orphaned image is harmless
			slog.Warn("Failed to delete file", "filename", journey.Filename, "error", err)
		}
	}

	if err := s.db.DeleteJourney(id); err != nil {
		return fmt.Errorf("deleting journey from database: %w", err)
	}
	return nil
}

// GetJourneyFile retrieves the itinerary image of a journey
func (s *Service) GetJourneyFile(id string) ([]byte, string, error) {
	journey, err := s.db.GetJourney(id)
	if err != nil {
		return nil, "", fmt.Errorf("getting journey: %w", err)
	}
	if journey.Filename == "" {
		return nil, "", fmt.Errorf("journey %s has no itinerary file: %w", id, ErrNotFound)
	}

	data, err := s.storage.Get(journey.Filename)
	if err != nil {
		return nil, "", fmt.Errorf("getting journey file: %w", err)
	}

	return data, journey.ContentType, nil
}

// CreateClaim bundles unclaimed journeys and totals their effective days
func (s *Service) CreateClaim(journeyIDs []string) (*Claim, error) {
	if len(journeyIDs) == 0 {
		return nil, errors.New("at least one journey is required")
	}

	s.claimMu.Lock()
	defer s.claimMu.Unlock()

	seen := make(map[string]bool, len(journeyIDs))
	total := decimal.Zero
	for _, journeyID := range journeyIDs {
		if seen[journeyID] {
			return nil, fmt.Errorf("journey %s is listed more than once", journeyID)
		}
		seen[journeyID] = true

		journey, err := s.db.GetJourney(journeyID)
		if err != nil {
			return nil, fmt.Errorf("getting journey %s: %w", journeyID, err)
		}
		if journey.ClaimID != "" {
			return nil, fmt.Errorf("journey %s: %w", journeyID, ErrAlreadyClaimed)
		}

		days, err := decimal.NewFromString(journey.EffectiveDays)
		if err != nil {
			return nil, fmt.Errorf("journey %s has invalid effective days %q: %w", journeyID, journey.EffectiveDays, err)
		}
		total = total.Add(days)
	}

	now := s.timeSource.Now()
	claim := &Claim{
		ID:                 s.idGenerator.Generate(),
		JourneyIDs:         journeyIDs,
		TotalEffectiveDays: total.StringFixed(2),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.db.CommitClaim(claim); err != nil {
		return nil, fmt.Errorf("saving claim: %w", err)
	}

	slog.Info("Claim created",
		"id", claim.ID,
		"journeys", len(claim.JourneyIDs),
		"total_effective_days", claim.TotalEffectiveDays,
	)
	return claim, nil
}

// GetClaim retrieves a claim by ID
func (s *Service) GetClaim(id string) (*Claim, error) {
	claim, err := s.db.GetClaim(id)
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}
	return claim, nil
}

// GetClaimWithJourneys retrieves a claim with its journeys
func (s *Service) GetClaimWithJourneys(id string) (*Claim, []*Journey, error) {
	claim, err := s.db.GetClaim(id)
	if err != nil {
		return nil, nil, fmt.Errorf("getting claim: %w", err)
	}

	journeys := make([]*Journey, 0, len(claim.JourneyIDs))
	for _, journeyID := range claim.JourneyIDs {
		journey, err := s.db.GetJourney(journeyID)
		if err != nil {
			return nil, nil, fmt.Errorf("getting journey %s: %w", journeyID, err)
		}
		journeys = append(journeys, journey)
	}

	return claim, journeys, nil
}

// ListClaims returns all claims, newest first
func (s *Service) ListClaims() ([]*Claim, error) {
	claims, err := s.db.ListClaims()
	if err != nil {
		return nil, fmt.Errorf("listing claims: %w", err)
	}
	slices.SortStableFunc(claims, func(a, b *Claim) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return claims, nil
}
