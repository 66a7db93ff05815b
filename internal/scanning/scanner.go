package scanning

// ItineraryData holds the raw timestamps read off an itinerary.
// Both are nominally in DD-MM-YYYY HH:MM form and may be empty when the
// model could not find them.
type ItineraryData struct {
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
}

// Scanner defines the interface for itinerary scanning operations
type Scanner interface {
	// ScanItinerary analyzes an itinerary image/PDF and extracts the first
	// departure and the last arrival
	ScanItinerary(imageData []byte, contentType string) (*ItineraryData, error)
	// Close closes the scanner and releases resources
	Close() error
}
