package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseItineraryJSON parses the JSON object returned by a model
func parseItineraryJSON(text string) (*ItineraryData, error) {
	text = stripCodeFence(text)

	// Models sometimes wrap the object in prose; keep the first { to the last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var raw struct {
		Departure *string `json:"departure"`
		Arrival   *string `json:"arrival"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	// Missing or null fields are passed on empty; the calculator reports them
	data := &ItineraryData{}
	if raw.Departure != nil {
		data.Departure = strings.TrimSpace(*raw.Departure)
	}
	if raw.Arrival != nil {
		data.Arrival = strings.TrimSpace(*raw.Arrival)
	}

	return data, nil
}

// stripCodeFence removes a surrounding markdown code block
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
