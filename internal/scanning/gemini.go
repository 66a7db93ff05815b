package scanning

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model name is configured
const DefaultGeminiModel = "gemini-2.0-flash"

// Gemini implements the Scanner interface using Google Gemini
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Scanner instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	// Reading timestamps off a page is not a creative task
	model.SetTemperature(0)

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

// ScanItinerary asks Gemini for the first departure and last arrival
func (g *Gemini) ScanItinerary(imageData []byte, contentType string) (*ItineraryData, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pngData, err := toPNG(imageData, contentType)
	if err != nil {
		return nil, err
	}

	// genai.ImageData takes the format suffix, not the full MIME type
	resp, err := g.model.GenerateContent(ctx,
		genai.Text(itineraryScanPrompt),
		genai.ImageData("png", pngData),
	)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	return itineraryFromResponse(resp)
}

// itineraryFromResponse pulls the text parts out of the first candidate
func itineraryFromResponse(resp *genai.GenerateContentResponse) (*ItineraryData, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("no response from gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		// An empty candidate usually means the response was blocked
		if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
			return nil, fmt.Errorf("could not extract data, finish reason %s; the model may have blocked the response for safety reasons", candidate.FinishReason)
		}
		return nil, fmt.Errorf("empty response from gemini")
	}

	var responseText strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	data, err := parseItineraryJSON(responseText.String())
	if err != nil {
		return nil, fmt.Errorf("parsing itinerary data: %w", err)
	}

	return data, nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
