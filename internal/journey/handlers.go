package journey

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/journey-allowance/internal/allowance"
)

// maxUploadSize bounds itinerary uploads; full-resolution phone
// screenshots stay well under it
const maxUploadSize = int64(20 << 20)

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// corsError writes a plain text error response with CORS headers set
func corsError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	http.Error(w, message, code)
}

// writeJSON encodes v as the response body
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeJSONError writes {"error": message} with CORS headers set
func writeJSONError(w http.ResponseWriter, message string, code int) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{"error": message})
}

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case allowance.IsCalculationError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyClaimed):
		return http.StatusConflict
	case errors.Is(err, ErrScanFailed):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleStaticCSS serves the stylesheet
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Write(appCSS)
}

// handleStaticJS serves the script
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	setCORSHeaders(w)
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(appJS)
}

type timestampsRequest struct {
	Title     string `json:"title"`
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
}

// handleCalculate computes a report from typed-in timestamps
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req timestampsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	report, err := s.service.Calculate(req.Departure, req.Arrival)
	if err != nil {
		writeJSONError(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// handleCreateManualJourney saves a journey from typed-in timestamps
func (s *Server) handleCreateManualJourney(w http.ResponseWriter, r *http.Request) {
	var req timestampsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	journey, err := s.service.SaveManualJourney(req.Title, req.Departure, req.Arrival)
	if err != nil {
		slog.Error("Error saving manual journey", "error", err)
		writeJSONError(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusCreated, journey)
}

// detectContentType falls back to the extension, then to sniffing
func detectContentType(header string, filename string, data []byte) string {
	contentType := strings.ToLower(strings.TrimSpace(header))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}

	return http.DetectContentType(data)
}

// handleUploadItinerary handles an itinerary upload
func (s *Server) handleUploadItinerary(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		message := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message = "File is too large. Maximum size is 20MB."
		}
		writeJSONError(w, message, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		message := "No file provided"
		if errors.Is(err, http.ErrMissingFile) {
			message = "No itinerary was selected. Please paste or choose an image."
		}
		writeJSONError(w, message, http.StatusBadRequest)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeJSONError(w, "Error reading file. Please try again.", http.StatusInternalServerError)
		return
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), header.Filename, data)

	journey, err := s.service.ProcessItinerary(header.Filename, r.FormValue("title"), data, contentType)
	if err != nil {
		slog.Error("Error processing itinerary", "filename", header.Filename, "error", err)
		writeJSONError(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusCreated, journey)
}

// handleListJourneys returns all journeys
func (s *Server) handleListJourneys(w http.ResponseWriter, r *http.Request) {
	journeys, err := s.service.ListJourneys()
	if err != nil {
		slog.Error("Error listing journeys", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, journeys)
}

// handleGetJourney returns a single journey
func (s *Server) handleGetJourney(w http.ResponseWriter, r *http.Request) {
	journey, err := s.service.GetJourney(r.PathValue("id"))
	if err != nil {
		corsError(w, "Journey not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, journey)
}

// handleGetJourneyFile returns the itinerary image for a journey
func (s *Server) handleGetJourneyFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetJourneyFile(r.PathValue("id"))
	if err != nil {
		corsError(w, "File not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

// handleDeleteJourney deletes a journey
func (s *Server) handleDeleteJourney(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteJourney(r.PathValue("id")); err != nil {
		switch code := statusFor(err); code {
		case http.StatusNotFound, http.StatusConflict:
			corsError(w, err.Error(), code)
		default:
			slog.Error("Error deleting journey", "error", err)
			corsError(w, "Error deleting journey", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleListClaims returns all claims
func (s *Server) handleListClaims(w http.ResponseWriter, r *http.Request) {
	claims, err := s.service.ListClaims()
	if err != nil {
		slog.Error("Error listing claims", "error", err)
		corsError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, claims)
}

// handleCreateClaim bundles journeys into a claim
func (s *Server) handleCreateClaim(w http.ResponseWriter, r *http.Request) {
	var req struct {
		JourneyIDs []string `json:"journey_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	claim, err := s.service.CreateClaim(req.JourneyIDs)
	if err != nil {
		slog.Error("Error creating claim", "error", err)
		writeJSONError(w, err.Error(), statusFor(err))
		return
	}

	writeJSON(w, http.StatusCreated, claim)
}

// handleGetClaim returns a claim with its journeys
func (s *Server) handleGetClaim(w http.ResponseWriter, r *http.Request) {
	claim, journeys, err := s.service.GetClaimWithJourneys(r.PathValue("id"))
	if err != nil {
		corsError(w, "Claim not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"claim":    claim,
		"journeys": journeys,
	})
}
