package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/randalmurphal/service-finder/internal/catalog"
	"github.com/randalmurphal/service-finder/internal/search"
)

type handlers struct {
	service *search.Service
	logger  *slog.Logger
}

// SearchResponse is the /api/search payload. Results carry the derived
// primary link and phone URI so clients need no catalog logic.
type SearchResponse struct {
	Query       string            `json:"query"`
	Intent      string            `json:"intent,omitempty"`
	Message     string            `json:"message"`
	Meta        string            `json:"meta"`
	Results     []ResultView      `json:"results"`
	Clarifier   *search.Clarifier `json:"clarifier,omitempty"`
	Suggestions []string          `json:"suggestions,omitempty"`
}

// ResultView is one rendered result.
type ResultView struct {
	Entry       *catalog.Entry `json:"entry"`
	Score       *float64       `json:"score,omitempty"`
	MatchedOn   []string       `json:"matched_on,omitempty"`
	PrimaryLink *catalog.Link  `json:"primary_link,omitempty"`
	PhoneURI    string         `json:"phone_uri,omitempty"`
}

// IntentView describes one intent without its internals.
type IntentView struct {
	ID       string   `json:"id"`
	Message  string   `json:"message"`
	Triggers []string `json:"triggers"`
}

// HealthResponse reports catalog state.
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Entries     int    `json:"entries"`
	Fingerprint string `json:"fingerprint"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	res, err := h.service.Find(ctx, r.URL.Query().Get("q"))
	if err != nil {
		h.logger.WarnContext(ctx, "search failed", "error", err)
		h.writeJSON(w, r, http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
		return
	}

	h.writeJSON(w, r, http.StatusOK, toSearchResponse(res))
}

func (h *handlers) quickStarts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, r, http.StatusOK, h.service.Engine().QuickStarts())
}

func (h *handlers) intents(w http.ResponseWriter, r *http.Request) {
	intents := h.service.Engine().Intents()
	views := make([]IntentView, len(intents))
	for i, in := range intents {
		views[i] = IntentView{ID: in.ID, Message: in.Message, Triggers: in.Triggers}
	}
	h.writeJSON(w, r, http.StatusOK, views)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	cat := h.service.Engine().Catalog()
	h.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Entries:     cat.Len(),
		Fingerprint: cat.Fingerprint(),
	})
}

func (h *handlers) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode response", "path", r.URL.Path, "error", err)
	}
}

func toSearchResponse(res *search.Result) SearchResponse {
	out := SearchResponse{
		Query:       res.Query,
		Intent:      res.Intent,
		Message:     res.Message,
		Meta:        res.Meta,
		Results:     make([]ResultView, len(res.Results)),
		Clarifier:   res.Clarifier,
		Suggestions: res.Suggestions,
	}
	for i, rr := range res.Results {
		out.Results[i] = ResultView{
			Entry:       rr.Entry,
			Score:       rr.Score,
			MatchedOn:   rr.MatchedOn,
			PrimaryLink: rr.Entry.PrimaryLink(),
			PhoneURI:    rr.Entry.PhoneURI(),
		}
	}
	return out
}
