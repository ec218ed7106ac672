package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"pricepeek/models"
	"pricepeek/scraper"
	"pricepeek/sink"
)

const version = "1.0.0"

// Extractor runs one extraction.
type Extractor interface {
	Run(ctx context.Context, url string) (models.Extraction, error)
}

// HistoryStore reads recorded checks.
type HistoryStore interface {
	ListRecent(ctx context.Context, url string, limit int) ([]models.PriceHistory, error)
}

type Handlers struct {
	extractor Extractor
	recorder  sink.Sink
	history   HistoryStore
	style     models.OutputStyle
	log       *logrus.Logger

	// One browser session at a time.
	mu sync.Mutex
}

// NewHandlers wires the HTTP surface. recorder and history may be nil.
func NewHandlers(extractor Extractor, recorder sink.Sink, history HistoryStore, style models.OutputStyle, logger *logrus.Logger) *Handlers {
	return &Handlers{
		extractor: extractor,
		recorder:  recorder,
		history:   history,
		style:     style,
		log:       logger,
	}
}

// Routes registers every endpoint on r.
func (h *Handlers) Routes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/extract", h.Extract).Methods("POST")
	apiV1.HandleFunc("/history", h.GetPriceHistory).Methods("GET")
}

// HealthCheck returns a simple health check response
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "pricepeek",
		"version":   version,
		"history":   h.history != nil,
	}
	writeJSON(w, http.StatusOK, response)
}

type extractRequest struct {
	URL string `json:"url"`
}

// Extract runs the extractor for one URL and answers with the result line.
func (h *Handlers) Extract(w http.ResponseWriter, r *http.Request) {
	raw, err := requestURL(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	url, err := scraper.NormalizeURL(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	started := time.Now()
	res, err := h.extractor.Run(r.Context(), url)
	h.mu.Unlock()

	if err != nil {
		h.log.WithError(err).WithField("url", url).Error("❌ extraction failed")
		status := http.StatusInternalServerError
		if errors.Is(err, scraper.ErrSessionOpen) {
			status = http.StatusBadGateway
		}
		writeError(w, status, "Could not open the product page")
		return
	}

	check := models.NewCheck(url, res, h.style, started)
	if h.recorder != nil {
		if err := h.recorder.Write(r.Context(), check); err != nil {
			h.log.WithError(err).WithField("url", url).Warn("failed to record check")
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Extraction-Path", string(res.Path))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(check.Line + "\n"))
}

// GetPriceHistory returns recorded checks for a URL
func (h *Handlers) GetPriceHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "Price history requires DATABASE_URL")
		return
	}

	url, err := scraper.NormalizeURL(r.URL.Query().Get("url"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Get limit from query params
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	history, err := h.history.ListRecent(r.Context(), url, limit)
	if err != nil {
		h.log.WithError(err).Error("Failed to get price history")
		writeError(w, http.StatusInternalServerError, "Failed to get price history")
		return
	}

	// Ensure we always return an array, even if empty
	if history == nil {
		history = []models.PriceHistory{}
	}
	writeJSON(w, http.StatusOK, history)
}

// requestURL accepts a JSON body, a form field or a query parameter.
func requestURL(r *http.Request) (string, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", err
		}
		return req.URL, nil
	}
	return r.FormValue("url"), nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
