// internal/server/handlers/hashtag.go

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"trendcloud/internal/domain/hashtag"
	"trendcloud/internal/service/wordcloud"
)

// HashtagHandler handles hashtag and word cloud HTTP requests
type HashtagHandler struct {
	service hashtag.Service
	log     *zap.Logger
}

// NewHashtagHandler creates a new hashtag handler
func NewHashtagHandler(service hashtag.Service, log *zap.Logger) *HashtagHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &HashtagHandler{
		service: service,
		log:     log,
	}
}

// EntriesResponse is the body of the hashtag list endpoint
type EntriesResponse struct {
	SnapshotID  string          `json:"snapshotId"`
	GeneratedAt time.Time       `json:"generatedAt"`
	Count       int             `json:"count"`
	Entries     []hashtag.Entry `json:"entries"`
}

// CountryResponse describes one contributing country
type CountryResponse struct {
	Code    string `json:"code"`
	Name    string `json:"name"`
	Entries int    `json:"entries"`
}

// SnapshotSummary is returned after a refresh
type SnapshotSummary struct {
	SnapshotID  string         `json:"snapshotId"`
	Generation  uint64         `json:"generation"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Report      hashtag.Report `json:"report"`
}

// GetHashtags returns the filtered and sorted entries
func (h *HashtagHandler) GetHashtags(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	entries, err := h.service.Query(r.Context(), parseQuery(r))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	respondWithJSON(w, http.StatusOK, EntriesResponse{
		SnapshotID:  snap.ID,
		GeneratedAt: snap.GeneratedAt,
		Count:       len(entries),
		Entries:     entries,
	})
}

// GetHashtag returns a single entry by text
func (h *HashtagHandler) GetHashtag(w http.ResponseWriter, r *http.Request) {
	text := chi.URLParam(r, "text")
	if text == "" {
		respondWithError(w, http.StatusBadRequest, "Missing hashtag", nil)
		return
	}

	e, err := h.service.Entry(r.Context(), text)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, e)
}

// GetCountries returns the countries present in the current snapshot
func (h *HashtagHandler) GetCountries(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	counts := make(map[string]int)
	for _, e := range snap.Entries {
		counts[e.Country]++
	}

	countries := make([]CountryResponse, 0, len(counts))
	for code, n := range counts {
		countries = append(countries, CountryResponse{
			Code:    code,
			Name:    hashtag.CountryName(code),
			Entries: n,
		})
	}
	sort.Slice(countries, func(i, j int) bool {
		return countries[i].Code < countries[j].Code
	})

	respondWithJSON(w, http.StatusOK, countries)
}

// GetWordCloud returns one laid-out page. Pages are 1-based on the wire.
func (h *HashtagHandler) GetWordCloud(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		var err error
		page, err = strconv.Atoi(pageStr)
		if err != nil || page < 1 {
			respondWithError(w, http.StatusBadRequest, "Invalid page", err)
			return
		}
	}

	canvas, err := parseCanvas(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid canvas size", err)
		return
	}

	result, err := h.service.Cloud(r.Context(), parseQuery(r), canvas, page-1)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

// Refresh reloads all sources and returns the new snapshot summary
func (h *HashtagHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Refresh(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, SnapshotSummary{
		SnapshotID:  snap.ID,
		Generation:  snap.Generation,
		GeneratedAt: snap.GeneratedAt,
		Report:      snap.Report,
	})
}

func (h *HashtagHandler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hashtag.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Hashtag not found", nil)
	case errors.Is(err, wordcloud.ErrPageOutOfRange):
		respondWithError(w, http.StatusNotFound, "Page out of range", nil)
	case errors.Is(err, hashtag.ErrNoSnapshot):
		respondWithError(w, http.StatusServiceUnavailable, "Hashtag data not loaded yet", nil)
	case errors.Is(err, wordcloud.ErrAllSourcesFailed):
		h.log.Error("Refresh failed", zap.Error(err))
		respondWithError(w, http.StatusBadGateway, "All hashtag sources failed", err)
	default:
		h.log.Error("Hashtag request failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func parseQuery(r *http.Request) hashtag.Query {
	q := r.URL.Query()
	return hashtag.Query{
		Search:  q.Get("search"),
		Country: q.Get("country"),
		SortBy:  hashtag.ParseSortBy(q.Get("sort")),
	}
}

// parseCanvas reads width/height; an omitted dimension selects the service default
func parseCanvas(r *http.Request) (hashtag.Canvas, error) {
	var canvas hashtag.Canvas
	var err error
	if canvas.Width, err = parseDimension(r, "width"); err != nil {
		return canvas, err
	}
	if canvas.Height, err = parseDimension(r, "height"); err != nil {
		return canvas, err
	}
	return canvas, nil
}

func parseDimension(r *http.Request, name string) (float64, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !hashtag.ValidDimension(v) {
		return 0, fmt.Errorf("%s must be a positive finite number", name)
	}
	return v, nil
}
