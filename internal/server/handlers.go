package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	bgg "github.com/secondturn-games/second-turn-games-sub000/go-bgg"
	"github.com/secondturn-games/second-turn-games-sub000/internal/cache"
	"github.com/secondturn-games/second-turn-games-sub000/internal/langmatch"
)

// Backend is the set of service operations the API exposes.
type Backend interface {
	Search(ctx context.Context, query string, filters bgg.Filters) ([]bgg.SearchResult, error)
	GetGameDetails(ctx context.Context, id string) (*bgg.GameDetails, error)
	GetLanguageMatchedVersions(id string) []langmatch.LanguageMatchedVersion
	GetCacheStats() cache.Stats
	ClearCache(ctx context.Context)
}

// Handler serves the API routes.
type Handler struct {
	backend Backend
	version string
	started time.Time
}

// NewHandler creates a new handler.
func NewHandler(backend Backend, version string) *Handler {
	return &Handler{
		backend: backend,
		version: version,
		started: time.Now(),
	}
}

// SearchResponse is the payload of GET /api/v1/search.
type SearchResponse struct {
	Query   string             `json:"query"`
	Type    string             `json:"type,omitempty"`
	Count   int                `json:"count"`
	Results []bgg.SearchResult `json:"results"`
}

// Search handles GET /api/v1/search?q=&type=
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if strings.TrimSpace(query) == "" {
		writeError(w, badRequest("q is required"))
		return
	}

	gameType := bgg.FilterGameType(r.URL.Query().Get("type"))
	switch gameType {
	case bgg.FilterAll, bgg.FilterBaseGame, bgg.FilterExpansion:
	default:
		writeError(w, badRequest("type must be base-game or expansion"))
		return
	}

	results, err := h.backend.Search(r.Context(), query, bgg.Filters{GameType: gameType})
	if err != nil {
		writeError(w, err)
		return
	}

	writeOK(w, SearchResponse{
		Query:   query,
		Type:    string(gameType),
		Count:   len(results),
		Results: results,
	})
}

// GameDetails handles GET /api/v1/games/{id}
func (h *Handler) GameDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		writeError(w, invalidGameID())
		return
	}

	details, err := h.backend.GetGameDetails(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if details == nil {
		writeError(w, gameNotFound())
		return
	}

	writeOK(w, details)
}

// VersionsResponse is the payload of GET /api/v1/games/{id}/versions.
type VersionsResponse struct {
	GameID   string                             `json:"game_id"`
	Count    int                                `json:"count"`
	Versions []langmatch.LanguageMatchedVersion `json:"versions"`
}

// Versions handles GET /api/v1/games/{id}/versions
func (h *Handler) Versions(w http.ResponseWriter, r *http.Request) {
	id, ok := gameID(r)
	if !ok {
		writeError(w, invalidGameID())
		return
	}

	versions := h.backend.GetLanguageMatchedVersions(id)
	writeOK(w, VersionsResponse{
		GameID:   id,
		Count:    len(versions),
		Versions: versions,
	})
}

// CacheStats handles GET /api/v1/cache/stats
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeOK(w, h.backend.GetCacheStats())
}

// ClearCache handles DELETE /api/v1/cache
func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	h.backend.ClearCache(r.Context())
	writeOK(w, map[string]any{
		"cleared": true,
		"stats":   h.backend.GetCacheStats(),
	})
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	Version       string    `json:"version"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	writeOK(w, HealthResponse{
		Status:        "healthy",
		Timestamp:     time.Now().UTC(),
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
	})
}

// gameID returns the {id} URL parameter when it is a positive integer.
func gameID(r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == 0 {
		return "", false
	}
	return id, true
}
