package rest

import (
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"

	"github.com/fortuna/hardwood/internal/board"
	"github.com/fortuna/hardwood/internal/league"
	"github.com/fortuna/hardwood/internal/platform/logging"
	"github.com/fortuna/hardwood/internal/render"
)

// Handler contains dependencies for HTTP handlers
type Handler struct {
	leagues *league.Table
	store   *board.Store
	pages   *render.Pages
	static  http.Handler
	logger  *logging.Logger
}

// NewHandler creates a new handler
func NewHandler(deps Dependencies) *Handler {
	h := &Handler{
		leagues: deps.Leagues,
		store:   deps.Store,
		pages:   deps.Pages,
		logger:  deps.Logger,
	}
	if deps.Static != nil {
		h.static = http.FileServer(http.FS(deps.Static))
	}
	return h
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "hardwood",
		"leagues": len(h.leagues.Keys()),
		"loaded":  len(h.store.Latest()),
	})
}

type leagueSummary struct {
	Key       string    `json:"key"`
	Label     string    `json:"label"`
	ESPNPath  string    `json:"espn_path"`
	Loaded    bool      `json:"loaded"`
	OK        bool      `json:"ok"`
	Status    string    `json:"status,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// GetLeagues lists the league table with the state of each latest snapshot
func (h *Handler) GetLeagues(w http.ResponseWriter, r *http.Request) {
	all := h.leagues.All()
	out := make([]leagueSummary, 0, len(all))
	for _, l := range all {
		s := leagueSummary{Key: l.Key, Label: l.Label, ESPNPath: l.ESPNPath}
		if snap, ok := h.store.Get(l.Key); ok {
			s.Loaded = true
			s.OK = snap.OK
			s.Status = snap.Status
			s.UpdatedAt = snap.UpdatedAt
		}
		out = append(out, s)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"leagues": out,
	})
}

// GetLeague returns the latest snapshot of one league
func (h *Handler) GetLeague(w http.ResponseWriter, r *http.Request) {
	key := strings.ToLower(mux.Vars(r)["league"])
	if _, ok := h.leagues.Lookup(key); !ok {
		respondError(w, http.StatusNotFound, "Unknown league", board.ErrUnknownLeague)
		return
	}

	snap, ok := h.store.Get(key)
	if !ok {
		respondError(w, http.StatusServiceUnavailable, "League not loaded yet", nil)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// RenderPage serves a page filled with the latest snapshots. Names that are
// not pages fall through to the static file server when one is configured.
func (h *Handler) RenderPage(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["page"]
	if h.pages == nil {
		respondError(w, http.StatusNotFound, "Page not found", render.ErrPageNotFound)
		return
	}

	page, err := h.pages.Render(name)
	switch {
	case errors.Is(err, render.ErrPageNotFound):
		if h.static != nil {
			h.static.ServeHTTP(w, r)
			return
		}
		respondError(w, http.StatusNotFound, "Page not found", err)
		return
	case err != nil:
		h.logger.Error("rendering page failed", "page", name, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to render page", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := sonic.Marshal(data)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Failed to encode response","status":500}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// respondError writes an error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]interface{}{
		"error":  message,
		"status": status,
	}

	if err != nil {
		response["details"] = err.Error()
	}

	respondJSON(w, status, response)
}
