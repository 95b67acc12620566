package rest

import (
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/fortuna/hardwood/internal/board"
	"github.com/fortuna/hardwood/internal/league"
)

// RefreshHandler starts league loads on request.
type RefreshHandler struct {
	leagues   *league.Table
	refresher Refresher
	validate  *validator.Validate
}

// NewRefreshHandler wires the REST layer to the refresher.
func NewRefreshHandler(leagues *league.Table, refresher Refresher) *RefreshHandler {
	return &RefreshHandler{
		leagues:   leagues,
		refresher: refresher,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

type apiRefreshRequest struct {
	Leagues []string `json:"leagues" validate:"omitempty,max=32,dive,required"`
}

// HandleLeagueRefresh handles POST /api/v1/leagues/{league}/refresh
func (h *RefreshHandler) HandleLeagueRefresh(w http.ResponseWriter, r *http.Request) {
	key := strings.ToLower(mux.Vars(r)["league"])
	if _, ok := h.leagues.Lookup(key); !ok {
		respondError(w, http.StatusNotFound, "Unknown league", board.ErrUnknownLeague)
		return
	}
	if h.refresher == nil || !h.refresher.Trigger(key) {
		respondError(w, http.StatusServiceUnavailable, "Refresher is not running", nil)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"league":  key,
		"message": "Refresh started",
	})
}

// HandleRefreshRequest handles POST /api/v1/refresh. An empty body or an
// empty league list refreshes the whole table.
func (h *RefreshHandler) HandleRefreshRequest(w http.ResponseWriter, r *http.Request) {
	var req apiRefreshRequest
	if r.ContentLength != 0 {
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	if err := h.validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	keys := req.Leagues
	if len(keys) == 0 {
		keys = h.leagues.Keys()
	}

	var unknown []string
	for i, k := range keys {
		keys[i] = strings.ToLower(strings.TrimSpace(k))
		if _, ok := h.leagues.Lookup(keys[i]); !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":   "Unknown league",
			"status":  http.StatusBadRequest,
			"leagues": unknown,
		})
		return
	}
	if h.refresher == nil {
		respondError(w, http.StatusServiceUnavailable, "Refresher is not running", nil)
		return
	}

	started := make([]string, 0, len(keys))
	for _, k := range keys {
		if h.refresher.Trigger(k) {
			started = append(started, k)
		}
	}
	if len(started) == 0 {
		respondError(w, http.StatusServiceUnavailable, "Refresher is not running", nil)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]interface{}{
		"started": started,
	})
}

// HandleRefreshStatus handles GET /api/v1/refresh/status
func (h *RefreshHandler) HandleRefreshStatus(w http.ResponseWriter, r *http.Request) {
	if h.refresher == nil {
		respondError(w, http.StatusServiceUnavailable, "Refresher is not running", nil)
		return
	}

	respondJSON(w, http.StatusOK, h.refresher.Status())
}
