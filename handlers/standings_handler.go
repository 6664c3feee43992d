package handlers

import (
	"net/http"

	"github.com/Dosada05/league-portal/services"
)

type StandingsHandler struct {
	standingsService services.StandingsService
}

func NewStandingsHandler(ss services.StandingsService) *StandingsHandler {
	return &StandingsHandler{standingsService: ss}
}

func (h *StandingsHandler) Standings(w http.ResponseWriter, r *http.Request) {
	rows, version, err := h.standingsService.Standings(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, rows, versionHeader(version)); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Leaderboard serves GET /api/leaderboard?metric=goals|assists&limit=N.
func (h *StandingsHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := toInt(q.Get("limit"), services.DefaultLeaderboardLimit)

	result, err := h.standingsService.Leaderboard(r.Context(), q.Get("metric"), limit)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *StandingsHandler) Settings(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, h.standingsService.Settings(r.Context()), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
