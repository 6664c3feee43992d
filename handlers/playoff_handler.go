package handlers

import (
	"net/http"

	"github.com/Dosada05/league-portal/services"
)

type PlayoffHandler struct {
	playoffService services.PlayoffService
}

func NewPlayoffHandler(ps services.PlayoffService) *PlayoffHandler {
	return &PlayoffHandler{playoffService: ps}
}

// GetBracket writes null when no bracket has been drawn yet.
func (h *PlayoffHandler) GetBracket(w http.ResponseWriter, r *http.Request) {
	bracket, version, err := h.playoffService.GetBracket(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, bracket, versionHeader(version)); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayoffHandler) CreateBracket(w http.ResponseWriter, r *http.Request) {
	var input services.CreateBracketInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	bracket, err := h.playoffService.CreateBracket(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, bracket, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayoffHandler) RecordResult(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.PlayoffResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	bracket, err := h.playoffService.RecordResult(r.Context(), matchID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, bracket, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PlayoffHandler) DeleteBracket(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.playoffService.DeleteBracket(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"deleted": deleted}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
