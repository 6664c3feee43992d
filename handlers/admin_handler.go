package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/league-portal/services"
)

type AdminHandler struct {
	adminService services.AdminService
	authService  services.AuthService
	logger       *slog.Logger
}

func NewAdminHandler(as services.AdminService, auth services.AuthService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{adminService: as, authService: auth, logger: logger}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input services.LoginInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	token, err := h.authService.Login(r.Context(), input)
	if err != nil {
		h.logger.Warn("admin login rejected", slog.String("remote_addr", r.RemoteAddr), slog.Any("error", err))
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"token": token}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AdminHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	result, err := h.adminService.Cleanup(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.logger.Info("league data cleaned up",
		slog.Int("teams", result.Teams),
		slog.Int("clubs", result.Clubs),
		slog.Int("players", result.Players),
		slog.Int("matches", result.Matches),
	)
	if err := writeJSON(w, http.StatusOK, result, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
