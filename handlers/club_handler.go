package handlers

import (
	"net/http"

	"github.com/Dosada05/league-portal/services"
)

type ClubHandler struct {
	clubService services.ClubService
}

func NewClubHandler(cs services.ClubService) *ClubHandler {
	return &ClubHandler{clubService: cs}
}

func (h *ClubHandler) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.clubService.ListClubs(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snap.Items, versionHeader(snap.Version)); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	club, err := h.clubService.GetClub(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, club, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input services.CreateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	club, err := h.clubService.CreateClub(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, club, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.UpdateClubInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	club, err := h.clubService.UpdateClub(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, club, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.clubService.DeleteClub(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"id": id}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClubHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	file, closeFile, err := readFormFile(w, r, "logo", services.MaxImageSize)
	if err != nil {
		mapUploadError(w, r, err)
		return
	}
	defer closeFile()

	club, err := h.clubService.UploadLogo(r.Context(), id, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, club, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
