package handlers

import (
	"net/http"
	"strings"

	"github.com/Dosada05/league-portal/services"
)

type ClipHandler struct {
	clipService services.ClipService
}

func NewClipHandler(cs services.ClipService) *ClipHandler {
	return &ClipHandler{clipService: cs}
}

// List serves GET /api/clips?page=N&category=C.
func (h *ClipHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.clipService.ListClips(r.Context(), services.ClipQuery{
		Page:     toInt(q.Get("page"), 1),
		Category: strings.TrimSpace(q.Get("category")),
	})
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, page, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClipHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "clipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	clip, err := h.clipService.GetClip(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, clip, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClipHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, closeFile, err := readFormFile(w, r, "clipFile", services.MaxVideoSize)
	if err != nil {
		mapUploadError(w, r, err)
		return
	}
	defer closeFile()

	input := services.UploadClipInput{
		Title:           strings.TrimSpace(r.FormValue("title")),
		Description:     strings.TrimSpace(r.FormValue("description")),
		Category:        strings.TrimSpace(r.FormValue("category")),
		ClubName:        strings.TrimSpace(r.FormValue("clubName")),
		DurationSeconds: toInt(r.FormValue("durationSeconds"), 0),
	}
	clip, err := h.clipService.UploadClip(r.Context(), input, file)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, clip, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "clipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if err := h.clipService.DeleteClip(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"id": id}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClipHandler) Stats(w http.ResponseWriter, r *http.Request) {
	snap, version, err := h.clipService.Stats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snap.Stats, versionHeader(version)); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClipHandler) Counters(w http.ResponseWriter, r *http.Request) {
	snap, version, err := h.clipService.Stats(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, snap.Counters, versionHeader(version)); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClipHandler) View(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "clipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	clip, version, err := h.clipService.RecordView(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true, "views": clip.Views}, versionHeader(version)); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *ClipHandler) Like(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "clipID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	clip, version, err := h.clipService.Like(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"success": true, "likes": clip.Likes}, versionHeader(version)); err != nil {
		serverErrorResponse(w, r, err)
	}
}
