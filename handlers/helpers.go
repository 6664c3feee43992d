package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/league-portal/models"
	"github.com/Dosada05/league-portal/services"
	"github.com/Dosada05/league-portal/standings"
)

// VersionHeader carries the collection version a GET response was read at.
const VersionHeader = "X-Collection-Version"

// EpochHeader names the server run VersionHeader counts within.
const EpochHeader = "X-Server-Epoch"

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func versionHeader(version uint64) http.Header {
	h := http.Header{}
	h.Set(VersionHeader, strconv.FormatUint(version, 10))
	return h
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	sendError(w, r, status, jsonResponse{"error": message})
}

func sendError(w http.ResponseWriter, r *http.Request, status int, body jsonResponse) {
	if err := writeJSON(w, status, body, nil); err != nil {
		slog.ErrorContext(r.Context(), "failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	message := "the server encountered a problem and could not process your request"
	errorResponse(w, r, http.StatusInternalServerError, message)
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, status int, verr *models.ValidationError) {
	sendError(w, r, status, jsonResponse{"error": verr.Error(), "field": verr.Field})
}

func notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusNotFound, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

// mapServiceErrorToHTTP is the single place service errors become statuses.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	var cerr *standings.ComputationError

	switch {
	case errors.As(err, &verr) && errors.Is(err, models.ErrConflict):
		failedValidationResponse(w, r, http.StatusConflict, verr)
	case errors.As(err, &verr):
		failedValidationResponse(w, r, http.StatusUnprocessableEntity, verr)

	case errors.Is(err, models.ErrNotFound):
		notFoundResponse(w, r, err.Error())

	case errors.As(err, &cerr),
		errors.Is(err, services.ErrUnsupportedFileType):
		badRequestResponse(w, r, err)
	case errors.Is(err, services.ErrFileTooLarge):
		errorResponse(w, r, http.StatusRequestEntityTooLarge, err.Error())

	case errors.Is(err, services.ErrAuthInvalidCredentials),
		errors.Is(err, services.ErrAuthInvalidToken):
		unauthorizedResponse(w, r, err.Error())
	case errors.Is(err, services.ErrAuthDisabled),
		errors.Is(err, services.ErrUploaderMissing):
		errorResponse(w, r, http.StatusServiceUnavailable, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}

// mapUploadError treats a malformed multipart body as a client error and
// defers everything else to mapServiceErrorToHTTP.
func mapUploadError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	if errors.Is(err, services.ErrFileTooLarge) || errors.As(err, &verr) {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	badRequestResponse(w, r, err)
}

func getIDFromURL(r *http.Request, paramName string) (string, error) {
	id := strings.TrimSpace(chi.URLParam(r, paramName))
	if id == "" {
		return "", fmt.Errorf("missing %s in URL path", paramName)
	}
	return id, nil
}

func toInt(s string, def int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return def
}

// readFormFile parses a multipart request and opens one file field. The
// returned close func releases the temp files of the form.
func readFormFile(w http.ResponseWriter, r *http.Request, field string, maxSize int64) (services.FileInput, func(), error) {
	// Allow room for the other form fields on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return services.FileInput{}, nil, fmt.Errorf("%w: limit %d bytes", services.ErrFileTooLarge, maxSize)
		}
		return services.FileInput{}, nil, fmt.Errorf("invalid multipart form: %w", err)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		r.MultipartForm.RemoveAll()
		return services.FileInput{}, nil, models.NewValidationError(field, "a file is required")
	}
	closeFn := func() {
		file.Close()
		r.MultipartForm.RemoveAll()
	}
	return services.FileInput{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Reader:      file,
	}, closeFn, nil
}
