package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/codey22/notespace/internal/logging"
	"github.com/codey22/notespace/internal/note"
	"github.com/codey22/notespace/internal/session"

	"github.com/go-chi/chi/v5"
)

var (
	ErrBadJSON         = errors.New("invalid JSON body")
	ErrTooManyAttempts = errors.New("Too many attempts, try again later")
)

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{Success: true, Data: data})
}

// statusFor maps domain errors onto the response status and client message.
// Anything unrecognised is a 500 carrying the error text.
func statusFor(err error) (int, string) {
	var ve *note.ValidationError
	switch {
	case errors.Is(err, session.ErrUnauthenticated):
		return http.StatusUnauthorized, "User ID is required"
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, ErrBadJSON):
		return http.StatusBadRequest, ErrBadJSON.Error()
	case errors.Is(err, note.ErrNotFound):
		return http.StatusNotFound, "Note not found"
	case errors.Is(err, note.ErrConflict):
		return http.StatusConflict, "Already Taken"
	case errors.Is(err, note.ErrNoPassword):
		return http.StatusBadRequest, "No password set"
	case errors.Is(err, note.ErrInvalidPassword):
		return http.StatusUnauthorized, "Invalid password"
	case errors.Is(err, ErrTooManyAttempts):
		return http.StatusTooManyRequests, ErrTooManyAttempts.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// Fail returns an error writer for middleware that must answer in the same
// shape as the handlers.
func Fail(log logging.Logger) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		writeError(w, r, log, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, envelope{Success: false, Error: msg})
}

// decode reads a JSON body; an empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return ErrBadJSON
	}
	return nil
}

// SlugParam returns the decoded {slug} path value. Slugs may contain '^',
// which clients percent-encode.
func SlugParam(r *http.Request) string {
	raw := chi.URLParam(r, "slug")
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}

func ownerID(r *http.Request) string {
	id, _ := session.OwnerIDFromContext(r.Context())
	return id
}
