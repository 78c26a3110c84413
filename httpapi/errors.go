package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/jacentio/shelf/store"
)

// ErrorResponse is the structured error body for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: msg})
}

// storeError maps repository errors onto HTTP responses. Anything outside
// the known taxonomy is an opaque store failure and surfaces as a 500.
func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		renderError(w, r, http.StatusNotFound, "item not found")
	case errors.Is(err, store.ErrAlreadyExists):
		renderError(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrInvalidType),
		errors.Is(err, store.ErrInvalidContent),
		errors.Is(err, store.ErrNoChanges):
		renderError(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("store call failed", "method", r.Method, "path", r.URL.Path, "error", err)
		renderError(w, r, http.StatusInternalServerError, "internal error")
	}
}
