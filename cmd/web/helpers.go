package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/myrjola/stridr/internal/errors"
	"github.com/myrjola/stridr/internal/plan"
	"github.com/myrjola/stridr/internal/profile"
	"github.com/myrjola/stridr/internal/session"
)

const maxRequestBodyBytes = 1 << 20

// writeJSON renders a JSON response. Encoding failures after the header has
// been written can only be logged.
func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.Wrap(err, "decode request body")
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

// serverError logs the error with its trace and renders a generic 500 so that
// internals never leak to the client.
func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", errors.SlogError(err))
	app.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int, err error) {
	app.writeJSON(w, r, status, errorResponse{Error: err.Error()})
}

// respondError maps domain errors to HTTP statuses. Unknown errors are
// treated as server faults.
func (app *application) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, profile.ErrNotFound),
		errors.Is(err, plan.ErrNotFound),
		errors.Is(err, session.ErrNotFound):
		app.clientError(w, r, http.StatusNotFound, err)
	case errors.Is(err, plan.ErrInvalidRequest),
		errors.Is(err, session.ErrInvalidEvent):
		app.clientError(w, r, http.StatusUnprocessableEntity, err)
	case errors.Is(err, session.ErrActiveSession),
		errors.Is(err, session.ErrSessionFinished):
		app.clientError(w, r, http.StatusConflict, err)
	default:
		app.serverError(w, r, err)
	}
}
