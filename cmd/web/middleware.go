package main

import (
	"crypto/rand"
	"log/slog"
	"net/http"
	"time"

	"github.com/myrjola/stridr/internal/contexthelpers"
	"github.com/myrjola/stridr/internal/errors"
	"github.com/myrjola/stridr/internal/logging"
)

// statusResponseWriter remembers the status code for request logging.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newStatusResponseWriter(w http.ResponseWriter) *statusResponseWriter {
	return &statusResponseWriter{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *statusResponseWriter) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

// Unwrap supports http.ResponseController.
func (w *statusResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func commonHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// logAndTraceRequest tags every log line within the request with a trace ID
// and logs the response status once the handler returns.
func (app *application) logAndTraceRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			method = r.Method
			uri    = r.URL.RequestURI()
		)
		ctx := logging.WithAttrs(r.Context(),
			slog.String("trace_id", rand.Text()),
			slog.String("method", method),
			slog.String("uri", uri))
		r = r.WithContext(ctx)

		statusWriter := newStatusResponseWriter(w)
		start := time.Now()
		next.ServeHTTP(statusWriter, r)

		level := slog.LevelInfo
		if statusWriter.statusCode >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		app.logger.LogAttrs(ctx, level, "request completed",
			slog.Int("status", statusWriter.statusCode),
			slog.Duration("duration", time.Since(start)))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if excp := recover(); excp != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, r, errors.DecoratePanic(excp))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// identify resolves the device identity from the session cookie. First-time
// devices get a user row created on the fly so that the app works without any
// sign-up step.
func (app *application) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userID := app.sessionManager.GetInt64(ctx, "userID")
		if userID == 0 {
			res, err := app.db.ReadWrite.ExecContext(ctx, `INSERT INTO users DEFAULT VALUES`)
			if err != nil {
				app.serverError(w, r, errors.Wrap(err, "create user"))
				return
			}
			if userID, err = res.LastInsertId(); err != nil {
				app.serverError(w, r, errors.Wrap(err, "resolve user id"))
				return
			}
			app.sessionManager.Put(ctx, "userID", userID)
			app.logger.LogAttrs(ctx, slog.LevelInfo, "provisioned new device identity",
				slog.Int64("user_id", userID))
		}

		r = contexthelpers.SetCurrentUserID(r, userID)
		next.ServeHTTP(w, r)
	})
}
