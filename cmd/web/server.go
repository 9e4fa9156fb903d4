package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/myrjola/stridr/internal/e2etest"
	"github.com/myrjola/stridr/internal/errors"
)

const defaultTimeout = 2 * time.Second

// configureAndStartServer starts the HTTP server and blocks until it shuts
// down. Shutdown starts on SIGINT, SIGTERM or context cancellation.
func (app *application) configureAndStartServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       defaultTimeout,
		ReadHeaderTimeout: defaultTimeout,
		WriteTimeout:      defaultTimeout,
		IdleTimeout:       defaultTimeout,
		ErrorLog:          slog.NewLogLogger(app.logger.Handler(), slog.LevelError),
	}

	shutdownComplete := make(chan struct{})
	go func() {
		defer close(shutdownComplete)

		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		select {
		case <-sigint:
		case <-ctx.Done():
		}

		app.logger.LogAttrs(ctx, slog.LevelInfo, "shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.LogAttrs(ctx, slog.LevelError, "server shutdown failed", errors.SlogError(err))
		}
	}()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrap(err, "listen", slog.String("addr", addr))
	}
	// The listener address is logged so that tests can connect to a
	// dynamically allocated port.
	app.logger.LogAttrs(ctx, slog.LevelInfo, "starting server",
		slog.Any(e2etest.LogAddrKey, listener.Addr().String()))

	if err = srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve")
	}
	<-shutdownComplete
	return nil
}
