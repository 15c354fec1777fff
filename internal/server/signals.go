package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"
)

// SignalHandler manages graceful shutdown of the HTTP server
type SignalHandler struct {
	server          *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

// NewSignalHandler creates a new signal handler
func NewSignalHandler(server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) *SignalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SignalHandler{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		logger:          logger,
	}
}

// WaitForShutdown blocks until SIGINT/SIGTERM arrives, ctx is cancelled, or
// the server reports a fatal error on serveErr, then shuts the server down.
func (sh *SignalHandler) WaitForShutdown(ctx context.Context, serveErr <-chan error) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	sh.logger.Info("Initiating graceful shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), sh.shutdownTimeout)
	defer cancel()

	if err := sh.server.Shutdown(shutdownCtx); err != nil {
		sh.logger.Error("Server forced to shutdown", "error", err)
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	sh.logger.Info("Server gracefully shut down")
	return nil
}

// HandleSignals starts the server and blocks until it has shut down
func HandleSignals(ctx context.Context, server *http.Server, shutdownTimeout time.Duration, logger *slog.Logger) error {
	handler := NewSignalHandler(server, shutdownTimeout, logger)

	serveErr := make(chan error, 1)
	go func() {
		handler.logger.Info("Starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	return handler.WaitForShutdown(ctx, serveErr)
}
