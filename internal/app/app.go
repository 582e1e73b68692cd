// Package app provides application lifecycle management for statusbot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/mcstatusbot/statusbot/internal/config"
	"github.com/mcstatusbot/statusbot/internal/store"
)

// StatusBotApp wires the sync coordinator, the delegate reporter and the HTTP
// API together and manages their lifecycle
type StatusBotApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
	background sync.WaitGroup
}

// Start starts the background components and the HTTP server.
// This method blocks until the HTTP server stops or encounters an error.
func (app *StatusBotApp) Start() error {
	app.background.Go(func() {
		if err := app.components.SyncCoordinator.Start(app.ctx); err != nil {
			slog.Error("Sync coordinator failed", "error", err)
		}
	})

	if w, ok := app.components.Store.(store.Watcher); ok {
		app.background.Go(func() {
			if err := w.Watch(app.ctx); err != nil {
				slog.Error("Store watcher failed", "error", err)
			}
		})
	}

	if app.components.Reporter != nil {
		app.background.Go(func() {
			if err := app.components.Reporter.Start(app.ctx); err != nil {
				slog.Error("Delegate reporter failed", "error", err)
			}
		})
	}

	slog.Info("Server listening", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the application with the given timeout.
// The coordinator finishes its running pass before the store is released.
func (app *StatusBotApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	if err := app.components.SyncCoordinator.Stop(); err != nil {
		slog.Error("Failed to stop sync coordinator", "error", err)
	}
	if app.components.Reporter != nil {
		if err := app.components.Reporter.Stop(); err != nil {
			slog.Error("Failed to stop delegate reporter", "error", err)
		}
	}

	if app.cancelFunc != nil {
		app.cancelFunc()
	}
	app.background.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := app.httpServer.Shutdown(shutdownCtx)
	app.components.close(shutdownCtx)
	if err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *StatusBotApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server
func (app *StatusBotApp) GetHTTPServer() *http.Server {
	return app.httpServer
}

// Components returns the built components
func (app *StatusBotApp) Components() *AppComponents {
	return app.components
}
