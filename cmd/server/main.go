// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

// Package main is the entry point for the Viewpoint server.
//
// Viewpoint is a self-hosted backend for collaborative geographic
// feedback: field teams join shared sessions, tag what they see from a
// viewpoint (a lat/lng plus a viewing direction), vote on each other's
// tags, and leave free-text feedback. All of it fans out in real time
// to everyone in the same session over WebSockets.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: settings from environment variables and an
//     optional config file (Koanf v2)
//  2. Store: BadgerDB document store for tags, votes, and feedback
//  3. WebSocket Hub: session registry and real-time fan-out
//  4. HTTP Server: REST API, health probes, metrics, and the
//     WebSocket upgrade endpoint
//  5. Supervisor tree: suture-managed lifecycle for all of the above
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, STORAGE_PATH, CORS_ORIGINS...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server handles graceful shutdown on SIGINT and SIGTERM:
//   - Stops accepting new connections
//   - Waits for in-flight requests to complete
//   - Closes every WebSocket client and the store
//
// # Example Usage
//
// Development, in-memory store, any origin:
//
//	export STORAGE_IN_MEMORY=true
//	./viewpoint
//
// Production:
//
//	export STORAGE_PATH=/data/viewpoint
//	export CORS_ORIGINS=https://viewpoint.example.com
//	./viewpoint
//
// # Port 4326
//
// The default port 4326 references EPSG:4326 (WGS84), the lat/lng
// coordinate system viewpoints are keyed by.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/viewpoint/internal/api"
	"github.com/tomtom215/viewpoint/internal/config"
	"github.com/tomtom215/viewpoint/internal/logging"
	"github.com/tomtom215/viewpoint/internal/store"
	"github.com/tomtom215/viewpoint/internal/supervisor"
	"github.com/tomtom215/viewpoint/internal/supervisor/services"
	ws "github.com/tomtom215/viewpoint/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.ListenAddr()).
		Str("storage_path", cfg.Storage.Path).
		Bool("in_memory", cfg.Storage.InMemory).
		Msg("Starting Viewpoint")

	st, err := store.Open(&cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog.
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	hub := ws.NewHub(cfg.WebSocket)

	handler := api.NewHandler(st, hub, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	if !cfg.Storage.InMemory {
		tree.AddStorageService(services.NewStoreGCService(st, cfg.Storage.GCInterval))
	}
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Drain until the supervisor closes the channel.
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Viewpoint stopped gracefully")
}
