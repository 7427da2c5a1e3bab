// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/google/uuid"

	"github.com/tomtom215/viewpoint/internal/config"
	"github.com/tomtom215/viewpoint/internal/logging"
	"github.com/tomtom215/viewpoint/internal/models"
	ws "github.com/tomtom215/viewpoint/internal/websocket"
)

// DataStore is the persistence surface the handlers depend on.
// *store.Store satisfies it; tests may substitute a stub.
type DataStore interface {
	CreateTag(ctx context.Context, name, sessionID string) (*models.Tag, error)
	ListTags(ctx context.Context, sessionID, viewpointID string) ([]models.Tag, error)
	Vote(ctx context.Context, tagID uuid.UUID, sessionID, viewpointID string, direction models.VoteDirection) (int, error)
	CreateFeedback(ctx context.Context, viewpointID, sessionID, text string, tags []string) (*models.Feedback, error)
	ListFeedback(ctx context.Context, viewpointID, sessionID string) ([]models.Feedback, error)
}

// Handler holds the dependencies shared by all HTTP handlers.
type Handler struct {
	store     DataStore
	hub       *ws.Hub
	config    *config.Config
	startTime time.Time
}

// NewHandler creates a handler with the given dependencies. hub may be
// nil, in which case the WebSocket endpoint reports unavailable and
// write endpoints skip broadcasting.
func NewHandler(store DataStore, hub *ws.Hub, cfg *config.Config) *Handler {
	return &Handler{
		store:     store,
		hub:       hub,
		config:    cfg,
		startTime: time.Now(),
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout against slow clients.
func (h *Handler) getUpgrader() gorillaws.Upgrader {
	return gorillaws.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Browsers always send Origin; an empty one means a non-browser
	// client, which is allowed so field tooling can connect.
	if origin == "" {
		return true
	}

	// No config means tests or development; fail open.
	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.Security.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().
		Str("origin", sanitizeLogValue(origin)).
		Msg("WebSocket connection rejected from unauthorized origin")
	return false
}

// sanitizeLogValue strips newlines from untrusted values before they
// reach a log line.
func sanitizeLogValue(v string) string {
	v = strings.ReplaceAll(v, "\n", "")
	v = strings.ReplaceAll(v, "\r", "")
	if len(v) > 256 {
		v = v[:256]
	}
	return v
}
