// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package api

import (
	"net/http"

	"github.com/tomtom215/viewpoint/internal/logging"
	ws "github.com/tomtom215/viewpoint/internal/websocket"
)

// WebSocket handles GET /api/v1/ws: upgrades the connection and hands
// it to the hub. The client joins a session afterwards over the socket
// itself via a joinSession event.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		logging.Warn().Msg("WebSocket connection rejected: hub not initialized")
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket service unavailable")
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logging.Error().Err(err).Msg("WebSocket upgrade error")
		return
	}

	client := ws.NewClient(h.hub, conn)
	logging.Info().
		Str("socket_id", client.SocketID()).
		Str("remote_addr", sanitizeLogValue(r.RemoteAddr)).
		Msg("client connected")
	client.Start()
}
