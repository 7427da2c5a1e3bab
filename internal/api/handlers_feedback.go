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

// ListFeedback handles GET /api/v1/feedback, newest first.
func (h *Handler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	q := r.URL.Query()
	viewpointID := q.Get("viewpointId")
	sessionID := q.Get("sessionId")
	if viewpointID == "" || sessionID == "" {
		rw.BadRequest("viewpointId and sessionId query parameters are required")
		return
	}

	feedback, err := h.store.ListFeedback(r.Context(), viewpointID, sessionID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithMeta(feedback, &APIMeta{Count: len(feedback)})
}

// CreateFeedback handles POST /api/v1/feedback. On a successful write
// the feedback is broadcast to the session wrapped as a "feedback"
// event; a storage failure returns non-2xx and broadcasts nothing.
func (h *Handler) CreateFeedback(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req createFeedbackRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	fb, err := h.store.CreateFeedback(r.Context(), req.ViewpointID, req.SessionID, req.Text, req.Tags)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	logging.Info().
		Str("feedback_id", fb.ID.String()).
		Str("session_id", req.SessionID).
		Str("viewpoint_id", req.ViewpointID).
		Msg("feedback created")

	if h.hub != nil {
		h.hub.BroadcastFeedback(req.SessionID, ws.NewFeedbackEventData(fb))
	}

	rw.Created(fb)
}
