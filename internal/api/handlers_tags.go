// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/tomtom215/viewpoint/internal/logging"
	"github.com/tomtom215/viewpoint/internal/models"
	"github.com/tomtom215/viewpoint/internal/store"
	ws "github.com/tomtom215/viewpoint/internal/websocket"
)

// viewpointFromQuery assembles a viewpoint from lat/lng/dir query
// parameters. All three empty yields a zero viewpoint.
func viewpointFromQuery(r *http.Request) models.Viewpoint {
	q := r.URL.Query()
	return models.Viewpoint{
		Lat:       q.Get("lat"),
		Lng:       q.Get("lng"),
		Direction: q.Get("dir"),
	}
}

// ListTags handles GET /api/v1/tags. Tags are scoped to the session;
// vote counts are resolved against the viewpoint in the query, so the
// same tag can show different counts from different viewpoints.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		rw.BadRequest("sessionId query parameter is required")
		return
	}

	vp := viewpointFromQuery(r)
	viewpointID := ""
	if !vp.IsZero() {
		viewpointID = vp.ID()
	}

	tags, err := h.store.ListTags(r.Context(), sessionID, viewpointID)
	if err != nil {
		rw.DatabaseError(err)
		return
	}

	rw.SuccessWithMeta(tags, &APIMeta{Count: len(tags)})
}

// CreateTag handles POST /api/v1/tags. Tag names are unique within a
// session; a duplicate returns 409 so the client can fall back to
// voting on the existing tag.
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req createTagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tag, err := h.store.CreateTag(r.Context(), req.Name, req.SessionID)
	if err != nil {
		if errors.Is(err, store.ErrTagExists) {
			rw.Conflict("a tag with this name already exists in the session")
			return
		}
		rw.DatabaseError(err)
		return
	}

	logging.Info().
		Str("tag_id", tag.ID.String()).
		Str("session_id", req.SessionID).
		Msg("tag created")

	rw.Created(tag)
}

// VoteTag handles PUT /api/v1/tags. The write resolves the new count;
// only after it succeeds is tagVoted broadcast to the session, so
// clients never see a count the store did not commit.
func (h *Handler) VoteTag(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req voteTagRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	tagID, err := uuid.Parse(req.TagID)
	if err != nil {
		rw.BadRequest("tagId is not a valid UUID")
		return
	}

	viewpointID := req.viewpoint().ID()
	votes, err := h.store.Vote(r.Context(), tagID, req.SessionID, viewpointID, models.VoteDirection(req.Action))
	if err != nil {
		if errors.Is(err, store.ErrTagNotFound) {
			rw.NotFound("tag not found")
			return
		}
		rw.DatabaseError(err)
		return
	}

	if h.hub != nil {
		h.hub.BroadcastTagVoted(req.SessionID, ws.TagVotedPayload{
			TagID:       req.TagID,
			SessionID:   req.SessionID,
			ViewpointID: viewpointID,
			Votes:       votes,
		})
	}

	rw.Success(map[string]interface{}{
		"tagId":       req.TagID,
		"viewpointId": viewpointID,
		"votes":       votes,
	})
}
