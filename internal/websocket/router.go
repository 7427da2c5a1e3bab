// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package websocket

import (
	"github.com/goccy/go-json"

	"github.com/tomtom215/viewpoint/internal/logging"
	"github.com/tomtom215/viewpoint/internal/metrics"
	"github.com/tomtom215/viewpoint/internal/validation"
)

// Drop reasons recorded when an inbound event is not relayed.
const (
	dropReasonNoSession       = "no_session"
	dropReasonMalformed       = "malformed"
	dropReasonSessionMismatch = "session_mismatch"
	dropReasonUnknownEvent    = "unknown_event"
	dropReasonDisconnected    = "disconnected"
)

// route dispatches one inbound client event. Runs on the hub goroutine.
//
// The router is a relay, not a reconciler: payloads are validated for
// shape, then fanned out verbatim to the sender's session. Duplicate
// tag events are passed through; clients de-duplicate on the persisted
// identifier. Events from clients with no current session are silently
// dropped — that is the normal race during a reconnect, not an error.
func (h *Hub) route(ev inboundEvent) {
	// Lifecycle events outrank inbound traffic, so a disconnect may
	// already have torn this client down: its send channel is closed
	// and it is gone from the registry. Routing such an event would
	// either resurrect the handle as a ghost session member or write to
	// the closed channel, so it is dropped like any other
	// post-disconnect race.
	if !h.isLive(ev.client) {
		metrics.RecordEventDropped(dropReasonDisconnected)
		logging.Debug().
			Str("socket_id", ev.client.socketID).
			Str("event", ev.msg.Type).
			Msg("dropped event from disconnected client")
		return
	}

	switch ev.msg.Type {
	case EventJoinSession:
		h.handleJoinSession(ev)
	case EventNewTag:
		h.handleNewTag(ev)
	case EventTagVoted:
		h.handleTagVoted(ev)
	case EventNewFeedback:
		h.handleNewFeedback(ev)
	default:
		metrics.RecordEventDropped(dropReasonUnknownEvent)
		logging.Debug().
			Str("socket_id", ev.client.socketID).
			Str("event", ev.msg.Type).
			Msg("dropped unknown event")
	}
}

// handleJoinSession drives the join transition. Joining a new session
// implicitly leaves the previous one first; re-joining the current
// session is a no-op that still acknowledges. A missing or invalid
// session identifier is rejected with an error message and no state
// change.
func (h *Hub) handleJoinSession(ev inboundEvent) {
	c := ev.client

	var payload JoinSessionPayload
	if err := json.Unmarshal(ev.msg.Data, &payload); err != nil {
		h.rejectJoin(c, "joinSession payload is not valid JSON")
		return
	}
	if err := validation.ValidateStruct(&payload); err != nil {
		h.rejectJoin(c, "joinSession requires a session identifier")
		return
	}

	h.mu.Lock()
	if c.session != payload.SessionID {
		if c.session != "" {
			h.registry.unregister(c.session, c)
		}
		h.registry.register(payload.SessionID, c)
		c.session = payload.SessionID
	}
	count := h.registry.memberCount(payload.SessionID)
	sessions := h.registry.sessionCount()
	h.mu.Unlock()

	metrics.WSSessions.Set(float64(sessions))
	logging.Info().
		Str("socket_id", c.socketID).
		Str("session_id", payload.SessionID).
		Str("viewpoint_id", payload.Viewpoint.ID()).
		Int("client_count", count).
		Msg("client joined session")

	c.trySend(Message{
		Type: EventSessionJoined,
		Data: SessionJoinedPayload{
			SessionID:   payload.SessionID,
			SocketID:    c.socketID,
			ClientCount: count,
		},
	})
}

// rejectJoin reports a rejected join back to the requesting client.
func (h *Hub) rejectJoin(c *Client, reason string) {
	metrics.RecordEventDropped(dropReasonMalformed)
	logging.Warn().
		Str("socket_id", c.socketID).
		Str("reason", reason).
		Msg("join rejected")
	c.trySend(Message{Type: EventError, Data: ErrorPayload{Message: reason}})
}

// handleNewTag relays a tag-created event to the sender's session as
// tagAdded.
func (h *Hub) handleNewTag(ev inboundEvent) {
	c := ev.client
	if c.session == "" {
		metrics.RecordEventDropped(dropReasonNoSession)
		logging.Debug().Str("socket_id", c.socketID).Msg("dropped newTag from unjoined client")
		return
	}

	var payload TagPayload
	if err := json.Unmarshal(ev.msg.Data, &payload); err != nil {
		h.dropMalformed(c, EventNewTag, err.Error())
		return
	}
	if err := validation.ValidateStruct(&payload); err != nil {
		h.dropMalformed(c, EventNewTag, err.Error())
		return
	}

	h.deliverToSession(c.session, EventTagAdded, Message{Type: EventTagAdded, Data: payload})
}

// handleTagVoted relays a vote-changed event to the sender's session.
// The count was resolved by the store before the client emitted the
// event; the router only checks it is present and non-negative.
func (h *Hub) handleTagVoted(ev inboundEvent) {
	c := ev.client
	if c.session == "" {
		metrics.RecordEventDropped(dropReasonNoSession)
		logging.Debug().Str("socket_id", c.socketID).Msg("dropped tagVoted from unjoined client")
		return
	}

	var payload TagVotedPayload
	if err := json.Unmarshal(ev.msg.Data, &payload); err != nil {
		h.dropMalformed(c, EventTagVoted, err.Error())
		return
	}
	if err := validation.ValidateStruct(&payload); err != nil {
		h.dropMalformed(c, EventTagVoted, err.Error())
		return
	}

	h.deliverToSession(c.session, EventTagVoted, Message{Type: EventTagVoted, Data: payload})
}

// handleNewFeedback relays a feedback-created event to the sender's
// session, wrapped for the "feedback" event. The payload's session must
// match the sender's current session; a mismatch means the event
// belongs to a session the client has already left, so it is dropped
// rather than delivered to the wrong room.
func (h *Hub) handleNewFeedback(ev inboundEvent) {
	c := ev.client
	if c.session == "" {
		metrics.RecordEventDropped(dropReasonNoSession)
		logging.Debug().Str("socket_id", c.socketID).Msg("dropped newFeedback from unjoined client")
		return
	}

	var payload NewFeedbackPayload
	if err := json.Unmarshal(ev.msg.Data, &payload); err != nil {
		h.dropMalformed(c, EventNewFeedback, err.Error())
		return
	}
	if err := validation.ValidateStruct(&payload); err != nil {
		h.dropMalformed(c, EventNewFeedback, err.Error())
		return
	}
	if payload.SessionID != c.session {
		metrics.RecordEventDropped(dropReasonSessionMismatch)
		logging.Debug().
			Str("socket_id", c.socketID).
			Str("payload_session", payload.SessionID).
			Str("current_session", c.session).
			Msg("dropped newFeedback for stale session")
		return
	}

	msg := Message{
		Type: EventFeedback,
		Data: FeedbackEvent{
			Type: EventNewFeedback,
			Data: feedbackEventData(payload, c.socketID),
		},
	}
	h.deliverToSession(c.session, EventFeedback, msg)
}

// dropMalformed logs and counts a malformed payload. Nothing is
// propagated to other clients.
func (h *Hub) dropMalformed(c *Client, event, detail string) {
	metrics.RecordEventDropped(dropReasonMalformed)
	logging.Warn().
		Str("socket_id", c.socketID).
		Str("event", event).
		Str("detail", detail).
		Msg("dropped malformed payload")
}
