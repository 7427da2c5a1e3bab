// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package websocket

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/viewpoint/internal/models"
)

// Event names used on the wire.
const (
	// client -> server
	EventJoinSession = "joinSession"
	EventNewTag      = "newTag"
	EventNewFeedback = "newFeedback"

	// server -> session (tagVoted is bidirectional)
	EventSessionJoined = "sessionJoined"
	EventTagAdded      = "tagAdded"
	EventTagVoted      = "tagVoted"
	EventFeedback      = "feedback"
	EventError         = "error"
)

// Message is the outbound WebSocket envelope.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// inboundMessage is the inbound envelope. Data stays raw until the
// router knows which payload type to decode it into.
type inboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// JoinSessionPayload asks to join a session. The viewpoint is carried
// for observability; membership is keyed by session alone.
type JoinSessionPayload struct {
	SessionID string           `json:"sessionId" validate:"required,session_id"`
	Viewpoint models.Viewpoint `json:"viewpoint"`
}

// SessionJoinedPayload acknowledges a successful (or repeated) join.
// ClientCount is informational; correctness never depends on it.
type SessionJoinedPayload struct {
	SessionID   string `json:"sessionId"`
	SocketID    string `json:"socketId"`
	ClientCount int    `json:"clientCount"`
}

// TagPayload is a tag-created notification. The ID is the persisted
// identifier; receiving clients de-duplicate on it.
type TagPayload struct {
	ID        string    `json:"id" validate:"required"`
	Name      string    `json:"name" validate:"required,max=64"`
	SessionID string    `json:"sessionId" validate:"omitempty,session_id"`
	Votes     int       `json:"votes" validate:"min=0"`
	CreatedAt time.Time `json:"createdAt"`
}

// TagVotedPayload is a vote-changed notification. Votes is the count
// already resolved by the store; the router relays it untouched.
type TagVotedPayload struct {
	TagID       string `json:"tagId" validate:"required"`
	SessionID   string `json:"sessionId" validate:"omitempty,session_id"`
	ViewpointID string `json:"viewpointId" validate:"required,viewpoint_id"`
	Votes       int    `json:"votes" validate:"min=0"`
}

// NewFeedbackPayload is a feedback-created notification from a client.
// SessionID must match the sender's current session.
type NewFeedbackPayload struct {
	ID          string    `json:"id" validate:"required"`
	ViewpointID string    `json:"viewpointId" validate:"required,viewpoint_id"`
	SessionID   string    `json:"sessionId" validate:"required,session_id"`
	Text        string    `json:"text"`
	Tags        []string  `json:"tags"`
	Timestamp   time.Time `json:"timestamp"`
}

// FeedbackEvent is the wrapper delivered under the "feedback" event.
type FeedbackEvent struct {
	Type string            `json:"type"` // always "newFeedback"
	Data FeedbackEventData `json:"data"`
}

// FeedbackEventData is the feedback document plus the socket that
// triggered the broadcast (empty when the HTTP layer triggered it
// server-side).
type FeedbackEventData struct {
	ID          string    `json:"id"`
	ViewpointID string    `json:"viewpointId"`
	SessionID   string    `json:"sessionId"`
	Text        string    `json:"text"`
	Tags        []string  `json:"tags"`
	Timestamp   time.Time `json:"timestamp"`
	SocketID    string    `json:"socketId,omitempty"`
}

// NewFeedbackEventData builds event data from a stored feedback
// document. SocketID stays empty for server-originated broadcasts.
func NewFeedbackEventData(fb *models.Feedback) FeedbackEventData {
	return FeedbackEventData{
		ID:          fb.ID.String(),
		ViewpointID: fb.ViewpointID,
		SessionID:   fb.SessionID,
		Text:        fb.Text,
		Tags:        fb.Tags,
		Timestamp:   fb.Timestamp,
	}
}

// feedbackEventData builds event data from a client-submitted payload.
func feedbackEventData(p NewFeedbackPayload, socketID string) FeedbackEventData {
	return FeedbackEventData{
		ID:          p.ID,
		ViewpointID: p.ViewpointID,
		SessionID:   p.SessionID,
		Text:        p.Text,
		Tags:        p.Tags,
		Timestamp:   p.Timestamp,
		SocketID:    socketID,
	}
}

// ErrorPayload is sent to a single client on a rejected request.
type ErrorPayload struct {
	Message string `json:"message"`
}
