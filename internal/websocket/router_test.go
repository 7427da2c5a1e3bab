// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package websocket

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

func TestTagRelayIsSessionScoped(t *testing.T) {
	hub := setupHub(t)
	x := createTestClient(hub)
	y := createTestClient(hub)
	z := createTestClient(hub)
	registerClient(t, hub, x)
	registerClient(t, hub, y)
	registerClient(t, hub, z)
	joinSession(t, hub, x, "S1")
	joinSession(t, hub, y, "S1")
	joinSession(t, hub, z, "S2")

	tagID := uuid.NewString()
	sendEvent(t, hub, x, EventNewTag, TagPayload{ID: tagID, Name: "quiet", SessionID: "S1"})

	for _, member := range []*Client{x, y} {
		msg := receiveMessage(t, member)
		if msg.Type != EventTagAdded {
			t.Fatalf("expected tagAdded, got %s", msg.Type)
		}
		payload := msg.Data.(TagPayload)
		if payload.ID != tagID || payload.Name != "quiet" {
			t.Errorf("relayed payload wrong: %+v", payload)
		}
	}
	expectNoMessage(t, z)
}

func TestVoteRelayPreservesCounts(t *testing.T) {
	hub := setupHub(t)
	x := createTestClient(hub)
	y := createTestClient(hub)
	registerClient(t, hub, x)
	registerClient(t, hub, y)
	joinSession(t, hub, x, "S1")
	joinSession(t, hub, y, "S1")

	tagID := uuid.NewString()
	for _, want := range []int{1, 2} {
		sendEvent(t, hub, x, EventTagVoted, TagVotedPayload{
			TagID:       tagID,
			SessionID:   "S1",
			ViewpointID: "10.0--20.0-90",
			Votes:       want,
		})
		msg := receiveMessage(t, y)
		if msg.Type != EventTagVoted {
			t.Fatalf("expected tagVoted, got %s", msg.Type)
		}
		if got := msg.Data.(TagVotedPayload).Votes; got != want {
			t.Errorf("relayed votes = %d, want %d", got, want)
		}
		receiveMessage(t, x) // sender receives its own relay too
	}
}

func TestEventFromUnjoinedClientDropped(t *testing.T) {
	hub := setupHub(t)
	c := createTestClient(hub)
	registerClient(t, hub, c)

	sendEvent(t, hub, c, EventNewTag, TagPayload{ID: uuid.NewString(), Name: "orphan"})
	sendEvent(t, hub, c, EventTagVoted, TagVotedPayload{
		TagID: uuid.NewString(), ViewpointID: "1-2-3", Votes: 1,
	})
	expectNoMessage(t, c)
}

func TestMalformedPayloadsDropped(t *testing.T) {
	hub := setupHub(t)
	x := createTestClient(hub)
	y := createTestClient(hub)
	registerClient(t, hub, x)
	registerClient(t, hub, y)
	joinSession(t, hub, x, "S1")
	joinSession(t, hub, y, "S1")

	tests := []struct {
		name  string
		event string
		raw   string
	}{
		{"tag without id", EventNewTag, `{"name":"quiet"}`},
		{"tag with invalid json", EventNewTag, `{"name":`},
		{"vote without viewpoint", EventTagVoted, `{"tagId":"t1","votes":1}`},
		{"vote with negative count", EventTagVoted, `{"tagId":"t1","viewpointId":"1-2-3","votes":-1}`},
		{"feedback without session", EventNewFeedback, `{"viewpointId":"1-2-3","text":"hi"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub.inbound <- inboundEvent{
				client: x,
				msg:    inboundMessage{Type: tt.event, Data: json.RawMessage(tt.raw)},
			}
			expectNoMessage(t, y)
		})
	}
}

func TestUnknownEventDropped(t *testing.T) {
	hub := setupHub(t)
	c := createTestClient(hub)
	registerClient(t, hub, c)
	joinSession(t, hub, c, "S1")

	hub.inbound <- inboundEvent{
		client: c,
		msg:    inboundMessage{Type: "teleport", Data: json.RawMessage(`{}`)},
	}
	expectNoMessage(t, c)
}

func TestFeedbackRelayWrapsPayload(t *testing.T) {
	hub := setupHub(t)
	x := createTestClient(hub)
	y := createTestClient(hub)
	registerClient(t, hub, x)
	registerClient(t, hub, y)
	joinSession(t, hub, x, "S1")
	joinSession(t, hub, y, "S1")

	sendEvent(t, hub, x, EventNewFeedback, NewFeedbackPayload{
		ID:          uuid.NewString(),
		ViewpointID: "10.0--20.0-90",
		SessionID:   "S1",
		Text:        "too windy",
		Tags:        []string{"windy"},
		Timestamp:   time.Now(),
	})

	msg := receiveMessage(t, y)
	if msg.Type != EventFeedback {
		t.Fatalf("expected feedback event, got %s", msg.Type)
	}
	wrapped := msg.Data.(FeedbackEvent)
	if wrapped.Type != EventNewFeedback {
		t.Errorf("wrapper type = %q, want newFeedback", wrapped.Type)
	}
	if wrapped.Data.Text != "too windy" {
		t.Errorf("wrapper text = %q", wrapped.Data.Text)
	}
	if wrapped.Data.SocketID != x.socketID {
		t.Errorf("wrapper socket = %q, want sender %q", wrapped.Data.SocketID, x.socketID)
	}
}

func TestFeedbackForStaleSessionDropped(t *testing.T) {
	hub := setupHub(t)
	x := createTestClient(hub)
	y := createTestClient(hub)
	registerClient(t, hub, x)
	registerClient(t, hub, y)
	joinSession(t, hub, x, "S2") // x has moved on from S1
	joinSession(t, hub, y, "S1")

	sendEvent(t, hub, x, EventNewFeedback, NewFeedbackPayload{
		ID:          uuid.NewString(),
		ViewpointID: "1-2-3",
		SessionID:   "S1",
		Text:        "stale",
		Timestamp:   time.Now(),
	})

	expectNoMessage(t, y)
	expectNoMessage(t, x)
}
