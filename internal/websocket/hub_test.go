// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package websocket

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/viewpoint/internal/config"
	"github.com/tomtom215/viewpoint/internal/logging"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "info", Format: "console", Output: io.Discard})
}

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		WriteWait:      time.Second,
		PongWait:       time.Second,
		MaxMessageSize: 32 * 1024,
		SendBuffer:     16,
		InboundRate:    1000,
		InboundBurst:   1000,
	}
}

// setupHub creates and starts a hub for testing, stopping it with the
// test's cleanup.
func setupHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(testWSConfig())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// createTestClient creates a client handle without a real connection.
func createTestClient(hub *Hub) *Client {
	return &Client{
		id:       clientIDCounter.Add(1),
		socketID: uuid.New().String(),
		hub:      hub,
		send:     make(chan Message, hub.cfg.SendBuffer),
	}
}

// registerClient registers a client and waits for the hub to process it.
func registerClient(t *testing.T, hub *Hub, c *Client) {
	t.Helper()
	hub.Register <- c
	waitFor(t, func() bool { return hub.ClientCount() > 0 })
}

// sendEvent injects an inbound event as if it arrived on c's connection.
func sendEvent(t *testing.T, hub *Hub, c *Client, event string, payload interface{}) {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	hub.inbound <- inboundEvent{client: c, msg: inboundMessage{Type: event, Data: data}}
}

// joinSession joins c to a session and consumes the ack.
func joinSession(t *testing.T, hub *Hub, c *Client, sessionID string) SessionJoinedPayload {
	t.Helper()
	sendEvent(t, hub, c, EventJoinSession, JoinSessionPayload{SessionID: sessionID})
	msg := receiveMessage(t, c)
	if msg.Type != EventSessionJoined {
		t.Fatalf("expected %s ack, got %s", EventSessionJoined, msg.Type)
	}
	ack, ok := msg.Data.(SessionJoinedPayload)
	if !ok {
		t.Fatalf("ack data type = %T", msg.Data)
	}
	return ack
}

// receiveMessage reads one message from c's send queue.
func receiveMessage(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed while expecting a message")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

// expectNoMessage asserts nothing is queued for c.
func expectNoMessage(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.send:
		t.Fatalf("unexpected message %q delivered", msg.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestNewHub(t *testing.T) {
	hub := NewHub(testWSConfig())

	checks := []struct {
		name  string
		check bool
	}{
		{"clients map initialized", hub.clients != nil},
		{"registry initialized", hub.registry != nil},
		{"Register channel initialized", hub.Register != nil},
		{"Unregister channel initialized", hub.Unregister != nil},
		{"inbound channel initialized", hub.inbound != nil},
		{"broadcast channel initialized", hub.broadcast != nil},
		{"no clients", hub.ClientCount() == 0},
		{"no sessions", hub.SessionCount() == 0},
	}

	for _, c := range checks {
		if !c.check {
			t.Error(c.name)
		}
	}
}

func TestRegisterAndUnregister(t *testing.T) {
	hub := setupHub(t)
	c := createTestClient(hub)

	registerClient(t, hub, c)
	if got := hub.ClientCount(); got != 1 {
		t.Errorf("ClientCount = %d, want 1", got)
	}

	hub.Unregister <- c
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
}

func TestJoinSessionAck(t *testing.T) {
	hub := setupHub(t)
	c := createTestClient(hub)
	registerClient(t, hub, c)

	ack := joinSession(t, hub, c, "S1")

	if ack.SessionID != "S1" {
		t.Errorf("ack session = %q, want S1", ack.SessionID)
	}
	if ack.SocketID != c.socketID {
		t.Errorf("ack socket = %q, want %q", ack.SocketID, c.socketID)
	}
	if ack.ClientCount != 1 {
		t.Errorf("ack client count = %d, want 1", ack.ClientCount)
	}
	if got := hub.MemberCount("S1"); got != 1 {
		t.Errorf("MemberCount(S1) = %d, want 1", got)
	}
}

func TestJoinRejectsEmptySession(t *testing.T) {
	hub := setupHub(t)
	c := createTestClient(hub)
	registerClient(t, hub, c)

	sendEvent(t, hub, c, EventJoinSession, JoinSessionPayload{SessionID: ""})

	msg := receiveMessage(t, c)
	if msg.Type != EventError {
		t.Errorf("expected error event, got %s", msg.Type)
	}
	if hub.SessionCount() != 0 {
		t.Error("rejected join must not create a session")
	}
}

func TestRejoinSameSessionIsIdempotent(t *testing.T) {
	hub := setupHub(t)
	c := createTestClient(hub)
	registerClient(t, hub, c)

	joinSession(t, hub, c, "S1")
	ack := joinSession(t, hub, c, "S1") // still acknowledged

	if ack.ClientCount != 1 {
		t.Errorf("client count after rejoin = %d, want 1", ack.ClientCount)
	}
	if got := hub.MemberCount("S1"); got != 1 {
		t.Errorf("MemberCount(S1) = %d, want 1 after rejoin", got)
	}
}

func TestJoinSwitchesSession(t *testing.T) {
	hub := setupHub(t)
	x := createTestClient(hub)
	y := createTestClient(hub)
	registerClient(t, hub, x)
	registerClient(t, hub, y)

	joinSession(t, hub, x, "S1")
	joinSession(t, hub, y, "S1")
	joinSession(t, hub, x, "S2")

	if got := hub.MemberCount("S1"); got != 1 {
		t.Errorf("MemberCount(S1) = %d, want 1 after switch", got)
	}
	if got := hub.MemberCount("S2"); got != 1 {
		t.Errorf("MemberCount(S2) = %d, want 1", got)
	}

	// An event broadcast to S1 after the switch must not reach x.
	sendEvent(t, hub, y, EventNewTag, TagPayload{ID: uuid.NewString(), Name: "noisy"})
	msg := receiveMessage(t, y)
	if msg.Type != EventTagAdded {
		t.Fatalf("y expected tagAdded, got %s", msg.Type)
	}
	expectNoMessage(t, x)
}

func TestDisconnectCleansUpMembership(t *testing.T) {
	hub := setupHub(t)
	c := createTestClient(hub)
	registerClient(t, hub, c)
	joinSession(t, hub, c, "S1")

	hub.Unregister <- c
	waitFor(t, func() bool { return hub.ClientCount() == 0 })

	if got := hub.MemberCount("S1"); got != 0 {
		t.Errorf("MemberCount(S1) = %d, want 0 after disconnect", got)
	}
	if got := hub.SessionCount(); got != 0 {
		t.Errorf("SessionCount = %d, want 0 (empty session must be removed)", got)
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	hub := setupHub(t)
	c := createTestClient(hub)
	registerClient(t, hub, c)
	joinSession(t, hub, c, "S1")

	hub.Unregister <- c
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
	// A second unregister for the same handle must be a no-op, not a
	// double close.
	hub.Unregister <- c
	waitFor(t, func() bool { return hub.ClientCount() == 0 && hub.SessionCount() == 0 })
}

func TestBroadcastFeedbackIsSessionScoped(t *testing.T) {
	hub := setupHub(t)
	x := createTestClient(hub)
	z := createTestClient(hub)
	registerClient(t, hub, x)
	registerClient(t, hub, z)
	joinSession(t, hub, x, "S1")
	joinSession(t, hub, z, "S2")

	hub.BroadcastFeedback("S1", FeedbackEventData{
		ID:          uuid.NewString(),
		ViewpointID: "10.0--20.0-90",
		SessionID:   "S1",
		Text:        "nice",
		Tags:        []string{"quiet"},
		Timestamp:   time.Now(),
	})

	msg := receiveMessage(t, x)
	if msg.Type != EventFeedback {
		t.Fatalf("expected feedback event, got %s", msg.Type)
	}
	wrapped, ok := msg.Data.(FeedbackEvent)
	if !ok {
		t.Fatalf("feedback data type = %T", msg.Data)
	}
	if wrapped.Type != EventNewFeedback {
		t.Errorf("wrapper type = %q, want newFeedback", wrapped.Type)
	}
	if wrapped.Data.Text != "nice" || wrapped.Data.SessionID != "S1" {
		t.Errorf("wrapper data wrong: %+v", wrapped.Data)
	}

	expectNoMessage(t, z)
}

func TestBroadcastTagVoted(t *testing.T) {
	hub := setupHub(t)
	c := createTestClient(hub)
	registerClient(t, hub, c)
	joinSession(t, hub, c, "S1")

	hub.BroadcastTagVoted("S1", TagVotedPayload{
		TagID:       uuid.NewString(),
		SessionID:   "S1",
		ViewpointID: "1-2-3",
		Votes:       4,
	})

	msg := receiveMessage(t, c)
	if msg.Type != EventTagVoted {
		t.Fatalf("expected tagVoted, got %s", msg.Type)
	}
	payload := msg.Data.(TagVotedPayload)
	if payload.Votes != 4 {
		t.Errorf("votes = %d, want 4", payload.Votes)
	}
}

func TestBroadcastToUnknownSessionIsNoOp(t *testing.T) {
	hub := setupHub(t)
	c := createTestClient(hub)
	registerClient(t, hub, c)
	joinSession(t, hub, c, "S1")

	hub.BroadcastTagVoted("S-unknown", TagVotedPayload{
		TagID: uuid.NewString(), ViewpointID: "1-2-3", Votes: 1,
	})
	expectNoMessage(t, c)
}

func TestSlowClientIsEvicted(t *testing.T) {
	hub := setupHub(t)
	slow := createTestClient(hub)
	healthy := createTestClient(hub)
	registerClient(t, hub, slow)
	registerClient(t, hub, healthy)
	joinSession(t, hub, slow, "S1")
	joinSession(t, hub, healthy, "S1")

	// Fill the slow client's send buffer so the next delivery fails.
	for i := 0; i < hub.cfg.SendBuffer; i++ {
		slow.send <- Message{Type: "filler"}
	}

	hub.BroadcastTagVoted("S1", TagVotedPayload{
		TagID: uuid.NewString(), ViewpointID: "1-2-3", Votes: 1,
	})

	waitFor(t, func() bool { return hub.MemberCount("S1") == 1 })
	if hub.ClientCount() != 1 {
		t.Errorf("ClientCount = %d, want 1 after eviction", hub.ClientCount())
	}

	// The healthy member still received the event.
	msg := receiveMessage(t, healthy)
	if msg.Type != EventTagVoted {
		t.Errorf("healthy client expected tagVoted, got %s", msg.Type)
	}
}

func TestShutdownClosesClients(t *testing.T) {
	hub := NewHub(testWSConfig())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	c := createTestClient(hub)
	hub.Register <- c
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("RunWithContext returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}

	if _, ok := <-c.send; ok {
		t.Error("client send channel should be closed after shutdown")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount = %d, want 0 after shutdown", hub.ClientCount())
	}
}

func TestMemberSocketIDs(t *testing.T) {
	hub := setupHub(t)
	x := createTestClient(hub)
	y := createTestClient(hub)
	registerClient(t, hub, x)
	registerClient(t, hub, y)
	joinSession(t, hub, x, "S1")
	joinSession(t, hub, y, "S1")

	ids := hub.memberSocketIDs("S1")
	if len(ids) != 2 {
		t.Fatalf("got %d socket IDs, want 2", len(ids))
	}
	if got := hub.memberSocketIDs("S-unknown"); len(got) != 0 {
		t.Errorf("unknown session returned %v", got)
	}
}

func TestJoinQueuedBehindDisconnectIsDropped(t *testing.T) {
	hub := setupHub(t)
	ghost := createTestClient(hub)
	registerClient(t, hub, ghost)
	joinSession(t, hub, ghost, "S1")

	// Disconnect first, then route the joins the ghost had already
	// queued — the ordering a connection drop produces because
	// lifecycle events outrank inbound traffic. Neither join may
	// re-register the torn-down handle or write to its closed send
	// channel.
	hub.Unregister <- ghost
	waitFor(t, func() bool { return hub.ClientCount() == 0 })
	sendEvent(t, hub, ghost, EventJoinSession, JoinSessionPayload{SessionID: "S1"})
	sendEvent(t, hub, ghost, EventJoinSession, JoinSessionPayload{SessionID: ""})

	// A live client joining afterwards proves the hub loop survived,
	// and its ack count proves the ghost was not re-registered.
	c := createTestClient(hub)
	registerClient(t, hub, c)
	ack := joinSession(t, hub, c, "S1")
	if ack.ClientCount != 1 {
		t.Errorf("ack client count = %d, want 1 (stale join must not re-register)", ack.ClientCount)
	}
	if got := hub.MemberCount("S1"); got != 1 {
		t.Errorf("MemberCount(S1) = %d, want 1", got)
	}

	// Delivery to the session must not touch the torn-down handle.
	hub.BroadcastTagVoted("S1", TagVotedPayload{
		TagID: uuid.NewString(), ViewpointID: "1-2-3", Votes: 1,
	})
	if msg := receiveMessage(t, c); msg.Type != EventTagVoted {
		t.Errorf("expected tagVoted, got %s", msg.Type)
	}
}

func TestShutdownReleasesPendingUnregister(t *testing.T) {
	hub := NewHub(testWSConfig())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- hub.RunWithContext(ctx) }()

	c := createTestClient(hub)
	hub.Register <- c
	waitFor(t, func() bool { return hub.ClientCount() == 1 })

	cancel()
	<-done

	// A read pump tearing down after the loop has exited must not block
	// on the unregister handoff.
	released := make(chan struct{})
	go func() {
		select {
		case hub.Unregister <- c:
		case <-hub.done:
		}
		close(released)
	}()
	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Fatal("unregister handoff still blocked after shutdown")
	}
}
