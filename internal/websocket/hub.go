// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/viewpoint/internal/config"
	"github.com/tomtom215/viewpoint/internal/logging"
	"github.com/tomtom215/viewpoint/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown
	// path (e.g. SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was
	// exceeded, which may mean a hung operation during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// inboundEvent is a message received from a client, queued for the hub
// loop.
type inboundEvent struct {
	client *Client
	msg    inboundMessage
}

// sessionBroadcast is a server-originated message for one session,
// queued by the HTTP layer.
type sessionBroadcast struct {
	sessionID string
	event     string
	msg       Message
}

// Hub owns the session registry and the set of live client handles,
// and relays events between them.
//
// All state transitions — connect, join, leave, disconnect, and event
// relay — execute sequentially on the single hub goroutine, so each
// runs to completion before the next queued event is processed and the
// registry needs no locking for correctness. The mutex exists only so
// accessors like ClientCount can read consistent values from other
// goroutines.
type Hub struct {
	cfg config.WebSocketConfig

	clients  map[*Client]struct{}
	registry *sessionRegistry

	Register   chan *Client
	Unregister chan *Client
	inbound    chan inboundEvent
	broadcast  chan sessionBroadcast

	// done is closed when the hub loop exits, releasing read pumps that
	// would otherwise block on Unregister with nobody left to drain it.
	done     chan struct{}
	stopOnce sync.Once

	mu sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub(cfg config.WebSocketConfig) *Hub {
	return &Hub{
		cfg:        cfg,
		clients:    make(map[*Client]struct{}),
		registry:   newSessionRegistry(),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		inbound:    make(chan inboundEvent, 256),
		broadcast:  make(chan sessionBroadcast, 256),
		done:       make(chan struct{}),
	}
}

// RunWithContext starts the hub loop with context support for graceful
// shutdown. Designed for suture supervision; returns ctx.Err() after
// closing all clients.
//
// Priority-based selection keeps behavior predictable when multiple
// channels are ready (Go's select picks randomly otherwise):
//   - Priority 1: context cancellation (shutdown)
//   - Priority 2: client lifecycle (Register/Unregister)
//   - Priority 3: inbound events and server broadcasts
//
// Handling lifecycle first ensures client state is consistent before
// any message is relayed.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: shutdown (non-blocking check)
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: lifecycle (non-blocking check)
		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		default:
		}

		// Priority 3: block for any event
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case ev := <-h.inbound:
			h.route(ev)

		case sb := <-h.broadcast:
			h.deliverToSession(sb.sessionID, sb.event, sb.msg)
		}
	}
}

// registerClient records a newly connected, not-yet-joined client.
func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	logging.Info().
		Str("socket_id", c.socketID).
		Int("total_clients", total).
		Msg("websocket client connected")
}

// unregisterClient runs the disconnect transition: remove session
// membership if joined, drop the handle, close the send channel.
// Idempotent — a second unregister for the same client is a no-op.
func (h *Hub) unregisterClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	if c.session != "" {
		h.registry.unregister(c.session, c)
		c.session = ""
	}
	delete(h.clients, c)
	close(c.send)
	total := len(h.clients)
	sessions := h.registry.sessionCount()
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(total))
	metrics.WSSessions.Set(float64(sessions))
	logging.Info().
		Str("socket_id", c.socketID).
		Int("total_clients", total).
		Msg("websocket client disconnected")
}

// deliverToSession fans a message out to every member of a session,
// including the sender when it is a member. Iteration is ordered by
// client ID so delivery order is deterministic. Members whose send
// buffer is full are evicted as slow consumers.
func (h *Hub) deliverToSession(sessionID, event string, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members := h.registry.membersOf(sessionID)
	if len(members) == 0 {
		return
	}

	ordered := make([]*Client, 0, len(members))
	for c := range members {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].id < ordered[j].id
	})

	var evicted []*Client
	for _, c := range ordered {
		if !c.trySend(msg) {
			evicted = append(evicted, c)
		}
	}

	for _, c := range evicted {
		h.registry.unregister(c.session, c)
		c.session = ""
		delete(h.clients, c)
		close(c.send)
		metrics.WSSlowClientEvictions.Inc()
		logging.Warn().
			Str("socket_id", c.socketID).
			Str("event", event).
			Msg("evicted slow websocket client")
	}

	metrics.RecordEventRelayed(event)
	logging.Debug().
		Str("session_id", sessionID).
		Str("event", event).
		Int("recipients", len(ordered)-len(evicted)).
		Msg("event relayed to session")
}

// BroadcastTagVoted queues a vote-changed notification for a session.
// Called by the HTTP layer after the store resolved the new count.
func (h *Hub) BroadcastTagVoted(sessionID string, payload TagVotedPayload) {
	h.enqueueBroadcast(sessionID, EventTagVoted, Message{Type: EventTagVoted, Data: payload})
}

// BroadcastFeedback queues a feedback-created notification for a
// session, wrapped the way clients expect feedback events.
func (h *Hub) BroadcastFeedback(sessionID string, data FeedbackEventData) {
	msg := Message{
		Type: EventFeedback,
		Data: FeedbackEvent{Type: EventNewFeedback, Data: data},
	}
	h.enqueueBroadcast(sessionID, EventFeedback, msg)
}

func (h *Hub) enqueueBroadcast(sessionID, event string, msg Message) {
	select {
	case h.broadcast <- sessionBroadcast{sessionID: sessionID, event: event, msg: msg}:
	default:
		logging.Warn().
			Str("session_id", sessionID).
			Str("event", event).
			Msg("broadcast channel full, dropping message")
	}
}

// isLive reports whether the handle is still registered. Inbound events
// from handles torn down by a disconnect or a slow-consumer eviction
// must not be routed: their send channel is already closed.
func (h *Hub) isLive(c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[c]
	return ok
}

// ClientCount returns the number of live connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SessionCount returns the number of sessions with at least one member.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.registry.sessionCount()
}

// MemberCount returns the membership size of one session (0 when the
// session is unknown).
func (h *Hub) MemberCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.registry.memberCount(sessionID)
}

// memberSocketIDs returns the socket IDs currently joined to a session.
func (h *Hub) memberSocketIDs(sessionID string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	members := h.registry.membersOf(sessionID)
	ids := make([]string, 0, len(members))
	for c := range members {
		ids = append(ids, c.socketID)
	}
	sort.Strings(ids)
	return ids
}

// logGracefulShutdown closes all clients and logs structured shutdown
// information. ctx.Err() is not logged as an error because context
// cancellation is the expected shutdown path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	h.mu.Lock()
	clientCount := len(h.clients)
	ordered := make([]*Client, 0, clientCount)
	for c := range h.clients {
		ordered = append(ordered, c)
	}
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].id < ordered[j].id
	})
	for _, c := range ordered {
		if c.session != "" {
			h.registry.unregister(c.session, c)
			c.session = ""
		}
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()

	metrics.WSConnections.Set(0)
	metrics.WSSessions.Set(0)
	h.stopOnce.Do(func() { close(h.done) })

	reason := ShutdownReasonContextCanceled
	if ctx.Err() == context.DeadlineExceeded {
		reason = ShutdownReasonContextDeadline
	}

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(reason)).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}
