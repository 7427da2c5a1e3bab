// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package websocket

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/tomtom215/viewpoint/internal/logging"
	"github.com/tomtom215/viewpoint/internal/metrics"
)

// clientIDCounter generates unique, monotonically increasing IDs for
// clients so broadcast iteration order is deterministic.
var clientIDCounter atomic.Uint64

// Client is the server-side handle for one live WebSocket connection.
//
// The session field is owned by the hub goroutine: it is written only
// while processing lifecycle and join events on the hub loop, which is
// what makes "joined to at most one session" trivially true — there is
// no interleaving in which two joins for one client run concurrently.
type Client struct {
	// id orders clients deterministically during fan-out.
	id uint64

	// socketID is the wire-visible connection identifier.
	socketID string

	hub  *Hub
	conn *websocket.Conn
	send chan Message

	// limiter throttles inbound events per connection.
	limiter *rate.Limiter

	// session is the currently joined session ID, empty when unjoined.
	// Hub-goroutine owned.
	session string
}

// NewClient creates a client handle for an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:       clientIDCounter.Add(1),
		socketID: uuid.New().String(),
		hub:      hub,
		conn:     conn,
		send:     make(chan Message, hub.cfg.SendBuffer),
		limiter:  rate.NewLimiter(rate.Limit(hub.cfg.InboundRate), hub.cfg.InboundBurst),
	}
}

// SocketID returns the wire-visible connection identifier.
func (c *Client) SocketID() string {
	return c.socketID
}

// Start registers the client with the hub and begins the read and
// write pumps. The connection is owned by the pumps from here on.
func (c *Client) Start() {
	c.hub.Register <- c
	go c.writePump()
	go c.readPump()
}

// readPump pumps messages from the connection to the hub. It runs one
// goroutine per connection and exits on any read error, triggering the
// disconnect path exactly once via the hub's unregister channel.
func (c *Client) readPump() {
	defer func() {
		// After the hub loop has exited nobody drains Unregister; the
		// done channel keeps teardown from blocking forever.
		select {
		case c.hub.Unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(c.hub.cfg.MaxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait)); err != nil {
		logging.Error().Err(err).Str("socket_id", c.socketID).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.hub.cfg.PongWait))
	})

	for {
		var msg inboundMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Warn().Err(err).Str("socket_id", c.socketID).Msg("unexpected websocket close")
			}
			return
		}

		if !c.limiter.Allow() {
			metrics.RecordEventDropped("rate_limited")
			logging.Debug().Str("socket_id", c.socketID).Str("event", msg.Type).Msg("inbound event rate limited")
			continue
		}

		// Hand off to the hub loop; events are never processed on the
		// read goroutine.
		c.hub.inbound <- inboundEvent{client: c, msg: msg}
	}
}

// writePump pumps messages from the hub to the connection and keeps the
// connection alive with periodic pings.
func (c *Client) writePump() {
	pingPeriod := c.hub.cfg.PongWait * 9 / 10
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait)); err != nil {
				logging.Error().Err(err).Str("socket_id", c.socketID).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				logging.Debug().Err(err).Str("socket_id", c.socketID).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.hub.cfg.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues a message without blocking. Returns false when the
// client's send buffer is full.
func (c *Client) trySend(msg Message) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}
