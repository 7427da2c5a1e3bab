// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package websocket

// sessionRegistry maps session identifiers to their current members.
//
// The registry is owned by the hub: every mutation happens on the hub
// goroutine, so the type itself carries no locking. External readers go
// through the hub's mutex-guarded accessors. A session exists exactly
// as long as it has at least one member; unregistering the last member
// deletes the entry so no empty sets linger.
type sessionRegistry struct {
	sessions map[string]map[*Client]struct{}
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{
		sessions: make(map[string]map[*Client]struct{}),
	}
}

// register adds a client to a session's membership set, creating the
// set if absent. Idempotent.
func (r *sessionRegistry) register(sessionID string, c *Client) {
	members, ok := r.sessions[sessionID]
	if !ok {
		members = make(map[*Client]struct{})
		r.sessions[sessionID] = members
	}
	members[c] = struct{}{}
}

// unregister removes a client from a session's membership set. The
// session entry is deleted entirely when the set empties. Unknown
// sessions and absent members are no-ops.
func (r *sessionRegistry) unregister(sessionID string, c *Client) {
	members, ok := r.sessions[sessionID]
	if !ok {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(r.sessions, sessionID)
	}
}

// membersOf returns the current membership set of a session. The
// returned map is the live set; callers must not retain it across hub
// loop iterations. Returns nil for unknown sessions.
func (r *sessionRegistry) membersOf(sessionID string) map[*Client]struct{} {
	return r.sessions[sessionID]
}

// memberCount returns the size of a session's membership set.
func (r *sessionRegistry) memberCount(sessionID string) int {
	return len(r.sessions[sessionID])
}

// sessionCount returns the number of sessions with at least one member.
func (r *sessionRegistry) sessionCount() int {
	return len(r.sessions)
}
