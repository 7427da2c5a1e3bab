// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

/*
Package websocket implements the real-time session core: session
membership, the connection lifecycle, and session-scoped event relay.

A single Hub goroutine owns the session registry and processes every
connect, join, leave, disconnect, and inbound event sequentially, which
keeps the registry free of data races without fine-grained locking.
Each client connection gets two goroutines (readPump/writePump) in the
classic gorilla/websocket hub-and-spoke arrangement:

	┌──────────────┐
	│     Hub      │  session registry + event router
	└──────┬───────┘
	       │
	┌──────┴──────┬──────────────┬──────────────┐
	│  Client S1  │  Client S1   │  Client S2   │
	└─────────────┴──────────────┴──────────────┘

Unlike a plain broadcast hub, delivery here is session-scoped: a client
joins exactly one session at a time (joinSession), and relayed events
reach only that session's members — sender included; clients
de-duplicate on persisted identifiers.

Wire protocol (JSON envelopes {type, data}):

  - joinSession (c→s): {sessionId, viewpoint}
  - sessionJoined (s→c): {sessionId, socketId, clientCount}
  - newTag (c→s) → tagAdded (s→session): persisted tag document
  - tagVoted (bidirectional): {tagId, sessionId, viewpointId, votes}
  - newFeedback (c→s) → feedback (s→session): {type:"newFeedback", data:{...}}
  - error (s→c): {message}

The hub is a notification bus, not a source of truth: vote counts and
documents are resolved by the store before an event is relayed, and a
client that reconnects recovers state by refetching through the HTTP
API, never by event replay.

Failure containment: malformed payloads are dropped with a diagnostic;
events from unjoined clients are dropped silently (a normal reconnect
race); a full send buffer evicts the slow client; a dropped connection
takes the same disconnect path as a clean close. Nothing here is fatal
to the process.
*/
package websocket
