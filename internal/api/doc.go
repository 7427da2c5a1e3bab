// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

/*
Package api provides the HTTP surface: REST endpoints for tags and
feedback, health probes, the Prometheus scrape endpoint, and the
WebSocket upgrade that hands connections to the hub.

Routes (chi):

	GET  /api/v1/health        overall health + live connection counts
	GET  /api/v1/health/live   liveness probe
	GET  /api/v1/health/ready  readiness probe
	GET  /api/v1/tags          list session tags with viewpoint votes
	POST /api/v1/tags          create tag (409 on duplicate name)
	PUT  /api/v1/tags          vote on a tag, broadcasts tagVoted
	GET  /api/v1/feedback      list feedback newest-first
	POST /api/v1/feedback      create feedback, broadcasts feedback
	GET  /api/v1/ws            WebSocket upgrade
	GET  /metrics              Prometheus metrics

All JSON endpoints respond with the APIResponse envelope. Writes that
also broadcast do so only after the store commit succeeds, so socket
events never announce state that does not exist.
*/
package api
