// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

/*
Package middleware provides HTTP middleware components for the API
surface.

Request ID tracking assigns (or propagates) an X-Request-ID per request
and threads it into the logging context. Prometheus instrumentation
records per-request counts, durations, and in-flight gauges.

Both middlewares are chi-compatible (func(http.Handler) http.Handler)
and are installed by the API router; rate limiting and CORS come from
go-chi/httprate and go-chi/cors there rather than from this package.

Note: the metrics wrapper does not implement http.Hijacker, so the
WebSocket upgrade endpoint is mounted outside the instrumented group.
*/
package middleware
