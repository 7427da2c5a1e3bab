// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

// Package metrics provides Prometheus instrumentation for Viewpoint:
// WebSocket connection and session gauges, event relay counters, API
// endpoint latency, and store operation timings.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "viewpoint_ws_connections",
			Help: "Current number of live WebSocket connections",
		},
	)

	WSSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "viewpoint_ws_sessions",
			Help: "Current number of sessions with at least one member",
		},
	)

	WSEventsRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewpoint_ws_events_relayed_total",
			Help: "Total number of events relayed to session members",
		},
		[]string{"event"}, // tagAdded, tagVoted, feedback
	)

	WSEventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewpoint_ws_events_dropped_total",
			Help: "Total number of inbound events dropped before relay",
		},
		[]string{"reason"}, // no_session, malformed, session_mismatch, rate_limited
	)

	WSSlowClientEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "viewpoint_ws_slow_client_evictions_total",
			Help: "Total number of clients evicted for a persistently full send queue",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewpoint_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "path", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "viewpoint_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "viewpoint_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Store Metrics
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "viewpoint_store_operation_duration_seconds",
			Help:    "Duration of document store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // create_tag, list_tags, vote, create_feedback, list_feedback
	)

	StoreOpErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "viewpoint_store_operation_errors_total",
			Help: "Total number of document store operation failures",
		},
		[]string{"operation"},
	)
)

// RecordAPIRequest records metrics for a completed API request.
func RecordAPIRequest(method, path string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(active bool) {
	if active {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordStoreOp records the duration of a store operation, counting it
// as an error when err is non-nil.
func RecordStoreOp(operation string, start time.Time, err error) {
	StoreOpDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		StoreOpErrors.WithLabelValues(operation).Inc()
	}
}

// RecordEventRelayed counts one relayed event of the given wire name.
func RecordEventRelayed(event string) {
	WSEventsRelayed.WithLabelValues(event).Inc()
}

// RecordEventDropped counts one dropped inbound event by reason.
func RecordEventDropped(reason string) {
	WSEventsDropped.WithLabelValues(reason).Inc()
}
