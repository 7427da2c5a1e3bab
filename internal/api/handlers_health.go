// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package api

import (
	"net/http"
	"time"
)

// healthStatus is the payload of GET /api/v1/health.
type healthStatus struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	StoreOpen     bool    `json:"store_open"`
	HubRunning    bool    `json:"hub_running"`
	Clients       int     `json:"clients"`
	Sessions      int     `json:"sessions"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// Health reports overall process health plus live connection counts.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	storeOpen := h.store != nil
	hubRunning := h.hub != nil

	status := "healthy"
	if !storeOpen || !hubRunning {
		status = "degraded"
	}

	health := healthStatus{
		Status:        status,
		Version:       Version,
		StoreOpen:     storeOpen,
		HubRunning:    hubRunning,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if hubRunning {
		health.Clients = h.hub.ClientCount()
		health.Sessions = h.hub.SessionCount()
	}

	rw.Success(health)
}

// HealthLive is the liveness probe: 200 whenever the process responds,
// regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(map[string]string{"status": "alive"})
}

// HealthReady is the readiness probe: 200 only once the store and hub
// are wired, 503 otherwise so load balancers hold traffic.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.store == nil || h.hub == nil {
		rw.ServiceUnavailable("not ready")
		return
	}
	rw.Success(map[string]string{"status": "ready"})
}
