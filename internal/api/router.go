// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/viewpoint/internal/config"
	"github.com/tomtom215/viewpoint/internal/middleware"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Router assembles the HTTP surface.
type Router struct {
	handler *Handler
	config  *config.Config
}

// NewRouter creates a router around the given handler.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	return &Router{handler: handler, config: cfg}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   router.config.Security.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints get permissive rate limiting so monitors can
	// poll freely.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(httprate.LimitByIP(1000, time.Minute))
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Data endpoints: rate limited per config and instrumented.
	r.Route("/api/v1", func(r chi.Router) {
		if !router.config.Security.RateLimitDisabled {
			r.Use(httprate.LimitByIP(
				router.config.Security.RateLimitReqs,
				router.config.Security.RateLimitWindow,
			))
		}
		r.Use(middleware.PrometheusMetrics)

		r.Get("/tags", router.handler.ListTags)
		r.Post("/tags", router.handler.CreateTag)
		r.Put("/tags", router.handler.VoteTag)
		r.Get("/feedback", router.handler.ListFeedback)
		r.Post("/feedback", router.handler.CreateFeedback)
	})

	// The WebSocket endpoint sits outside the metrics middleware: the
	// instrumented ResponseWriter cannot be hijacked for the upgrade.
	r.Get("/api/v1/ws", router.handler.WebSocket)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}
