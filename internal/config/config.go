// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

// Package config provides layered configuration loading for Viewpoint
// using Koanf v2. Sources are applied in order of increasing priority:
// struct defaults, then an optional YAML config file, then environment
// variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the Viewpoint server.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Storage   StorageConfig   `koanf:"storage"`
	Security  SecurityConfig  `koanf:"security"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	API       APIConfig       `koanf:"api"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
//
// Environment Variables:
//   - HTTP_HOST: Listen address (default: 0.0.0.0)
//   - HTTP_PORT: Listen port (default: 4326)
type ServerConfig struct {
	// Host is the listen address.
	Host string `koanf:"host"`

	// Port is the listen port. The default 4326 references EPSG:4326
	// (WGS84), the lat/lng coordinate system viewpoints are keyed by.
	Port int `koanf:"port"`

	// ReadTimeout bounds the time to read a full request.
	ReadTimeout time.Duration `koanf:"read_timeout"`

	// WriteTimeout bounds the time to write a full response.
	// WebSocket connections are exempt once upgraded.
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown of in-flight requests.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// StorageConfig holds BadgerDB settings for the feedback document store.
//
// Environment Variables:
//   - STORAGE_PATH: Data directory (default: /data/viewpoint)
//   - STORAGE_IN_MEMORY: Run without disk persistence (default: false)
type StorageConfig struct {
	// Path is the BadgerDB data directory.
	Path string `koanf:"path"`

	// InMemory runs the store without disk persistence. Intended for
	// tests and ephemeral deployments.
	InMemory bool `koanf:"in_memory"`

	// GCInterval is how often value-log garbage collection runs.
	GCInterval time.Duration `koanf:"gc_interval"`
}

// SecurityConfig holds CORS and rate limiting settings.
//
// Environment Variables:
//   - CORS_ORIGINS: Comma-separated allowed origins (default: *)
//   - RATE_LIMIT_REQS / RATE_LIMIT_WINDOW: HTTP rate limit
//   - RATE_LIMIT_DISABLED: Disable HTTP rate limiting
type SecurityConfig struct {
	// CORSOrigins lists allowed origins for both HTTP CORS and
	// WebSocket Origin checks. "*" allows any origin.
	CORSOrigins []string `koanf:"cors_origins"`

	// RateLimitReqs is the allowed request count per RateLimitWindow
	// per client IP.
	RateLimitReqs int `koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limiting window.
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`

	// RateLimitDisabled disables HTTP rate limiting entirely.
	RateLimitDisabled bool `koanf:"rate_limit_disabled"`
}

// WebSocketConfig holds transport tuning for real-time connections.
//
// Environment Variables:
//   - WS_WRITE_WAIT, WS_PONG_WAIT, WS_MAX_MESSAGE_SIZE
//   - WS_INBOUND_RATE, WS_INBOUND_BURST
type WebSocketConfig struct {
	// WriteWait is the time allowed to write a message to a peer.
	WriteWait time.Duration `koanf:"write_wait"`

	// PongWait is the time allowed to read the next pong from a peer.
	// A connection that misses it is treated as disconnected.
	PongWait time.Duration `koanf:"pong_wait"`

	// MaxMessageSize limits inbound message size in bytes.
	MaxMessageSize int64 `koanf:"max_message_size"`

	// SendBuffer is the per-client outbound queue length. A client
	// whose queue stays full is evicted as a slow consumer.
	SendBuffer int `koanf:"send_buffer"`

	// InboundRate is the sustained inbound events/second allowed per
	// connection before messages are dropped.
	InboundRate float64 `koanf:"inbound_rate"`

	// InboundBurst is the inbound rate limiter burst size.
	InboundBurst int `koanf:"inbound_burst"`
}

// APIConfig holds API behavior settings.
type APIConfig struct {
	// MaxTagNameLength limits tag names.
	MaxTagNameLength int `koanf:"max_tag_name_length"`

	// MaxFeedbackLength limits feedback text.
	MaxFeedbackLength int `koanf:"max_feedback_length"`
}

// LoggingConfig holds logging settings.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1-65535, got %d", c.Server.Port)
	}
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required unless storage.in_memory is set")
	}
	if c.WebSocket.PongWait <= 0 {
		return fmt.Errorf("websocket.pong_wait must be positive, got %s", c.WebSocket.PongWait)
	}
	if c.WebSocket.WriteWait <= 0 {
		return fmt.Errorf("websocket.write_wait must be positive, got %s", c.WebSocket.WriteWait)
	}
	if c.WebSocket.MaxMessageSize <= 0 {
		return fmt.Errorf("websocket.max_message_size must be positive, got %d", c.WebSocket.MaxMessageSize)
	}
	if c.WebSocket.SendBuffer <= 0 {
		return fmt.Errorf("websocket.send_buffer must be positive, got %d", c.WebSocket.SendBuffer)
	}
	if !c.Security.RateLimitDisabled {
		if c.Security.RateLimitReqs <= 0 {
			return fmt.Errorf("security.rate_limit_reqs must be positive, got %d", c.Security.RateLimitReqs)
		}
		if c.Security.RateLimitWindow <= 0 {
			return fmt.Errorf("security.rate_limit_window must be positive, got %s", c.Security.RateLimitWindow)
		}
	}
	if len(c.Security.CORSOrigins) == 0 {
		return fmt.Errorf("security.cors_origins must not be empty")
	}
	return nil
}

// ListenAddr returns the host:port address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Default returns a Config with all default values, without consulting
// files or the environment. Useful for tests and embedded use.
func Default() *Config {
	return defaultConfig()
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            4326,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Path:       "/data/viewpoint",
			InMemory:   false,
			GCInterval: 10 * time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
		WebSocket: WebSocketConfig{
			WriteWait:      10 * time.Second,
			PongWait:       60 * time.Second,
			MaxMessageSize: 32 * 1024, // 32 KB; event payloads are small
			SendBuffer:     256,
			InboundRate:    20,
			InboundBurst:   40,
		},
		API: APIConfig{
			MaxTagNameLength:  64,
			MaxFeedbackLength: 4096,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
