// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := defaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
	if cfg.Server.Port != 4326 {
		t.Errorf("default port = %d, want 4326", cfg.Server.Port)
	}
	if cfg.WebSocket.PongWait <= cfg.WebSocket.WriteWait {
		t.Error("pong_wait should exceed write_wait")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero port", func(c *Config) { c.Server.Port = 0 }},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }},
		{"missing storage path", func(c *Config) { c.Storage.Path = "" }},
		{"zero pong wait", func(c *Config) { c.WebSocket.PongWait = 0 }},
		{"zero write wait", func(c *Config) { c.WebSocket.WriteWait = 0 }},
		{"zero message size", func(c *Config) { c.WebSocket.MaxMessageSize = 0 }},
		{"zero send buffer", func(c *Config) { c.WebSocket.SendBuffer = 0 }},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }},
		{"empty cors origins", func(c *Config) { c.Security.CORSOrigins = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidateAllowsInMemoryWithoutPath(t *testing.T) {
	cfg := defaultConfig()
	cfg.Storage.Path = ""
	cfg.Storage.InMemory = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("in-memory storage should not require a path: %v", err)
	}
}

func TestValidateAllowsDisabledRateLimit(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.RateLimitReqs = 0
	cfg.Security.RateLimitDisabled = true
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled rate limiting should skip limit validation: %v", err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORAGE_IN_MEMORY", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("WS_PONG_WAIT", "90s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
	if !cfg.Storage.InMemory {
		t.Error("storage.in_memory not applied from env")
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[0] != "https://a.example" {
		t.Errorf("cors origins = %v, want two trimmed entries", cfg.Security.CORSOrigins)
	}
	if cfg.WebSocket.PongWait != 90*time.Second {
		t.Errorf("pong wait = %s, want 90s", cfg.WebSocket.PongWait)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := []byte("server:\n  port: 8111\nlogging:\n  level: warn\n")
	if err := os.WriteFile(path, yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8111 {
		t.Errorf("port = %d, want 8111 from config file", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level = %q, want warn from config file", cfg.Logging.Level)
	}
	// Untouched values keep defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want default", cfg.Server.Host)
	}
}

func TestEnvBeatsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 8111\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "8222")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8222 {
		t.Errorf("port = %d, want env override 8222", cfg.Server.Port)
	}
}

func TestEnvTransformDiscardsUnknown(t *testing.T) {
	if got := envTransformFunc("PATH"); got != "" {
		t.Errorf("unknown env var mapped to %q, want empty", got)
	}
	if got := envTransformFunc("HTTP_PORT"); got != "server.port" {
		t.Errorf("HTTP_PORT mapped to %q, want server.port", got)
	}
}
