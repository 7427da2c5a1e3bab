// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

// Package models defines the domain types shared by the store, the
// HTTP API, and the real-time layer: viewpoints, tags, vote counters,
// and feedback items.
package models

import "strings"

// Viewpoint identifies a specific geographic view: a location plus the
// direction the viewer is facing. The composite ID scopes vote counts
// and feedback items to one view, independent of session scoping.
//
// Components are kept as the strings the client supplied so the
// derived ID is stable across clients that format coordinates
// identically.
type Viewpoint struct {
	Lat       string `json:"lat"`
	Lng       string `json:"lng"`
	Direction string `json:"dir"`
}

// ID derives the composite viewpoint identifier. The components are
// joined with "-"; a negative longitude therefore yields a double dash
// (e.g. "10.0--20.0-90"). This matches the identifier clients compute.
func (v Viewpoint) ID() string {
	return v.Lat + "-" + v.Lng + "-" + v.Direction
}

// IsZero reports whether any component is missing.
func (v Viewpoint) IsZero() bool {
	return strings.TrimSpace(v.Lat) == "" ||
		strings.TrimSpace(v.Lng) == "" ||
		strings.TrimSpace(v.Direction) == ""
}
