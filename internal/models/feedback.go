// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a short label attached to a session's shared context.
// Tag names are unique within a session. Votes are not stored on the
// tag itself; see VoteCount for the per-viewpoint counter.
type Tag struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	SessionID string    `json:"sessionId"`
	CreatedAt time.Time `json:"createdAt"`

	// Votes is the viewpoint-relative count merged in at list time.
	// It is never persisted on the tag document.
	Votes int `json:"votes"`
}

// VoteCount is the persisted vote counter for one (tag, session,
// viewpoint) triple. Counters are created lazily on first vote and
// never go below zero.
type VoteCount struct {
	TagID       uuid.UUID `json:"tagId"`
	SessionID   string    `json:"sessionId"`
	ViewpointID string    `json:"viewpointId"`
	Votes       int       `json:"votes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Feedback is a free-text comment with selected tag names, scoped to a
// (viewpoint, session) pair.
type Feedback struct {
	ID          uuid.UUID `json:"id"`
	ViewpointID string    `json:"viewpointId"`
	SessionID   string    `json:"sessionId"`
	Text        string    `json:"text"`
	Tags        []string  `json:"tags"`
	Timestamp   time.Time `json:"timestamp"`
}

// VoteDirection is the requested vote adjustment.
type VoteDirection string

const (
	// VoteAdd increments the counter.
	VoteAdd VoteDirection = "add"
	// VoteRemove decrements the counter, clamped at zero.
	VoteRemove VoteDirection = "remove"
)

// Valid reports whether the direction is one of the two known values.
func (d VoteDirection) Valid() bool {
	return d == VoteAdd || d == VoteRemove
}
