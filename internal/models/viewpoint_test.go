// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package models

import "testing"

func TestViewpointID(t *testing.T) {
	tests := []struct {
		name string
		vp   Viewpoint
		want string
	}{
		{"positive coordinates", Viewpoint{Lat: "51.5", Lng: "4.4", Direction: "180"}, "51.5-4.4-180"},
		{"negative longitude keeps double dash", Viewpoint{Lat: "10.0", Lng: "-20.0", Direction: "90"}, "10.0--20.0-90"},
		{"integer formatting preserved", Viewpoint{Lat: "10", Lng: "20", Direction: "0"}, "10-20-0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vp.ID(); got != tt.want {
				t.Errorf("ID() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestViewpointIsZero(t *testing.T) {
	tests := []struct {
		name string
		vp   Viewpoint
		want bool
	}{
		{"complete", Viewpoint{Lat: "1", Lng: "2", Direction: "3"}, false},
		{"missing lat", Viewpoint{Lng: "2", Direction: "3"}, true},
		{"missing lng", Viewpoint{Lat: "1", Direction: "3"}, true},
		{"missing direction", Viewpoint{Lat: "1", Lng: "2"}, true},
		{"whitespace only", Viewpoint{Lat: " ", Lng: "2", Direction: "3"}, true},
		{"empty", Viewpoint{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.vp.IsZero(); got != tt.want {
				t.Errorf("IsZero() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVoteDirectionValid(t *testing.T) {
	if !VoteAdd.Valid() || !VoteRemove.Valid() {
		t.Error("known directions should be valid")
	}
	if VoteDirection("").Valid() || VoteDirection("upvote").Valid() {
		t.Error("unknown directions should be invalid")
	}
}
