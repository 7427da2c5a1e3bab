// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

// Package services provides suture.Service wrappers for the hub, the
// HTTP server, and BadgerDB maintenance. Each wrapper adapts a
// component's own lifecycle to suture's context-based Serve contract
// and names itself for supervision logs.
package services
