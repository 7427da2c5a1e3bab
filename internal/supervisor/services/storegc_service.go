// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package services

import (
	"context"
	"time"
)

// GCRunner matches *store.Store's RunGC method.
type GCRunner interface {
	RunGC()
}

// StoreGCService periodically runs BadgerDB value-log garbage
// collection. Badger does not reclaim value-log space on its own; a
// long-running process must drive GC itself.
type StoreGCService struct {
	store    GCRunner
	interval time.Duration
	name     string
}

// NewStoreGCService creates a GC service running at the given interval.
func NewStoreGCService(store GCRunner, interval time.Duration) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreGCService{
		store:    store,
		interval: interval,
		name:     "store-gc",
	}
}

// Serve implements suture.Service.
func (s *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.store.RunGC()
		}
	}
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *StoreGCService) String() string {
	return s.name
}
