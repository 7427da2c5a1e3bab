// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

// Package store implements the feedback document store on BadgerDB.
//
// Three document families are kept, each as JSON under a prefixed key:
//
//	tag:<sessionID>:<tagID>                   Tag
//	tagname:<sessionID>:<name>                tag name index -> tagID
//	vote:<sessionID>:<viewpointID>:<tagID>    VoteCount
//	feedback:<sessionID>:<viewpointID>:<id>   Feedback
//
// Vote counters are mutated inside Badger transactions; the
// serializable-snapshot conflict detection plus a bounded retry loop
// makes concurrent increments resolve to a single authoritative count.
// The real-time layer never writes here; it only relays counts this
// package resolved.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/viewpoint/internal/config"
	"github.com/tomtom215/viewpoint/internal/logging"
)

// Sentinel errors returned by store operations.
var (
	// ErrTagExists is returned when a tag name is already taken within
	// the session.
	ErrTagExists = errors.New("tag already exists in session")

	// ErrTagNotFound is returned when voting on an unknown tag.
	ErrTagNotFound = errors.New("tag not found")
)

// Key prefixes for BadgerDB storage.
const (
	tagKeyPrefix      = "tag:"
	tagNameKeyPrefix  = "tagname:"
	voteKeyPrefix     = "vote:"
	feedbackKeyPrefix = "feedback:"
)

// txnRetries bounds retries of transactions aborted by write conflicts.
const txnRetries = 10

// Store is the BadgerDB-backed document store for tags, vote counters,
// and feedback items.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) the store at the configured location.
func Open(cfg *config.StorageConfig) (*Store, error) {
	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithLogger(nil)
	if cfg.InMemory {
		opts.Dir = ""
		opts.ValueDir = ""
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", cfg.Path, err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing Badger instance. Used by tests.
func NewWithDB(db *badger.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RunGC runs Badger value-log garbage collection until no more cleanup
// is possible. Safe to call periodically; a no-op for in-memory stores.
func (s *Store) RunGC() {
	for {
		if err := s.db.RunValueLogGC(0.5); err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) {
				logging.Debug().Err(err).Msg("badger value log GC stopped")
			}
			return
		}
	}
}

// update runs fn in a read-write transaction, retrying a bounded number
// of times when Badger aborts it with a write conflict.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	var err error
	for i := 0; i < txnRetries; i++ {
		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		time.Sleep(time.Duration(i+1) * time.Millisecond)
	}
	return err
}
