// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/viewpoint/internal/metrics"
	"github.com/tomtom215/viewpoint/internal/models"
)

// votePrefix builds the key prefix for all counters of one
// (session, viewpoint) pair.
func votePrefix(sessionID, viewpointID string) []byte {
	return []byte(voteKeyPrefix + sessionID + ":" + viewpointID + ":")
}

// voteKey builds the counter key for a (tag, session, viewpoint) triple.
func voteKey(sessionID, viewpointID string, tagID uuid.UUID) []byte {
	return append(votePrefix(sessionID, viewpointID), tagID.String()...)
}

// Vote adjusts the counter for (tagID, sessionID, viewpointID) in the
// given direction and returns the resolved count. The counter is
// created lazily on first vote; a remove with no counter (or a counter
// already at zero) is a no-op returning 0; the count never goes below
// zero. The tag must exist in the session.
//
// The returned count is the single source of truth the real-time layer
// relays; concurrent voters are serialized by Badger's transaction
// conflict detection.
func (s *Store) Vote(ctx context.Context, tagID uuid.UUID, sessionID, viewpointID string, direction models.VoteDirection) (_ int, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("vote", start, err) }()

	if !direction.Valid() {
		return 0, fmt.Errorf("invalid vote direction %q", direction)
	}

	var resolved int
	err = s.update(func(txn *badger.Txn) error {
		if _, err := getTag(txn, sessionID, tagID); err != nil {
			return err
		}

		key := voteKey(sessionID, viewpointID, tagID)
		vc := models.VoteCount{
			TagID:       tagID,
			SessionID:   sessionID,
			ViewpointID: viewpointID,
			CreatedAt:   time.Now().UTC(),
		}

		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			if direction == models.VoteRemove {
				// Nothing to remove; do not create a counter.
				resolved = 0
				return nil
			}
		case err != nil:
			return fmt.Errorf("get vote count: %w", err)
		default:
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &vc)
			}); err != nil {
				return fmt.Errorf("unmarshal vote count: %w", err)
			}
		}

		if direction == models.VoteAdd {
			vc.Votes++
		} else {
			if vc.Votes <= 0 {
				resolved = 0
				return nil
			}
			vc.Votes--
		}

		data, err := json.Marshal(&vc)
		if err != nil {
			return fmt.Errorf("marshal vote count: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set vote count: %w", err)
		}

		resolved = vc.Votes
		return nil
	})
	if err != nil {
		return 0, err
	}

	return resolved, nil
}
