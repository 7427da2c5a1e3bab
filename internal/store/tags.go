// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/viewpoint/internal/metrics"
	"github.com/tomtom215/viewpoint/internal/models"
)

// tagKey builds the document key for a tag.
func tagKey(sessionID string, tagID uuid.UUID) []byte {
	return []byte(tagKeyPrefix + sessionID + ":" + tagID.String())
}

// tagNameKey builds the unique-name index key for a tag.
func tagNameKey(sessionID, name string) []byte {
	return []byte(tagNameKeyPrefix + sessionID + ":" + name)
}

// CreateTag creates a tag with the given name in a session. Names are
// unique within a session; a duplicate returns ErrTagExists without
// touching the store.
func (s *Store) CreateTag(ctx context.Context, name, sessionID string) (_ *models.Tag, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("create_tag", start, err) }()

	tag := &models.Tag{
		ID:        uuid.New(),
		Name:      name,
		SessionID: sessionID,
		CreatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(tag)
	if err != nil {
		return nil, fmt.Errorf("marshal tag: %w", err)
	}

	err = s.update(func(txn *badger.Txn) error {
		nameKey := tagNameKey(sessionID, name)
		if _, err := txn.Get(nameKey); err == nil {
			return ErrTagExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check tag name: %w", err)
		}

		if err := txn.Set(tagKey(sessionID, tag.ID), data); err != nil {
			return fmt.Errorf("set tag: %w", err)
		}
		if err := txn.Set(nameKey, []byte(tag.ID.String())); err != nil {
			return fmt.Errorf("set tag name index: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return tag, nil
}

// ListTags returns all tags of a session with each tag's vote count for
// the given viewpoint merged in. Tags with no counter report zero.
// Results are ordered by creation time.
func (s *Store) ListTags(ctx context.Context, sessionID, viewpointID string) (_ []models.Tag, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("list_tags", start, err) }()

	var tags []models.Tag
	counts := make(map[uuid.UUID]int)

	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(tagKeyPrefix + sessionID + ":")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var tag models.Tag
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &tag)
			}); err != nil {
				return fmt.Errorf("unmarshal tag: %w", err)
			}
			tags = append(tags, tag)
		}

		vopts := badger.DefaultIteratorOptions
		vopts.Prefix = votePrefix(sessionID, viewpointID)
		vit := txn.NewIterator(vopts)
		defer vit.Close()

		for vit.Rewind(); vit.Valid(); vit.Next() {
			var vc models.VoteCount
			if err := vit.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &vc)
			}); err != nil {
				return fmt.Errorf("unmarshal vote count: %w", err)
			}
			counts[vc.TagID] = vc.Votes
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range tags {
		if votes, ok := counts[tags[i].ID]; ok && votes > 0 {
			tags[i].Votes = votes
		}
	}

	// Oldest first, tie-broken by ID so the order is stable across calls.
	sort.Slice(tags, func(i, j int) bool {
		if !tags[i].CreatedAt.Equal(tags[j].CreatedAt) {
			return tags[i].CreatedAt.Before(tags[j].CreatedAt)
		}
		return tags[i].ID.String() < tags[j].ID.String()
	})
	return tags, nil
}

// getTag loads a tag document inside an open transaction.
func getTag(txn *badger.Txn, sessionID string, tagID uuid.UUID) (*models.Tag, error) {
	item, err := txn.Get(tagKey(sessionID, tagID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrTagNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}

	var tag models.Tag
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &tag)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal tag: %w", err)
	}
	return &tag, nil
}
