// Viewpoint - Collaborative Geographic Feedback
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/viewpoint

package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/viewpoint/internal/metrics"
	"github.com/tomtom215/viewpoint/internal/models"
)

// feedbackKey builds the document key for a feedback item.
func feedbackKey(sessionID, viewpointID string, id uuid.UUID) []byte {
	return []byte(feedbackKeyPrefix + sessionID + ":" + viewpointID + ":" + id.String())
}

// CreateFeedback stores a feedback item with a server-assigned ID and
// timestamp and returns the complete document.
func (s *Store) CreateFeedback(ctx context.Context, viewpointID, sessionID, text string, tags []string) (_ *models.Feedback, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("create_feedback", start, err) }()

	if tags == nil {
		tags = []string{}
	}
	fb := &models.Feedback{
		ID:          uuid.New(),
		ViewpointID: viewpointID,
		SessionID:   sessionID,
		Text:        text,
		Tags:        tags,
		Timestamp:   time.Now().UTC(),
	}

	data, err := json.Marshal(fb)
	if err != nil {
		return nil, fmt.Errorf("marshal feedback: %w", err)
	}

	err = s.update(func(txn *badger.Txn) error {
		return txn.Set(feedbackKey(sessionID, viewpointID, fb.ID), data)
	})
	if err != nil {
		return nil, err
	}

	return fb, nil
}

// ListFeedback returns all feedback for a (viewpoint, session) pair,
// newest first.
func (s *Store) ListFeedback(ctx context.Context, viewpointID, sessionID string) (_ []models.Feedback, err error) {
	start := time.Now()
	defer func() { metrics.RecordStoreOp("list_feedback", start, err) }()

	var items []models.Feedback
	err = s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(feedbackKeyPrefix + sessionID + ":" + viewpointID + ":")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var fb models.Feedback
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &fb)
			}); err != nil {
				return fmt.Errorf("unmarshal feedback: %w", err)
			}
			items = append(items, fb)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool {
		if !items[i].Timestamp.Equal(items[j].Timestamp) {
			return items[i].Timestamp.After(items[j].Timestamp)
		}
		return items[i].ID.String() < items[j].ID.String()
	})
	return items, nil
}
