// Entertainment Planner - Vibe-Based Venue Route Recommendations
// Copyright 2026 beatovk
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/beatovk/entertainment-planner

package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// recKeyPrefix namespaces recommendation entries in the store.
const recKeyPrefix = "rec_cache:"

// persistEntry is the JSON envelope written to the persistent tier.
type persistEntry struct {
	Value    json.RawMessage `json:"value"`
	ExpireTS int64           `json:"expire_ts"`
}

// BadgerStore is the persistent cache tier, backed by BadgerDB. Entries
// carry an absolute expiry timestamp and are lazily removed on read or via
// Cleanup. Writes are upserts: an existing key is replaced.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) the persistent cache at dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open persistent cache: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Get returns the raw cached value for key, or (nil, false) when the key is
// absent, expired, or undecodable. Expired and corrupt entries are deleted
// on the way out so later reads stay cheap.
func (s *BadgerStore) Get(key string) (json.RawMessage, bool, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(recKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read persistent cache: %w", err)
	}

	var entry persistEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// Corrupt envelope: treat as a miss and drop the entry.
		s.deleteQuietly(key)
		return nil, false, nil
	}

	if time.Now().Unix() > entry.ExpireTS {
		s.deleteQuietly(key)
		return nil, false, nil
	}

	return entry.Value, true, nil
}

// Set upserts a value with an absolute expiry timestamp (unix seconds).
func (s *BadgerStore) Set(key string, value json.RawMessage, expireTS int64) error {
	data, err := json.Marshal(persistEntry{Value: value, ExpireTS: expireTS})
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(recKeyPrefix+key), data)
	})
	if err != nil {
		return fmt.Errorf("write persistent cache: %w", err)
	}
	return nil
}

// Delete removes an entry. Absent keys are not an error.
func (s *BadgerStore) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(recKeyPrefix + key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes all entries whose expiry has strictly passed and returns
// the number removed.
func (s *BadgerStore) Cleanup() (int, error) {
	now := time.Now().Unix()
	var expired [][]byte

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(recKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			var entry persistEntry
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil || now > entry.ExpireTS {
				expired = append(expired, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan persistent cache: %w", err)
	}

	removed := 0
	for _, key := range expired {
		err := s.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(key)
		})
		if err == nil {
			removed++
		}
	}
	return removed, nil
}

// Close releases the underlying store.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// deleteQuietly removes an entry, ignoring errors. Used on lazy-expiry and
// corrupt-entry paths where deletion is best-effort.
func (s *BadgerStore) deleteQuietly(key string) {
	_ = s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(recKeyPrefix + key))
	})
}
