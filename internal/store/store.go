// Package store persists library state in a Badger key-value database.
//
// All multi-key writes (shelf changes, completion accounting) run inside a
// single Badger transaction so counters can never drift from the records
// they describe.
package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

// EventEmitter receives library change events after the originating
// transaction commits. The store uses this to broadcast changes without
// depending on the delivery mechanism.
type EventEmitter interface {
	Emit(event domain.Event)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(domain.Event) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// SearchIndexer keeps the library search index in sync with store changes.
// Index updates run after commit and never fail the originating write.
type SearchIndexer interface {
	IndexUserBook(ctx context.Context, ub *domain.UserBook) error
	DeleteUserBook(ctx context.Context, userID, bookID string) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexUserBook is a no-op.
func (NoopSearchIndexer) IndexUserBook(context.Context, *domain.UserBook) error { return nil }

// DeleteUserBook is a no-op.
func (NoopSearchIndexer) DeleteUserBook(context.Context, string, string) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger

	eventEmitter EventEmitter

	// Search indexer for keeping search in sync with store changes.
	// Set via SetSearchIndexer after store creation to avoid circular dependencies.
	searchIndexer SearchIndexer

	// defaultChallengeTarget seeds challenges created implicitly by a
	// completion when the user never set a goal for the year.
	defaultChallengeTarget int
}

// Options configures a Store.
type Options struct {
	Path string
	// DefaultChallengeTarget for implicitly created challenges.
	// Zero falls back to domain.DefaultChallengeTarget.
	DefaultChallengeTarget int
	// InMemory runs Badger without touching disk, for tests.
	InMemory bool
}

// New opens the Badger database and returns a Store.
func New(opts Options, logger *slog.Logger, emitter EventEmitter) (*Store, error) {
	badgerOpts := badger.DefaultOptions(opts.Path)
	badgerOpts.Logger = nil            // Disable Badger's internal logging
	badgerOpts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	badgerOpts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true).WithDir("").WithValueDir("")
		badgerOpts.SyncWrites = false
	}

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	target := opts.DefaultChallengeTarget
	if target <= 0 {
		target = domain.DefaultChallengeTarget
	}

	store := &Store{
		db:                     db,
		logger:                 logger,
		eventEmitter:           emitter,
		defaultChallengeTarget: target,
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", opts.Path)
	}

	return store, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// SetSearchIndexer sets the search indexer for keeping search in sync.
// This is set after store creation to avoid circular dependencies
// (store needs to exist before the search service can be created).
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.searchIndexer = indexer
}

func (s *Store) emit(event domain.Event) {
	if s.eventEmitter != nil {
		s.eventEmitter.Emit(event)
	}
}

// Helper methods for database operations.

// update runs fn in a read-write transaction and maps transaction
// conflicts to ErrConflict so callers can retry the logical operation.
func (s *Store) update(fn func(txn *badger.Txn) error) error {
	err := s.db.Update(fn)
	if errors.Is(err, badger.ErrConflict) {
		return ErrConflict
	}
	return err
}

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		return getTxn(txn, key, dest)
	})
}

// getTxn retrieves a value by key inside an existing transaction.
func getTxn(txn *badger.Txn, key []byte, dest any) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}

	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, dest)
	})
}

// setTxn marshals and stores a value inside an existing transaction.
func setTxn(txn *badger.Txn, key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return txn.Set(key, data)
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
