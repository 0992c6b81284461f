package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

// profilePrefix keys profiles as profile:{userID}.
const profilePrefix = "profile:"

func profileKey(userID string) []byte {
	return []byte(profilePrefix + userID)
}

// GetProfile retrieves a user's profile.
func (s *Store) GetProfile(_ context.Context, userID string) (*domain.UserProfile, error) {
	var p domain.UserProfile
	if err := s.get(profileKey(userID), &p); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

// SaveProfile writes a profile, creating it when absent.
func (s *Store) SaveProfile(_ context.Context, p *domain.UserProfile) error {
	return s.update(func(txn *badger.Txn) error {
		return setTxn(txn, profileKey(p.UserID), p)
	})
}

// bumpProfileTxn increments the lifetime books-read counter, creating the
// profile when absent. Runs inside the caller's transaction.
func (s *Store) bumpProfileTxn(txn *badger.Txn, userID string, completedAt time.Time) error {
	key := profileKey(userID)

	var p domain.UserProfile
	err := getTxn(txn, key, &p)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		p = *domain.NewUserProfile(userID, completedAt)
	case err != nil:
		return fmt.Errorf("get profile: %w", err)
	}

	p.RecordCompletion(completedAt)
	if err := setTxn(txn, key, &p); err != nil {
		return fmt.Errorf("set profile: %w", err)
	}
	return nil
}
