package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/id"
)

// challengePrefix keys challenges as challenge:{userID}:{year}.
const challengePrefix = "challenge:"

func challengeKey(userID string, year int) []byte {
	return []byte(challengePrefix + userID + ":" + strconv.Itoa(year))
}

// GetChallenge retrieves the user's challenge for a year.
func (s *Store) GetChallenge(_ context.Context, userID string, year int) (*domain.ReadingChallenge, error) {
	var c domain.ReadingChallenge
	if err := s.get(challengeKey(userID, year), &c); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("get challenge: %w", err)
	}
	return &c, nil
}

// ListChallenges returns all of the user's challenges, newest year first.
func (s *Store) ListChallenges(_ context.Context, userID string) ([]*domain.ReadingChallenge, error) {
	prefix := []byte(challengePrefix + userID + ":")
	challenges := []*domain.ReadingChallenge{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration seeks to the end of the prefix range.
		seek := append(append([]byte{}, prefix...), 0xff)
		for it.Seek(seek); it.ValidForPrefix(prefix); it.Next() {
			var c domain.ReadingChallenge
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &c)
			})
			if err != nil {
				return fmt.Errorf("unmarshal challenge: %w", err)
			}
			challenges = append(challenges, &c)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return challenges, nil
}

// CreateChallenge creates a challenge for a year the user has none for.
func (s *Store) CreateChallenge(_ context.Context, c *domain.ReadingChallenge) error {
	key := challengeKey(c.UserID, c.Year)

	err := s.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return ErrChallengeExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get challenge: %w", err)
		}
		return setTxn(txn, key, c)
	})
	if err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.Info("reading challenge created",
			"user_id", c.UserID, "year", c.Year, "target", c.Target)
	}
	return nil
}

// UpdateChallengeTarget changes the target of an existing challenge.
// The completed count and the CompletedAt stamp are never touched, so
// lowering the target cannot retroactively mark a challenge achieved.
func (s *Store) UpdateChallengeTarget(_ context.Context, userID string, year, target int, now time.Time) (*domain.ReadingChallenge, error) {
	key := challengeKey(userID, year)

	var c domain.ReadingChallenge
	err := s.update(func(txn *badger.Txn) error {
		if err := getTxn(txn, key, &c); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrChallengeNotFound
			}
			return fmt.Errorf("get challenge: %w", err)
		}
		c.Target = target
		c.UpdatedAt = now
		return setTxn(txn, key, &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// bumpChallengeTxn increments the completion counter for the year of
// completedAt, creating the challenge with the default target when the
// user never set a goal. Runs inside the caller's transaction.
func (s *Store) bumpChallengeTxn(txn *badger.Txn, userID string, completedAt time.Time) (*domain.ReadingChallenge, error) {
	year := completedAt.Year()
	key := challengeKey(userID, year)

	var c domain.ReadingChallenge
	err := getTxn(txn, key, &c)
	switch {
	case errors.Is(err, badger.ErrKeyNotFound):
		c = *domain.NewReadingChallenge(id.MustGenerate("chal"), userID, year, s.defaultChallengeTarget, completedAt)
	case err != nil:
		return nil, fmt.Errorf("get challenge: %w", err)
	}

	c.RecordCompletion(completedAt)
	if err := setTxn(txn, key, &c); err != nil {
		return nil, fmt.Errorf("set challenge: %w", err)
	}
	return &c, nil
}
