package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

// Key prefixes for library storage.
const (
	userBookPrefix = "ub:"   // ub:{userID}:{bookID} -> UserBook
	donePrefix     = "done:" // done:{userID}:{bookID} -> completionMarker
)

// completionMarker records that a (user, book) pair has been counted as
// completed. Markers are never deleted, not even when the book is removed
// from the library, so re-adding and re-finishing a book cannot inflate
// the counters.
type completionMarker struct {
	BookID      string    `json:"bookId"`
	CompletedAt time.Time `json:"completedAt"`
}

func userBookKey(userID, bookID string) []byte {
	return []byte(userBookPrefix + userID + ":" + bookID)
}

func completionKey(userID, bookID string) []byte {
	return []byte(donePrefix + userID + ":" + bookID)
}

// SetUserBookStatus shelves a book for a user, replacing any existing
// record for the pair. For an existing pair the prior record's history
// (date added, date started, rating, notes, reading position) is kept and
// only the shelf changes; the book argument is ignored in that case.
//
// A transition onto the read shelf that has not been counted before is
// recorded in the same transaction: the completion marker is written and
// the year's challenge and the profile counters are incremented together.
func (s *Store) SetUserBookStatus(ctx context.Context, userID string, book domain.Book, status domain.Status, now time.Time) (*domain.UserBook, error) {
	key := userBookKey(userID, book.ID)

	var ub *domain.UserBook
	var completion *completionResult

	err := s.update(func(txn *badger.Txn) error {
		var existing domain.UserBook
		err := getTxn(txn, key, &existing)
		switch {
		case err == nil:
			existing.SetStatus(status, now)
			ub = &existing
		case errors.Is(err, badger.ErrKeyNotFound):
			ub = domain.NewUserBook(userID, book, status, now)
		default:
			return fmt.Errorf("get user book: %w", err)
		}

		completion, err = s.applyCompletionTxn(txn, ub)
		if err != nil {
			return err
		}

		return setTxn(txn, key, ub)
	})
	if err != nil {
		return nil, err
	}

	s.afterUserBookWrite(ctx, ub, completion)

	if s.logger != nil {
		s.logger.Info("book shelved",
			"user_id", userID,
			"book_id", ub.BookID,
			"status", ub.Status,
		)
	}
	return ub, nil
}

// UpdateUserBookProgress records the user's current page. A positive
// totalPages corrects the page count when the catalog snapshot lacked
// one; zero keeps the stored total. Returns ErrUserBookNotFound when the
// pair is not in the library. Reaching the last page moves the book to
// the read shelf and applies completion accounting in the same
// transaction.
func (s *Store) UpdateUserBookProgress(ctx context.Context, userID, bookID string, currentPage, totalPages int, now time.Time) (*domain.UserBook, error) {
	key := userBookKey(userID, bookID)

	var ub domain.UserBook
	var completion *completionResult

	err := s.update(func(txn *badger.Txn) error {
		if err := getTxn(txn, key, &ub); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrUserBookNotFound
			}
			return fmt.Errorf("get user book: %w", err)
		}

		if totalPages > 0 {
			ub.TotalPages = totalPages
		}
		ub.SetProgress(currentPage, now)

		var err error
		completion, err = s.applyCompletionTxn(txn, &ub)
		if err != nil {
			return err
		}

		return setTxn(txn, key, &ub)
	})
	if err != nil {
		return nil, err
	}

	s.afterUserBookWrite(ctx, &ub, completion)
	return &ub, nil
}

// DeleteUserBook removes a book from the user's library. The completion
// marker survives removal so counters stay monotonic.
func (s *Store) DeleteUserBook(ctx context.Context, userID, bookID string) error {
	key := userBookKey(userID, bookID)

	err := s.update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrUserBookNotFound
			}
			return fmt.Errorf("get user book: %w", err)
		}
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}

	event := domain.NewEvent(domain.EventBookRemoved, userID)
	event.BookID = bookID
	s.emit(event)

	if s.searchIndexer != nil {
		if err := s.searchIndexer.DeleteUserBook(ctx, userID, bookID); err != nil && s.logger != nil {
			s.logger.Warn("failed to remove book from search index",
				"user_id", userID, "book_id", bookID, "error", err)
		}
	}

	if s.logger != nil {
		s.logger.Info("book removed from library", "user_id", userID, "book_id", bookID)
	}
	return nil
}

// GetUserBook retrieves the library record for a (user, book) pair.
func (s *Store) GetUserBook(_ context.Context, userID, bookID string) (*domain.UserBook, error) {
	var ub domain.UserBook
	if err := s.get(userBookKey(userID, bookID), &ub); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrUserBookNotFound
		}
		return nil, fmt.Errorf("get user book: %w", err)
	}
	return &ub, nil
}

// ListUserBooks returns the user's library, optionally filtered to one
// shelf. Pass an empty status for all shelves.
func (s *Store) ListUserBooks(_ context.Context, userID string, status domain.Status) ([]*domain.UserBook, error) {
	prefix := []byte(userBookPrefix + userID + ":")
	books := []*domain.UserBook{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var ub domain.UserBook
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ub)
			})
			if err != nil {
				return fmt.Errorf("unmarshal user book: %w", err)
			}
			if status != "" && ub.Status != status {
				continue
			}
			books = append(books, &ub)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list user books: %w", err)
	}
	return books, nil
}

// HasCompleted reports whether the pair has ever been counted as completed.
func (s *Store) HasCompleted(_ context.Context, userID, bookID string) (bool, error) {
	return s.exists(completionKey(userID, bookID))
}

// LibraryStats summarizes a user's library.
type LibraryStats struct {
	WantToRead     int `json:"wantToRead"`
	Reading        int `json:"reading"`
	Read           int `json:"read"`
	TotalBooksRead int `json:"totalBooksRead"`
}

// GetLibraryStats counts books per shelf and includes the lifetime
// books-read counter from the profile.
func (s *Store) GetLibraryStats(ctx context.Context, userID string) (*LibraryStats, error) {
	books, err := s.ListUserBooks(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	stats := &LibraryStats{}
	for _, ub := range books {
		switch ub.Status {
		case domain.StatusWantToRead:
			stats.WantToRead++
		case domain.StatusReading:
			stats.Reading++
		case domain.StatusRead:
			stats.Read++
		}
	}

	profile, err := s.GetProfile(ctx, userID)
	switch {
	case err == nil:
		stats.TotalBooksRead = profile.TotalBooksRead
	case errors.Is(err, ErrProfileNotFound):
		// No completions yet.
	default:
		return nil, err
	}
	return stats, nil
}

// completionResult carries post-commit event data out of a transaction.
type completionResult struct {
	year     int
	achieved bool
}

// applyCompletionTxn applies completion accounting for a record that sits
// on the read shelf, exactly once per (user, book) pair. It writes the
// completion marker and increments the challenge and profile counters in
// the caller's transaction. Returns nil when nothing was counted.
func (s *Store) applyCompletionTxn(txn *badger.Txn, ub *domain.UserBook) (*completionResult, error) {
	if !ub.IsRead() || ub.CompletedAt == nil {
		return nil, nil
	}

	markerKey := completionKey(ub.UserID, ub.BookID)
	_, err := txn.Get(markerKey)
	if err == nil {
		// Already counted, possibly during an earlier stay on the read shelf.
		return nil, nil
	}
	if !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("get completion marker: %w", err)
	}

	completedAt := *ub.CompletedAt
	marker := completionMarker{BookID: ub.BookID, CompletedAt: completedAt}
	if err := setTxn(txn, markerKey, marker); err != nil {
		return nil, fmt.Errorf("set completion marker: %w", err)
	}

	challenge, err := s.bumpChallengeTxn(txn, ub.UserID, completedAt)
	if err != nil {
		return nil, err
	}
	if err := s.bumpProfileTxn(txn, ub.UserID, completedAt); err != nil {
		return nil, err
	}

	return &completionResult{
		year:     completedAt.Year(),
		achieved: challenge.Achieved() && challenge.Completed == challenge.Target,
	}, nil
}

// afterUserBookWrite emits events and refreshes the search index once the
// transaction has committed.
func (s *Store) afterUserBookWrite(ctx context.Context, ub *domain.UserBook, completion *completionResult) {
	event := domain.NewEvent(domain.EventShelfChanged, ub.UserID)
	event.BookID = ub.BookID
	s.emit(event)

	if completion != nil {
		done := domain.NewEvent(domain.EventBookCompleted, ub.UserID)
		done.BookID = ub.BookID
		done.Year = completion.year
		s.emit(done)

		if completion.achieved {
			achieved := domain.NewEvent(domain.EventChallengeAchieved, ub.UserID)
			achieved.Year = completion.year
			s.emit(achieved)
		}
	}

	if s.searchIndexer != nil {
		if err := s.searchIndexer.IndexUserBook(ctx, ub); err != nil && s.logger != nil {
			s.logger.Warn("failed to index book for search",
				"user_id", ub.UserID, "book_id", ub.BookID, "error", err)
		}
	}
}

// ForEachUserBook visits every library record across all users. Used to
// rebuild the search index after a mapping change.
func (s *Store) ForEachUserBook(_ context.Context, fn func(*domain.UserBook) error) error {
	prefix := []byte(userBookPrefix)

	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var ub domain.UserBook
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &ub)
			})
			if err != nil {
				return fmt.Errorf("unmarshal user book: %w", err)
			}
			if err := fn(&ub); err != nil {
				return err
			}
		}
		return nil
	})
}
