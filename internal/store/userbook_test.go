package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

func setupTestStore(t *testing.T) (*store.Store, func()) {
	t.Helper()
	tmpDir, err := os.MkdirTemp("", "library-store-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(store.Options{Path: dbPath}, nil, store.NewNoopEmitter())
	require.NoError(t, err)

	cleanup := func() {
		s.Close()
		os.RemoveAll(tmpDir)
	}
	return s, cleanup
}

func catalogBook(id string, pages int) domain.Book {
	return domain.Book{
		ID:         id,
		Title:      "Book " + id,
		Authors:    []string{"Author " + id},
		PageCount:  pages,
		Categories: []string{"Fiction"},
	}
}

func TestSetUserBookStatus(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

	t.Run("shelves a new book", func(t *testing.T) {
		ub, err := s.SetUserBookStatus(ctx, "user-A", catalogBook("vol-1", 300), domain.StatusWantToRead, now)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusWantToRead, ub.Status)
		assert.Equal(t, 300, ub.TotalPages)
		assert.Equal(t, "Book vol-1", ub.Book.Title)

		got, err := s.GetUserBook(ctx, "user-A", "vol-1")
		require.NoError(t, err)
		assert.Equal(t, domain.StatusWantToRead, got.Status)
	})

	t.Run("replace keeps history for the pair", func(t *testing.T) {
		first, err := s.SetUserBookStatus(ctx, "user-A", catalogBook("vol-2", 200), domain.StatusWantToRead, now)
		require.NoError(t, err)

		later := now.Add(48 * time.Hour)
		second, err := s.SetUserBookStatus(ctx, "user-A", catalogBook("vol-2", 200), domain.StatusReading, later)
		require.NoError(t, err)

		assert.Equal(t, domain.StatusReading, second.Status)
		assert.Equal(t, first.DateAdded, second.DateAdded)
		require.NotNil(t, second.DateStarted)
		assert.Equal(t, later, *second.DateStarted)

		// Exactly one record per pair.
		books, err := s.ListUserBooks(ctx, "user-A", "")
		require.NoError(t, err)
		ids := map[string]int{}
		for _, ub := range books {
			ids[ub.BookID]++
		}
		assert.Equal(t, 1, ids["vol-2"])
	})

	t.Run("marking read counts the completion once", func(t *testing.T) {
		_, err := s.SetUserBookStatus(ctx, "user-B", catalogBook("vol-3", 150), domain.StatusRead, now)
		require.NoError(t, err)

		challenge, err := s.GetChallenge(ctx, "user-B", now.Year())
		require.NoError(t, err)
		assert.Equal(t, 1, challenge.Completed)
		assert.Equal(t, domain.DefaultChallengeTarget, challenge.Target)

		profile, err := s.GetProfile(ctx, "user-B")
		require.NoError(t, err)
		assert.Equal(t, 1, profile.TotalBooksRead)

		done, err := s.HasCompleted(ctx, "user-B", "vol-3")
		require.NoError(t, err)
		assert.True(t, done)
	})

	t.Run("re-reading does not double count", func(t *testing.T) {
		_, err := s.SetUserBookStatus(ctx, "user-C", catalogBook("vol-4", 150), domain.StatusRead, now)
		require.NoError(t, err)

		// Back to reading, then read again.
		_, err = s.SetUserBookStatus(ctx, "user-C", catalogBook("vol-4", 150), domain.StatusReading, now.Add(time.Hour))
		require.NoError(t, err)
		_, err = s.SetUserBookStatus(ctx, "user-C", catalogBook("vol-4", 150), domain.StatusRead, now.Add(2*time.Hour))
		require.NoError(t, err)

		challenge, err := s.GetChallenge(ctx, "user-C", now.Year())
		require.NoError(t, err)
		assert.Equal(t, 1, challenge.Completed)

		profile, err := s.GetProfile(ctx, "user-C")
		require.NoError(t, err)
		assert.Equal(t, 1, profile.TotalBooksRead)
	})
}

func TestUpdateUserBookProgress(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

	t.Run("records the current page", func(t *testing.T) {
		_, err := s.SetUserBookStatus(ctx, "user-A", catalogBook("vol-1", 300), domain.StatusReading, now)
		require.NoError(t, err)

		ub, err := s.UpdateUserBookProgress(ctx, "user-A", "vol-1", 150, 0, now.Add(time.Hour))
		require.NoError(t, err)

		assert.Equal(t, 150, ub.CurrentPage)
		p := ub.Progress()
		require.NotNil(t, p)
		assert.Equal(t, 50, *p)
		assert.Equal(t, domain.StatusReading, ub.Status)
	})

	t.Run("finishing the book applies completion accounting", func(t *testing.T) {
		_, err := s.SetUserBookStatus(ctx, "user-B", catalogBook("vol-2", 200), domain.StatusReading, now)
		require.NoError(t, err)

		ub, err := s.UpdateUserBookProgress(ctx, "user-B", "vol-2", 200, 0, now.Add(time.Hour))
		require.NoError(t, err)

		assert.Equal(t, domain.StatusRead, ub.Status)
		require.NotNil(t, ub.CompletedAt)

		challenge, err := s.GetChallenge(ctx, "user-B", now.Year())
		require.NoError(t, err)
		assert.Equal(t, 1, challenge.Completed)

		profile, err := s.GetProfile(ctx, "user-B")
		require.NoError(t, err)
		assert.Equal(t, 1, profile.TotalBooksRead)
	})

	t.Run("corrects an unknown page count", func(t *testing.T) {
		_, err := s.SetUserBookStatus(ctx, "user-D", catalogBook("vol-3", 0), domain.StatusReading, now)
		require.NoError(t, err)

		ub, err := s.UpdateUserBookProgress(ctx, "user-D", "vol-3", 40, 0, now.Add(time.Hour))
		require.NoError(t, err)
		assert.Nil(t, ub.Progress())

		ub, err = s.UpdateUserBookProgress(ctx, "user-D", "vol-3", 40, 160, now.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 160, ub.TotalPages)
		p := ub.Progress()
		require.NotNil(t, p)
		assert.Equal(t, 25, *p)
	})

	t.Run("unshelved book returns not found", func(t *testing.T) {
		_, err := s.UpdateUserBookProgress(ctx, "user-A", "missing", 10, 0, now)
		assert.ErrorIs(t, err, store.ErrUserBookNotFound)
	})
}

func TestDeleteUserBook(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

	t.Run("removes the record", func(t *testing.T) {
		_, err := s.SetUserBookStatus(ctx, "user-A", catalogBook("vol-1", 300), domain.StatusWantToRead, now)
		require.NoError(t, err)

		require.NoError(t, s.DeleteUserBook(ctx, "user-A", "vol-1"))

		_, err = s.GetUserBook(ctx, "user-A", "vol-1")
		assert.ErrorIs(t, err, store.ErrUserBookNotFound)
	})

	t.Run("deleting twice returns not found", func(t *testing.T) {
		err := s.DeleteUserBook(ctx, "user-A", "vol-1")
		assert.ErrorIs(t, err, store.ErrUserBookNotFound)
	})

	t.Run("remove and re-add does not recount the completion", func(t *testing.T) {
		_, err := s.SetUserBookStatus(ctx, "user-B", catalogBook("vol-2", 150), domain.StatusRead, now)
		require.NoError(t, err)

		require.NoError(t, s.DeleteUserBook(ctx, "user-B", "vol-2"))

		// Marker outlives the record.
		done, err := s.HasCompleted(ctx, "user-B", "vol-2")
		require.NoError(t, err)
		assert.True(t, done)

		_, err = s.SetUserBookStatus(ctx, "user-B", catalogBook("vol-2", 150), domain.StatusRead, now.Add(time.Hour))
		require.NoError(t, err)

		challenge, err := s.GetChallenge(ctx, "user-B", now.Year())
		require.NoError(t, err)
		assert.Equal(t, 1, challenge.Completed)

		profile, err := s.GetProfile(ctx, "user-B")
		require.NoError(t, err)
		assert.Equal(t, 1, profile.TotalBooksRead)
	})
}

func TestListUserBooks(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)

	_, err := s.SetUserBookStatus(ctx, "user-A", catalogBook("vol-1", 100), domain.StatusWantToRead, now)
	require.NoError(t, err)
	_, err = s.SetUserBookStatus(ctx, "user-A", catalogBook("vol-2", 100), domain.StatusReading, now)
	require.NoError(t, err)
	_, err = s.SetUserBookStatus(ctx, "user-A", catalogBook("vol-3", 100), domain.StatusRead, now)
	require.NoError(t, err)
	_, err = s.SetUserBookStatus(ctx, "user-B", catalogBook("vol-1", 100), domain.StatusReading, now)
	require.NoError(t, err)

	t.Run("all shelves", func(t *testing.T) {
		books, err := s.ListUserBooks(ctx, "user-A", "")
		require.NoError(t, err)
		assert.Len(t, books, 3)
	})

	t.Run("single shelf", func(t *testing.T) {
		books, err := s.ListUserBooks(ctx, "user-A", domain.StatusReading)
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "vol-2", books[0].BookID)
	})

	t.Run("other users are not visible", func(t *testing.T) {
		books, err := s.ListUserBooks(ctx, "user-B", "")
		require.NoError(t, err)
		require.Len(t, books, 1)
		assert.Equal(t, "user-B", books[0].UserID)
	})

	t.Run("stats", func(t *testing.T) {
		stats, err := s.GetLibraryStats(ctx, "user-A")
		require.NoError(t, err)
		assert.Equal(t, 1, stats.WantToRead)
		assert.Equal(t, 1, stats.Reading)
		assert.Equal(t, 1, stats.Read)
		assert.Equal(t, 1, stats.TotalBooksRead)
	})
}
