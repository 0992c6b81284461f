package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/search"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// CatalogClient is the slice of the catalog adapter the services need.
type CatalogClient interface {
	Search(ctx context.Context, query string, limit int) ([]domain.Book, error)
	GetByID(ctx context.Context, bookID string) (*domain.Book, error)
	SearchByAuthor(ctx context.Context, author string, limit int) ([]domain.Book, error)
	SearchByCategory(ctx context.Context, category string, limit int) ([]domain.Book, error)
	SearchByISBN(ctx context.Context, isbn string, limit int) ([]domain.Book, error)
}

// LibraryService manages per-user shelves and reading progress.
type LibraryService struct {
	store   *store.Store
	catalog CatalogClient
	index   *search.Index
	logger  *slog.Logger
}

// NewLibraryService creates a new library service. The search index may
// be nil when search is disabled.
func NewLibraryService(st *store.Store, catalog CatalogClient, index *search.Index, logger *slog.Logger) *LibraryService {
	return &LibraryService{
		store:   st,
		catalog: catalog,
		index:   index,
		logger:  logger,
	}
}

// AddBookRequest shelves a catalog book.
type AddBookRequest struct {
	BookID string `json:"book_id" validate:"required"`
	Status string `json:"status" validate:"required,oneof=want_to_read reading read"`
}

// AddBook puts a book on one of the user's shelves. Adding a book that is
// already shelved moves it, keeping its history. The catalog is consulted
// only for books not yet in the library.
func (s *LibraryService) AddBook(ctx context.Context, userID string, req AddBookRequest) (*domain.UserBook, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	status := domain.Status(req.Status)

	var book domain.Book
	_, err := s.store.GetUserBook(ctx, userID, req.BookID)
	switch {
	case errors.Is(err, store.ErrUserBookNotFound):
		// New pair: take a catalog snapshot.
		fetched, catErr := s.catalog.GetByID(ctx, req.BookID)
		if catErr != nil {
			return nil, catErr
		}
		book = *fetched
	case err != nil:
		return nil, fmt.Errorf("get user book: %w", err)
	default:
		// Existing pair: the stored snapshot is kept, only the ID matters.
		book = domain.Book{ID: req.BookID}
	}

	ub, err := s.setStatusWithRetry(ctx, userID, book, status)
	if err != nil {
		return nil, err
	}
	return ub, nil
}

// setStatusWithRetry retries a shelf write once when it loses a
// transaction race, then reports the conflict to the caller.
func (s *LibraryService) setStatusWithRetry(ctx context.Context, userID string, book domain.Book, status domain.Status) (*domain.UserBook, error) {
	ub, err := s.store.SetUserBookStatus(ctx, userID, book, status, time.Now().UTC())
	if errors.Is(err, store.ErrConflict) {
		ub, err = s.store.SetUserBookStatus(ctx, userID, book, status, time.Now().UTC())
	}
	if errors.Is(err, store.ErrConflict) {
		return nil, domainerrors.ErrConcurrentModification
	}
	if err != nil {
		return nil, fmt.Errorf("set user book status: %w", err)
	}
	return ub, nil
}

// UpdateProgressRequest records the current page of a shelved book.
// TotalPages optionally corrects an unknown page count.
type UpdateProgressRequest struct {
	CurrentPage int `json:"current_page" validate:"gte=0"`
	TotalPages  int `json:"total_pages,omitempty" validate:"gte=0"`
}

// UpdateProgress records the user's position in a book. Only shelved
// books can receive progress updates.
func (s *LibraryService) UpdateProgress(ctx context.Context, userID, bookID string, req UpdateProgressRequest) (*domain.UserBook, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	ub, err := s.store.UpdateUserBookProgress(ctx, userID, bookID, req.CurrentPage, req.TotalPages, time.Now().UTC())
	if errors.Is(err, store.ErrConflict) {
		ub, err = s.store.UpdateUserBookProgress(ctx, userID, bookID, req.CurrentPage, req.TotalPages, time.Now().UTC())
	}
	switch {
	case errors.Is(err, store.ErrUserBookNotFound):
		return nil, domainerrors.NotInLibrary("cannot track progress for a book that is not in the library")
	case errors.Is(err, store.ErrConflict):
		return nil, domainerrors.ErrConcurrentModification
	case err != nil:
		return nil, fmt.Errorf("update progress: %w", err)
	}
	return ub, nil
}

// RemoveBook takes a book off the user's shelves.
func (s *LibraryService) RemoveBook(ctx context.Context, userID, bookID string) error {
	err := s.store.DeleteUserBook(ctx, userID, bookID)
	switch {
	case errors.Is(err, store.ErrUserBookNotFound):
		return domainerrors.NotInLibrary("book is not in the library")
	case err != nil:
		return fmt.Errorf("remove book: %w", err)
	}
	return nil
}

// GetBook returns the library record for one book.
func (s *LibraryService) GetBook(ctx context.Context, userID, bookID string) (*domain.UserBook, error) {
	ub, err := s.store.GetUserBook(ctx, userID, bookID)
	switch {
	case errors.Is(err, store.ErrUserBookNotFound):
		return nil, domainerrors.NotInLibrary("book is not in the library")
	case err != nil:
		return nil, fmt.Errorf("get user book: %w", err)
	}
	return ub, nil
}

// ListBooks returns the user's library, optionally filtered to one shelf.
func (s *LibraryService) ListBooks(ctx context.Context, userID, status string) ([]*domain.UserBook, error) {
	if status != "" && !domain.Status(status).Valid() {
		return nil, domainerrors.Validationf("unknown shelf status %q", status)
	}
	books, err := s.store.ListUserBooks(ctx, userID, domain.Status(status))
	if err != nil {
		return nil, fmt.Errorf("list user books: %w", err)
	}
	return books, nil
}

// Stats summarizes the user's library.
func (s *LibraryService) Stats(ctx context.Context, userID string) (*store.LibraryStats, error) {
	stats, err := s.store.GetLibraryStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("library stats: %w", err)
	}
	return stats, nil
}

// SearchRequest queries the user's library.
type SearchRequest struct {
	Query  string `json:"query"`
	Status string `json:"status" validate:"omitempty,oneof=want_to_read reading read"`
	Limit  int    `json:"limit" validate:"gte=0,lte=100"`
	Offset int    `json:"offset" validate:"gte=0"`
}

// Search runs a full-text search over the user's library.
func (s *LibraryService) Search(ctx context.Context, userID string, req SearchRequest) (*search.Result, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	if s.index == nil {
		return nil, domainerrors.Internal("library search is disabled")
	}

	result, err := s.index.Search(ctx, search.Params{
		UserID: userID,
		Query:  req.Query,
		Status: req.Status,
		Limit:  req.Limit,
		Offset: req.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("search library: %w", err)
	}
	return result, nil
}
