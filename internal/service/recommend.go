package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

const defaultRecommendationLimit = 10

// RecommendationService suggests catalog books related to a book the
// user knows.
type RecommendationService struct {
	store   *store.Store
	catalog CatalogClient
	logger  *slog.Logger
}

// NewRecommendationService creates a new recommendation service.
func NewRecommendationService(st *store.Store, catalog CatalogClient, logger *slog.Logger) *RecommendationService {
	return &RecommendationService{
		store:   st,
		catalog: catalog,
		logger:  logger,
	}
}

// Recommend returns books related to the seed book. The seed's library
// snapshot is preferred over a catalog fetch when the user has shelved
// it. Exactly one catalog query is issued per call: by the primary
// author when one is known, otherwise by the primary category, otherwise
// by title. The seed book itself never appears in the results.
func (s *RecommendationService) Recommend(ctx context.Context, userID, bookID string, limit int) ([]domain.Book, error) {
	if limit <= 0 {
		limit = defaultRecommendationLimit
	}

	seed, err := s.seedBook(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	// One query, so a recommendation costs at most one catalog call.
	// Ask for one extra result to compensate for the seed showing up.
	var candidates []domain.Book
	switch {
	case seed.HasKnownAuthor():
		candidates, err = s.catalog.SearchByAuthor(ctx, seed.PrimaryAuthor(), limit+1)
	case seed.PrimaryCategory() != "":
		candidates, err = s.catalog.SearchByCategory(ctx, seed.PrimaryCategory(), limit+1)
	default:
		if seed.Title == "" || seed.Title == domain.UnknownTitle {
			// Nothing to query by.
			return []domain.Book{}, nil
		}
		candidates, err = s.catalog.Search(ctx, seed.Title, limit+1)
	}
	if err != nil {
		return nil, err
	}

	results := make([]domain.Book, 0, min(len(candidates), limit))
	seen := map[string]bool{seed.ID: true}
	for _, book := range candidates {
		if seen[book.ID] {
			continue
		}
		seen[book.ID] = true
		results = append(results, book)
		if len(results) >= limit {
			break
		}
	}

	if s.logger != nil {
		s.logger.Debug("built recommendations",
			"user_id", userID,
			"book_id", bookID,
			"count", len(results),
		)
	}
	return results, nil
}

// seedBook resolves the book recommendations are based on.
func (s *RecommendationService) seedBook(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	ub, err := s.store.GetUserBook(ctx, userID, bookID)
	if err == nil {
		return &ub.Book, nil
	}
	if !errors.Is(err, store.ErrUserBookNotFound) {
		return nil, fmt.Errorf("get user book: %w", err)
	}

	book, err := s.catalog.GetByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return book, nil
}
