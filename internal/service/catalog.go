package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
)

const defaultPopularLimit = 10

// The catalog has no popularity endpoint, so a rotating canned query
// stands in for a trending shelf.
var popularQueries = []string{
	"bestseller fiction",
	"popular nonfiction",
	"award winning books",
}

// CatalogService exposes catalog browsing to the API layer.
type CatalogService struct {
	catalog CatalogClient
	logger  *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(catalog CatalogClient, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		logger:  logger,
	}
}

// isbnQuery reports whether the query looks like a bare ISBN-10 or
// ISBN-13, in which case the catalog's ISBN operator gives exact results.
func isbnQuery(query string) (string, bool) {
	cleaned := strings.ReplaceAll(strings.ReplaceAll(query, "-", ""), " ", "")
	if len(cleaned) != 10 && len(cleaned) != 13 {
		return "", false
	}
	for i, r := range cleaned {
		if r >= '0' && r <= '9' {
			continue
		}
		// ISBN-10 check digit may be X.
		if (r == 'X' || r == 'x') && len(cleaned) == 10 && i == 9 {
			continue
		}
		return "", false
	}
	return cleaned, true
}

// Search queries the external catalog.
func (s *CatalogService) Search(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domainerrors.Validation("search query must not be empty")
	}

	if isbn, ok := isbnQuery(query); ok {
		books, err := s.catalog.SearchByISBN(ctx, isbn, limit)
		if err != nil {
			return nil, err
		}
		return books, nil
	}

	books, err := s.catalog.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return books, nil
}

// PopularBooks returns a selection of widely read catalog books, rotating
// the underlying query between calls.
func (s *CatalogService) PopularBooks(ctx context.Context, limit int) ([]domain.Book, error) {
	if limit <= 0 {
		limit = defaultPopularLimit
	}

	query := popularQueries[rand.IntN(len(popularQueries))]
	books, err := s.catalog.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Debug("fetched popular books", "query", query, "count", len(books))
	}
	return books, nil
}

// GetBook fetches one catalog record.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	if bookID == "" {
		return nil, domainerrors.Validation("book ID must not be empty")
	}
	book, err := s.catalog.GetByID(ctx, bookID)
	if err != nil {
		return nil, fmt.Errorf("get catalog book: %w", err)
	}
	return book, nil
}
