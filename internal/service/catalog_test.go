package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
)

func TestPopularBooks(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	t.Run("serves a canned browse query", func(t *testing.T) {
		catalog := newStubCatalog()
		catalog.searchResults = []domain.Book{
			{ID: "vol-1", Title: "Widely Read"},
			{ID: "vol-2", Title: "Also Popular"},
		}
		svc := NewCatalogService(catalog, logger)

		books, err := svc.PopularBooks(ctx, 10)
		require.NoError(t, err)

		assert.Len(t, books, 2)
		assert.Equal(t, "text", catalog.lastQueryKind)
		assert.Contains(t, popularQueries, catalog.lastQuery)
	})

	t.Run("catalog failure surfaces", func(t *testing.T) {
		catalog := newStubCatalog()
		catalog.searchErr = domainerrors.ErrCatalogUnavailable
		svc := NewCatalogService(catalog, logger)

		_, err := svc.PopularBooks(ctx, 10)
		assert.ErrorIs(t, err, domainerrors.ErrCatalogUnavailable)
	})
}
