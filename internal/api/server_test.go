package api

import (
	"context"
	"encoding/json/v2"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/shelfmark-server/internal/auth"
	"github.com/shelfmark/shelfmark-server/internal/domain"
	domainerrors "github.com/shelfmark/shelfmark-server/internal/errors"
	"github.com/shelfmark/shelfmark-server/internal/search"
	"github.com/shelfmark/shelfmark-server/internal/service"
	"github.com/shelfmark/shelfmark-server/internal/store"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	Version int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
}

// apiStubCatalog serves canned catalog responses to the API tests.
type apiStubCatalog struct {
	books         map[string]domain.Book
	searchResults []domain.Book
	searchErr     error
}

func newAPIStubCatalog(books ...domain.Book) *apiStubCatalog {
	m := make(map[string]domain.Book, len(books))
	for _, b := range books {
		m[b.ID] = b
	}
	return &apiStubCatalog{books: m}
}

func (c *apiStubCatalog) GetByID(_ context.Context, bookID string) (*domain.Book, error) {
	book, ok := c.books[bookID]
	if !ok {
		return nil, domainerrors.NotFound("book not found in catalog")
	}
	return &book, nil
}

func (c *apiStubCatalog) results() ([]domain.Book, error) {
	if c.searchErr != nil {
		return nil, c.searchErr
	}
	return c.searchResults, nil
}

func (c *apiStubCatalog) Search(_ context.Context, _ string, _ int) ([]domain.Book, error) {
	return c.results()
}

func (c *apiStubCatalog) SearchByAuthor(_ context.Context, _ string, _ int) ([]domain.Book, error) {
	return c.results()
}

func (c *apiStubCatalog) SearchByCategory(_ context.Context, _ string, _ int) ([]domain.Book, error) {
	return c.results()
}

func (c *apiStubCatalog) SearchByISBN(_ context.Context, _ string, _ int) ([]domain.Book, error) {
	return c.results()
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api     humatest.TestAPI
	catalog *apiStubCatalog
	tokens  *auth.TokenService
}

// setupTestServer creates a server over a real store and search index.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.DiscardHandler)

	st, err := store.New(store.Options{Path: tmpDir + "/db"}, logger, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	index, err := search.NewIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	st.SetSearchIndexer(search.NewIndexer(index))

	keyHex, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(keyHex, 15*time.Minute)
	require.NoError(t, err)

	catalog := newAPIStubCatalog()
	services := &Services{
		Catalog:   service.NewCatalogService(catalog, logger),
		Library:   service.NewLibraryService(st, catalog, index, logger),
		Recommend: service.NewRecommendationService(st, catalog, logger),
		Challenge: service.NewChallengeService(st, domain.DefaultChallengeTarget, logger),
		Profile:   service.NewProfileService(st, logger),
	}

	s := NewServer(st, services, tokens, index, logger)
	testAPI := humatest.Wrap(t, s.api)

	return &testServer{
		Server:  s,
		api:     testAPI,
		catalog: catalog,
		tokens:  tokens,
	}
}

// authHeader issues a bearer token for a user.
func (ts *testServer) authHeader(t *testing.T, userID string) string {
	t.Helper()
	token, err := ts.tokens.GenerateToken(userID, "Test Reader")
	require.NoError(t, err)
	return "Authorization: Bearer " + token
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

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[HealthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.True(t, envelope.Success)
	assert.Equal(t, "healthy", envelope.Data.Status)
	assert.Equal(t, "healthy", envelope.Data.Components["database"].Status)
	assert.Equal(t, "healthy", envelope.Data.Components["search"].Status)
}

func TestAuthRequired(t *testing.T) {
	ts := setupTestServer(t)

	paths := []string{
		"/api/v1/library",
		"/api/v1/library/stats",
		"/api/v1/challenges",
		"/api/v1/users/me",
	}
	for _, path := range paths {
		resp := ts.api.Get(path)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, "path %s", path)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/library", "Authorization: Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
