package catalog

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/errors"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 40
)

// Search queries the catalog with a free-text query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	return c.search(ctx, query, limit)
}

// SearchByAuthor queries the catalog for books by an author.
func (c *Client) SearchByAuthor(ctx context.Context, author string, limit int) ([]domain.Book, error) {
	return c.search(ctx, fmt.Sprintf("inauthor:%q", author), limit)
}

// SearchByCategory queries the catalog for books in a subject category.
func (c *Client) SearchByCategory(ctx context.Context, category string, limit int) ([]domain.Book, error) {
	return c.search(ctx, fmt.Sprintf("subject:%q", category), limit)
}

// SearchByISBN looks up books by ISBN-10 or ISBN-13.
func (c *Client) SearchByISBN(ctx context.Context, isbn string, limit int) ([]domain.Book, error) {
	return c.search(ctx, "isbn:"+isbn, limit)
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]domain.Book, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", fmt.Sprintf("%d", limit))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	searchURL := c.baseURL + "?" + params.Encode()

	if c.logger != nil {
		c.logger.Debug("searching catalog", "query", query, "limit", limit)
	}

	resp, err := c.doGet(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var volumesResp volumesResponse
	if err := json.UnmarshalRead(resp.Body, &volumesResp); err != nil {
		// A garbled payload is a catalog-side failure like any other.
		return nil, errors.ErrCatalogUnavailable.WithCause(fmt.Errorf("parse catalog response: %w", err))
	}

	now := time.Now().UTC()
	books := make([]domain.Book, 0, len(volumesResp.Items))
	for i := range volumesResp.Items {
		v := &volumesResp.Items[i]
		if v.ID == "" {
			continue
		}
		book := v.toDomain(now)
		books = append(books, book)
		c.cache.put(&book)
	}

	if c.logger != nil {
		c.logger.Debug("catalog search results", "query", query, "count", len(books))
	}
	return books, nil
}

// GetByID fetches a single volume, serving from the cache when possible.
func (c *Client) GetByID(ctx context.Context, bookID string) (*domain.Book, error) {
	if book, ok := c.cache.get(bookID); ok {
		return book, nil
	}

	params := url.Values{}
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	volumeURL := c.baseURL + "/" + url.PathEscape(bookID)
	if len(params) > 0 {
		volumeURL += "?" + params.Encode()
	}

	resp, err := c.doGet(ctx, volumeURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var v volume
	if err := json.UnmarshalRead(resp.Body, &v); err != nil {
		return nil, errors.ErrCatalogUnavailable.WithCause(fmt.Errorf("parse catalog response: %w", err))
	}

	book := v.toDomain(time.Now().UTC())
	c.cache.put(&book)
	return &book, nil
}
