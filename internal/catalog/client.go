// Package catalog adapts the Google Books volumes API into domain book
// records. Outbound traffic is rate limited and recently fetched volumes
// are cached so browsing a library does not hammer the catalog.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/shelfmark/shelfmark-server/internal/errors"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1/volumes"

// Client provides access to the external book catalog.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	rateLimiter *rate.Limiter
	cache       *volumeCache
	logger      *slog.Logger
}

// Config holds catalog client settings.
type Config struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	CacheSize         int
}

// NewClient creates a catalog client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     baseURL,
		apiKey:      cfg.APIKey,
		rateLimiter: rate.NewLimiter(rate.Limit(rps), burst),
		cache:       newVolumeCache(cfg.CacheSize),
		logger:      logger,
	}
}

// wait blocks until the rate limiter allows a request.
func (c *Client) wait(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}

// doGet performs a catalog request and classifies failures. Network
// errors, timeouts, and catalog-side failures all surface as
// CATALOG_UNAVAILABLE so callers can degrade uniformly.
func (c *Client) doGet(ctx context.Context, url string) (*http.Response, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.ErrCatalogUnavailable.WithCause(err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp, nil
	case http.StatusNotFound:
		resp.Body.Close()
		return nil, errors.NotFound("book not found in catalog")
	default:
		// Quota rejections, rate limits, and server errors alike.
		resp.Body.Close()
		return nil, errors.CatalogUnavailable(fmt.Sprintf("catalog returned status %d", resp.StatusCode))
	}
}
