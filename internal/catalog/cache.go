package catalog

import (
	"sync"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

// volumeCache is a bounded FIFO cache of catalog records keyed by volume
// ID. Catalog records are immutable snapshots, so staleness is harmless
// and eviction order does not matter much.
type volumeCache struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*domain.Book
	order   []string
}

func newVolumeCache(maxSize int) *volumeCache {
	return &volumeCache{
		maxSize: maxSize,
		entries: make(map[string]*domain.Book),
	}
}

func (c *volumeCache) get(bookID string) (*domain.Book, bool) {
	if c.maxSize <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	book, ok := c.entries[bookID]
	if !ok {
		return nil, false
	}
	// Return a copy so callers cannot mutate the cached record.
	cp := *book
	return &cp, true
}

func (c *volumeCache) put(book *domain.Book) {
	if c.maxSize <= 0 || book.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[book.ID]; !exists {
		for len(c.order) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, book.ID)
	}
	cp := *book
	c.entries[book.ID] = &cp
}

func (c *volumeCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
