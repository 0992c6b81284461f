package domain

import (
	"strings"
	"time"
)

// Fallbacks for catalog records with missing metadata.
const (
	UnknownTitle  = "Unknown Title"
	UnknownAuthor = "Unknown Author"
)

// Book is a catalog record normalized from the external book catalog.
// Books are immutable snapshots; per-user state lives on UserBook.
type Book struct {
	// ID is the catalog volume identifier, not one of our nanoid values.
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Subtitle      string    `json:"subtitle,omitempty"`
	Authors       []string  `json:"authors"`
	Publisher     string    `json:"publisher,omitempty"`
	PublishedDate string    `json:"publishedDate,omitempty"`
	Description   string    `json:"description,omitempty"`
	ISBN10        string    `json:"isbn10,omitempty"`
	ISBN13        string    `json:"isbn13,omitempty"`
	PageCount     int       `json:"pageCount,omitempty"`
	Categories    []string  `json:"categories,omitempty"`
	Language      string    `json:"language,omitempty"`
	CoverURL      string    `json:"coverUrl,omitempty"`
	AverageRating float64   `json:"averageRating,omitempty"`
	RatingsCount  int       `json:"ratingsCount,omitempty"`
	RetrievedAt   time.Time `json:"retrievedAt,omitzero"`
}

// Normalize fills fallback values so downstream code never deals with
// empty titles or nil author slices.
func (b *Book) Normalize() {
	if strings.TrimSpace(b.Title) == "" {
		b.Title = UnknownTitle
	}
	if len(b.Authors) == 0 {
		b.Authors = []string{UnknownAuthor}
	}
}

// PrimaryAuthor returns the first author, used for recommendation queries.
func (b *Book) PrimaryAuthor() string {
	if len(b.Authors) == 0 {
		return ""
	}
	return b.Authors[0]
}

// PrimaryCategory returns the first category, or "" when uncategorized.
func (b *Book) PrimaryCategory() string {
	if len(b.Categories) == 0 {
		return ""
	}
	return b.Categories[0]
}

// HasKnownAuthor reports whether the primary author is usable as a search term.
func (b *Book) HasKnownAuthor() bool {
	a := b.PrimaryAuthor()
	return a != "" && a != UnknownAuthor
}
