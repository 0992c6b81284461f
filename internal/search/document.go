// Package search provides full-text search over a user's library using
// Bleve. Every shelved book is indexed with its catalog snapshot so users
// can find books by title, author, or category without a catalog round trip.
package search

import (
	"strings"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

// Document is the Bleve document for one library record. The document ID
// is "{userID}:{bookID}" so one book shelved by many users indexes once
// per user.
type Document struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	BookID string `json:"book_id"`

	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle,omitempty"`
	Author      string   `json:"author,omitempty"`
	Description string   `json:"description,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Categories  []string `json:"categories,omitempty"`

	Status    string `json:"status"`
	UpdatedAt int64  `json:"updated_at"` // Unix millis, for recency sorting
}

// DocumentID builds the index key for a (user, book) pair.
func DocumentID(userID, bookID string) string {
	return userID + ":" + bookID
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *Document) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"user_id":    d.UserID,
		"book_id":    d.BookID,
		"title":      d.Title,
		"status":     d.Status,
		"updated_at": d.UpdatedAt,
	}

	if d.Subtitle != "" {
		m["subtitle"] = d.Subtitle
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Publisher != "" {
		m["publisher"] = d.Publisher
	}
	if len(d.Categories) > 0 {
		m["categories"] = d.Categories
	}

	return m
}

// UserBookToDocument converts a library record to a search document.
func UserBookToDocument(ub *domain.UserBook) *Document {
	return &Document{
		ID:          DocumentID(ub.UserID, ub.BookID),
		UserID:      ub.UserID,
		BookID:      ub.BookID,
		Title:       ub.Book.Title,
		Subtitle:    ub.Book.Subtitle,
		Author:      strings.Join(ub.Book.Authors, ", "),
		Description: ub.Book.Description,
		Publisher:   ub.Book.Publisher,
		Categories:  ub.Book.Categories,
		Status:      string(ub.Status),
		UpdatedAt:   ub.UpdatedAt.UnixMilli(),
	}
}
