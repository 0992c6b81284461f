package search

import (
	"context"
	"fmt"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

// Indexer adapts the index to the store's indexing hook.
type Indexer struct {
	index *Index
}

// NewIndexer creates an indexer over the given index.
func NewIndexer(index *Index) *Indexer {
	return &Indexer{index: index}
}

// IndexUserBook adds or updates a library record in the index.
func (i *Indexer) IndexUserBook(_ context.Context, ub *domain.UserBook) error {
	return i.index.IndexDocument(UserBookToDocument(ub))
}

// DeleteUserBook removes a library record from the index.
func (i *Indexer) DeleteUserBook(_ context.Context, userID, bookID string) error {
	return i.index.DeleteDocument(DocumentID(userID, bookID))
}

// LibrarySource yields every library record, across all users.
type LibrarySource interface {
	ForEachUserBook(ctx context.Context, fn func(*domain.UserBook) error) error
}

// ReindexAll refills the index from the store. Called on startup when
// the index was recreated after a mapping change.
func (i *Indexer) ReindexAll(ctx context.Context, src LibrarySource) error {
	var docs []*Document
	err := src.ForEachUserBook(ctx, func(ub *domain.UserBook) error {
		docs = append(docs, UserBookToDocument(ub))
		return nil
	})
	if err != nil {
		return fmt.Errorf("collect library records: %w", err)
	}
	return i.index.IndexDocuments(docs)
}
