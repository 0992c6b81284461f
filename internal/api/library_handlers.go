package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfmark/shelfmark-server/internal/domain"
	"github.com/shelfmark/shelfmark-server/internal/search"
	"github.com/shelfmark/shelfmark-server/internal/service"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "addLibraryBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/books",
		Summary:     "Shelve book",
		Description: "Adds a catalog book to one of the user's shelves, or moves it",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddLibraryBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/library",
		Summary:     "List library",
		Description: "Returns the user's library, optionally filtered to one shelf",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLibraryBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/library/books/{bookID}/status",
		Summary:     "Get shelf state",
		Description: "Returns the user's shelf record for one book",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetLibraryBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReadingProgress",
		Method:      http.MethodPatch,
		Path:        "/api/v1/library/books/{bookID}/progress",
		Summary:     "Update progress",
		Description: "Records the current page of a shelved book",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateProgress)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeLibraryBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/library/books/{bookID}",
		Summary:     "Remove book",
		Description: "Takes a book off the user's shelves",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveLibraryBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getLibraryStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/library/stats",
		Summary:     "Library stats",
		Description: "Returns per-shelf counts and the lifetime books-read counter",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleLibraryStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/library/search",
		Summary:     "Search library",
		Description: "Full-text search over the user's own library",
		Tags:        []string{"Library"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchLibrary)
}

// === DTOs ===

// UserBookResponse contains one shelf record in API responses.
type UserBookResponse struct {
	BookID      string       `json:"book_id" doc:"Catalog volume ID"`
	Status      string       `json:"status" doc:"Shelf: want_to_read, reading, or read"`
	CurrentPage int          `json:"current_page" doc:"Last recorded page"`
	TotalPages  int          `json:"total_pages" doc:"Total pages, 0 when unknown"`
	Progress    *int         `json:"progress,omitempty" doc:"Completion percent, absent when total pages unknown"`
	Rating      int          `json:"rating,omitempty" doc:"User rating, 1-5"`
	Notes       string       `json:"notes,omitempty" doc:"Private notes"`
	DateAdded   time.Time    `json:"date_added" doc:"When the book was first shelved"`
	DateStarted *time.Time   `json:"date_started,omitempty" doc:"When reading started"`
	CompletedAt *time.Time   `json:"completed_at,omitempty" doc:"When the book was finished"`
	UpdatedAt   time.Time    `json:"updated_at" doc:"Last change"`
	Book        BookResponse `json:"book" doc:"Catalog snapshot taken when first shelved"`
}

func toUserBookResponse(ub *domain.UserBook) UserBookResponse {
	return UserBookResponse{
		BookID:      ub.BookID,
		Status:      string(ub.Status),
		CurrentPage: ub.CurrentPage,
		TotalPages:  ub.TotalPages,
		Progress:    ub.Progress(),
		Rating:      ub.Rating,
		Notes:       ub.Notes,
		DateAdded:   ub.DateAdded,
		DateStarted: ub.DateStarted,
		CompletedAt: ub.CompletedAt,
		UpdatedAt:   ub.UpdatedAt,
		Book:        toBookResponse(&ub.Book),
	}
}

// AddLibraryBookRequest is the request body for shelving a book.
type AddLibraryBookRequest struct {
	BookID string `json:"book_id" doc:"Catalog volume ID"`
	Status string `json:"status" doc:"Target shelf: want_to_read, reading, or read"`
}

// AddLibraryBookInput wraps the shelve request for Huma.
type AddLibraryBookInput struct {
	Body AddLibraryBookRequest
}

// UserBookOutput wraps a single shelf record for Huma.
type UserBookOutput struct {
	Body UserBookResponse
}

// ListLibraryInput contains parameters for listing the library.
type ListLibraryInput struct {
	Status string `query:"status" doc:"Optional shelf filter"`
}

// ListLibraryResponse contains the user's shelf records.
type ListLibraryResponse struct {
	Books []UserBookResponse `json:"books" doc:"Shelf records, newest first"`
}

// ListLibraryOutput wraps the library listing for Huma.
type ListLibraryOutput struct {
	Body ListLibraryResponse
}

// LibraryBookInput identifies one book in the user's library.
type LibraryBookInput struct {
	BookID string `path:"bookID" doc:"Catalog volume ID"`
}

// UpdateProgressRequest is the request body for a progress update.
type UpdateProgressRequest struct {
	CurrentPage int `json:"current_page" minimum:"0" doc:"Current page number"`
	TotalPages  int `json:"total_pages,omitempty" minimum:"0" doc:"Corrected page count when the catalog had none"`
}

// UpdateProgressInput wraps the progress update for Huma.
type UpdateProgressInput struct {
	BookID string `path:"bookID" doc:"Catalog volume ID"`
	Body   UpdateProgressRequest
}

// LibraryStatsResponse summarizes the user's library.
type LibraryStatsResponse struct {
	WantToRead     int `json:"want_to_read" doc:"Books on the want-to-read shelf"`
	Reading        int `json:"reading" doc:"Books currently being read"`
	Read           int `json:"read" doc:"Books on the read shelf"`
	TotalBooksRead int `json:"total_books_read" doc:"Lifetime completions, survives removals"`
}

// LibraryStatsOutput wraps the stats response for Huma.
type LibraryStatsOutput struct {
	Body LibraryStatsResponse
}

// SearchLibraryInput contains parameters for a library search.
type SearchLibraryInput struct {
	Query  string `query:"q" doc:"Search text, empty matches the whole library"`
	Status string `query:"status" doc:"Optional shelf filter"`
	Limit  int    `query:"limit" default:"20" minimum:"1" maximum:"100" doc:"Maximum results"`
	Offset int    `query:"offset" minimum:"0" doc:"Results to skip"`
}

// SearchLibraryOutput wraps the search result for Huma.
type SearchLibraryOutput struct {
	Body search.Result
}

// MessageResponse contains a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message" doc:"Confirmation message"`
}

// MessageOutput wraps the message response for Huma.
type MessageOutput struct {
	Body MessageResponse
}

// === Handlers ===

func (s *Server) handleAddLibraryBook(ctx context.Context, input *AddLibraryBookInput) (*UserBookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	ub, err := s.services.Library.AddBook(ctx, userID, service.AddBookRequest{
		BookID: input.Body.BookID,
		Status: input.Body.Status,
	})
	if err != nil {
		return nil, err
	}

	return &UserBookOutput{Body: toUserBookResponse(ub)}, nil
}

func (s *Server) handleListLibrary(ctx context.Context, input *ListLibraryInput) (*ListLibraryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Library.ListBooks(ctx, userID, input.Status)
	if err != nil {
		return nil, err
	}

	resp := make([]UserBookResponse, len(books))
	for i, ub := range books {
		resp[i] = toUserBookResponse(ub)
	}

	return &ListLibraryOutput{Body: ListLibraryResponse{Books: resp}}, nil
}

func (s *Server) handleGetLibraryBook(ctx context.Context, input *LibraryBookInput) (*UserBookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	ub, err := s.services.Library.GetBook(ctx, userID, input.BookID)
	if err != nil {
		return nil, err
	}

	return &UserBookOutput{Body: toUserBookResponse(ub)}, nil
}

func (s *Server) handleUpdateProgress(ctx context.Context, input *UpdateProgressInput) (*UserBookOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	ub, err := s.services.Library.UpdateProgress(ctx, userID, input.BookID, service.UpdateProgressRequest{
		CurrentPage: input.Body.CurrentPage,
		TotalPages:  input.Body.TotalPages,
	})
	if err != nil {
		return nil, err
	}

	return &UserBookOutput{Body: toUserBookResponse(ub)}, nil
}

func (s *Server) handleRemoveLibraryBook(ctx context.Context, input *LibraryBookInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Library.RemoveBook(ctx, userID, input.BookID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Book removed"}}, nil
}

func (s *Server) handleLibraryStats(ctx context.Context, _ *struct{}) (*LibraryStatsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Library.Stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &LibraryStatsOutput{
		Body: LibraryStatsResponse{
			WantToRead:     stats.WantToRead,
			Reading:        stats.Reading,
			Read:           stats.Read,
			TotalBooksRead: stats.TotalBooksRead,
		},
	}, nil
}

func (s *Server) handleSearchLibrary(ctx context.Context, input *SearchLibraryInput) (*SearchLibraryOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Library.Search(ctx, userID, service.SearchRequest{
		Query:  input.Query,
		Status: input.Status,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &SearchLibraryOutput{Body: *result}, nil
}
