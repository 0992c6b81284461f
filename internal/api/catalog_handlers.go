package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCatalog",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/search",
		Summary:     "Search catalog",
		Description: "Searches the external book catalog by title, author, or ISBN",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchCatalog)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPopularBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/popular",
		Summary:     "Popular books",
		Description: "Returns a rotating selection of widely read catalog books",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPopularBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getCatalogBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/books/{id}",
		Summary:     "Get catalog book",
		Description: "Returns one catalog record by its volume ID",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCatalogBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecommendations",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/books/{id}/recommendations",
		Summary:     "Get recommendations",
		Description: "Returns catalog books related to the given book",
		Tags:        []string{"Catalog"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecommendations)
}

// === DTOs ===

// BookResponse contains catalog book data in API responses.
type BookResponse struct {
	ID            string   `json:"id" doc:"Catalog volume ID"`
	Title         string   `json:"title" doc:"Book title"`
	Subtitle      string   `json:"subtitle,omitempty" doc:"Book subtitle"`
	Authors       []string `json:"authors" doc:"Author names"`
	Publisher     string   `json:"publisher,omitempty" doc:"Publisher name"`
	PublishedDate string   `json:"published_date,omitempty" doc:"Publication date"`
	Description   string   `json:"description,omitempty" doc:"Description"`
	ISBN10        string   `json:"isbn10,omitempty" doc:"ISBN-10"`
	ISBN13        string   `json:"isbn13,omitempty" doc:"ISBN-13"`
	PageCount     int      `json:"page_count,omitempty" doc:"Number of pages"`
	Categories    []string `json:"categories,omitempty" doc:"Subject categories"`
	Language      string   `json:"language,omitempty" doc:"Language code"`
	CoverURL      string   `json:"cover_url,omitempty" doc:"Cover image URL"`
	AverageRating float64  `json:"average_rating,omitempty" doc:"Catalog average rating"`
	RatingsCount  int      `json:"ratings_count,omitempty" doc:"Number of catalog ratings"`
}

func toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Subtitle:      b.Subtitle,
		Authors:       b.Authors,
		Publisher:     b.Publisher,
		PublishedDate: b.PublishedDate,
		Description:   b.Description,
		ISBN10:        b.ISBN10,
		ISBN13:        b.ISBN13,
		PageCount:     b.PageCount,
		Categories:    b.Categories,
		Language:      b.Language,
		CoverURL:      b.CoverURL,
		AverageRating: b.AverageRating,
		RatingsCount:  b.RatingsCount,
	}
}

func toBookResponses(books []domain.Book) []BookResponse {
	resp := make([]BookResponse, len(books))
	for i := range books {
		resp[i] = toBookResponse(&books[i])
	}
	return resp
}

// SearchCatalogInput contains parameters for a catalog search.
type SearchCatalogInput struct {
	Query string `query:"q" required:"true" doc:"Search query, free text or a bare ISBN"`
	Limit int    `query:"limit" default:"20" minimum:"1" maximum:"40" doc:"Maximum results"`
}

// SearchCatalogResponse contains catalog search results.
type SearchCatalogResponse struct {
	Books []BookResponse `json:"books" doc:"Matching catalog books"`
}

// SearchCatalogOutput wraps the catalog search response for Huma.
type SearchCatalogOutput struct {
	Body SearchCatalogResponse
}

// PopularBooksInput contains parameters for the popular books listing.
type PopularBooksInput struct {
	Limit int `query:"limit" default:"10" minimum:"1" maximum:"40" doc:"Maximum results"`
}

// PopularBooksResponse contains the popular books selection.
type PopularBooksResponse struct {
	Books []BookResponse `json:"books" doc:"Widely read catalog books"`
}

// PopularBooksOutput wraps the popular books response for Huma.
type PopularBooksOutput struct {
	Body PopularBooksResponse
}

// GetCatalogBookInput contains parameters for fetching one catalog book.
type GetCatalogBookInput struct {
	ID string `path:"id" doc:"Catalog volume ID"`
}

// BookOutput wraps a single catalog book for Huma.
type BookOutput struct {
	Body BookResponse
}

// RecommendationsInput contains parameters for fetching recommendations.
type RecommendationsInput struct {
	ID    string `path:"id" doc:"Seed book volume ID"`
	Limit int    `query:"limit" default:"10" minimum:"1" maximum:"40" doc:"Maximum results"`
}

// RecommendationsResponse contains recommended books.
type RecommendationsResponse struct {
	Books []BookResponse `json:"books" doc:"Recommended catalog books"`
}

// RecommendationsOutput wraps the recommendations response for Huma.
type RecommendationsOutput struct {
	Body RecommendationsResponse
}

// === Handlers ===

func (s *Server) handleSearchCatalog(ctx context.Context, input *SearchCatalogInput) (*SearchCatalogOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	books, err := s.services.Catalog.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}

	return &SearchCatalogOutput{Body: SearchCatalogResponse{Books: toBookResponses(books)}}, nil
}

func (s *Server) handleGetPopularBooks(ctx context.Context, input *PopularBooksInput) (*PopularBooksOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	books, err := s.services.Catalog.PopularBooks(ctx, input.Limit)
	if err != nil {
		return nil, err
	}

	return &PopularBooksOutput{Body: PopularBooksResponse{Books: toBookResponses(books)}}, nil
}

func (s *Server) handleGetCatalogBook(ctx context.Context, input *GetCatalogBookInput) (*BookOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleGetRecommendations(ctx context.Context, input *RecommendationsInput) (*RecommendationsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Recommend.Recommend(ctx, userID, input.ID, input.Limit)
	if err != nil {
		return nil, err
	}

	return &RecommendationsOutput{Body: RecommendationsResponse{Books: toBookResponses(books)}}, nil
}
