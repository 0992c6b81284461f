package catalog

import (
	"strings"
	"time"

	"github.com/shelfmark/shelfmark-server/internal/domain"
)

// Wire types for the Google Books volumes API. Only the fields we read
// are declared.

type volumesResponse struct {
	TotalItems int      `json:"totalItems"`
	Items      []volume `json:"items"`
}

type volume struct {
	ID         string     `json:"id"`
	VolumeInfo volumeInfo `json:"volumeInfo"`
}

type volumeInfo struct {
	Title               string               `json:"title"`
	Subtitle            string               `json:"subtitle"`
	Authors             []string             `json:"authors"`
	Publisher           string               `json:"publisher"`
	PublishedDate       string               `json:"publishedDate"`
	Description         string               `json:"description"`
	IndustryIdentifiers []industryIdentifier `json:"industryIdentifiers"`
	PageCount           int                  `json:"pageCount"`
	Categories          []string             `json:"categories"`
	AverageRating       float64              `json:"averageRating"`
	RatingsCount        int                  `json:"ratingsCount"`
	Language            string               `json:"language"`
	ImageLinks          imageLinks           `json:"imageLinks"`
}

type industryIdentifier struct {
	Type       string `json:"type"`
	Identifier string `json:"identifier"`
}

type imageLinks struct {
	SmallThumbnail string `json:"smallThumbnail"`
	Thumbnail      string `json:"thumbnail"`
}

// toDomain converts a catalog volume into a domain book.
func (v *volume) toDomain(now time.Time) domain.Book {
	info := v.VolumeInfo

	book := domain.Book{
		ID:            v.ID,
		Title:         info.Title,
		Subtitle:      info.Subtitle,
		Authors:       info.Authors,
		Publisher:     info.Publisher,
		PublishedDate: info.PublishedDate,
		Description:   info.Description,
		PageCount:     info.PageCount,
		Categories:    info.Categories,
		Language:      info.Language,
		AverageRating: info.AverageRating,
		RatingsCount:  info.RatingsCount,
		CoverURL:      coverURL(info.ImageLinks),
		RetrievedAt:   now,
	}

	for _, ident := range info.IndustryIdentifiers {
		switch ident.Type {
		case "ISBN_13":
			book.ISBN13 = ident.Identifier
		case "ISBN_10":
			book.ISBN10 = ident.Identifier
		}
	}

	book.Normalize()
	return book
}

// coverURL picks the best thumbnail and upgrades the scheme. The catalog
// serves image links over plain http.
func coverURL(links imageLinks) string {
	u := links.Thumbnail
	if u == "" {
		u = links.SmallThumbnail
	}
	return strings.Replace(u, "http://", "https://", 1)
}
