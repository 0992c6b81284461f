package domain

import (
	"math"
	"time"
)

// Status is a shelf a book can sit on. A book occupies exactly one
// shelf per user at any time.
type Status string

const (
	StatusWantToRead Status = "want_to_read"
	StatusReading    Status = "reading"
	StatusRead       Status = "read"
)

// Valid reports whether s is a known shelf status.
func (s Status) Valid() bool {
	switch s {
	case StatusWantToRead, StatusReading, StatusRead:
		return true
	}
	return false
}

// UserBook is the per-user state of one catalog book. There is exactly
// one UserBook per (UserID, BookID) pair.
type UserBook struct {
	UserID      string     `json:"userId"`
	BookID      string     `json:"bookId"`
	Status      Status     `json:"status"`
	CurrentPage int        `json:"currentPage"`
	TotalPages  int        `json:"totalPages"`
	Rating      int        `json:"rating,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	DateAdded   time.Time  `json:"dateAdded"`
	DateStarted *time.Time `json:"dateStarted,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	// Book is a denormalized catalog snapshot taken when the pair was
	// first shelved, so listings never depend on catalog availability.
	Book Book `json:"book"`
}

// NewUserBook shelves a catalog book for a user.
func NewUserBook(userID string, book Book, status Status, now time.Time) *UserBook {
	ub := &UserBook{
		UserID:     userID,
		BookID:     book.ID,
		Status:     status,
		TotalPages: book.PageCount,
		DateAdded:  now,
		UpdatedAt:  now,
		Book:       book,
	}
	ub.applyStatus(status, now)
	return ub
}

// Progress returns the completion percentage, rounded to the nearest
// integer, or nil when the total page count is unknown.
func (ub *UserBook) Progress() *int {
	if ub.TotalPages <= 0 {
		return nil
	}
	p := int(math.Round(float64(ub.CurrentPage) / float64(ub.TotalPages) * 100))
	if p > 100 {
		p = 100
	}
	return &p
}

// SetStatus moves the book to a shelf. Moving to reading stamps
// DateStarted on the first transition only; moving to read stamps
// CompletedAt once and snaps the current page to the total.
func (ub *UserBook) SetStatus(status Status, now time.Time) {
	ub.applyStatus(status, now)
	ub.Status = status
	ub.UpdatedAt = now
}

func (ub *UserBook) applyStatus(status Status, now time.Time) {
	switch status {
	case StatusReading:
		if ub.DateStarted == nil {
			t := now
			ub.DateStarted = &t
		}
	case StatusRead:
		if ub.CompletedAt == nil {
			t := now
			ub.CompletedAt = &t
		}
		if ub.TotalPages > 0 {
			ub.CurrentPage = ub.TotalPages
		}
	}
}

// SetProgress records the current page. The page is clamped to
// [0, TotalPages] when the total is known. When progress reaches 100
// percent the book moves to the read shelf automatically.
func (ub *UserBook) SetProgress(currentPage int, now time.Time) {
	if currentPage < 0 {
		currentPage = 0
	}
	if ub.TotalPages > 0 && currentPage > ub.TotalPages {
		currentPage = ub.TotalPages
	}
	ub.CurrentPage = currentPage
	ub.UpdatedAt = now

	if ub.Status != StatusReading && ub.Status != StatusRead && currentPage > 0 {
		ub.SetStatus(StatusReading, now)
	}
	if p := ub.Progress(); p != nil && *p >= 100 {
		ub.SetStatus(StatusRead, now)
	}
}

// IsRead reports whether the book sits on the read shelf.
func (ub *UserBook) IsRead() bool {
	return ub.Status == StatusRead
}
