package domain

import "time"

// UserProfile holds lifetime reading stats for a user. The books-read
// counter is maintained by the same transaction that records a
// completion, so it never drifts from the per-year challenge counters.
type UserProfile struct {
	UserID         string    `json:"userId"`
	DisplayName    string    `json:"displayName,omitempty"`
	TotalBooksRead int       `json:"totalBooksRead"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUserProfile creates an empty profile.
func NewUserProfile(userID string, now time.Time) *UserProfile {
	return &UserProfile{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RecordCompletion counts one finished book.
func (p *UserProfile) RecordCompletion(now time.Time) {
	p.TotalBooksRead++
	p.UpdatedAt = now
}
