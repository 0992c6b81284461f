package domain

import "time"

// DefaultChallengeTarget is used when a challenge is created implicitly
// by a book completion and the user never set a goal for the year.
const DefaultChallengeTarget = 12

// ReadingChallenge tracks how many books a user has finished in a
// calendar year against a target.
type ReadingChallenge struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Year      int       `json:"year"`
	Target    int       `json:"target"`
	Completed int       `json:"completed"`
	// CompletedAt is stamped the first time Completed reaches Target
	// and never cleared or moved, even if the target changes later.
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewReadingChallenge creates a challenge for a year. A non-positive
// target falls back to the default.
func NewReadingChallenge(id, userID string, year, target int, now time.Time) *ReadingChallenge {
	if target <= 0 {
		target = DefaultChallengeTarget
	}
	return &ReadingChallenge{
		ID:        id,
		UserID:    userID,
		Year:      year,
		Target:    target,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RecordCompletion counts one finished book, stamping CompletedAt on
// the completion that reaches the target.
func (c *ReadingChallenge) RecordCompletion(now time.Time) {
	c.Completed++
	c.UpdatedAt = now
	if c.CompletedAt == nil && c.Achieved() {
		t := now
		c.CompletedAt = &t
	}
}

// ProgressPercent returns completion against the target, capped at 100.
func (c *ReadingChallenge) ProgressPercent() int {
	if c.Target <= 0 {
		return 0
	}
	p := c.Completed * 100 / c.Target
	if p > 100 {
		p = 100
	}
	return p
}

// Achieved reports whether the target has been met.
func (c *ReadingChallenge) Achieved() bool {
	return c.Target > 0 && c.Completed >= c.Target
}
