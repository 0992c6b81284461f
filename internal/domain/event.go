package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the library store.
const (
	EventBookCompleted     = "book.completed"
	EventShelfChanged      = "shelf.changed"
	EventBookRemoved       = "book.removed"
	EventChallengeAchieved = "challenge.achieved"
)

// Event is a notification about a library change, delivered to
// in-process subscribers after the originating transaction commits.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	BookID    string    `json:"bookId,omitempty"`
	Year      int       `json:"year,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event with a fresh UUID.
func NewEvent(eventType, userID string) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now().UTC(),
	}
}
