package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReadingChallenge(t *testing.T) {
	now := time.Now().UTC()

	t.Run("keeps explicit target", func(t *testing.T) {
		c := NewReadingChallenge("chal-1", "user-1", 2026, 50, now)

		assert.Equal(t, 50, c.Target)
		assert.Equal(t, 0, c.Completed)
	})

	t.Run("non-positive target falls back to default", func(t *testing.T) {
		c := NewReadingChallenge("chal-1", "user-1", 2026, 0, now)
		assert.Equal(t, DefaultChallengeTarget, c.Target)

		c = NewReadingChallenge("chal-2", "user-1", 2026, -3, now)
		assert.Equal(t, DefaultChallengeTarget, c.Target)
	})
}

func TestChallengeProgress(t *testing.T) {
	now := time.Now().UTC()
	c := NewReadingChallenge("chal-1", "user-1", 2026, 4, now)

	assert.Equal(t, 0, c.ProgressPercent())
	assert.False(t, c.Achieved())

	c.RecordCompletion(now)
	assert.Equal(t, 1, c.Completed)
	assert.Equal(t, 25, c.ProgressPercent())

	for range 3 {
		c.RecordCompletion(now)
	}
	assert.Equal(t, 4, c.Completed)
	assert.Equal(t, 100, c.ProgressPercent())
	assert.True(t, c.Achieved())

	// Completions past the target still count, percent stays capped.
	c.RecordCompletion(now)
	assert.Equal(t, 5, c.Completed)
	assert.Equal(t, 100, c.ProgressPercent())
}

func TestChallengeCompletedAt(t *testing.T) {
	start := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	c := NewReadingChallenge("chal-1", "user-1", 2026, 2, start)
	assert.Nil(t, c.CompletedAt)

	c.RecordCompletion(start)
	assert.Nil(t, c.CompletedAt, "one short of the target")

	reached := start.Add(48 * time.Hour)
	c.RecordCompletion(reached)
	require.NotNil(t, c.CompletedAt)
	assert.True(t, c.CompletedAt.Equal(reached))

	// Completions past the target leave the stamp where it was.
	c.RecordCompletion(reached.Add(time.Hour))
	assert.Equal(t, 3, c.Completed)
	assert.True(t, c.CompletedAt.Equal(reached))
}
