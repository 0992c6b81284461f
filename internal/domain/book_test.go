package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookNormalize(t *testing.T) {
	b := Book{ID: "vol-1"}
	b.Normalize()

	assert.Equal(t, UnknownTitle, b.Title)
	assert.Equal(t, []string{UnknownAuthor}, b.Authors)
	assert.False(t, b.HasKnownAuthor())

	b2 := Book{ID: "vol-2", Title: "Piranesi", Authors: []string{"Susanna Clarke"}}
	b2.Normalize()
	assert.Equal(t, "Piranesi", b2.Title)
	assert.True(t, b2.HasKnownAuthor())
	assert.Equal(t, "Susanna Clarke", b2.PrimaryAuthor())
}
