package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentKey(t *testing.T) {
	assert.Equal(t, "user-1/job-9.html", DocumentKey("user-1", "job-9"))
}
