package tutor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush/science-tutor/internal/conversation"
)

func countingFactory(n *int) Factory {
	return func(userID string) *conversation.Controller {
		*n++
		opts := conversation.DefaultOptions()
		opts.SessionID = userID
		opts.RevealTick, opts.RevealDelay = 0, 0
		return conversation.New(nil, opts, nil)
	}
}

func TestRegistry_ReusesControllerPerUser(t *testing.T) {
	var created int
	r := NewRegistry(time.Hour, countingFactory(&created), nil)
	t.Cleanup(r.Close)

	a := r.Get("a")
	assert.Same(t, a, r.Get("a"))
	assert.NotSame(t, a, r.Get("b"))
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_DropStartsFreshSession(t *testing.T) {
	var created int
	r := NewRegistry(time.Hour, countingFactory(&created), nil)
	t.Cleanup(r.Close)

	first := r.Get("a")
	require.NoError(t, first.SearchCompetitions(context.Background()))
	first.Wait()
	require.Len(t, first.Snapshot().Messages, 2)

	r.Drop("a")
	second := r.Get("a")
	assert.NotSame(t, first, second)
	assert.Len(t, second.Snapshot().Messages, 1)
	assert.Equal(t, 2, created)
}

func TestRegistry_IdleSessionsExpire(t *testing.T) {
	var created int
	r := NewRegistry(20*time.Millisecond, countingFactory(&created), nil)
	t.Cleanup(r.Close)

	first := r.Get("a")
	time.Sleep(60 * time.Millisecond)
	assert.NotSame(t, first, r.Get("a"))
	assert.Equal(t, 2, created)
}

func TestRegistry_NoTTL(t *testing.T) {
	var created int
	r := NewRegistry(0, countingFactory(&created), nil)
	t.Cleanup(r.Close)

	a := r.Get("a")
	assert.Same(t, a, r.Get("a"))
	r.Close()
	assert.Zero(t, r.Len())
}
