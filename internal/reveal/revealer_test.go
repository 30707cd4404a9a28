package reveal

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReveal_ShowsPrefixThenCompletes(t *testing.T) {
	r := New(2*time.Millisecond, time.Millisecond)
	done := make(chan struct{})

	r.Reveal(3, "안녕하세요", func() { close(done) })

	var seen []string
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-done:
			assert.NotEmpty(t, seen)
			for _, s := range seen {
				assert.Contains(t, "안녕하세요", s)
			}
			assert.Eventually(t, func() bool { return !r.Busy() }, time.Second, time.Millisecond)
			return
		case <-deadline:
			t.Fatal("reveal did not complete")
		default:
			if idx, shown, ok := r.Progress(); ok {
				assert.Equal(t, 3, idx)
				seen = append(seen, shown)
			}
			time.Sleep(time.Millisecond)
		}
	}
}

func TestReveal_RunsSequentially(t *testing.T) {
	r := New(time.Millisecond, 0)

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		i := i
		r.Reveal(i, "abc", func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			wg.Done()
		})
	}

	waitOrFail(t, &wg)
	assert.Equal(t, []int{0, 1, 2}, order)
}

func TestReveal_OnlyOneActiveAtATime(t *testing.T) {
	r := New(time.Millisecond, 0)
	var wg sync.WaitGroup
	wg.Add(2)
	r.Reveal(0, "first message", func() {
		_, shown, ok := r.Progress()
		assert.True(t, ok)
		assert.Equal(t, "first message", shown)
		wg.Done()
	})
	r.Reveal(1, "second", func() { wg.Done() })

	for i := 0; i < 5; i++ {
		if idx, _, ok := r.Progress(); ok {
			assert.Contains(t, []int{0, 1}, idx)
		}
		time.Sleep(time.Millisecond)
	}
	waitOrFail(t, &wg)
}

func TestStop_DiscardsPendingReveals(t *testing.T) {
	r := New(5*time.Millisecond, 0)
	called := make(chan int, 2)
	r.Reveal(0, "a long message that will not finish", func() { called <- 0 })
	r.Reveal(1, "queued", func() { called <- 1 })

	time.Sleep(10 * time.Millisecond)
	r.Stop()

	assert.False(t, r.Busy())
	_, _, ok := r.Progress()
	assert.False(t, ok)

	select {
	case i := <-called:
		t.Fatalf("done ran for discarded reveal %d", i)
	case <-time.After(50 * time.Millisecond):
	}

	finished := make(chan struct{})
	r.Reveal(7, "ok", func() { close(finished) })
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("revealer unusable after Stop")
	}
}

func TestReveal_EmptyText(t *testing.T) {
	r := New(time.Millisecond, 0)
	done := make(chan struct{})
	r.Reveal(0, "", func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("empty reveal never completed")
	}
}

func waitOrFail(t *testing.T, wg *sync.WaitGroup) {
	t.Helper()
	ch := make(chan struct{})
	go func() { wg.Wait(); close(ch) }()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for reveals")
	}
}
