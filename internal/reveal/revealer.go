// Package reveal discloses already-received assistant text one character at
// a time. Reveals run strictly one after another in the order requested.
package reveal

import (
	"context"
	"sync"
	"time"
)

type item struct {
	index int
	full  []rune
	shown int
	done  func()
}

// Revealer schedules incremental reveals. The zero value is not usable; call New.
type Revealer struct {
	tick  time.Duration
	delay time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	pending []*item
	active  *item
	running bool
}

// New returns a Revealer that waits delay before starting each reveal and
// then extends the shown prefix by one character every tick.
func New(tick, delay time.Duration) *Revealer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Revealer{tick: tick, delay: delay, ctx: ctx, cancel: cancel}
}

// Reveal queues text for message index. done runs once the whole text is
// shown, outside the Revealer's lock.
func (r *Revealer) Reveal(index int, text string, done func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, &item{index: index, full: []rune(text), done: done})
	if !r.running {
		r.running = true
		go r.run(r.ctx)
	}
}

// Progress returns the message currently being revealed and its shown prefix.
func (r *Revealer) Progress() (index int, shown string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		return 0, "", false
	}
	return r.active.index, string(r.active.full[:r.active.shown]), true
}

// Busy reports whether a reveal is active or queued.
func (r *Revealer) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil || len(r.pending) > 0
}

// Stop discards the active and queued reveals. The Revealer stays usable.
func (r *Revealer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancel()
	r.ctx, r.cancel = context.WithCancel(context.Background())
	r.pending = nil
	r.active = nil
	r.running = false
}

func (r *Revealer) run(ctx context.Context) {
	for {
		r.mu.Lock()
		if ctx.Err() != nil {
			r.mu.Unlock()
			return
		}
		if len(r.pending) == 0 {
			r.running = false
			r.mu.Unlock()
			return
		}
		it := r.pending[0]
		r.pending = r.pending[1:]
		r.mu.Unlock()

		if !sleep(ctx, r.delay) {
			return
		}
		r.mu.Lock()
		if ctx.Err() != nil {
			r.mu.Unlock()
			return
		}
		r.active = it
		r.mu.Unlock()

		for {
			r.mu.Lock()
			finished := it.shown >= len(it.full)
			r.mu.Unlock()
			if finished {
				break
			}
			if !sleep(ctx, r.tick) {
				return
			}
			r.mu.Lock()
			if ctx.Err() != nil {
				r.mu.Unlock()
				return
			}
			it.shown++
			r.mu.Unlock()
		}

		// done runs before active is cleared so the full text stays visible
		// until the caller has marked the message complete.
		if it.done != nil {
			it.done()
		}
		r.mu.Lock()
		if ctx.Err() != nil {
			r.mu.Unlock()
			return
		}
		r.active = nil
		r.mu.Unlock()
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
