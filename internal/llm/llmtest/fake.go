// Package llmtest provides a scriptable in-memory Completer for tests.
package llmtest

import (
	"context"
	"sync"

	"github.com/ayush/science-tutor/internal/llm"
)

// Fake answers completion requests with Respond and records every request.
// If Gate is non-nil each call blocks until Gate is closed or ctx is done.
type Fake struct {
	Respond func(req llm.Request) (string, error)
	Gate    chan struct{}

	mu       sync.Mutex
	requests []llm.Request
}

var _ llm.Completer = (*Fake)(nil)

// Reply returns a Fake that always answers text.
func Reply(text string) *Fake {
	return &Fake{Respond: func(llm.Request) (string, error) { return text, nil }}
}

// Fail returns a Fake that always fails with err.
func Fail(err error) *Fake {
	return &Fake{Respond: func(llm.Request) (string, error) { return "", err }}
}

func (f *Fake) Complete(ctx context.Context, req llm.Request) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate := f.Gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.Respond == nil {
		return "", nil
	}
	return f.Respond(req)
}

// Calls is the number of requests received so far.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

// Requests returns a copy of every request received.
func (f *Fake) Requests() []llm.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]llm.Request, len(f.requests))
	copy(out, f.requests)
	return out
}
