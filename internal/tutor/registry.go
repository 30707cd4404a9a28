package tutor

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/ayush/science-tutor/internal/conversation"
	"github.com/ayush/science-tutor/internal/logger"
)

// Factory builds a fresh controller for a user.
type Factory func(userID string) *conversation.Controller

// Registry holds one controller per user. Controllers idle for longer than
// the TTL are closed and dropped; the next request starts a new session.
type Registry struct {
	mu      sync.Mutex
	cache   *cache.Cache
	factory Factory
	logger  *zap.Logger
}

func NewRegistry(idleTTL time.Duration, factory Factory, l *zap.Logger) *Registry {
	cleanup := idleTTL / 2
	if idleTTL <= 0 {
		idleTTL, cleanup = cache.NoExpiration, 0
	}
	r := &Registry{
		cache:   cache.New(idleTTL, cleanup),
		factory: factory,
		logger:  logger.Component(l, "registry"),
	}
	r.cache.OnEvicted(func(userID string, v interface{}) {
		if ctrl, ok := v.(*conversation.Controller); ok {
			ctrl.Close()
			r.logger.Debug("session closed", zap.String("user_id", userID))
		}
	})
	return r
}

// Get returns the user's controller, creating it on first use. Every call
// pushes the idle expiry out again.
func (r *Registry) Get(userID string) *conversation.Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.cache.Get(userID); ok {
		ctrl := v.(*conversation.Controller)
		r.cache.Set(userID, ctrl, cache.DefaultExpiration)
		return ctrl
	}
	// an expired entry is invisible to Get but still needs closing
	r.cache.DeleteExpired()
	ctrl := r.factory(userID)
	r.cache.Set(userID, ctrl, cache.DefaultExpiration)
	r.logger.Debug("session started", zap.String("user_id", userID))
	return ctrl
}

// Drop closes and forgets the user's controller, if any.
func (r *Registry) Drop(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache.Delete(userID)
}

// Len reports how many sessions are live, expired-but-unswept included.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}

// Close closes every controller. Used on shutdown.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID := range r.cache.Items() {
		r.cache.Delete(userID)
	}
}
