package notifications

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/bellfeed/pkg/cache"
	"github.com/dmitrymomot/bellfeed/pkg/logger"
)

// SessionFactory builds the collection for a session key, usually a user id.
// It runs while Sessions holds its lock and must not call back into it.
type SessionFactory func(key string) *Collection

// Sessions keeps one Collection per key, bounded in number. When a session
// is closed or evicted as least recently used, its collection is closed.
type Sessions struct {
	cache   *cache.LRU[string, *Collection]
	factory SessionFactory
	logger  *slog.Logger
}

// SessionsOption configures Sessions.
type SessionsOption func(*Sessions)

// WithSessionsLogger sets the logger used to report evictions.
func WithSessionsLogger(l *slog.Logger) SessionsOption {
	return func(s *Sessions) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSessions creates a registry holding at most capacity collections.
// It panics when capacity is not positive.
func NewSessions(factory SessionFactory, capacity int, opts ...SessionsOption) *Sessions {
	s := &Sessions{
		factory: factory,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = cache.New(capacity, cache.WithEvictFunc[string, *Collection](s.evicted))
	return s
}

// Open returns the collection for key, creating it on first use.
func (s *Sessions) Open(key string) *Collection {
	c, _ := s.cache.GetOrCreate(key, func() *Collection { return s.factory(key) })
	return c
}

// Get returns the collection for key if the session is open.
func (s *Sessions) Get(key string) (*Collection, bool) {
	return s.cache.Get(key)
}

// Close ends the session for key.
func (s *Sessions) Close(key string) bool {
	return s.cache.Remove(key)
}

// Len returns the number of open sessions.
func (s *Sessions) Len() int { return s.cache.Len() }

// Shutdown closes every session.
func (s *Sessions) Shutdown() {
	s.cache.Purge()
}

func (s *Sessions) evicted(key string, c *Collection) {
	if err := c.Close(); err != nil {
		s.logger.LogAttrs(context.Background(), slog.LevelWarn, "closing session failed",
			slog.String("session", key),
			logger.Error(err),
		)
		return
	}
	s.logger.LogAttrs(context.Background(), slog.LevelDebug, "session closed", slog.String("session", key))
}
