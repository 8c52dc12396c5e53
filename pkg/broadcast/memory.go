package broadcast

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultBufferSize is used when NewMemory gets a non-positive size.
const DefaultBufferSize = 64

// Memory is an in-process Broadcaster. It is safe for concurrent use.
type Memory[T any] struct {
	mu      sync.RWMutex
	subs    map[*subscriber[T]]struct{}
	buffer  int
	seq     atomic.Uint64
	closed  bool
	cleanup sync.WaitGroup
	now     func() time.Time
}

// NewMemory creates a broadcaster whose subscribers buffer up to bufferSize
// messages.
func NewMemory[T any](bufferSize int) *Memory[T] {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Memory[T]{
		subs:   make(map[*subscriber[T]]struct{}),
		buffer: bufferSize,
		now:    time.Now,
	}
}

// Subscribe registers a subscriber that lives until it is closed or ctx is
// done. After Close it returns an already closed subscriber.
func (b *Memory[T]) Subscribe(ctx context.Context) Subscriber[T] {
	sub := &subscriber[T]{
		ch:   make(chan Message[T], b.buffer),
		done: make(chan struct{}),
	}
	sub.release = func() { b.remove(sub) }

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		sub.shut()
		return sub
	}
	b.subs[sub] = struct{}{}

	if done := ctx.Done(); done != nil {
		b.cleanup.Add(1)
		go func() {
			defer b.cleanup.Done()
			select {
			case <-done:
				b.remove(sub)
			case <-sub.done:
			}
		}()
	}

	return sub
}

// Broadcast delivers data to every current subscriber without blocking.
// Concurrent calls are serialised so every subscriber sees Seq in order.
func (b *Memory[T]) Broadcast(_ context.Context, data T) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	msg := Message[T]{Seq: b.seq.Add(1), At: b.now(), Data: data}
	for sub := range b.subs {
		sub.send(msg)
	}
	return nil
}

// Len returns the number of live subscribers.
func (b *Memory[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close ends every subscription. Further broadcasts return ErrClosed.
func (b *Memory[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for sub := range b.subs {
		sub.shut()
	}
	clear(b.subs)
	b.mu.Unlock()

	b.cleanup.Wait()
	return nil
}

func (b *Memory[T]) remove(sub *subscriber[T]) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
	sub.shut()
}

type subscriber[T any] struct {
	mu      sync.Mutex
	ch      chan Message[T]
	done    chan struct{}
	once    sync.Once
	closed  bool
	dropped atomic.Uint64
	release func()
}

func (s *subscriber[T]) Receive() <-chan Message[T] { return s.ch }

func (s *subscriber[T]) Dropped() uint64 { return s.dropped.Load() }

func (s *subscriber[T]) Close() error {
	s.release()
	return nil
}

func (s *subscriber[T]) shut() {
	s.once.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.closed = true
		close(s.ch)
		close(s.done)
	})
}

func (s *subscriber[T]) send(msg Message[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- msg:
	default:
		s.dropped.Add(1)
	}
}
