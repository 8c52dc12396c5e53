package broadcast_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bellfeed/pkg/broadcast"
)

func receive[T any](t *testing.T, sub broadcast.Subscriber[T]) broadcast.Message[T] {
	t.Helper()
	select {
	case msg, ok := <-sub.Receive():
		require.True(t, ok, "subscription closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
	}
	return broadcast.Message[T]{}
}

func TestMemory_Broadcast(t *testing.T) {
	t.Parallel()

	b := broadcast.NewMemory[string](4)
	defer b.Close()

	first := b.Subscribe(context.Background())
	second := b.Subscribe(context.Background())
	assert.Equal(t, 2, b.Len())

	require.NoError(t, b.Broadcast(context.Background(), "a"))
	require.NoError(t, b.Broadcast(context.Background(), "b"))

	for _, sub := range []broadcast.Subscriber[string]{first, second} {
		m1 := receive(t, sub)
		m2 := receive(t, sub)
		assert.Equal(t, "a", m1.Data)
		assert.Equal(t, "b", m2.Data)
		assert.Equal(t, m1.Seq+1, m2.Seq)
		assert.False(t, m1.At.IsZero())
	}
}

func TestMemory_DropsWhenBufferFull(t *testing.T) {
	t.Parallel()

	b := broadcast.NewMemory[int](1)
	defer b.Close()

	sub := b.Subscribe(context.Background())
	for i := range 3 {
		require.NoError(t, b.Broadcast(context.Background(), i))
	}

	assert.Equal(t, 0, receive(t, sub).Data)
	assert.Equal(t, uint64(2), sub.Dropped())
	assert.Equal(t, 1, b.Len(), "slow subscriber stays subscribed")
}

func TestMemory_SubscriptionEnds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		end  func(t *testing.T, b *broadcast.Memory[int], sub broadcast.Subscriber[int], cancel context.CancelFunc)
	}{
		{
			name: "subscriber closed",
			end: func(t *testing.T, _ *broadcast.Memory[int], sub broadcast.Subscriber[int], _ context.CancelFunc) {
				require.NoError(t, sub.Close())
			},
		},
		{
			name: "context cancelled",
			end: func(t *testing.T, _ *broadcast.Memory[int], _ broadcast.Subscriber[int], cancel context.CancelFunc) {
				cancel()
			},
		},
		{
			name: "broadcaster closed",
			end: func(t *testing.T, b *broadcast.Memory[int], _ broadcast.Subscriber[int], _ context.CancelFunc) {
				require.NoError(t, b.Close())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := broadcast.NewMemory[int](4)
			defer b.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sub := b.Subscribe(ctx)
			tt.end(t, b, sub, cancel)

			select {
			case _, ok := <-sub.Receive():
				assert.False(t, ok)
			case <-time.After(time.Second):
				t.Fatal("subscription did not end")
			}
			assert.Eventually(t, func() bool { return b.Len() == 0 }, time.Second, 5*time.Millisecond)
		})
	}
}

func TestMemory_Closed(t *testing.T) {
	t.Parallel()

	b := broadcast.NewMemory[int](0)
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	assert.ErrorIs(t, b.Broadcast(context.Background(), 1), broadcast.ErrClosed)

	sub := b.Subscribe(context.Background())
	_, ok := <-sub.Receive()
	assert.False(t, ok)
}

func TestMemory_ConcurrentUse(t *testing.T) {
	t.Parallel()

	b := broadcast.NewMemory[int](1024)
	defer b.Close()

	subs := make([]broadcast.Subscriber[int], 8)
	for i := range subs {
		subs[i] = b.Subscribe(context.Background())
	}

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := range 50 {
				_ = b.Broadcast(context.Background(), n*100+j)
			}
		}(i)
	}
	wg.Wait()

	for _, sub := range subs {
		require.Len(t, sub.Receive(), 200)
		assert.Zero(t, sub.Dropped())

		var last uint64
		for range 200 {
			msg := <-sub.Receive()
			require.Equal(t, last+1, msg.Seq, "sequence delivered out of order")
			last = msg.Seq
		}
	}
}
