package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/bellfeed/pkg/async"
)

func TestGo(t *testing.T) {
	t.Parallel()

	t.Run("resolves with value", func(t *testing.T) {
		t.Parallel()
		f := async.Go(context.Background(), func(context.Context) (string, error) {
			return "ok", nil
		})
		v, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ok", v)
		assert.True(t, f.Ready())
	})

	t.Run("resolves with error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		f := async.Go(context.Background(), func(context.Context) (int, error) {
			return 0, boom
		})
		_, err := f.Await(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("skips fn when context already done", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var called atomic.Bool
		f := async.Go(ctx, func(context.Context) (int, error) {
			called.Store(true)
			return 1, nil
		})
		<-f.Done()
		_, err := f.Await(context.Background())
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called.Load())
	})

	t.Run("await honours its own context", func(t *testing.T) {
		t.Parallel()
		release := make(chan struct{})
		defer close(release)

		f := async.Go(context.Background(), func(context.Context) (int, error) {
			<-release
			return 1, nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()
		_, err := f.Await(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, f.Ready())
	})
}

func TestSettle(t *testing.T) {
	t.Parallel()

	errA := errors.New("a failed")
	errC := errors.New("c failed")

	tests := []struct {
		name     string
		outcomes []error
		wantErrs []error
	}{
		{name: "all succeed", outcomes: []error{nil, nil}},
		{name: "some fail", outcomes: []error{errA, nil, errC}, wantErrs: []error{errA, errC}},
		{name: "no futures", outcomes: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			futures := make([]*async.Future[int], len(tt.outcomes))
			for i, outcome := range tt.outcomes {
				futures[i] = async.Go(context.Background(), func(context.Context) (int, error) {
					return i, outcome
				})
			}

			results, err := async.Settle(futures...)
			require.Len(t, results, len(tt.outcomes))
			for i, r := range results {
				assert.Equal(t, i, r.Value)
				assert.Equal(t, tt.outcomes[i], r.Err)
			}

			if len(tt.wantErrs) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tt.wantErrs {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestFirst(t *testing.T) {
	t.Parallel()

	slow := async.Go(context.Background(), func(ctx context.Context) (string, error) {
		time.Sleep(200 * time.Millisecond)
		return "slow", nil
	})
	fast := async.Go(context.Background(), func(context.Context) (string, error) {
		return "fast", nil
	})

	i, v, err := async.First(context.Background(), slow, fast)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Equal(t, "fast", v)

	_, _, err = async.First[string](context.Background())
	assert.ErrorIs(t, err, async.ErrNoFutures)
}
