package register

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockUntilCancelled simulates an accumulation over a huge ledger.
func blockUntilCancelled(started chan<- struct{}) Work {
	return func(ctx context.Context) ([]Item, error) {
		close(started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

func items(text string) Work {
	return func(ctx context.Context) ([]Item, error) {
		return []Item{Header{Text: text}}, nil
	}
}

func TestRunner_LatestSubmissionWins(t *testing.T) {
	var mu sync.Mutex
	var published []string
	r := NewRunner(zerolog.Nop(), OnPublish(func(res Result) {
		mu.Lock()
		defer mu.Unlock()
		published = append(published, res.Run.ID)
	}))

	started := make(chan struct{})
	first, err := r.Submit(context.Background(), blockUntilCancelled(started))
	require.NoError(t, err)
	<-started

	second, err := r.Submit(context.Background(), items("second"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	require.Eventually(t, func() bool {
		_, ok := r.Latest()
		return ok
	}, time.Second, 5*time.Millisecond)

	res, _ := r.Latest()
	assert.Equal(t, second, res.Run.ID)
	assert.Equal(t, StatusCompleted, res.Run.Status)
	assert.Equal(t, []Item{Header{Text: "second"}}, res.Items)

	require.NoError(t, r.Stop(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{second}, published)
}

func TestRunner_SupersededResultIsDropped(t *testing.T) {
	r := NewRunner(zerolog.Nop())

	// The first run ignores cancellation and finishes after the second.
	release := make(chan struct{})
	_, err := r.Submit(context.Background(), func(ctx context.Context) ([]Item, error) {
		<-release
		return []Item{Header{Text: "stale"}}, nil
	})
	require.NoError(t, err)

	second, err := r.Submit(context.Background(), items("fresh"))
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, ok := r.Latest()
		return ok
	}, time.Second, 5*time.Millisecond)

	close(release)
	require.NoError(t, r.Stop(context.Background()))

	res, ok := r.Latest()
	require.True(t, ok)
	assert.Equal(t, second, res.Run.ID)
	assert.Equal(t, []Item{Header{Text: "fresh"}}, res.Items)
}

func TestRunner_Failed(t *testing.T) {
	r := NewRunner(zerolog.Nop())

	_, err := r.Submit(context.Background(), func(ctx context.Context) ([]Item, error) {
		return nil, errors.New("provider unavailable")
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return r.Current().Status == StatusFailed
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, "provider unavailable", r.Current().Error)
	_, ok := r.Latest()
	assert.False(t, ok)
}

func TestRunner_Stop(t *testing.T) {
	r := NewRunner(zerolog.Nop())

	started := make(chan struct{})
	_, err := r.Submit(context.Background(), blockUntilCancelled(started))
	require.NoError(t, err)
	<-started

	require.NoError(t, r.Stop(context.Background()))
	assert.Equal(t, StatusCancelled, r.Current().Status)

	_, err = r.Submit(context.Background(), items("late"))
	assert.ErrorIs(t, err, ErrRunnerStopped)

	assert.NoError(t, r.Stop(context.Background()), "stopping twice is a no-op")
}
