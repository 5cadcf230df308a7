// internal/live/statecache_test.go
package live

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikt-quiz/vikt/internal/models"
)

// fakeClock is a settable clock for TTL tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestStateCacheServesWithinTTL(t *testing.T) {
	store := newFakeStore([]string{"A"})
	users := &fakeUsers{}
	clock := newFakeClock()
	cache := NewStateCacheWithClock(store, users, clock.now)
	ctx := context.Background()

	_, err := cache.State(ctx, false)
	require.NoError(t, err)
	_, err = cache.State(ctx, false)
	require.NoError(t, err)

	assert.Equal(t, 1, store.readCount(), "second read within TTL must be served from cache")

	clock.advance(StateTTL + time.Millisecond)
	_, err = cache.State(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, store.readCount(), "expired entry must be refetched")
}

func TestStateCacheForceBypassesTTL(t *testing.T) {
	store := newFakeStore([]string{"A"})
	clock := newFakeClock()
	cache := NewStateCacheWithClock(store, &fakeUsers{}, clock.now)
	ctx := context.Background()

	_, err := cache.State(ctx, false)
	require.NoError(t, err)
	_, err = cache.State(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, 2, store.readCount())
}

func TestStateCacheInvalidate(t *testing.T) {
	store := newFakeStore([]string{"A"})
	clock := newFakeClock()
	cache := NewStateCacheWithClock(store, &fakeUsers{}, clock.now)
	ctx := context.Background()

	_, err := cache.State(ctx, false)
	require.NoError(t, err)

	require.NoError(t, store.SetTimer(ctx, true))
	cache.Invalidate()

	state, err := cache.State(ctx, false)
	require.NoError(t, err)
	assert.True(t, state.TimerActive, "invalidated cache must observe the new write")
}

func TestStateCacheTTLsAreIndependent(t *testing.T) {
	store := newFakeStore([]string{"A", "B"})
	users := &fakeUsers{scores: []models.PlayerScore{{Name: "ada", Score: 3}}}
	clock := newFakeClock()
	cache := NewStateCacheWithClock(store, users, clock.now)
	ctx := context.Background()

	_, err := cache.Rating(ctx, false)
	require.NoError(t, err)
	_, err = cache.Sections(ctx, false)
	require.NoError(t, err)

	// Past the rating TTL but well within the sections TTL.
	clock.advance(RatingTTL + time.Second)

	_, err = cache.Rating(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 2, users.listCount())

	_, err = cache.Sections(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, store.readCount(), "sections entry must still be fresh")
}

// flakyStore fails reads until told otherwise.
type flakyStore struct {
	*fakeStore
	fail bool
}

func (f *flakyStore) Read(ctx context.Context) (*models.GameState, error) {
	if f.fail {
		return nil, errReadFailed
	}
	return f.fakeStore.Read(ctx)
}

var errReadFailed = context.Canceled

func TestStateCacheDoesNotCacheErrors(t *testing.T) {
	store := &flakyStore{fakeStore: newFakeStore([]string{"A"}), fail: true}
	clock := newFakeClock()
	cache := NewStateCacheWithClock(store, &fakeUsers{}, clock.now)
	ctx := context.Background()

	_, err := cache.State(ctx, false)
	require.Error(t, err)

	store.fail = false
	state, err := cache.State(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, state.Sections)
}
