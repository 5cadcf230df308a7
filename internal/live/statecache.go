// internal/live/statecache.go
package live

import (
	"context"
	"sync"
	"time"

	"github.com/vikt-quiz/vikt/internal/models"
)

// Cache TTLs. State must feel live; the section list barely changes;
// the leaderboard tolerates slight staleness.
const (
	StateTTL    = 1 * time.Second
	SectionsTTL = 60 * time.Second
	RatingTTL   = 5 * time.Second
)

// cached is a single-value TTL cache around one fetch function.
type cached[T any] struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	fetch     func(ctx context.Context) (T, error)
	value     T
	fetchedAt time.Time
	valid     bool
}

func (c *cached[T]) get(ctx context.Context, force bool) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && c.valid && c.now().Sub(c.fetchedAt) <= c.ttl {
		return c.value, nil
	}
	v, err := c.fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	c.value = v
	c.fetchedAt = c.now()
	c.valid = true
	return v, nil
}

func (c *cached[T]) invalidate() {
	c.mu.Lock()
	c.valid = false
	c.mu.Unlock()
}

// StateCache fronts the GameStateStore and UserDirectory so broadcasts
// and snapshots do not hammer the database. One instance per process;
// the orchestrator is the only writer of live state, so invalidating
// after each mutating command keeps reads coherent.
type StateCache struct {
	state    *cached[*models.GameState]
	sections *cached[[]string]
	rating   *cached[[]models.PlayerScore]
}

// NewStateCache builds the cache with the real clock.
func NewStateCache(store GameStateStore, users UserDirectory) *StateCache {
	return NewStateCacheWithClock(store, users, time.Now)
}

// NewStateCacheWithClock lets tests drive TTL expiry deterministically.
func NewStateCacheWithClock(store GameStateStore, users UserDirectory, now func() time.Time) *StateCache {
	return &StateCache{
		state: &cached[*models.GameState]{
			ttl: StateTTL,
			now: now,
			fetch: func(ctx context.Context) (*models.GameState, error) {
				return store.Read(ctx)
			},
		},
		sections: &cached[[]string]{
			ttl: SectionsTTL,
			now: now,
			fetch: func(ctx context.Context) ([]string, error) {
				state, err := store.Read(ctx)
				if err != nil {
					return nil, err
				}
				return state.Sections, nil
			},
		},
		rating: &cached[[]models.PlayerScore]{
			ttl: RatingTTL,
			now: now,
			fetch: func(ctx context.Context) ([]models.PlayerScore, error) {
				return users.ListWithScores(ctx)
			},
		},
	}
}

// State returns the cached game state, refetching when forced or stale.
func (c *StateCache) State(ctx context.Context, force bool) (*models.GameState, error) {
	return c.state.get(ctx, force)
}

// Sections returns the cached section list.
func (c *StateCache) Sections(ctx context.Context, force bool) ([]string, error) {
	return c.sections.get(ctx, force)
}

// Rating returns the cached leaderboard.
func (c *StateCache) Rating(ctx context.Context, force bool) ([]models.PlayerScore, error) {
	return c.rating.get(ctx, force)
}

// Invalidate drops the state cache so the next read refetches. Called
// after every mutating admin command, before the follow-up broadcast.
func (c *StateCache) Invalidate() {
	c.state.invalidate()
}

// InvalidateRating drops the leaderboard cache (scores changed).
func (c *StateCache) InvalidateRating() {
	c.rating.invalidate()
}

// InvalidateAll drops every cache; used on stop/reset.
func (c *StateCache) InvalidateAll() {
	c.state.invalidate()
	c.sections.invalidate()
	c.rating.invalidate()
}
