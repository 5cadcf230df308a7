// internal/live/progression.go
package live

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/vikt-quiz/vikt/internal/models"
)

// ProgressionEngine is the section/question state machine. Every
// operation mutates the store, invalidates the state cache, then
// broadcasts; the invalidation must land before the broadcast fetches
// so clients never see stale state.
type ProgressionEngine struct {
	store     GameStateStore
	pool      QuestionPool
	source    QuestionSource
	cache     *StateCache
	broadcast *BroadcastEngine
	answered  *AnsweredSet
	log       *logrus.Logger
}

func NewProgressionEngine(store GameStateStore, pool QuestionPool, source QuestionSource,
	cache *StateCache, broadcast *BroadcastEngine, answered *AnsweredSet, log *logrus.Logger) *ProgressionEngine {
	return &ProgressionEngine{
		store:     store,
		pool:      pool,
		source:    source,
		cache:     cache,
		broadcast: broadcast,
		answered:  answered,
		log:       log,
	}
}

// loadPoolIfEmpty fills the section's pool from durable storage unless
// it already holds questions, then reports whether it has any.
func (p *ProgressionEngine) loadPoolIfEmpty(ctx context.Context, section string) (bool, error) {
	has, err := p.pool.HasAny(ctx, section)
	if err != nil {
		return false, err
	}
	if has {
		return true, nil
	}
	records, err := p.source.BySection(ctx, section)
	if err != nil {
		return false, err
	}
	if len(records) == 0 {
		return false, nil
	}
	if err := p.pool.Load(ctx, section, records); err != nil {
		return false, err
	}
	return true, nil
}

// Start begins the game from the idle state: preload every section's
// pool, rewind to the first section, and announce it with no timer.
func (p *ProgressionEngine) Start(ctx context.Context) error {
	state, err := p.cache.State(ctx, true)
	if err != nil {
		return err
	}
	if state.GameStarted {
		return ErrAlreadyStarted
	}
	if len(state.Sections) == 0 {
		return fmt.Errorf("no sections configured")
	}

	for _, section := range state.Sections {
		if _, err := p.loadPoolIfEmpty(ctx, section); err != nil {
			return fmt.Errorf("preload section %q: %w", section, err)
		}
	}

	if err := p.store.SetStarted(ctx, 0, true, false); err != nil {
		return err
	}
	if err := p.store.ClearCurrentQuestion(ctx); err != nil {
		return err
	}
	p.answered.Clear()
	p.cache.Invalidate()

	p.log.Infof("game started with %d sections", len(state.Sections))
	p.broadcast.Broadcast(ctx, KindQuestion, sectionHeader(0, state.Sections[0]))
	return nil
}

// Advance serves the next question for the current section, or crosses
// a section boundary when the pool is exhausted. One idempotent
// operation regardless of whether a question is currently active: the
// result is always a new question, a section header, or game over.
// Empty sections are skipped with an explicit loop bounded by the
// section count, so pathological input (every pool empty) terminates.
func (p *ProgressionEngine) Advance(ctx context.Context) error {
	state, err := p.cache.State(ctx, true)
	if err != nil {
		return err
	}
	if !state.GameStarted {
		return ErrNotStarted
	}
	if state.GameOver {
		return ErrGameOver
	}

	idx := state.CurrentSectionIndex
	sections := state.Sections

	for hops := 0; hops <= len(sections); hops++ {
		if idx < len(sections) {
			rec, err := p.pool.PopRandom(ctx, sections[idx])
			if err != nil {
				return err
			}
			if rec != nil {
				if err := p.store.SetCurrentQuestion(ctx, rec, false, false); err != nil {
					return err
				}
				p.answered.Clear()
				p.cache.Invalidate()
				p.broadcast.Broadcast(ctx, KindQuestion, rec.Question)
				return nil
			}
		}

		// Pool exhausted: move to the next section.
		idx++
		if err := p.store.SetSectionIndex(ctx, idx); err != nil {
			return err
		}
		if idx >= len(sections) {
			return p.finishGame(ctx)
		}

		has, err := p.loadPoolIfEmpty(ctx, sections[idx])
		if err != nil {
			return err
		}
		if has {
			if err := p.store.ClearCurrentQuestion(ctx); err != nil {
				return err
			}
			p.cache.Invalidate()
			p.broadcast.Broadcast(ctx, KindQuestion, sectionHeader(idx, sections[idx]))
			return nil
		}
		// Section has no questions at all; keep walking.
	}
	return nil
}

// JumpToNextSection is the host's manual override: purge everything up
// to and including the current section and move on, even if questions
// remain.
func (p *ProgressionEngine) JumpToNextSection(ctx context.Context) error {
	state, err := p.cache.State(ctx, true)
	if err != nil {
		return err
	}
	if !state.GameStarted {
		return ErrNotStarted
	}
	if state.GameOver {
		return ErrGameOver
	}

	sections := state.Sections
	for i := 0; i <= state.CurrentSectionIndex && i < len(sections); i++ {
		if err := p.pool.Clear(ctx, sections[i]); err != nil {
			return err
		}
	}

	idx := state.CurrentSectionIndex + 1
	if err := p.store.SetSectionIndex(ctx, idx); err != nil {
		return err
	}
	if idx >= len(sections) {
		return p.finishGame(ctx)
	}

	if _, err := p.loadPoolIfEmpty(ctx, sections[idx]); err != nil {
		return err
	}
	if err := p.store.ClearCurrentQuestion(ctx); err != nil {
		return err
	}
	p.cache.Invalidate()
	p.broadcast.Broadcast(ctx, KindQuestion, sectionHeader(idx, sections[idx]))
	return nil
}

// finishGame marks the terminal state and tells everyone.
func (p *ProgressionEngine) finishGame(ctx context.Context) error {
	if err := p.store.SetGameOver(ctx, true); err != nil {
		return err
	}
	if err := p.store.ClearCurrentQuestion(ctx); err != nil {
		return err
	}
	p.cache.Invalidate()

	p.log.Info("game over: all sections exhausted")
	p.broadcast.BroadcastSignal(ctx, SignalMessage{Type: MsgTypeGameOver, Content: "The game is over"})
	return nil
}

// Stop resets the entire game state to defaults from any phase. The
// reset is total, not partial. Clients are told to clear their local
// storage, then that the game ended.
func (p *ProgressionEngine) Stop(ctx context.Context) error {
	if err := p.store.Reset(ctx); err != nil {
		return err
	}
	p.answered.Clear()
	p.cache.InvalidateAll()

	p.log.Info("game stopped, state reset to defaults")
	p.broadcast.BroadcastSignal(ctx, SignalMessage{Type: MsgTypeClearStorage})
	p.broadcast.BroadcastSignal(ctx, SignalMessage{Type: MsgTypeGameOver, Content: "The game has been stopped"})
	return nil
}

// SwitchDisplayMode flips spectators between the live question view and
// the leaderboard. Independent of section/question state.
func (p *ProgressionEngine) SwitchDisplayMode(ctx context.Context, mode string) error {
	if mode != models.DisplayModeQuestion && mode != models.DisplayModeRating {
		return ErrBadDisplayMode
	}
	if err := p.store.SetDisplayMode(ctx, mode); err != nil {
		return err
	}
	p.cache.Invalidate()
	p.broadcast.Broadcast(ctx, KindQuestion, "")
	return nil
}

// SetTimer toggles the client-side timer flag and re-broadcasts.
func (p *ProgressionEngine) SetTimer(ctx context.Context, active bool) error {
	if err := p.store.SetTimer(ctx, active); err != nil {
		return err
	}
	p.cache.Invalidate()
	p.broadcast.Broadcast(ctx, KindQuestion, "")
	return nil
}

// SetShowAnswer toggles the reveal flag and re-broadcasts.
func (p *ProgressionEngine) SetShowAnswer(ctx context.Context, show bool) error {
	if err := p.store.SetShowAnswer(ctx, show); err != nil {
		return err
	}
	p.cache.Invalidate()
	p.broadcast.Broadcast(ctx, KindQuestion, "")
	return nil
}

// ReloadSectionPool drops and refills one section's pool from durable
// storage.
func (p *ProgressionEngine) ReloadSectionPool(ctx context.Context, section string) error {
	if err := p.pool.Clear(ctx, section); err != nil {
		return err
	}
	records, err := p.source.BySection(ctx, section)
	if err != nil {
		return err
	}
	return p.pool.Load(ctx, section, records)
}

// FlushPools removes every section pool.
func (p *ProgressionEngine) FlushPools(ctx context.Context) error {
	return p.pool.FlushAll(ctx)
}
