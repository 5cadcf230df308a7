// internal/live/broadcast.go
package live

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vikt-quiz/vikt/internal/models"
)

// BroadcastKind selects the payload family for a fan-out.
type BroadcastKind int

const (
	KindQuestion BroadcastKind = iota
	KindRating
)

// defaultSendTimeout bounds each individual socket write so a dead
// peer cannot stall the whole fan-out.
const defaultSendTimeout = 3 * time.Second

// BroadcastEngine fans one logical message out to every relevant
// connection. Every send within one call is built from the same state
// snapshot, issued concurrently, and awaited together. Broadcast never
// fails its caller: per-socket errors are logged, and a failing
// spectator is evicted from the registry. Failing players are NOT
// evicted; their own receive loop detects the disconnect. Players are
// identity-bearing, so a false-positive removal costs more than a
// stale entry.
type BroadcastEngine struct {
	registry    *ConnectionRegistry
	cache       *StateCache
	log         *logrus.Logger
	sendTimeout time.Duration
}

func NewBroadcastEngine(registry *ConnectionRegistry, cache *StateCache, log *logrus.Logger) *BroadcastEngine {
	return &BroadcastEngine{
		registry:    registry,
		cache:       cache,
		log:         log,
		sendTimeout: defaultSendTimeout,
	}
}

// Broadcast pushes the current state to the session. For KindQuestion,
// every player gets the question payload; spectators get the question
// payload or, when the display mode says so, the leaderboard instead.
// For KindRating only spectators are addressed; players have no use
// for rating pushes mid-question.
//
// content overrides the question text for section headers and other
// banners; pass "" to use the current question.
func (b *BroadcastEngine) Broadcast(ctx context.Context, kind BroadcastKind, content string) {
	state, err := b.cache.State(ctx, false)
	if err != nil {
		b.log.Errorf("broadcast: failed to read game state: %v", err)
		return
	}

	players := b.registry.SnapshotPlayers()
	spectators := b.registry.SnapshotSpectators()

	var questionBytes []byte
	if kind == KindQuestion {
		questionBytes = b.marshal(questionMessageFromState(state, content))
	}

	// The rating payload is only built when someone will receive it.
	spectatorsWantRating := kind == KindRating || state.SpectatorDisplayMode == models.DisplayModeRating
	var ratingBytes []byte
	if len(spectators) > 0 && spectatorsWantRating {
		scores, err := b.cache.Rating(ctx, false)
		if err != nil {
			b.log.Errorf("broadcast: failed to read rating: %v", err)
		} else {
			ratingBytes = b.marshal(ratingMessage(scores, state.CurrentSection()))
		}
	}

	var wg sync.WaitGroup

	if kind == KindQuestion && questionBytes != nil {
		for _, p := range players {
			wg.Add(1)
			go func(p *PlayerConn) {
				defer wg.Done()
				b.sendToPlayer(p, questionBytes)
			}(p)
		}
	}

	for _, s := range spectators {
		payload := questionBytes
		if spectatorsWantRating {
			payload = ratingBytes
		}
		if payload == nil {
			continue
		}
		wg.Add(1)
		go func(s *SpectatorConn, data []byte) {
			defer wg.Done()
			b.sendToSpectator(s, data)
		}(s, payload)
	}

	wg.Wait()
}

// BroadcastSignal pushes an out-of-band notice (clear_storage,
// game_over) to every connection regardless of audience or mode.
func (b *BroadcastEngine) BroadcastSignal(ctx context.Context, msg SignalMessage) {
	data := b.marshal(msg)
	if data == nil {
		return
	}

	players := b.registry.SnapshotPlayers()
	spectators := b.registry.SnapshotSpectators()

	var wg sync.WaitGroup
	for _, p := range players {
		wg.Add(1)
		go func(p *PlayerConn) {
			defer wg.Done()
			b.sendToPlayer(p, data)
		}(p)
	}
	for _, s := range spectators {
		wg.Add(1)
		go func(s *SpectatorConn) {
			defer wg.Done()
			b.sendToSpectator(s, data)
		}(s)
	}
	wg.Wait()
}

func (b *BroadcastEngine) marshal(msg interface{}) []byte {
	data, err := json.Marshal(msg)
	if err != nil {
		b.log.Errorf("broadcast: failed to marshal payload: %v", err)
		return nil
	}
	return data
}

func (b *BroadcastEngine) sendToPlayer(p *PlayerConn, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), b.sendTimeout)
	defer cancel()
	if err := p.Socket.Write(ctx, data); err != nil {
		b.log.Warnf("broadcast: failed to write to player %q: %v", p.Name, err)
	}
}

// sendToSpectator evicts the spectator on failure: they are anonymous,
// so dropping a broken one is self-healing with no identity to lose.
func (b *BroadcastEngine) sendToSpectator(s *SpectatorConn, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), b.sendTimeout)
	defer cancel()
	if err := s.Socket.Write(ctx, data); err != nil {
		b.log.Warnf("broadcast: failed to write to spectator %s, removing: %v", s.ID, err)
		b.registry.RemoveSpectator(s.ID)
	}
}
