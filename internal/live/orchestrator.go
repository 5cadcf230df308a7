// internal/live/orchestrator.go
package live

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vikt-quiz/vikt/internal/models"
)

// Orchestrator is the façade the transport layer talks to. Admin
// commands go through the progression engine; connection lifecycles go
// through the registry; answer submissions land in the answer log at
// most once per player per question.
type Orchestrator struct {
	Registry    *ConnectionRegistry
	Cache       *StateCache
	Broadcast   *BroadcastEngine
	Progression *ProgressionEngine

	answered *AnsweredSet
	answers  AnswerLog
	log      *logrus.Logger
	now      func() time.Time
}

// NewOrchestrator wires the live session services around the given
// collaborators. One instance per process; it is the single authority
// for live state.
func NewOrchestrator(store GameStateStore, pool QuestionPool, source QuestionSource,
	users UserDirectory, answers AnswerLog, log *logrus.Logger) *Orchestrator {
	registry := NewConnectionRegistry()
	cache := NewStateCache(store, users)
	broadcast := NewBroadcastEngine(registry, cache, log)
	answered := NewAnsweredSet()
	progression := NewProgressionEngine(store, pool, source, cache, broadcast, answered, log)

	return &Orchestrator{
		Registry:    registry,
		Cache:       cache,
		Broadcast:   broadcast,
		Progression: progression,
		answered:    answered,
		answers:     answers,
		log:         log,
		now:         time.Now,
	}
}

// ConnectPlayer registers an identified player connection, applying the
// duplicate/reconnect policy.
func (o *Orchestrator) ConnectPlayer(name string, sock Socket, reconnect bool) (*PlayerConn, RegisterOutcome) {
	conn, outcome := o.Registry.RegisterPlayer(name, sock, reconnect)
	switch outcome {
	case RejectedDuplicate:
		o.log.Warnf("player %q rejected: name already connected", name)
	case SupersededPrevious:
		o.log.Infof("player %q reconnected, previous socket superseded", name)
	default:
		o.log.Infof("player %q connected", name)
	}
	return conn, outcome
}

// DisconnectPlayer removes the player's registry entry if conn still
// owns it.
func (o *Orchestrator) DisconnectPlayer(conn *PlayerConn) {
	if conn == nil {
		return
	}
	o.Registry.RemovePlayer(conn)
	o.log.Infof("player %q disconnected", conn.Name)
}

// ConnectSpectator registers an anonymous spectator connection.
func (o *Orchestrator) ConnectSpectator(sock Socket) *SpectatorConn {
	conn := o.Registry.RegisterSpectator(sock)
	o.log.Infof("spectator %s connected", conn.ID)
	return conn
}

// DisconnectSpectator drops a spectator.
func (o *Orchestrator) DisconnectSpectator(id uuid.UUID) {
	o.Registry.RemoveSpectator(id)
	o.log.Infof("spectator %s disconnected", id)
}

// TouchSpectator refreshes spectator liveness on any inbound frame.
func (o *Orchestrator) TouchSpectator(id uuid.UUID) {
	o.Registry.TouchSpectator(id)
}

// RecordAnswer logs a player's answer to the current question, at most
// once per player per question. Answers with no active question and
// duplicate submissions are dropped silently; the player just sees the
// next state push.
func (o *Orchestrator) RecordAnswer(ctx context.Context, playerName, answerText string) error {
	state, err := o.Cache.State(ctx, false)
	if err != nil {
		return err
	}
	if !state.QuestionActive() {
		o.log.Debugf("dropping answer from %q: no active question", playerName)
		return nil
	}
	if !o.answered.Add(playerName) {
		o.log.Debugf("dropping duplicate answer from %q", playerName)
		return nil
	}
	if err := o.answers.Record(ctx, *state.CurrentQuestion, playerName, answerText, o.now()); err != nil {
		return err
	}
	o.log.Infof("recorded answer from %q", playerName)
	return nil
}

// PlayerSnapshot builds the initial question payload for a freshly
// connected player.
func (o *Orchestrator) PlayerSnapshot(ctx context.Context) (*QuestionMessage, error) {
	state, err := o.Cache.State(ctx, false)
	if err != nil {
		return nil, err
	}
	msg := questionMessageFromState(state, "")
	return &msg, nil
}

// SpectatorSnapshot builds the initial payload for a spectator, shaped
// by the current display mode.
func (o *Orchestrator) SpectatorSnapshot(ctx context.Context) (interface{}, error) {
	state, err := o.Cache.State(ctx, false)
	if err != nil {
		return nil, err
	}
	if state.SpectatorDisplayMode == models.DisplayModeRating {
		scores, err := o.Cache.Rating(ctx, false)
		if err != nil {
			return nil, err
		}
		return ratingMessage(scores, state.CurrentSection()), nil
	}
	msg := questionMessageFromState(state, "")
	return msg, nil
}

// Status returns a fresh read of the full game state for the admin UI.
func (o *Orchestrator) Status(ctx context.Context) (*models.GameState, error) {
	return o.Cache.State(ctx, true)
}
