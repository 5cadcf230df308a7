// internal/live/contracts.go
//
// Package live is the in-process authority for one running quiz
// session: who is connected, what the current question is, and how
// state changes fan out to clients. Durable storage and the Redis
// question pool are reached only through the narrow contracts below so
// tests can swap in in-memory fakes.
package live

import (
	"context"
	"errors"
	"time"

	"github.com/coder/websocket"

	"github.com/vikt-quiz/vikt/internal/models"
)

// Command rejections reported back to the admin caller.
var (
	ErrAlreadyStarted = errors.New("game already started")
	ErrNotStarted     = errors.New("game not started")
	ErrGameOver       = errors.New("game is over")
	ErrBadDisplayMode = errors.New("unknown display mode")
)

// GameStateStore is the durable record of the session.
type GameStateStore interface {
	Read(ctx context.Context) (*models.GameState, error)
	SetStarted(ctx context.Context, sectionIndex int, started, over bool) error
	SetCurrentQuestion(ctx context.Context, rec *models.QuestionRecord, timer, showAnswer bool) error
	ClearCurrentQuestion(ctx context.Context) error
	SetSectionIndex(ctx context.Context, idx int) error
	SetGameOver(ctx context.Context, over bool) error
	SetTimer(ctx context.Context, active bool) error
	SetShowAnswer(ctx context.Context, show bool) error
	SetDisplayMode(ctx context.Context, mode string) error
	Reset(ctx context.Context) error
}

// QuestionPool is the per-section multiset of not-yet-asked questions.
// PopRandom must be atomic: two concurrent advances may never receive
// the same record.
type QuestionPool interface {
	Load(ctx context.Context, section string, records []models.QuestionRecord) error
	PopRandom(ctx context.Context, section string) (*models.QuestionRecord, error)
	HasAny(ctx context.Context, section string) (bool, error)
	Clear(ctx context.Context, section string) error
	FlushAll(ctx context.Context) error
}

// QuestionSource supplies the authored questions used to (re)fill a
// section's pool.
type QuestionSource interface {
	BySection(ctx context.Context, section string) ([]models.QuestionRecord, error)
}

// UserDirectory provides the leaderboard.
type UserDirectory interface {
	ListWithScores(ctx context.Context) ([]models.PlayerScore, error)
}

// AnswerLog records submitted answers.
type AnswerLog interface {
	Record(ctx context.Context, question, playerName, answer string, at time.Time) error
}

// Socket is the slice of a websocket connection the session layer
// needs. Production wraps *websocket.Conn; tests use stubs.
type Socket interface {
	Write(ctx context.Context, data []byte) error
	Close(code websocket.StatusCode, reason string) error
}
