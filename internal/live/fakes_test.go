// internal/live/fakes_test.go
package live

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vikt-quiz/vikt/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeStore is an in-memory GameStateStore. Read returns a copy so
// callers cannot mutate the backing state through the cache.
type fakeStore struct {
	mu       sync.Mutex
	state    models.GameState
	defaults []string
	reads    int
}

func newFakeStore(sections []string) *fakeStore {
	return &fakeStore{
		state: models.GameState{
			ID:                   1,
			Sections:             sections,
			SpectatorDisplayMode: models.DisplayModeQuestion,
		},
		defaults: sections,
	}
}

func (f *fakeStore) Read(ctx context.Context) (*models.GameState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	cp := f.state
	cp.Sections = append([]string(nil), f.state.Sections...)
	return &cp, nil
}

func (f *fakeStore) readCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

func (f *fakeStore) SetStarted(ctx context.Context, sectionIndex int, started, over bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.CurrentSectionIndex = sectionIndex
	f.state.GameStarted = started
	f.state.GameOver = over
	return nil
}

func (f *fakeStore) SetCurrentQuestion(ctx context.Context, rec *models.QuestionRecord, timer, showAnswer bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.CurrentQuestion = &rec.Question
	f.state.CurrentAnswer = &rec.Answer
	f.state.CurrentQuestionImage = optionalString(rec.QuestionImage)
	f.state.CurrentAnswerImage = optionalString(rec.AnswerImage)
	f.state.TimerActive = timer
	f.state.ShowAnswer = showAnswer
	return nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (f *fakeStore) ClearCurrentQuestion(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.CurrentQuestion = nil
	f.state.CurrentAnswer = nil
	f.state.CurrentQuestionImage = nil
	f.state.CurrentAnswerImage = nil
	f.state.TimerActive = false
	f.state.ShowAnswer = false
	return nil
}

func (f *fakeStore) SetSectionIndex(ctx context.Context, idx int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.CurrentSectionIndex = idx
	return nil
}

func (f *fakeStore) SetGameOver(ctx context.Context, over bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.GameOver = over
	return nil
}

func (f *fakeStore) SetTimer(ctx context.Context, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.TimerActive = active
	return nil
}

func (f *fakeStore) SetShowAnswer(ctx context.Context, show bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.ShowAnswer = show
	return nil
}

func (f *fakeStore) SetDisplayMode(ctx context.Context, mode string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state.SpectatorDisplayMode = mode
	return nil
}

func (f *fakeStore) Reset(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = models.GameState{
		ID:                   1,
		Sections:             f.defaults,
		SpectatorDisplayMode: models.DisplayModeQuestion,
	}
	return nil
}

// fakePool keeps per-section question slices; PopRandom takes the last
// element so pop order is deterministic in tests.
type fakePool struct {
	mu       sync.Mutex
	sections map[string][]models.QuestionRecord
}

func newFakePool() *fakePool {
	return &fakePool{sections: make(map[string][]models.QuestionRecord)}
}

func (f *fakePool) Load(ctx context.Context, section string, records []models.QuestionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sections[section] = append(f.sections[section], records...)
	return nil
}

func (f *fakePool) PopRandom(ctx context.Context, section string) (*models.QuestionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pool := f.sections[section]
	if len(pool) == 0 {
		return nil, nil
	}
	rec := pool[len(pool)-1]
	f.sections[section] = pool[:len(pool)-1]
	return &rec, nil
}

func (f *fakePool) HasAny(ctx context.Context, section string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sections[section]) > 0, nil
}

func (f *fakePool) Clear(ctx context.Context, section string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sections, section)
	return nil
}

func (f *fakePool) FlushAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sections = make(map[string][]models.QuestionRecord)
	return nil
}

// fakeSource is the durable question catalog the pool refills from.
type fakeSource struct {
	bySection map[string][]models.QuestionRecord
}

func (f *fakeSource) BySection(ctx context.Context, section string) ([]models.QuestionRecord, error) {
	return f.bySection[section], nil
}

// fakeUsers serves a fixed leaderboard and counts fetches.
type fakeUsers struct {
	mu     sync.Mutex
	scores []models.PlayerScore
	lists  int
}

func (f *fakeUsers) ListWithScores(ctx context.Context) ([]models.PlayerScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	return append([]models.PlayerScore(nil), f.scores...), nil
}

func (f *fakeUsers) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}

type recordedAnswer struct {
	question string
	player   string
	answer   string
}

// fakeAnswers collects recorded answers.
type fakeAnswers struct {
	mu      sync.Mutex
	records []recordedAnswer
}

func (f *fakeAnswers) Record(ctx context.Context, question, playerName, answer string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, recordedAnswer{question: question, player: playerName, answer: answer})
	return nil
}

func (f *fakeAnswers) all() []recordedAnswer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedAnswer(nil), f.records...)
}

// fakeSocket records everything written to it and can be told to fail.
type fakeSocket struct {
	mu          sync.Mutex
	writes      [][]byte
	failWrites  bool
	closed      bool
	closeCode   websocket.StatusCode
	closeReason string
}

var errWriteFailed = context.DeadlineExceeded

func (f *fakeSocket) Write(ctx context.Context, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrites {
		return errWriteFailed
	}
	f.writes = append(f.writes, append([]byte(nil), data...))
	return nil
}

func (f *fakeSocket) Close(code websocket.StatusCode, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.closeCode = code
	f.closeReason = reason
	return nil
}

func (f *fakeSocket) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

func (f *fakeSocket) lastWrite() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.writes) == 0 {
		return nil
	}
	return f.writes[len(f.writes)-1]
}

func (f *fakeSocket) wasClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
