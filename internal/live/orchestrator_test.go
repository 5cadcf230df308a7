// internal/live/orchestrator_test.go
package live

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vikt-quiz/vikt/internal/models"
)

func newTestOrchestrator(t *testing.T, catalog map[string][]models.QuestionRecord) (*Orchestrator, *fakeStore, *fakeAnswers) {
	t.Helper()
	sections := make([]string, 0, len(catalog))
	for s := range catalog {
		sections = append(sections, s)
	}
	store := newFakeStore(sections)
	answers := &fakeAnswers{}
	orch := NewOrchestrator(store, newFakePool(), &fakeSource{bySection: catalog}, &fakeUsers{}, answers, testLogger())
	return orch, store, answers
}

func TestRecordAnswerHappyPath(t *testing.T) {
	orch, _, answers := newTestOrchestrator(t, map[string][]models.QuestionRecord{
		"A": questions("A", 1),
	})
	ctx := context.Background()
	require.NoError(t, orch.Progression.Start(ctx))
	require.NoError(t, orch.Progression.Advance(ctx))

	require.NoError(t, orch.RecordAnswer(ctx, "ada", "42"))

	recs := answers.all()
	require.Len(t, recs, 1)
	assert.Equal(t, "ada", recs[0].player)
	assert.Equal(t, "42", recs[0].answer)
	assert.Equal(t, "A question 1", recs[0].question)
}

func TestRecordAnswerDeduplicatesPerQuestion(t *testing.T) {
	orch, _, answers := newTestOrchestrator(t, map[string][]models.QuestionRecord{
		"A": questions("A", 2),
	})
	ctx := context.Background()
	require.NoError(t, orch.Progression.Start(ctx))
	require.NoError(t, orch.Progression.Advance(ctx))

	require.NoError(t, orch.RecordAnswer(ctx, "ada", "first"))
	require.NoError(t, orch.RecordAnswer(ctx, "ada", "second"))
	assert.Len(t, answers.all(), 1, "one answer per player per question")

	// A new question opens a fresh window for the same player.
	require.NoError(t, orch.Progression.Advance(ctx))
	require.NoError(t, orch.RecordAnswer(ctx, "ada", "third"))
	assert.Len(t, answers.all(), 2)
}

func TestRecordAnswerDroppedWithoutActiveQuestion(t *testing.T) {
	orch, _, answers := newTestOrchestrator(t, map[string][]models.QuestionRecord{
		"A": questions("A", 1),
	})
	ctx := context.Background()
	require.NoError(t, orch.Progression.Start(ctx))

	// Only the section banner is up; there is nothing to answer yet.
	require.NoError(t, orch.RecordAnswer(ctx, "ada", "eager"))
	assert.Empty(t, answers.all())
}

func TestSpectatorSnapshotFollowsDisplayMode(t *testing.T) {
	orch, store, _ := newTestOrchestrator(t, map[string][]models.QuestionRecord{
		"A": questions("A", 1),
	})
	ctx := context.Background()

	snap, err := orch.SpectatorSnapshot(ctx)
	require.NoError(t, err)
	_, ok := snap.(QuestionMessage)
	assert.True(t, ok, "question mode yields a question payload")

	require.NoError(t, store.SetDisplayMode(ctx, models.DisplayModeRating))
	orch.Cache.Invalidate()

	snap, err = orch.SpectatorSnapshot(ctx)
	require.NoError(t, err)
	_, ok = snap.(RatingMessage)
	assert.True(t, ok, "rating mode yields a leaderboard payload")
}

func TestConnectPlayerAppliesRegistryPolicy(t *testing.T) {
	orch, _, _ := newTestOrchestrator(t, map[string][]models.QuestionRecord{
		"A": questions("A", 1),
	})

	first := &fakeSocket{}
	conn, outcome := orch.ConnectPlayer("ada", first, false)
	require.NotNil(t, conn)
	assert.Equal(t, Accepted, outcome)

	_, outcome = orch.ConnectPlayer("ada", &fakeSocket{}, false)
	assert.Equal(t, RejectedDuplicate, outcome)

	replacement, outcome := orch.ConnectPlayer("ada", &fakeSocket{}, true)
	assert.Equal(t, SupersededPrevious, outcome)

	orch.DisconnectPlayer(conn)
	assert.Equal(t, 1, orch.Registry.PlayerCount(), "stale cleanup must not evict the reconnect")
	orch.DisconnectPlayer(replacement)
	assert.Equal(t, 0, orch.Registry.PlayerCount())
}
