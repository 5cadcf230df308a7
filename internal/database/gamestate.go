// internal/database/gamestate.go
package database

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vikt-quiz/vikt/internal/models"
)

// sectionSeparator joins the ordered section names into the single
// sections column. Section names must not contain it.
const sectionSeparator = "."

// DefaultSections returns the configured round order, read from the
// DEFAULT_SECTIONS env var (dot-separated).
func DefaultSections() []string {
	raw := os.Getenv("DEFAULT_SECTIONS")
	if raw == "" {
		raw = "General Knowledge.History.Science"
	}
	return strings.Split(raw, sectionSeparator)
}

// GameStateStore owns the single gamestatus row. All mutations go
// through the package pool; the live session layer caches reads.
type GameStateStore struct{}

// EnsureExists inserts the gamestatus row with defaults if the table is
// empty. Idempotent; called once at boot.
func (GameStateStore) EnsureExists(ctx context.Context) error {
	var count int
	if err := DB.QueryRow(ctx, `SELECT COUNT(*) FROM gamestatus`).Scan(&count); err != nil {
		return fmt.Errorf("count gamestatus: %w", err)
	}
	if count > 0 {
		return nil
	}
	q := `INSERT INTO gamestatus (sections) VALUES ($1)`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, strings.Join(DefaultSections(), sectionSeparator))
		return err
	})
}

// Read fetches the full game state.
func (GameStateStore) Read(ctx context.Context) (*models.GameState, error) {
	var s models.GameState
	var sections *string
	q := `
	SELECT id, sections, current_section_index,
	       current_question, current_answer,
	       current_question_image, current_answer_image,
	       game_started, game_over, timer_active, show_answer,
	       spectator_display_mode
	FROM gamestatus
	ORDER BY id
	LIMIT 1
	`
	err := DB.QueryRow(ctx, q).Scan(
		&s.ID, &sections, &s.CurrentSectionIndex,
		&s.CurrentQuestion, &s.CurrentAnswer,
		&s.CurrentQuestionImage, &s.CurrentAnswerImage,
		&s.GameStarted, &s.GameOver, &s.TimerActive, &s.ShowAnswer,
		&s.SpectatorDisplayMode,
	)
	if err != nil {
		return nil, fmt.Errorf("read gamestatus: %w", err)
	}
	if sections != nil && *sections != "" {
		s.Sections = strings.Split(*sections, sectionSeparator)
	}
	return &s, nil
}

func (GameStateStore) exec(ctx context.Context, q string, args ...interface{}) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, args...)
		return err
	})
}

// SetStarted flips the game into its running (or stopped) phase and
// positions the section index in one write.
func (g GameStateStore) SetStarted(ctx context.Context, sectionIndex int, started, over bool) error {
	return g.exec(ctx,
		`UPDATE gamestatus SET current_section_index=$1, game_started=$2, game_over=$3`,
		sectionIndex, started, over)
}

// SetCurrentQuestion installs a new active question together with its
// presentation flags.
func (g GameStateStore) SetCurrentQuestion(ctx context.Context, rec *models.QuestionRecord, timer, showAnswer bool) error {
	return g.exec(ctx,
		`UPDATE gamestatus
		 SET current_question=$1, current_answer=$2,
		     current_question_image=$3, current_answer_image=$4,
		     timer_active=$5, show_answer=$6`,
		rec.Question, rec.Answer, rec.QuestionImage, rec.AnswerImage, timer, showAnswer)
}

// ClearCurrentQuestion nulls the question fields for a section boundary.
func (g GameStateStore) ClearCurrentQuestion(ctx context.Context) error {
	return g.exec(ctx,
		`UPDATE gamestatus
		 SET current_question=NULL, current_answer=NULL,
		     current_question_image=NULL, current_answer_image=NULL,
		     timer_active=FALSE, show_answer=FALSE`)
}

func (g GameStateStore) SetSectionIndex(ctx context.Context, idx int) error {
	return g.exec(ctx, `UPDATE gamestatus SET current_section_index=$1`, idx)
}

func (g GameStateStore) SetGameOver(ctx context.Context, over bool) error {
	return g.exec(ctx, `UPDATE gamestatus SET game_over=$1`, over)
}

func (g GameStateStore) SetTimer(ctx context.Context, active bool) error {
	return g.exec(ctx, `UPDATE gamestatus SET timer_active=$1`, active)
}

func (g GameStateStore) SetShowAnswer(ctx context.Context, show bool) error {
	return g.exec(ctx, `UPDATE gamestatus SET show_answer=$1`, show)
}

func (g GameStateStore) SetDisplayMode(ctx context.Context, mode string) error {
	return g.exec(ctx, `UPDATE gamestatus SET spectator_display_mode=$1`, mode)
}

func (g GameStateStore) SetSections(ctx context.Context, sections []string) error {
	return g.exec(ctx, `UPDATE gamestatus SET sections=$1`,
		strings.Join(sections, sectionSeparator))
}

// Reset restores every field to its documented default. The reset is
// total: section order, flags, display mode, and question fields.
func (g GameStateStore) Reset(ctx context.Context) error {
	return g.exec(ctx,
		`UPDATE gamestatus
		 SET sections=$1, current_section_index=0,
		     current_question=NULL, current_answer=NULL,
		     current_question_image=NULL, current_answer_image=NULL,
		     game_started=FALSE, game_over=FALSE,
		     timer_active=FALSE, show_answer=FALSE,
		     spectator_display_mode='question'`,
		strings.Join(DefaultSections(), sectionSeparator))
}
