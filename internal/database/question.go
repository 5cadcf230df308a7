// internal/database/question.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vikt-quiz/vikt/internal/models"
)

// QuestionStore is the durable home of quiz questions. The live
// session never reads it directly; questions are materialized into the
// Redis pool at round start.
type QuestionStore struct{}

// AddBatch inserts a list of questions in one transaction.
func (QuestionStore) AddBatch(ctx context.Context, records []models.QuestionRecord) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `INSERT INTO questions (question, answer, section, question_image, answer_image)
		      VALUES ($1, $2, $3, $4, $5)`
		for _, rec := range records {
			if _, err := tx.Exec(ctx, q,
				rec.Question, rec.Answer, rec.Section, rec.QuestionImage, rec.AnswerImage); err != nil {
				return err
			}
		}
		return nil
	})
}

func scanQuestions(rows pgx.Rows) ([]models.QuestionRecord, error) {
	defer rows.Close()
	var out []models.QuestionRecord
	for rows.Next() {
		var rec models.QuestionRecord
		var answer, qImage, aImage *string
		if err := rows.Scan(&rec.ID, &rec.Question, &answer, &rec.Section, &qImage, &aImage); err != nil {
			return nil, err
		}
		if answer != nil {
			rec.Answer = *answer
		}
		if qImage != nil {
			rec.QuestionImage = *qImage
		}
		if aImage != nil {
			rec.AnswerImage = *aImage
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

const questionColumns = `id, question, answer, section, question_image, answer_image`

// All returns every stored question.
func (QuestionStore) All(ctx context.Context) ([]models.QuestionRecord, error) {
	rows, err := DB.Query(ctx, `SELECT `+questionColumns+` FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	return scanQuestions(rows)
}

// BySection returns the questions belonging to one section, in insert
// order. An empty result is not an error; a section may simply be
// exhausted of authored questions.
func (QuestionStore) BySection(ctx context.Context, section string) ([]models.QuestionRecord, error) {
	rows, err := DB.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE section=$1 ORDER BY id`, section)
	if err != nil {
		return nil, fmt.Errorf("questions by section: %w", err)
	}
	return scanQuestions(rows)
}

// ByText looks a question up by its exact text, for the host's info view.
func (QuestionStore) ByText(ctx context.Context, question string) (*models.QuestionRecord, error) {
	rows, err := DB.Query(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE question=$1 LIMIT 1`, question)
	if err != nil {
		return nil, fmt.Errorf("question by text: %w", err)
	}
	recs, err := scanQuestions(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, pgx.ErrNoRows
	}
	return &recs[0], nil
}

// Delete removes a question by its exact text.
func (QuestionStore) Delete(ctx context.Context, question string) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM questions WHERE question=$1`, question)
		return err
	})
}

// ResetTable empties the questions table and restarts the id sequence.
func (QuestionStore) ResetTable(ctx context.Context) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `TRUNCATE TABLE questions RESTART IDENTITY`)
		return err
	})
}
