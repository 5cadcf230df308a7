// internal/database/answer.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/vikt-quiz/vikt/internal/models"
)

// AnswerLog records submitted answers for host review. Append-only
// during a game.
type AnswerLog struct{}

// Record stores one submission.
func (AnswerLog) Record(ctx context.Context, question, playerName, answer string, at time.Time) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO answers (question, username, answer, answered_at) VALUES ($1, $2, $3, $4)`,
			question, playerName, answer, at)
		return err
	})
}

// List returns all logged answers, newest last.
func (AnswerLog) List(ctx context.Context) ([]models.Answer, error) {
	rows, err := DB.Query(ctx,
		`SELECT id, question, username, answer, answered_at FROM answers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var out []models.Answer
	for rows.Next() {
		var a models.Answer
		if err := rows.Scan(&a.ID, &a.Question, &a.PlayerName, &a.Answer, &a.AnsweredAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ResetTable empties the answers table.
func (AnswerLog) ResetTable(ctx context.Context) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `TRUNCATE TABLE answers RESTART IDENTITY`)
		return err
	})
}
