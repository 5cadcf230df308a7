// internal/database/user.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vikt-quiz/vikt/internal/auth"
	"github.com/vikt-quiz/vikt/internal/models"
)

// UserStore handles registered participants and their scores.
type UserStore struct{}

// Create registers a new user, hashing the plaintext password before it
// touches the database.
func (UserStore) Create(ctx context.Context, username, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &models.User{Username: username}
	q := `INSERT INTO users (username, password) VALUES ($1, $2) RETURNING id`
	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, username, hash).Scan(&u.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

// GetByUsername fetches a single user row.
func (UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	q := `SELECT id, username, password, score FROM users WHERE username=$1`
	err := DB.QueryRow(ctx, q, username).Scan(&u.ID, &u.Username, &u.Password, &u.Score)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Authenticate verifies the credentials and returns a signed JWT.
func (s UserStore) Authenticate(ctx context.Context, username, password string) (string, error) {
	user, err := s.GetByUsername(ctx, username)
	if err != nil {
		return "", fmt.Errorf("user not found or db error: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.Password)
	if err != nil || !match {
		return "", fmt.Errorf("invalid credentials")
	}

	token, err := auth.CreateJWT(user.Username)
	if err != nil {
		return "", fmt.Errorf("failed to create jwt: %w", err)
	}
	return token, nil
}

// ListWithScores returns the leaderboard, best score first.
func (UserStore) ListWithScores(ctx context.Context) ([]models.PlayerScore, error) {
	rows, err := DB.Query(ctx, `SELECT username, score FROM users ORDER BY score DESC, username`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var out []models.PlayerScore
	for rows.Next() {
		var ps models.PlayerScore
		if err := rows.Scan(&ps.Name, &ps.Score); err != nil {
			return nil, err
		}
		out = append(out, ps)
	}
	return out, rows.Err()
}

// AddScore adds points to a user's running total and returns the
// updated row.
func (UserStore) AddScore(ctx context.Context, username string, points int) (*models.User, error) {
	var u models.User
	q := `UPDATE users SET score = score + $1 WHERE username=$2 RETURNING id, username, score`
	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, q, points, username).Scan(&u.ID, &u.Username, &u.Score)
	})
	if err != nil {
		return nil, fmt.Errorf("add score: %w", err)
	}
	return &u, nil
}

// Delete removes a user by name.
func (UserStore) Delete(ctx context.Context, username string) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM users WHERE username=$1`, username)
		return err
	})
}

// ResetTable empties the users table and restarts the id sequence.
func (UserStore) ResetTable(ctx context.Context) error {
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `TRUNCATE TABLE users RESTART IDENTITY`)
		return err
	})
}
