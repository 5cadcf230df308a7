package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var DB *pgxpool.Pool

func ConnectDB() {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DATABASE"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		log.Fatalf("unable to parse pgx config: %v", err)
	}

	DB, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("unable to create pgx pool: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := DB.Ping(ctx); err != nil {
		log.Fatalf("db ping error: %v", err)
	}

	log.Printf("Connected to database %s at %s", os.Getenv("PG_DATABASE"), os.Getenv("PG_HOST"))
}

// EnsureSchema creates the tables on first boot. Safe to run on every
// start.
func EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(100) NOT NULL UNIQUE,
			password TEXT NOT NULL,
			score INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id SERIAL PRIMARY KEY,
			question VARCHAR(1000) NOT NULL,
			answer VARCHAR(1000),
			section VARCHAR(1000) NOT NULL,
			question_image VARCHAR(1000),
			answer_image VARCHAR(1000)
		)`,
		`CREATE TABLE IF NOT EXISTS answers (
			id SERIAL PRIMARY KEY,
			question TEXT NOT NULL,
			username VARCHAR(255),
			answer TEXT NOT NULL,
			answered_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS gamestatus (
			id SERIAL PRIMARY KEY,
			sections TEXT,
			current_section_index INTEGER DEFAULT 0,
			current_question TEXT,
			current_answer TEXT,
			current_question_image TEXT,
			current_answer_image TEXT,
			game_started BOOLEAN DEFAULT FALSE,
			game_over BOOLEAN DEFAULT FALSE,
			timer_active BOOLEAN DEFAULT FALSE,
			show_answer BOOLEAN DEFAULT FALSE,
			spectator_display_mode VARCHAR(32) DEFAULT 'question'
		)`,
	}
	for _, stmt := range stmts {
		if _, err := DB.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
