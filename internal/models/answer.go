package models

import "time"

// Answer is one submitted player answer, logged for host review.
type Answer struct {
	ID         int       `json:"id"`
	Question   string    `json:"question"`
	PlayerName string    `json:"username"`
	Answer     string    `json:"answer"`
	AnsweredAt time.Time `json:"answered_at"`
}
