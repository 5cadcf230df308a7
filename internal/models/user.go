package models

// User is a registered participant. Password holds the encoded
// argon2id hash, never plaintext.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password,omitempty"`
	Score    int    `json:"score"`
}

// PlayerScore is one leaderboard entry.
type PlayerScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}
