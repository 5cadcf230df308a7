// internal/handlers/user.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/vikt-quiz/vikt/internal/auth"
	"github.com/vikt-quiz/vikt/internal/database"
	"github.com/vikt-quiz/vikt/internal/live"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// CreateUserHandler registers a new user.
func CreateUserHandler(logger *logrus.Logger, users database.UserStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" || req.Password == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		user, err := users.Create(r.Context(), req.Username, req.Password)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				http.Error(w, "username already exists", http.StatusConflict)
				return
			}
			logger.Errorf("failed to create user: %v", err)
			http.Error(w, "error creating user", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

// LoginHandler verifies credentials and returns a JWT, also set as an
// HttpOnly cookie.
func LoginHandler(logger *logrus.Logger, users database.UserStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request payload", http.StatusBadRequest)
			return
		}

		token, err := users.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			logger.Warnf("failed to authenticate user %q: %v", req.Username, err)
			http.Error(w, "authentication failed", http.StatusForbidden)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     "auth_token",
			Value:    token,
			HttpOnly: true,
			Path:     "/",
			MaxAge:   auth.TokenExpireSec,
		})
		writeJSON(w, http.StatusOK, tokenResponse{Token: token})
	}
}

// ScoresHandler returns the leaderboard, best score first.
func ScoresHandler(logger *logrus.Logger, users database.UserStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		scores, err := users.ListWithScores(r.Context())
		if err != nil {
			logger.Errorf("failed to list scores: %v", err)
			http.Error(w, "error listing scores", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, scores)
	}
}

// AddScoreHandler awards points to a player. The rating cache is
// invalidated and a rating push goes out so spectators in leaderboard
// mode see the change without waiting for the TTL.
func AddScoreHandler(logger *logrus.Logger, users database.UserStore, orch *live.Orchestrator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req struct {
			Username string `json:"username"`
			Points   int    `json:"points"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		user, err := users.AddScore(r.Context(), req.Username, req.Points)
		if err != nil {
			logger.Errorf("failed to add score: %v", err)
			http.Error(w, "error adding score", http.StatusInternalServerError)
			return
		}

		orch.Cache.InvalidateRating()
		orch.Broadcast.Broadcast(r.Context(), live.KindRating, "")
		writeJSON(w, http.StatusOK, user)
	}
}

// DeleteUserHandler removes a user by name.
func DeleteUserHandler(logger *logrus.Logger, users database.UserStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		if err := users.Delete(r.Context(), p.ByName("username")); err != nil {
			logger.Errorf("failed to delete user: %v", err)
			http.Error(w, "error deleting user", http.StatusInternalServerError)
			return
		}
		writeMessage(w, "user deleted")
	}
}

// ResetUsersHandler empties the users table.
func ResetUsersHandler(logger *logrus.Logger, users database.UserStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if err := users.ResetTable(r.Context()); err != nil {
			logger.Errorf("failed to reset users: %v", err)
			http.Error(w, "error resetting users", http.StatusInternalServerError)
			return
		}
		writeMessage(w, "users table reset")
	}
}
