// internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vikt-quiz/vikt/internal/live"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}

// writeCommandError maps a failed admin command to an HTTP status:
// state conflicts are the caller's fault, everything else is ours.
func writeCommandError(w http.ResponseWriter, logger *logrus.Logger, err error) {
	switch {
	case errors.Is(err, live.ErrNotStarted),
		errors.Is(err, live.ErrAlreadyStarted),
		errors.Is(err, live.ErrGameOver):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, live.ErrBadDisplayMode):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		logger.Errorf("admin command failed: %v", err)
		http.Error(w, "command failed", http.StatusInternalServerError)
	}
}
