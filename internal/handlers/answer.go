// internal/handlers/answer.go
package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/vikt-quiz/vikt/internal/database"
)

// ListAnswersHandler returns every logged answer for host review.
func ListAnswersHandler(logger *logrus.Logger, answers database.AnswerLog) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		list, err := answers.List(r.Context())
		if err != nil {
			logger.Errorf("failed to list answers: %v", err)
			http.Error(w, "error listing answers", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ResetAnswersHandler empties the answer log.
func ResetAnswersHandler(logger *logrus.Logger, answers database.AnswerLog) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if err := answers.ResetTable(r.Context()); err != nil {
			logger.Errorf("failed to reset answers: %v", err)
			http.Error(w, "error resetting answers", http.StatusInternalServerError)
			return
		}
		writeMessage(w, "answers table reset")
	}
}

// PingHandler is a trivial liveness probe.
func PingHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	writeMessage(w, "Welcome to Vikt")
}
