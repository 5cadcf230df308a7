// internal/handlers/question.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/vikt-quiz/vikt/internal/database"
	"github.com/vikt-quiz/vikt/internal/live"
	"github.com/vikt-quiz/vikt/internal/models"
)

// AddQuestionsHandler bulk-inserts authored questions from a JSON list.
func AddQuestionsHandler(logger *logrus.Logger, questions database.QuestionStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var records []models.QuestionRecord
		if err := json.NewDecoder(r.Body).Decode(&records); err != nil || len(records) == 0 {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if err := questions.AddBatch(r.Context(), records); err != nil {
			logger.Errorf("failed to add questions: %v", err)
			http.Error(w, "error adding questions", http.StatusInternalServerError)
			return
		}
		writeMessage(w, "questions added")
	}
}

// ListQuestionsHandler returns every stored question.
func ListQuestionsHandler(logger *logrus.Logger, questions database.QuestionStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		recs, err := questions.All(r.Context())
		if err != nil {
			logger.Errorf("failed to list questions: %v", err)
			http.Error(w, "error listing questions", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// QuestionsBySectionHandler returns the questions of one section.
func QuestionsBySectionHandler(logger *logrus.Logger, questions database.QuestionStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		recs, err := questions.BySection(r.Context(), p.ByName("section"))
		if err != nil {
			logger.Errorf("failed to list section questions: %v", err)
			http.Error(w, "error listing questions", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// QuestionInfoHandler looks up one question by its exact text
// (?question=...), for the host's answer-judging view.
func QuestionInfoHandler(logger *logrus.Logger, questions database.QuestionStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		text := r.URL.Query().Get("question")
		if text == "" {
			http.Error(w, "missing question parameter", http.StatusBadRequest)
			return
		}
		rec, err := questions.ByText(r.Context(), text)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				http.Error(w, "question not found", http.StatusNotFound)
				return
			}
			logger.Errorf("failed to look up question: %v", err)
			http.Error(w, "error looking up question", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// DeleteQuestionHandler removes a question by its exact text.
func DeleteQuestionHandler(logger *logrus.Logger, questions database.QuestionStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req struct {
			Question string `json:"question"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		if err := questions.Delete(r.Context(), req.Question); err != nil {
			logger.Errorf("failed to delete question: %v", err)
			http.Error(w, "error deleting question", http.StatusInternalServerError)
			return
		}
		writeMessage(w, "question deleted")
	}
}

// ResetQuestionsHandler empties the questions table.
func ResetQuestionsHandler(logger *logrus.Logger, questions database.QuestionStore) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if err := questions.ResetTable(r.Context()); err != nil {
			logger.Errorf("failed to reset questions: %v", err)
			http.Error(w, "error resetting questions", http.StatusInternalServerError)
			return
		}
		writeMessage(w, "question table reset")
	}
}

// LoadSectionPoolHandler refills one section's Redis pool from durable
// storage.
func LoadSectionPoolHandler(logger *logrus.Logger, orch *live.Orchestrator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
		section := p.ByName("section")
		logger.Debugf("admin command: reload pool for section %q", section)
		if err := orch.Progression.ReloadSectionPool(r.Context(), section); err != nil {
			writeCommandError(w, logger, err)
			return
		}
		writeMessage(w, "section pool loaded")
	}
}

// FlushPoolsHandler drops every section pool.
func FlushPoolsHandler(logger *logrus.Logger, orch *live.Orchestrator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		logger.Debug("admin command: flush pools")
		if err := orch.Progression.FlushPools(r.Context()); err != nil {
			writeCommandError(w, logger, err)
			return
		}
		writeMessage(w, "pools flushed")
	}
}
