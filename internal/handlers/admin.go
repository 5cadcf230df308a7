// internal/handlers/admin.go
//
// Admin command surface. Every command follows the same shape: mutate
// through the progression engine, which invalidates the cache and
// broadcasts; report success or a rejected command to the caller.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/vikt-quiz/vikt/internal/database"
	"github.com/vikt-quiz/vikt/internal/live"
)

func StartGameHandler(logger *logrus.Logger, orch *live.Orchestrator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		logger.Debug("admin command: start")
		if err := orch.Progression.Start(r.Context()); err != nil {
			writeCommandError(w, logger, err)
			return
		}
		writeMessage(w, "game started")
	}
}

func StopGameHandler(logger *logrus.Logger, orch *live.Orchestrator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		logger.Debug("admin command: stop")
		if err := orch.Progression.Stop(r.Context()); err != nil {
			writeCommandError(w, logger, err)
			return
		}
		writeMessage(w, "game stopped")
	}
}

func AdvanceHandler(logger *logrus.Logger, orch *live.Orchestrator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		logger.Debug("admin command: advance")
		if err := orch.Progression.Advance(r.Context()); err != nil {
			writeCommandError(w, logger, err)
			return
		}
		writeMessage(w, "advanced")
	}
}

func NextSectionHandler(logger *logrus.Logger, orch *live.Orchestrator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		logger.Debug("admin command: next-section")
		if err := orch.Progression.JumpToNextSection(r.Context()); err != nil {
			writeCommandError(w, logger, err)
			return
		}
		writeMessage(w, "section advanced")
	}
}

func DisplayModeHandler(logger *logrus.Logger, orch *live.Orchestrator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req struct {
			Mode string `json:"mode"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		logger.Debugf("admin command: display-mode %s", req.Mode)
		if err := orch.Progression.SwitchDisplayMode(r.Context(), req.Mode); err != nil {
			writeCommandError(w, logger, err)
			return
		}
		writeMessage(w, "display mode switched")
	}
}

func TimerHandler(logger *logrus.Logger, orch *live.Orchestrator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req struct {
			Active bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		logger.Debugf("admin command: timer %v", req.Active)
		if err := orch.Progression.SetTimer(r.Context(), req.Active); err != nil {
			writeCommandError(w, logger, err)
			return
		}
		writeMessage(w, "timer updated")
	}
}

func RevealAnswerHandler(logger *logrus.Logger, orch *live.Orchestrator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req struct {
			Show bool `json:"show"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}
		logger.Debugf("admin command: reveal %v", req.Show)
		if err := orch.Progression.SetShowAnswer(r.Context(), req.Show); err != nil {
			writeCommandError(w, logger, err)
			return
		}
		writeMessage(w, "answer visibility updated")
	}
}

// SetSectionsHandler replaces the round order. Rejected while a game is
// running; the order is locked in at start.
func SetSectionsHandler(logger *logrus.Logger, store database.GameStateStore, orch *live.Orchestrator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		var req struct {
			Sections []string `json:"sections"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Sections) == 0 {
			http.Error(w, "invalid payload", http.StatusBadRequest)
			return
		}

		state, err := orch.Status(r.Context())
		if err != nil {
			writeCommandError(w, logger, err)
			return
		}
		if state.GameStarted {
			writeCommandError(w, logger, live.ErrAlreadyStarted)
			return
		}

		logger.Debugf("admin command: set sections %v", req.Sections)
		if err := store.SetSections(r.Context(), req.Sections); err != nil {
			writeCommandError(w, logger, err)
			return
		}
		orch.Cache.InvalidateAll()
		writeMessage(w, "sections updated")
	}
}

// GameStatusHandler returns a fresh read of the full game state plus
// live connection counts, for the host dashboard.
func GameStatusHandler(logger *logrus.Logger, orch *live.Orchestrator) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		state, err := orch.Status(r.Context())
		if err != nil {
			writeCommandError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"state":      state,
			"players":    orch.Registry.PlayerCount(),
			"spectators": orch.Registry.SpectatorCount(),
		})
	}
}
