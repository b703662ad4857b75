package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/planner/internal/challenge"
	"github.com/dukerupert/planner/internal/model"
	"github.com/dukerupert/planner/internal/state"
)

type ChallengeHandler struct {
	planner Planner
	logger  *slog.Logger
}

func NewChallengeHandler(p Planner, logger *slog.Logger) *ChallengeHandler {
	return &ChallengeHandler{planner: p, logger: logger}
}

// List handles GET /api/challenges, the challenges the user has joined.
func (h *ChallengeHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.planner.Snapshot().Challenges)
}

// Catalog handles GET /api/challenges/catalog.
func (h *ChallengeHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, challenge.Catalog())
}

func (h *ChallengeHandler) Join(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if _, ok := dispatch(w, h.planner, h.logger, state.JoinChallenge{ID: id}, "join challenge"); !ok {
		return
	}
	// Progress for a newly joined challenge is computed right away.
	snap, ok := dispatch(w, h.planner, h.logger, state.EvaluateChallenges{}, "evaluate challenges")
	if !ok {
		return
	}
	for _, c := range snap.Challenges {
		if c.ID == id {
			writeJSON(w, http.StatusOK, c)
			return
		}
	}
	writeJSON(w, http.StatusOK, model.Challenge{})
}

func (h *ChallengeHandler) Badges(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.planner.Snapshot().Badges)
}
