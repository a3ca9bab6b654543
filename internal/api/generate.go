package api

import (
	"errors"
	"net/http"

	"github.com/nyashahama/balance-cup-backend/internal/round"
)

// ─── POST /api/generate ───────────────────────────────────────────────────────

type generateRequest struct {
	Topic   string   `json:"topic"`
	Count   int      `json:"count"`
	Exclude []string `json:"exclude"`
}

// handleGenerate returns the items for a new round. Upstream failures never
// surface here: the generator degrades to placeholders or the fallback item,
// so the only non-200 outcome is a bad request.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !decode(w, r, &req) {
		return
	}

	items, err := s.generator.Generate(r.Context(), round.Request{
		Topic:   req.Topic,
		Count:   req.Count,
		Exclude: req.Exclude,
	})
	switch {
	case errors.Is(err, round.ErrInvalidRequest):
		respondErr(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.respondInternalErr(w, r, err)
		return
	}

	s.logger.Debug("generate: served", "topic", req.Topic, "requested", req.Count, "items", len(items), logField(r))
	respond(w, http.StatusOK, items)
}
