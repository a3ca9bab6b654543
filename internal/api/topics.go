package api

import (
	"net/http"

	"github.com/nyashahama/balance-cup-backend/internal/config"
)

// ─── GET /api/topics ──────────────────────────────────────────────────────────

func (s *Server) handleListTopics(w http.ResponseWriter, r *http.Request) {
	topics := s.cfg.Topics
	if topics == nil {
		topics = []config.Topic{}
	}
	respond(w, http.StatusOK, topics)
}
