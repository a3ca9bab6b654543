package api

import (
	"errors"
	"net/http"

	"github.com/nyashahama/balance-cup-backend/internal/bracket"
	"github.com/nyashahama/balance-cup-backend/internal/round"
)

// The bracket endpoints are stateless: the client holds the round and sends
// it back with every pick.

type roundState = bracket.Round[round.ChoiceItem]

// ─── POST /api/bracket/seed ───────────────────────────────────────────────────

type seedRequest struct {
	Items []round.ChoiceItem `json:"items"`
}

// handleSeedBracket pairs the generated items into the first round. The
// response has the reduce shape: a single item (the fallback round) comes
// back as an immediate champion.
func (s *Server) handleSeedBracket(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if !decode(w, r, &req) {
		return
	}

	out, err := bracket.Open(req.Items)
	if errors.Is(err, bracket.ErrTooFewItems) {
		respondErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if err != nil {
		s.respondInternalErr(w, r, err)
		return
	}
	respond(w, http.StatusOK, toReduceResponse(out))
}

// ─── POST /api/bracket/reduce ─────────────────────────────────────────────────

type reduceRequest struct {
	Pairings     []bracket.Pairing[round.ChoiceItem] `json:"pairings"`
	CurrentIndex int                                 `json:"currentIndex"`
	Winners      []round.ChoiceItem                  `json:"winners"`
	Picked       round.ChoiceItem                    `json:"picked"`
}

type reduceResponse struct {
	Kind     bracket.Kind       `json:"kind"`
	Round    *roundState        `json:"round,omitempty"`
	Byes     []round.ChoiceItem `json:"byes,omitempty"`
	Champion *round.ChoiceItem  `json:"champion,omitempty"`
}

// handleReduceBracket applies one pick to the submitted round. A pick that
// does not belong to the current pairing is a 422, not a 400: the body is
// well formed but the state transition is invalid.
func (s *Server) handleReduceBracket(w http.ResponseWriter, r *http.Request) {
	var req reduceRequest
	if !decode(w, r, &req) {
		return
	}

	out, err := bracket.Reduce(roundState{
		Pairings:     req.Pairings,
		CurrentIndex: req.CurrentIndex,
		Winners:      req.Winners,
	}, req.Picked)
	switch {
	case errors.Is(err, bracket.ErrIndexOutOfRange), errors.Is(err, bracket.ErrNotInPairing):
		respondErr(w, http.StatusUnprocessableEntity, err.Error())
		return
	case err != nil:
		s.respondInternalErr(w, r, err)
		return
	}

	respond(w, http.StatusOK, toReduceResponse(out))
}

func toReduceResponse(out bracket.Outcome[round.ChoiceItem]) reduceResponse {
	resp := reduceResponse{Kind: out.Kind, Byes: out.Byes}
	if out.Kind == bracket.KindChampion {
		resp.Champion = &out.Champion
	} else {
		resp.Round = &out.Round
	}
	return resp
}
