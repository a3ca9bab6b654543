package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nyashahama/balance-cup-backend/internal/bracket"
	"github.com/nyashahama/balance-cup-backend/internal/round"
)

func items(n int) []round.ChoiceItem {
	out := make([]round.ChoiceItem, n)
	for i := range out {
		out[i] = round.ChoiceItem{ID: fmt.Sprint(i), OptionText1: fmt.Sprintf("L%d", i), OptionText2: fmt.Sprintf("R%d", i)}
	}
	return out
}

func TestPlay_TakesNMinusOnePicks(t *testing.T) {
	for n := 2; n <= 9; n++ {
		champ, picks, err := play(items(n), func() bracket.Side { return bracket.Left }, nil)
		require.NoError(t, err)
		assert.Equal(t, n-1, picks, "n=%d", n)
		assert.NotEmpty(t, champ.ID)
	}
}

func TestPlay_AlwaysLeftKeepsFirstItem(t *testing.T) {
	var seen int
	champ, _, err := play(items(8), func() bracket.Side { return bracket.Left }, func(int, bracket.Pairing[round.ChoiceItem], round.ChoiceItem) {
		seen++
	})
	require.NoError(t, err)
	assert.Equal(t, "0", champ.ID)
	assert.Equal(t, 7, seen)
}

func TestPlay_TooFewItems(t *testing.T) {
	_, _, err := play(nil, func() bracket.Side { return bracket.Left }, nil)
	assert.ErrorIs(t, err, bracket.ErrTooFewItems)
}

func TestPlay_SingleItemWinsWithoutPicks(t *testing.T) {
	champ, picks, err := play(round.FallbackItems("food"), func() bracket.Side {
		t.Fatal("no pick expected")
		return bracket.Left
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, picks)
	assert.Equal(t, round.FallbackID, champ.ID)
}

func TestClient_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var req round.Request
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			assert.Equal(t, "food", req.Topic)
			assert.Equal(t, 4, req.Count)
		}
		_ = json.NewEncoder(w).Encode(items(4))
	}))
	defer srv.Close()

	got, err := newClient(srv.URL+"/").generate(context.Background(), round.Request{Topic: "food", Count: 4})
	require.NoError(t, err)
	assert.Equal(t, items(4), got)
}

func TestClient_ErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"round: invalid request: count must be at least 2, got 1"}`)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).generate(context.Background(), round.Request{Topic: "food", Count: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "count must be at least 2")
}
