// Package bracket implements single-elimination reduction: given the pairings
// of the current round and the winners picked so far, it decides whether to
// move to the next match, open a new round, or declare a champion.
//
// The package is pure. Nothing here performs I/O, and no function mutates the
// slices it receives; every Round and Outcome owns fresh backing arrays.
package bracket

import (
	"errors"
	"fmt"
)

// ─── TYPES ────────────────────────────────────────────────────────────────────

// Pairing is one match. Both slots are always populated.
type Pairing[T comparable] struct {
	Left  T `json:"left"`
	Right T `json:"right"`
}

// Has reports whether item occupies either slot.
func (p Pairing[T]) Has(item T) bool {
	return p.Left == item || p.Right == item
}

// Round is the state of one elimination stage.
//
// Winners is in decision order. A bye-advanced item from the previous round is
// already present in Winners before the first pick of this round.
type Round[T comparable] struct {
	Pairings     []Pairing[T] `json:"pairings"`
	CurrentIndex int          `json:"currentIndex"`
	Winners      []T          `json:"winners"`
}

// Current returns the pairing awaiting a pick.
func (r Round[T]) Current() (Pairing[T], error) {
	if r.CurrentIndex < 0 || r.CurrentIndex >= len(r.Pairings) {
		return Pairing[T]{}, fmt.Errorf("%w: index %d, %d pairings", ErrIndexOutOfRange, r.CurrentIndex, len(r.Pairings))
	}
	return r.Pairings[r.CurrentIndex], nil
}

// Kind tags an Outcome.
type Kind string

const (
	KindAdvance   Kind = "advance"
	KindNextRound Kind = "next_round"
	KindChampion  Kind = "champion"
)

// Outcome is the result of a single Reduce call.
//
// For KindAdvance and KindNextRound, Round holds the state the caller should
// store. For KindNextRound, Byes lists items carried into Round.Winners
// without playing. For KindChampion, Champion is set and Round is zero.
type Outcome[T comparable] struct {
	Kind     Kind     `json:"kind"`
	Round    Round[T] `json:"round"`
	Byes     []T      `json:"byes,omitempty"`
	Champion T        `json:"champion"`
}

// ─── ERRORS ──────────────────────────────────────────────────────────────────

var (
	// ErrIndexOutOfRange is returned when the round has no pairing at
	// CurrentIndex, including the empty round.
	ErrIndexOutOfRange = errors.New("bracket: current index out of range")

	// ErrNotInPairing is returned when the picked item is neither side of the
	// current pairing.
	ErrNotInPairing = errors.New("bracket: picked item is not in the current pairing")

	// ErrTooFewItems is returned by Seed when fewer than two items are given,
	// and by Open when none are.
	ErrTooFewItems = errors.New("bracket: too few items")
)

// ─── OPERATIONS ──────────────────────────────────────────────────────────────

// Seed builds round zero from a flat item list, pairing neighbours in order.
// An odd trailing item gets a bye and starts in Winners.
func Seed[T comparable](items []T) (Round[T], error) {
	if len(items) < 2 {
		return Round[T]{}, fmt.Errorf("%w: need at least 2, got %d", ErrTooFewItems, len(items))
	}
	pairings, byes := pairUp(items)
	winners := make([]T, 0, len(items)/2+1)
	winners = append(winners, byes...)
	return Round[T]{
		Pairings:     pairings,
		CurrentIndex: 0,
		Winners:      winners,
	}, nil
}

// Open starts a tournament from items. Two or more items give KindNextRound
// with round zero (Byes holds a seeded bye, if any). A single item has nothing
// to play against and is the champion straight away.
func Open[T comparable](items []T) (Outcome[T], error) {
	if len(items) == 1 {
		return Outcome[T]{Kind: KindChampion, Champion: items[0]}, nil
	}
	round, err := Seed(items)
	if err != nil {
		return Outcome[T]{}, err
	}
	var byes []T
	if len(round.Winners) > 0 {
		byes = []T{round.Winners[0]}
	}
	return Outcome[T]{Kind: KindNextRound, Round: round, Byes: byes}, nil
}

// Reduce records picked as the winner of the current pairing and returns what
// happens next.
func Reduce[T comparable](round Round[T], picked T) (Outcome[T], error) {
	current, err := round.Current()
	if err != nil {
		return Outcome[T]{}, err
	}
	if !current.Has(picked) {
		return Outcome[T]{}, ErrNotInPairing
	}

	winners := make([]T, 0, len(round.Winners)+1)
	winners = append(winners, round.Winners...)
	winners = append(winners, picked)

	if round.CurrentIndex+1 < len(round.Pairings) {
		pairings := make([]Pairing[T], len(round.Pairings))
		copy(pairings, round.Pairings)
		return Outcome[T]{
			Kind: KindAdvance,
			Round: Round[T]{
				Pairings:     pairings,
				CurrentIndex: round.CurrentIndex + 1,
				Winners:      winners,
			},
		}, nil
	}

	if len(winners) == 1 {
		return Outcome[T]{Kind: KindChampion, Champion: winners[0]}, nil
	}

	next, byes := pairUp(winners)
	carried := make([]T, len(byes))
	copy(carried, byes)
	return Outcome[T]{
		Kind: KindNextRound,
		Round: Round[T]{
			Pairings:     next,
			CurrentIndex: 0,
			Winners:      carried,
		},
		Byes: byes,
	}, nil
}

// pairUp walks items two at a time. The unpaired tail, if any, is returned
// separately and never placed in a pairing.
func pairUp[T comparable](items []T) ([]Pairing[T], []T) {
	pairings := make([]Pairing[T], 0, len(items)/2)
	for k := 0; k+1 < len(items); k += 2 {
		pairings = append(pairings, Pairing[T]{Left: items[k], Right: items[k+1]})
	}
	var byes []T
	if len(items)%2 == 1 {
		byes = []T{items[len(items)-1]}
	}
	return pairings, byes
}
