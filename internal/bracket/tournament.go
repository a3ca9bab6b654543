package bracket

import "errors"

// ErrFinished is returned by Tournament.Pick after a champion was decided.
var ErrFinished = errors.New("bracket: tournament already has a champion")

// Side selects one slot of the current pairing.
type Side int

const (
	Left Side = iota
	Right
)

// Tournament is a stateful convenience over Seed and Reduce for callers that
// hold a whole bracket in memory (the CLI, tests). It is not safe for
// concurrent use.
type Tournament[T comparable] struct {
	round       Round[T]
	roundNumber int
	champion    T
	finished    bool
}

// NewTournament opens a tournament from items. A single item is finished
// before any pick.
func NewTournament[T comparable](items []T) (*Tournament[T], error) {
	out, err := Open(items)
	if err != nil {
		return nil, err
	}
	if out.Kind == KindChampion {
		return &Tournament[T]{champion: out.Champion, finished: true}, nil
	}
	return &Tournament[T]{round: out.Round}, nil
}

// Round returns the live round state. Zero once finished.
func (t *Tournament[T]) Round() Round[T] { return t.round }

// RoundNumber counts completed rounds, starting at zero.
func (t *Tournament[T]) RoundNumber() int { return t.roundNumber }

// Champion returns the winner and whether the tournament is over.
func (t *Tournament[T]) Champion() (T, bool) { return t.champion, t.finished }

// Current returns the pairing awaiting a pick.
func (t *Tournament[T]) Current() (Pairing[T], error) {
	if t.finished {
		return Pairing[T]{}, ErrFinished
	}
	return t.round.Current()
}

// Pick resolves the current pairing in favour of side.
func (t *Tournament[T]) Pick(side Side) (Outcome[T], error) {
	current, err := t.Current()
	if err != nil {
		return Outcome[T]{}, err
	}
	winner := current.Left
	if side == Right {
		winner = current.Right
	}
	return t.PickItem(winner)
}

// PickItem resolves the current pairing in favour of item.
func (t *Tournament[T]) PickItem(item T) (Outcome[T], error) {
	if t.finished {
		return Outcome[T]{}, ErrFinished
	}
	out, err := Reduce(t.round, item)
	if err != nil {
		return Outcome[T]{}, err
	}
	switch out.Kind {
	case KindChampion:
		t.champion = out.Champion
		t.finished = true
		t.round = Round[T]{}
	case KindNextRound:
		t.roundNumber++
		t.round = out.Round
	default:
		t.round = out.Round
	}
	return out, nil
}
