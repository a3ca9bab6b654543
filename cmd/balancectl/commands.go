package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"

	"github.com/nyashahama/balance-cup-backend/internal/bracket"
	"github.com/nyashahama/balance-cup-backend/internal/round"
)

func newLogger(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(os.Stderr, log.Options{Level: lvl})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// ─── topics ───────────────────────────────────────────────────────────────────

type TopicsCmd struct{}

func (c *TopicsCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()

	topics, err := newClient(cli.Server).topics(ctx)
	if err != nil {
		return err
	}
	for _, t := range topics {
		if t.Premium {
			fmt.Printf("%s (premium)\n", t.Name)
		} else {
			fmt.Println(t.Name)
		}
	}
	return nil
}

// ─── generate ─────────────────────────────────────────────────────────────────

type GenerateCmd struct {
	Topic   string   `arg:"" help:"Topic to generate questions for"`
	Count   int      `short:"n" default:"8" help:"Number of questions"`
	Exclude []string `short:"x" help:"Option texts to steer away from"`
}

func (c *GenerateCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()
	logger := newLogger(cli.LogLevel)

	items, err := newClient(cli.Server).generate(ctx, round.Request{Topic: c.Topic, Count: c.Count, Exclude: c.Exclude})
	if err != nil {
		return err
	}
	if len(items) < c.Count {
		logger.Warn("short round", "requested", c.Count, "got", len(items))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// ─── play ─────────────────────────────────────────────────────────────────────

type PlayCmd struct {
	Topic    string `arg:"" help:"Topic to play"`
	Count    int    `short:"n" default:"8" help:"Number of questions"`
	Strategy string `default:"random" enum:"left,right,random" help:"How to pick each pairing: left, right, random"`
	Seed     uint64 `default:"0" help:"RNG seed for the random strategy (0 for random)"`
}

func (c *PlayCmd) Run(cli *CLI) error {
	ctx, cancel := signalContext()
	defer cancel()
	logger := newLogger(cli.LogLevel)

	items, err := newClient(cli.Server).generate(ctx, round.Request{Topic: c.Topic, Count: c.Count})
	if err != nil {
		return err
	}
	seed := c.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	champion, picks, err := play(items, c.pick(rng), func(roundNo int, p bracket.Pairing[round.ChoiceItem], winner round.ChoiceItem) {
		logger.Debug("pick", "round", roundNo, "left", label(p.Left), "right", label(p.Right), "winner", label(winner))
	})
	if err != nil {
		return err
	}

	logger.Info("champion decided", "picks", picks, "seed", seed)
	fmt.Printf("Champion: %s  vs  %s\n", champion.OptionText1, champion.OptionText2)
	return nil
}

func (c *PlayCmd) pick(rng *rand.Rand) func() bracket.Side {
	switch c.Strategy {
	case "left":
		return func() bracket.Side { return bracket.Left }
	case "right":
		return func() bracket.Side { return bracket.Right }
	default:
		return func() bracket.Side {
			if rng.IntN(2) == 0 {
				return bracket.Left
			}
			return bracket.Right
		}
	}
}

// play runs a tournament to completion and returns the champion and the
// number of picks it took.
func play(
	items []round.ChoiceItem,
	choose func() bracket.Side,
	onPick func(roundNo int, p bracket.Pairing[round.ChoiceItem], winner round.ChoiceItem),
) (round.ChoiceItem, int, error) {
	t, err := bracket.NewTournament(items)
	if err != nil {
		return round.ChoiceItem{}, 0, err
	}

	for picks := 0; ; picks++ {
		if champ, ok := t.Champion(); ok {
			return champ, picks, nil
		}
		p, err := t.Current()
		if err != nil {
			return round.ChoiceItem{}, picks, err
		}
		side := choose()
		winner := p.Left
		if side == bracket.Right {
			winner = p.Right
		}
		roundNo := t.RoundNumber()
		if _, err := t.Pick(side); err != nil {
			return round.ChoiceItem{}, picks, err
		}
		if onPick != nil {
			onPick(roundNo, p, winner)
		}
	}
}

func label(it round.ChoiceItem) string {
	return it.OptionText1 + " / " + it.OptionText2
}
