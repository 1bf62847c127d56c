package experiments

import (
	"context"
	"fmt"
	"hanabi/engine"
	"hanabi/experiments/metrics"
	"hanabi/game"
	"hanabi/searcher"
	"hanabi/searcher/agent"
	"hanabi/utils"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

const (
	Individual = "individual" // every seat is the same agent
	Mixed      = "mixed"      // seats drawn from all agents
)

// Config describes a tournament. Games counts per agent: each agent plays Games
// individual games, and leads Games mixed games at every player count.
type Config struct {
	Agents            []string // registry ids
	Players           []int    // table sizes of the mixed games
	IndividualPlayers int
	Games             int
	Concurrency       int
	Seed              uint64
	Weights           searcher.Weights
}

type Result struct {
	Setup metrics.Setup
	Games []metrics.GameRecord
	Moves []metrics.MoveRecord
	Board *Scoreboard
}

type match struct {
	kind string
	ids  []string
	seed uint64
}

type outcome struct {
	record metrics.GameRecord
	moves  []metrics.MoveMetric
}

func (c Config) validate() error {
	if len(c.Agents) == 0 {
		return fmt.Errorf("%w: no agents", game.ErrInvalidSetup)
	}
	known := agent.Names()
	for _, id := range c.Agents {
		if utils.FindIndex(known, id) < 0 {
			return fmt.Errorf("%w %q", agent.ErrUnknownAgent, id)
		}
	}
	for _, n := range append([]int{c.IndividualPlayers}, c.Players...) {
		if n < game.MinPlayers || n > game.MaxPlayers {
			return fmt.Errorf("%w: %d players", game.ErrInvalidSetup, n)
		}
	}
	if c.Games < 0 || c.Concurrency < 1 {
		return fmt.Errorf("%w: %d games with concurrency %d", game.ErrInvalidSetup, c.Games, c.Concurrency)
	}
	return nil
}

// schedule draws every game's line-up and seed up front so the tournament is
// reproducible whatever order the games finish in.
func (c Config) schedule() []match {
	rng := rand.New(rand.NewSource(c.Seed))
	matches := []match{}

	for _, id := range c.Agents {
		for i := 0; i < c.Games; i++ {
			ids := make([]string, c.IndividualPlayers)
			for p := range ids {
				ids[p] = id
			}
			matches = append(matches, match{kind: Individual, ids: ids, seed: rng.Uint64()})
		}
	}

	for _, n := range c.Players {
		for i := 0; i < c.Games*len(c.Agents); i++ {
			ids := make([]string, n)
			ids[0] = c.Agents[i%len(c.Agents)]
			for p := 1; p < n; p++ {
				ids[p] = c.Agents[rng.Intn(len(c.Agents))]
			}
			matches = append(matches, match{kind: Mixed, ids: ids, seed: rng.Uint64()})
		}
	}
	return matches
}

// Run plays the tournament with at most Concurrency games at once. Aborted
// games are recorded and the tournament carries on. Cancelling ctx stops
// scheduling new games.
func Run(ctx context.Context, config Config, logger zerolog.Logger) (*Result, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	matches := config.schedule()
	outcomes := make([]outcome, len(matches))

	logger.Info().Msgf("starting tournament of %d games between %v...", len(matches), config.Agents)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Concurrency)
	for i, m := range matches {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			o, err := play(m, config.Weights, logger)
			if err != nil {
				return err
			}
			outcomes[i] = o
			logger.Info().Msgf("completed game %d of %d (%s) with score %d", i+1, len(matches), m.kind, o.record.Score)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	end := time.Now()
	result := &Result{
		Setup: metrics.Setup{
			Agents:    config.Agents,
			Players:   config.Players,
			NumGames:  config.Games,
			Seed:      config.Seed,
			StartTime: start,
			EndTime:   end,
			Duration:  end.Sub(start),
		},
		Games: make([]metrics.GameRecord, 0, len(outcomes)),
		Moves: []metrics.MoveRecord{},
		Board: NewScoreboard(config.Agents, config.Players),
	}
	for i, o := range outcomes {
		result.Games = append(result.Games, o.record)
		for _, mm := range o.moves {
			result.Moves = append(result.Moves, metrics.MoveRecord{Game: o.record.ID, MoveMetric: mm})
		}
		result.Board.Add(matches[i].kind, matches[i].ids, o.record.Score)
	}

	logger.Info().Msgf("completed tournament in %s", result.Setup.Duration)
	return result, nil
}

// play runs a single game. Only setup failures are returned; a game stopped by
// an illegal move comes back as an aborted record.
func play(m match, weights searcher.Weights, logger zerolog.Logger) (outcome, error) {
	id := uuid.New()
	agents := make([]agent.Agent, len(m.ids))
	for p, agentID := range m.ids {
		a, err := agent.New(agentID, agent.Settings{
			Weights: weights,
			Rand:    rand.New(rand.NewSource(m.seed + uint64(p) + 1)),
			Metrics: true,
		})
		if err != nil {
			return outcome{}, err
		}
		agents[p] = a
	}

	deck := game.NewDeck(rand.New(rand.NewSource(m.seed)))
	e, err := engine.NewLocalEngine(agents, deck, engine.WithLogger(logger.With().Str("game", id.String()).Logger()))
	if err != nil {
		return outcome{}, err
	}

	// The engine has already logged the error of an aborted game.
	_, gameMetric, moveMetrics, _ := e.Run()
	return outcome{
		record: metrics.GameRecord{ID: id, Kind: m.kind, GameMetric: gameMetric},
		moves:  moveMetrics,
	}, nil
}

// Write stores the setup and the game and move records.
func (r *Result) Write(writer *metrics.Writer) error {
	if err := writer.WriteSetup(r.Setup); err != nil {
		return fmt.Errorf("failed to store setup: %w", err)
	}
	if err := writer.WriteGameRecords(r.Games); err != nil {
		return fmt.Errorf("failed to write game records: %w", err)
	}
	if err := writer.WriteMoveRecords(r.Moves); err != nil {
		return fmt.Errorf("failed to write move records: %w", err)
	}
	return nil
}
