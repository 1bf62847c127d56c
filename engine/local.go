package engine

import (
	"fmt"
	"hanabi/experiments/metrics"
	"hanabi/game"
	"hanabi/searcher/agent"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var _ Engine = (*LocalEngine)(nil)

type Option func(e *LocalEngine)

// LocalEngine plays one game between agents in the same process. Each agent
// only ever sees the state with its own hand hidden.
type LocalEngine struct {
	state  *game.State
	deck   *game.Deck
	agents []agent.Agent
	logger zerolog.Logger
}

func WithLogger(logger zerolog.Logger) Option {
	return func(e *LocalEngine) {
		e.logger = logger
	}
}

// NewLocalEngine deals a game from deck with one seat per agent, named after the agent.
func NewLocalEngine(agents []agent.Agent, deck *game.Deck, options ...Option) (*LocalEngine, error) {
	if len(agents) < game.MinPlayers || len(agents) > game.MaxPlayers {
		return nil, fmt.Errorf("%w: %d agents, need %d to %d", game.ErrInvalidSetup, len(agents), game.MinPlayers, game.MaxPlayers)
	}

	names := make([]string, len(agents))
	for i, a := range agents {
		names[i] = a.Name()
	}
	state, err := game.NewState(names, deck)
	if err != nil {
		return nil, err
	}

	e := &LocalEngine{
		state:  state,
		deck:   deck,
		agents: agents,
		logger: log.Logger,
	}
	for _, option := range options {
		option(e)
	}
	return e, nil
}

// State is the latest state of the game.
func (e *LocalEngine) State() *game.State {
	return e.state
}

// Run executes the game loop until the game is over or a move fails.
func (e *LocalEngine) Run() (int, metrics.GameMetric, []metrics.MoveMetric, error) {
	gameMetric := metrics.GameMetric{
		Players:   e.state.NumPlayers(),
		Agents:    e.state.Players(),
		StartTime: time.Now(),
	}
	moveMetrics := []metrics.MoveMetric{}

	e.logger.Info().Msgf("starting a game between %v", gameMetric.Agents)

	var err error
	for !e.state.GameOver() {
		player := e.state.NextPlayer()
		var moveMetric metrics.MoveMetric
		moveMetric, err = e.step(player)
		if err != nil {
			err = fmt.Errorf("move %d by player %d (%s): %w", e.state.Order()+1, player, e.agents[player].Name(), err)
			break
		}
		moveMetrics = append(moveMetrics, moveMetric)
	}

	score := e.state.Score()
	if err != nil {
		score = Aborted
		gameMetric.Aborted = true
		e.logger.Error().Err(err).Msg("game aborted")
	} else {
		e.logger.Info().Msgf("game over after %d moves with score %d. %s", e.state.Order(), score, Critique(score))
	}

	gameMetric.Score = score
	gameMetric.EndTime = time.Now()
	gameMetric.Duration = gameMetric.EndTime.Sub(gameMetric.StartTime)
	gameMetric.Moves = e.state.Order()
	return score, gameMetric, moveMetrics, err
}

func (e *LocalEngine) step(player int) (metrics.MoveMetric, error) {
	local, err := e.state.HideHand(player)
	if err != nil {
		return metrics.MoveMetric{}, err
	}

	start := time.Now()
	action, err := e.agents[player].Act(local)
	if err != nil {
		return metrics.MoveMetric{}, err
	}
	elapsed := time.Since(start)

	next, err := e.state.Next(action, e.deck)
	if err != nil {
		return metrics.MoveMetric{}, err
	}
	e.state = next

	moveMetric := metrics.MoveMetric{
		Step:   next.Order(),
		Player: player,
		Agent:  e.agents[player].Name(),
		Action: action.Type().String(),
		Hints:  next.HintTokens(),
		Fuses:  next.FuseTokens(),
	}
	if reporter, ok := e.agents[player].(agent.Reporter); ok {
		moveMetric.SearchMetric = reporter.LastSearch()
	} else {
		moveMetric.Duration = elapsed
	}

	e.logger.Debug().
		Int("order", next.Order()).
		Int("hints", next.HintTokens()).
		Int("fuses", next.FuseTokens()).
		Msg(action.String())
	return moveMetric, nil
}
