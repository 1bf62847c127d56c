package agent

import (
	"errors"
	"hanabi/experiments/metrics"
	"hanabi/game"
)

var ErrNoAction = errors.New("no action available")

type Agent interface {
	// Name identifies the strategy in logs and scoreboards
	Name() string
	// Act returns the move of the player whose hand is hidden in state. An
	// agent plays a single seat of a single game.
	Act(state *game.State) (game.Action, error)
}

// Reporter is implemented by agents that search before acting.
type Reporter interface {
	// LastSearch returns the metrics of the latest decision
	LastSearch() metrics.SearchMetric
}

func must(a game.Action, err error) game.Action {
	if err != nil {
		panic(err)
	}
	return a
}
