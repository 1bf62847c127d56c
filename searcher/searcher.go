package searcher

import (
	"fmt"
	"hanabi/experiments/metrics"
	"hanabi/game"
	"time"

	"golang.org/x/exp/rand"
)

// Weights tune the leaf evaluation and the pruning of a Searcher.
type Weights struct {
	Hint      float64 `json:"hint"`      // Value of each hint token
	Fuse      float64 `json:"fuse"`      // Value of each fuse token
	Knowledge float64 `json:"knowledge"` // Reward for a visible playable card its holder believes playable
	Play      float64 `json:"play"`      // Reward per needed card still live
	Caution   float64 `json:"caution"`   // Raises the confidence needed to play as fuses burn
	Front     float64 `json:"front"`     // Share of a node's own evaluation against its best child
}

func DefaultWeights() Weights {
	return Weights{
		Hint:      0.3,
		Fuse:      1.0,
		Knowledge: 0.5,
		Play:      1.0,
		Caution:   0.3,
		Front:     0.7,
	}
}

const (
	playConfidence    = 0.95
	discardConfidence = 0.5
	fusePenalty       = -100.0
)

type Option func(s *Searcher)

// Searcher picks actions by a bounded lookahead over the actions rational
// players would consider, resolving the searching player's own hidden cards
// by sampling from their beliefs.
type Searcher struct {
	weights Weights
	rng     *rand.Rand
	metrics metrics.Collector
}

func WithWeights(weights Weights) Option {
	return func(s *Searcher) {
		s.weights = weights
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(s *Searcher) {
		if rng != nil {
			s.rng = rng
		}
	}
}

func WithMetrics() Option {
	return func(s *Searcher) {
		s.metrics = metrics.NewCollector()
	}
}

func NewSearcher(options ...Option) *Searcher {
	s := &Searcher{ // Default values
		weights: DefaultWeights(),
		rng:     rand.New(rand.NewSource(uint64(time.Now().UnixNano()))),
		metrics: metrics.NewDummyCollector(),
	}
	for _, option := range options {
		option(s)
	}
	if s.weights.Front < 0 || s.weights.Front > 1 {
		panic("front weighting must be within [0, 1]")
	}
	return s
}

func (s *Searcher) Weights() Weights { return s.weights }

// Search returns the action of local's observer with the best evaluation.
// knowledge must belong to the observer and be up to date with local.
func (s *Searcher) Search(local *game.State, knowledge *Knowledge) (game.Action, metrics.SearchMetric, error) {
	index := local.Observer()
	switch {
	case index == game.NoPlayer:
		return game.Action{}, metrics.SearchMetric{}, fmt.Errorf("%w: search needs a local state", game.ErrIllegalAction)
	case local.NextPlayer() != index:
		return game.Action{}, metrics.SearchMetric{}, fmt.Errorf("%w: player %d is not to act", game.ErrIllegalAction, index)
	case knowledge.Index() != index || knowledge.Order() != local.Order():
		return game.Action{}, metrics.SearchMetric{}, fmt.Errorf("%w: knowledge of player %d at order %d does not match the state",
			game.ErrIllegalAction, knowledge.Index(), knowledge.Order())
	}

	sim := newSim(local, knowledge, s.weights, s.rng, s.metrics)
	depth := local.NumPlayers()
	if sim.remaining != -1 {
		depth = sim.remaining
	}

	s.metrics.Start(depth)
	action, err := sim.decide(local, depth)
	return action, s.metrics.Complete(), err
}
