package agent

import (
	"fmt"
	"hanabi/experiments/metrics"
	"hanabi/game"
	"hanabi/searcher"
)

// Model tracks what every player knows and searches a few moves ahead.
type Model struct {
	searcher  *searcher.Searcher
	knowledge *searcher.Knowledge
	last      metrics.SearchMetric
}

func NewModel(s *searcher.Searcher) *Model {
	return &Model{searcher: s}
}

func (m *Model) Name() string { return "Threshold" }

func (m *Model) Act(state *game.State) (game.Action, error) {
	var err error
	if m.knowledge == nil {
		m.knowledge, err = searcher.NewKnowledge(state)
	} else {
		err = m.knowledge.Update(state)
	}
	if err != nil {
		return game.Action{}, fmt.Errorf("failed to update knowledge: %w", err)
	}

	action, metric, err := m.searcher.Search(state, m.knowledge)
	m.last = metric
	return action, err
}

func (m *Model) LastSearch() metrics.SearchMetric {
	return m.last
}
