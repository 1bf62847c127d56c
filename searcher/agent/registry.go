package agent

import (
	"errors"
	"fmt"
	"hanabi/searcher"
	"sort"

	"golang.org/x/exp/rand"
)

var ErrUnknownAgent = errors.New("unknown agent")

// Settings configure a new agent. Rand must not be shared with another agent
// that may run concurrently.
type Settings struct {
	Weights searcher.Weights
	Rand    *rand.Rand
	Metrics bool
}

type Factory func(settings Settings) Agent

var registry = map[string]Factory{
	"basic": func(settings Settings) Agent {
		return NewBasic(settings.Rand)
	},
	"model": func(settings Settings) Agent {
		options := []searcher.Option{
			searcher.WithWeights(settings.Weights),
			searcher.WithRand(settings.Rand),
		}
		if settings.Metrics {
			options = append(options, searcher.WithMetrics())
		}
		return NewModel(searcher.NewSearcher(options...))
	},
}

// New builds the agent registered under id.
func New(id string, settings Settings) (Agent, error) {
	factory, ok := registry[id]
	if !ok {
		return nil, fmt.Errorf("%w %q, known agents are %v", ErrUnknownAgent, id, Names())
	}
	if settings.Rand == nil {
		settings.Rand = rand.New(rand.NewSource(rand.Uint64()))
	}
	return factory(settings), nil
}

// Names lists the registered agent ids in order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
