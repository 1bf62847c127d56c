package metrics

import (
	"sync/atomic"
	"time"
)

type SearchMetric struct {
	Depth    int // Plies searched below the decision
	Duration time.Duration
	Nodes    int
	Leaves   int
}

type MoveMetric struct {
	Step   int
	Player int // Player index
	Agent  string
	Action string
	Hints  int // Hint tokens after the move
	Fuses  int // Fuse tokens after the move
	SearchMetric
}

type GameMetric struct {
	Players   int
	Agents    []string // Agent name per seat
	Score     int
	Aborted   bool
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Moves     int
}

type Collector interface {
	Start(depth int)
	AddNode()
	AddLeaf()
	Complete() SearchMetric
}

type collector struct {
	depth     int
	startTime time.Time
	nodes     atomic.Int32
	leaves    atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

// Start resets the counters for a new decision.
func (m *collector) Start(depth int) {
	m.startTime = time.Now()
	m.depth = depth
	m.nodes.Store(0)
	m.leaves.Store(0)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) AddLeaf() {
	m.leaves.Add(1)
}

func (m *collector) Complete() SearchMetric {
	return SearchMetric{
		Depth:    m.depth,
		Duration: time.Since(m.startTime),
		Nodes:    int(m.nodes.Load()),
		Leaves:   int(m.leaves.Load()),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(depth int)        {}
func (m *dummyCollector) AddNode()               {}
func (m *dummyCollector) AddLeaf()               {}
func (m *dummyCollector) Complete() SearchMetric { return SearchMetric{} }
