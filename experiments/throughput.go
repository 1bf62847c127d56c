package experiments

import (
	"fmt"
	"hanabi/experiments/metrics"
	"hanabi/utils"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Throughput summarises the searches of one agent over a set of moves.
type Throughput struct {
	Agent          string
	Moves          int
	Depth          float64 // mean
	Nodes          float64 // mean per move
	NodesPerSecond float64
}

// MeasureThroughput groups the moves that ran a search by agent name. Moves
// of agents that do not search are left out.
func MeasureThroughput(moves []metrics.MoveRecord) []Throughput {
	depths := map[string][]int{}
	nodes := map[string][]int{}
	rates := map[string][]float64{}
	for _, move := range moves {
		if move.Depth == 0 {
			continue
		}
		depths[move.Agent] = append(depths[move.Agent], move.Depth)
		nodes[move.Agent] = append(nodes[move.Agent], move.Nodes)
		if seconds := move.Duration.Seconds(); seconds > 0 {
			rates[move.Agent] = append(rates[move.Agent], float64(move.Nodes)/seconds)
		}
	}

	throughputs := []Throughput{}
	for name := range depths {
		throughputs = append(throughputs, Throughput{
			Agent:          name,
			Moves:          len(depths[name]),
			Depth:          utils.Mean(depths[name]),
			Nodes:          utils.Mean(nodes[name]),
			NodesPerSecond: utils.Mean(rates[name]),
		})
	}
	sort.Slice(throughputs, func(i, j int) bool {
		return throughputs[i].Agent < throughputs[j].Agent
	})
	return throughputs
}

func RenderThroughput(w io.Writer, throughputs []Throughput) error {
	t := table.NewWriter()
	t.SetTitle("Search Throughput")
	t.AppendHeader(table.Row{"Agent", "Moves", "Depth", "Nodes", "Nodes/s"})
	for _, tp := range throughputs {
		t.AppendRow(table.Row{tp.Agent, tp.Moves, fmt.Sprintf("%.2f", tp.Depth), fmt.Sprintf("%.1f", tp.Nodes), fmt.Sprintf("%.0f", tp.NodesPerSecond)})
	}
	t.SetStyle(table.StyleRounded)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
