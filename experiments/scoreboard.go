package experiments

import (
	"fmt"
	"hanabi/engine"
	"hanabi/utils"
	"io"
	"math"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Standing holds the cumulative scores of one agent. Every seat an agent takes
// counts as a game for it. Aborted games are counted but not scored.
type Standing struct {
	Agent           string
	IndividualScore int
	IndividualGames int
	Scores          map[int]int // by player count
	Games           map[int]int
	Aborted         int
}

func ratio(score, games int) float64 {
	if games == 0 {
		return math.NaN()
	}
	return float64(score) / float64(games)
}

func (s *Standing) Individual() float64 {
	return ratio(s.IndividualScore, s.IndividualGames)
}

func (s *Standing) Average(players int) float64 {
	return ratio(s.Scores[players], s.Games[players])
}

// Overall averages the mixed games of every player count.
func (s *Standing) Overall() float64 {
	score, games := 0, 0
	for n, g := range s.Games {
		score += s.Scores[n]
		games += g
	}
	return ratio(score, games)
}

type Scoreboard struct {
	agents    []string
	players   []int
	standings []*Standing
}

func NewScoreboard(agents []string, players []int) *Scoreboard {
	s := &Scoreboard{
		agents:  agents,
		players: players,
	}
	for _, id := range agents {
		s.standings = append(s.standings, &Standing{
			Agent:  id,
			Scores: map[int]int{},
			Games:  map[int]int{},
		})
	}
	return s
}

// Add credits score to the agent of every seat. Agents not on the board are ignored.
func (s *Scoreboard) Add(kind string, seats []string, score int) {
	for _, id := range seats {
		i := utils.FindIndex(s.agents, id)
		if i < 0 {
			continue
		}
		standing := s.standings[i]
		switch {
		case score < 0:
			standing.Aborted++
		case kind == Individual:
			standing.IndividualScore += score
			standing.IndividualGames++
		default:
			standing.Scores[len(seats)] += score
			standing.Games[len(seats)]++
		}
	}
}

func (s *Scoreboard) Standing(agent string) (*Standing, bool) {
	i := utils.FindIndex(s.agents, agent)
	if i < 0 {
		return nil, false
	}
	return s.standings[i], true
}

// Standings are ordered by overall average, best first. Agents without mixed
// games come last.
func (s *Scoreboard) Standings() []*Standing {
	sorted := append([]*Standing{}, s.standings...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Overall(), sorted[j].Overall()
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a > b
	})
	return sorted
}

func scoreColour(score float64) *color.Color {
	switch {
	case math.IsNaN(score) || score < 6:
		return color.New(color.FgRed)
	case score < 16:
		return color.New(color.FgYellow)
	case score < 21:
		return color.New(color.FgGreen)
	default:
		return color.New(color.FgHiGreen, color.Bold)
	}
}

func formatScore(score float64) string {
	if math.IsNaN(score) {
		return "-"
	}
	return fmt.Sprintf("%.3f", score)
}

// Render writes the standings as a table followed by a critique of the leader.
func (s *Scoreboard) Render(w io.Writer) error {
	t := table.NewWriter()
	t.SetTitle("Hanabi Tournament")
	header := table.Row{"#", "Agent", "Ind. Score"}
	for _, n := range s.players {
		header = append(header, fmt.Sprintf("%d Score", n), fmt.Sprintf("%d Games", n))
	}
	header = append(header, "Aborted", "Average")
	t.AppendHeader(header)

	standings := s.Standings()
	for rank, standing := range standings {
		row := table.Row{rank + 1, standing.Agent, formatScore(standing.Individual())}
		for _, n := range s.players {
			row = append(row, formatScore(standing.Average(n)), standing.Games[n])
		}
		overall := standing.Overall()
		row = append(row, standing.Aborted, scoreColour(overall).Sprint(formatScore(overall)))
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})

	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	if len(standings) == 0 || math.IsNaN(standings[0].Overall()) {
		return nil
	}
	leader := standings[0].Overall()
	_, err := fmt.Fprintf(w, "%s leads: %s\n", standings[0].Agent, scoreColour(leader).Sprint(engine.Critique(int(math.Round(leader)))))
	return err
}
