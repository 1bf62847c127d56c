package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type GameRecord struct {
	ID   uuid.UUID
	Kind string // "individual" or "mixed"
	GameMetric
}

type MoveRecord struct {
	Game uuid.UUID // GameRecord.ID
	MoveMetric
}

type Setup struct {
	Agents    []string      `json:"agents"`
	Players   []int         `json:"players"`
	NumGames  int           `json:"numGames"` // Per agent and player count
	Seed      uint64        `json:"seed"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of root named by experiment and current timestamp.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteSetup(setup Setup) error {
	path := filepath.Join(w.baseDir, "setup.json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create setup file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(setup); err != nil {
		return fmt.Errorf("failed to write setup: %w", err)
	}
	return nil
}

func (w *Writer) WriteGameRecords(records []GameRecord) error {
	return w.writeCSV("game_records.csv",
		[]string{"id", "kind", "players", "agents", "score", "aborted", "moves", "start_time", "end_time", "duration"},
		len(records),
		func(i int) []string {
			record := records[i]
			return []string{
				record.ID.String(),
				record.Kind,
				strconv.Itoa(record.Players),
				strings.Join(record.Agents, ";"),
				strconv.Itoa(record.Score),
				strconv.FormatBool(record.Aborted),
				strconv.Itoa(record.Moves),
				record.StartTime.Format(time.RFC3339),
				record.EndTime.Format(time.RFC3339),
				record.Duration.String(),
			}
		})
}

func (w *Writer) WriteMoveRecords(records []MoveRecord) error {
	return w.writeCSV("move_records.csv",
		[]string{"game", "step", "player", "agent", "action", "hints", "fuses", "depth", "duration", "nodes", "leaves"},
		len(records),
		func(i int) []string {
			record := records[i]
			return []string{
				record.Game.String(),
				strconv.Itoa(record.Step),
				strconv.Itoa(record.Player),
				record.Agent,
				record.Action,
				strconv.Itoa(record.Hints),
				strconv.Itoa(record.Fuses),
				strconv.Itoa(record.Depth),
				record.Duration.String(),
				strconv.Itoa(record.Nodes),
				strconv.Itoa(record.Leaves),
			}
		})
}

func (w *Writer) writeCSV(name string, header []string, n int, row func(i int) []string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	for i := 0; i < n; i++ {
		if err := writer.Write(row(i)); err != nil {
			return fmt.Errorf("failed to write %s row: %w", name, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
