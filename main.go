package main

import (
	"context"
	"flag"
	"fmt"
	"hanabi/config"
	"hanabi/engine"
	"hanabi/experiments"
	"hanabi/experiments/metrics"
	"hanabi/game"
	"hanabi/searcher/agent"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

func main() {
	path := flag.String("config", "", "Path to a JSON config file")
	mode := flag.String("mode", "game", "What to run: game or tournament")
	lineup := flag.String("agents", "", "Comma separated agents, one per seat for a game or the entrants of a tournament ("+strings.Join(agent.Names(), ", ")+")")
	seed := flag.Uint64("seed", 0, "Seed of the deck and agents, 0 for a time based seed")
	level := flag.String("level", "", "Log level")
	games := flag.Int("games", 0, "Tournament games per agent and player count")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "agents":
			cfg.Agents = strings.Split(*lineup, ",")
		case "seed":
			cfg.Seed = *seed
		case "level":
			cfg.LogLevel = *level
		case "games":
			cfg.Games = *games
		}
	})
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}

	logLevel, err := cfg.Level()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(logLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	switch *mode {
	case "game":
		err = runGame(cfg)
	case "tournament":
		err = runTournament(cfg)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("run failed")
	}
}

// runGame plays one game with a seat per configured agent.
func runGame(cfg config.Config) error {
	log.Info().Msgf("seed %d", cfg.Seed)
	agents := make([]agent.Agent, len(cfg.Agents))
	for i, id := range cfg.Agents {
		a, err := agent.New(strings.TrimSpace(id), agent.Settings{
			Weights: cfg.Weights,
			Rand:    rand.New(rand.NewSource(cfg.Seed + uint64(i) + 1)),
		})
		if err != nil {
			return err
		}
		agents[i] = a
	}

	e, err := engine.NewLocalEngine(agents, game.NewDeck(rand.New(rand.NewSource(cfg.Seed))))
	if err != nil {
		return err
	}
	score, _, _, err := e.Run()
	if err != nil {
		return err
	}
	fmt.Println(e.State())
	fmt.Printf("The final score was %d\n%s\n", score, engine.Critique(score))
	return nil
}

func runTournament(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ids := make([]string, len(cfg.Agents))
	for i, id := range cfg.Agents {
		ids[i] = strings.TrimSpace(id)
	}
	result, err := experiments.Run(ctx, experiments.Config{
		Agents:            ids,
		Players:           cfg.Players,
		IndividualPlayers: cfg.IndividualPlayers,
		Games:             cfg.Games,
		Concurrency:       cfg.Concurrency,
		Seed:              cfg.Seed,
		Weights:           cfg.Weights,
	}, log.Logger)
	if err != nil {
		return err
	}

	writer, err := metrics.NewWriter(cfg.OutputDir, "tournament")
	if err != nil {
		return fmt.Errorf("failed to create experiment writer: %w", err)
	}
	if err := result.Write(writer); err != nil {
		return err
	}
	log.Info().Msgf("stored records in %s", writer.Dir())

	if err := result.Board.Render(os.Stdout); err != nil {
		return err
	}
	return experiments.RenderThroughput(os.Stdout, experiments.MeasureThroughput(result.Moves))
}
