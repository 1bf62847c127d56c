package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"hanabi/meta"
	"hanabi/searcher"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	EnvLogLevel = "HANABI_LOG_LEVEL"
	EnvSeed     = "HANABI_SEED"
	EnvOutput   = "HANABI_OUTPUT"
)

// Config holds everything a run needs. A zero Seed means a time based seed.
type Config struct {
	LogLevel          string           `json:"logLevel"`
	Seed              uint64           `json:"seed"`
	Weights           searcher.Weights `json:"weights"`
	Agents            []string         `json:"agents"`
	Players           []int            `json:"players"`
	IndividualPlayers int              `json:"individualPlayers"`
	Games             int              `json:"games"`
	Concurrency       int              `json:"concurrency"`
	OutputDir         string           `json:"outputDir"`
}

func Default() Config {
	return Config{
		LogLevel:          meta.LOG_LEVEL,
		Weights:           searcher.DefaultWeights(),
		Agents:            []string{"basic", "model"},
		Players:           []int{3, 4, 5},
		IndividualPlayers: meta.INDIVIDUAL_PLAYERS,
		Games:             meta.GAMES,
		Concurrency:       meta.CONCURRENCY,
		OutputDir:         meta.OUTPUT_DIR,
	}
}

// Load layers an optional JSON file and then the environment over Default.
// A .env file in the working directory, when present, is loaded into the
// environment first; variables already set win over it.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := json.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := config.applyEnv(); err != nil {
		return Config{}, err
	}
	return config, config.Validate()
}

func (c *Config) applyEnv() error {
	if level, ok := os.LookupEnv(EnvLogLevel); ok {
		c.LogLevel = level
	}
	if seed, ok := os.LookupEnv(EnvSeed); ok {
		parsed, err := strconv.ParseUint(seed, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSeed, err)
		}
		c.Seed = parsed
	}
	if output, ok := os.LookupEnv(EnvOutput); ok {
		c.OutputDir = output
	}
	return nil
}

// Validate checks the fields that would otherwise only fail deep inside a run.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.Weights.Front < 0 || c.Weights.Front > 1 {
		return fmt.Errorf("invalid front weighting %v, must be within [0, 1]", c.Weights.Front)
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("invalid concurrency %d", c.Concurrency)
	}
	return nil
}

func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
