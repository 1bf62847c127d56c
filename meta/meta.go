// meta/meta.go
package meta

// GAMES defines the number of tournament games per agent and player count.
const GAMES = 20

// INDIVIDUAL_PLAYERS defines the table size of games where every seat is the same agent.
const INDIVIDUAL_PLAYERS = 4

// CONCURRENCY defines the number of games played at once.
const CONCURRENCY = 8

// OUTPUT_DIR defines where tournament records are written.
const OUTPUT_DIR = "results"

// LOG_LEVEL defines the default zerolog level.
const LOG_LEVEL = "info"
