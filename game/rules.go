package game

// Fixed ruleset constants.
const (
	MaxHints   = 8
	MaxFuses   = 3
	MinPlayers = 2
	MaxPlayers = 5
	MaxScore   = NumColours * MaxValue
)

// NoPlayer is the player index reported by a global state's Observer and by
// NextPlayer once the game is over.
const NoPlayer = -1

// HandSize is the number of cards dealt to each player: 4 for games of more
// than three players, 5 otherwise.
func HandSize(numPlayers int) int {
	if numPlayers > 3 {
		return 4
	}
	return 5
}
