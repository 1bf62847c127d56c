package game

import "errors"

var (
	// ErrIllegalAction is returned for moves that break the rules, and for
	// transitions attempted on hidden or finished states.
	ErrIllegalAction = errors.New("illegal action")
	// ErrOutOfRange is returned for player, slot or card indices outside their bounds.
	ErrOutOfRange = errors.New("index out of range")
	// ErrMalformedAction is returned when an action's type does not fit its fields.
	ErrMalformedAction = errors.New("malformed action")
)

// ErrInvalidSetup is returned when a game cannot be dealt from the given players and deck.
var ErrInvalidSetup = errors.New("invalid game setup")
