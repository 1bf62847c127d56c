package game

import (
	"fmt"
	"strings"
)

// ActionType represents the type of move a player can make on their turn.
type ActionType int

const (
	PlayAction       ActionType = iota // 0
	DiscardAction                      // 1
	HintColourAction                   // 2
	HintValueAction                    // 3
)

func (t ActionType) String() string {
	return [...]string{"play", "discard", "hint colour", "hint value"}[t]
}

// IsHint reports whether the type is one of the two hint variants.
func (t ActionType) IsHint() bool {
	return t == HintColourAction || t == HintValueAction
}

// Action is a single turn's move. It is immutable once constructed; fields that
// do not belong to the variant are only reachable through accessors that fail.
type Action struct {
	player   int
	name     string
	kind     ActionType
	position int
	receiver int
	mask     []bool
	colour   Colour
	value    int
}

// NewCardAction builds a Play or Discard of the card at position.
func NewCardAction(player int, name string, kind ActionType, position int) (Action, error) {
	if kind != PlayAction && kind != DiscardAction {
		return Action{}, fmt.Errorf("%w: %s is not a play or discard", ErrMalformedAction, kind)
	}
	return Action{player: player, name: name, kind: kind, position: position}, nil
}

// NewColourHint builds a colour hint. mask[i] must be true exactly when the
// receiver's i-th card has the hinted colour.
func NewColourHint(player int, name string, kind ActionType, receiver int, mask []bool, colour Colour) (Action, error) {
	if kind != HintColourAction {
		return Action{}, fmt.Errorf("%w: %s is not a colour hint", ErrMalformedAction, kind)
	}
	return Action{player: player, name: name, kind: kind, receiver: receiver, mask: cloneMask(mask), colour: colour}, nil
}

// NewValueHint builds a value hint. mask[i] must be true exactly when the
// receiver's i-th card has the hinted value.
func NewValueHint(player int, name string, kind ActionType, receiver int, mask []bool, value int) (Action, error) {
	if kind != HintValueAction {
		return Action{}, fmt.Errorf("%w: %s is not a value hint", ErrMalformedAction, kind)
	}
	return Action{player: player, name: name, kind: kind, receiver: receiver, mask: cloneMask(mask), value: value}, nil
}

func cloneMask(mask []bool) []bool {
	c := make([]bool, len(mask))
	copy(c, mask)
	return c
}

func (a Action) Player() int      { return a.player }
func (a Action) Name() string     { return a.name }
func (a Action) Type() ActionType { return a.kind }

// Position is the hand slot of a Play or Discard.
func (a Action) Position() (int, error) {
	if a.kind != PlayAction && a.kind != DiscardAction {
		return 0, fmt.Errorf("%w: card position is not defined for a %s", ErrMalformedAction, a.kind)
	}
	return a.position, nil
}

// Receiver is the index of the hinted player.
func (a Action) Receiver() (int, error) {
	if !a.kind.IsHint() {
		return 0, fmt.Errorf("%w: %s is not a hint", ErrMalformedAction, a.kind)
	}
	return a.receiver, nil
}

// Mask returns a copy of the hinted cards.
func (a Action) Mask() ([]bool, error) {
	if !a.kind.IsHint() {
		return nil, fmt.Errorf("%w: %s is not a hint", ErrMalformedAction, a.kind)
	}
	return cloneMask(a.mask), nil
}

// Colour is the colour named by a colour hint.
func (a Action) Colour() (Colour, error) {
	if a.kind != HintColourAction {
		return 0, fmt.Errorf("%w: %s is not a colour hint", ErrMalformedAction, a.kind)
	}
	return a.colour, nil
}

// Value is the value named by a value hint.
func (a Action) Value() (int, error) {
	if a.kind != HintValueAction {
		return 0, fmt.Errorf("%w: %s is not a value hint", ErrMalformedAction, a.kind)
	}
	return a.value, nil
}

func (a Action) String() string {
	who := fmt.Sprintf("Player %s(%d)", a.name, a.player)
	switch a.kind {
	case PlayAction:
		return fmt.Sprintf("%s plays the card at position %d", who, a.position)
	case DiscardAction:
		return fmt.Sprintf("%s discards the card at position %d", who, a.position)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s gives the hint: \"Player %d, cards at position", who, a.receiver)
	if len(a.mask) > 1 {
		b.WriteString("s")
	}
	for i, hinted := range a.mask {
		if hinted {
			fmt.Fprintf(&b, " %d", i)
		}
	}
	if a.kind == HintColourAction {
		fmt.Fprintf(&b, " have colour %s\"", a.colour)
	} else {
		fmt.Fprintf(&b, " have value %d\"", a.value)
	}
	return b.String()
}
