package agent

import (
	"fmt"
	"hanabi/game"

	"golang.org/x/exp/rand"
)

const guessChance = 0.05 // Per fuse token left

// clue is what a player has been told about one of their own cards.
type clue struct {
	colour   game.Colour
	coloured bool
	value    int // 0 when not hinted
}

// Basic is a reflex agent. In order of preference it plays a card it knows to
// be playable, discards a card it knows to be useless, hints the next player
// holding a playable card, occasionally plays a guess, discards at random and
// finally gives a random hint.
type Basic struct {
	rng   *rand.Rand
	index int
	order int // Last state read
	pile  int
	clues []clue
	empty []bool
}

func NewBasic(rng *rand.Rand) *Basic {
	return &Basic{rng: rng}
}

func (b *Basic) Name() string { return "BaseLine" }

func (b *Basic) Act(state *game.State) (game.Action, error) {
	if b.clues == nil {
		b.index = state.Observer()
		b.pile = game.DeckSize - state.NumPlayers()*state.HandSize()
		b.clues = make([]clue, state.HandSize())
		b.empty = make([]bool, state.HandSize())
	}
	if state.Observer() != b.index || state.NextPlayer() != b.index {
		return game.Action{}, fmt.Errorf("%w: player %d cannot act on this state", game.ErrIllegalAction, b.index)
	}
	if err := b.observe(state); err != nil {
		return game.Action{}, err
	}

	rules := []func(*game.State) (game.Action, bool){
		b.playKnown,
		b.discardKnown,
		b.hintPlayable,
		b.playGuess,
		b.discardGuess,
		b.hintRandom,
	}
	for _, rule := range rules {
		if a, ok := rule(state); ok {
			return a, nil
		}
	}
	return game.Action{}, fmt.Errorf("%w for player %d", ErrNoAction, b.index)
}

// observe reads the hints received and the own cards replaced since the last turn.
func (b *Basic) observe(state *game.State) error {
	for order := b.order + 1; order <= state.Order(); order++ {
		t, err := state.At(order)
		if err != nil {
			return err
		}
		a, _ := t.PreviousAction()
		switch a.Type() {
		case game.PlayAction, game.DiscardAction:
			drew := b.pile > 0
			if drew {
				b.pile--
			}
			if a.Player() == b.index {
				pos, _ := a.Position()
				b.clues[pos] = clue{}
				b.empty[pos] = !drew
			}
		case game.HintColourAction, game.HintValueAction:
			if receiver, _ := a.Receiver(); receiver != b.index {
				continue
			}
			mask, _ := a.Mask()
			for j, hinted := range mask {
				if !hinted || j >= len(b.clues) {
					continue
				}
				if colour, err := a.Colour(); err == nil {
					b.clues[j].colour, b.clues[j].coloured = colour, true
				} else {
					b.clues[j].value, _ = a.Value()
				}
			}
		}
		b.order = order
	}
	return nil
}

// nextValue is the value that extends colour's firework, -1 once it is complete.
func nextValue(state *game.State, colour game.Colour) int {
	level := state.FireworkLevel(colour)
	if level == game.MaxValue {
		return -1
	}
	return level + 1
}

func (b *Basic) play(pos int) game.Action {
	b.clues[pos] = clue{}
	return must(game.NewCardAction(b.index, b.Name(), game.PlayAction, pos))
}

func (b *Basic) discard(pos int) game.Action {
	b.clues[pos] = clue{}
	return must(game.NewCardAction(b.index, b.Name(), game.DiscardAction, pos))
}

func (b *Basic) playKnown(state *game.State) (game.Action, bool) {
	for i, c := range b.clues {
		if c.coloured && c.value == nextValue(state, c.colour) {
			return b.play(i), true
		}
	}
	return game.Action{}, false
}

func (b *Basic) discardKnown(state *game.State) (game.Action, bool) {
	if state.HintTokens() == game.MaxHints {
		return game.Action{}, false
	}
	for i, c := range b.clues {
		if !c.coloured || c.value == 0 {
			continue
		}
		if next := nextValue(state, c.colour); next == -1 || c.value < next {
			return b.discard(i), true
		}
	}
	return game.Action{}, false
}

func (b *Basic) hintPlayable(state *game.State) (game.Action, bool) {
	if state.HintTokens() == 0 {
		return game.Action{}, false
	}
	n := state.NumPlayers()
	for i := 1; i < n; i++ {
		hintee := (b.index + i) % n
		hand, _ := state.Hand(hintee)
		for _, card := range hand {
			if !card.IsEmpty() && card.Value == nextValue(state, card.Colour) {
				return b.hint(hintee, hand, card), true
			}
		}
	}
	return game.Action{}, false
}

// hint flips a coin between a colour and a value hint about card.
func (b *Basic) hint(hintee int, hand []game.Card, card game.Card) game.Action {
	if b.rng.Float64() > 0.5 {
		mask := game.HintMask(hand, game.HintColourAction, card)
		return must(game.NewColourHint(b.index, b.Name(), game.HintColourAction, hintee, mask, card.Colour))
	}
	mask := game.HintMask(hand, game.HintValueAction, card)
	return must(game.NewValueHint(b.index, b.Name(), game.HintValueAction, hintee, mask, card.Value))
}

func (b *Basic) held() []int {
	held := []int{}
	for i, empty := range b.empty {
		if !empty {
			held = append(held, i)
		}
	}
	return held
}

func (b *Basic) playGuess(state *game.State) (game.Action, bool) {
	held := b.held()
	if len(held) == 0 {
		return game.Action{}, false
	}
	for i := 0; i < state.FuseTokens(); i++ {
		if b.rng.Float64() < guessChance {
			return b.play(held[b.rng.Intn(len(held))]), true
		}
	}
	return game.Action{}, false
}

func (b *Basic) discardGuess(state *game.State) (game.Action, bool) {
	held := b.held()
	if state.HintTokens() == game.MaxHints || len(held) == 0 {
		return game.Action{}, false
	}
	return b.discard(held[b.rng.Intn(len(held))]), true
}

func (b *Basic) hintRandom(state *game.State) (game.Action, bool) {
	if state.HintTokens() == 0 {
		return game.Action{}, false
	}
	n := state.NumPlayers()
	for i := 1; i < n; i++ {
		hintee := (b.index + i) % n
		hand, _ := state.Hand(hintee)
		cards := []game.Card{}
		for _, card := range hand {
			if !card.IsEmpty() {
				cards = append(cards, card)
			}
		}
		if len(cards) > 0 {
			return b.hint(hintee, hand, cards[b.rng.Intn(len(cards))]), true
		}
	}
	return game.Action{}, false
}
