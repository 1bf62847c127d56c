package searcher

import (
	"fmt"
	"hanabi/game"
)

// Knowledge is one player's model of what everyone, themselves included, can
// infer about their own cards. It is built from public information only and
// is kept current by replaying every action since the last update.
//
// A Knowledge belongs to a single player of a single game and is not safe for
// concurrent use.
type Knowledge struct {
	index int // Observer the tables belong to
	order int // Last state replayed
	pile  int // Cards left to draw

	// beliefs[p][j][id] counts the copies of identity id that player p's j-th
	// card could still be, from p's point of view.
	beliefs [][][game.NumIdentities]int
	// remaining[p][id] counts the copies of id that player p has not seen.
	remaining [][game.NumIdentities]int
	empty     [][]bool
	// needed[id] counts the copies of id still in the deck or a hand while
	// the card is required by its firework.
	needed [game.NumIdentities]int
}

// NewKnowledge builds the tables of local's observer from the deal and replays
// the game up to local.
func NewKnowledge(local *game.State) (*Knowledge, error) {
	index := local.Observer()
	if index == game.NoPlayer {
		return nil, fmt.Errorf("%w: knowledge needs a local state", game.ErrIllegalAction)
	}
	deal, err := local.At(0)
	if err != nil {
		return nil, err
	}

	n, size := local.NumPlayers(), local.HandSize()
	k := &Knowledge{
		index:     index,
		pile:      game.DeckSize - n*size,
		beliefs:   make([][][game.NumIdentities]int, n),
		remaining: make([][game.NumIdentities]int, n),
		empty:     make([][]bool, n),
	}
	for id := range k.needed {
		k.needed[id] = game.CardFromIndex(id).Count()
	}
	for p := range k.remaining {
		k.remaining[p] = k.needed
	}
	for p := 0; p < n; p++ {
		if p == index {
			continue
		}
		hand, _ := deal.Hand(p)
		for _, card := range hand {
			for q := range k.remaining {
				if q != p {
					k.remaining[q][card.Index()]--
				}
			}
		}
	}
	for p := range k.beliefs {
		k.beliefs[p] = make([][game.NumIdentities]int, size)
		k.empty[p] = make([]bool, size)
		for j := range k.beliefs[p] {
			k.beliefs[p][j] = k.remaining[p]
		}
	}

	if err := k.Update(local); err != nil {
		return nil, err
	}
	return k, nil
}

func (k *Knowledge) Index() int { return k.index }
func (k *Knowledge) Order() int { return k.order }

// Update replays every action between the last update and local.
func (k *Knowledge) Update(local *game.State) error {
	if local.Observer() != k.index {
		return fmt.Errorf("%w: knowledge of player %d updated from the view of %d", game.ErrIllegalAction, k.index, local.Observer())
	}
	if local.Order() < k.order {
		return fmt.Errorf("%w: knowledge is at order %d, state at %d", game.ErrOutOfRange, k.order, local.Order())
	}
	for order := k.order + 1; order <= local.Order(); order++ {
		t, err := local.At(order)
		if err != nil {
			return err
		}
		if err := k.replay(t); err != nil {
			return err
		}
		k.order = order
	}
	return nil
}

func (k *Knowledge) replay(t *game.State) error {
	a, ok := t.PreviousAction()
	if !ok {
		return fmt.Errorf("%w: no action leads to order %d", game.ErrOutOfRange, t.Order())
	}

	switch a.Type() {
	case game.PlayAction, game.DiscardAction:
		card, _ := t.PreviousCardPlayed()
		pos, _ := a.Position()
		if a.Type() == game.PlayAction && t.FuseTokens() == t.Previous().FuseTokens() {
			k.needed[card.Index()] = 0
		} else {
			k.lose(card, t.FireworkLevel(card.Colour))
		}
		k.reveal(t, a.Player(), pos, card)
	case game.HintColourAction, game.HintValueAction:
		receiver, _ := a.Receiver()
		mask, _ := a.Mask()
		hinted := make([]bool, game.NumIdentities)
		for id := range hinted {
			hinted[id] = hintCovers(a, game.CardFromIndex(id))
		}
		for j := 0; j < len(mask) && j < len(k.beliefs[receiver]); j++ {
			for id := range hinted {
				// Hinted slots keep only matching identities, the rest keep
				// only identities that do not match.
				if hinted[id] != mask[j] {
					k.beliefs[receiver][j][id] = 0
				}
			}
		}
	}
	return nil
}

func hintCovers(a game.Action, card game.Card) bool {
	if colour, err := a.Colour(); err == nil {
		return card.Colour == colour
	}
	value, _ := a.Value()
	return card.Value == value
}

// lose accounts for a needed card leaving the game without being played.
func (k *Knowledge) lose(card game.Card, level int) {
	id := card.Index()
	if k.needed[id] > 0 {
		k.needed[id]--
	}
	if k.needed[id] == 0 && level < card.Value {
		for v := card.Value + 1; v <= game.MaxValue; v++ {
			k.needed[game.Card{Colour: card.Colour, Value: v}.Index()] = 0
		}
	}
}

// reveal accounts for card leaving player's slot and the replacement drawn
// into it.
func (k *Knowledge) reveal(t *game.State, player, slot int, card game.Card) {
	if player == k.index {
		for p := range k.remaining {
			k.forget(p, card.Index())
		}
	} else {
		k.forget(player, card.Index())
	}

	// The deck ran out the first time a draw failed, and every later draw fails too.
	drew := t.FinalActionOrder() == -1
	if drew {
		if k.pile > 0 {
			k.pile--
		}
		if player != k.index {
			hand, _ := t.Hand(player)
			if hand[slot].IsEmpty() {
				drew = false
			} else {
				for p := range k.remaining {
					if p != player {
						k.forget(p, hand[slot].Index())
					}
				}
			}
		}
	} else {
		k.pile = 0
	}
	k.empty[player][slot] = !drew
	k.beliefs[player][slot] = k.remaining[player]
}

// forget removes one copy of id from everything player could still be holding.
func (k *Knowledge) forget(player, id int) {
	if k.remaining[player][id] > 0 {
		k.remaining[player][id]--
	}
	for j := range k.beliefs[player] {
		if k.beliefs[player][j][id] > 0 {
			k.beliefs[player][j][id]--
		}
	}
}

// Distribution returns, per card identity, how many copies player's slot could
// be from that player's point of view. It is nil for an empty slot.
func (k *Knowledge) Distribution(player, slot int) []int {
	if player < 0 || player >= len(k.beliefs) || slot < 0 || slot >= len(k.beliefs[player]) {
		return nil
	}
	if k.empty[player][slot] {
		return nil
	}
	d := make([]int, game.NumIdentities)
	copy(d, k.beliefs[player][slot][:])
	return d
}

// Empty reports whether player's slot is known to be empty.
func (k *Knowledge) Empty(player, slot int) bool {
	return k.empty[player][slot]
}

// Needed is the number of copies of card still live while its firework needs it.
func (k *Knowledge) Needed(card game.Card) int {
	return k.needed[card.Index()]
}

// Pile is the number of cards left to draw.
func (k *Knowledge) Pile() int { return k.pile }
