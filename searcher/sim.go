package searcher

import (
	"fmt"
	"hanabi/experiments/metrics"
	"hanabi/game"

	"golang.org/x/exp/rand"
)

const unknown = -1

// sim is the scratch state of one search. Every branch mutates it in place
// and must leave it exactly as it found it; mutators return the closure that
// undoes them so that branches read
//
//	defer s.mutate(...)()
type sim struct {
	w       Weights
	rng     *rand.Rand
	metrics metrics.Collector

	index   int // Searching player
	players int
	size    int // Hand size

	fireworks [game.NumColours]int
	hands     [][]int  // Identity per slot, unknown for the searching player's own cards
	spent     [][]bool // Empty, or played or discarded earlier in the line being explored
	beliefs   [][][game.NumIdentities]int
	needed    [game.NumIdentities]int
	hints     int
	fuse      int
	player    int // Player to act in the line being explored
	remaining int // Actions left once the deck is empty, -1 before
}

func newSim(local *game.State, k *Knowledge, w Weights, rng *rand.Rand, m metrics.Collector) *sim {
	n, size := local.NumPlayers(), local.HandSize()
	s := &sim{
		w:         w,
		rng:       rng,
		metrics:   m,
		index:     local.Observer(),
		players:   n,
		size:      size,
		hands:     make([][]int, n),
		spent:     make([][]bool, n),
		beliefs:   make([][][game.NumIdentities]int, n),
		needed:    k.needed,
		hints:     local.HintTokens(),
		fuse:      local.FuseTokens(),
		player:    local.Observer(),
		remaining: -1,
	}
	for _, colour := range game.Colours {
		s.fireworks[colour] = local.FireworkLevel(colour)
	}
	for p := 0; p < n; p++ {
		hand, _ := local.Hand(p)
		s.hands[p] = make([]int, size)
		s.spent[p] = make([]bool, size)
		for j, card := range hand {
			switch {
			case p == s.index:
				s.hands[p][j] = unknown
				s.spent[p][j] = k.Empty(p, j)
			case card.IsEmpty():
				s.hands[p][j] = unknown
				s.spent[p][j] = true
			default:
				s.hands[p][j] = card.Index()
			}
		}
		s.beliefs[p] = append([][game.NumIdentities]int(nil), k.beliefs[p]...)
	}
	if final := local.FinalActionOrder(); final != -1 {
		s.remaining = final - local.Order()
	}
	return s
}

func (s *sim) next(player int) int {
	return (player + 1) % s.players
}

func (s *sim) playable(id int) bool {
	return s.fireworks[id/game.MaxValue] == id%game.MaxValue
}

// expendable identities can be thrown away without costing a firework.
func (s *sim) expendable(id int) bool {
	return !s.playable(id) && s.needed[id] != 1
}

func anything(int) bool { return true }

// decide runs the search from the searching player's turn. The fallback is
// kept unless some branch evaluates above zero; ties keep the earlier action.
func (s *sim) decide(local *game.State, depth int) (game.Action, error) {
	name, _ := local.Name(s.index)
	best, err := s.fallback(local, name)
	if err != nil {
		return game.Action{}, err
	}

	eval := 0.0
	consider := func(value float64, build func() (game.Action, error)) error {
		if value <= eval {
			return nil
		}
		a, err := build()
		if err != nil {
			return err
		}
		eval, best = value, a
		return nil
	}

	for slot := 0; slot < s.size; slot++ {
		err := consider(s.play(slot, depth), func() (game.Action, error) {
			return game.NewCardAction(s.index, name, game.PlayAction, slot)
		})
		if err != nil {
			return game.Action{}, err
		}
		err = consider(s.discard(slot, depth), func() (game.Action, error) {
			return game.NewCardAction(s.index, name, game.DiscardAction, slot)
		})
		if err != nil {
			return game.Action{}, err
		}
	}

	for other := s.next(s.index); other != s.index; other = s.next(other) {
		hand, _ := local.Hand(other)
		for slot, card := range hand {
			err := consider(s.hint(other, slot, game.HintColourAction, depth), func() (game.Action, error) {
				mask := game.HintMask(hand, game.HintColourAction, card)
				return game.NewColourHint(s.index, name, game.HintColourAction, other, mask, card.Colour)
			})
			if err != nil {
				return game.Action{}, err
			}
			err = consider(s.hint(other, slot, game.HintValueAction, depth), func() (game.Action, error) {
				mask := game.HintMask(hand, game.HintValueAction, card)
				return game.NewValueHint(s.index, name, game.HintValueAction, other, mask, card.Value)
			})
			if err != nil {
				return game.Action{}, err
			}
		}
	}
	return best, nil
}

// fallback is a legal action chosen without search: a value hint about the
// first card of the next player who holds one, else throwing away the first
// card in hand.
func (s *sim) fallback(local *game.State, name string) (game.Action, error) {
	if s.hints > 0 {
		for other := s.next(s.index); other != s.index; other = s.next(other) {
			hand, _ := local.Hand(other)
			for _, card := range hand {
				if !card.IsEmpty() {
					mask := game.HintMask(hand, game.HintValueAction, card)
					return game.NewValueHint(s.index, name, game.HintValueAction, other, mask, card.Value)
				}
			}
		}
	}
	kind := game.DiscardAction
	if s.hints == game.MaxHints {
		kind = game.PlayAction
	}
	for slot := 0; slot < s.size; slot++ {
		if !s.spent[s.index][slot] {
			return game.NewCardAction(s.index, name, kind, slot)
		}
	}
	return game.Action{}, fmt.Errorf("%w: player %d has no card to %s and no hint to give", game.ErrIllegalAction, s.index, kind)
}

// search evaluates the position of the player to act, looking depth actions ahead.
func (s *sim) search(depth int) float64 {
	s.metrics.AddNode()
	if depth <= 0 || s.fuse == 0 {
		s.metrics.AddLeaf()
		return s.evaluate()
	}

	best := 0.0
	for slot := 0; slot < s.size; slot++ {
		best = max(best, s.play(slot, depth), s.discard(slot, depth))
	}
	if s.hints > 0 {
		for other := s.next(s.player); other != s.player; other = s.next(other) {
			if other == s.index { // Nobody simulates a hint they cannot see the result of
				continue
			}
			for slot := 0; slot < s.size; slot++ {
				best = max(best,
					s.hint(other, slot, game.HintColourAction, depth),
					s.hint(other, slot, game.HintValueAction, depth))
			}
		}
	}
	return s.w.Front*s.evaluate() + (1-s.w.Front)*best
}

// evaluate scores the position without looking ahead.
func (s *sim) evaluate() float64 {
	eval := 0.0
	for _, level := range s.fireworks {
		eval += float64(level)
	}
	if s.remaining != -1 {
		if s.fuse == 0 {
			return 0
		}
		return eval
	}

	eval += s.w.Hint * float64(s.hints)
	if s.fuse == 0 {
		eval += fusePenalty
	} else {
		eval += s.w.Fuse * float64(s.fuse)
	}
	for p, hand := range s.hands {
		if p == s.index {
			continue
		}
		for j, id := range hand {
			if s.spent[p][j] || !s.playable(id) {
				continue
			}
			good, total := s.count(p, j, s.playable)
			if total > 0 {
				eval += s.w.Knowledge * float64(good) / float64(total)
			}
		}
	}
	for _, n := range s.needed {
		eval += s.w.Play * float64(n) / game.NumIdentities
	}
	return eval
}

// count sums the belief mass of player's slot, and the part of it that accept holds for.
func (s *sim) count(player, slot int, accept func(int) bool) (matching, total int) {
	for id, n := range s.beliefs[player][slot] {
		if n <= 0 {
			continue
		}
		total += n
		if accept(id) {
			matching += n
		}
	}
	return matching, total
}

// sample draws an identity for the searching player's slot among those accept
// holds for, weighted by belief. mass is their total weight.
func (s *sim) sample(slot int, accept func(int) bool, mass int) int {
	r := s.rng.Intn(mass)
	for id, n := range s.beliefs[s.index][slot] {
		if n <= 0 || !accept(id) {
			continue
		}
		if r < n {
			return id
		}
		r -= n
	}
	panic(fmt.Sprintf("sample of %d fell outside the beliefs of slot %d", mass, slot))
}

func (s *sim) play(slot, depth int) float64 {
	if s.spent[s.player][slot] {
		return 0
	}
	good, total := s.count(s.player, slot, s.playable)
	if good == 0 {
		return 0
	}
	scale := float64(good) / float64(total)
	if scale < playConfidence+s.w.Caution*float64(1-s.fuse) {
		return 0
	}

	id := s.hands[s.player][slot]
	if s.player == s.index {
		id = s.sample(slot, s.playable, good)
	}
	if s.playable(id) {
		return scale * s.succeed(slot, id, depth)
	}
	return (1 - scale) * s.misplay(slot, id, depth)
}

func (s *sim) succeed(slot, id, depth int) float64 {
	defer s.spend(slot)()
	defer s.reveal(id)()
	defer s.extend(id)()
	defer s.advance()()
	return s.search(depth - 1)
}

func (s *sim) misplay(slot, id, depth int) float64 {
	defer s.spend(slot)()
	defer s.reveal(id)()
	defer s.lose(id)()
	defer s.burn()()
	defer s.advance()()
	return s.search(depth - 1)
}

// discard is only considered by a player who thinks the card is probably expendable.
func (s *sim) discard(slot, depth int) float64 {
	if s.hints == game.MaxHints || s.spent[s.player][slot] {
		return 0
	}
	good, total := s.count(s.player, slot, s.expendable)
	if total == 0 {
		return 0
	}
	scale := float64(good) / float64(total)
	if scale < discardConfidence {
		return 0
	}

	id := s.hands[s.player][slot]
	if s.player == s.index {
		id = s.sample(slot, anything, total)
	}
	return scale * s.throw(slot, id, depth)
}

func (s *sim) throw(slot, id, depth int) float64 {
	defer s.spend(slot)()
	defer s.reveal(id)()
	defer s.lose(id)()
	defer s.gain()()
	defer s.advance()()
	return s.search(depth - 1)
}

// hint is only considered about a card that is playable or the last live copy
// of a card still needed.
func (s *sim) hint(other, slot int, kind game.ActionType, depth int) float64 {
	if s.hints == 0 || s.spent[other][slot] {
		return 0
	}
	id := s.hands[other][slot]
	if !s.playable(id) && s.needed[id] != 1 {
		return 0
	}

	defer s.inform(other, id, kind)()
	defer s.give()()
	defer s.advance()()
	return s.search(depth - 1)
}

func (s *sim) spend(slot int) func() {
	p := s.player
	s.spent[p][slot] = true
	return func() { s.spent[p][slot] = false }
}

// reveal takes one copy of id out of everyone's beliefs. Counts may go below
// zero here; readers treat them as zero.
func (s *sim) reveal(id int) func() {
	shift := func(delta int) {
		for p := range s.beliefs {
			for j := range s.beliefs[p] {
				s.beliefs[p][j][id] += delta
			}
		}
	}
	shift(-1)
	return func() { shift(1) }
}

func (s *sim) extend(id int) func() {
	colour := id / game.MaxValue
	was := s.needed[id]
	bonus := id%game.MaxValue == game.MaxValue-1 && s.hints < game.MaxHints

	s.fireworks[colour]++
	s.needed[id] = 0
	if bonus {
		s.hints++
	}
	return func() {
		if bonus {
			s.hints--
		}
		s.needed[id] = was
		s.fireworks[colour]--
	}
}

// lose accounts for a copy of id leaving the game unplayed; losing the last
// copy of a needed card makes the rest of its colour unreachable.
func (s *sim) lose(id int) func() {
	base := id - id%game.MaxValue
	var was [game.MaxValue]int
	copy(was[:], s.needed[base:base+game.MaxValue])

	if s.needed[id] > 0 {
		s.needed[id]--
		if s.needed[id] == 0 {
			for i := id + 1; i < base+game.MaxValue; i++ {
				s.needed[i] = 0
			}
		}
	}
	return func() { copy(s.needed[base:base+game.MaxValue], was[:]) }
}

func (s *sim) burn() func() {
	s.fuse--
	return func() { s.fuse++ }
}

func (s *sim) gain() func() {
	s.hints++
	return func() { s.hints-- }
}

func (s *sim) give() func() {
	s.hints--
	return func() { s.hints++ }
}

func (s *sim) advance() func() {
	p := s.player
	s.player = s.next(p)
	return func() { s.player = p }
}

// inform applies the hint about other's card id to other's beliefs.
func (s *sim) inform(other, id int, kind game.ActionType) func() {
	covers := func(c int) bool {
		if kind == game.HintColourAction {
			return c/game.MaxValue == id/game.MaxValue
		}
		return c%game.MaxValue == id%game.MaxValue
	}

	was := append([][game.NumIdentities]int(nil), s.beliefs[other]...)
	for j, held := range s.hands[other] {
		hinted := !s.spent[other][j] && covers(held)
		for c := range s.beliefs[other][j] {
			if covers(c) != hinted {
				s.beliefs[other][j][c] = 0
			}
		}
	}
	return func() { copy(s.beliefs[other], was) }
}
