package game

import (
	"fmt"
	"strings"
)

// snapshot is the immutable data of one turn. Consecutive snapshots share every
// slice that the transition between them did not touch.
type snapshot struct {
	hands       [][]Card           // Per player, NoCard for an empty slot
	fireworks   [NumColours][]Card // Per colour, bottom to top
	discards    []Card             // In discard order
	hints       int                // Hint tokens left
	fuses       int                // Fuse tokens left
	next        int                // Player to act
	finalAction int                // Order of the last action once the deck ran out, -1 before
	action      *Action            // Action that produced this snapshot, nil for the deal
}

// history is the append-only log of a game, indexed by turn order.
type history struct {
	players   []string
	snapshots []*snapshot
}

// State is a view of one node of a game's history. States are immutable:
// Next always returns a new State and never changes the receiver.
//
// A State with an observer (see HideHand) redacts that player's own hand and
// cannot be advanced.
type State struct {
	history  *history
	order    int
	observer int
}

// NewState deals the opening hands from deck and returns the first state of a game.
func NewState(players []string, deck *Deck) (*State, error) {
	if len(players) < MinPlayers || len(players) > MaxPlayers {
		return nil, fmt.Errorf("%w: %d players, need %d to %d", ErrInvalidSetup, len(players), MinPlayers, MaxPlayers)
	}
	if deck == nil || deck.Len() != DeckSize {
		return nil, fmt.Errorf("%w: deal needs a full deck of %d cards", ErrInvalidSetup, DeckSize)
	}

	names := make([]string, len(players))
	copy(names, players)

	size := HandSize(len(players))
	hands := make([][]Card, len(players))
	for i := range hands {
		hands[i] = make([]Card, size)
		for j := range hands[i] {
			hands[i][j], _ = deck.Draw()
		}
	}

	first := &snapshot{
		hands:       hands,
		hints:       MaxHints,
		fuses:       MaxFuses,
		next:        0,
		finalAction: -1,
	}
	return &State{
		history:  &history{players: names, snapshots: []*snapshot{first}},
		order:    0,
		observer: NoPlayer,
	}, nil
}

func (s *State) snap() *snapshot {
	return s.history.snapshots[s.order]
}

// Players returns the player names by index.
func (s *State) Players() []string {
	names := make([]string, len(s.history.players))
	copy(names, s.history.players)
	return names
}

func (s *State) NumPlayers() int { return len(s.history.players) }
func (s *State) HandSize() int   { return HandSize(len(s.history.players)) }

// Name returns the name of the given player.
func (s *State) Name(player int) (string, error) {
	if err := s.checkPlayer(player); err != nil {
		return "", err
	}
	return s.history.players[player], nil
}

func (s *State) checkPlayer(player int) error {
	if player < 0 || player >= len(s.history.players) {
		return fmt.Errorf("%w: player %d of %d", ErrOutOfRange, player, len(s.history.players))
	}
	return nil
}

// Hand returns a copy of the player's cards. The observer's own hand comes back
// as a slice of NoCard of the same length.
func (s *State) Hand(player int) ([]Card, error) {
	if err := s.checkPlayer(player); err != nil {
		return nil, err
	}
	hand := s.snap().hands[player]
	c := make([]Card, len(hand))
	if player != s.observer {
		copy(c, hand)
	}
	return c, nil
}

// Firework returns the cards played for colour, bottom first.
func (s *State) Firework(colour Colour) []Card {
	fw := s.snap().fireworks[colour]
	c := make([]Card, len(fw))
	copy(c, fw)
	return c
}

// FireworkLevel is the value on top of the colour's firework, 0 when empty.
func (s *State) FireworkLevel(colour Colour) int {
	return len(s.snap().fireworks[colour])
}

// Discards returns the discarded and misplayed cards in the order they left play.
func (s *State) Discards() []Card {
	d := s.snap().discards
	c := make([]Card, len(d))
	copy(c, d)
	return c
}

func (s *State) HintTokens() int { return s.snap().hints }
func (s *State) FuseTokens() int { return s.snap().fuses }

// Order is the number of actions taken to reach this state.
func (s *State) Order() int { return s.order }

// Observer is the player whose hand is hidden, or NoPlayer for a global state.
func (s *State) Observer() int { return s.observer }

// NextPlayer is the player to act, or NoPlayer once the game is over.
func (s *State) NextPlayer() int {
	if s.GameOver() {
		return NoPlayer
	}
	return s.snap().next
}

// FinalActionOrder is the order at which the game ends because the deck ran
// out, or -1 while the deck still had cards at every draw.
func (s *State) FinalActionOrder() int { return s.snap().finalAction }

// Score is the sum of the firework tops, or 0 once the fuse has burnt out.
func (s *State) Score() int {
	snap := s.snap()
	if snap.fuses == 0 {
		return 0
	}
	score := 0
	for _, fw := range snap.fireworks {
		score += len(fw)
	}
	return score
}

// GameOver reports whether the final action has been taken, the fuse has
// burnt out or every firework is complete.
func (s *State) GameOver() bool {
	snap := s.snap()
	return s.order == snap.finalAction || snap.fuses == 0 || s.Score() == MaxScore
}

// HideHand returns a local view of the state in which observer cannot see
// their own hand.
func (s *State) HideHand(observer int) (*State, error) {
	if s.observer != NoPlayer {
		return nil, fmt.Errorf("%w: hand of player %d already hidden", ErrIllegalAction, s.observer)
	}
	if err := s.checkPlayer(observer); err != nil {
		return nil, err
	}
	return &State{history: s.history, order: s.order, observer: observer}, nil
}

// Legal reports whether a is a legal move in this state. It fails instead of
// answering when a local state is asked about another player's move, and when
// a discard is attempted with every hint token available.
func (s *State) Legal(a Action) (bool, error) {
	snap := s.snap()
	if s.observer != NoPlayer && a.player != s.observer {
		return false, fmt.Errorf("%w: local states may only test the observer's moves", ErrIllegalAction)
	}
	if a.kind == DiscardAction && snap.hints == MaxHints {
		return false, fmt.Errorf("%w: discards cannot be made with %d hint tokens", ErrIllegalAction, MaxHints)
	}
	if a.player != snap.next {
		return false, nil
	}

	switch a.kind {
	case PlayAction, DiscardAction:
		hand := snap.hands[a.player]
		return a.position >= 0 && a.position < len(hand) && !hand[a.position].IsEmpty(), nil
	case HintColourAction, HintValueAction:
		if snap.hints == 0 || a.receiver < 0 || a.receiver >= len(snap.hands) || a.receiver == a.player {
			return false, nil
		}
		hand := snap.hands[a.receiver]
		if len(a.mask) != len(hand) {
			return false, nil
		}
		for i, card := range hand {
			if hintMatches(a, card) != a.mask[i] {
				return false, nil
			}
		}
		return true, nil
	}
	return false, nil
}

func hintMatches(a Action, card Card) bool {
	if card.IsEmpty() {
		return false
	}
	if a.kind == HintColourAction {
		return card.Colour == a.colour
	}
	return card.Value == a.value
}

// Next applies a to the state, drawing replacement cards from deck. Only the
// global state of a game that is not over can be advanced.
func (s *State) Next(a Action, deck *Deck) (*State, error) {
	if s.observer != NoPlayer {
		return nil, fmt.Errorf("%w: next state unavailable from the view of player %d", ErrIllegalAction, s.observer)
	}
	if s.GameOver() {
		return nil, fmt.Errorf("%w: game over", ErrIllegalAction)
	}
	legal, err := s.Legal(a)
	if err != nil {
		return nil, err
	}
	if !legal {
		return nil, fmt.Errorf("%w: %s", ErrIllegalAction, a)
	}

	prev := s.snap()
	next := *prev
	next.hands = append([][]Card(nil), prev.hands...)

	switch a.kind {
	case PlayAction:
		card := prev.hands[a.player][a.position]
		if prev.extends(card) {
			fw := prev.fireworks[card.Colour]
			next.fireworks[card.Colour] = append(fw[:len(fw):len(fw)], card)
			if card.Value == MaxValue && next.hints < MaxHints {
				next.hints++
			}
		} else {
			next.discards = append(prev.discards[:len(prev.discards):len(prev.discards)], card)
			next.fuses--
		}
		s.refill(&next, a.player, a.position, deck)
	case DiscardAction:
		card := prev.hands[a.player][a.position]
		next.discards = append(prev.discards[:len(prev.discards):len(prev.discards)], card)
		if next.hints < MaxHints {
			next.hints++
		}
		s.refill(&next, a.player, a.position, deck)
	case HintColourAction, HintValueAction:
		next.hints--
	}

	next.next = (prev.next + 1) % len(prev.hands)
	played := a
	next.action = &played

	h := s.history
	if s.order != len(h.snapshots)-1 {
		// Fork rather than rewrite the later history of this game.
		h = &history{players: h.players, snapshots: append([]*snapshot(nil), h.snapshots[:s.order+1]...)}
	}
	h.snapshots = append(h.snapshots, &next)
	return &State{history: h, order: s.order + 1, observer: NoPlayer}, nil
}

// extends reports whether card is the next card of its colour's firework.
func (snap *snapshot) extends(card Card) bool {
	return len(snap.fireworks[card.Colour]) == card.Value-1
}

func (s *State) refill(next *snapshot, player, position int, deck *Deck) {
	hand := make([]Card, len(next.hands[player]))
	copy(hand, next.hands[player])
	if card, ok := deck.Draw(); ok {
		hand[position] = card
	} else {
		if next.finalAction == -1 {
			next.finalAction = s.order + len(next.hands)
		}
		hand[position] = NoCard
	}
	next.hands[player] = hand
}

// At returns the state of the same game after order actions, seen by the same observer.
func (s *State) At(order int) (*State, error) {
	if order < 0 || order >= len(s.history.snapshots) {
		return nil, fmt.Errorf("%w: no state at order %d", ErrOutOfRange, order)
	}
	return &State{history: s.history, order: order, observer: s.observer}, nil
}

// Previous returns the state before the last action, or nil for the deal.
func (s *State) Previous() *State {
	if s.order == 0 {
		return nil
	}
	return &State{history: s.history, order: s.order - 1, observer: s.observer}
}

// PreviousAction is the action that produced this state; ok is false for the deal.
func (s *State) PreviousAction() (Action, bool) {
	a := s.snap().action
	if a == nil {
		return Action{}, false
	}
	return *a, true
}

// PreviousActionBy returns the most recent action taken by player up to this state.
func (s *State) PreviousActionBy(player int) (Action, error) {
	if err := s.checkPlayer(player); err != nil {
		return Action{}, err
	}
	for i := s.order; i > 0; i-- {
		if a := s.history.snapshots[i].action; a.player == player {
			return *a, nil
		}
	}
	return Action{}, fmt.Errorf("%w: player %d has not played yet", ErrOutOfRange, player)
}

// PreviousCardPlayed is the card played or discarded by the last action. ok is
// false for the deal and after a hint. The card is public, so it is revealed
// even when it came from the observer's own hand.
func (s *State) PreviousCardPlayed() (Card, bool) {
	a := s.snap().action
	if a == nil || a.kind.IsHint() {
		return NoCard, false
	}
	return s.history.snapshots[s.order-1].hands[a.player][a.position], true
}

func (s *State) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "State: %d\n", s.order)
	if a, ok := s.PreviousAction(); ok {
		fmt.Fprintf(&b, "Last move: %s\n", a)
	} else {
		b.WriteString("Last move: -\n")
	}
	b.WriteString("Players' hands:\n")
	for i, name := range s.history.players {
		hand, _ := s.Hand(i)
		fmt.Fprintf(&b, "%s (%d):", name, i)
		for _, card := range hand {
			fmt.Fprintf(&b, " %s", card)
		}
		b.WriteString("\n")
	}
	b.WriteString("Fireworks:\n")
	for _, colour := range Colours {
		top := NoCard
		if fw := s.snap().fireworks[colour]; len(fw) > 0 {
			top = fw[len(fw)-1]
		}
		fmt.Fprintf(&b, "%s  %s\n", colour, top)
	}
	fmt.Fprintf(&b, "Hints: %d\nFuse: %d\n", s.HintTokens(), s.FuseTokens())
	return b.String()
}

// LegalActions enumerates the legal moves of the player to act: every play,
// every discard while a hint token is missing, and one hint per distinct
// colour and value in each other player's hand.
func (s *State) LegalActions() []Action {
	player := s.NextPlayer()
	if player == NoPlayer || (s.observer != NoPlayer && s.observer != player) {
		return nil
	}
	snap := s.snap()
	name := s.history.players[player]

	candidates := []Action{}
	for pos := range snap.hands[player] {
		candidates = append(candidates, Action{player: player, name: name, kind: PlayAction, position: pos})
		if snap.hints < MaxHints {
			candidates = append(candidates, Action{player: player, name: name, kind: DiscardAction, position: pos})
		}
	}
	for receiver, hand := range snap.hands {
		if receiver == player {
			continue
		}
		var colours [NumColours]bool
		var values [MaxValue + 1]bool
		for _, card := range hand {
			if card.IsEmpty() {
				continue
			}
			if !colours[card.Colour] {
				colours[card.Colour] = true
				candidates = append(candidates, Action{player: player, name: name, kind: HintColourAction,
					receiver: receiver, mask: HintMask(hand, HintColourAction, card), colour: card.Colour})
			}
			if !values[card.Value] {
				values[card.Value] = true
				candidates = append(candidates, Action{player: player, name: name, kind: HintValueAction,
					receiver: receiver, mask: HintMask(hand, HintValueAction, card), value: card.Value})
			}
		}
	}

	legal := make([]Action, 0, len(candidates))
	for _, a := range candidates {
		if ok, err := s.Legal(a); err == nil && ok {
			legal = append(legal, a)
		}
	}
	return legal
}

// HintMask returns which cards of hand share the hinted card's colour (for a
// colour hint) or value (for a value hint). Empty slots never match.
func HintMask(hand []Card, kind ActionType, hinted Card) []bool {
	mask := make([]bool, len(hand))
	for i, card := range hand {
		if card.IsEmpty() {
			continue
		}
		if kind == HintColourAction {
			mask[i] = card.Colour == hinted.Colour
		} else {
			mask[i] = card.Value == hinted.Value
		}
	}
	return mask
}
