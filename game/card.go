package game

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Colour is the suit of a card.
type Colour int

const (
	Blue Colour = iota
	Red
	Green
	White
	Yellow
)

const (
	NumColours    = 5
	MaxValue      = 5
	NumIdentities = NumColours * MaxValue // Distinct (colour, value) pairs
	DeckSize      = 50
)

// Colours lists every colour in enumeration order.
var Colours = [NumColours]Colour{Blue, Red, Green, White, Yellow}

func (c Colour) String() string {
	switch c {
	case Blue:
		return "Blue"
	case Red:
		return "Red"
	case Green:
		return "Green"
	case White:
		return "White"
	case Yellow:
		return "Yellow"
	}
	return fmt.Sprintf("Colour(%d)", int(c))
}

func (c Colour) valid() bool {
	return c >= Blue && c <= Yellow
}

// Card is an immutable Hanabi card. The zero value is NoCard and stands for an
// empty hand slot or a hidden card.
type Card struct {
	Colour Colour
	Value  int
}

// NoCard marks an empty or redacted hand slot.
var NoCard = Card{}

// NewCard returns the card with the given colour and value.
func NewCard(colour Colour, value int) (Card, error) {
	if !colour.valid() {
		return NoCard, fmt.Errorf("%w: unknown colour %d", ErrOutOfRange, colour)
	}
	if value < 1 || value > MaxValue {
		return NoCard, fmt.Errorf("%w: card value %d", ErrOutOfRange, value)
	}
	return Card{Colour: colour, Value: value}, nil
}

// CardFromIndex is the inverse of Card.Index.
func CardFromIndex(i int) Card {
	if i < 0 || i >= NumIdentities {
		panic(fmt.Sprintf("card identity %d out of range", i))
	}
	return Card{Colour: Colour(i / MaxValue), Value: i%MaxValue + 1}
}

// IsEmpty reports whether c is NoCard.
func (c Card) IsEmpty() bool {
	return c.Value == 0
}

// Index maps the card to one of the 25 identities: 5*colour + value-1.
func (c Card) Index() int {
	return int(c.Colour)*MaxValue + c.Value - 1
}

// Count is the number of copies of the card in a full deck.
func (c Card) Count() int {
	return CopiesOf(c.Value)
}

// CopiesOf returns the multiplicity of a value: 3 for ones, 1 for fives, 2 otherwise.
func CopiesOf(value int) int {
	switch {
	case value == 1:
		return 3
	case value < MaxValue:
		return 2
	default:
		return 1
	}
}

func (c Card) String() string {
	if c.IsEmpty() {
		return "-"
	}
	return fmt.Sprintf("%s-%d", c.Colour, c.Value)
}

// FullDeck returns the 50 cards of a standard deck ordered by colour and value.
func FullDeck() []Card {
	cards := make([]Card, 0, DeckSize)
	for _, colour := range Colours {
		for value := 1; value <= MaxValue; value++ {
			for i := 0; i < CopiesOf(value); i++ {
				cards = append(cards, Card{Colour: colour, Value: value})
			}
		}
	}
	return cards
}

// Deck is the draw pile. It is owned by a single game and is not safe for
// concurrent use.
type Deck struct {
	cards []Card
}

// NewDeck returns a full deck shuffled with rng.
func NewDeck(rng *rand.Rand) *Deck {
	cards := FullDeck()
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
	return &Deck{cards: cards}
}

// NewDeckFrom returns a deck that deals cards in the given order.
func NewDeckFrom(cards []Card) *Deck {
	c := make([]Card, len(cards))
	copy(c, cards)
	return &Deck{cards: c}
}

// Draw removes and returns the top card; ok is false once the deck is empty.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return NoCard, false
	}
	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, true
}

// Len is the number of cards left to draw.
func (d *Deck) Len() int {
	return len(d.cards)
}
