package game

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func TestCard(t *testing.T) {
	t.Run("counts follow the value", func(t *testing.T) {
		require.Equal(t, 3, Card{Colour: Red, Value: 1}.Count())
		for v := 2; v <= 4; v++ {
			require.Equal(t, 2, Card{Colour: Red, Value: v}.Count())
		}
		require.Equal(t, 1, Card{Colour: Red, Value: 5}.Count())
	})

	t.Run("identity index round trips", func(t *testing.T) {
		seen := map[int]bool{}
		for i := 0; i < NumIdentities; i++ {
			card := CardFromIndex(i)
			require.Equal(t, i, card.Index())
			seen[card.Index()] = true
		}
		require.Len(t, seen, NumIdentities)
		require.Equal(t, 0, Card{Colour: Blue, Value: 1}.Index())
		require.Equal(t, 24, Card{Colour: Yellow, Value: 5}.Index())
	})

	t.Run("rejects values and colours out of range", func(t *testing.T) {
		_, err := NewCard(Red, 0)
		require.ErrorIs(t, err, ErrOutOfRange)
		_, err = NewCard(Red, 6)
		require.ErrorIs(t, err, ErrOutOfRange)
		_, err = NewCard(Colour(7), 1)
		require.ErrorIs(t, err, ErrOutOfRange)

		card, err := NewCard(Green, 4)
		require.NoError(t, err)
		require.Equal(t, "Green-4", card.String())
	})

	t.Run("zero value is an empty slot", func(t *testing.T) {
		require.True(t, NoCard.IsEmpty())
		require.False(t, Card{Colour: Blue, Value: 1}.IsEmpty())
		require.Equal(t, "-", NoCard.String())
	})
}

func TestDeck(t *testing.T) {
	t.Run("full deck has fifty cards with the right multiplicities", func(t *testing.T) {
		cards := FullDeck()
		require.Len(t, cards, DeckSize)

		counts := make([]int, NumIdentities)
		for _, c := range cards {
			counts[c.Index()]++
		}
		for i, n := range counts {
			require.Equal(t, CardFromIndex(i).Count(), n, "count of %s", CardFromIndex(i))
		}
	})

	t.Run("shuffling keeps the composition", func(t *testing.T) {
		deck := NewDeck(rand.New(rand.NewSource(7)))
		require.Equal(t, DeckSize, deck.Len())

		counts := make([]int, NumIdentities)
		for deck.Len() > 0 {
			c, ok := deck.Draw()
			require.True(t, ok)
			counts[c.Index()]++
		}
		for i, n := range counts {
			require.Equal(t, CardFromIndex(i).Count(), n)
		}

		_, ok := deck.Draw()
		require.False(t, ok, "Empty deck should not draw")
	})

	t.Run("fixed deck deals in order", func(t *testing.T) {
		deck := NewDeckFrom([]Card{{Red, 2}, {Blue, 5}})
		c, _ := deck.Draw()
		require.Equal(t, Card{Red, 2}, c)
		c, _ = deck.Draw()
		require.Equal(t, Card{Blue, 5}, c)
	})
}
