package agent

import (
	"hanabi/game"
	"hanabi/searcher"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func card(colour game.Colour, value int) game.Card {
	return game.Card{Colour: colour, Value: value}
}

func stackedDeck(t *testing.T, top ...game.Card) *game.Deck {
	t.Helper()
	rest := game.FullDeck()
	for _, c := range top {
		for i := range rest {
			if rest[i] == c {
				rest = append(rest[:i], rest[i+1:]...)
				break
			}
		}
	}
	return game.NewDeckFrom(append(append([]game.Card{}, top...), rest...))
}

func act(t *testing.T, a Agent, s *game.State, player int) game.Action {
	t.Helper()
	local, err := s.HideHand(player)
	require.NoError(t, err)
	action, err := a.Act(local)
	require.NoError(t, err)
	ok, err := s.Legal(action)
	require.NoError(t, err)
	require.True(t, ok, "illegal action %s", action)
	return action
}

func TestRegistry(t *testing.T) {
	require.Equal(t, []string{"basic", "model"}, Names())

	basic, err := New("basic", Settings{})
	require.NoError(t, err)
	require.Equal(t, "BaseLine", basic.Name())

	model, err := New("model", Settings{Weights: searcher.DefaultWeights(), Metrics: true})
	require.NoError(t, err)
	require.Equal(t, "Threshold", model.Name())
	_, ok := model.(Reporter)
	require.True(t, ok)

	_, err = New("oracle", Settings{})
	require.ErrorIs(t, err, ErrUnknownAgent)
}

func TestBasic(t *testing.T) {
	// Ann holds Red-3 Blue-1 Green-4 White-2 Yellow-5, bob Red-2 Red-4 Green-1 White-4 Yellow-3.
	deal := func(t *testing.T) (*game.State, *game.Deck) {
		deck := stackedDeck(t,
			card(game.Red, 3), card(game.Blue, 1), card(game.Green, 4), card(game.White, 2), card(game.Yellow, 5),
			card(game.Red, 2), card(game.Red, 4), card(game.Green, 1), card(game.White, 4), card(game.Yellow, 3))
		s, err := game.NewState([]string{"ann", "bob"}, deck)
		require.NoError(t, err)
		return s, deck
	}

	t.Run("hints the playable card of the next player", func(t *testing.T) {
		s, _ := deal(t)
		a := act(t, NewBasic(rand.New(rand.NewSource(1))), s, 0)
		require.True(t, a.Type().IsHint())
		receiver, _ := a.Receiver()
		require.Equal(t, 1, receiver)
		mask, _ := a.Mask()
		require.True(t, mask[2])
	})

	t.Run("plays a card known to be playable", func(t *testing.T) {
		s, deck := deal(t)
		ann := NewBasic(rand.New(rand.NewSource(1)))

		next := func(a game.Action) {
			var err error
			s, err = s.Next(a, deck)
			require.NoError(t, err)
		}
		next(act(t, ann, s, 0))
		colour, err := game.NewColourHint(1, "bob", game.HintColourAction, 0, []bool{false, true, false, false, false}, game.Blue)
		require.NoError(t, err)
		next(colour)
		next(act(t, ann, s, 0))
		value, err := game.NewValueHint(1, "bob", game.HintValueAction, 0, []bool{false, true, false, false, false}, 1)
		require.NoError(t, err)
		next(value)

		a := act(t, ann, s, 0)
		require.Equal(t, game.PlayAction, a.Type())
		pos, _ := a.Position()
		require.Equal(t, 1, pos)
	})

	t.Run("refuses states of other players", func(t *testing.T) {
		s, _ := deal(t)
		local, err := s.HideHand(1)
		require.NoError(t, err)
		_, err = NewBasic(rand.New(rand.NewSource(1))).Act(local)
		require.ErrorIs(t, err, game.ErrIllegalAction)
	})
}

func TestFullGames(t *testing.T) {
	lineups := [][]string{
		{"basic", "basic"},
		{"basic", "basic", "basic", "basic", "basic"},
		{"model", "basic"},
		{"basic", "model", "basic"},
	}
	for i, lineup := range lineups {
		rng := rand.New(rand.NewSource(uint64(i + 1)))
		deck := game.NewDeck(rng)
		s, err := game.NewState(lineup, deck)
		require.NoError(t, err)

		agents := make([]Agent, len(lineup))
		for p, id := range lineup {
			agents[p], err = New(id, Settings{Weights: searcher.DefaultWeights(), Rand: rand.New(rand.NewSource(uint64(10*i + p)))})
			require.NoError(t, err)
		}

		for !s.GameOver() {
			p := s.NextPlayer()
			s, err = s.Next(act(t, agents[p], s, p), deck)
			require.NoError(t, err)
		}
		require.GreaterOrEqual(t, s.Score(), 0)
		require.LessOrEqual(t, s.Score(), game.MaxScore)
	}
}
