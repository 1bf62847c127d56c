package searcher

import (
	"hanabi/experiments/metrics"
	"hanabi/game"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

// frozen is a deep copy of everything a branch may touch.
type frozen struct {
	fireworks [game.NumColours]int
	hands     [][]int
	spent     [][]bool
	beliefs   [][][game.NumIdentities]int
	needed    [game.NumIdentities]int
	hints     int
	fuse      int
	player    int
}

func freeze(s *sim) frozen {
	f := frozen{
		fireworks: s.fireworks,
		needed:    s.needed,
		hints:     s.hints,
		fuse:      s.fuse,
		player:    s.player,
	}
	for p := range s.hands {
		f.hands = append(f.hands, append([]int(nil), s.hands[p]...))
		f.spent = append(f.spent, append([]bool(nil), s.spent[p]...))
		f.beliefs = append(f.beliefs, append([][game.NumIdentities]int(nil), s.beliefs[p]...))
	}
	return f
}

func newTestSim(t *testing.T, s *game.State, seed uint64) (*sim, *game.State) {
	t.Helper()
	local, err := s.HideHand(s.NextPlayer())
	require.NoError(t, err)
	k, err := NewKnowledge(local)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	return newSim(local, k, DefaultWeights(), rng, metrics.NewDummyCollector()), local
}

// randomGame plays moves random legal actions from a seeded deal.
func randomGame(t *testing.T, players, moves int, seed uint64) (*game.State, *game.Deck) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	deck := game.NewDeck(rng)
	s, err := game.NewState([]string{"a", "b", "c", "d", "e"}[:players], deck)
	require.NoError(t, err)
	for i := 0; i < moves && !s.GameOver(); i++ {
		actions := s.LegalActions()
		s, err = s.Next(actions[rng.Intn(len(actions))], deck)
		require.NoError(t, err)
	}
	return s, deck
}

func TestBranchesRestoreState(t *testing.T) {
	for seed := uint64(1); seed <= 6; seed++ {
		players := 2 + int(seed)%2
		s, _ := randomGame(t, players, int(seed)*4, seed)
		if s.GameOver() {
			continue
		}
		sim, _ := newTestSim(t, s, seed)
		before := freeze(sim)

		t.Run("full search", func(t *testing.T) {
			sim.search(players)
			require.Equal(t, before, freeze(sim))
		})

		t.Run("each branch", func(t *testing.T) {
			for slot := 0; slot < sim.size; slot++ {
				sim.play(slot, 2)
				require.Equal(t, before, freeze(sim), "play %d", slot)
				sim.discard(slot, 2)
				require.Equal(t, before, freeze(sim), "discard %d", slot)
				for other := 0; other < players; other++ {
					if other == sim.index {
						continue
					}
					sim.hint(other, slot, game.HintColourAction, 2)
					require.Equal(t, before, freeze(sim), "colour hint to %d about %d", other, slot)
					sim.hint(other, slot, game.HintValueAction, 2)
					require.Equal(t, before, freeze(sim), "value hint to %d about %d", other, slot)
				}
			}
		})
	}
}

func TestMutators(t *testing.T) {
	s, _ := twoPlayerGame(t)
	sim, _ := newTestSim(t, s, 1)
	red := func(v int) int { return card(game.Red, v).Index() }

	t.Run("losing every copy of a needed card cuts off its colour", func(t *testing.T) {
		before := freeze(sim)
		undoFirst := sim.lose(red(2))
		require.Equal(t, 1, sim.needed[red(2)])
		require.Equal(t, 2, sim.needed[red(3)])

		undoSecond := sim.lose(red(2))
		for v := 2; v <= game.MaxValue; v++ {
			require.Zero(t, sim.needed[red(v)])
		}
		require.Equal(t, 3, sim.needed[red(1)])

		undoSecond()
		undoFirst()
		require.Equal(t, before, freeze(sim))
	})

	t.Run("completing a firework returns a hint only below the limit", func(t *testing.T) {
		sim.fireworks[game.Red] = 4
		defer func() { sim.fireworks[game.Red] = 0 }()

		require.Equal(t, game.MaxHints, sim.hints)
		undo := sim.extend(red(5))
		require.Equal(t, game.MaxHints, sim.hints)
		require.Equal(t, 5, sim.fireworks[game.Red])
		undo()

		sim.hints = 3
		undo = sim.extend(red(5))
		require.Equal(t, 4, sim.hints)
		undo()
		require.Equal(t, 3, sim.hints)
		sim.hints = game.MaxHints
	})

	t.Run("hints are restored on every slot", func(t *testing.T) {
		before := freeze(sim)
		undo := sim.inform(1, red(2), game.HintColourAction)
		require.Zero(t, sim.beliefs[1][0][card(game.Blue, 1).Index()])
		require.Zero(t, sim.beliefs[1][2][red(3)])
		undo()
		require.Equal(t, before, freeze(sim))
	})
}

func TestFallback(t *testing.T) {
	t.Run("value hint to the next player", func(t *testing.T) {
		s, _ := twoPlayerGame(t)
		sim, local := newTestSim(t, s, 1)

		a, err := sim.fallback(local, "ann")
		require.NoError(t, err)
		require.Equal(t, game.HintValueAction, a.Type())
		receiver, _ := a.Receiver()
		require.Equal(t, 1, receiver)
		value, _ := a.Value()
		require.Equal(t, 2, value)
		mask, _ := a.Mask()
		require.Equal(t, []bool{true, false, true, false, false}, mask)

		ok, err := local.Legal(a)
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("discard without hint tokens", func(t *testing.T) {
		s, deck := twoPlayerGame(t)
		for i := 0; i < game.MaxHints; i++ {
			s = advance(t, s, firstHint(t, s), deck)
		}
		require.Zero(t, s.HintTokens())
		sim, local := newTestSim(t, s, 1)

		a, err := sim.fallback(local, "ann")
		require.NoError(t, err)
		require.Equal(t, game.DiscardAction, a.Type())
		pos, _ := a.Position()
		require.Equal(t, 0, pos)
	})
}

func TestSearch(t *testing.T) {
	t.Run("plays a card hinted to be playable", func(t *testing.T) {
		s, deck := twoPlayerGame(t)
		s = advance(t, s, firstHint(t, s), deck)
		hint, err := game.NewValueHint(1, "bob", game.HintValueAction, 0, []bool{false, true, false, false, false}, 1)
		require.NoError(t, err)
		s = advance(t, s, hint, deck)

		local, err := s.HideHand(0)
		require.NoError(t, err)
		k, err := NewKnowledge(local)
		require.NoError(t, err)

		searcher := NewSearcher(WithRand(rand.New(rand.NewSource(3))), WithMetrics())
		a, metric, err := searcher.Search(local, k)
		require.NoError(t, err)
		require.Equal(t, game.PlayAction, a.Type())
		pos, _ := a.Position()
		require.Equal(t, 1, pos)
		require.Equal(t, 2, metric.Depth)
		require.Positive(t, metric.Nodes)
		require.Positive(t, metric.Leaves)
	})

	t.Run("every decision is legal", func(t *testing.T) {
		for seed := uint64(1); seed <= 4; seed++ {
			players := 2 + int(seed)%2
			rng := rand.New(rand.NewSource(seed))
			deck := game.NewDeck(rng)
			s, err := game.NewState([]string{"a", "b", "c"}[:players], deck)
			require.NoError(t, err)

			searcher := NewSearcher(WithRand(rng))
			trackers := make([]*Knowledge, players)
			for !s.GameOver() {
				p := s.NextPlayer()
				local, err := s.HideHand(p)
				require.NoError(t, err)
				if trackers[p] == nil {
					trackers[p], err = NewKnowledge(local)
				} else {
					err = trackers[p].Update(local)
				}
				require.NoError(t, err)

				a, _, err := searcher.Search(local, trackers[p])
				require.NoError(t, err)
				ok, err := s.Legal(a)
				require.NoError(t, err)
				require.True(t, ok, "illegal decision %s", a)
				s, err = s.Next(a, deck)
				require.NoError(t, err)
			}
			require.GreaterOrEqual(t, s.Score(), 0)
		}
	})

	t.Run("looks no further than the end of the game", func(t *testing.T) {
		deck := game.NewDeck(rand.New(rand.NewSource(5)))
		s, err := game.NewState([]string{"a", "b", "c"}, deck)
		require.NoError(t, err)

		// Discards never burn a fuse, so the deck runs out before the game ends.
		for s.FinalActionOrder() == -1 {
			if s.HintTokens() == game.MaxHints {
				s = advance(t, s, firstHint(t, s), deck)
				continue
			}
			discard, err := game.NewCardAction(s.NextPlayer(), "x", game.DiscardAction, 0)
			require.NoError(t, err)
			s = advance(t, s, discard, deck)
		}
		require.Zero(t, deck.Len())

		searcher := NewSearcher(WithRand(rand.New(rand.NewSource(5))), WithMetrics())
		for !s.GameOver() {
			local, err := s.HideHand(s.NextPlayer())
			require.NoError(t, err)
			k, err := NewKnowledge(local)
			require.NoError(t, err)

			a, metric, err := searcher.Search(local, k)
			require.NoError(t, err)
			require.Equal(t, s.FinalActionOrder()-s.Order(), metric.Depth)
			require.Less(t, metric.Depth, s.NumPlayers()+1)
			s = advance(t, s, a, deck)
		}
	})

	t.Run("rejects states it cannot search", func(t *testing.T) {
		s, deck := twoPlayerGame(t)
		local, err := s.HideHand(0)
		require.NoError(t, err)
		k, err := NewKnowledge(local)
		require.NoError(t, err)
		searcher := NewSearcher()

		_, _, err = searcher.Search(s, k)
		require.ErrorIs(t, err, game.ErrIllegalAction)

		bob, err := s.HideHand(1)
		require.NoError(t, err)
		_, _, err = searcher.Search(bob, k)
		require.ErrorIs(t, err, game.ErrIllegalAction)

		s = advance(t, s, firstHint(t, s), deck)
		s = advance(t, s, firstHint(t, s), deck)
		stale, err := s.HideHand(0)
		require.NoError(t, err)
		_, _, err = searcher.Search(stale, k)
		require.ErrorIs(t, err, game.ErrIllegalAction)
	})
}

func TestNewSearcher(t *testing.T) {
	s := NewSearcher()
	require.Equal(t, DefaultWeights(), s.Weights())

	w := DefaultWeights()
	w.Caution = 0.1
	require.Equal(t, 0.1, NewSearcher(WithWeights(w)).Weights().Caution)

	w.Front = 1.5
	require.Panics(t, func() { NewSearcher(WithWeights(w)) })
}
