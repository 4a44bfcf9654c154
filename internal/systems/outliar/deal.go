package outliar

import (
	"math/rand"
	"sort"

	"github.com/louisbranch/parlor.space/internal/engine"
)

// buildDeck assembles the full multiset: n copies of each seat index, one
// wildcard and n-1 blanks.
func buildDeck(n int) []int {
	deck := make([]int, 0, n*n+n)
	deck = append(deck, Wildcard)
	for i := range n {
		for range n {
			deck = append(deck, i)
		}
	}
	for range n - 1 {
		deck = append(deck, Blank)
	}
	return deck
}

// deal builds a fresh round: role assignment, sorted hands of n-1 cards,
// and the remainder shuffled into the vault.
func deal(rng *rand.Rand, ctx engine.Ctx) State {
	n := ctx.NumPlayers
	realOutliar := ctx.PlayOrder[rng.Intn(n)]

	players := make(map[string]*PlayerState, n)
	pub := make(map[string]*PublicState, n)
	for _, id := range ctx.PlayOrder {
		players[id] = &PlayerState{FaceDown: []int{}}
		pub[id] = &PublicState{}
	}

	// The outliar is pointed at a random other seat so its own view is
	// indistinguishable from everyone else's.
	for _, id := range ctx.PlayOrder {
		if id != realOutliar {
			players[id].OutliarInSight = realOutliar
			continue
		}
		k := rng.Intn(n - 1)
		if ctx.PlayOrder[k] == id {
			k = n - 1
		}
		players[id].OutliarInSight = ctx.PlayOrder[k]
	}

	deck := buildDeck(n)
	for _, id := range ctx.PlayOrder {
		hand := make([]int, 0, n-1)
		for range n - 1 {
			j := rng.Intn(len(deck))
			hand = append(hand, deck[j])
			deck = append(deck[:j], deck[j+1:]...)
		}
		sort.Ints(hand)
		players[id].Hand = hand
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	return State{
		Phase:   PhaseDecide,
		Secret:  Secret{Vault: deck, RealOutliar: realOutliar},
		Players: players,
		Pub:     pub,
		Targets: map[string]string{},
	}
}

// seatOf reports the player's play-order index, the value its matching
// cards carry.
func seatOf(ctx engine.Ctx, playerID string) int {
	for i, id := range ctx.PlayOrder {
		if id == playerID {
			return i
		}
	}
	return -1
}

// insertSorted places card keeping the hand in ascending order, after any
// existing copies of the same value.
func insertSorted(hand []int, card int) []int {
	i := sort.SearchInts(hand, card+1)
	hand = append(hand, 0)
	copy(hand[i+1:], hand[i:])
	hand[i] = card
	return hand
}

// removeCard takes one copy of card out of the hand.
func removeCard(hand []int, card int) ([]int, bool) {
	for i, c := range hand {
		if c == card {
			return append(hand[:i], hand[i+1:]...), true
		}
	}
	return hand, false
}

// canGiveAway enforces the self-betrayal rule: a card matching the giver's
// own seat may only leave the hand when no other card remains.
func canGiveAway(ctx engine.Ctx, playerID string, hand []int, card int) bool {
	if card != seatOf(ctx, playerID) {
		return true
	}
	for _, c := range hand {
		if c != card {
			return false
		}
	}
	return true
}
