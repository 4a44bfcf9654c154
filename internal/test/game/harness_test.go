//go:build scenario

package game

import (
	"fmt"
	"testing"

	"github.com/louisbranch/parlor.space/internal/engine"
	"github.com/louisbranch/parlor.space/internal/systems/outliar"
)

// tableSetup is the deal a scenario script fixes up front, so card picks
// in later steps are never at the mercy of the dealer.
type tableSetup struct {
	ctx   engine.Ctx
	state outliar.State
}

func buildTable(t *testing.T, args map[string]any) *tableSetup {
	t.Helper()

	players, ok := intArg(args, "players")
	if !ok || players < 2 {
		t.Fatalf("table step needs a players count, got %v", args["players"])
	}
	real, _ := args["real"].(string)
	if real == "" {
		t.Fatal("table step needs the real outliar")
	}
	phase, _ := args["phase"].(string)
	if phase == "" {
		phase = outliar.PhaseDecide
	}

	order := make([]string, players)
	names := make(map[string]string, players)
	for i := range players {
		order[i] = fmt.Sprintf("p%d", i)
		names[order[i]] = order[i]
	}
	ctx := engine.Ctx{
		NumPlayers:  players,
		PlayOrder:   order,
		PlayerNames: names,
		IsHost:      true,
	}

	hands, ok := args["hands"].(map[string]any)
	if !ok {
		t.Fatal("table step needs per-player hands")
	}
	vaultRaw, ok := args["vault"].([]any)
	if !ok {
		t.Fatal("table step needs a vault")
	}
	actions, _ := args["actions"].(map[string]any)

	st := outliar.State{
		Phase:   phase,
		Secret:  outliar.Secret{Vault: toInts(t, vaultRaw), RealOutliar: real},
		Players: make(map[string]*outliar.PlayerState, players),
		Pub:     make(map[string]*outliar.PublicState, players),
		Targets: map[string]string{},
	}
	if extra, ok := intArg(args, "extra"); ok {
		st.Extra = extra
	}
	for _, id := range order {
		handRaw, ok := hands[id].([]any)
		if !ok {
			t.Fatalf("table step is missing a hand for %s", id)
		}
		sight := real
		if id == real {
			for _, other := range order {
				if other != id {
					sight = other
					break
				}
			}
		}
		action, _ := actions[id].(string)
		st.Players[id] = &outliar.PlayerState{
			Hand:           toInts(t, handRaw),
			FaceDown:       []int{},
			Action:         outliar.Action(action),
			OutliarInSight: sight,
		}
		st.Pub[id] = &outliar.PublicState{Action: outliar.Action(action)}
	}
	return &tableSetup{ctx: ctx, state: st}
}

func (ts *tableSetup) move(t *testing.T, game *engine.Game[outliar.State], args map[string]any) {
	t.Helper()
	player, _ := args["player"].(string)
	name, _ := args["move"].(string)
	moveArgs, _ := args["args"].([]any)
	next, applied := game.ExecuteMove(ts.state, ts.ctx, player, name, engine.Args(moveArgs), nil)
	if !applied {
		t.Fatalf("%s: move %q %v did not run", player, name, moveArgs)
	}
	ts.state = next
}

func (ts *tableSetup) expect(t *testing.T, kind string, args map[string]any) {
	t.Helper()
	switch kind {
	case "expect_phase":
		phase, _ := args["phase"].(string)
		if ts.state.Phase != phase {
			t.Fatalf("phase = %q, want %q", ts.state.Phase, phase)
		}
	case "expect_round_score":
		player, _ := args["player"].(string)
		want, _ := intArg(args, "value")
		got := ts.state.Pub[player].RoundScore
		if got == nil {
			t.Fatalf("%s has no round score", player)
		}
		if *got != want {
			t.Fatalf("%s round score = %d, want %d", player, *got, want)
		}
	case "expect_score":
		player, _ := args["player"].(string)
		want, _ := intArg(args, "value")
		if got := ts.state.Pub[player].Score; got != want {
			t.Fatalf("%s score = %d, want %d", player, got, want)
		}
	case "expect_extra":
		want, _ := intArg(args, "value")
		if ts.state.Extra != want {
			t.Fatalf("extra pool = %d, want %d", ts.state.Extra, want)
		}
	case "expect_hand":
		player, _ := args["player"].(string)
		cardsRaw, _ := args["cards"].([]any)
		want := toInts(t, cardsRaw)
		got := ts.state.Players[player].Hand
		if len(got) != len(want) {
			t.Fatalf("%s hand = %v, want %v", player, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s hand = %v, want %v", player, got, want)
			}
		}
	case "expect_full_deck":
		ts.expectFullDeck(t)
	default:
		t.Fatalf("unknown expectation %q", kind)
	}
}

// expectFullDeck checks card conservation: hands, face-down piles and the
// vault together always hold the complete deck.
func (ts *tableSetup) expectFullDeck(t *testing.T) {
	t.Helper()
	n := ts.ctx.NumPlayers
	want := map[int]int{outliar.Wildcard: 1, outliar.Blank: n - 1}
	for i := range n {
		want[i] = n
	}

	got := map[int]int{}
	for _, p := range ts.state.Players {
		for _, c := range p.Hand {
			got[c]++
		}
		for _, c := range p.FaceDown {
			got[c]++
		}
	}
	for _, c := range ts.state.Secret.Vault {
		got[c]++
	}

	for card, count := range want {
		if got[card] != count {
			t.Fatalf("card %d appears %d times, want %d", card, got[card], count)
		}
	}
	for card := range got {
		if _, ok := want[card]; !ok {
			t.Fatalf("card %d is not part of the deck", card)
		}
	}
}

func intArg(args map[string]any, key string) (int, bool) {
	switch v := args[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func toInts(t *testing.T, raw []any) []int {
	t.Helper()
	out := make([]int, len(raw))
	for i, v := range raw {
		n, ok := v.(int)
		if !ok {
			t.Fatalf("card list holds %T, want integers", v)
		}
		out[i] = n
	}
	return out
}
