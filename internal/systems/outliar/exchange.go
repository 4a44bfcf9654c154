package outliar

import (
	"math/rand"

	"github.com/louisbranch/parlor.space/internal/engine"
)

func choosers(mv *engine.Move[State], action Action) []string {
	var out []string
	for _, id := range mv.Ctx.PlayOrder {
		if mv.G.Players[id].Action == action {
			out = append(out, id)
		}
	}
	return out
}

func beginVideocam(mv *engine.Move[State]) {
	mv.G.Targets = map[string]string{}
	if len(choosers(mv, ActionVideocam)) == 0 {
		mv.G.Phase = PhaseTrade
	}
}

// videocamPickPlayer records a watcher's target. Hands are revealed only
// once every watcher has committed, so nobody peeks early.
func videocamPickPlayer(mv *engine.Move[State], args engine.Args) {
	g := mv.G
	me, ok := g.Players[mv.PlayerID]
	if !ok || me.Action != ActionVideocam {
		return
	}
	target, ok := args.String(0)
	if !ok || target == mv.PlayerID {
		return
	}
	if _, ok := g.Players[target]; !ok {
		return
	}
	g.Targets[mv.PlayerID] = target

	watchers := choosers(mv, ActionVideocam)
	for _, id := range watchers {
		if _, ok := g.Targets[id]; !ok {
			return
		}
	}
	for _, id := range watchers {
		g.Players[id].HandInSight = append([]int(nil), g.Players[g.Targets[id]].Hand...)
	}
}

// videocamConclude is a watcher's acknowledgment that they are done
// looking. The phase moves on once every hand is out of sight again.
func videocamConclude(mv *engine.Move[State], args engine.Args) {
	g := mv.G
	me, ok := g.Players[mv.PlayerID]
	if !ok || me.Action != ActionVideocam || me.HandInSight == nil {
		return
	}
	me.HandInSight = nil

	for _, id := range mv.Ctx.PlayOrder {
		if g.Players[id].HandInSight != nil {
			return
		}
	}
	g.Phase = PhaseTrade
}

func beginTrade(mv *engine.Move[State]) {
	mv.G.Targets = map[string]string{}
	if len(choosers(mv, ActionTrade)) == 0 {
		mv.G.Phase = PhaseVault
	}
}

func tradePickPlayer(mv *engine.Move[State], args engine.Args) {
	g := mv.G
	me, ok := g.Players[mv.PlayerID]
	if !ok || me.Action != ActionTrade {
		return
	}
	if _, picked := g.Targets[mv.PlayerID]; picked {
		return
	}
	target, ok := args.String(0)
	if !ok || target == mv.PlayerID {
		return
	}
	if _, ok := g.Players[target]; !ok {
		return
	}
	g.Targets[mv.PlayerID] = target
}

// tradePickCard places the trader's offer face down. When the last
// trader is down the response round starts.
func tradePickCard(mv *engine.Move[State], args engine.Args) {
	g := mv.G
	me, ok := g.Players[mv.PlayerID]
	if !ok || me.Action != ActionTrade || len(me.FaceDown) > 0 {
		return
	}
	if _, picked := g.Targets[mv.PlayerID]; !picked {
		return
	}
	card, ok := args.Int(0)
	if !ok || !canGiveAway(mv.Ctx, mv.PlayerID, me.Hand, card) {
		return
	}
	hand, found := removeCard(me.Hand, card)
	if !found {
		return
	}
	me.Hand = hand
	me.FaceDown = []int{card}
	g.Pub[mv.PlayerID].FaceDownCount = 1

	for _, id := range choosers(mv, ActionTrade) {
		if _, picked := g.Targets[id]; !picked || len(g.Players[id].FaceDown) == 0 {
			return
		}
	}
	g.Phase = PhaseTradeResponse
}

// tradePickResponse returns one card per incoming trade, selected by hand
// index. The responder never learns which card came from which trader;
// the assignment is shuffled before the swap.
func tradePickResponse(mv *engine.Move[State], args engine.Args, rng *rand.Rand) {
	g := mv.G
	me, ok := g.Players[mv.PlayerID]
	if !ok {
		return
	}
	indexes, ok := args.Ints(0)
	if !ok {
		return
	}

	var sources []string
	for _, id := range mv.Ctx.PlayOrder {
		if g.Players[id].Action == ActionTrade && g.Targets[id] == mv.PlayerID {
			sources = append(sources, id)
		}
	}
	if len(sources) == 0 || len(indexes) != len(sources) {
		return
	}
	for i, idx := range indexes {
		if idx < 0 || idx >= len(me.Hand) {
			return
		}
		if i > 0 && idx <= indexes[i-1] {
			return
		}
	}

	// Self-betrayal rule over a multi-card selection: own-seat cards may
	// only be handed out when no unselected card could go instead.
	seat := seatOf(mv.Ctx, mv.PlayerID)
	ownSelected := false
	for _, idx := range indexes {
		if me.Hand[idx] == seat {
			ownSelected = true
			break
		}
	}
	if ownSelected {
		selected := make(map[int]bool, len(indexes))
		for _, idx := range indexes {
			selected[idx] = true
		}
		for i, c := range me.Hand {
			if !selected[i] && c != seat {
				return
			}
		}
	}

	responses := make([]int, 0, len(indexes))
	for i := len(indexes) - 1; i >= 0; i-- {
		idx := indexes[i]
		card := me.Hand[idx]
		me.Hand = append(me.Hand[:idx], me.Hand[idx+1:]...)
		at := rng.Intn(len(responses) + 1)
		responses = append(responses, 0)
		copy(responses[at+1:], responses[at:])
		responses[at] = card
	}

	for i, sourceID := range sources {
		source := g.Players[sourceID]
		source.Hand = insertSorted(source.Hand, responses[i])
		me.Hand = insertSorted(me.Hand, source.FaceDown[0])
		source.FaceDown = []int{}
		g.Pub[sourceID].FaceDownCount = 0
		delete(g.Targets, sourceID)
	}

	for _, id := range mv.Ctx.PlayOrder {
		if g.Pub[id].FaceDownCount > 0 {
			return
		}
	}
	g.Phase = PhaseVault
}

func beginVault(mv *engine.Move[State]) {
	mv.G.Targets = map[string]string{}
	if len(choosers(mv, ActionVault)) == 0 {
		mv.G.Phase = PhaseDecide
	}
}

// vaultMove swaps one hand card against a uniformly random vault slot;
// the giveaway lands exactly where the drawn card sat.
func vaultMove(mv *engine.Move[State], args engine.Args, rng *rand.Rand) {
	g := mv.G
	me, ok := g.Players[mv.PlayerID]
	if !ok || me.Action != ActionVault || g.Pub[mv.PlayerID].Done {
		return
	}
	if len(g.Secret.Vault) == 0 {
		return
	}
	card, ok := args.Int(0)
	if !ok || !canGiveAway(mv.Ctx, mv.PlayerID, me.Hand, card) {
		return
	}
	hand, found := removeCard(me.Hand, card)
	if !found {
		return
	}
	me.Hand = hand

	slot := rng.Intn(len(g.Secret.Vault))
	received := g.Secret.Vault[slot]
	me.Hand = insertSorted(me.Hand, received)
	g.Secret.Vault[slot] = card
	g.Pub[mv.PlayerID].Done = true

	for _, id := range choosers(mv, ActionVault) {
		if !g.Pub[id].Done {
			return
		}
	}
	g.Phase = PhaseDecide
}
