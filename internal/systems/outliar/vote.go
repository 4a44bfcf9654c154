package outliar

import "github.com/louisbranch/parlor.space/internal/engine"

func voters(mv *engine.Move[State]) []string {
	var out []string
	for _, id := range mv.Ctx.PlayOrder {
		if mv.G.Players[id].Action == ActionVote {
			out = append(out, id)
		}
	}
	return out
}

// beginVote dispatches on voter count: nobody voting skips ahead, a lone
// voter earns the forced trade instead of an accusation round.
func beginVote(mv *engine.Move[State]) {
	mv.G.Targets = map[string]string{}
	switch len(voters(mv)) {
	case 0:
		mv.G.Phase = PhaseVideocam
	case 1:
		mv.G.Phase = PhaseForcedTrade
	}
}

// voteMove records a voter's accusation: the value of a card from their
// own hand, picked by index. The last accusation publishes them all.
func voteMove(mv *engine.Move[State], args engine.Args) {
	g := mv.G
	me, ok := g.Players[mv.PlayerID]
	if !ok || me.Action != ActionVote {
		return
	}
	cardIndex, ok := args.Int(0)
	if !ok || cardIndex < 0 || cardIndex >= len(me.Hand) {
		return
	}
	card := me.Hand[cardIndex]
	me.Vote = &card

	for _, id := range voters(mv) {
		if g.Players[id].Vote == nil {
			return
		}
	}
	for _, id := range voters(mv) {
		v := *g.Players[id].Vote
		g.Pub[id].Vote = &v
	}
}

// tallyVotes counts published accusations. A wildcard accusation backs
// every seat at once and a blank abstains.
func tallyVotes(ctx engine.Ctx, pub map[string]*PublicState) map[int]int {
	counts := make(map[int]int)
	for _, id := range ctx.PlayOrder {
		v := pub[id].Vote
		if v == nil {
			continue
		}
		switch *v {
		case Wildcard:
			for i := range ctx.NumPlayers {
				counts[i]++
			}
		case Blank:
		default:
			counts[*v]++
		}
	}
	return counts
}

// conclusiveAccusation reports the accused seat when one seat uniquely
// holds at least numPlayers-1 votes.
func conclusiveAccusation(ctx engine.Ctx, counts map[int]int) (int, bool) {
	maxVotes, leaders, seat := 0, 0, -1
	for c, count := range counts {
		switch {
		case count > maxVotes:
			maxVotes, leaders, seat = count, 1, c
		case count == maxVotes:
			leaders++
		}
	}
	if maxVotes >= ctx.NumPlayers-1 && leaders == 1 {
		return seat, true
	}
	return -1, false
}

// voteConclude settles a published vote: a conclusive accusation ends the
// round, anything else clears the ballots and play continues.
func voteConclude(mv *engine.Move[State], args engine.Args) {
	g := mv.G
	vs := voters(mv)
	if len(vs) < 2 {
		return
	}
	for _, id := range vs {
		if g.Pub[id].Vote == nil {
			return
		}
	}

	if _, ok := conclusiveAccusation(mv.Ctx, tallyVotes(mv.Ctx, g.Pub)); ok {
		// ballots stay published; conclusion re-reads them for payouts
		g.Phase = PhaseConclude
		return
	}

	for _, id := range mv.Ctx.PlayOrder {
		g.Players[id].Vote = nil
		g.Pub[id].Vote = nil
		if g.Players[id].Action == ActionVote {
			g.Pub[id].Done = true
		}
	}
	g.Phase = PhaseVideocam
}

// forcedTradePickPlayer lets the lone voter pick a victim and inspect
// their whole hand.
func forcedTradePickPlayer(mv *engine.Move[State], args engine.Args) {
	g := mv.G
	me, ok := g.Players[mv.PlayerID]
	if !ok || me.Action != ActionVote || len(me.FaceDown) > 0 {
		return
	}
	target, ok := args.String(0)
	if !ok || target == mv.PlayerID {
		return
	}
	victim, ok := g.Players[target]
	if !ok {
		return
	}
	g.Targets[mv.PlayerID] = target
	me.HandInSight = append([]int(nil), victim.Hand...)
}

// forcedTradePickOtherCard takes one card out of the victim's hand,
// face down.
func forcedTradePickOtherCard(mv *engine.Move[State], args engine.Args) {
	g := mv.G
	me, ok := g.Players[mv.PlayerID]
	if !ok || me.Action != ActionVote || len(me.FaceDown) > 0 {
		return
	}
	targetID, ok := g.Targets[mv.PlayerID]
	if !ok {
		return
	}
	card, ok := args.Int(0)
	if !ok {
		return
	}
	victim := g.Players[targetID]
	hand, found := removeCard(victim.Hand, card)
	if !found {
		return
	}
	victim.Hand = hand
	me.FaceDown = []int{card}
	g.Pub[mv.PlayerID].FaceDownCount = 1
	me.HandInSight = nil
}

// forcedTradePickCard gives one of the voter's own cards back to the
// victim and pockets the face-down card, then play continues.
func forcedTradePickCard(mv *engine.Move[State], args engine.Args) {
	g := mv.G
	me, ok := g.Players[mv.PlayerID]
	if !ok || me.Action != ActionVote || len(me.FaceDown) == 0 {
		return
	}
	targetID, ok := g.Targets[mv.PlayerID]
	if !ok {
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

	victim := g.Players[targetID]
	victim.Hand = insertSorted(victim.Hand, card)
	me.Hand = insertSorted(me.Hand, me.FaceDown[0])
	me.FaceDown = []int{}
	g.Pub[mv.PlayerID].FaceDownCount = 0
	delete(g.Targets, mv.PlayerID)
	g.Phase = PhaseVideocam
}
