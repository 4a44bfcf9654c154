package outliar

import (
	"math/rand"

	"github.com/louisbranch/parlor.space/internal/engine"
)

func intp(v int) *int {
	return &v
}

// beginConclude reveals the outliar to itself and settles the round's
// payouts, either for an emergency call or for a conclusive vote.
func beginConclude(mv *engine.Move[State]) {
	g := mv.G
	n := mv.Ctx.NumPlayers
	realOutliar := g.Secret.RealOutliar
	g.Players[realOutliar].OutliarInSight = realOutliar

	emergency := false
	for _, id := range mv.Ctx.PlayOrder {
		if g.Pub[id].Action == ActionEmergency {
			emergency = true
			break
		}
	}

	if emergency {
		var falseCallers []string
		for _, id := range mv.Ctx.PlayOrder {
			if g.Players[id].Action == ActionEmergency && id != realOutliar {
				falseCallers = append(falseCallers, id)
			}
		}
		punish := 0
		if len(falseCallers) > 0 {
			punish = (n - 1 + len(falseCallers) - 1) / len(falseCallers)
			// the rounding surplus feeds the carry-over pool
			g.Extra += punish*len(falseCallers) - (n - 1)
		}
		for _, id := range mv.Ctx.PlayOrder {
			switch {
			case id == realOutliar:
				g.Pub[id].RoundScore = intp(n - 1)
			case len(falseCallers) == 0:
				g.Pub[id].RoundScore = intp(-1)
			case g.Players[id].Action != ActionEmergency:
				g.Pub[id].RoundScore = intp(0)
			default:
				g.Pub[id].RoundScore = intp(-punish)
			}
		}
		return
	}

	seat, ok := conclusiveAccusation(mv.Ctx, tallyVotes(mv.Ctx, g.Pub))
	if !ok || seat < 0 || seat >= len(mv.Ctx.PlayOrder) {
		return
	}
	caught := mv.Ctx.PlayOrder[seat] == realOutliar
	for _, id := range mv.Ctx.PlayOrder {
		switch {
		case id == realOutliar && caught:
			g.Pub[id].RoundScore = intp(-(n - 1))
		case id == realOutliar:
			g.Pub[id].RoundScore = intp(n - 1)
		case caught:
			g.Pub[id].RoundScore = intp(1)
		default:
			g.Pub[id].RoundScore = intp(-1)
		}
	}
}

// nextRound folds round scores into totals, pays the +1 bonus to the
// whole table once the carry-over pool reaches numPlayers, and deals
// again with score and pool preserved.
func nextRound(mv *engine.Move[State], rng *rand.Rand) {
	g := mv.G
	n := mv.Ctx.NumPlayers
	bonus := 0
	if g.Extra >= n {
		bonus = 1
	}
	for _, id := range mv.Ctx.PlayOrder {
		pub := g.Pub[id]
		if pub.RoundScore != nil {
			pub.Score += *pub.RoundScore
		}
		pub.Score += bonus
		pub.RoundScore = nil
		pub.Action = ""
		pub.Vote = nil
		pub.FaceDownCount = 0
		pub.Done = false
	}
	if bonus == 1 {
		g.Extra -= n
	}

	fresh := deal(rng, mv.Ctx)
	g.Phase = fresh.Phase
	g.Secret = fresh.Secret
	g.Players = fresh.Players
	g.Targets = fresh.Targets
}
