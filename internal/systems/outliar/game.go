// Package outliar implements the hidden-role card game played over
// replicated sessions.
//
// One seat secretly holds the outliar role. Cards carry seat indexes;
// each round the table commits to actions, exchanges cards through
// votes, trades and the vault, and scores when the round concludes.
package outliar

import (
	"math/rand"

	"github.com/louisbranch/parlor.space/internal/engine"
	"github.com/louisbranch/parlor.space/internal/random"
)

// New builds the game definition with a deterministic dealer. The same
// seed and play order reproduce every deal and exchange exactly.
func New(seed int64) *engine.Game[State] {
	rng := rand.New(rand.NewSource(seed))
	return &engine.Game[State]{
		Setup: func(ctx engine.Ctx) State {
			return deal(rng, ctx)
		},
		Phases: map[string]engine.Phase[State]{
			PhaseDecide: {
				OnBegin: beginDecide,
				Moves: map[string]engine.MoveFunc[State]{
					"decideAction": decideAction,
				},
			},
			PhaseEmergency: {
				OnBegin: beginEmergency,
			},
			PhaseVote: {
				OnBegin: beginVote,
				Moves: map[string]engine.MoveFunc[State]{
					"vote":         voteMove,
					"voteConclude": voteConclude,
				},
			},
			PhaseForcedTrade: {
				Moves: map[string]engine.MoveFunc[State]{
					"pickPlayer":    forcedTradePickPlayer,
					"pickOtherCard": forcedTradePickOtherCard,
					"pickCard":      forcedTradePickCard,
				},
			},
			PhaseVideocam: {
				OnBegin: beginVideocam,
				Moves: map[string]engine.MoveFunc[State]{
					"pickPlayer":       videocamPickPlayer,
					"videocamConclude": videocamConclude,
				},
			},
			PhaseTrade: {
				OnBegin: beginTrade,
				Moves: map[string]engine.MoveFunc[State]{
					"pickPlayer": tradePickPlayer,
					"pickCard":   tradePickCard,
				},
			},
			PhaseTradeResponse: {
				Moves: map[string]engine.MoveFunc[State]{
					"pickResponse": func(mv *engine.Move[State], args engine.Args) {
						tradePickResponse(mv, args, rng)
					},
				},
			},
			PhaseVault: {
				OnBegin: beginVault,
				Moves: map[string]engine.MoveFunc[State]{
					"vault": func(mv *engine.Move[State], args engine.Args) {
						vaultMove(mv, args, rng)
					},
				},
			},
			PhaseConclude: {
				OnBegin: beginConclude,
				Moves: map[string]engine.MoveFunc[State]{
					"nextRound": func(mv *engine.Move[State], args engine.Args) {
						nextRound(mv, rng)
					},
				},
			},
		},
		MinPlayers: 4,
		MaxPlayers: 8,
	}
}

// NewGame builds the definition with a crypto-derived seed, for live
// tables.
func NewGame() (*engine.Game[State], error) {
	seed, err := random.NewSeed()
	if err != nil {
		return nil, err
	}
	return New(seed), nil
}

// beginDecide wipes the previous round's commitments so every player
// starts the cycle uncommitted.
func beginDecide(mv *engine.Move[State]) {
	g := mv.G
	for _, id := range mv.Ctx.PlayOrder {
		g.Players[id].Action = ""
		g.Players[id].Vote = nil
		g.Pub[id].Action = ""
		g.Pub[id].Vote = nil
		g.Pub[id].Done = false
	}
	g.Targets = map[string]string{}
}

// decideAction records one private commitment. The last commitment
// publishes everyone's choice and advances the round.
func decideAction(mv *engine.Move[State], args engine.Args) {
	g := mv.G
	me, ok := g.Players[mv.PlayerID]
	if !ok || me.Action != "" {
		return
	}
	name, ok := args.String(0)
	if !ok {
		return
	}
	action := Action(name)
	switch action {
	case ActionEmergency, ActionVote, ActionVideocam, ActionTrade, ActionVault:
	default:
		return
	}
	me.Action = action

	for _, id := range mv.Ctx.PlayOrder {
		if g.Players[id].Action == "" {
			return
		}
	}
	for _, id := range mv.Ctx.PlayOrder {
		g.Pub[id].Action = g.Players[id].Action
	}
	g.Phase = PhaseEmergency
}

// beginEmergency routes the round: any emergency call jumps straight to
// conclusion, otherwise the vote cycle starts.
func beginEmergency(mv *engine.Move[State]) {
	for _, id := range mv.Ctx.PlayOrder {
		if mv.G.Pub[id].Action == ActionEmergency {
			mv.G.Phase = PhaseConclude
			return
		}
	}
	mv.G.Phase = PhaseVote
}
