package engine

import (
	"encoding/json"
	"fmt"

	platformerrors "github.com/louisbranch/parlor.space/internal/platform/errors"
)

// Ctx describes the fixed facts of a table, delivered to every participant
// at setup. It is immutable for the lifetime of a session and identical
// across participants except for IsHost.
type Ctx struct {
	NumPlayers  int               `json:"numPlayers"`
	PlayOrder   []string          `json:"playOrder"`
	PlayerNames map[string]string `json:"playerNames"`
	IsHost      bool              `json:"isHost"`
}

// Phaser is implemented by game states that participate in phase-based
// play. The runtime compares the reported phase before and after every
// handler call to detect transitions.
type Phaser interface {
	CurrentPhase() string
}

// Move carries the execution context handed to move handlers and phase
// hooks. G points at the working copy of the state; mutations become
// canonical only when the handler returns normally.
type Move[G any] struct {
	G               *G
	Ctx             Ctx
	PlayerID        string
	SendChatMessage func(payload any)
}

// MoveFunc is a named, parameterized state transition handler. Handlers
// validate their own preconditions and return without mutating on
// game-logic violations; the runtime surfaces no error for those.
type MoveFunc[G any] func(mv *Move[G], args Args)

// HookFunc runs on phase entry or exit. Hooks may mutate state and trigger
// further transitions.
type HookFunc[G any] func(mv *Move[G])

// Phase restricts which moves are legal and carries enter/exit hooks.
type Phase[G any] struct {
	Moves   map[string]MoveFunc[G]
	OnBegin HookFunc[G]
	OnEnd   HookFunc[G]
}

// Game is a declarative description of a state machine, supplied once per
// session and never mutated afterwards.
type Game[G any] struct {
	// Setup constructs the canonical state when the host session starts.
	Setup func(ctx Ctx) G

	// Moves is the default move set, consulted when the active phase does
	// not define the requested move.
	Moves map[string]MoveFunc[G]

	// Phases optionally names the game's phases. The state's CurrentPhase
	// value selects the active entry.
	Phases map[string]Phase[G]

	// PlayerView computes the redacted copy delivered to a participant.
	// When nil the default projection applies: the "secret" field is
	// stripped and the "players" map is narrowed to the viewer.
	PlayerView func(state G, ctx Ctx, playerID string) G

	// Clone produces the working copy handlers mutate. When nil the state
	// is cloned through a JSON round-trip.
	Clone func(state G) G

	MinPlayers int
	MaxPlayers int
}

// Validate rejects structurally broken definitions at construction time, so
// misregistered moves fail early instead of silently dropping at call time.
func (g *Game[G]) Validate() error {
	if g.Setup == nil {
		return platformerrors.New(platformerrors.CodeGameSetupMissing, "game definition has no setup")
	}
	for name := range g.Moves {
		if name == "" {
			return platformerrors.New(platformerrors.CodeGameMoveNameEmpty, "default move set has an empty name")
		}
	}
	for phase, cfg := range g.Phases {
		if phase == "" {
			return platformerrors.New(platformerrors.CodeGamePhaseNameEmpty, "phase map has an empty name")
		}
		for name := range cfg.Moves {
			if name == "" {
				return platformerrors.WithMetadata(platformerrors.CodeGameMoveNameEmpty,
					"phase move set has an empty name", map[string]string{"phase": phase})
			}
		}
	}
	if g.MinPlayers < 0 || g.MaxPlayers < 0 {
		return platformerrors.New(platformerrors.CodeGamePlayerBoundsWrong, "player bounds must be non-negative")
	}
	if g.MaxPlayers > 0 && g.MinPlayers > g.MaxPlayers {
		return platformerrors.WithMetadata(platformerrors.CodeGamePlayerBoundsWrong,
			"min players exceeds max players", map[string]string{
				"min": fmt.Sprint(g.MinPlayers),
				"max": fmt.Sprint(g.MaxPlayers),
			})
	}
	return nil
}

// moveIn resolves a move name against the active phase first, falling back
// to the default move set. A nil result means the action is dropped.
func (g *Game[G]) moveIn(phase, name string) MoveFunc[G] {
	if cfg, ok := g.Phases[phase]; ok {
		if fn, ok := cfg.Moves[name]; ok {
			return fn
		}
	}
	return g.Moves[name]
}

func (g *Game[G]) cloneState(state G) (G, error) {
	if g.Clone != nil {
		return g.Clone(state), nil
	}
	var out G
	data, err := json.Marshal(state)
	if err != nil {
		return out, fmt.Errorf("clone state: %w", err)
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("clone state: %w", err)
	}
	return out, nil
}

// PhaseOf reports the state's current phase, or "" for phase-less games.
func PhaseOf[G any](state *G) string {
	if p, ok := any(state).(Phaser); ok {
		return p.CurrentPhase()
	}
	return ""
}
