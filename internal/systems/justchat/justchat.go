// Package justchat is the smallest possible game: an empty state and no
// moves. Its sessions exercise nothing but the chat path, which makes it
// the reference table for transport and relay smoke checks.
package justchat

import "github.com/louisbranch/parlor.space/internal/engine"

// State carries no game data. Sessions built on it sync chat only.
type State struct{}

// NewGame builds the chat-only definition.
func NewGame() *engine.Game[State] {
	return &engine.Game[State]{
		Setup: func(ctx engine.Ctx) State { return State{} },
	}
}
