package session

import (
	"encoding/json"
	"log"

	"github.com/louisbranch/parlor.space/internal/engine"
	"github.com/louisbranch/parlor.space/internal/transport"
)

// Peer holds a projected replica of the session state. It never computes
// game logic locally; moves and chat are forwarded to the host, and each
// sync replaces the replica wholesale.
type Peer[G any] struct {
	core[G]
	state    G
	hasState bool
}

func newPeer[G any](game *engine.Game[G], tr transport.Transport, cancel func(), opts options, playerID string, ctx engine.Ctx) *Peer[G] {
	return &Peer[G]{
		core: core[G]{
			game:     game,
			tr:       tr,
			opts:     opts,
			playerID: playerID,
			ctx:      ctx,
			cancel:   cancel,
		},
	}
}

func (p *Peer[G]) State() (G, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.hasState
}

func (p *Peer[G]) Move(name string, args ...any) {
	p.send(Envelope{
		Type:     TypeAction,
		PlayerID: p.playerID,
		Args:     append([]any{name}, args...),
	})
}

func (p *Peer[G]) SendChatMessage(payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("session: encode chat payload: %v", err)
		return
	}
	p.send(Envelope{
		Type:     TypeChat,
		PlayerID: p.playerID,
		Message:  data,
	})
}

func (p *Peer[G]) handle(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("session: drop malformed envelope: %v", err)
		return
	}
	if env.Type != TypeSync {
		return
	}
	if env.PlayerID != "" && env.PlayerID != p.playerID {
		return
	}
	if len(env.State) == 0 {
		return
	}
	var st G
	if err := json.Unmarshal(env.State, &st); err != nil {
		log.Printf("session: drop sync with undecodable state: %v", err)
		return
	}

	p.mu.Lock()
	prev := ""
	if p.hasState {
		prev = engine.PhaseOf(&p.state)
	}
	p.state = st
	p.hasState = true
	p.chat = MergeChat(p.chat, env.ChatMessages)
	cur := engine.PhaseOf(&p.state)
	p.observePhaseLocked(prev, cur)
	p.mu.Unlock()
	p.fire(note{updated: true, phaseChange: prev != cur, prev: prev, next: cur})
}
