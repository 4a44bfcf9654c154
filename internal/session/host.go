package session

import (
	"bytes"
	"context"
	"encoding/json"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/parlor.space/internal/engine"
	"github.com/louisbranch/parlor.space/internal/id"
	"github.com/louisbranch/parlor.space/internal/transport"
)

// Host owns the canonical state of a session. Every mutation funnels
// through its lock, so there is exactly one writer no matter how many
// peers forward actions.
type Host[G any] struct {
	core[G]
	tracer trace.Tracer
	state  G
}

func newHost[G any](game *engine.Game[G], tr transport.Transport, cancel func(), opts options, playerID string, ctx engine.Ctx) (*Host[G], note) {
	h := &Host[G]{
		core: core[G]{
			game:     game,
			tr:       tr,
			opts:     opts,
			playerID: playerID,
			ctx:      ctx,
			cancel:   cancel,
		},
		tracer: otel.Tracer("github.com/louisbranch/parlor.space/internal/session"),
	}
	h.mu.Lock()
	h.state = game.Setup(ctx)
	if st, ok := game.EnterInitial(h.state, ctx, playerID, func(payload any) {
		h.stampChatLocked(playerID, payload)
	}); ok {
		h.state = st
	}
	cur := engine.PhaseOf(&h.state)
	h.observePhaseLocked("", cur)
	h.broadcastLocked()
	h.mu.Unlock()
	return h, note{updated: true, phaseChange: cur != "", next: cur}
}

func (h *Host[G]) State() (G, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state, true
}

func (h *Host[G]) Move(name string, args ...any) {
	h.execute(h.playerID, name, engine.Args(args))
}

func (h *Host[G]) SendChatMessage(payload any) {
	h.mu.Lock()
	h.stampChatLocked(h.playerID, payload)
	h.broadcastLocked()
	h.mu.Unlock()
	h.fire(note{updated: true})
}

// handle processes one relayed envelope. Anything that does not decode
// into a known shape is dropped without feedback.
func (h *Host[G]) handle(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		log.Printf("session: drop malformed envelope: %v", err)
		return
	}
	switch env.Type {
	case TypeAction:
		if env.PlayerID == "" || len(env.Args) == 0 {
			return
		}
		name, ok := env.Args[0].(string)
		if !ok {
			return
		}
		h.execute(env.PlayerID, name, engine.Args(env.Args[1:]))
	case TypeChat:
		if env.PlayerID == "" || len(env.Message) == 0 {
			return
		}
		h.mu.Lock()
		h.stampChatLocked(env.PlayerID, json.RawMessage(env.Message))
		h.broadcastLocked()
		h.mu.Unlock()
		h.fire(note{updated: true})
	}
}

func (h *Host[G]) execute(playerID, name string, args engine.Args) {
	h.mu.Lock()
	n := h.executeLocked(playerID, name, args)
	h.mu.Unlock()
	h.fire(n)
}

// executeLocked applies one move and rebroadcasts when anything observable
// changed. Change detection compares serialized state, the same form peers
// receive, so spurious syncs never go out.
func (h *Host[G]) executeLocked(playerID, name string, args engine.Args) note {
	before, err := json.Marshal(h.state)
	if err != nil {
		log.Printf("session: serialize state before %q: %v", name, err)
		return note{}
	}
	prev := engine.PhaseOf(&h.state)
	chatBefore := len(h.chat)

	_, span := h.tracer.Start(context.Background(), "session.move",
		trace.WithAttributes(
			attribute.String("session.move", name),
			attribute.String("session.player", playerID),
		))
	next, applied := h.game.ExecuteMove(h.state, h.ctx, playerID, name, args, func(payload any) {
		h.stampChatLocked(playerID, payload)
	})
	span.SetAttributes(attribute.Bool("session.applied", applied))
	span.End()
	if applied {
		h.state = next
	}

	after, err := json.Marshal(h.state)
	if err != nil {
		log.Printf("session: serialize state after %q: %v", name, err)
		return note{}
	}
	if bytes.Equal(before, after) && len(h.chat) == chatBefore {
		return note{}
	}
	cur := engine.PhaseOf(&h.state)
	h.observePhaseLocked(prev, cur)
	h.broadcastLocked()
	return note{updated: true, phaseChange: prev != cur, prev: prev, next: cur}
}

// stampChatLocked mints the message identity. Relayed chat is re-stamped
// here too, so a peer cannot forge a duplicate ID to suppress delivery.
func (h *Host[G]) stampChatLocked(sender string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("session: encode chat payload from %s: %v", sender, err)
		return
	}
	msgID, err := id.NewID()
	if err != nil {
		log.Printf("session: mint chat id: %v", err)
		return
	}
	h.chat = append(h.chat, ChatMessage{ID: msgID, Sender: sender, Payload: data})
}

// broadcastLocked sends every peer its own projection of the canonical
// state plus the full chat log. Delivery is fire and forget.
func (h *Host[G]) broadcastLocked() {
	for _, peer := range h.ctx.PlayOrder {
		if peer == h.playerID {
			continue
		}
		view, err := h.game.RenderView(h.state, h.ctx, peer)
		if err != nil {
			log.Printf("session: render view for %s: %v", peer, err)
			continue
		}
		h.send(Envelope{
			Type:         TypeSync,
			PlayerID:     peer,
			State:        view,
			ChatMessages: h.chat,
		})
	}
}
