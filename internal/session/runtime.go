package session

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/louisbranch/parlor.space/internal/engine"
	"github.com/louisbranch/parlor.space/internal/transport"
)

// Runtime is one participant's handle on a live session. Host and Peer
// both satisfy it; callers interact with the table through it without
// knowing which side they hold.
type Runtime[G any] interface {
	// PlayerID reports the identity the table assigned at setup.
	PlayerID() string

	// Ctx reports the immutable table facts delivered at setup.
	Ctx() engine.Ctx

	// State reports the current state and whether one exists yet. Hosts
	// always have one; peers report false until the first sync lands.
	// The returned value shares interior references with the runtime and
	// must be treated as read only.
	State() (G, bool)

	// ChatMessages reports a copy of the chat log in merge order.
	ChatMessages() []ChatMessage

	// Move requests the named state transition. Hosts apply it directly,
	// peers forward it. Unknown or illegal moves are dropped silently.
	Move(name string, args ...any)

	// SendChatMessage appends (host) or forwards (peer) a chat payload.
	SendChatMessage(payload any)

	// Close detaches from the transport and disarms any pending timer.
	Close() error
}

// core carries the state both runtime halves share. All mutable fields
// are guarded by mu; listener callbacks always run with mu released.
type core[G any] struct {
	game *engine.Game[G]
	tr   transport.Transport
	opts options

	mu       sync.Mutex
	playerID string
	ctx      engine.Ctx
	chat     []ChatMessage
	closed   bool

	// cancel detaches the transport subscription installed by Join.
	cancel func()

	timer    *time.Timer
	timerGen int
}

// note records what a state mutation changed, so listeners can be fired
// after the lock is released.
type note struct {
	updated     bool
	phaseChange bool
	prev, next  string
}

func (c *core[G]) PlayerID() string {
	return c.playerID
}

func (c *core[G]) Ctx() engine.Ctx {
	return c.ctx
}

func (c *core[G]) ChatMessages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ChatMessage, len(c.chat))
	copy(out, c.chat)
	return out
}

func (c *core[G]) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	return c.tr.Close()
}

func (c *core[G]) send(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("session: encode %s envelope: %v", env.Type, err)
		return
	}
	if err := c.tr.Send(data); err != nil {
		log.Printf("session: send %s envelope: %v", env.Type, err)
	}
}

// observePhaseLocked rearms or disarms the phase timer on transitions.
// The generation counter invalidates callbacks from timers that were
// stopped too late to matter.
func (c *core[G]) observePhaseLocked(prev, next string) {
	if prev == next {
		return
	}
	c.timerGen++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.opts.timerFn == nil || next != c.opts.timerPhase {
		return
	}
	gen := c.timerGen
	c.timer = time.AfterFunc(c.opts.timerDelay, func() {
		c.firePhaseTimer(gen)
	})
}

func (c *core[G]) firePhaseTimer(gen int) {
	c.mu.Lock()
	if c.closed || gen != c.timerGen {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.mu.Unlock()
	c.opts.timerFn()
}

func (c *core[G]) fire(n note) {
	if n.phaseChange && c.opts.phaseListener != nil {
		c.opts.phaseListener(n.prev, n.next)
	}
	if n.updated && c.opts.updateListener != nil {
		c.opts.updateListener()
	}
}
