package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/louisbranch/parlor.space/internal/engine"
	platformerrors "github.com/louisbranch/parlor.space/internal/platform/errors"
	"github.com/louisbranch/parlor.space/internal/platform/timeouts"
	"github.com/louisbranch/parlor.space/internal/transport"
)

// Join performs the setup handshake over tr and returns the runtime the
// table assigned: a Host when the setup response marks this participant as
// host, a Peer otherwise. Join blocks until the setup response arrives,
// ctx is done, or the handshake deadline passes (timeouts.Handshake when
// ctx carries no deadline of its own). Setup responses without a player
// identity or table context are dropped entirely; no retry is issued. A
// table whose size falls outside the definition's player bounds is
// rejected.
func Join[G any](ctx context.Context, game *engine.Game[G], tr transport.Transport, opts ...Option) (Runtime[G], error) {
	if game == nil {
		return nil, platformerrors.New(platformerrors.CodeGameSetupMissing, "nil game definition")
	}
	if err := game.Validate(); err != nil {
		return nil, err
	}
	var cfg options
	for _, opt := range opts {
		opt(&cfg)
	}

	type assignment struct {
		playerID string
		tableCtx engine.Ctx
	}
	assigned := make(chan assignment, 1)

	// Messages that outrun the handshake are parked in backlog and
	// replayed, in arrival order, once the runtime exists. active is set
	// while mu is held, so the dispatcher cannot interleave a fresh
	// message with the replay.
	var mu sync.Mutex
	var active interface{ handle(data []byte) }
	var backlog [][]byte

	cancel := tr.Subscribe(func(data []byte) {
		mu.Lock()
		r := active
		mu.Unlock()
		if r != nil {
			r.handle(data)
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			log.Printf("session: drop malformed envelope during setup: %v", err)
			return
		}
		if env.Type == TypeSetup {
			if env.PlayerID == "" || env.Ctx == nil {
				log.Printf("session: drop incomplete setup response")
				return
			}
			select {
			case assigned <- assignment{playerID: env.PlayerID, tableCtx: *env.Ctx}:
			default:
			}
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if active == nil {
			backlog = append(backlog, data)
			return
		}
		active.handle(data)
	})

	req, err := json.Marshal(Envelope{Type: TypeSetup})
	if err != nil {
		cancel()
		return nil, err
	}
	if err := tr.Send(req); err != nil {
		cancel()
		return nil, platformerrors.Wrap(platformerrors.CodeTransportClosed, "send setup request", err)
	}

	hctx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var stop context.CancelFunc
		hctx, stop = context.WithTimeout(ctx, timeouts.Handshake)
		defer stop()
	}

	var a assignment
	select {
	case a = <-assigned:
	case <-hctx.Done():
		cancel()
		return nil, platformerrors.Wrap(platformerrors.CodeSetupIncomplete,
			"setup response never arrived", hctx.Err())
	}

	n := a.tableCtx.NumPlayers
	if n < game.MinPlayers || (game.MaxPlayers > 0 && n > game.MaxPlayers) {
		cancel()
		return nil, platformerrors.WithMetadata(platformerrors.CodeGamePlayerBoundsWrong,
			"table size outside game player bounds", map[string]string{
				"numPlayers": fmt.Sprint(n),
				"min":        fmt.Sprint(game.MinPlayers),
				"max":        fmt.Sprint(game.MaxPlayers),
			})
	}

	if a.tableCtx.IsHost {
		h, n := newHost(game, tr, cancel, cfg, a.playerID, a.tableCtx)
		mu.Lock()
		for _, data := range backlog {
			h.handle(data)
		}
		backlog = nil
		active = h
		mu.Unlock()
		h.fire(n)
		return h, nil
	}

	p := newPeer(game, tr, cancel, cfg, a.playerID, a.tableCtx)
	mu.Lock()
	for _, data := range backlog {
		p.handle(data)
	}
	backlog = nil
	active = p
	mu.Unlock()
	return p, nil
}
