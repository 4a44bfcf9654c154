package server

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/louisbranch/parlor.space/internal/engine"
	"github.com/louisbranch/parlor.space/internal/id"
	platformerrors "github.com/louisbranch/parlor.space/internal/platform/errors"
	"github.com/louisbranch/parlor.space/internal/session"
)

const maxTableSeats = 16

// wsPeer serializes writes to one WebSocket connection.
type wsPeer struct {
	mu      sync.Mutex
	encoder *json.Encoder
}

func newWSPeer(encoder *json.Encoder) *wsPeer {
	return &wsPeer{encoder: encoder}
}

func (p *wsPeer) writeEnvelope(env session.Envelope) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.encoder.Encode(env)
}

// seat is one participant's place at a table. The player identity is
// minted when the roster completes, not at connect time.
type seat struct {
	playerID  string
	name      string
	peer      *wsPeer
	wantSetup bool
}

// table is one match roster. The first joiner fixes the size and takes
// the host seat; join order is play order.
type table struct {
	mu      sync.Mutex
	name    string
	size    int
	seats   []*seat
	started bool
}

// claim seats a new participant. size is only honored for the first
// joiner; later joiners inherit the table's fixed size.
func (t *table) claim(name string, size int, peer *wsPeer) (*seat, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return nil, platformerrors.New(platformerrors.CodeTableStarted, "table already started")
	}
	if len(t.seats) == 0 {
		if size < 1 || size > maxTableSeats {
			return nil, platformerrors.WithMetadata(platformerrors.CodeTableSizeWrong,
				"table size out of range", map[string]string{"table": t.name})
		}
		t.size = size
	}
	if len(t.seats) >= t.size {
		return nil, platformerrors.New(platformerrors.CodeTableFull, "table is full")
	}
	s := &seat{name: name, peer: peer}
	t.seats = append(t.seats, s)
	if len(t.seats) == t.size {
		t.startLocked()
	}
	return s, nil
}

// startLocked mints player identities and answers every setup request
// that arrived before the roster completed.
func (t *table) startLocked() {
	for _, s := range t.seats {
		pid, err := id.NewID()
		if err != nil {
			log.Printf("relay: mint player id for table %q: %v", t.name, err)
			return
		}
		s.playerID = pid
	}
	t.started = true
	for _, s := range t.seats {
		if s.wantSetup {
			t.sendSetupLocked(s)
		}
	}
}

// requestSetup answers immediately on a started table, so a re-request
// always yields the same assignment.
func (t *table) requestSetup(s *seat) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s.wantSetup = true
	if t.started {
		t.sendSetupLocked(s)
	}
}

func (t *table) sendSetupLocked(s *seat) {
	if s.peer == nil {
		return
	}
	order := make([]string, len(t.seats))
	names := make(map[string]string, len(t.seats))
	for i, cur := range t.seats {
		order[i] = cur.playerID
		names[cur.playerID] = cur.name
	}
	env := session.Envelope{
		Type:     session.TypeSetup,
		PlayerID: s.playerID,
		Ctx: &engine.Ctx{
			NumPlayers:  t.size,
			PlayOrder:   order,
			PlayerNames: names,
			IsHost:      s == t.seats[0],
		},
	}
	if err := s.peer.writeEnvelope(env); err != nil {
		log.Printf("relay: send setup to %s on table %q: %v", s.playerID, t.name, err)
	}
}

// route forwards one decoded envelope. Host syncs go to the addressed
// peer; peer actions and chat are stamped with the sender's assigned
// identity and forwarded to the host, so identities cannot be forged.
func (t *table) route(from *seat, env session.Envelope) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return
	}
	host := t.seats[0]
	if from == host {
		if env.Type != session.TypeSync || env.PlayerID == "" {
			return
		}
		for _, s := range t.seats[1:] {
			if s.playerID != env.PlayerID || s.peer == nil {
				continue
			}
			if err := s.peer.writeEnvelope(env); err != nil {
				log.Printf("relay: forward sync to %s on table %q: %v", s.playerID, t.name, err)
			}
			return
		}
		return
	}
	switch env.Type {
	case session.TypeAction, session.TypeChat:
		env.PlayerID = from.playerID
		if host.peer == nil {
			return
		}
		if err := host.peer.writeEnvelope(env); err != nil {
			log.Printf("relay: forward %s to host on table %q: %v", env.Type, t.name, err)
		}
	}
}

// leave detaches a seat's connection. Unstarted tables give the seat
// back; started tables keep the roster so the remaining routing stays
// stable. Reports whether the table has no connections left.
func (t *table) leave(s *seat) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	s.peer = nil
	if !t.started {
		for i, cur := range t.seats {
			if cur == s {
				t.seats = append(t.seats[:i], t.seats[i+1:]...)
				break
			}
		}
	}
	for _, cur := range t.seats {
		if cur.peer != nil {
			return false
		}
	}
	return true
}

type tableHub struct {
	mu     sync.Mutex
	tables map[string]*table
}

func newTableHub() *tableHub {
	return &tableHub{tables: make(map[string]*table)}
}

func (h *tableHub) table(name string) *table {
	h.mu.Lock()
	defer h.mu.Unlock()
	tb, ok := h.tables[name]
	if ok {
		return tb
	}
	tb = &table{name: name}
	h.tables[name] = tb
	return tb
}

// drop removes a table once nothing is connected to it. Re-checked under
// both locks so a joiner racing the last leave wins.
func (h *tableHub) drop(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	tb, ok := h.tables[name]
	if !ok {
		return
	}
	tb.mu.Lock()
	empty := true
	for _, s := range tb.seats {
		if s.peer != nil {
			empty = false
			break
		}
	}
	tb.mu.Unlock()
	if empty {
		delete(h.tables, name)
	}
}
