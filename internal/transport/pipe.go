package transport

import "sync"

// pipeBuffer bounds how many undelivered messages one pipe end holds.
const pipeBuffer = 256

// Pipe returns a connected pair of in-memory transports. Messages sent on
// one end are delivered, in order, to the other end's subscribers on a
// dedicated goroutine per end.
//
// Pipes back same-process tables and protocol tests.
func Pipe() (Transport, Transport) {
	a := newPipeEnd()
	b := newPipeEnd()
	a.peer = b
	b.peer = a
	go a.deliver()
	go b.deliver()
	return a, b
}

type pipeEnd struct {
	mu       sync.Mutex
	peer     *pipeEnd
	inbox    chan []byte
	handlers map[int]Handler
	nextID   int
	closed   bool
}

func newPipeEnd() *pipeEnd {
	return &pipeEnd{
		inbox:    make(chan []byte, pipeBuffer),
		handlers: make(map[int]Handler),
	}
}

func (p *pipeEnd) Send(data []byte) error {
	p.mu.Lock()
	closed := p.closed
	peer := p.peer
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}

	peer.mu.Lock()
	defer peer.mu.Unlock()
	if peer.closed {
		return ErrClosed
	}
	// Copy so the caller may reuse its buffer.
	msg := make([]byte, len(data))
	copy(msg, data)
	select {
	case peer.inbox <- msg:
	default:
		// Fire-and-forget: a saturated receiver loses the message and
		// self-heals on the next full snapshot.
	}
	return nil
}

func (p *pipeEnd) Subscribe(fn Handler) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.handlers[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.handlers, id)
		p.mu.Unlock()
	}
}

func (p *pipeEnd) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.inbox)
	return nil
}

func (p *pipeEnd) deliver() {
	for msg := range p.inbox {
		p.mu.Lock()
		handlers := make([]Handler, 0, len(p.handlers))
		for _, fn := range p.handlers {
			handlers = append(handlers, fn)
		}
		p.mu.Unlock()
		for _, fn := range handlers {
			fn(msg)
		}
	}
}
