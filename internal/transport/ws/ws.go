// Package ws connects a participant to a relay over WebSocket and
// exposes the connection as a transport for session runtimes.
package ws

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/louisbranch/parlor.space/internal/platform/timeouts"
	"github.com/louisbranch/parlor.space/internal/transport"
)

// Conn is a WebSocket-backed transport. Frames are JSON values; the
// relay decodes them as a stream, so no extra framing is needed.
type Conn struct {
	conn *websocket.Conn

	mu     sync.Mutex
	subs   map[int]transport.Handler
	nextID int
	closed bool
}

// URL builds the relay join endpoint for a table. players is only
// meaningful for the first joiner and is omitted when zero.
func URL(base, table, name string, players int) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse relay url: %w", err)
	}
	u.Path = "/ws"
	q := url.Values{}
	q.Set("table", table)
	if name != "" {
		q.Set("name", name)
	}
	if players > 0 {
		q.Set("players", strconv.Itoa(players))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Dial connects to a relay join endpoint. The TCP dial is bounded by
// timeouts.Dial.
func Dial(rawURL, origin string) (*Conn, error) {
	config, err := websocket.NewConfig(rawURL, origin)
	if err != nil {
		return nil, fmt.Errorf("relay url: %w", err)
	}
	config.Dialer = &net.Dialer{Timeout: timeouts.Dial}
	wsConn, err := websocket.DialConfig(config)
	if err != nil {
		return nil, fmt.Errorf("dial relay: %w", err)
	}
	c := &Conn{
		conn: wsConn,
		subs: make(map[int]transport.Handler),
	}
	go c.readLoop()
	return c, nil
}

func (c *Conn) readLoop() {
	decoder := json.NewDecoder(c.conn)
	for {
		var frame json.RawMessage
		if err := decoder.Decode(&frame); err != nil {
			c.mu.Lock()
			c.closed = true
			c.mu.Unlock()
			return
		}
		c.mu.Lock()
		handlers := make([]transport.Handler, 0, len(c.subs))
		for _, fn := range c.subs {
			handlers = append(handlers, fn)
		}
		c.mu.Unlock()
		for _, fn := range handlers {
			fn(frame)
		}
	}
}

// Send writes one frame. The payload must be a single JSON value.
func (c *Conn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return transport.ErrClosed
	}
	buf := make([]byte, 0, len(data)+1)
	buf = append(buf, data...)
	buf = append(buf, '\n')
	if _, err := c.conn.Write(buf); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Subscribe registers fn for every inbound frame and returns its
// cancellation.
func (c *Conn) Subscribe(fn transport.Handler) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

// Close tears down the connection. Safe to call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	return c.conn.Close()
}
