// Package server hosts the relay HTTP/WebSocket process.
//
// The relay owns no gameplay state. It seats participants at named
// tables, mints player identities when a roster completes, and shuttles
// session envelopes between the host seat and the others.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	"github.com/louisbranch/parlor.space/internal/platform/timeouts"
	"github.com/louisbranch/parlor.space/internal/session"
)

const (
	maxFramesPerSecond     = 40
	maxDecodeErrorsPerConn = 3
)

// Config defines the inputs for the relay transport boundary.
type Config struct {
	HTTPAddr          string
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the relay HTTP/WebSocket process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
}

// NewHandler creates relay routes without a server lifecycle, for tests
// and embedding.
func NewHandler() http.Handler {
	hub := newTableHub()
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, hub)
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})
	return mux
}

// NewServer validates config and prepares the HTTP server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           NewHandler(),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}
	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer:      httpServer,
	}, nil
}

// Run builds a server from config and serves until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return err
	}
	return server.ListenAndServe(ctx)
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("relay server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("relay server listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

func handleWSConn(conn *websocket.Conn, hub *tableHub) {
	defer func() {
		_ = conn.Close()
	}()

	request := conn.Request()
	if request == nil {
		return
	}
	query := request.URL.Query()
	tableName := strings.TrimSpace(query.Get("table"))
	if tableName == "" {
		log.Printf("relay: reject connection without table from %s", request.RemoteAddr)
		return
	}
	playerName := strings.TrimSpace(query.Get("name"))
	if playerName == "" {
		playerName = "player"
	}
	size := 0
	if raw := strings.TrimSpace(query.Get("players")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			log.Printf("relay: reject connection with players=%q on table %q", raw, tableName)
			return
		}
		size = n
	}

	peer := newWSPeer(json.NewEncoder(conn))
	tb := hub.table(tableName)
	st, err := tb.claim(playerName, size, peer)
	if err != nil {
		log.Printf("relay: reject join on table %q: %v", tableName, err)
		return
	}
	defer func() {
		if tb.leave(st) {
			hub.drop(tableName)
		}
	}()

	decoder := json.NewDecoder(conn)
	windowStart := time.Now()
	framesInWindow := 0
	decodeErrors := 0

	for {
		var env session.Envelope
		if err := decoder.Decode(&env); err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			decodeErrors++
			if decodeErrors >= maxDecodeErrorsPerConn {
				log.Printf("relay: drop connection on table %q after %d decode errors", tableName, decodeErrors)
				return
			}
			continue
		}
		decodeErrors = 0

		now := time.Now()
		if now.Sub(windowStart) >= time.Second {
			windowStart = now
			framesInWindow = 0
		}
		framesInWindow++
		if framesInWindow > maxFramesPerSecond {
			log.Printf("relay: drop connection on table %q for exceeding frame rate", tableName)
			return
		}

		if env.Type == session.TypeSetup {
			tb.requestSetup(st)
			continue
		}
		tb.route(st, env)
	}
}
