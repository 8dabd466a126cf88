package net

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/arenaworks/server/internal/config"
)

// Server accepts WebSocket connections and turns them into Sessions.
// Connects, inbound messages and closes are delivered to the game loop on a
// single ordered channel, so a session's messages never overtake its connect.
type Server struct {
	cfg      config.NetworkConfig
	upgrader websocket.Upgrader
	nextID   atomic.Uint64
	events   chan Event
	log      *zap.Logger
	closeCh  chan struct{}
	closed   atomic.Bool

	httpSrv  *http.Server
	listener net.Listener
}

func NewServer(cfg config.NetworkConfig, log *zap.Logger) *Server {
	return &Server{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Browser clients are served from other origins in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		events:  make(chan Event, cfg.InQueueSize),
		log:     log,
		closeCh: make(chan struct{}),
	}
}

// Listen binds the configured address. Serve must be called afterwards.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.BindAddress)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.BindAddress, err)
	}
	s.listener = ln
	mux := http.NewServeMux()
	mux.Handle(s.cfg.Path, s)
	s.httpSrv = &http.Server{Handler: mux}
	return nil
}

// Serve blocks until Shutdown. It returns nil on a clean shutdown.
func (s *Server) Serve() error {
	if s.listener == nil {
		return errors.New("server: Listen was not called")
	}
	err := s.httpSrv.Serve(s.listener)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// ServeHTTP upgrades the request and registers the new session.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.closed.Load() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	id := s.nextID.Add(1)
	sess := newSession(conn, id, s, s.log)
	s.log.Info("player connected", zap.Uint64("session", id), zap.String("ip", sess.IP))

	if !s.deliver(Event{Kind: EventConnected, Conn: sess}) {
		sess.Close()
		return
	}
	sess.start()
}

// Events returns the channel the game loop consumes.
func (s *Server) Events() <-chan Event {
	return s.events
}

// deliver blocks until the loop has room or the server shuts down.
func (s *Server) deliver(ev Event) bool {
	select {
	case s.events <- ev:
		return true
	case <-s.closeCh:
		return false
	}
}

// Shutdown stops accepting connections and unblocks pending deliveries.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(s.closeCh)
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Addr returns the listener's address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}
