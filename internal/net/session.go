package net

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/arenaworks/server/internal/config"
)

// Session represents a single client connection. Network I/O runs in
// dedicated goroutines; game state is accessed only from the game loop.
type Session struct {
	id     uint64
	conn   *websocket.Conn
	server *Server
	cfg    config.NetworkConfig

	OutQueue chan []byte // writer goroutine reads from here

	IP string

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	// Per-second message rate limiter (readLoop goroutine only, no lock needed)
	msgPerSec  int
	msgCount   int
	msgResetAt int64

	log *zap.Logger
}

func newSession(conn *websocket.Conn, id uint64, srv *Server, log *zap.Logger) *Session {
	return &Session{
		id:        id,
		conn:      conn,
		server:    srv,
		cfg:       srv.cfg,
		OutQueue:  make(chan []byte, srv.cfg.OutQueueSize),
		IP:        conn.RemoteAddr().String(),
		closeCh:   make(chan struct{}),
		msgPerSec: srv.cfg.MessagesPerSecond,
		log:       log.With(zap.Uint64("session", id)),
	}
}

func (s *Session) ID() uint64 { return s.id }

func (s *Session) start() {
	go s.readLoop()
	go s.writeLoop()
}

// Send queues a message for the writer goroutine. It never blocks: a client
// that cannot keep up with its queue is disconnected.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- data:
	default:
		// 佇列已滿代表客戶端跟不上，直接斷線而不阻塞遊戲迴圈。
		s.log.Warn("output queue full, disconnecting slow client")
		s.Close()
	}
}

// Close marks the session closed. The writer flushes anything already queued
// and then closes the socket.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
	})
}

func (s *Session) IsOpen() bool {
	return !s.closed.Load()
}

// readLoop runs in its own goroutine. It reads frames from the socket and
// hands them to the game loop, then reports the close once the socket dies.
func (s *Session) readLoop() {
	defer func() {
		s.Close()
		s.server.deliver(Event{Kind: EventClosed, Conn: s})
		s.log.Info("player disconnected")
	}()

	s.conn.SetReadLimit(s.cfg.ReadLimit)
	s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if !s.closed.Load() && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))

		if s.msgPerSec > 0 {
			now := time.Now().Unix()
			if now != s.msgResetAt {
				s.msgCount = 0
				s.msgResetAt = now
			}
			s.msgCount++
			if s.msgCount > s.msgPerSec {
				s.log.Warn("message rate exceeded, disconnecting", zap.Int("mps", s.msgCount))
				return
			}
		}

		// Block until the loop has room; messages from one client are never dropped.
		select {
		case <-s.closeCh:
			return
		default:
		}
		if !s.server.deliver(Event{Kind: EventMessage, Conn: s, Data: data}) {
			return
		}
	}
}

// writeLoop runs in its own goroutine. It owns every write to the socket,
// including pings and the final close frame.
func (s *Session) writeLoop() {
	ping := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ping.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case data := <-s.OutQueue:
			if !s.write(websocket.TextMessage, data) {
				s.Close()
				return
			}
		case <-ping.C:
			if !s.write(websocket.PingMessage, nil) {
				s.Close()
				return
			}
		case <-s.closeCh:
			s.flush()
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			s.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}
	}
}

// flush writes whatever was queued before Close, so a final message such as
// a rejection notice still reaches the client.
func (s *Session) flush() {
	for {
		select {
		case data := <-s.OutQueue:
			if !s.write(websocket.TextMessage, data) {
				return
			}
		default:
			return
		}
	}
}

func (s *Session) write(kind int, data []byte) bool {
	s.conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
	if err := s.conn.WriteMessage(kind, data); err != nil {
		s.log.Debug("write error", zap.Error(err))
		return false
	}
	return true
}
