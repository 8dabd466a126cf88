// Package gameloop runs the fixed-tick simulation and applies client events
// between ticks on a single goroutine.
package gameloop

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	coresys "github.com/arenaworks/server/internal/core/system"
	"github.com/arenaworks/server/internal/handler"
	"github.com/arenaworks/server/internal/net"
	"github.com/arenaworks/server/internal/net/protocol"
)

type State int32

const (
	Idle State = iota
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	default:
		return "unknown"
	}
}

var ErrAlreadyStarted = errors.New("game loop already started")

// Loop owns the world. Every transport event and every tick runs on the
// goroutine that called Run, one at a time.
type Loop struct {
	runner   *coresys.Runner
	events   <-chan net.Event
	registry *protocol.Registry
	conns    *handler.ConnectionRegistry
	interval time.Duration
	log      *zap.Logger

	state atomic.Int32
}

func New(runner *coresys.Runner, events <-chan net.Event, registry *protocol.Registry, conns *handler.ConnectionRegistry, interval time.Duration, log *zap.Logger) *Loop {
	return &Loop{
		runner:   runner,
		events:   events,
		registry: registry,
		conns:    conns,
		interval: interval,
		log:      log,
	}
}

func (l *Loop) State() State { return State(l.state.Load()) }

// Run ticks immediately, then again interval after each tick finishes, until
// ctx is cancelled. A slow tick delays the next one; missed ticks are not
// caught up.
func (l *Loop) Run(ctx context.Context) error {
	if !l.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return ErrAlreadyStarted
	}
	defer l.state.Store(int32(Terminated))

	// 第一個 tick 立即執行，之後每次 tick 結束才重新計時，不會累積補跑。
	timer := time.NewTimer(0)
	defer timer.Stop()

	events := l.events
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				// 網路層已關閉：停止讀取，只剩 tick。
				events = nil
				continue
			}
			l.Handle(ev)
		case <-timer.C:
			l.Tick()
			timer.Reset(l.interval)
		}
	}
}

// Tick runs every system once, in phase order.
func (l *Loop) Tick() {
	l.runner.Tick(l.interval)
}

// Handle applies one transport event to the world.
func (l *Loop) Handle(ev net.Event) {
	switch ev.Kind {
	case net.EventConnected:
		// a full server is reported by Admit itself
		_, _ = l.conns.Admit(ev.Conn)
	case net.EventMessage:
		if !l.conns.Admitted(ev.Conn) {
			return
		}
		if err := l.registry.Dispatch(ev.Data); err != nil {
			if protocol.IsProtocolError(err) {
				l.log.Debug("message ignored", zap.Uint64("session", ev.Conn.ID()), zap.Error(err))
			} else {
				l.log.Warn("message handler failed", zap.Uint64("session", ev.Conn.ID()), zap.Error(err))
			}
		}
	case net.EventClosed:
		l.conns.Remove(ev.Conn)
	}
}
