package system

import (
	"time"

	"github.com/google/uuid"

	"github.com/arenaworks/server/internal/core/event"
	coresys "github.com/arenaworks/server/internal/core/system"
	"github.com/arenaworks/server/internal/persist"
)

// ChatSink receives batches of chat rows. It must not block.
type ChatSink interface {
	Enqueue(rows []persist.ChatRow) bool
}

// ChatArchiveSystem buffers posted chat and hands it to the archive every
// interval ticks. Phase 5 (Persist).
type ChatArchiveSystem struct {
	sink      ChatSink
	pending   []persist.ChatRow
	tickCount int
	interval  int
}

func NewChatArchiveSystem(bus *event.Bus, sink ChatSink, intervalTicks int) *ChatArchiveSystem {
	if intervalTicks <= 0 {
		intervalTicks = 1
	}
	s := &ChatArchiveSystem{sink: sink, interval: intervalTicks}
	event.Subscribe(bus, func(ev event.ChatPosted) {
		s.pending = append(s.pending, persist.ChatRow{
			ID:       uuid.New(),
			PlayerID: ev.PlayerID,
			Message:  ev.Message,
			SentAt:   ev.SentAt,
		})
	})
	return s
}

func (s *ChatArchiveSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *ChatArchiveSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

// Flush hands everything buffered to the sink. Called on shutdown too.
func (s *ChatArchiveSystem) Flush() {
	if len(s.pending) == 0 {
		return
	}
	s.sink.Enqueue(s.pending)
	s.pending = nil
}
