package world

import (
	"time"

	"github.com/arenaworks/server/internal/physics"
)

// SetAction sets the player's current action and schedules it to clear at
// deadline. A newer action supersedes the older expiry.
func (s *State) SetAction(id physics.Handle, action string, deadline time.Time) bool {
	p := s.GetPlayer(id)
	if p == nil {
		return false
	}
	s.seq++
	p.CurrentAction = action
	p.actionSeq = s.seq

	// deadlines are Now()+constant, so appending keeps the queue ordered;
	// insert in place when the clock stepped backwards.
	i := len(s.clears)
	for i > 0 && s.clears[i-1].deadline.After(deadline) {
		i--
	}
	s.clears = append(s.clears, pendingClear{})
	copy(s.clears[i+1:], s.clears[i:])
	s.clears[i] = pendingClear{player: id, seq: s.seq, deadline: deadline}
	return true
}

// ExpireActions clears every action whose deadline is not after now and
// returns how many players were affected. Entries for players that left, or
// whose action was replaced since, are discarded.
func (s *State) ExpireActions(now time.Time) int {
	n := 0
	i := 0
	for ; i < len(s.clears); i++ {
		c := s.clears[i]
		if c.deadline.After(now) {
			break
		}
		if p := s.GetPlayer(c.player); p != nil && p.actionSeq == c.seq {
			p.CurrentAction = ""
			n++
		}
	}
	s.clears = s.clears[i:]
	return n
}

// PendingActions returns the number of scheduled clears.
func (s *State) PendingActions() int { return len(s.clears) }
