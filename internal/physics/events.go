package physics

// CollisionEvent reports a contact transition between two bodies.
type CollisionEvent struct {
	A, B    Handle
	Started bool
}

// EventQueue collects collision events produced by World.Step.
type EventQueue struct {
	events []CollisionEvent
}

func NewEventQueue() *EventQueue {
	return &EventQueue{events: make([]CollisionEvent, 0, 16)}
}

func (q *EventQueue) push(ev CollisionEvent) {
	q.events = append(q.events, ev)
}

// DrainCollisionEvents hands every queued event to fn in order and empties
// the queue. Events pushed by fn are not visited.
func (q *EventQueue) DrainCollisionEvents(fn func(a, b Handle, started bool)) {
	pending := q.events
	q.events = make([]CollisionEvent, 0, cap(pending))
	for _, ev := range pending {
		fn(ev.A, ev.B, ev.Started)
	}
}

func (q *EventQueue) Len() int { return len(q.events) }
