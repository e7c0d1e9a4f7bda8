package physics

type EventKind int

const (
	Started EventKind = iota + 1
	Stopped
)

func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// CollisionEvent reports a pair of colliders starting or stopping contact.
// Removed1/Removed2 are set when that side was removed from the world by the
// time the event was recorded.
type CollisionEvent struct {
	Kind      EventKind
	Collider1 ColliderHandle
	Collider2 ColliderHandle
	Removed1  bool
	Removed2  bool
}

func (e CollisionEvent) Started() bool { return e.Kind == Started }
func (e CollisionEvent) Stopped() bool { return e.Kind == Stopped }

// Removed reports whether either side was already removed.
func (e CollisionEvent) Removed() bool { return e.Removed1 || e.Removed2 }

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []CollisionEvent
}

// Push adds an event.
func (q *EventQueue) Push(evt CollisionEvent) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []CollisionEvent {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

type pairKey struct {
	a, b ColliderHandle
}

func makePairKey(a, b ColliderHandle) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// contactPairs counts touching shape pairs per collider pair, so a collider
// made of many shapes starts and stops contact once.
type contactPairs map[pairKey]int

// begin reports whether this is the first touching shape pair.
func (c contactPairs) begin(a, b ColliderHandle) bool {
	k := makePairKey(a, b)
	c[k]++
	return c[k] == 1
}

// end reports whether the last touching shape pair separated.
func (c contactPairs) end(a, b ColliderHandle) bool {
	k := makePairKey(a, b)
	n, ok := c[k]
	if !ok {
		return false
	}
	if n <= 1 {
		delete(c, k)
		return true
	}
	c[k] = n - 1
	return false
}

func (c contactPairs) touching(a, b ColliderHandle) bool {
	return c[makePairKey(a, b)] > 0
}
