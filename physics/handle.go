package physics

import "fmt"

// BodyHandle identifies a rigid body inside a World. The zero value is never issued.
type BodyHandle uint64

// ColliderHandle identifies a collider inside a World. The zero value is never issued.
type ColliderHandle uint64

type slotIndex uint32
type generation uint32

const indexBits = 32

func makeHandle(idx slotIndex, gen generation) uint64 {
	return uint64(gen)<<indexBits | uint64(idx)
}

func splitHandle(h uint64) (slotIndex, generation) {
	return slotIndex(uint32(h)), generation(uint32(h >> indexBits))
}

func (h BodyHandle) Valid() bool {
	idx, _ := splitHandle(uint64(h))
	return idx > 0
}

func (h BodyHandle) String() string {
	idx, gen := splitHandle(uint64(h))
	return fmt.Sprintf("body(%d:%d)", idx, gen)
}

func (h ColliderHandle) Valid() bool {
	idx, _ := splitHandle(uint64(h))
	return idx > 0
}

func (h ColliderHandle) String() string {
	idx, gen := splitHandle(uint64(h))
	return fmt.Sprintf("collider(%d:%d)", idx, gen)
}

type slot[T any] struct {
	gen   generation
	alive bool
	value T
}

// arena stores values behind generation-checked handles. Killed slots stay
// reserved until release so a handle removed mid-frame is never handed out
// again before the frame ends.
type arena[T any] struct {
	slots   []slot[T]
	free    []slotIndex
	pending []slotIndex
	live    int
}

func (a *arena[T]) insert(v T) uint64 {
	var idx slotIndex
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		a.slots = append(a.slots, slot[T]{})
		idx = slotIndex(len(a.slots))
	}
	s := &a.slots[idx-1]
	s.alive = true
	s.value = v
	a.live++
	return makeHandle(idx, s.gen)
}

func (a *arena[T]) lookup(h uint64) (*slot[T], slotIndex, bool) {
	idx, gen := splitHandle(h)
	if idx == 0 || int(idx) > len(a.slots) {
		return nil, 0, false
	}
	s := &a.slots[idx-1]
	if s.gen != gen {
		return nil, 0, false
	}
	return s, idx, true
}

// get returns the value for a live handle.
func (a *arena[T]) get(h uint64) (T, bool) {
	var zero T
	s, _, ok := a.lookup(h)
	if !ok || !s.alive {
		return zero, false
	}
	return s.value, true
}

// peek returns the value for a live or killed-but-unreleased handle.
func (a *arena[T]) peek(h uint64) (T, bool) {
	var zero T
	s, _, ok := a.lookup(h)
	if !ok {
		return zero, false
	}
	return s.value, true
}

func (a *arena[T]) kill(h uint64) bool {
	s, idx, ok := a.lookup(h)
	if !ok || !s.alive {
		return false
	}
	s.alive = false
	a.live--
	a.pending = append(a.pending, idx)
	return true
}

// release recycles every killed slot and invalidates its old handles.
func (a *arena[T]) release() {
	var zero T
	for _, idx := range a.pending {
		s := &a.slots[idx-1]
		s.gen++
		s.value = zero
		a.free = append(a.free, idx)
	}
	a.pending = a.pending[:0]
}

func (a *arena[T]) len() int {
	return a.live
}

func (a *arena[T]) each(fn func(h uint64, v T)) {
	for i := range a.slots {
		s := &a.slots[i]
		if !s.alive {
			continue
		}
		fn(makeHandle(slotIndex(i+1), s.gen), s.value)
	}
}
