package reaction

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"

	"github.com/milk9111/ringbounce/obj"
	"github.com/milk9111/ringbounce/physics"
	"github.com/milk9111/ringbounce/sound"
)

var ErrUnknownMode = errors.New("reaction: unknown mode")

// Mode selects which contact transition drives reactions.
type Mode int

const (
	// ModeSettle reacts when a contact ends and neither collider was replaced.
	ModeSettle Mode = iota
	// ModeTouch only plays the cue when a contact starts.
	ModeTouch
)

func (m Mode) String() string {
	switch m {
	case ModeSettle:
		return "settle"
	case ModeTouch:
		return "touch"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "settle":
		return ModeSettle, nil
	case "touch":
		return ModeTouch, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Sink plays sound cues. Implementations own playback lifetime.
type Sink interface {
	Play(cue sound.Cue, pitch float64)
}

// Stats counts what the controller did since it was created.
type Stats struct {
	Sounds         int
	Reactions      int
	SkippedRemoved int
	MissingOwners  int
}

type Controller struct {
	Mode Mode
	// Strict panics when a collision body has no owning entity.
	Strict bool

	sink  Sink
	rng   *rand.Rand
	stats Stats
}

func NewController(sink Sink, rng *rand.Rand) *Controller {
	return &Controller{sink: sink, rng: rng}
}

func (c *Controller) Stats() Stats {
	return c.stats
}

// Handle applies one frame's events. It must run after the world step and
// before ClearRemovedColliders.
func (c *Controller) Handle(w *physics.World, bodies []*obj.Body, events []physics.CollisionEvent) {
	for _, e := range events {
		switch {
		case e.Started():
			if c.Mode == ModeTouch {
				c.play(sound.CueBounce, sound.DefaultPitch)
			}
		case e.Stopped():
			if c.Mode == ModeSettle {
				c.settle(w, bodies, e)
			}
		}
	}
}

func (c *Controller) settle(w *physics.World, bodies []*obj.Body, e physics.CollisionEvent) {
	if e.Removed() || w.IsColliderRemoved(e.Collider1) || w.IsColliderRemoved(e.Collider2) {
		c.stats.SkippedRemoved++
		return
	}
	b1, ok1 := w.ColliderParent(e.Collider1)
	b2, ok2 := w.ColliderParent(e.Collider2)
	if !ok1 || !ok2 {
		c.stats.SkippedRemoved++
		return
	}

	impact := w.LinearVelocity(b1).Length() + w.LinearVelocity(b2).Length()
	c.play(sound.CueBounce, Pitch(impact))

	var first, second *obj.Body
	for _, b := range bodies {
		if first == nil && b.OwnsHandle(b1) {
			first = b
		} else if second == nil && b.OwnsHandle(b2) {
			second = b
		}
		if first != nil && second != nil {
			break
		}
	}
	c.react(w, first, b1)
	c.react(w, second, b2)
}

func (c *Controller) react(w *physics.World, b *obj.Body, h physics.BodyHandle) {
	if b == nil {
		if c.Strict {
			panic(fmt.Sprintf("reaction: no entity owns %v", h))
		}
		c.stats.MissingOwners++
		return
	}
	if err := b.ReactToCollision(w, c.rng); err != nil {
		log.Printf("reaction: %v reacting to collision: %v", b.Kind(), err)
		return
	}
	c.stats.Reactions++
}

func (c *Controller) play(cue sound.Cue, pitch float64) {
	c.stats.Sounds++
	if c.sink != nil {
		c.sink.Play(cue, pitch)
	}
}
