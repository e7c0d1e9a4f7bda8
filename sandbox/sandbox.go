package sandbox

import (
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/ringbounce/config"
	"github.com/milk9111/ringbounce/obj"
	"github.com/milk9111/ringbounce/physics"
	"github.com/milk9111/ringbounce/reaction"
)

// Sandbox owns the world, the entities and the reaction controller, and
// advances them one frame at a time.
type Sandbox struct {
	scene  *config.Scene
	world  *physics.World
	bodies []*obj.Body
	ctrl   *reaction.Controller
	frames int
}

// New builds the ring and balls described by scene. Any geometry error is
// returned; callers treat it as fatal.
func New(scene *config.Scene, sink reaction.Sink, rng *rand.Rand) (*Sandbox, error) {
	world := physics.NewWorld(scene.PhysicsConfig())

	ringSize, err := obj.ParseRingSize(scene.Ring.Size)
	if err != nil {
		return nil, fmt.Errorf("sandbox: %w", err)
	}
	ring := obj.NewRing(cp.Vector{X: scene.Ring.X, Y: scene.Ring.Y}, ringSize)
	if err := ring.Register(world, physics.Fixed); err != nil {
		return nil, fmt.Errorf("sandbox: %w", err)
	}
	if err := world.SetBoundary(ring.Visual().Position, ring.Radius()); err != nil {
		return nil, fmt.Errorf("sandbox: %w", err)
	}
	bodies := []*obj.Body{ring}

	for i, spec := range scene.Balls {
		r, err := spec.VisualRadius()
		if err != nil {
			return nil, fmt.Errorf("sandbox: ball %d: %w", i, err)
		}
		ball := obj.NewBallRadius(cp.Vector{X: spec.X, Y: spec.Y}, r)
		if err := ball.Register(world, physics.Dynamic); err != nil {
			return nil, fmt.Errorf("sandbox: ball %d: %w", i, err)
		}
		bodies = append(bodies, ball)
	}

	ctrl := reaction.NewController(sink, rng)
	ctrl.Mode = scene.Mode()

	log.Printf("sandbox: %s ring with %d balls, %v mode", scene.Ring.Size, len(scene.Balls), ctrl.Mode)
	return &Sandbox{scene: scene, world: world, bodies: bodies, ctrl: ctrl}, nil
}

// SetStrict makes a collision with no owning entity panic.
func (s *Sandbox) SetStrict(strict bool) {
	s.ctrl.Strict = strict
}

// Tick runs one frame: sync visuals, step, react, then forget this frame's
// removed colliders.
func (s *Sandbox) Tick() {
	for _, b := range s.bodies {
		b.SyncFromWorld(s.world)
	}
	s.world.Step()
	s.ctrl.Handle(s.world, s.bodies, s.world.DrainCollisionEvents())
	s.world.ClearRemovedColliders()
	s.frames++
}

func (s *Sandbox) Visuals() []obj.Visual {
	out := make([]obj.Visual, 0, len(s.bodies))
	for _, b := range s.bodies {
		out = append(out, b.Visual())
	}
	return out
}

func (s *Sandbox) Bodies() []*obj.Body {
	return s.bodies
}

func (s *Sandbox) World() *physics.World {
	return s.world
}

func (s *Sandbox) Stats() reaction.Stats {
	return s.ctrl.Stats()
}

func (s *Sandbox) Frames() int {
	return s.frames
}
