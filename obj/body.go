package obj

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/ringbounce/common"
	"github.com/milk9111/ringbounce/physics"
	"golang.org/x/image/colornames"
)

const (
	ballRestitution = 1.035
	ringRestitution = 1.05
	ballGrowth      = 1.01
	ballPointCount  = 100
	ringPointCount  = 256
	ringAngle       = math.Pi / 2

	// Outline channels are drawn from [minChannel, maxChannel).
	minChannel = 10
	maxChannel = 255
)

var (
	ErrAlreadyRegistered = errors.New("obj: body already registered")
	ErrNotRegistered     = errors.New("obj: body not registered")
)

// Visual is everything a renderer needs to draw one entity.
type Visual struct {
	Kind             Kind
	Position         cp.Vector
	Angle            float64
	Radius           float64
	Outline          color.RGBA
	OutlineThickness float64
	PointCount       int
}

// Body is a ball or a ring drawn as an outlined circle and backed by a
// physics body once registered.
type Body struct {
	kind      Kind
	position  cp.Vector
	angle     float64
	radius    float64
	outline   color.RGBA
	thickness float64
	points    int

	Restitution float64
	// Growth multiplies a ball's radius on every reaction.
	Growth float64

	registered bool
	handle     physics.BodyHandle
	collider   physics.ColliderHandle
}

func NewBall(position cp.Vector, size BallSize) *Body {
	return NewBallRadius(position, size.Radius())
}

// NewBallRadius builds a ball with an explicit visual radius.
func NewBallRadius(position cp.Vector, radius float64) *Body {
	return &Body{
		kind:        KindBall,
		position:    position,
		radius:      radius,
		outline:     colornames.White,
		thickness:   common.OutlineThickness,
		points:      ballPointCount,
		Restitution: ballRestitution,
		Growth:      ballGrowth,
	}
}

func NewRing(position cp.Vector, size RingSize) *Body {
	return NewRingRadius(position, size.Radius())
}

func NewRingRadius(position cp.Vector, radius float64) *Body {
	return &Body{
		kind:        KindRing,
		position:    position,
		angle:       ringAngle,
		radius:      radius,
		outline:     colornames.White,
		thickness:   common.OutlineThickness,
		points:      ringPointCount,
		Restitution: ringRestitution,
		Growth:      1,
	}
}

func (b *Body) Kind() Kind {
	return b.kind
}

// Handle returns the body handle and whether the body is registered.
func (b *Body) Handle() (physics.BodyHandle, bool) {
	return b.handle, b.registered
}

// Collider returns the collider currently attached to the body.
func (b *Body) Collider() physics.ColliderHandle {
	return b.collider
}

func (b *Body) Radius() float64 {
	return b.radius
}

func (b *Body) Visual() Visual {
	return Visual{
		Kind:             b.kind,
		Position:         b.position,
		Angle:            b.angle,
		Radius:           b.radius,
		Outline:          b.outline,
		OutlineThickness: b.thickness,
		PointCount:       b.points,
	}
}

// ColliderDesc describes the collider matching the current visual state.
// Balls include the outline in their radius; rings extrude their outline
// outward into a closed band.
func (b *Body) ColliderDesc() (physics.ColliderDesc, error) {
	return b.colliderDesc(b.radius)
}

func (b *Body) colliderDesc(radius float64) (physics.ColliderDesc, error) {
	var desc physics.ColliderDesc
	switch b.kind {
	case KindBall:
		desc = physics.CircleCollider(radius + b.thickness)
	case KindRing:
		mesh, err := physics.RingMesh(radius, b.thickness, b.points)
		if err != nil {
			return physics.ColliderDesc{}, err
		}
		desc = physics.TrimeshCollider(mesh)
	default:
		return physics.ColliderDesc{}, fmt.Errorf("obj: unknown kind %v", b.kind)
	}
	desc.Restitution = b.Restitution
	desc.Events = true
	return desc, nil
}

// Register inserts the body into the world. Registering twice is an error.
func (b *Body) Register(w *physics.World, kind physics.BodyKind) error {
	if b.registered {
		return fmt.Errorf("%w: %v", ErrAlreadyRegistered, b.handle)
	}
	desc, err := b.ColliderDesc()
	if err != nil {
		return fmt.Errorf("register %v: %w", b.kind, err)
	}
	h, err := w.InsertBody(physics.BodyDesc{
		Kind:     kind,
		Position: b.position,
		Angle:    b.angle,
		CCD:      b.kind == KindBall,
	}, desc)
	if err != nil {
		return fmt.Errorf("register %v: %w", b.kind, err)
	}
	b.handle = h
	b.collider = w.Colliders(h)[0]
	b.registered = true
	return nil
}

// SyncFromWorld copies the simulated pose into the visual. Unregistered
// bodies are left alone.
func (b *Body) SyncFromWorld(w *physics.World) {
	if !b.registered {
		return
	}
	if p, ok := w.BodyPosition(b.handle); ok {
		b.position = p
	}
	if a, ok := w.BodyAngle(b.handle); ok {
		b.angle = a
	}
}

func (b *Body) OwnsHandle(h physics.BodyHandle) bool {
	return b.registered && b.handle == h
}

// ReactToCollision gives the outline a random color. Balls also grow and
// swap their collider for one of the new size.
func (b *Body) ReactToCollision(w *physics.World, rng *rand.Rand) error {
	if !b.registered {
		return ErrNotRegistered
	}
	b.outline = RandomOutline(rng)
	if b.kind != KindBall {
		return nil
	}

	grown := b.radius * b.Growth
	desc, err := b.colliderDesc(grown)
	if err != nil {
		return err
	}
	next, err := w.ReplaceCollider(b.handle, b.collider, desc)
	if err != nil {
		return fmt.Errorf("grow %v: %w", b.handle, err)
	}
	b.radius = grown
	b.collider = next
	return nil
}

func RandomOutline(rng *rand.Rand) color.RGBA {
	channel := func() uint8 {
		return uint8(minChannel + rng.IntN(maxChannel-minChannel))
	}
	return color.RGBA{R: channel(), G: channel(), B: channel(), A: 0xff}
}
