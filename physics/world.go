package physics

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/ringbounce/common"
)

const collisionTypeCollider cp.CollisionType = 1

// ccdTravelFraction is how much of the thinnest feature a CCD body may cross per sub-step.
const ccdTravelFraction = 0.5

var (
	ErrStaleHandle = errors.New("physics: stale handle")
	ErrNotAttached = errors.New("physics: collider not attached to body")
	ErrWorldLocked = errors.New("physics: world is stepping")
)

// Config holds the constant simulation parameters.
type Config struct {
	Gravity     cp.Vector
	TimeStep    float64
	Iterations  uint
	MaxSubsteps int
	// MaxSpeed caps the speed a dynamic body may integrate to.
	MaxSpeed float64
}

func DefaultConfig() Config {
	return Config{
		Gravity:     cp.Vector{X: 0, Y: common.Gravity},
		TimeStep:    common.TimeStep,
		Iterations:  20,
		MaxSubsteps: 8,
		MaxSpeed:    4000,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.TimeStep <= 0 {
		c.TimeStep = d.TimeStep
	}
	if c.Iterations == 0 {
		c.Iterations = d.Iterations
	}
	if c.MaxSubsteps <= 0 {
		c.MaxSubsteps = d.MaxSubsteps
	}
	if c.MaxSpeed <= 0 {
		c.MaxSpeed = d.MaxSpeed
	}
	return c
}

type bodyEntry struct {
	body      *cp.Body
	kind      BodyKind
	ccd       bool
	colliders []ColliderHandle
}

type colliderEntry struct {
	parent  BodyHandle
	desc    ColliderDesc
	shapes  []*cp.Shape
	feature float64
}

// World owns the Chipmunk space and every body and collider in it.
type World struct {
	cfg   Config
	space *cp.Space

	bodies    arena[*bodyEntry]
	colliders arena[*colliderEntry]

	events   EventQueue
	contacts contactPairs
	removed  map[ColliderHandle]struct{}

	thinnestFixed float64
	stepping      bool
	substeps      int

	bounds *boundary
}

// boundary is a circle every dynamic body is kept inside.
type boundary struct {
	center cp.Vector
	radius float64
}

// NewWorld creates an empty world.
func NewWorld(cfg Config) *World {
	cfg = cfg.withDefaults()
	space := cp.NewSpace()
	space.Iterations = cfg.Iterations
	space.SetGravity(cfg.Gravity)

	w := &World{
		cfg:      cfg,
		space:    space,
		contacts: make(contactPairs),
		removed:  make(map[ColliderHandle]struct{}),
		substeps: 1,
	}
	w.setupHandlers()
	return w
}

func (w *World) Config() Config {
	return w.cfg
}

func (w *World) setupHandlers() {
	handler := w.space.NewCollisionHandler(collisionTypeCollider, collisionTypeCollider)
	handler.UserData = w
	handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		world, ok := userData.(*World)
		if !ok || world == nil {
			return true
		}
		a, b, ok := world.arbiterColliders(arb)
		if !ok {
			return true
		}
		if world.contacts.begin(a, b) && world.emitsEvents(a, b) {
			world.events.Push(CollisionEvent{Kind: Started, Collider1: a, Collider2: b})
		}
		return true
	}
	// Restitution is the average of both shapes, not Chipmunk's product.
	handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		a, b := arb.Shapes()
		if a != nil && b != nil {
			arb.SetRestitution(combineRestitution(a.Elasticity(), b.Elasticity()))
		}
		return true
	}
	handler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
		world, ok := userData.(*World)
		if !ok || world == nil {
			return
		}
		a, b, ok := world.arbiterColliders(arb)
		if !ok {
			return
		}
		if world.contacts.end(a, b) && world.emitsEvents(a, b) {
			world.events.Push(CollisionEvent{
				Kind:      Stopped,
				Collider1: a,
				Collider2: b,
				Removed1:  !world.colliderLive(a),
				Removed2:  !world.colliderLive(b),
			})
		}
	}
}

func combineRestitution(a, b float64) float64 {
	return (a + b) / 2
}

func (w *World) arbiterColliders(arb *cp.Arbiter) (ColliderHandle, ColliderHandle, bool) {
	shapeA, shapeB := arb.Shapes()
	if shapeA == nil || shapeB == nil {
		return 0, 0, false
	}
	a, okA := shapeA.UserData.(ColliderHandle)
	b, okB := shapeB.UserData.(ColliderHandle)
	return a, b, okA && okB
}

func (w *World) emitsEvents(a, b ColliderHandle) bool {
	ca, okA := w.colliders.peek(uint64(a))
	cb, okB := w.colliders.peek(uint64(b))
	return (okA && ca.desc.Events) || (okB && cb.desc.Events)
}

func (w *World) colliderLive(h ColliderHandle) bool {
	_, ok := w.colliders.get(uint64(h))
	return ok
}

// InsertBody adds a body with its first collider and returns the body handle.
// It fails only when the collider geometry is invalid.
func (w *World) InsertBody(bd BodyDesc, cd ColliderDesc) (BodyHandle, error) {
	if err := cd.validate(); err != nil {
		return 0, err
	}
	if w.stepping {
		return 0, ErrWorldLocked
	}

	var body *cp.Body
	switch bd.Kind {
	case Fixed:
		body = cp.NewStaticBody()
	case Dynamic:
		mass := cd.mass()
		body = cp.NewBody(mass, cd.moment(mass))
		body.SetVelocityUpdateFunc(w.clampedVelocity)
	default:
		return 0, fmt.Errorf("physics: unknown body kind %v", bd.Kind)
	}
	body.SetPosition(bd.Position)
	body.SetAngle(bd.Angle)
	w.space.AddBody(body)

	entry := &bodyEntry{body: body, kind: bd.Kind, ccd: bd.CCD}
	h := BodyHandle(w.bodies.insert(entry))
	body.UserData = h
	ch := w.attach(h, entry, cd)

	shapes := 0
	if ce, ok := w.colliders.get(uint64(ch)); ok {
		shapes = len(ce.shapes)
	}
	log.Printf("physics: inserted %s body %v with %v (%d shapes)", bd.Kind, h, ch, shapes)
	return h, nil
}

func (w *World) clampedVelocity(body *cp.Body, gravity cp.Vector, damping, dt float64) {
	body.UpdateVelocity(gravity, damping, dt)
	v := body.Velocity()
	if speed := v.Length(); speed > w.cfg.MaxSpeed {
		body.SetVelocityVector(v.Mult(w.cfg.MaxSpeed / speed))
	}
}

// SetBoundary keeps every dynamic body's circle colliders inside the circle
// at center. A body found outside after a sub-step is moved back to the
// edge and loses its outward velocity.
func (w *World) SetBoundary(center cp.Vector, radius float64) error {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return fmt.Errorf("%w: boundary radius must be positive, got %v", ErrInvalidGeometry, radius)
	}
	w.bounds = &boundary{center: center, radius: radius}
	return nil
}

func (w *World) contain() {
	if w.bounds == nil {
		return
	}
	w.bodies.each(func(_ uint64, be *bodyEntry) {
		if be.kind != Dynamic {
			return
		}
		reach := 0.0
		for _, ch := range be.colliders {
			if ce, ok := w.colliders.get(uint64(ch)); ok && ce.desc.Shape == ShapeCircle {
				reach = math.Max(reach, ce.desc.Radius)
			}
		}
		if reach == 0 {
			return
		}

		offset := be.body.Position().Sub(w.bounds.center)
		dist := offset.Length()
		limit := w.bounds.radius - reach
		if dist <= limit {
			return
		}
		if limit <= 0 || dist == 0 {
			be.body.SetPosition(w.bounds.center)
			be.body.SetVelocityVector(cp.Vector{})
			return
		}
		n := offset.Mult(1 / dist)
		be.body.SetPosition(w.bounds.center.Add(n.Mult(limit)))
		v := be.body.Velocity()
		if out := v.Dot(n); out > 0 {
			be.body.SetVelocityVector(v.Sub(n.Mult(2 * out)))
		}
	})
}

func (w *World) attach(bh BodyHandle, be *bodyEntry, cd ColliderDesc) ColliderHandle {
	ce := &colliderEntry{parent: bh, desc: cd, feature: cd.feature()}
	ch := ColliderHandle(w.colliders.insert(ce))
	for _, shape := range cd.shapes(be.body) {
		shape.SetElasticity(cd.Restitution)
		shape.SetFriction(cd.Friction)
		shape.SetCollisionType(collisionTypeCollider)
		shape.UserData = ch
		w.space.AddShape(shape)
		ce.shapes = append(ce.shapes, shape)
	}
	be.colliders = append(be.colliders, ch)
	if be.kind == Fixed && ce.feature > 0 && (w.thinnestFixed == 0 || ce.feature < w.thinnestFixed) {
		w.thinnestFixed = ce.feature
	}
	return ch
}

func (w *World) detach(be *bodyEntry, h ColliderHandle, ce *colliderEntry) {
	// Kill first so separate callbacks fired by RemoveShape see the collider as removed.
	w.colliders.kill(uint64(h))
	w.removed[h] = struct{}{}
	for i, c := range be.colliders {
		if c == h {
			be.colliders = append(be.colliders[:i], be.colliders[i+1:]...)
			break
		}
	}
	for _, shape := range ce.shapes {
		w.space.RemoveShape(shape)
	}
}

// ReplaceCollider removes old from body and attaches a collider built from
// desc. The body handle stays valid; old is recorded as removed until
// ClearRemovedColliders.
func (w *World) ReplaceCollider(body BodyHandle, old ColliderHandle, desc ColliderDesc) (ColliderHandle, error) {
	if w.stepping {
		return 0, ErrWorldLocked
	}
	if err := desc.validate(); err != nil {
		return 0, err
	}
	be, ok := w.bodies.get(uint64(body))
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrStaleHandle, body)
	}
	ce, ok := w.colliders.get(uint64(old))
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrStaleHandle, old)
	}
	if ce.parent != body {
		return 0, fmt.Errorf("%w: %v is not on %v", ErrNotAttached, old, body)
	}

	w.detach(be, old, ce)
	ch := w.attach(body, be, desc)
	if be.kind == Dynamic {
		mass := desc.mass()
		be.body.SetMass(mass)
		be.body.SetMoment(desc.moment(mass))
	}
	return ch, nil
}

// Step advances the world by one fixed timestep, split into sub-steps when a
// CCD body would otherwise skip over a thin collider.
func (w *World) Step() {
	n := w.substepCount()
	dt := w.cfg.TimeStep / float64(n)

	w.stepping = true
	for i := 0; i < n; i++ {
		w.space.Step(dt)
		w.contain()
	}
	w.stepping = false
	w.substeps = n
}

func (w *World) substepCount() int {
	n := 1
	w.bodies.each(func(_ uint64, be *bodyEntry) {
		if !be.ccd || be.kind != Dynamic {
			return
		}
		feature := w.thinnestFixed
		for _, ch := range be.colliders {
			ce, ok := w.colliders.get(uint64(ch))
			if !ok || ce.feature <= 0 {
				continue
			}
			if feature == 0 || ce.feature < feature {
				feature = ce.feature
			}
		}
		if feature <= 0 {
			return
		}
		travel := be.body.Velocity().Length() * w.cfg.TimeStep
		k := int(math.Ceil(travel / (feature * ccdTravelFraction)))
		if k > n {
			n = k
		}
	})
	if n > w.cfg.MaxSubsteps {
		n = w.cfg.MaxSubsteps
	}
	return n
}

// Substeps returns how many sub-steps the last Step used.
func (w *World) Substeps() int {
	return w.substeps
}

// DrainCollisionEvents returns queued events in detection order and clears the queue.
func (w *World) DrainCollisionEvents() []CollisionEvent {
	return w.events.Drain()
}

func (w *World) IsColliderRemoved(h ColliderHandle) bool {
	_, ok := w.removed[h]
	return ok
}

// ClearRemovedColliders forgets this frame's removals and recycles their slots.
// Call it once per frame after every reaction has run.
func (w *World) ClearRemovedColliders() {
	clear(w.removed)
	w.colliders.release()
}

func (w *World) BodyPosition(h BodyHandle) (cp.Vector, bool) {
	be, ok := w.bodies.get(uint64(h))
	if !ok {
		return cp.Vector{}, false
	}
	return be.body.Position(), true
}

func (w *World) BodyAngle(h BodyHandle) (float64, bool) {
	be, ok := w.bodies.get(uint64(h))
	if !ok {
		return 0, false
	}
	return be.body.Angle(), true
}

func (w *World) BodyKind(h BodyHandle) (BodyKind, bool) {
	be, ok := w.bodies.get(uint64(h))
	if !ok {
		return 0, false
	}
	return be.kind, true
}

// LinearVelocity returns the body's velocity, or zero for an unknown handle.
func (w *World) LinearVelocity(h BodyHandle) cp.Vector {
	be, ok := w.bodies.get(uint64(h))
	if !ok {
		return cp.Vector{}
	}
	return be.body.Velocity()
}

func (w *World) SetLinearVelocity(h BodyHandle, v cp.Vector) bool {
	be, ok := w.bodies.get(uint64(h))
	if !ok || be.kind != Dynamic {
		return false
	}
	be.body.SetVelocityVector(v)
	return true
}

// Colliders returns a copy of the body's live collider handles.
func (w *World) Colliders(h BodyHandle) []ColliderHandle {
	be, ok := w.bodies.get(uint64(h))
	if !ok {
		return nil
	}
	return append([]ColliderHandle(nil), be.colliders...)
}

// ColliderParent resolves a live collider to its body.
func (w *World) ColliderParent(h ColliderHandle) (BodyHandle, bool) {
	ce, ok := w.colliders.get(uint64(h))
	if !ok {
		return 0, false
	}
	return ce.parent, true
}

// ColliderRadius returns the radius of a live circle collider.
func (w *World) ColliderRadius(h ColliderHandle) (float64, bool) {
	ce, ok := w.colliders.get(uint64(h))
	if !ok || ce.desc.Shape != ShapeCircle {
		return 0, false
	}
	return ce.desc.Radius, true
}

// Touching reports whether two colliders are currently in contact.
func (w *World) Touching(a, b ColliderHandle) bool {
	return w.contacts.touching(a, b)
}

func (w *World) BodyCount() int {
	return w.bodies.len()
}

func (w *World) ColliderCount() int {
	return w.colliders.len()
}

// DebugDraw walks every shape in the space through drawer.
func (w *World) DebugDraw(drawer cp.Drawer) {
	cp.DrawSpace(w.space, drawer)
}
