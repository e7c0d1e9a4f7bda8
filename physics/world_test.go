package physics

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/ringbounce/common"
)

func zeroGravity() Config {
	cfg := DefaultConfig()
	cfg.Gravity = cp.Vector{}
	return cfg
}

func ball(t *testing.T, w *World, pos cp.Vector, radius, restitution float64) BodyHandle {
	t.Helper()
	cd := CircleCollider(radius)
	cd.Restitution = restitution
	cd.Events = true
	h, err := w.InsertBody(BodyDesc{Kind: Dynamic, Position: pos, CCD: true}, cd)
	if err != nil {
		t.Fatalf("insert ball: %v", err)
	}
	return h
}

func TestInsertBodyRejectsInvalidGeometry(t *testing.T) {
	cases := []struct {
		name string
		desc ColliderDesc
	}{
		{"zero_radius", CircleCollider(0)},
		{"negative_radius", CircleCollider(-3)},
		{"nan_radius", CircleCollider(math.NaN())},
		{"empty_mesh", TrimeshCollider(Trimesh{})},
		{"index_out_of_range", TrimeshCollider(Trimesh{
			Vertices: []cp.Vector{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}},
			Indices:  [][3]uint32{{0, 1, 7}},
		})},
		{"unknown_shape", ColliderDesc{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := NewWorld(zeroGravity())
			_, err := w.InsertBody(BodyDesc{Kind: Dynamic}, tc.desc)
			if !errors.Is(err, ErrInvalidGeometry) {
				t.Fatalf("expected ErrInvalidGeometry, got %v", err)
			}
			if w.BodyCount() != 0 || w.ColliderCount() != 0 {
				t.Fatalf("failed insert should leave the world empty")
			}
		})
	}
}

func TestInsertFixedRing(t *testing.T) {
	w := NewWorld(DefaultConfig())
	mesh, err := RingMesh(200, 5, 64)
	if err != nil {
		t.Fatalf("ring mesh: %v", err)
	}
	h, err := w.InsertBody(BodyDesc{Kind: Fixed, Position: cp.Vector{X: 320, Y: 320}, Angle: math.Pi / 2}, TrimeshCollider(mesh))
	if err != nil {
		t.Fatalf("insert ring: %v", err)
	}
	if kind, ok := w.BodyKind(h); !ok || kind != Fixed {
		t.Fatalf("expected fixed body, got %v %v", kind, ok)
	}
	if a, _ := w.BodyAngle(h); a != math.Pi/2 {
		t.Fatalf("expected angle pi/2, got %v", a)
	}
	cols := w.Colliders(h)
	if len(cols) != 1 {
		t.Fatalf("expected one collider, got %d", len(cols))
	}
	if _, ok := w.ColliderRadius(cols[0]); ok {
		t.Fatalf("trimesh collider should not report a radius")
	}
	w.Step()
	if p, _ := w.BodyPosition(h); p != (cp.Vector{X: 320, Y: 320}) {
		t.Fatalf("fixed body moved to %v", p)
	}
	if w.SetLinearVelocity(h, cp.Vector{X: 1}) {
		t.Fatalf("fixed body should refuse velocity")
	}
}

func TestReplaceColliderKeepsBody(t *testing.T) {
	w := NewWorld(zeroGravity())
	h := ball(t, w, cp.Vector{}, 10, 1)
	old := w.Colliders(h)[0]
	w.SetLinearVelocity(h, cp.Vector{X: 30, Y: -40})

	next, err := w.ReplaceCollider(h, old, CircleCollider(12))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if next == old {
		t.Fatalf("replacement should get a new handle")
	}
	if !w.IsColliderRemoved(old) || w.IsColliderRemoved(next) {
		t.Fatalf("removed set wrong: old=%v next=%v", w.IsColliderRemoved(old), w.IsColliderRemoved(next))
	}
	if got := w.LinearVelocity(h); got != (cp.Vector{X: 30, Y: -40}) {
		t.Fatalf("velocity changed across replace: %v", got)
	}
	if r, ok := w.ColliderRadius(next); !ok || r != 12 {
		t.Fatalf("expected radius 12, got %v %v", r, ok)
	}
	if parent, ok := w.ColliderParent(next); !ok || parent != h {
		t.Fatalf("new collider parent %v %v", parent, ok)
	}
	if _, ok := w.ColliderParent(old); ok {
		t.Fatalf("removed collider should not resolve")
	}
	if cols := w.Colliders(h); len(cols) != 1 || cols[0] != next {
		t.Fatalf("expected only the new collider, got %v", cols)
	}
}

func TestReplaceColliderErrors(t *testing.T) {
	w := NewWorld(zeroGravity())
	a := ball(t, w, cp.Vector{}, 10, 1)
	b := ball(t, w, cp.Vector{X: 100}, 10, 1)
	colA := w.Colliders(a)[0]

	cases := []struct {
		name string
		body BodyHandle
		old  ColliderHandle
		desc ColliderDesc
		want error
	}{
		{"bad_geometry", a, colA, CircleCollider(0), ErrInvalidGeometry},
		{"unknown_body", BodyHandle(makeHandle(99, 0)), colA, CircleCollider(5), ErrStaleHandle},
		{"unknown_collider", a, ColliderHandle(makeHandle(99, 0)), CircleCollider(5), ErrStaleHandle},
		{"wrong_body", b, colA, CircleCollider(5), ErrNotAttached},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := w.ReplaceCollider(tc.body, tc.old, tc.desc); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if w.IsColliderRemoved(colA) {
				t.Fatalf("failed replace should not remove the collider")
			}
		})
	}
}

func TestClearRemovedCollidersRecyclesSlots(t *testing.T) {
	w := NewWorld(zeroGravity())
	h := ball(t, w, cp.Vector{}, 10, 1)
	first := w.Colliders(h)[0]

	second, err := w.ReplaceCollider(h, first, CircleCollider(11))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	w.ClearRemovedColliders()
	if w.IsColliderRemoved(first) {
		t.Fatalf("clear should forget removals")
	}

	third, err := w.ReplaceCollider(h, second, CircleCollider(12))
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if third == first {
		t.Fatalf("recycled slot reissued a stale handle")
	}
	if _, ok := w.ColliderParent(first); ok {
		t.Fatalf("stale handle resolved after slot reuse")
	}
	if _, err := w.ReplaceCollider(h, first, CircleCollider(5)); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("expected ErrStaleHandle, got %v", err)
	}
	if w.ColliderCount() != 1 {
		t.Fatalf("expected 1 live collider, got %d", w.ColliderCount())
	}
}

func TestHeadOnBallsStartThenStop(t *testing.T) {
	w := NewWorld(zeroGravity())
	a := ball(t, w, cp.Vector{X: -50}, 10, 1)
	b := ball(t, w, cp.Vector{X: 50}, 10, 1)
	w.SetLinearVelocity(a, cp.Vector{X: 100})
	w.SetLinearVelocity(b, cp.Vector{X: -100})

	var events []CollisionEvent
	for i := 0; i < 120; i++ {
		w.Step()
		events = append(events, w.DrainCollisionEvents()...)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if !events[0].Started() || !events[1].Stopped() {
		t.Fatalf("expected started then stopped, got %+v", events)
	}
	if events[1].Removed() {
		t.Fatalf("natural separation should not be flagged removed")
	}
	if va, vb := w.LinearVelocity(a), w.LinearVelocity(b); va.X >= 0 || vb.X <= 0 {
		t.Fatalf("balls should have bounced apart: %v %v", va, vb)
	}
}

func TestRingContactsAlternate(t *testing.T) {
	w := NewWorld(DefaultConfig())
	mesh, err := RingMesh(200, 5, 64)
	if err != nil {
		t.Fatalf("ring mesh: %v", err)
	}
	ring := TrimeshCollider(mesh)
	ring.Events = true
	if _, err := w.InsertBody(BodyDesc{Kind: Fixed, Position: cp.Vector{X: 320, Y: 320}}, ring); err != nil {
		t.Fatalf("insert ring: %v", err)
	}
	b := ball(t, w, cp.Vector{X: 320, Y: 320}, 15, 0)

	state := map[pairKey]EventKind{}
	started := 0
	for i := 0; i < 300; i++ {
		w.Step()
		for _, e := range w.DrainCollisionEvents() {
			k := makePairKey(e.Collider1, e.Collider2)
			if state[k] == e.Kind {
				t.Fatalf("step %d: two %v events in a row for %v", i, e.Kind, k)
			}
			if state[k] == 0 && e.Kind != Started {
				t.Fatalf("step %d: pair %v stopped before starting", i, k)
			}
			state[k] = e.Kind
			if e.Started() {
				started++
			}
		}
	}
	if started == 0 {
		t.Fatalf("ball never reached the ring")
	}
	p, _ := w.BodyPosition(b)
	if d := p.Distance(cp.Vector{X: 320, Y: 320}); d > 200 {
		t.Fatalf("ball escaped the ring: distance %v", d)
	}
}

func TestReplaceWhileTouchingQueuesRemovedStop(t *testing.T) {
	w := NewWorld(zeroGravity())
	a := ball(t, w, cp.Vector{}, 10, 1)
	ball(t, w, cp.Vector{X: 15}, 10, 1)

	w.Step()
	events := w.DrainCollisionEvents()
	if len(events) != 1 || !events[0].Started() {
		t.Fatalf("expected one started event, got %+v", events)
	}

	old := w.Colliders(a)[0]
	if _, err := w.ReplaceCollider(a, old, CircleCollider(11)); err != nil {
		t.Fatalf("replace: %v", err)
	}
	events = w.DrainCollisionEvents()
	if len(events) != 1 || !events[0].Stopped() {
		t.Fatalf("expected one stopped event, got %+v", events)
	}
	e := events[0]
	if !(e.Collider1 == old && e.Removed1) && !(e.Collider2 == old && e.Removed2) {
		t.Fatalf("stopped event should flag the replaced collider: %+v", e)
	}
	if w.Touching(e.Collider1, e.Collider2) {
		t.Fatalf("pair should no longer be touching")
	}
}

func TestSubstepsFollowSpeed(t *testing.T) {
	w := NewWorld(zeroGravity())
	h := ball(t, w, cp.Vector{}, 5, 1)

	w.Step()
	if w.Substeps() != 1 {
		t.Fatalf("resting ball should use one sub-step, got %d", w.Substeps())
	}

	w.SetLinearVelocity(h, cp.Vector{X: 300})
	w.Step()
	if n := w.Substeps(); n < 2 || n > w.Config().MaxSubsteps {
		t.Fatalf("fast ball should sub-step, got %d", n)
	}

	w.SetLinearVelocity(h, cp.Vector{X: 1e6})
	w.Step()
	if n := w.Substeps(); n != w.Config().MaxSubsteps {
		t.Fatalf("expected cap %d, got %d", w.Config().MaxSubsteps, n)
	}
}

type countingDrawer struct {
	circles, polygons int
}

func (d *countingDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	d.circles++
}
func (d *countingDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {}
func (d *countingDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
}
func (d *countingDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.polygons++
}
func (d *countingDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {}
func (d *countingDrawer) Flags() uint                                                       { return cp.DRAW_SHAPES }
func (d *countingDrawer) OutlineColor() cp.FColor                                           { return cp.FColor{} }
func (d *countingDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor            { return cp.FColor{} }
func (d *countingDrawer) ConstraintColor() cp.FColor                                        { return cp.FColor{} }
func (d *countingDrawer) CollisionPointColor() cp.FColor                                    { return cp.FColor{} }
func (d *countingDrawer) Data() interface{}                                                 { return nil }

func TestDebugDrawVisitsEveryShape(t *testing.T) {
	w := NewWorld(zeroGravity())
	mesh, err := RingMesh(200, 5, 32)
	if err != nil {
		t.Fatalf("ring mesh: %v", err)
	}
	if _, err := w.InsertBody(BodyDesc{Kind: Fixed, Position: cp.Vector{X: 320, Y: 320}}, TrimeshCollider(mesh)); err != nil {
		t.Fatalf("insert ring: %v", err)
	}
	ball(t, w, cp.Vector{X: 320, Y: 320}, 20, 1)

	d := &countingDrawer{}
	w.DebugDraw(d)
	if d.circles != 1 {
		t.Fatalf("expected one circle, got %d", d.circles)
	}
	if d.polygons != len(mesh.Indices) {
		t.Fatalf("expected %d polygons, got %d", len(mesh.Indices), d.polygons)
	}
}

func TestRestitutionIsAveraged(t *testing.T) {
	w := NewWorld(zeroGravity())
	// Product of 1 and 0 would stick the balls together; the average bounces them at half speed.
	a := ball(t, w, cp.Vector{X: -30}, 10, 1)
	b := ball(t, w, cp.Vector{X: 30}, 10, 0)
	w.SetLinearVelocity(a, cp.Vector{X: 100})
	w.SetLinearVelocity(b, cp.Vector{X: -100})

	for i := 0; i < 40; i++ {
		w.Step()
	}
	separating := w.LinearVelocity(b).X - w.LinearVelocity(a).X
	if separating < 80 || separating > 120 {
		t.Fatalf("separating speed %v, want about 100", separating)
	}
	if got := combineRestitution(1.035, 1.05); !common.NearlyEqual(got, 1.0425, 1e-12) {
		t.Fatalf("ball against ring restitution %v, want 1.0425", got)
	}
}

func TestMaxSpeedClampsIntegration(t *testing.T) {
	cfg := zeroGravity()
	cfg.MaxSpeed = 500
	w := NewWorld(cfg)
	h := ball(t, w, cp.Vector{}, 10, 1)
	w.SetLinearVelocity(h, cp.Vector{X: 1200, Y: 1600})

	w.Step()
	v := w.LinearVelocity(h)
	if v.Length() > 500+1e-6 {
		t.Fatalf("speed %v above the cap", v.Length())
	}
	if !common.NearlyEqual(v.Y/v.X, 1600.0/1200.0, 1e-9) {
		t.Fatalf("clamp changed direction: %v", v)
	}
}

func TestBoundaryKeepsBodiesInside(t *testing.T) {
	w := NewWorld(zeroGravity())
	if err := w.SetBoundary(cp.Vector{}, 100); err != nil {
		t.Fatalf("boundary: %v", err)
	}
	h := ball(t, w, cp.Vector{}, 10, 1)
	w.SetLinearVelocity(h, cp.Vector{X: 3000})

	bounced := false
	for i := 0; i < 20; i++ {
		w.Step()
		p, _ := w.BodyPosition(h)
		if d := p.Length(); d > 90+1e-9 {
			t.Fatalf("step %d: body at %v past the boundary", i, d)
		}
		if w.LinearVelocity(h).X < 0 {
			bounced = true
		}
	}
	if !bounced {
		t.Fatalf("body should have been turned back at the boundary")
	}
}

func TestSetBoundaryRejectsBadRadius(t *testing.T) {
	w := NewWorld(zeroGravity())
	for _, r := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		if err := w.SetBoundary(cp.Vector{}, r); !errors.Is(err, ErrInvalidGeometry) {
			t.Fatalf("radius %v: expected ErrInvalidGeometry, got %v", r, err)
		}
	}
}

func TestInsertLogsShapeCount(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	w := NewWorld(zeroGravity())
	mesh, err := RingMesh(100, 5, 16)
	if err != nil {
		t.Fatalf("ring mesh: %v", err)
	}
	if _, err := w.InsertBody(BodyDesc{Kind: Fixed}, TrimeshCollider(mesh)); err != nil {
		t.Fatalf("insert ring: %v", err)
	}
	want := fmt.Sprintf("(%d shapes)", len(mesh.Indices))
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("log %q should mention %s", buf.String(), want)
	}
}
