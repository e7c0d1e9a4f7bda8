package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

var ErrInvalidGeometry = errors.New("physics: invalid geometry")

type BodyKind int

const (
	Dynamic BodyKind = iota
	Fixed
)

func (k BodyKind) String() string {
	switch k {
	case Dynamic:
		return "dynamic"
	case Fixed:
		return "fixed"
	default:
		return fmt.Sprintf("BodyKind(%d)", int(k))
	}
}

// BodyDesc describes a rigid body at insertion time.
type BodyDesc struct {
	Kind     BodyKind
	Position cp.Vector
	Angle    float64
	// CCD lets the body raise the sub-step count when it moves fast.
	CCD bool
}

type ShapeKind int

const (
	ShapeCircle ShapeKind = iota + 1
	ShapeTrimesh
)

// ColliderDesc describes a collider before it is attached to a body.
type ColliderDesc struct {
	Shape       ShapeKind
	Radius      float64
	Mesh        Trimesh
	Restitution float64
	Friction    float64
	Density     float64
	// Events makes contacts involving this collider reach the event queue.
	Events bool
}

func CircleCollider(radius float64) ColliderDesc {
	return ColliderDesc{Shape: ShapeCircle, Radius: radius, Density: 1, Friction: 0.5}
}

func TrimeshCollider(mesh Trimesh) ColliderDesc {
	return ColliderDesc{Shape: ShapeTrimesh, Mesh: mesh, Density: 1, Friction: 0.5}
}

func (d ColliderDesc) validate() error {
	switch d.Shape {
	case ShapeCircle:
		if !(d.Radius > 0) || math.IsInf(d.Radius, 0) {
			return fmt.Errorf("%w: circle radius must be positive, got %v", ErrInvalidGeometry, d.Radius)
		}
	case ShapeTrimesh:
		if err := d.Mesh.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown shape kind %d", ErrInvalidGeometry, d.Shape)
	}
	if d.Density < 0 || d.Restitution < 0 || d.Friction < 0 {
		return fmt.Errorf("%w: negative material value", ErrInvalidGeometry)
	}
	return nil
}

func (d ColliderDesc) density() float64 {
	if d.Density > 0 {
		return d.Density
	}
	return 1
}

// mass follows the collider area, the way density-driven engines derive it.
func (d ColliderDesc) mass() float64 {
	switch d.Shape {
	case ShapeCircle:
		return d.density() * math.Pi * d.Radius * d.Radius
	case ShapeTrimesh:
		area := 0.0
		for i := range d.Mesh.Indices {
			v := d.Mesh.Triangle(i)
			area += math.Abs(v[1].Sub(v[0]).Cross(v[2].Sub(v[0]))) / 2
		}
		return d.density() * area
	}
	return 0
}

func (d ColliderDesc) moment(mass float64) float64 {
	if d.Shape == ShapeCircle {
		return cp.MomentForCircle(mass, 0, d.Radius, cp.Vector{})
	}
	r := 0.0
	for _, v := range d.Mesh.Vertices {
		r = math.Max(r, v.Length())
	}
	return cp.MomentForCircle(mass, 0, r, cp.Vector{})
}

// feature is the smallest length the collider can be crossed in.
func (d ColliderDesc) feature() float64 {
	if d.Shape == ShapeCircle {
		return d.Radius
	}
	return d.Mesh.MinEdge()
}

func (d ColliderDesc) shapes(body *cp.Body) []*cp.Shape {
	switch d.Shape {
	case ShapeCircle:
		return []*cp.Shape{cp.NewCircle(body, d.Radius, cp.Vector{})}
	case ShapeTrimesh:
		shapes := make([]*cp.Shape, 0, len(d.Mesh.Indices))
		for i := range d.Mesh.Indices {
			tri := d.Mesh.Triangle(i)
			shapes = append(shapes, cp.NewPolyShape(body, 3, tri[:], cp.NewTransformIdentity(), 0))
		}
		return shapes
	}
	return nil
}
