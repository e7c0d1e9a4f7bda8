package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
)

var ErrInvalidRing = errors.New("physics: invalid ring geometry")

// Trimesh is a collider shape given by explicit vertices and triangles.
type Trimesh struct {
	Vertices []cp.Vector
	Indices  [][3]uint32
}

// RingMesh builds a closed band between radius and radius+thickness. The
// vertices alternate outer and inner around the circle and consecutive
// triples form a triangle strip, closed by two extra triangles.
func RingMesh(radius, thickness float64, pointCount int) (Trimesh, error) {
	if pointCount < 3 {
		return Trimesh{}, fmt.Errorf("%w: a ring must have at least 3 points, got %d", ErrInvalidRing, pointCount)
	}
	if !(radius > 0) {
		return Trimesh{}, fmt.Errorf("%w: a ring must have a radius greater than 0, got %v", ErrInvalidRing, radius)
	}
	if !(thickness > 0) {
		return Trimesh{}, fmt.Errorf("%w: a ring must have a thickness greater than 0, got %v", ErrInvalidRing, thickness)
	}

	n := pointCount * 2
	vertices := make([]cp.Vector, 0, n)
	for i := 0; i < n; i++ {
		angle := float64(i) / float64(n) * math.Pi * 2
		r := radius
		if i%2 == 0 {
			r = radius + thickness
		}
		vertices = append(vertices, cp.Vector{X: math.Cos(angle) * r, Y: math.Sin(angle) * r})
	}

	indices := make([][3]uint32, 0, n)
	for i := 0; i < n-2; i++ {
		indices = append(indices, [3]uint32{uint32(i), uint32(i + 1), uint32(i + 2)})
	}
	last := uint32(n)
	indices = append(indices,
		[3]uint32{last - 2, last - 1, 0},
		[3]uint32{last - 1, 1, 0},
	)

	return Trimesh{Vertices: vertices, Indices: indices}, nil
}

// Validate checks that every triangle references existing vertices and has area.
func (m Trimesh) Validate() error {
	if len(m.Indices) == 0 {
		return fmt.Errorf("%w: trimesh has no triangles", ErrInvalidGeometry)
	}
	for i, tri := range m.Indices {
		for _, idx := range tri {
			if int(idx) >= len(m.Vertices) {
				return fmt.Errorf("%w: triangle %d references vertex %d of %d", ErrInvalidGeometry, i, idx, len(m.Vertices))
			}
		}
		v := m.Triangle(i)
		area := v[1].Sub(v[0]).Cross(v[2].Sub(v[0]))
		if math.Abs(area) < 1e-9 {
			return fmt.Errorf("%w: triangle %d is degenerate", ErrInvalidGeometry, i)
		}
	}
	return nil
}

func (m Trimesh) Triangle(i int) [3]cp.Vector {
	tri := m.Indices[i]
	return [3]cp.Vector{m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]}
}

// MinEdge is the shortest triangle edge, used as the mesh's thinnest feature.
func (m Trimesh) MinEdge() float64 {
	shortest := math.Inf(1)
	for i := range m.Indices {
		v := m.Triangle(i)
		for j := 0; j < 3; j++ {
			d := v[j].Distance(v[(j+1)%3])
			if d < shortest {
				shortest = d
			}
		}
	}
	if math.IsInf(shortest, 1) {
		return 0
	}
	return shortest
}
