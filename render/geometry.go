package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is a geometry vertex in object space.
type Vertex struct {
	Pos    mgl32.Vec3
	Normal mgl32.Vec3
}

// Geometry is an indexed triangle list. Geometries are immutable once built
// and may be shared between meshes.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint16
}

// Triangles returns the number of whole triangles in g.
func (g *Geometry) Triangles() int {
	if g == nil {
		return 0
	}
	return len(g.Indices) / 3
}

// NewBoxGeometry returns an axis-aligned box centered on the origin with the
// given width (X), height (Y) and depth (Z). Each face has its own four
// vertices so normals stay flat.
func NewBoxGeometry(width, height, depth float32) *Geometry {
	half := mgl32.Vec3{width / 2, height / 2, depth / 2}
	extent := func(axis mgl32.Vec3) float32 {
		return abs32(axis[0])*half[0] + abs32(axis[1])*half[1] + abs32(axis[2])*half[2]
	}

	// For each face, u × v = n, so (-u,-v) (+u,-v) (+u,+v) (-u,+v) winds
	// counter-clockwise seen from outside.
	faces := [6][3]mgl32.Vec3{
		{{1, 0, 0}, {0, 0, -1}, {0, 1, 0}},
		{{-1, 0, 0}, {0, 0, 1}, {0, 1, 0}},
		{{0, 1, 0}, {1, 0, 0}, {0, 0, -1}},
		{{0, -1, 0}, {1, 0, 0}, {0, 0, 1}},
		{{0, 0, 1}, {1, 0, 0}, {0, 1, 0}},
		{{0, 0, -1}, {-1, 0, 0}, {0, 1, 0}},
	}

	g := &Geometry{
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint16, 0, 36),
	}
	for _, f := range faces {
		n, u, v := f[0], f[1], f[2]
		center := n.Mul(extent(n))
		du := u.Mul(extent(u))
		dv := v.Mul(extent(v))

		base := uint16(len(g.Vertices))
		g.Vertices = append(g.Vertices,
			Vertex{Pos: center.Sub(du).Sub(dv), Normal: n},
			Vertex{Pos: center.Add(du).Sub(dv), Normal: n},
			Vertex{Pos: center.Add(du).Add(dv), Normal: n},
			Vertex{Pos: center.Sub(du).Add(dv), Normal: n},
		)
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}

// NewSphereGeometry returns a UV sphere centered on the origin.
func NewSphereGeometry(radius float32, widthSegments, heightSegments int) *Geometry {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}

	g := &Geometry{}
	grid := make([][]uint16, heightSegments+1)
	for iy := 0; iy <= heightSegments; iy++ {
		v := float64(iy) / float64(heightSegments)
		phi := v * math.Pi
		row := make([]uint16, widthSegments+1)
		for ix := 0; ix <= widthSegments; ix++ {
			u := float64(ix) / float64(widthSegments)
			theta := u * 2 * math.Pi

			n := mgl32.Vec3{
				float32(-math.Cos(theta) * math.Sin(phi)),
				float32(math.Cos(phi)),
				float32(math.Sin(theta) * math.Sin(phi)),
			}
			row[ix] = uint16(len(g.Vertices))
			g.Vertices = append(g.Vertices, Vertex{Pos: n.Mul(radius), Normal: n})
		}
		grid[iy] = row
	}

	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	return g
}

// NewPlaneGeometry returns a plane in the XY plane facing +Z, subdivided into
// widthSegments × heightSegments quads.
func NewPlaneGeometry(width, height float32, widthSegments, heightSegments int) *Geometry {
	if widthSegments < 1 {
		widthSegments = 1
	}
	if heightSegments < 1 {
		heightSegments = 1
	}
	gx1 := widthSegments + 1
	gy1 := heightSegments + 1
	segW := width / float32(widthSegments)
	segH := height / float32(heightSegments)

	g := &Geometry{
		Vertices: make([]Vertex, 0, gx1*gy1),
		Indices:  make([]uint16, 0, widthSegments*heightSegments*6),
	}
	n := mgl32.Vec3{0, 0, 1}
	for iy := 0; iy < gy1; iy++ {
		y := float32(iy)*segH - height/2
		for ix := 0; ix < gx1; ix++ {
			x := float32(ix)*segW - width/2
			g.Vertices = append(g.Vertices, Vertex{Pos: mgl32.Vec3{x, -y, 0}, Normal: n})
		}
	}
	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := uint16(ix + gx1*iy)
			b := uint16(ix + gx1*(iy+1))
			c := uint16(ix + 1 + gx1*(iy+1))
			d := uint16(ix + 1 + gx1*iy)
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	return g
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
