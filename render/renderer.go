package render

import "github.com/go-gl/mathgl/mgl32"

// nearW is the smallest clip-space w a vertex may have before its triangle
// is dropped.
const nearW = 1e-4

// Renderer is a fixed-pipeline software renderer.
//
// Create it once and reuse it; scratch buffers grow to the largest target
// and mesh seen and are not released.
type Renderer struct {
	// Wireframe forces every mesh to draw as edges.
	Wireframe bool
	// Shadows enables the sun shadow pass. The scene's sun must also have
	// CastShadow set.
	Shadows bool

	depth []float32
	owner []int32
	clip  []mgl32.Vec4
	world []mgl32.Vec3

	stats Stats
}

// Stats counts the work done by the last Render call.
type Stats struct {
	Meshes    int
	Triangles int
	Culled    int
	Shadows   int
}

func NewRenderer() *Renderer { return &Renderer{} }

// Stats returns counters for the most recent Render.
func (r *Renderer) Stats() Stats { return r.stats }

// Render clears t to the scene background and draws every visible mesh as
// seen through cam.
func (r *Renderer) Render(t Target, s *Scene, cam *Camera) {
	if r == nil {
		return
	}
	r.stats = Stats{}
	if t == nil || s == nil || cam == nil {
		return
	}
	w, h := t.Size()
	if w <= 0 || h <= 0 {
		return
	}
	t.Clear(s.Background)
	r.resetDepth(w * h)
	r.resetOwner(w * h)

	vp := cam.ViewProjection()
	light := lighting{
		ambient: colorFactors(s.Ambient.Color, s.Ambient.Intensity),
		sun:     colorFactors(s.Sun.Color, s.Sun.Intensity),
		dir:     s.Sun.Direction(),
	}

	meshes := s.Meshes()
	for i, m := range meshes {
		if !drawable(m) {
			continue
		}
		r.renderMesh(t, w, h, vp, m, int32(i), light)
	}
	if r.Shadows && !r.Wireframe && s.Sun.CastShadow && s.Sun.Intensity > 0 {
		r.renderShadows(t, w, h, vp, meshes, light)
	}
}

func drawable(m *Mesh) bool {
	return m != nil && m.Visible && m.Geometry != nil
}

func (r *Renderer) resetDepth(n int) {
	if cap(r.depth) < n {
		r.depth = make([]float32, n)
	}
	r.depth = r.depth[:n]
	for i := range r.depth {
		r.depth[i] = 1
	}
}

// resetOwner marks every pixel as not covered by any mesh.
func (r *Renderer) resetOwner(n int) {
	if cap(r.owner) < n {
		r.owner = make([]int32, n)
	}
	r.owner = r.owner[:n]
	for i := range r.owner {
		r.owner[i] = -1
	}
}

type lighting struct {
	ambient [3]float32
	sun     [3]float32
	dir     mgl32.Vec3
}

func colorFactors(c Color, intensity float32) [3]float32 {
	return [3]float32{
		float32(c.R) / 255 * intensity,
		float32(c.G) / 255 * intensity,
		float32(c.B) / 255 * intensity,
	}
}

// shade applies Lambert lighting for a face with world normal n.
func (l lighting) shade(base Color, n mgl32.Vec3) Color {
	d := n.Dot(l.dir)
	if d < 0 {
		d = 0
	}
	return base.Modulate(
		l.ambient[0]+l.sun[0]*d,
		l.ambient[1]+l.sun[1]*d,
		l.ambient[2]+l.sun[2]*d,
	)
}

// unlit is base lit by the ambient term alone.
func (l lighting) unlit(base Color) Color {
	return base.Modulate(l.ambient[0], l.ambient[1], l.ambient[2])
}

type screenPoint struct {
	x, y, z float32
}

func (r *Renderer) renderMesh(t Target, w, h int, vp mgl32.Mat4, m *Mesh, id int32, light lighting) {
	g := m.Geometry
	if len(g.Vertices) == 0 || len(g.Indices) < 3 {
		return
	}
	r.stats.Meshes++

	model := m.Matrix()
	mvp := vp.Mul4(model)

	n := len(g.Vertices)
	if cap(r.clip) < n {
		r.clip = make([]mgl32.Vec4, n)
		r.world = make([]mgl32.Vec3, n)
	}
	r.clip = r.clip[:n]
	r.world = r.world[:n]
	for i, v := range g.Vertices {
		p := v.Pos.Vec4(1)
		r.clip[i] = mvp.Mul4x1(p)
		r.world[i] = model.Mul4x1(p).Vec3()
	}

	wire := r.Wireframe || m.Material.Wireframe
	for i := 0; i+2 < len(g.Indices); i += 3 {
		i0, i1, i2 := int(g.Indices[i]), int(g.Indices[i+1]), int(g.Indices[i+2])
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		c0, c1, c2 := r.clip[i0], r.clip[i1], r.clip[i2]
		if c0[3] < nearW || c1[3] < nearW || c2[3] < nearW {
			r.stats.Culled++
			continue
		}
		if outsideFrustum(c0, c1, c2) {
			r.stats.Culled++
			continue
		}

		p0 := toScreen(c0, w, h)
		p1 := toScreen(c1, w, h)
		p2 := toScreen(c2, w, h)

		// Screen Y points down, so a front (counter-clockwise) face has a
		// negative signed area here.
		area := edge(p0, p1, p2.x, p2.y)
		front := area < 0
		if !front && !m.Material.DoubleSided {
			r.stats.Culled++
			continue
		}
		if area == 0 {
			continue
		}

		normal := r.world[i1].Sub(r.world[i0]).Cross(r.world[i2].Sub(r.world[i0]))
		if normal.Len() > 0 {
			normal = normal.Normalize()
		}
		if !front {
			normal = normal.Mul(-1)
		}
		c := light.shade(m.Material.Color, normal)

		r.stats.Triangles++
		if wire {
			drawLine(t, p0, p1, c)
			drawLine(t, p1, p2, c)
			drawLine(t, p2, p0, c)
			continue
		}
		r.fillTriangle(t, w, h, p0, p1, p2, area, id, c)
	}
}

func outsideFrustum(a, b, c mgl32.Vec4) bool {
	for axis := 0; axis < 3; axis++ {
		if a[axis] > a[3] && b[axis] > b[3] && c[axis] > c[3] {
			return true
		}
		if a[axis] < -a[3] && b[axis] < -b[3] && c[axis] < -c[3] {
			return true
		}
	}
	return false
}

func toScreen(c mgl32.Vec4, w, h int) screenPoint {
	inv := 1 / c[3]
	x, y, z := c[0]*inv, c[1]*inv, c[2]*inv
	return screenPoint{
		x: (x*0.5 + 0.5) * float32(w),
		y: (1 - (y*0.5 + 0.5)) * float32(h),
		z: z*0.5 + 0.5,
	}
}

func edge(a, b screenPoint, x, y float32) float32 {
	return (b.x-a.x)*(y-a.y) - (b.y-a.y)*(x-a.x)
}

func (r *Renderer) fillTriangle(t Target, w, h int, p0, p1, p2 screenPoint, area float32, id int32, c Color) {
	minX := clampInt(int(min3f(p0.x, p1.x, p2.x)), 0, w-1)
	maxX := clampInt(int(max3f(p0.x, p1.x, p2.x)), 0, w-1)
	minY := clampInt(int(min3f(p0.y, p1.y, p2.y)), 0, h-1)
	maxY := clampInt(int(max3f(p0.y, p1.y, p2.y)), 0, h-1)

	inv := 1 / area
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			b0 := edge(p1, p2, px, py) * inv
			b1 := edge(p2, p0, px, py) * inv
			b2 := edge(p0, p1, px, py) * inv
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}
			z := b0*p0.z + b1*p1.z + b2*p2.z
			idx := y*w + x
			if z < 0 || z >= r.depth[idx] {
				continue
			}
			r.depth[idx] = z
			r.owner[idx] = id
			t.SetPixel(x, y, c)
		}
	}
}

func drawLine(t Target, a, b screenPoint, c Color) {
	w, h := t.Size()
	a, b, ok := clipLine(a, b, float32(w-1), float32(h-1))
	if !ok {
		return
	}
	x0, y0 := int(a.x), int(a.y)
	x1, y1 := int(b.x), int(b.y)

	dx := absInt(x1 - x0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -absInt(y1 - y0)
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		t.SetPixel(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// clipLine clips the segment ab to [0,maxX]×[0,maxY] (Liang–Barsky).
func clipLine(a, b screenPoint, maxX, maxY float32) (screenPoint, screenPoint, bool) {
	if maxX < 0 || maxY < 0 {
		return a, b, false
	}
	dx, dy := b.x-a.x, b.y-a.y
	t0, t1 := float32(0), float32(1)
	clip := func(p, q float32) bool {
		if p == 0 {
			return q >= 0
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return false
			}
			if r > t0 {
				t0 = r
			}
		} else {
			if r < t0 {
				return false
			}
			if r < t1 {
				t1 = r
			}
		}
		return true
	}
	if !clip(-dx, a.x) || !clip(dx, maxX-a.x) || !clip(-dy, a.y) || !clip(dy, maxY-a.y) {
		return a, b, false
	}
	na := screenPoint{x: a.x + t0*dx, y: a.y + t0*dy, z: a.z}
	nb := screenPoint{x: a.x + t1*dx, y: a.y + t1*dy, z: b.z}
	return na, nb, true
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func min3f(a, b, c float32) float32 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func max3f(a, b, c float32) float32 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}
	return a
}
