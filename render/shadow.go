package render

import "github.com/go-gl/mathgl/mgl32"

// Shadows are planar projections: every light-facing triangle of a caster is
// pushed along the sun direction onto the plane of each receiver and drawn
// in the receiver's ambient-only color. Only pixels whose visible surface
// belongs to that receiver are touched, so casters hide their own shadows
// and nothing spills past the receiver's edges.

// minShadowCos drops receivers the sun only grazes.
const minShadowCos = 1e-3

type plane struct {
	n mgl32.Vec3
	d float32
}

func (p plane) distance(v mgl32.Vec3) float32 { return p.n.Dot(v) - p.d }

// receiverPlane returns the world plane of m's first non-degenerate
// triangle, facing the same way as that triangle's front.
func receiverPlane(m *Mesh) (plane, bool) {
	g := m.Geometry
	model := m.Matrix()
	n := len(g.Vertices)
	for i := 0; i+2 < len(g.Indices); i += 3 {
		i0, i1, i2 := int(g.Indices[i]), int(g.Indices[i+1]), int(g.Indices[i+2])
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		a := model.Mul4x1(g.Vertices[i0].Pos.Vec4(1)).Vec3()
		b := model.Mul4x1(g.Vertices[i1].Pos.Vec4(1)).Vec3()
		c := model.Mul4x1(g.Vertices[i2].Pos.Vec4(1)).Vec3()
		nrm := b.Sub(a).Cross(c.Sub(a))
		if nrm.Len() < 1e-9 {
			continue
		}
		nrm = nrm.Normalize()
		return plane{n: nrm, d: nrm.Dot(a)}, true
	}
	return plane{}, false
}

func (r *Renderer) renderShadows(t Target, w, h int, vp mgl32.Mat4, meshes []*Mesh, light lighting) {
	for ri, rm := range meshes {
		if !drawable(rm) || !rm.ReceiveShadow || rm.Material.Wireframe {
			continue
		}
		pl, ok := receiverPlane(rm)
		if !ok {
			continue
		}
		cos := pl.n.Dot(light.dir)
		if cos < minShadowCos {
			continue
		}
		c := light.unlit(rm.Material.Color)
		for _, cm := range meshes {
			if cm == rm || !drawable(cm) || !cm.CastShadow {
				continue
			}
			r.castShadow(t, w, h, vp, cm, pl, cos, light.dir, int32(ri), c)
		}
	}
}

func (r *Renderer) castShadow(t Target, w, h int, vp mgl32.Mat4, m *Mesh, pl plane, cos float32, dir mgl32.Vec3, id int32, c Color) {
	g := m.Geometry
	n := len(g.Vertices)
	if n == 0 || len(g.Indices) < 3 {
		return
	}
	model := m.Matrix()
	if cap(r.world) < n {
		r.world = make([]mgl32.Vec3, n)
	}
	r.world = r.world[:n]
	for i, v := range g.Vertices {
		r.world[i] = model.Mul4x1(v.Pos.Vec4(1)).Vec3()
	}

	for i := 0; i+2 < len(g.Indices); i += 3 {
		i0, i1, i2 := int(g.Indices[i]), int(g.Indices[i+1]), int(g.Indices[i+2])
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		tri := [3]mgl32.Vec3{r.world[i0], r.world[i1], r.world[i2]}
		if tri[1].Sub(tri[0]).Cross(tri[2].Sub(tri[0])).Dot(dir) <= 0 {
			continue
		}

		var cl [3]mgl32.Vec4
		above, ok := false, true
		for k, p := range tri {
			dist := pl.distance(p)
			if dist > 0 {
				above = true
			}
			q := p.Sub(dir.Mul(dist / cos))
			cl[k] = vp.Mul4x1(q.Vec4(1))
			if cl[k][3] < nearW {
				ok = false
				break
			}
		}
		if !ok || !above || outsideFrustum(cl[0], cl[1], cl[2]) {
			continue
		}
		r.stats.Shadows++
		r.fillShadow(t, w, h, toScreen(cl[0], w, h), toScreen(cl[1], w, h), toScreen(cl[2], w, h), id, c)
	}
}

// fillShadow paints the pixels of the triangle whose visible surface
// belongs to mesh id.
func (r *Renderer) fillShadow(t Target, w, h int, p0, p1, p2 screenPoint, id int32, c Color) {
	area := edge(p0, p1, p2.x, p2.y)
	if area == 0 {
		return
	}
	minX := clampInt(int(min3f(p0.x, p1.x, p2.x)), 0, w-1)
	maxX := clampInt(int(max3f(p0.x, p1.x, p2.x)), 0, w-1)
	minY := clampInt(int(min3f(p0.y, p1.y, p2.y)), 0, h-1)
	maxY := clampInt(int(max3f(p0.y, p1.y, p2.y)), 0, h-1)

	inv := 1 / area
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			if edge(p1, p2, px, py)*inv < 0 || edge(p2, p0, px, py)*inv < 0 || edge(p0, p1, px, py)*inv < 0 {
				continue
			}
			if r.owner[y*w+x] != id {
				continue
			}
			t.SetPixel(x, y, c)
		}
	}
}
