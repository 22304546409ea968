package sim

import (
	"cubefall/internal/logger"
	"cubefall/physics"
	"cubefall/render"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// HighlightColor marks the pair under the pointer.
var HighlightColor = render.Hex(0xff8800)

// SetPointer records the pointer at logical pixel (x,y) on the surface.
func (s *Session) SetPointer(x, y float64) {
	w, h := s.surface.LogicalSize()
	s.pointer = render.PointerToNDC(float32(x), float32(y), w, h)
	s.hasPointer = true
}

// Pointer returns the pointer in normalized device coordinates and whether
// one has been recorded.
func (s *Session) Pointer() (mgl32.Vec2, bool) { return s.pointer, s.hasPointer }

func (s *Session) SetPicking(on bool) {
	s.picking = on
	if !on {
		s.setHovered(nil)
	}
}

// Hovered returns the pair under the pointer as of the last tick.
func (s *Session) Hovered() *Pair { return s.hovered }

// Pick returns the registered pair closest to the camera along the ray
// through ndc.
func (s *Session) Pick(ndc mgl32.Vec2) (*Pair, physics.RaycastResult, bool) {
	if s.closed {
		return nil, physics.RaycastResult{}, false
	}
	ray := render.RayFromCamera(ndc, s.camera)
	from := vec64(ray.Origin)
	to := from.Add(vec64(ray.Direction).Mul(float64(s.camera.Far)))
	hit, ok := s.world.RaycastClosest(from, to, func(b *physics.Body) bool {
		_, registered := s.registry.Lookup(b)
		return registered
	})
	if !ok {
		return nil, hit, false
	}
	p, _ := s.registry.Lookup(hit.Body)
	return p, hit, true
}

// Click logs the pointer at logical pixel (x,y) in normalized device
// coordinates together with the pair under it.
func (s *Session) Click(x, y float64) *Pair {
	s.SetPointer(x, y)
	p, hit, ok := s.Pick(s.pointer)
	if !ok {
		logger.L().Info("click", "x", s.pointer[0], "y", s.pointer[1])
		return nil
	}
	logger.L().Info("click", "x", s.pointer[0], "y", s.pointer[1],
		"body", hit.Body.ID, "kind", p.Kind.String(), "distance", hit.Distance)
	return p
}

func (s *Session) updateHover() {
	if !s.hasPointer {
		return
	}
	p, _, _ := s.Pick(s.pointer)
	s.setHovered(p)
}

func (s *Session) setHovered(p *Pair) {
	if p == s.hovered {
		return
	}
	if s.hovered != nil {
		s.hovered.Mesh.Material.Color = s.hovered.base
	}
	s.hovered = p
	if p != nil {
		p.Mesh.Material.Color = HighlightColor
	}
}

func vec64(v mgl32.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
}
