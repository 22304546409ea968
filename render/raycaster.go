package render

import "github.com/go-gl/mathgl/mgl32"

// Ray is a half-line from Origin along the unit vector Direction.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

func (r Ray) At(t float32) mgl32.Vec3 {
	return r.Origin.Add(r.Direction.Mul(t))
}

// RayFromCamera returns the ray from the camera through the point at
// normalized device coordinates ndc (both axes in [-1,1], +Y up).
func RayFromCamera(ndc mgl32.Vec2, cam *Camera) Ray {
	inv := cam.ViewProjection().Inv()
	p := inv.Mul4x1(mgl32.Vec4{ndc[0], ndc[1], 0.5, 1})
	if p[3] != 0 {
		p = p.Mul(1 / p[3])
	}
	dir := p.Vec3().Sub(cam.Position)
	if dir.Len() == 0 {
		dir = cam.Target.Sub(cam.Position)
	}
	return Ray{Origin: cam.Position, Direction: dir.Normalize()}
}

// PointerToNDC maps a pointer position in pixels on a w×h surface to
// normalized device coordinates.
func PointerToNDC(x, y float32, w, h int) mgl32.Vec2 {
	if w <= 0 || h <= 0 {
		return mgl32.Vec2{}
	}
	return mgl32.Vec2{x/float32(w)*2 - 1, -y/float32(h)*2 + 1}
}
