package app

import (
	"math"

	"cubefall/internal/config"
	"cubefall/physics"
	"cubefall/render"
	"cubefall/sim"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	floorColor = render.Hex(0xe0e0e0)
	white      = render.Hex(0xffffff)
)

// towerHeight is the number of boxes in the "tower" layout.
const towerHeight = 10

// BuildScene adds lights, the floor, the sphere and the box layout.
func BuildScene(s *sim.Session, sc config.SceneConfig) {
	scene := s.Scene()
	scene.Ambient = render.AmbientLight{Color: white, Intensity: 0.7}
	scene.Sun = render.DirectionalLight{Color: white, Intensity: 1, Position: mgl32.Vec3{2, 5, 0}, CastShadow: true}

	size := float32(sc.FloorSize)
	floor := render.NewMesh(render.NewPlaneGeometry(size, size, 20, 20), render.Material{Color: floorColor})
	floor.Name = "floor"
	floor.ReceiveShadow = true
	s.AddStatic(physics.NewPlane(), floor, mgl64.Vec3{}, mgl64.QuatRotate(-math.Pi/2, mgl64.Vec3{1, 0, 0}))

	s.SpawnSphere(mgl64.Vec3{2, 0, 0})
	for _, p := range boxLayout(sc.Layout, sc.BoxSize) {
		s.SpawnBox(p)
	}
}

// boxLayout returns the spawn positions for layout.
//
// "grid" is two 4×4 walls at z=1 and z=2 plus a row at y=0, z=0 that is
// spawned once per wall row, so its boxes start on top of each other and
// burst apart on the first steps. "tower" stacks boxes on the origin.
func boxLayout(layout string, size float64) []mgl64.Vec3 {
	var out []mgl64.Vec3
	switch layout {
	case "tower":
		for i := 0; i < towerHeight; i++ {
			out = append(out, mgl64.Vec3{0, size/2 + float64(i)*size*1.01, 0})
		}
	default:
		for i := 0; i <= 3; i++ {
			for j := 0; j <= 3; j++ {
				x, y := -float64(i), float64(j)
				out = append(out,
					mgl64.Vec3{x, y, 1},
					mgl64.Vec3{x, y, 2},
					mgl64.Vec3{x, 0, 0},
				)
			}
		}
	}
	return out
}
