package render

import "github.com/go-gl/mathgl/mgl32"

// Material is a minimal surface description.
type Material struct {
	Color       Color
	Wireframe   bool
	DoubleSided bool
}

// Mesh places a geometry in the scene.
type Mesh struct {
	Name     string
	Geometry *Geometry
	Material Material

	Position    mgl32.Vec3
	Orientation mgl32.Quat
	Scale       mgl32.Vec3
	Visible     bool

	// CastShadow and ReceiveShadow take part in the sun shadow pass. A
	// receiver is treated as the plane of its first triangle.
	CastShadow    bool
	ReceiveShadow bool
}

// NewMesh returns a visible mesh at the origin with identity orientation and
// unit scale.
func NewMesh(g *Geometry, m Material) *Mesh {
	return &Mesh{
		Geometry:    g,
		Material:    m,
		Orientation: mgl32.QuatIdent(),
		Scale:       mgl32.Vec3{1, 1, 1},
		Visible:     true,
	}
}

// SetAxisAngle sets the orientation to a rotation of rad around axis.
func (m *Mesh) SetAxisAngle(axis mgl32.Vec3, rad float32) {
	m.Orientation = mgl32.QuatRotate(rad, axis.Normalize())
}

// Matrix returns the model matrix T·R·S.
func (m *Mesh) Matrix() mgl32.Mat4 {
	q := m.Orientation
	if q == (mgl32.Quat{}) {
		q = mgl32.QuatIdent()
	}
	s := m.Scale
	if s == (mgl32.Vec3{}) {
		s = mgl32.Vec3{1, 1, 1}
	}
	t := mgl32.Translate3D(m.Position[0], m.Position[1], m.Position[2])
	return t.Mul4(q.Normalize().Mat4()).Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
}

// AmbientLight lights every face evenly.
type AmbientLight struct {
	Color     Color
	Intensity float32
}

// DirectionalLight shines from Position towards Target.
type DirectionalLight struct {
	Color      Color
	Intensity  float32
	Position   mgl32.Vec3
	Target     mgl32.Vec3
	CastShadow bool
}

// Direction returns the unit vector pointing from the scene towards the light.
func (l DirectionalLight) Direction() mgl32.Vec3 {
	d := l.Position.Sub(l.Target)
	if d.Len() == 0 {
		return mgl32.Vec3{}
	}
	return d.Normalize()
}

// Scene is an ordered collection of meshes plus lighting.
type Scene struct {
	Background Color
	Ambient    AmbientLight
	Sun        DirectionalLight

	meshes []*Mesh
}

// NewScene returns an empty scene with a white ambient light and a white
// directional light from above.
func NewScene() *Scene {
	return &Scene{
		Background: RGB(0, 0, 0),
		Ambient:    AmbientLight{Color: RGB(0xFF, 0xFF, 0xFF), Intensity: 0.25},
		Sun: DirectionalLight{
			Color:     RGB(0xFF, 0xFF, 0xFF),
			Intensity: 0.75,
			Position:  mgl32.Vec3{1, 1, 1},
		},
	}
}

// Add appends m to the scene and returns it.
func (s *Scene) Add(m *Mesh) *Mesh {
	if s == nil || m == nil {
		return m
	}
	s.meshes = append(s.meshes, m)
	return m
}

// Remove drops m from the scene, reporting whether it was present.
func (s *Scene) Remove(m *Mesh) bool {
	if s == nil {
		return false
	}
	for i, x := range s.meshes {
		if x == m {
			copy(s.meshes[i:], s.meshes[i+1:])
			s.meshes[len(s.meshes)-1] = nil
			s.meshes = s.meshes[:len(s.meshes)-1]
			return true
		}
	}
	return false
}

// Meshes returns the meshes in insertion order. The slice is owned by the
// scene.
func (s *Scene) Meshes() []*Mesh {
	if s == nil {
		return nil
	}
	return s.meshes
}

func (s *Scene) Len() int {
	if s == nil {
		return 0
	}
	return len(s.meshes)
}
