// Package render is a small software 3D renderer for the demo scene.
//
// A Scene holds meshes and lights; a Camera supplies the view and projection;
// a Renderer rasterizes the scene into a caller-provided Target.
//
// Pipeline (fixed):
//
//	Mesh → Model/View/Projection → Near reject → Cull → Rasterize (depth) → Target.
//
// Conventions follow the usual right-handed, Y-up setup: front faces wind
// counter-clockwise, cameras look down their local -Z, geometry generators
// emit counter-clockwise triangles seen from outside.
//
// All math uses github.com/go-gl/mathgl/mgl32.
package render
