// Package sim is the frame driver: it owns the render scene, the physics
// world and the registry of mesh/body pairs, and on every tick steps the
// world, copies body transforms onto their meshes and renders one frame.
package sim
