// Package physics is a small rigid-body engine: planes, boxes and spheres
// advanced by a semi-fixed timestep with sweep-and-prune broad-phase,
// contact generation, a sequential-impulse solver and sleeping.
//
// All math is float64 (mgl64). Nothing here is safe for concurrent use; a
// World and its bodies belong to one goroutine.
package physics
