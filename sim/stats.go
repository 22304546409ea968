package sim

import "cubefall/physics"

// Stats is a snapshot of the session for overlays and logs.
type Stats struct {
	Frames    uint64
	Elapsed   float64
	Delta     float64
	SubSteps  int
	WorldTime float64

	Pairs     int
	Bodies    int
	Sleeping  int
	Contacts  int
	Triangles int
	Culled    int

	Wireframe bool
	Hovered   int // body ID, 0 for none
}

func (s *Session) Stats() Stats {
	st := Stats{
		Frames:    s.frames,
		Elapsed:   s.prevElapsed,
		Delta:     s.lastDelta,
		SubSteps:  s.subSteps,
		Pairs:     s.registry.Len(),
		Wireframe: s.renderer.Wireframe,
	}
	rs := s.renderer.Stats()
	st.Triangles = rs.Triangles
	st.Culled = rs.Culled
	if s.hovered != nil {
		st.Hovered = s.hovered.Body.ID
	}
	if s.world == nil {
		return st
	}
	st.WorldTime = s.world.Time()
	st.Contacts = len(s.world.Contacts())
	for _, b := range s.world.Bodies() {
		st.Bodies++
		if b.SleepState() == physics.Sleeping {
			st.Sleeping++
		}
	}
	return st
}
