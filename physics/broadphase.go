package physics

// Pair is a candidate collision pair produced by a broad-phase.
type Pair struct {
	A, B *Body
}

// Broadphase finds pairs of bodies whose bounds overlap.
type Broadphase interface {
	// Pairs appends candidate pairs among bodies to dst and returns it.
	// Implementations refresh each body's AABB first.
	Pairs(bodies []*Body, dst []Pair) []Pair
}

// needsCollision filters pairs that can never produce a useful contact:
// two non-dynamic bodies, or two bodies that are each static or asleep.
func needsCollision(a, b *Body) bool {
	if a.Type != Dynamic && b.Type != Dynamic {
		return false
	}
	restingA := a.Type == Static || a.sleepState == Sleeping
	restingB := b.Type == Static || b.sleepState == Sleeping
	return !(restingA && restingB)
}

func updateAABBs(bodies []*Body) {
	for _, b := range bodies {
		b.updateAABB()
	}
}

// NaiveBroadphase tests every pair.
type NaiveBroadphase struct{}

func (NaiveBroadphase) Pairs(bodies []*Body, dst []Pair) []Pair {
	updateAABBs(bodies)
	for i := 0; i < len(bodies); i++ {
		for j := i + 1; j < len(bodies); j++ {
			a, b := bodies[i], bodies[j]
			if needsCollision(a, b) && a.aabb.Overlaps(b.aabb) {
				dst = append(dst, Pair{A: a, B: b})
			}
		}
	}
	return dst
}

// SAPBroadphase is a sweep-and-prune broad-phase. Bodies are kept sorted by
// their AABB minimum along the axis where body positions vary most; the
// list is re-sorted with insertion sort, which is near linear when bodies
// move little between steps.
type SAPBroadphase struct {
	axis int
	list []*Body
}

func NewSAPBroadphase() *SAPBroadphase { return &SAPBroadphase{} }

// Axis returns the sweep axis chosen by the last Pairs call.
func (s *SAPBroadphase) Axis() int { return s.axis }

func (s *SAPBroadphase) Pairs(bodies []*Body, dst []Pair) []Pair {
	updateAABBs(bodies)
	s.sync(bodies)
	s.axis = varianceAxis(s.list)
	insertionSort(s.list, s.axis)

	ax := s.axis
	for i, a := range s.list {
		for _, b := range s.list[i+1:] {
			if b.aabb.Min[ax] > a.aabb.Max[ax] {
				break
			}
			if needsCollision(a, b) && a.aabb.Overlaps(b.aabb) {
				dst = append(dst, Pair{A: a, B: b})
			}
		}
	}
	return dst
}

// sync makes the sweep list hold exactly bodies while keeping the previous
// order for bodies already present.
func (s *SAPBroadphase) sync(bodies []*Body) {
	if len(s.list) == len(bodies) {
		seen := make(map[*Body]struct{}, len(bodies))
		for _, b := range bodies {
			seen[b] = struct{}{}
		}
		same := true
		for _, b := range s.list {
			if _, ok := seen[b]; !ok {
				same = false
				break
			}
		}
		if same {
			return
		}
	}
	s.list = append(s.list[:0], bodies...)
}

func varianceAxis(bodies []*Body) int {
	n := float64(len(bodies))
	if n < 2 {
		return 0
	}
	var sum, sumSq [3]float64
	for _, b := range bodies {
		for k := 0; k < 3; k++ {
			p := b.Position[k]
			sum[k] += p
			sumSq[k] += p * p
		}
	}
	best, bestVar := 0, -1.0
	for k := 0; k < 3; k++ {
		v := sumSq[k] - sum[k]*sum[k]/n
		if v > bestVar {
			best, bestVar = k, v
		}
	}
	return best
}

func insertionSort(list []*Body, axis int) {
	for i := 1; i < len(list); i++ {
		v := list[i]
		j := i - 1
		for ; j >= 0 && list[j].aabb.Min[axis] > v.aabb.Min[axis]; j-- {
			list[j+1] = list[j]
		}
		list[j+1] = v
	}
}
