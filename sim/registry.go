package sim

import (
	"cubefall/physics"
	"cubefall/render"
)

// Kind is the shape of a spawned object.
type Kind uint8

const (
	KindBox Kind = iota + 1
	KindSphere
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindSphere:
		return "sphere"
	default:
		return "unknown"
	}
}

// Pair ties a mesh to the body that drives it. After spawning, the body is
// the only source of truth for the transform.
type Pair struct {
	Kind Kind
	Mesh *render.Mesh
	Body *physics.Body

	base render.Color
}

// Registry is the append-only, insertion-ordered list of pairs.
type Registry struct {
	pairs  []*Pair
	byBody map[*physics.Body]*Pair
}

func (r *Registry) add(p *Pair) {
	if r.byBody == nil {
		r.byBody = make(map[*physics.Body]*Pair)
	}
	r.pairs = append(r.pairs, p)
	r.byBody[p.Body] = p
}

func (r *Registry) Len() int { return len(r.pairs) }

// At returns the i-th pair in insertion order.
func (r *Registry) At(i int) *Pair { return r.pairs[i] }

// Pairs returns all pairs in insertion order. The slice is owned by the
// registry.
func (r *Registry) Pairs() []*Pair { return r.pairs }

// Lookup returns the pair driven by b, if any.
func (r *Registry) Lookup(b *physics.Body) (*Pair, bool) {
	p, ok := r.byBody[b]
	return p, ok
}

func (r *Registry) reset() {
	r.pairs = nil
	r.byBody = nil
}
