package physics

// Material names a surface. Bodies sharing a pointer share a material.
type Material struct {
	Name        string
	Friction    float64
	Restitution float64
}

// ContactMaterial holds the friction and restitution used when bodies of
// materials A and B touch. The pairing is symmetric.
type ContactMaterial struct {
	A, B        *Material
	Friction    float64
	Restitution float64
}

func (cm ContactMaterial) matches(a, b *Material) bool {
	return (cm.A == a && cm.B == b) || (cm.A == b && cm.B == a)
}
