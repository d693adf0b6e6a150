package contact

import (
	"math"

	"row-major/pathtrace/ray"
	"row-major/pathtrace/vmath/vec3"
)

// Contact describes where a ray met a surface.
type Contact struct {
	// Ray parameter of the hit.
	T float64

	// The ray that produced the contact.
	R ray.Ray

	// Hit point.
	P vec3.T

	// Outward surface normal.  Unit length; not re-oriented against R.
	N vec3.T
}

// ContactNaN is the miss value.
func ContactNaN() Contact {
	return Contact{
		T: math.NaN(),
	}
}

func (c Contact) IsNaN() bool {
	return math.IsNaN(c.T)
}

// FrontFace reports whether the ray arrived from the side N points to.
func (c Contact) FrontFace() bool {
	return vec3.IProd(c.R.Slope, c.N) < 0
}

// FaceForward returns N flipped, if needed, to oppose the incoming ray.
func (c Contact) FaceForward() vec3.T {
	if c.FrontFace() {
		return c.N
	}
	return vec3.Neg(c.N)
}
