package ray

import (
	"math"

	"row-major/pathtrace/vmath/vec3"
)

// Epsilon is the smallest ray parameter accepted by scene queries.  Anything
// closer is treated as the surface the ray just left.
const Epsilon = 0.001

// Span is a range of ray parameters.
type Span struct {
	Lo, Hi float64
}

var (
	Universe = Span{math.Inf(-1), math.Inf(1)}

	// Forward admits every intersection strictly ahead of the ray origin.
	Forward = Span{Epsilon, math.Inf(1)}
)

// Contains reports whether x is in [Lo, Hi].
func (s Span) Contains(x float64) bool {
	return s.Lo <= x && x <= s.Hi
}

// Surrounds reports whether x is in (Lo, Hi).
func (s Span) Surrounds(x float64) bool {
	return s.Lo < x && x < s.Hi
}

func (s Span) Clamp(x float64) float64 {
	if x < s.Lo {
		return s.Lo
	}
	if x > s.Hi {
		return s.Hi
	}
	return x
}

func (s Span) Size() float64 {
	return s.Hi - s.Lo
}

// Ray is a parametrized line.  Slope is not normalized; callers that need a
// unit direction normalize it themselves.
type Ray struct {
	Point vec3.T
	Slope vec3.T
}

func (r Ray) Eval(t float64) vec3.T {
	return vec3.T{
		r.Point[0] + t*r.Slope[0],
		r.Point[1] + t*r.Slope[1],
		r.Point[2] + t*r.Slope[2],
	}
}

// RaySegment is an intersection query: the ray plus the range of parameters
// that count as a hit.
type RaySegment struct {
	TheRay     Ray
	TheSegment Span
}
