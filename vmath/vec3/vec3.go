package vec3

import (
	"math"
	"math/rand"
)

// T is used as a point, a direction, or a linear RGB color.
type T [3]float64

// NearZeroTolerance matches the single-precision machine epsilon the scatter
// code was tuned against.
const NearZeroTolerance = 1.0 / (1 << 23)

func (v T) X() float64 { return v[0] }
func (v T) Y() float64 { return v[1] }
func (v T) Z() float64 { return v[2] }

func (v T) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func (v T) NormSquared() float64 {
	return v[0]*v[0] + v[1]*v[1] + v[2]*v[2]
}

// NearZero reports whether every component is within NearZeroTolerance of 0.
func (v T) NearZero() bool {
	return math.Abs(v[0]) <= NearZeroTolerance &&
		math.Abs(v[1]) <= NearZeroTolerance &&
		math.Abs(v[2]) <= NearZeroTolerance
}

func (v T) IsFinite() bool {
	for _, e := range v {
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return false
		}
	}
	return true
}

func Normalize(v T) T {
	l := v.Norm()
	return T{
		v[0] / l,
		v[1] / l,
		v[2] / l,
	}
}

func Neg(v T) T {
	return T{-v[0], -v[1], -v[2]}
}

func AddVV(a, b T) T {
	return T{
		a[0] + b[0],
		a[1] + b[1],
		a[2] + b[2],
	}
}

func SubVV(a, b T) T {
	return T{
		a[0] - b[0],
		a[1] - b[1],
		a[2] - b[2],
	}
}

// MulVV is the componentwise product, used to apply attenuation to colors.
func MulVV(a, b T) T {
	return T{
		a[0] * b[0],
		a[1] * b[1],
		a[2] * b[2],
	}
}

func MulVS(a T, b float64) T {
	return T{
		a[0] * b,
		a[1] * b,
		a[2] * b,
	}
}

func DivVS(a T, b float64) T {
	return T{
		a[0] / b,
		a[1] / b,
		a[2] / b,
	}
}

func IProd(a, b T) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func CProd(a, b T) T {
	return T{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Lerp returns (1-t)*a + t*b.
func Lerp(t float64, a, b T) T {
	return AddVV(MulVS(a, 1-t), MulVS(b, t))
}

// Reflect mirrors a about the plane with unit normal n.
func Reflect(a, n T) T {
	return SubVV(a, MulVS(n, 2*IProd(a, n)))
}

// Refract bends the unit vector uv through a boundary with unit normal n
// (facing against uv), where ratio is the incident over transmitted index.
func Refract(uv, n T, ratio float64) T {
	cosTheta := math.Min(-IProd(uv, n), 1.0)
	perp := MulVS(AddVV(uv, MulVS(n, cosTheta)), ratio)
	parallel := MulVS(n, -math.Sqrt(math.Abs(1.0-perp.NormSquared())))
	return AddVV(perp, parallel)
}

// RandomInCube draws each component uniformly from [lo, hi).
func RandomInCube(lo, hi float64, rng *rand.Rand) T {
	return T{
		lo + (hi-lo)*rng.Float64(),
		lo + (hi-lo)*rng.Float64(),
		lo + (hi-lo)*rng.Float64(),
	}
}

// UniformUnitDistribution returns a unit vector uniformly distributed on the
// sphere, by rejection from the [-1, 1) cube.
func UniformUnitDistribution(rng *rand.Rand) T {
	for {
		result := RandomInCube(-1, 1, rng)
		normSquared := result.NormSquared()
		if normSquared <= 1.0 && normSquared > NearZeroTolerance {
			return DivVS(result, math.Sqrt(normSquared))
		}
	}
}

// UnitDiskDistribution returns a point uniformly distributed in the unit disk
// of the XY plane.
func UnitDiskDistribution(rng *rand.Rand) T {
	for {
		p := T{2*rng.Float64() - 1, 2*rng.Float64() - 1, 0}
		if p.NormSquared() < 1.0 {
			return p
		}
	}
}
