package material

import (
	"math"
	"math/rand"

	"row-major/pathtrace/contact"
	"row-major/pathtrace/ray"
	"row-major/pathtrace/vmath/vec3"
)

// ColorMap gives a surface color as a function of the world-space hit point.
type ColorMap func(p vec3.T) vec3.T

func ConstantColor(c vec3.T) ColorMap {
	return func(p vec3.T) vec3.T {
		return c
	}
}

// CheckerboardVolume alternates between a and b on a 3-D grid of cubes with
// side length period.
func CheckerboardVolume(period float64, a, b vec3.T) ColorMap {
	return func(p vec3.T) vec3.T {
		parity := 0
		for i := 0; i < 3; i++ {
			q := p[i] / period
			if q-math.Floor(q) > 0.5 {
				parity ^= 1
			}
		}

		if parity == 1 {
			return b
		}
		return a
	}
}

// ScatterInfo is the outcome of one bounce.  When Scattered is false the ray
// was absorbed and contributes black.
type ScatterInfo struct {
	Scattered   bool
	Ray         ray.Ray
	Attenuation vec3.T
}

type Material interface {
	Scatter(in ray.Ray, c contact.Contact, rng *rand.Rand) ScatterInfo
}

// Lambert is an ideal diffuse reflector.
type Lambert struct {
	Albedo ColorMap
}

func NewLambert(albedo vec3.T) *Lambert {
	return &Lambert{Albedo: ConstantColor(albedo)}
}

func (l *Lambert) Scatter(in ray.Ray, c contact.Contact, rng *rand.Rand) ScatterInfo {
	dir := vec3.AddVV(c.N, vec3.UniformUnitDistribution(rng))
	if dir.NearZero() {
		dir = c.N
	}

	return ScatterInfo{
		Scattered:   true,
		Ray:         ray.Ray{Point: c.P, Slope: dir},
		Attenuation: l.Albedo(c.P),
	}
}

// Metal is a mirror whose reflection is blurred by Fuzz, the radius of the
// sphere the reflected direction is perturbed within.
type Metal struct {
	Albedo vec3.T
	Fuzz   float64
}

// NewMetal clamps fuzz into [0, 1].
func NewMetal(albedo vec3.T, fuzz float64) *Metal {
	return &Metal{
		Albedo: albedo,
		Fuzz:   ray.Span{Lo: 0, Hi: 1}.Clamp(fuzz),
	}
}

func (m *Metal) Scatter(in ray.Ray, c contact.Contact, rng *rand.Rand) ScatterInfo {
	dir := vec3.Normalize(vec3.Reflect(in.Slope, c.N))
	dir = vec3.AddVV(dir, vec3.MulVS(vec3.UniformUnitDistribution(rng), m.Fuzz))

	return ScatterInfo{
		// Fuzz can push the reflection below the surface; that light is
		// absorbed.
		Scattered:   vec3.IProd(dir, c.N) > 0,
		Ray:         ray.Ray{Point: c.P, Slope: dir},
		Attenuation: m.Albedo,
	}
}

// Dielectric is a clear refracting material such as glass or water.
// RefractiveIndex is relative to the medium outside the surface.
type Dielectric struct {
	RefractiveIndex float64
}

func (d *Dielectric) Scatter(in ray.Ray, c contact.Contact, rng *rand.Rand) ScatterInfo {
	ratio := d.RefractiveIndex
	if c.FrontFace() {
		ratio = 1.0 / d.RefractiveIndex
	}
	n := c.FaceForward()

	unitDir := vec3.Normalize(in.Slope)
	cosTheta := math.Min(-vec3.IProd(unitDir, n), 1.0)
	sinTheta := math.Sqrt(1.0 - cosTheta*cosTheta)

	var dir vec3.T
	if ratio*sinTheta > 1.0 || rng.Float64() < Reflectance(cosTheta, ratio) {
		dir = vec3.Reflect(unitDir, n)
	} else {
		dir = vec3.Refract(unitDir, n, ratio)
	}

	return ScatterInfo{
		Scattered:   true,
		Ray:         ray.Ray{Point: c.P, Slope: dir},
		Attenuation: vec3.T{1, 1, 1},
	}
}

// Reflectance is Schlick's approximation of the Fresnel reflectance at a
// boundary with the given incidence cosine and index ratio.
func Reflectance(cosine, ratio float64) float64 {
	r0 := (1 - ratio) / (1 + ratio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
