package scene

import (
	"math/rand"

	"row-major/pathtrace/contact"
	"row-major/pathtrace/geometry"
	"row-major/pathtrace/material"
	"row-major/pathtrace/ray"
	"row-major/pathtrace/vmath/vec3"
)

// Element binds a surface to the material it is made of.
type Element struct {
	TheGeometry geometry.Geometry
	TheMaterial material.Material
}

// Background gives the light arriving along rays that escape the scene.
type Background interface {
	Radiance(dir vec3.T) vec3.T
}

// GradientSky blends from Horizon (looking straight down) to Zenith (looking
// straight up) on the unit direction's Y component.
type GradientSky struct {
	Horizon vec3.T
	Zenith  vec3.T
}

func DefaultSky() *GradientSky {
	return &GradientSky{
		Horizon: vec3.T{1, 1, 1},
		Zenith:  vec3.T{0.5, 0.7, 1.0},
	}
}

func (g *GradientSky) Radiance(dir vec3.T) vec3.T {
	a := 0.5 * (vec3.Normalize(dir).Y() + 1.0)
	return vec3.Lerp(a, g.Horizon, g.Zenith)
}

// Hit is the nearest contact along a ray and the material that was hit.
type Hit struct {
	contact.Contact
	Material material.Material
}

// Scene is read-only once rendering starts, so a single *Scene is shared by
// every render worker.
type Scene struct {
	Elements []*Element

	// Nil means DefaultSky.
	Sky Background
}

// AddElement is a convenience function to register an element and get its
// index.
func (s *Scene) AddElement(e *Element) int {
	s.Elements = append(s.Elements, e)
	return len(s.Elements) - 1
}

func (s *Scene) Add(g geometry.Geometry, m material.Material) int {
	return s.AddElement(&Element{TheGeometry: g, TheMaterial: m})
}

func (s *Scene) background() Background {
	if s.Sky == nil {
		return DefaultSky()
	}
	return s.Sky
}

// RayIntersect finds the nearest element hit inside query.TheSegment.
func (s *Scene) RayIntersect(query ray.RaySegment) (Hit, bool) {
	minHit := Hit{}
	found := false

	for _, elt := range s.Elements {
		c := elt.TheGeometry.RayInto(query)
		if c.IsNaN() {
			continue
		}

		// Later elements can only win by being strictly closer.
		query.TheSegment.Hi = c.T
		minHit = Hit{Contact: c, Material: elt.TheMaterial}
		found = true
	}

	return minHit, found
}

// SampleRay returns one Monte Carlo estimate of the light arriving along r,
// following at most depthLim bounces.  Paths that run out of bounces
// contribute black.
func (s *Scene) SampleRay(r ray.Ray, rng *rand.Rand, depthLim int) vec3.T {
	throughput := vec3.T{1, 1, 1}
	curRay := r

	for depth := depthLim; depth > 0; depth-- {
		hit, ok := s.RayIntersect(ray.RaySegment{
			TheRay:     curRay,
			TheSegment: ray.Forward,
		})
		if !ok {
			return vec3.MulVV(throughput, s.background().Radiance(curRay.Slope))
		}

		shading := hit.Material.Scatter(curRay, hit.Contact, rng)
		if !shading.Scattered {
			return vec3.T{}
		}

		throughput = vec3.MulVV(throughput, shading.Attenuation)
		curRay = shading.Ray
	}

	return vec3.T{}
}
