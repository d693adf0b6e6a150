package geometry

import (
	"math"

	"row-major/pathtrace/contact"
	"row-major/pathtrace/ray"
	"row-major/pathtrace/vmath/vec3"
)

// Geometry is a surface that can be intersected by a ray.
//
// RayInto returns the nearest contact whose parameter is strictly inside
// query.TheSegment, or contact.ContactNaN() if there is none.  Contact normals
// point out of the solid.
type Geometry interface {
	RayInto(query ray.RaySegment) contact.Contact
}

// Sphere is a Geometry with an arbitrary center and radius.
//
// A negative radius keeps the same surface but turns the normals inward,
// which is how hollow dielectric shells are modeled.
type Sphere struct {
	Center vec3.T
	Radius float64
}

func (s *Sphere) RayInto(query ray.RaySegment) contact.Contact {
	if s.Radius == 0 {
		return contact.ContactNaN()
	}

	r := query.TheRay
	oc := vec3.SubVV(s.Center, r.Point)
	a := r.Slope.NormSquared()
	if a == 0 || math.IsInf(a, 0) || math.IsNaN(a) {
		// A degenerate direction never reaches anything.
		return contact.ContactNaN()
	}
	h := vec3.IProd(r.Slope, oc)
	c := oc.NormSquared() - s.Radius*s.Radius

	discriminant := h*h - a*c
	if discriminant < 0 {
		return contact.ContactNaN()
	}
	sqrtd := math.Sqrt(discriminant)

	root := (h - sqrtd) / a
	if !query.TheSegment.Surrounds(root) {
		root = (h + sqrtd) / a
		if !query.TheSegment.Surrounds(root) {
			return contact.ContactNaN()
		}
	}

	p := r.Eval(root)
	return contact.Contact{
		T: root,
		R: r,
		P: p,
		N: vec3.DivVS(vec3.SubVV(p, s.Center), s.Radius),
	}
}

// Box is an axis-aligned box, given as one span per axis.
type Box struct {
	Spans [3]ray.Span
}

func (b *Box) RayInto(query ray.RaySegment) contact.Contact {
	r := query.TheRay
	cover := ray.Universe

	enterAxis, exitAxis := -1, -1
	enterSign, exitSign := 0.0, 0.0

	for i := 0; i < 3; i++ {
		if r.Slope[i] == 0 {
			// Parallel to this pair of faces; either always between them or
			// never.
			if r.Point[i] < b.Spans[i].Lo || b.Spans[i].Hi < r.Point[i] {
				return contact.ContactNaN()
			}
			continue
		}

		tLo := (b.Spans[i].Lo - r.Point[i]) / r.Slope[i]
		tHi := (b.Spans[i].Hi - r.Point[i]) / r.Slope[i]

		normalComponent := -1.0
		if tHi < tLo {
			tLo, tHi = tHi, tLo
			normalComponent = 1.0
		}

		if cover.Lo < tLo {
			cover.Lo = tLo
			enterAxis = i
			enterSign = normalComponent
		}
		if tHi < cover.Hi {
			cover.Hi = tHi
			exitAxis = i
			exitSign = -normalComponent
		}

		if cover.Hi < cover.Lo {
			return contact.ContactNaN()
		}
	}

	t, axis, sign := cover.Lo, enterAxis, enterSign
	if !query.TheSegment.Surrounds(t) {
		// The origin is inside the box (or the entry is behind it); the exit
		// face is the only remaining candidate.
		t, axis, sign = cover.Hi, exitAxis, exitSign
		if !query.TheSegment.Surrounds(t) {
			return contact.ContactNaN()
		}
	}
	if axis < 0 {
		return contact.ContactNaN()
	}

	n := vec3.T{}
	n[axis] = sign
	return contact.Contact{
		T: t,
		R: r,
		P: r.Eval(t),
		N: n,
	}
}
