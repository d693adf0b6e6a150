package material

import (
	"math"
	"math/rand"
	"testing"

	"row-major/pathtrace/contact"
	"row-major/pathtrace/ray"
	"row-major/pathtrace/vmath/vec3"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

// floorContact is a hit on the plane y=0, normal +Y, by a ray with the given
// direction.
func floorContact(dir vec3.T) (ray.Ray, contact.Contact) {
	in := ray.Ray{Point: vec3.SubVV(vec3.T{0, 0, 0}, dir), Slope: dir}
	return in, contact.Contact{
		T: 1,
		R: in,
		P: vec3.T{0, 0, 0},
		N: vec3.T{0, 1, 0},
	}
}

func TestLambertAlwaysScattersAboveSurface(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := NewLambert(vec3.T{0.5, 0.25, 0.125})
	in, c := floorContact(vec3.T{1, -1, 0})

	for i := 0; i < 1000; i++ {
		info := m.Scatter(in, c, rng)
		if !info.Scattered {
			t.Fatalf("Lambert absorbed a ray")
		}
		if d := vec3.IProd(info.Ray.Slope, c.N); d < 0 {
			t.Fatalf("Scattered direction %v points into the surface", info.Ray.Slope)
		}
		if info.Ray.Slope.NearZero() {
			t.Fatalf("Scattered direction is degenerate")
		}
		if diff := cmp.Diff(info.Ray.Point, c.P); diff != "" {
			t.Fatalf("Scattered ray doesn't start at hit point; diff (-got +want)\n%s", diff)
		}
		if diff := cmp.Diff(info.Attenuation, vec3.T{0.5, 0.25, 0.125}); diff != "" {
			t.Fatalf("Bad attenuation; diff (-got +want)\n%s", diff)
		}
	}
}

func TestMetalMirror(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := NewMetal(vec3.T{0.8, 0.8, 0.8}, 0)
	in, c := floorContact(vec3.T{1, -1, 0})

	info := m.Scatter(in, c, rng)
	if !info.Scattered {
		t.Fatalf("Mirror absorbed an incoming ray")
	}
	want := vec3.Normalize(vec3.T{1, 1, 0})
	if diff := cmp.Diff(info.Ray.Slope, want, approx); diff != "" {
		t.Errorf("Bad reflection; diff (-got +want)\n%s", diff)
	}
}

func TestMetalAbsorbsBelowSurface(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := NewMetal(vec3.T{0.8, 0.8, 0.8}, 0)

	// Arriving from below the surface, the mirror direction points back
	// under it.
	in, c := floorContact(vec3.T{1, 1, 0})

	if info := m.Scatter(in, c, rng); info.Scattered {
		t.Errorf("Expected absorption, got scattered ray %+v", info.Ray)
	}
}

func TestNewMetalClampsFuzz(t *testing.T) {
	if got := NewMetal(vec3.T{}, 3).Fuzz; got != 1 {
		t.Errorf("Fuzz 3 clamped to %v, want 1", got)
	}
	if got := NewMetal(vec3.T{}, -1).Fuzz; got != 0 {
		t.Errorf("Fuzz -1 clamped to %v, want 0", got)
	}
}

func TestDielectricUnitIndexPassesStraightThrough(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := &Dielectric{RefractiveIndex: 1}
	dir := vec3.Normalize(vec3.T{0.3, -1, 0.2})
	in, c := floorContact(dir)

	for i := 0; i < 100; i++ {
		info := m.Scatter(in, c, rng)
		if diff := cmp.Diff(info.Ray.Slope, dir, approx); diff != "" {
			t.Fatalf("Index 1 bent the ray; diff (-got +want)\n%s", diff)
		}
		if diff := cmp.Diff(info.Attenuation, vec3.T{1, 1, 1}); diff != "" {
			t.Fatalf("Dielectric should not attenuate; diff (-got +want)\n%s", diff)
		}
	}
}

func TestDielectricHeadOnReflectsAtSchlickRate(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m := &Dielectric{RefractiveIndex: 1.5}
	in, c := floorContact(vec3.T{0, -1, 0})

	const n = 100000
	reflected := 0
	for i := 0; i < n; i++ {
		info := m.Scatter(in, c, rng)
		if info.Ray.Slope[1] > 0 {
			reflected++
		} else if diff := cmp.Diff(info.Ray.Slope, vec3.T{0, -1, 0}, approx); diff != "" {
			t.Fatalf("Head-on refraction bent the ray; diff (-got +want)\n%s", diff)
		}
	}

	r0 := Reflectance(1, 1/1.5)
	if got := float64(reflected) / n; math.Abs(got-r0) > 0.005 {
		t.Errorf("Reflected fraction %v, want about %v", got, r0)
	}
}

func TestDielectricTotalInternalReflection(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := &Dielectric{RefractiveIndex: 1.5}

	// Leaving the glass at a grazing angle.
	dir := vec3.Normalize(vec3.T{1, 0.2, 0})
	in, c := floorContact(dir)
	if c.FrontFace() {
		t.Fatalf("Test setup: expected a back-face contact")
	}

	for i := 0; i < 100; i++ {
		info := m.Scatter(in, c, rng)
		want := vec3.T{dir[0], -dir[1], dir[2]}
		if diff := cmp.Diff(info.Ray.Slope, want, approx); diff != "" {
			t.Fatalf("Expected total internal reflection; diff (-got +want)\n%s", diff)
		}
	}
}

func TestReflectance(t *testing.T) {
	if diff := cmp.Diff(Reflectance(1, 1/1.5), 0.04, approx); diff != "" {
		t.Errorf("Head-on reflectance; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(Reflectance(0, 1/1.5), 1.0, approx); diff != "" {
		t.Errorf("Grazing reflectance; diff (-got +want)\n%s", diff)
	}
}

func TestCheckerboardVolume(t *testing.T) {
	a := vec3.T{1, 1, 1}
	b := vec3.T{0, 0, 0}
	m := CheckerboardVolume(1, a, b)

	if diff := cmp.Diff(m(vec3.T{0.25, 0.25, 0.25}), a); diff != "" {
		t.Errorf("diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(m(vec3.T{0.75, 0.25, 0.25}), b); diff != "" {
		t.Errorf("diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(m(vec3.T{0.75, 0.75, 0.25}), a); diff != "" {
		t.Errorf("diff (-got +want)\n%s", diff)
	}
}
