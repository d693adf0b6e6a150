package ray

import (
	"math"
	"testing"

	"row-major/pathtrace/vmath/vec3"

	"github.com/google/go-cmp/cmp"
)

func TestSpanContainsIsInclusive(t *testing.T) {
	s := Span{Lo: 1, Hi: 2}
	for _, x := range []float64{1, 1.5, 2} {
		if !s.Contains(x) {
			t.Errorf("%+v.Contains(%v) = false, want true", s, x)
		}
	}
	for _, x := range []float64{0.999, 2.001} {
		if s.Contains(x) {
			t.Errorf("%+v.Contains(%v) = true, want false", s, x)
		}
	}
}

func TestSpanSurroundsIsExclusive(t *testing.T) {
	s := Span{Lo: 1, Hi: 2}
	for _, x := range []float64{1, 2, 0, 3} {
		if s.Surrounds(x) {
			t.Errorf("%+v.Surrounds(%v) = true, want false", s, x)
		}
	}
	if !s.Surrounds(1.5) {
		t.Errorf("%+v.Surrounds(1.5) = false, want true", s)
	}

	forward := Span{Lo: 0, Hi: math.Inf(1)}
	if forward.Surrounds(0) {
		t.Errorf("[0, inf).Surrounds(0) = true, want false")
	}
	if !forward.Surrounds(0.0001) {
		t.Errorf("[0, inf).Surrounds(0.0001) = false, want true")
	}
}

func TestSpanClampAndSize(t *testing.T) {
	s := Span{Lo: -1, Hi: 3}

	got := []float64{s.Clamp(-5), s.Clamp(0.5), s.Clamp(7)}
	want := []float64{-1, 0.5, 3}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Bad clamp; diff (-got +want)\n%s", diff)
	}

	if got := s.Size(); got != 4 {
		t.Errorf("Size() = %v, want 4", got)
	}
}

func TestPredefinedSpans(t *testing.T) {
	if !Universe.Contains(-1e300) || !Universe.Contains(1e300) {
		t.Errorf("Universe doesn't contain large values")
	}
	if Forward.Surrounds(Epsilon) || !Forward.Surrounds(2*Epsilon) {
		t.Errorf("Forward doesn't start just after Epsilon")
	}
}

func TestEvalDoesNotNormalize(t *testing.T) {
	r := Ray{Point: vec3.T{1, 1, 1}, Slope: vec3.T{0, 0, -2}}
	if diff := cmp.Diff(r.Eval(1.5), vec3.T{1, 1, -2}); diff != "" {
		t.Errorf("Bad Eval; diff (-got +want)\n%s", diff)
	}
}
