package rgbimage

import (
	"testing"

	"row-major/pathtrace/vmath/vec3"

	"github.com/google/go-cmp/cmp"
)

func TestRecordAndAverage(t *testing.T) {
	im := New(2, 3)
	im.RecordSample(1, 2, vec3.T{1, 0, 0.5})
	im.RecordSample(1, 2, vec3.T{0, 1, 0.5})

	if diff := cmp.Diff(im.ReadSample(1, 2), Sample{Sum: vec3.T{1, 1, 1}, Count: 2}); diff != "" {
		t.Errorf("Bad sample; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(im.Average(1, 2), vec3.T{0.5, 0.5, 0.5}); diff != "" {
		t.Errorf("Bad average; diff (-got +want)\n%s", diff)
	}
	if diff := cmp.Diff(im.Average(0, 0), vec3.T{}); diff != "" {
		t.Errorf("Unsampled pixel should be black; diff (-got +want)\n%s", diff)
	}
	if got := im.TotalSamples(); got != 2 {
		t.Errorf("TotalSamples() = %d, want 2", got)
	}
}

func TestAdd(t *testing.T) {
	a := New(1, 2)
	a.RecordSample(0, 0, vec3.T{1, 2, 3})
	b := New(1, 2)
	b.RecordSample(0, 0, vec3.T{1, 1, 1})
	b.RecordSample(0, 1, vec3.T{4, 5, 6})

	if err := a.Add(b); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := &Image{
		RowSize: 1,
		ColSize: 2,
		Sums:    []float32{2, 3, 4, 4, 5, 6},
		Counts:  []float32{2, 1},
	}
	if diff := cmp.Diff(a, want); diff != "" {
		t.Errorf("diff (-got +want)\n%s", diff)
	}
}

func TestAddSizeMismatch(t *testing.T) {
	if err := New(2, 2).Add(New(2, 3)); err == nil {
		t.Errorf("Expected an error adding images of different sizes")
	}
}
