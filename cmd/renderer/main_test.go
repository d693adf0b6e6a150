package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"row-major/pathtrace/camera"
	"row-major/pathtrace/geometry"
	"row-major/pathtrace/healthz"
	"row-major/pathtrace/material"
	"row-major/pathtrace/render"
	"row-major/pathtrace/rgbimage"
	"row-major/pathtrace/scene"
	"row-major/pathtrace/vmath/vec3"
)

func TestEncoderFor(t *testing.T) {
	testCases := []struct {
		name            string
		wantContentType string
		wantErr         bool
	}{
		{name: "out.ppm", wantContentType: "image/x-portable-pixmap"},
		{name: "gs://bucket/render.PNG", wantContentType: "image/png"},
		{name: "out.jpg", wantErr: true},
		{name: "out", wantErr: true},
	}

	for _, tc := range testCases {
		encode, contentType, err := encoderFor(tc.name)
		if tc.wantErr {
			if err == nil {
				t.Errorf("encoderFor(%q): expected an error", tc.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("encoderFor(%q): unexpected error: %v", tc.name, err)
			continue
		}
		if encode == nil {
			t.Errorf("encoderFor(%q): nil encoder", tc.name)
		}
		if contentType != tc.wantContentType {
			t.Errorf("encoderFor(%q): content type %q, want %q", tc.name, contentType, tc.wantContentType)
		}
	}
}

func TestProgressReporterUpdatesHealth(t *testing.T) {
	health := healthz.New()
	p := &progressReporter{health: health, lastDecile: -1}

	p.report(30, 100)
	p.report(75, 100)

	cur, tot := health.Progress()
	if cur != 75 || tot != 100 {
		t.Errorf("health progress %d/%d, want 75/100", cur, tot)
	}
	if p.lastDecile != 7 {
		t.Errorf("lastDecile = %d, want 7", p.lastDecile)
	}
}

func TestRenderSummary(t *testing.T) {
	sc := &scene.Scene{}
	sc.Add(&geometry.Sphere{Radius: 1}, material.NewLambert(vec3.T{1, 1, 1}))
	sc.Add(&geometry.Sphere{Center: vec3.T{0, 3, 0}, Radius: 1}, material.NewLambert(vec3.T{1, 1, 1}))
	accum := rgbimage.New(2, 3)
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			accum.RecordSample(r, c, vec3.T{})
			accum.RecordSample(r, c, vec3.T{})
		}
	}
	opts := &render.Options{Workers: 2, SamplesPerWorker: 1, MaxDepth: 4}

	cam, err := camera.New(camera.Options{
		ImageRows:   2,
		ImageCols:   3,
		Eye:         vec3.T{0, 0, 5},
		LookAt:      vec3.T{0, 0, 0},
		VerticalFOV: 60,
	})
	if err != nil {
		t.Fatalf("Error building camera: %v", err)
	}

	got := renderSummary(sc, cam, opts, accum, 2*time.Second)
	for _, want := range []string{"*geometry.Sphere / *material.Lambert", "3x2", "Samples traced", "12", "6 samples/s", "[0 0 5]", "-1]"} {
		if !strings.Contains(got, want) {
			t.Errorf("Summary is missing %q:\n%s", want, got)
		}
	}
}

func setFlag(t *testing.T, p *string, v string) {
	t.Helper()
	old := *p
	*p = v
	t.Cleanup(func() { *p = old })
}

func TestRunFinishesProfilesWhenBodyFails(t *testing.T) {
	dir := t.TempDir()
	cpuName := filepath.Join(dir, "cpu.pprof")
	setFlag(t, cpuprofile, cpuName)

	called := false
	code := run(func(ctx context.Context) error {
		called = true
		if ctx == nil {
			t.Errorf("body got a nil context")
		}
		return errors.New("render failed")
	})

	if !called {
		t.Fatalf("body was never called")
	}
	if code != 1 {
		t.Errorf("run() = %d, want 1", code)
	}

	// A stopped profile has been flushed to the file.
	info, err := os.Stat(cpuName)
	if err != nil {
		t.Fatalf("Error reading CPU profile: %v", err)
	}
	if info.Size() == 0 {
		t.Errorf("CPU profile is empty; it was never stopped")
	}
}

func TestRunWritesHeapProfileOnSuccess(t *testing.T) {
	memName := filepath.Join(t.TempDir(), "mem.pprof")
	setFlag(t, memprofile, memName)

	if code := run(func(ctx context.Context) error { return nil }); code != 0 {
		t.Errorf("run() = %d, want 0", code)
	}

	info, err := os.Stat(memName)
	if err != nil {
		t.Fatalf("Error reading memory profile: %v", err)
	}
	if info.Size() == 0 {
		t.Errorf("Memory profile is empty")
	}
}
