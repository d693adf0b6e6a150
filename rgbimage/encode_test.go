package rgbimage

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"

	"row-major/pathtrace/vmath/vec3"

	"github.com/google/go-cmp/cmp"
)

func TestChannelByte(t *testing.T) {
	testCases := []struct {
		in   float64
		want uint8
	}{
		{in: 0, want: 0},
		{in: -3, want: 0},
		{in: 0.25, want: 127},
		{in: 1, want: 255},
		{in: 4, want: 255},
		{in: math.NaN(), want: 0},
	}

	for _, tc := range testCases {
		if got := ChannelByte(tc.in); got != tc.want {
			t.Errorf("ChannelByte(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestWritePPM(t *testing.T) {
	im := New(2, 2)
	im.RecordSample(0, 0, vec3.T{1, 1, 1})
	im.RecordSample(0, 1, vec3.T{0.25, 0, 0})
	im.RecordSample(0, 1, vec3.T{0.25, 0, 0})
	im.RecordSample(1, 0, vec3.T{0, 0, 9})
	// (1, 1) is never sampled.

	buf := &bytes.Buffer{}
	if err := WritePPM(im, buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := "P3\n2 2\n255\n" +
		"255 255 255\n" +
		"127 0 0\n" +
		"0 0 255\n" +
		"0 0 0\n"
	if diff := cmp.Diff(buf.String(), want); diff != "" {
		t.Errorf("diff (-got +want)\n%s", diff)
	}
}

func TestWritePPMHeaderIsColsThenRows(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := WritePPM(New(3, 5), buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	lines := bytes.Split(buf.Bytes(), []byte("\n"))
	if diff := cmp.Diff(string(lines[1]), "5 3"); diff != "" {
		t.Errorf("diff (-got +want)\n%s", diff)
	}
	// Header, one line per pixel, and the empty string after the final newline.
	if got, want := len(lines), 3+15+1; got != want {
		t.Errorf("Got %d lines, want %d", got, want)
	}
}

func TestWritePNG(t *testing.T) {
	im := New(1, 2)
	im.RecordSample(0, 0, vec3.T{1, 0, 0.25})

	buf := &bytes.Buffer{}
	if err := WritePNG(im, buf); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	decoded, err := png.Decode(buf)
	if err != nil {
		t.Fatalf("Error decoding PNG: %v", err)
	}
	if got := decoded.Bounds().Dx(); got != 2 {
		t.Errorf("Width %d, want 2", got)
	}

	got := color.NRGBAModel.Convert(decoded.At(0, 0)).(color.NRGBA)
	if diff := cmp.Diff(got, color.NRGBA{R: 255, G: 0, B: 127, A: 255}); diff != "" {
		t.Errorf("diff (-got +want)\n%s", diff)
	}
}
