// Package rgbimage holds the per-pixel color accumulation buffer that render
// workers sum samples into, and the encoders that turn it into files.
package rgbimage

import (
	"fmt"

	"row-major/pathtrace/vmath/vec3"
)

// Image is a row-major buffer of linear RGB sample sums.  Pixel (r, c)
// occupies Sums[3*(r*ColSize+c) : 3*(r*ColSize+c)+3] and Counts[r*ColSize+c].
//
// An Image is not safe for concurrent mutation; each render worker owns its
// own and they are merged with Add once the workers are done.
type Image struct {
	RowSize, ColSize int
	Sums             []float32
	Counts           []float32
}

type Sample struct {
	Sum   vec3.T
	Count float32
}

func New(rowSize, colSize int) *Image {
	im := &Image{}
	im.Resize(rowSize, colSize)
	return im
}

// Resize discards any recorded samples.
func (s *Image) Resize(rowSize, colSize int) {
	s.RowSize = rowSize
	s.ColSize = colSize

	s.Sums = make([]float32, rowSize*colSize*3)
	s.Counts = make([]float32, rowSize*colSize)
}

func (s *Image) RecordSample(r, c int, color vec3.T) {
	idx := r*s.ColSize + c
	s.Sums[3*idx+0] += float32(color[0])
	s.Sums[3*idx+1] += float32(color[1])
	s.Sums[3*idx+2] += float32(color[2])
	s.Counts[idx] += 1
}

func (s *Image) ReadSample(r, c int) Sample {
	idx := r*s.ColSize + c
	return Sample{
		Sum: vec3.T{
			float64(s.Sums[3*idx+0]),
			float64(s.Sums[3*idx+1]),
			float64(s.Sums[3*idx+2]),
		},
		Count: s.Counts[idx],
	}
}

// Average is the mean of the samples recorded at (r, c), or black if there
// are none.
func (s *Image) Average(r, c int) vec3.T {
	samp := s.ReadSample(r, c)
	if samp.Count == 0 {
		return vec3.T{}
	}
	return vec3.DivVS(samp.Sum, float64(samp.Count))
}

// TotalSamples counts every sample recorded in the image.
func (s *Image) TotalSamples() int {
	total := 0
	for _, c := range s.Counts {
		total += int(c)
	}
	return total
}

// Add accumulates every sample recorded in src into s.
func (s *Image) Add(src *Image) error {
	if src.RowSize != s.RowSize || src.ColSize != s.ColSize {
		return fmt.Errorf("image size mismatch (got %dx%d, want %dx%d)", src.ColSize, src.RowSize, s.ColSize, s.RowSize)
	}

	for i := range s.Sums {
		s.Sums[i] += src.Sums[i]
	}
	for i := range s.Counts {
		s.Counts[i] += src.Counts[i]
	}
	return nil
}
