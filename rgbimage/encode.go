package rgbimage

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"row-major/pathtrace/ray"
)

var unitSpan = ray.Span{Lo: 0, Hi: 1}

// LinearToGamma applies gamma 2.
func LinearToGamma(v float64) float64 {
	if v > 0 {
		return math.Sqrt(v)
	}
	return 0
}

// ChannelByte converts a linear channel value to its display byte.  Values
// brighter than 1 after gamma saturate at 255 rather than wrapping.
func ChannelByte(v float64) uint8 {
	g := LinearToGamma(v)
	if math.IsNaN(g) {
		return 0
	}
	return uint8(255 * unitSpan.Clamp(g))
}

// DisplayRGB is the averaged, gamma-corrected color of pixel (r, c).
func (s *Image) DisplayRGB(r, c int) (uint8, uint8, uint8) {
	avg := s.Average(r, c)
	return ChannelByte(avg[0]), ChannelByte(avg[1]), ChannelByte(avg[2])
}

// WritePPM writes the averaged image as a plain-text (P3) PPM, one pixel per
// line, from the top-left corner.
func WritePPM(im *Image, w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", im.ColSize, im.RowSize); err != nil {
		return fmt.Errorf("while writing PPM header: %w", err)
	}

	for r := 0; r < im.RowSize; r++ {
		for c := 0; c < im.ColSize; c++ {
			red, green, blue := im.DisplayRGB(r, c)
			if _, err := fmt.Fprintf(bw, "%d %d %d\n", red, green, blue); err != nil {
				return fmt.Errorf("while writing pixel (%d, %d): %w", r, c, err)
			}
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while flushing PPM: %w", err)
	}
	return nil
}

// ToNRGBA converts the averaged image to an 8-bit image.
func ToNRGBA(im *Image) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, im.ColSize, im.RowSize))
	for r := 0; r < im.RowSize; r++ {
		for c := 0; c < im.ColSize; c++ {
			red, green, blue := im.DisplayRGB(r, c)
			out.SetNRGBA(c, r, color.NRGBA{R: red, G: green, B: blue, A: 255})
		}
	}
	return out
}

func WritePNG(im *Image, w io.Writer) error {
	if err := png.Encode(w, ToNRGBA(im)); err != nil {
		return fmt.Errorf("while encoding PNG: %w", err)
	}
	return nil
}
