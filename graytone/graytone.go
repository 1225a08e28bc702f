// Copyright 2025 go-graytone Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package graytone

import (
	"errors"
	"fmt"
	"math"

	"github.com/ajroetker/go-graytone/fastsqrt"
)

var (
	// ErrInvalidParams is returned by Params.Validate.
	ErrInvalidParams = errors.New("graytone: invalid parameters")

	// ErrUnknownVariant is returned by Lookup for an ID outside the catalog.
	ErrUnknownVariant = errors.New("graytone: unknown variant")
)

const (
	// MaxBrightness bounds the absolute brightness shift.
	MaxBrightness = 255

	// MaxContrast bounds the absolute contrast target.
	MaxContrast = 255.0
)

// DefaultCoeffs are the Rec. 709 luma weights.
var DefaultCoeffs = [3]float32{0.2126, 0.7152, 0.0722}

// Image is a packed 8-bit RGB raster: Width*Height triples, row-major,
// no padding.
type Image struct {
	Pix    []uint8
	Width  int
	Height int
}

// NewImage allocates a zeroed (black) image.
func NewImage(width, height int) *Image {
	return &Image{
		Pix:    make([]uint8, 3*width*height),
		Width:  width,
		Height: height,
	}
}

// Pixels returns Width*Height, the length of a result buffer for img.
func (img *Image) Pixels() int {
	return img.Width * img.Height
}

// Sub returns a width x height image sharing the first 3*width*height bytes
// of img.Pix. It is used to time the transform on smaller inputs without
// copying; the content is a prefix of img, not a crop.
func (img *Image) Sub(width, height int) *Image {
	return &Image{
		Pix:    img.Pix[:3*width*height],
		Width:  width,
		Height: height,
	}
}

// Params are the per-call transform parameters.
type Params struct {
	// Coeffs weight red, green and blue. They are divided by their sum
	// before use, so only their ratios matter.
	Coeffs [3]float32

	// Brightness is added to every gray value, in [-255, 255].
	Brightness int16

	// Contrast is the target standard deviation, in [-255, 255]. Negative
	// values invert the image around its mean.
	Contrast float32
}

// Validate reports whether p can be passed to a variant. Errors wrap
// ErrInvalidParams.
func (p Params) Validate() error {
	var sum float32
	for i, c := range p.Coeffs {
		if math.IsNaN(float64(c)) || math.IsInf(float64(c), 0) {
			return fmt.Errorf("%w: coefficient %d is not finite", ErrInvalidParams, i)
		}
		if c < 0 {
			return fmt.Errorf("%w: coefficient %d is negative (%g)", ErrInvalidParams, i, c)
		}
		sum += c
	}
	if math.IsInf(float64(sum), 0) {
		return fmt.Errorf("%w: sum of coefficients exceeds maximum allowed value", ErrInvalidParams)
	}
	if sum == 0 {
		return fmt.Errorf("%w: sum of coefficients is zero", ErrInvalidParams)
	}
	if p.Brightness < -MaxBrightness || p.Brightness > MaxBrightness {
		return fmt.Errorf("%w: brightness %d out of range [-%d, %d]", ErrInvalidParams, p.Brightness, MaxBrightness, MaxBrightness)
	}
	if math.IsNaN(float64(p.Contrast)) || p.Contrast < -MaxContrast || p.Contrast > MaxContrast {
		return fmt.Errorf("%w: contrast %g out of range [-%g, %g]", ErrInvalidParams, p.Contrast, MaxContrast, MaxContrast)
	}
	return nil
}

// weights are the normalized coefficients and the brightness as float32.
type weights struct {
	a, b, c    float32
	brightness float32
}

func normalize(p Params) weights {
	sum := p.Coeffs[0] + p.Coeffs[1] + p.Coeffs[2]
	return weights{
		a:          p.Coeffs[0] / sum,
		b:          p.Coeffs[1] / sum,
		c:          p.Coeffs[2] / sum,
		brightness: float32(p.Brightness),
	}
}

// gray returns the clamped, unrounded gray value of one pixel. The products
// are rounded separately, matching the lane kernels' Mul then Add.
func (w weights) gray(r, g, b uint8) float32 {
	v := float32(w.a*float32(r)) + float32(w.b*float32(g)) + float32(w.c*float32(b))
	return clamp(v + w.brightness)
}

// clamp limits v to [0, 255] with the operand order of maxps/minps, so NaN
// becomes 0 like in hwy.Clamp.
func clamp(v float32) float32 {
	if !(v > 0) {
		v = 0
	}
	if !(v < 255) {
		v = 255
	}
	return v
}

// toByte rounds a clamped value half to even, the SIMD default rounding mode.
func toByte(v float32) uint8 {
	return uint8(math.RoundToEven(float64(v)))
}

// mean converts the exact pass-1 byte sum into the average gray level.
func mean(sum uint64, n int) float32 {
	return float32(float64(sum) / float64(n))
}

// scale derives the pass-3 multiplier and offset from the variance sum.
// A zero variance yields scale 0, which maps every pixel to the mean
// regardless of contrast.
func scale(sigmaSum float64, n int, avg, contrast float32, sqrt fastsqrt.Func) (div, shift float32) {
	sigma := float32(sigmaSum / float64(n))
	if sigma == 0 {
		return 0, avg
	}
	div = contrast / sqrt(sigma)
	return div, float32((1 - div) * avg)
}

// rescale applies the pass-3 mapping to one gray level.
func rescale(v uint8, div, shift float32) uint8 {
	return toByte(clamp(float32(div*float32(v)) + shift))
}
