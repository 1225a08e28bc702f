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

// Package graytone converts packed RGB pixels to 8-bit gray and normalizes
// brightness and contrast in three passes:
//
//  1. gray = clamp(a*R + b*G + c*B + brightness) with the coefficients
//     divided by their sum; the rounded bytes are written out and their mean
//     is accumulated exactly.
//  2. sigma = mean((gray - mean)^2).
//  3. out = clamp(scale*gray + (1-scale)*mean) with scale = contrast/sqrt(sigma),
//     or scale = 0 when sigma is 0.
//
// The same transform is provided by several interchangeable variants that
// differ only in execution strategy and square-root routine:
//
//	ID  Name                      Strategy
//	0   Lanes SIMD                hwy lanes, 4 pixels per step (reference)
//	1   Go SIMD                   4-pixel batches on plain Go arrays
//	2   Lanes SISD                the lanes kernel at one lane
//	3   Go SISD                   scalar loop, math.Sqrt
//	4   Go SISD Multithreaded     scalar passes on the shared worker pool
//	5   Go SISD with sqrt_heron   scalar loop, fastsqrt.Heron
//	6   Go SISD with sqrt_ieee    scalar loop, fastsqrt.Bits
//
// Variants agree with the reference within one gray level per pixel, not
// bit for bit: approximate square roots and different summation orders shift
// the contrast scale slightly.
//
// # Usage Example
//
//	img := &graytone.Image{Pix: rgb, Width: w, Height: h}
//	out := make([]uint8, img.Pixels())
//	graytone.Reference.Apply(img, graytone.Params{
//	    Coeffs:     graytone.DefaultCoeffs,
//	    Brightness: 20,
//	    Contrast:   48,
//	}, out)
//
// Variant functions do not validate their arguments; callers check Params
// with Validate and size buffers with Image.Pixels beforehand.
package graytone
