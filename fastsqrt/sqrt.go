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

// Package fastsqrt provides approximate float32 square roots that can stand
// in for math.Sqrt where the argument is a pixel variance (0 to ~16256).
//
// Both functions are pure and allocation free. Results for negative, NaN or
// infinite arguments are unspecified.
package fastsqrt

import "math"

const (
	// HeronIterations is the fixed refinement count used by Heron. Starting
	// from 0.5*(1+x) it converges to float32 precision for x up to 65025.
	HeronIterations = 16

	// BitsRefinements is the number of Heron steps Bits applies to Seed.
	BitsRefinements = 3
)

// Heron approximates sqrt(x) with HeronIterations steps of Heron's method.
func Heron(x float32) float32 {
	return HeronN(x, HeronIterations)
}

// HeronN approximates sqrt(x) with n steps of x_{k+1} = (x_k + s/x_k) / 2,
// starting from 0.5*(1+s).
func HeronN(s float32, n int) float32 {
	if s == 0 {
		return 0
	}
	x := 0.5 * (1 + s)
	for range n {
		x = heronStep(s, x)
	}
	return x
}

func heronStep(s, x float32) float32 {
	return 0.5 * (x + s/x)
}

// Seed is the IEEE-754 bit-pattern approximation of sqrt(x): the exponent
// field is halved directly on the integer representation,
//
//	bits = ((bits - 2^m) >> 1) + ((b + 1) / 2) * 2^m
//
// with m = 23 mantissa bits and b = 127 exponent bias. The relative error is
// up to about 6%.
func Seed(x float32) float32 {
	i := math.Float32bits(x)
	i -= 1 << 23
	i >>= 1
	i += 1 << 29
	return math.Float32frombits(i)
}

// Bits approximates sqrt(x) by refining Seed with BitsRefinements Heron steps.
func Bits(x float32) float32 {
	if x == 0 {
		return 0
	}
	y := Seed(x)
	for range BitsRefinements {
		y = heronStep(x, y)
	}
	return y
}

// Exact is math.Sqrt at float32 precision, the reference the approximations
// are measured against.
func Exact(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}
