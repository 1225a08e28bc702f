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

package hwy

import "math"

// This file provides the pure Go implementations of the lane operations.
// Every operation works on the lanes of its first operand; operands are
// expected to come from the same Tag.
//
// Products are converted explicitly so that a Mul followed by an Add is
// rounded twice, exactly like separate SIMD multiply and add instructions,
// and never contracted into a fused multiply-add.

// Load creates a vector by loading d.Lanes() elements from src.
// src must hold at least d.Lanes() elements.
func Load[T Lanes](d Tag[T], src []T) Vec[T] {
	v := Vec[T]{n: d.n}
	copy(v.data[:d.n], src[:d.n])
	return v
}

// Store writes the vector's lanes to dst.
func Store[T Lanes](v Vec[T], dst []T) {
	n := min(len(dst), v.n)
	copy(dst[:n], v.data[:n])
}

// Set creates a vector with all lanes set to the same value.
func Set[T Lanes](d Tag[T], value T) Vec[T] {
	v := Vec[T]{n: d.n}
	for i := range d.n {
		v.data[i] = value
	}
	return v
}

// Zero creates a vector with all lanes set to zero.
func Zero[T Lanes](d Tag[T]) Vec[T] {
	return Vec[T]{n: d.n}
}

// Add performs element-wise addition.
func Add[T Lanes](a, b Vec[T]) Vec[T] {
	r := Vec[T]{n: a.n}
	for i := range a.n {
		r.data[i] = a.data[i] + b.data[i]
	}
	return r
}

// Sub performs element-wise subtraction.
func Sub[T Lanes](a, b Vec[T]) Vec[T] {
	r := Vec[T]{n: a.n}
	for i := range a.n {
		r.data[i] = a.data[i] - b.data[i]
	}
	return r
}

// Mul performs element-wise multiplication.
func Mul[T Lanes](a, b Vec[T]) Vec[T] {
	r := Vec[T]{n: a.n}
	for i := range a.n {
		r.data[i] = T(a.data[i] * b.data[i])
	}
	return r
}

// Min returns element-wise minimum.
// As with minps, if either lane is NaN the lane from b is returned.
func Min[T Lanes](a, b Vec[T]) Vec[T] {
	r := Vec[T]{n: a.n}
	for i := range a.n {
		if a.data[i] < b.data[i] {
			r.data[i] = a.data[i]
		} else {
			r.data[i] = b.data[i]
		}
	}
	return r
}

// Max returns element-wise maximum.
// As with maxps, if either lane is NaN the lane from b is returned.
func Max[T Lanes](a, b Vec[T]) Vec[T] {
	r := Vec[T]{n: a.n}
	for i := range a.n {
		if a.data[i] > b.data[i] {
			r.data[i] = a.data[i]
		} else {
			r.data[i] = b.data[i]
		}
	}
	return r
}

// Clamp limits every lane to [lo, hi].
func Clamp[T Lanes](v, lo, hi Vec[T]) Vec[T] {
	return Min(Max(v, lo), hi)
}

// RoundToEven rounds to the nearest integer, ties to even (banker's rounding).
// This is the default IEEE 754 rounding mode used by cvtps2dq.
func RoundToEven[T Floats](v Vec[T]) Vec[T] {
	r := Vec[T]{n: v.n}
	for i := range v.n {
		r.data[i] = T(math.RoundToEven(float64(v.data[i])))
	}
	return r
}

// ReduceSum sums all lanes.
func ReduceSum[T Lanes](v Vec[T]) T {
	var sum T
	for i := range v.n {
		sum += v.data[i]
	}
	return sum
}

// GetLane returns lane i of v.
func GetLane[T Lanes](v Vec[T], i int) T {
	return v.data[i]
}
