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

package fastsqrt

import (
	"fmt"
	"math"
)

// Epsilon is the absolute error an approximation may show against Exact.
const Epsilon = 1e-4

// Func is the signature shared by Heron, Bits and Exact.
type Func func(float32) float32

// Failure describes the first argument where an approximation exceeded the
// allowed error.
type Failure struct {
	X    float32
	Want float32
	Got  float32
}

func (f *Failure) Error() string {
	return fmt.Sprintf("sqrt(%f): expected %f, actual %f", f.X, f.Want, f.Got)
}

// Check compares fn against Exact on [0, 10) in steps of 0.1 and on
// [1000, 10000) in steps of 0.5, the range pixel variances fall into for
// moderately adjusted images. It returns the first argument whose absolute
// error exceeds eps, or nil.
func Check(fn Func, eps float64) *Failure {
	for f := float32(0); f < 10; f += 0.1 {
		if fail := checkOne(fn, f, eps); fail != nil {
			return fail
		}
	}
	for f := float32(1000); f < 10000; f += 0.5 {
		if fail := checkOne(fn, f, eps); fail != nil {
			return fail
		}
	}
	return nil
}

func checkOne(fn Func, x float32, eps float64) *Failure {
	got, want := fn(x), Exact(x)
	if math.Abs(float64(got)-float64(want)) <= eps {
		return nil
	}
	return &Failure{X: x, Want: want, Got: got}
}
