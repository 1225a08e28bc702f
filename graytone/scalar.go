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

import "github.com/ajroetker/go-graytone/fastsqrt"

// scalarTransform builds a one-pixel-at-a-time variant around the given
// square root.
func scalarTransform(sqrt fastsqrt.Func) Func {
	return func(src []uint8, width, height int, p Params, dst []uint8) {
		n := width * height
		w := normalize(p)

		avg := mean(grayRange(w, src, dst, 0, n), n)
		div, shift := scale(varianceRange(dst, avg, 0, n), n, avg, p.Contrast, sqrt)
		rescaleRange(dst, div, shift, 0, n)
	}
}

// grayRange runs pass 1 over pixels [start, end) and returns the sum of the
// bytes written.
func grayRange(w weights, src, dst []uint8, start, end int) uint64 {
	var sum uint64
	for i := start; i < end; i++ {
		px := src[3*i : 3*i+3 : 3*i+3]
		v := toByte(w.gray(px[0], px[1], px[2]))
		dst[i] = v
		sum += uint64(v)
	}
	return sum
}

// varianceRange returns the sum of squared deviations from avg over
// dst[start:end].
func varianceRange(dst []uint8, avg float32, start, end int) float64 {
	var sigma float64
	for _, v := range dst[start:end] {
		d := float32(v) - avg
		sigma += float64(float32(d * d))
	}
	return sigma
}

func rescaleRange(dst []uint8, div, shift float32, start, end int) {
	for i := start; i < end; i++ {
		dst[i] = rescale(dst[i], div, shift)
	}
}
