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

// unrolledTransform is the four-pixel batch algorithm of the lanes kernel
// spelled out on fixed-size arrays, without the hwy package.
func unrolledTransform(src []uint8, width, height int, p Params, dst []uint8) {
	const lanes = simdLanes

	n := width * height
	w := normalize(p)
	full := n - n%lanes

	// Pass 1
	var sum uint64
	for i := 0; i < full; i += lanes {
		px := src[3*i : 3*(i+lanes)]
		out := dst[i : i+lanes]

		var r, g, b, v [lanes]float32
		for j := range lanes {
			r[j] = float32(px[3*j])
			g[j] = float32(px[3*j+1])
			b[j] = float32(px[3*j+2])
		}
		for j := range lanes {
			v[j] = float32(w.a*r[j]) + float32(w.b*g[j]) + float32(w.c*b[j]) + w.brightness
		}
		for j := range lanes {
			out[j] = toByte(clamp(v[j]))
			sum += uint64(out[j])
		}
	}
	sum += grayRange(w, src, dst, full, n)
	avg := mean(sum, n)

	// Pass 2
	var acc [lanes]float32
	var sigma float64
	pending := 0
	for i := 0; i < full; i += lanes {
		in := dst[i : i+lanes]
		for j := range lanes {
			d := float32(in[j]) - avg
			acc[j] += float32(d * d)
		}
		if pending++; pending == flushVectors {
			sigma += float64(acc[0] + acc[1] + acc[2] + acc[3])
			acc = [lanes]float32{}
			pending = 0
		}
	}
	sigma += float64(acc[0] + acc[1] + acc[2] + acc[3])
	sigma += varianceRange(dst, avg, full, n)

	// Pass 3
	div, shift := scale(sigma, n, avg, p.Contrast, fastsqrt.Exact)
	for i := 0; i < full; i += lanes {
		out := dst[i : i+lanes]
		var v [lanes]float32
		for j := range lanes {
			v[j] = float32(div*float32(out[j])) + shift
		}
		for j := range lanes {
			out[j] = toByte(clamp(v[j]))
		}
	}
	rescaleRange(dst, div, shift, full, n)
}
