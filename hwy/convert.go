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

// PromoteU8 loads d.Lanes() bytes from src and widens them to float32 lanes
// (pmovzxbd followed by cvtdq2ps).
func PromoteU8(d Tag[float32], src []uint8) Vec[float32] {
	v := Vec[float32]{n: d.n}
	for i, b := range src[:d.n] {
		v.data[i] = float32(b)
	}
	return v
}

// LoadInterleaved3U8 loads d.Lanes() packed RGB triples from src and returns
// the three channels as separate float32 vectors. src must hold at least
// 3*d.Lanes() bytes.
func LoadInterleaved3U8(d Tag[float32], src []uint8) (r, g, b Vec[float32]) {
	r.n, g.n, b.n = d.n, d.n, d.n
	src = src[:3*d.n]
	for i := range d.n {
		r.data[i] = float32(src[3*i])
		g.data[i] = float32(src[3*i+1])
		b.data[i] = float32(src[3*i+2])
	}
	return r, g, b
}

// DemoteToU8 narrows float32 lanes to bytes with unsigned saturation and
// stores them in dst (packusdw followed by packuswb). Lanes are expected to
// hold integral values already; NaN lanes store 0.
func DemoteToU8(v Vec[float32], dst []uint8) {
	dst = dst[:v.n]
	for i := range v.n {
		x := v.data[i]
		switch {
		case !(x > 0):
			dst[i] = 0
		case x >= 255:
			dst[i] = 255
		default:
			dst[i] = uint8(x)
		}
	}
}
