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
	"github.com/ajroetker/go-graytone/fastsqrt"
	"github.com/ajroetker/go-graytone/hwy"
)

// flushVectors bounds how many squared deviations a float32 lane accumulates
// before it is folded into the float64 total.
const flushVectors = 256

// laneConsts are the broadcast operands of the three passes for one Tag.
type laneConsts struct {
	a, b, c, brightness hwy.Vec[float32]
	lo, hi              hwy.Vec[float32]
}

func newLaneConsts(d hwy.Tag[float32], w weights) laneConsts {
	return laneConsts{
		a:          hwy.Set(d, w.a),
		b:          hwy.Set(d, w.b),
		c:          hwy.Set(d, w.c),
		brightness: hwy.Set(d, w.brightness),
		lo:         hwy.Zero(d),
		hi:         hwy.Set(d, float32(255)),
	}
}

// lanesTransform builds a variant that runs every pass d.Lanes() pixels at a
// time. Pixels left over after the last full vector go through the same
// kernel at one lane.
func lanesTransform(d hwy.Tag[float32]) Func {
	return func(src []uint8, width, height int, p Params, dst []uint8) {
		n := width * height
		w := normalize(p)
		lanes := d.Lanes()
		full := n - n%lanes

		d1 := hwy.Capped[float32](1)
		kv := newLaneConsts(d, w)
		k1 := newLaneConsts(d1, w)

		// Pass 1: gray + brightness, exact sum of the written bytes
		var sum uint64
		for i := 0; i < full; i += lanes {
			sum += grayLanes(d, kv, src[3*i:], dst[i:])
		}
		for i := full; i < n; i++ {
			sum += grayLanes(d1, k1, src[3*i:], dst[i:])
		}
		avg := mean(sum, n)

		// Pass 2: variance
		avgV := hwy.Set(d, avg)
		acc := hwy.Zero(d)
		var sigma float64
		pending := 0
		for i := 0; i < full; i += lanes {
			diff := hwy.Sub(hwy.PromoteU8(d, dst[i:]), avgV)
			acc = hwy.Add(acc, hwy.Mul(diff, diff))
			if pending++; pending == flushVectors {
				sigma += float64(hwy.ReduceSum(acc))
				acc = hwy.Zero(d)
				pending = 0
			}
		}
		sigma += float64(hwy.ReduceSum(acc))

		avg1 := hwy.Set(d1, avg)
		for i := full; i < n; i++ {
			diff := hwy.Sub(hwy.PromoteU8(d1, dst[i:]), avg1)
			sigma += float64(hwy.ReduceSum(hwy.Mul(diff, diff)))
		}

		// Pass 3: contrast rescale
		div, shift := scale(sigma, n, avg, p.Contrast, fastsqrt.Exact)
		divV, shiftV := hwy.Set(d, div), hwy.Set(d, shift)
		for i := 0; i < full; i += lanes {
			rescaleLanes(d, kv, divV, shiftV, dst[i:])
		}
		div1, shift1 := hwy.Set(d1, div), hwy.Set(d1, shift)
		for i := full; i < n; i++ {
			rescaleLanes(d1, k1, div1, shift1, dst[i:])
		}
	}
}

// grayLanes converts d.Lanes() pixels and returns the sum of the bytes it
// stored.
func grayLanes(d hwy.Tag[float32], k laneConsts, src, dst []uint8) uint64 {
	r, g, b := hwy.LoadInterleaved3U8(d, src)

	v := hwy.Add(hwy.Mul(r, k.a), hwy.Mul(g, k.b))
	v = hwy.Add(v, hwy.Mul(b, k.c))
	v = hwy.Add(v, k.brightness)
	v = hwy.RoundToEven(hwy.Clamp(v, k.lo, k.hi))

	hwy.DemoteToU8(v, dst)
	// Lanes hold integers <= 255, so the float32 sum is exact.
	return uint64(hwy.ReduceSum(v))
}

func rescaleLanes(d hwy.Tag[float32], k laneConsts, div, shift hwy.Vec[float32], dst []uint8) {
	v := hwy.PromoteU8(d, dst)
	v = hwy.Add(hwy.Mul(v, div), shift)
	v = hwy.RoundToEven(hwy.Clamp(v, k.lo, k.hi))
	hwy.DemoteToU8(v, dst)
}
