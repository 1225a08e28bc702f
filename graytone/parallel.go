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
	"github.com/ajroetker/go-graytone/hwy/contrib/workerpool"
)

// parallelTransform runs the scalar passes on the shared worker pool. Each
// pass is split into contiguous index ranges, one per worker, and joins
// before the next pass starts. Writes to dst never overlap between workers;
// the two sums are reduced from per-chunk partials.
func parallelTransform(src []uint8, width, height int, p Params, dst []uint8) {
	pool := workerpool.Shared()
	n := width * height
	w := normalize(p)

	sum := workerpool.Reduce(pool, n, func(start, end int) uint64 {
		return grayRange(w, src, dst, start, end)
	})
	avg := mean(sum, n)

	sigma := workerpool.Reduce(pool, n, func(start, end int) float64 {
		return varianceRange(dst, avg, start, end)
	})

	div, shift := scale(sigma, n, avg, p.Contrast, fastsqrt.Exact)
	pool.ParallelFor(n, func(start, end int) {
		rescaleRange(dst, div, shift, start, end)
	})
}
