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

// Package conformance checks every graytone variant against the reference
// variant within a per-pixel tolerance. The multithreaded variant is run
// many times to expose data races that only show up intermittently.
package conformance

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/go-graytone/graytone"
)

const (
	// DefaultDelta is the largest accepted per-pixel difference.
	DefaultDelta = 1

	// DefaultRepetitions is how often the multithreaded variant is run.
	DefaultRepetitions = 750
)

// Options configure Run.
type Options struct {
	// Delta is the largest accepted |actual - expected| per pixel. Zero
	// requires identical output.
	Delta uint8

	// Repetitions is the number of runs of the multithreaded variant.
	// Values <= 0 select DefaultRepetitions.
	Repetitions int

	// Variants are checked against graytone.Reference. Nil selects every
	// catalog entry except the reference itself.
	Variants []graytone.Variant

	// Logger receives one PASS or FAIL record per variant. Nil selects
	// slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns Options with DefaultDelta and DefaultRepetitions.
func DefaultOptions() Options {
	return Options{Delta: DefaultDelta, Repetitions: DefaultRepetitions}
}

// Mismatch locates the first pixel that exceeded the tolerance.
type Mismatch struct {
	Index    int
	Expected uint8
	Actual   uint8
}

// Result is the verdict for one variant.
type Result struct {
	Variant graytone.Variant

	// Runs counts the executions compared, including a failing one.
	Runs   int
	Passed bool

	// MaxDelta and DifferingPixels are maxima over the passing runs.
	MaxDelta        uint8
	DifferingPixels int

	// Mismatch is set when Passed is false.
	Mismatch *Mismatch
}

func (r Result) String() string {
	if !r.Passed {
		return fmt.Sprintf("FAIL %s: pixel %d expected %d, got %d (run %d)",
			r.Variant, r.Mismatch.Index, r.Mismatch.Expected, r.Mismatch.Actual, r.Runs)
	}
	return fmt.Sprintf("PASS %s: max delta %d, %d differing pixels over %d run(s)",
		r.Variant, r.MaxDelta, r.DifferingPixels, r.Runs)
}

// Report collects the results of Run in variant order.
type Report struct {
	Delta   uint8
	Results []Result
}

// Passed reports whether every variant passed.
func (r *Report) Passed() bool {
	return lo.EveryBy(r.Results, func(res Result) bool { return res.Passed })
}

// Failed returns the failing results.
func (r *Report) Failed() []Result {
	return lo.Filter(r.Results, func(res Result, _ int) bool { return !res.Passed })
}

// Compare checks actual against expected. It stops at the first pixel whose
// difference exceeds delta and returns it as a Mismatch; otherwise it
// returns the largest difference seen and the number of pixels that differ
// at all. Buffers of different lengths mismatch at the shorter length.
func Compare(expected, actual []uint8, delta uint8) (maxDelta uint8, differing int, m *Mismatch) {
	n := min(len(expected), len(actual))
	for i := range n {
		e, a := expected[i], actual[i]
		d := max(e, a) - min(e, a)
		if d > delta {
			return maxDelta, differing, &Mismatch{Index: i, Expected: e, Actual: a}
		}
		if d != 0 {
			differing++
			maxDelta = max(maxDelta, d)
		}
	}
	if len(expected) != len(actual) {
		m = &Mismatch{Index: n}
		if n < len(expected) {
			m.Expected = expected[n]
		} else {
			m.Actual = actual[n]
		}
	}
	return maxDelta, differing, m
}

// Run writes the reference result for img into out, then checks every
// variant in opts against it. Single-run variants are checked concurrently,
// each on its own buffer; the multithreaded variant runs alone afterwards.
// A failing variant does not stop the others.
//
// ctx is checked between transform runs; its error is returned if it is
// canceled before all variants finished.
func Run(ctx context.Context, img *graytone.Image, p graytone.Params, out []uint8, opts Options) (*Report, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	reps := opts.Repetitions
	if reps <= 0 {
		reps = DefaultRepetitions
	}
	variants := opts.Variants
	if variants == nil {
		variants = graytone.Variants()[1:]
	}

	graytone.Reference.Apply(img, p, out)

	results := make([]Result, len(variants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, v := range variants {
		if v.ID == graytone.GoSISDMultithreaded {
			continue
		}
		g.Go(func() error {
			var err error
			results[i], err = probe(gctx, v, img, p, out, opts.Delta, 1)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, v := range variants {
		if v.ID != graytone.GoSISDMultithreaded {
			continue
		}
		var err error
		if results[i], err = probe(ctx, v, img, p, out, opts.Delta, reps); err != nil {
			return nil, err
		}
	}

	for _, res := range results {
		logResult(logger, res, opts.Delta)
	}
	return &Report{Delta: opts.Delta, Results: results}, nil
}

// probe runs v up to runs times into one buffer, stopping at the first
// failing run.
func probe(ctx context.Context, v graytone.Variant, img *graytone.Image, p graytone.Params, want []uint8, delta uint8, runs int) (Result, error) {
	res := Result{Variant: v, Passed: true}
	buf := make([]uint8, len(want))
	for range runs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		v.Apply(img, p, buf)
		res.Runs++

		d, n, m := Compare(want, buf, delta)
		if m != nil {
			res.Passed = false
			res.Mismatch = m
			return res, nil
		}
		res.MaxDelta = max(res.MaxDelta, d)
		res.DifferingPixels = max(res.DifferingPixels, n)
	}
	return res, nil
}

func logResult(logger *slog.Logger, res Result, delta uint8) {
	attrs := []any{"id", res.Variant.ID, "variant", res.Variant.Name, "runs", res.Runs}
	if res.Passed {
		logger.Info("PASS", append(attrs,
			"max_delta", res.MaxDelta,
			"differing_pixels", res.DifferingPixels)...)
		return
	}
	logger.Warn("FAIL", append(attrs,
		"index", res.Mismatch.Index,
		"expected", res.Mismatch.Expected,
		"actual", res.Mismatch.Actual,
		"delta", delta)...)
}
