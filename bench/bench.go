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

// Package bench times graytone variants and the fastsqrt routines.
package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/ajroetker/go-graytone/fastsqrt"
	"github.com/ajroetker/go-graytone/graytone"
)

const (
	// DefaultRuns is the number of transform runs per measurement.
	DefaultRuns = 5000

	// DefaultSqrtRuns is the number of calls per square-root routine.
	DefaultSqrtRuns = 150_000_000

	// DefaultReportFile is where the CLI writes the sweep CSV.
	DefaultReportFile = "benchmark.csv"

	// SweepSteps is the number of image sizes per variant in Sweep. The
	// first size is 1/2^(SweepSteps-1) of the image on each axis and every
	// following one doubles it.
	SweepSteps = 7

	sqrtInput = 1337.42
)

// Result is one timed measurement.
type Result struct {
	Variant string
	Pixels  int
	Total   time.Duration
	Average time.Duration
}

func (r Result) String() string {
	return fmt.Sprintf("%s: %d pixels, total %v, average %v", r.Variant, r.Pixels, r.Total, r.Average)
}

// Time runs v on img runs times back to back and reports the elapsed wall
// time. runs < 1 is treated as 1.
func Time(v graytone.Variant, img *graytone.Image, p graytone.Params, out []uint8, runs int) Result {
	runs = max(runs, 1)
	start := time.Now()
	for range runs {
		v.Apply(img, p, out)
	}
	total := time.Since(start)
	return Result{
		Variant: v.Name,
		Pixels:  img.Pixels(),
		Total:   total,
		Average: total / time.Duration(runs),
	}
}

// Sweep times every variant on SweepSteps growing prefixes of img, the last
// one being img itself. out must hold img.Pixels() bytes. Results are
// grouped by variant in catalog order, sizes ascending.
//
// ctx is checked between measurements.
func Sweep(ctx context.Context, img *graytone.Image, p graytone.Params, out []uint8, runs int) ([]Result, error) {
	sizes := sweepSizes(img.Width, img.Height)
	results := make([]Result, 0, graytone.NumVariants()*len(sizes))
	for _, v := range graytone.Variants() {
		for _, s := range sizes {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			w, h := s[0], s[1]
			results = append(results, Time(v, img.Sub(w, h), p, out[:w*h], runs))
		}
	}
	return results, nil
}

// sweepSizes returns the (width, height) pairs of Sweep. Fractional sizes
// are truncated and never go below one pixel.
func sweepSizes(width, height int) [][2]int {
	scale := math.Ldexp(1, -(SweepSteps - 1))
	w, h := float64(width)*scale, float64(height)*scale
	sizes := make([][2]int, SweepSteps)
	for i := range sizes {
		sizes[i] = [2]int{max(1, int(w)), max(1, int(h))}
		w, h = 2*w, 2*h
	}
	return sizes
}

// WriteCSV writes results as CSV with the header
// "Implementation,Pixels,Total,Average"; durations are in seconds.
func WriteCSV(w io.Writer, results []Result) error {
	if _, err := fmt.Fprintln(w, "Implementation,Pixels,Total,Average"); err != nil {
		return fmt.Errorf("bench: writing CSV header: %w", err)
	}
	for _, r := range results {
		_, err := fmt.Fprintf(w, "%s,%d,%f,%f\n", r.Variant, r.Pixels, r.Total.Seconds(), r.Average.Seconds())
		if err != nil {
			return fmt.Errorf("bench: writing CSV row for %s: %w", r.Variant, err)
		}
	}
	return nil
}

// WriteCSVFile writes results to path, replacing any existing file.
func WriteCSVFile(path string, results []Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	return WriteCSV(f, results)
}

// SqrtResult is the timing of one square-root routine.
type SqrtResult struct {
	Name    string
	Runs    int
	Total   time.Duration
	Average time.Duration
}

func (r SqrtResult) String() string {
	return fmt.Sprintf("%s: %d calls, total %v, average %v", r.Name, r.Runs, r.Total, r.Average)
}

var sqrtFuncs = []struct {
	name string
	fn   fastsqrt.Func
}{
	{"sqrt_heron", fastsqrt.Heron},
	{"sqrt_ieee", fastsqrt.Bits},
	{"math.Sqrt", fastsqrt.Exact},
}

// sink keeps the timed square roots from being optimized away.
var sink float32

// TimeSqrt calls each square-root routine runs times on a fixed input.
func TimeSqrt(runs int) []SqrtResult {
	runs = max(runs, 1)
	results := make([]SqrtResult, 0, len(sqrtFuncs))
	for _, s := range sqrtFuncs {
		var acc float32
		start := time.Now()
		for range runs {
			acc += s.fn(sqrtInput)
		}
		total := time.Since(start)
		sink += acc
		results = append(results, SqrtResult{
			Name:    s.name,
			Runs:    runs,
			Total:   total,
			Average: total / time.Duration(runs),
		})
	}
	return results
}
