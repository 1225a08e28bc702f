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

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ajroetker/go-graytone/bench"
	"github.com/ajroetker/go-graytone/conformance"
	"github.com/ajroetker/go-graytone/fastsqrt"
	"github.com/ajroetker/go-graytone/graytone"
	"github.com/ajroetker/go-graytone/hwy"
	"github.com/ajroetker/go-graytone/ppm"
)

// options holds the parsed command line.
type options struct {
	output      string
	coeffs      []float32
	brightness  int16
	contrast    float32
	variant     int
	benchRuns   int
	csv         bool
	csvOut      string
	test        bool
	delta       uint8
	repetitions int
	sqrt        bool
	sqrtRuns    int
	verbose     bool
	strict      bool

	// Set by validate.
	input   string
	params  graytone.Params
	impl    graytone.Variant
	logger  *slog.Logger
	stdout  io.Writer
	flagSet *pflag.FlagSet
}

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "graytone <input.ppm> -o <output.pgm> --brightness N --contrast F [flags]",
		Short: "Convert a PPM image to gray and normalize brightness and contrast",
		Long: `graytone converts a binary PPM (P6) image to an 8-bit gray PGM (P5) image.

Every pixel becomes a*R + b*G + c*B + brightness, with the coefficients
divided by their sum. The result is then rescaled around its mean so its
standard deviation equals the contrast; a negative contrast inverts the image.

Benchmark runs take an optional value and must be given as --bench=N or -B=N.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.validate(cmd, args); err != nil {
				return err
			}
			return o.run(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.SortFlags = false
	f.StringVarP(&o.output, "output", "o", "", "output PGM file; .gz or .zst compresses it")
	f.Int16Var(&o.brightness, "brightness", 0, fmt.Sprintf("brightness shift in [-%d, %d]", graytone.MaxBrightness, graytone.MaxBrightness))
	f.Float32Var(&o.contrast, "contrast", 0, fmt.Sprintf("target contrast in [-%g, %g]", graytone.MaxContrast, graytone.MaxContrast))
	f.Float32SliceVar(&o.coeffs, "coeffs", slices.Clone(graytone.DefaultCoeffs[:]), "red, green and blue weights")
	f.IntVarP(&o.variant, "variant", "V", graytone.LanesSIMD, fmt.Sprintf("implementation to use, 0..%d (see 'graytone list')", graytone.NumVariants()-1))
	f.IntVarP(&o.benchRuns, "bench", "B", 0, "time the selected implementation over N runs")
	f.Lookup("bench").NoOptDefVal = strconv.Itoa(bench.DefaultRuns)
	f.BoolVar(&o.csv, "csv", false, "benchmark all implementations on growing image sizes and write a CSV report")
	f.StringVar(&o.csvOut, "csv-out", bench.DefaultReportFile, "CSV report file for --csv")
	f.BoolVar(&o.test, "test", false, "check every implementation against implementation 0")
	f.Uint8Var(&o.delta, "delta", conformance.DefaultDelta, "largest accepted per-pixel difference for --test")
	f.IntVar(&o.repetitions, "repetitions", conformance.DefaultRepetitions, "runs of the multithreaded implementation for --test")
	f.BoolVar(&o.strict, "strict", false, "exit with an error when a --test or --sqrt check fails")
	f.BoolVar(&o.sqrt, "sqrt", false, "test and benchmark the fast square roots; no image is read")
	f.IntVar(&o.sqrtRuns, "sqrt-runs", bench.DefaultSqrtRuns, "calls per square root for --sqrt")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "log debug details")

	cmd.AddCommand(newListCmd())
	return cmd
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available implementations",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			for _, v := range graytone.Variants() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", v.ID, v.Name)
			}
		},
	}
}

// validate checks the command line before any file is touched.
func (o *options) validate(cmd *cobra.Command, args []string) error {
	o.flagSet = cmd.Flags()
	o.stdout = cmd.OutOrStdout()
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	o.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	if o.sqrt {
		if o.sqrtRuns < 1 {
			return fmt.Errorf("--sqrt-runs must be positive, got %d", o.sqrtRuns)
		}
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("expected exactly one positional argument, got %d", len(args))
	}
	o.input = args[0]
	for _, name := range []string{"output", "brightness", "contrast"} {
		if !o.flagSet.Changed(name) {
			return fmt.Errorf("--%s not specified", name)
		}
	}
	if o.output == "" {
		return errors.New("--output is empty")
	}
	if len(o.coeffs) != 3 {
		return fmt.Errorf("--coeffs expects exactly three coefficients, got %d", len(o.coeffs))
	}

	o.params = graytone.Params{
		Coeffs:     [3]float32{o.coeffs[0], o.coeffs[1], o.coeffs[2]},
		Brightness: o.brightness,
		Contrast:   o.contrast,
	}
	if err := o.params.Validate(); err != nil {
		return err
	}
	var err error
	if o.impl, err = graytone.Lookup(o.variant); err != nil {
		return err
	}

	if o.flagSet.Changed("bench") && o.benchRuns < 1 {
		return fmt.Errorf("--bench must be positive, got %d", o.benchRuns)
	}
	if o.csv && !o.flagSet.Changed("bench") {
		o.benchRuns = bench.DefaultRuns
	}
	if o.test && o.benchRuns > 0 {
		return errors.New("invalid combination of arguments: tests and benchmarks cannot run together")
	}
	if o.test && o.repetitions < 1 {
		return fmt.Errorf("--repetitions must be positive, got %d", o.repetitions)
	}
	return nil
}

func (o *options) run(ctx context.Context) error {
	o.logger.Debug("dispatch", "level", hwy.CurrentName(), "width", hwy.CurrentWidth())

	if o.sqrt {
		return o.runSqrt()
	}

	img, err := ppm.ReadFile(o.input)
	if err != nil {
		if errors.Is(err, ppm.ErrFormat) || errors.Is(err, ppm.ErrTooLarge) {
			return fmt.Errorf("invalid input image: %w", err)
		}
		return fmt.Errorf("failed to read input image: %w", err)
	}
	o.logger.Debug("read input", "path", o.input, "width", img.Width, "height", img.Height)
	result := make([]uint8, img.Pixels())

	switch {
	case o.csv:
		results, err := bench.Sweep(ctx, img, o.params, result, o.benchRuns)
		if err != nil {
			return err
		}
		if err := bench.WriteCSVFile(o.csvOut, results); err != nil {
			return fmt.Errorf("failed to write benchmark report: %w", err)
		}
		o.logger.Info("wrote benchmark report", "path", o.csvOut, "rows", len(results))

	case o.benchRuns > 0:
		fmt.Fprintln(o.stdout, bench.Time(o.impl, img, o.params, result, o.benchRuns))

	case o.test:
		fmt.Fprintf(o.stdout, "Running tests with %s as reference implementation...\n", graytone.Reference.Name)
		report, err := conformance.Run(ctx, img, o.params, result, conformance.Options{
			Delta:       o.delta,
			Repetitions: o.repetitions,
			Logger:      o.logger,
		})
		if err != nil {
			return err
		}
		for _, res := range report.Results {
			fmt.Fprintln(o.stdout, res)
		}
		if failed := report.Failed(); len(failed) > 0 && o.strict {
			return fmt.Errorf("%d implementation(s) failed the conformance check", len(failed))
		}

	default:
		o.impl.Apply(img, o.params, result)
		fmt.Fprintf(o.stdout, "Conversion and brightness/contrast adjustment using %s successful.\n", o.impl.Name)
	}

	if err := ppm.WriteGrayFile(o.output, result, img.Width, img.Height); err != nil {
		return fmt.Errorf("failed to write output image: %w", err)
	}
	return nil
}

func (o *options) runSqrt() error {
	var failed int
	for _, s := range []struct {
		name string
		fn   fastsqrt.Func
	}{
		{"sqrt_heron", fastsqrt.Heron},
		{"sqrt_ieee", fastsqrt.Bits},
	} {
		if f := fastsqrt.Check(s.fn, fastsqrt.Epsilon); f != nil {
			failed++
			fmt.Fprintf(o.stdout, "FAIL %s: %v\n", s.name, f)
			continue
		}
		fmt.Fprintf(o.stdout, "PASS %s (epsilon %g)\n", s.name, fastsqrt.Epsilon)
	}
	for _, r := range bench.TimeSqrt(o.sqrtRuns) {
		fmt.Fprintln(o.stdout, r)
	}
	if failed > 0 && o.strict {
		return fmt.Errorf("%d square root(s) failed the accuracy check", failed)
	}
	return nil
}
