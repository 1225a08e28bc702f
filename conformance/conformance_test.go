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

package conformance

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-graytone/graytone"
)

var (
	quiet  = slog.New(slog.NewTextHandler(io.Discard, nil))
	params = graytone.Params{Coeffs: graytone.DefaultCoeffs, Brightness: 20, Contrast: 48}
)

func testImage(width, height int) *graytone.Image {
	img := graytone.NewImage(width, height)
	x := uint32(2463534242)
	for i := range img.Pix {
		x ^= x << 13
		x ^= x >> 17
		x ^= x << 5
		img.Pix[i] = uint8(x)
	}
	return img
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name          string
		expected      []uint8
		actual        []uint8
		delta         uint8
		wantMax       uint8
		wantDiffering int
		wantMismatch  *Mismatch
	}{
		{"identical", []uint8{1, 2, 3}, []uint8{1, 2, 3}, 0, 0, 0, nil},
		{"within delta", []uint8{1, 2, 3, 200}, []uint8{2, 2, 2, 200}, 1, 1, 2, nil},
		{"exact required", []uint8{1, 2, 3}, []uint8{1, 3, 3}, 0, 0, 0, &Mismatch{Index: 1, Expected: 2, Actual: 3}},
		{"first mismatch wins", []uint8{10, 0, 255}, []uint8{11, 5, 0}, 1, 1, 1, &Mismatch{Index: 1, Expected: 0, Actual: 5}},
		{"full range", []uint8{0, 255}, []uint8{255, 0}, 255, 255, 2, nil},
		{"short actual", []uint8{1, 2, 3}, []uint8{1, 2}, 1, 0, 0, &Mismatch{Index: 2, Expected: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotMax, gotDiffering, gotMismatch := Compare(tt.expected, tt.actual, tt.delta)
			assert.Equal(t, tt.wantMax, gotMax, "max delta")
			assert.Equal(t, tt.wantDiffering, gotDiffering, "differing pixels")
			assert.Equal(t, tt.wantMismatch, gotMismatch, "mismatch")
		})
	}
}

func TestRunCatalogPasses(t *testing.T) {
	img := testImage(61, 17)
	out := make([]uint8, img.Pixels())
	opts := DefaultOptions()
	opts.Repetitions = 25
	opts.Logger = quiet

	report, err := Run(context.Background(), img, params, out, opts)
	require.NoError(t, err)
	require.Len(t, report.Results, graytone.NumVariants()-1)
	assert.True(t, report.Passed())
	assert.Empty(t, report.Failed())

	for i, res := range report.Results {
		assert.Equal(t, i+1, res.Variant.ID)
		assert.LessOrEqual(t, res.MaxDelta, uint8(DefaultDelta))
		if res.Variant.ID == graytone.GoSISDMultithreaded {
			assert.Equal(t, 25, res.Runs)
		} else {
			assert.Equal(t, 1, res.Runs)
		}
	}

	want := make([]uint8, img.Pixels())
	graytone.Reference.Apply(img, params, want)
	assert.Equal(t, want, out, "out must hold the reference result")
}

func TestRunDefaultRepetitions(t *testing.T) {
	img := testImage(9, 5)
	out := make([]uint8, img.Pixels())
	opts := DefaultOptions()
	opts.Logger = quiet

	report, err := Run(context.Background(), img, params, out, opts)
	require.NoError(t, err)
	assert.True(t, report.Passed())

	mt := report.Results[graytone.GoSISDMultithreaded-1]
	assert.Equal(t, graytone.GoSISDMultithreaded, mt.Variant.ID)
	assert.Equal(t, DefaultRepetitions, mt.Runs)
}

func TestRunReportsFailures(t *testing.T) {
	img := testImage(8, 8)
	out := make([]uint8, img.Pixels())

	inverted := graytone.Variant{ID: 90, Name: "inverted", Func: func(src []uint8, width, height int, p graytone.Params, dst []uint8) {
		graytone.Reference.Func(src, width, height, p, dst)
		for i := range dst {
			dst[i] = 255 - dst[i]
		}
	}}
	good, err := graytone.Lookup(graytone.GoSISD)
	require.NoError(t, err)

	report, err := Run(context.Background(), img, params, out, Options{
		Delta:    1,
		Variants: []graytone.Variant{inverted, good},
		Logger:   quiet,
	})
	require.NoError(t, err)
	require.Len(t, report.Results, 2)
	assert.False(t, report.Passed())

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "inverted", failed[0].Variant.Name)
	require.NotNil(t, failed[0].Mismatch)
	assert.Equal(t, 255-out[failed[0].Mismatch.Index], failed[0].Mismatch.Actual)
	assert.Contains(t, failed[0].String(), "FAIL")

	assert.True(t, report.Results[1].Passed, "a failing variant must not stop the others")
	assert.Contains(t, report.Results[1].String(), "PASS")
}

func TestRunStopsRepeatingAtFirstFailure(t *testing.T) {
	img := testImage(16, 4)
	out := make([]uint8, img.Pixels())

	var calls atomic.Int32
	flaky := graytone.Variant{ID: graytone.GoSISDMultithreaded, Name: "flaky", Func: func(src []uint8, width, height int, p graytone.Params, dst []uint8) {
		graytone.Reference.Func(src, width, height, p, dst)
		if calls.Add(1) == 3 {
			dst[5] += 100
		}
	}}

	report, err := Run(context.Background(), img, params, out, Options{
		Delta:       1,
		Repetitions: 50,
		Variants:    []graytone.Variant{flaky},
		Logger:      quiet,
	})
	require.NoError(t, err)
	res := report.Results[0]
	assert.False(t, res.Passed)
	assert.Equal(t, 3, res.Runs)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 5, res.Mismatch.Index)
}

func TestRunCanceled(t *testing.T) {
	img := testImage(4, 4)
	out := make([]uint8, img.Pixels())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, img, params, out, Options{Logger: quiet})
	assert.ErrorIs(t, err, context.Canceled)
}
