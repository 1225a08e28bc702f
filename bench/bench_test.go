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

package bench

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajroetker/go-graytone/graytone"
)

var params = graytone.Params{Coeffs: graytone.DefaultCoeffs, Brightness: 10, Contrast: 40}

func TestSweepSizes(t *testing.T) {
	assert.Equal(t, [][2]int{
		{10, 7}, {20, 15}, {40, 30}, {80, 60}, {160, 120}, {320, 240}, {640, 480},
	}, sweepSizes(640, 480))

	// Tiny images never produce an empty step.
	assert.Equal(t, [][2]int{
		{1, 1}, {1, 1}, {1, 1}, {1, 1}, {1, 1}, {1, 1}, {3, 2},
	}, sweepSizes(3, 2))
}

func TestTime(t *testing.T) {
	calls := 0
	v := graytone.Variant{ID: 42, Name: "counting", Func: func(src []uint8, width, height int, p graytone.Params, dst []uint8) {
		calls++
		time.Sleep(time.Millisecond)
	}}
	img := graytone.NewImage(4, 3)
	res := Time(v, img, params, make([]uint8, img.Pixels()), 5)

	assert.Equal(t, 5, calls)
	assert.Equal(t, "counting", res.Variant)
	assert.Equal(t, 12, res.Pixels)
	assert.GreaterOrEqual(t, res.Total, 5*time.Millisecond)
	assert.Equal(t, res.Total/5, res.Average)

	calls = 0
	Time(v, img, params, nil, 0)
	assert.Equal(t, 1, calls)
}

func TestSweep(t *testing.T) {
	img := graytone.NewImage(128, 64)
	for i := range img.Pix {
		img.Pix[i] = uint8(i)
	}
	out := make([]uint8, img.Pixels())

	results, err := Sweep(context.Background(), img, params, out, 2)
	require.NoError(t, err)
	require.Len(t, results, graytone.NumVariants()*SweepSteps)

	sizes := sweepSizes(img.Width, img.Height)
	for i, r := range results {
		v := graytone.Variants()[i/SweepSteps]
		s := sizes[i%SweepSteps]
		assert.Equal(t, v.Name, r.Variant)
		assert.Equal(t, s[0]*s[1], r.Pixels)
	}
	assert.Equal(t, img.Pixels(), results[len(results)-1].Pixels)
}

func TestSweepCanceled(t *testing.T) {
	img := graytone.NewImage(64, 64)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Sweep(ctx, img, params, make([]uint8, img.Pixels()), 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestWriteCSV(t *testing.T) {
	results := []Result{
		{Variant: "Lanes SIMD", Pixels: 100, Total: 1500 * time.Millisecond, Average: 300 * time.Microsecond},
		{Variant: "Go SISD", Pixels: 400, Total: 2 * time.Second, Average: 400 * time.Microsecond},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, results))
	assert.Equal(t, "Implementation,Pixels,Total,Average\n"+
		"Lanes SIMD,100,1.500000,0.000300\n"+
		"Go SISD,400,2.000000,0.000400\n", buf.String())
}

type failingWriter struct{ writes int }

func (w *failingWriter) Write(p []byte) (int, error) {
	w.writes++
	return 0, errors.New("disk full")
}

func TestWriteCSVAbortsOnError(t *testing.T) {
	w := &failingWriter{}
	err := WriteCSV(w, []Result{{Variant: "a"}, {Variant: "b"}})
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 1, w.writes)
}

func TestWriteCSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultReportFile)
	require.NoError(t, WriteCSVFile(path, []Result{{Variant: "Go SIMD", Pixels: 1}}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "Go SIMD,1,"))

	missing := filepath.Join(dir, "missing", "out.csv")
	assert.Error(t, WriteCSVFile(missing, nil))
	assert.NoFileExists(t, missing)
}

func TestTimeSqrt(t *testing.T) {
	results := TimeSqrt(1000)
	require.Len(t, results, 3)
	assert.Equal(t, "sqrt_heron", results[0].Name)
	assert.Equal(t, "sqrt_ieee", results[1].Name)
	for _, r := range results {
		assert.Equal(t, 1000, r.Runs)
		assert.Equal(t, r.Total/1000, r.Average)
	}
}
