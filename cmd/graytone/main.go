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

// Command graytone converts a binary PPM image to a gray PGM image with a
// given brightness shift and contrast, using one of the graytone variants.
// It can also benchmark the variants, check them against each other, and
// test the fast square roots.
//
// Usage:
//
//	graytone input.ppm -o out.pgm --brightness 20 --contrast 48
//	graytone input.ppm -o out.pgm --brightness 0 --contrast 30 -V 4 --bench=100
//	graytone input.ppm -o out.pgm --brightness 0 --contrast 30 --csv --csv-out sweep.csv
//	graytone input.ppm -o out.pgm --brightness 0 --contrast 30 --test
//	graytone --sqrt
//
// Input may be gzip- or zstd-compressed; an output path ending in .gz or
// .zst is compressed accordingly.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
