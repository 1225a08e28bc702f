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
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/ajroetker/go-graytone/fastsqrt"
	"github.com/ajroetker/go-graytone/hwy"
)

// Func is the signature shared by all variants. src holds 3*width*height
// bytes of packed RGB and dst receives width*height gray bytes; every byte
// of dst is overwritten.
type Func func(src []uint8, width, height int, p Params, dst []uint8)

// Variant pairs a stable ID and a display name with an implementation.
type Variant struct {
	ID   int
	Name string
	Func Func
}

// Apply runs v on img, writing img.Pixels() bytes to dst.
func (v Variant) Apply(img *Image, p Params, dst []uint8) {
	v.Func(img.Pix, img.Width, img.Height, p, dst)
}

func (v Variant) String() string {
	return fmt.Sprintf("%d (%s)", v.ID, v.Name)
}

// Variant IDs.
const (
	LanesSIMD = iota
	GoSIMD
	LanesSISD
	GoSISD
	GoSISDMultithreaded
	GoSISDHeron
	GoSISDIEEE
	numVariants
)

// simdLanes is the batch width of the vectorized variants: four float32
// lanes, one 128-bit register.
const simdLanes = 4

var catalog = [numVariants]Variant{
	{LanesSIMD, "Lanes SIMD", lanesTransform(hwy.Capped[float32](simdLanes))},
	{GoSIMD, "Go SIMD", unrolledTransform},
	{LanesSISD, "Lanes SISD", lanesTransform(hwy.Capped[float32](1))},
	{GoSISD, "Go SISD", scalarTransform(fastsqrt.Exact)},
	{GoSISDMultithreaded, "Go SISD Multithreaded", parallelTransform},
	{GoSISDHeron, "Go SISD with sqrt_heron", scalarTransform(fastsqrt.Heron)},
	{GoSISDIEEE, "Go SISD with sqrt_ieee", scalarTransform(fastsqrt.Bits)},
}

// Reference is variant 0, the default implementation and the oracle the
// other variants are checked against.
var Reference = catalog[LanesSIMD]

// Variants returns the catalog in ID order. The returned slice is a copy.
func Variants() []Variant {
	return slices.Clone(catalog[:])
}

// NumVariants returns the number of catalog entries.
func NumVariants() int {
	return numVariants
}

// Lookup returns the variant with the given ID.
func Lookup(id int) (Variant, error) {
	if id < 0 || id >= numVariants {
		return Variant{}, fmt.Errorf("%w: %d (want 0..%d)", ErrUnknownVariant, id, numVariants-1)
	}
	return catalog[id], nil
}

// Names returns the variant names in ID order.
func Names() []string {
	return lo.Map(catalog[:], func(v Variant, _ int) string {
		return v.Name
	})
}
