// Package hwy provides portable fixed-width SIMD lanes with runtime CPU
// dispatch reporting.
//
// It follows the Highway C++ library's design: kernels are written once
// against a lane descriptor (Tag) and vector handles (Vec), and the same
// kernel can run at any lane count. A Tag obtained from Full uses the widest
// float lanes the detected CPU offers; Capped pins the lane count, which is
// how callers request a fixed batch size or a single-lane (scalar) rendition
// of a vector kernel.
//
// Basic usage:
//
//	d := hwy.Capped[float32](4)
//	a := hwy.Load(d, data1)
//	b := hwy.Load(d, data2)
//	hwy.Store(hwy.Add(a, b), out)
package hwy

// maxLanes is the storage capacity of a Vec: 64 bytes of float32, which is
// the widest register (AVX-512) the dispatcher reports.
const maxLanes = 16

// Floats is a constraint for floating-point types.
type Floats interface {
	~float32 | ~float64
}

// SignedInts is a constraint for signed integer types.
type SignedInts interface {
	~int8 | ~int16 | ~int32 | ~int64
}

// UnsignedInts is a constraint for unsigned integer types.
type UnsignedInts interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Integers is a constraint for all integer types.
type Integers interface {
	SignedInts | UnsignedInts
}

// Lanes is a constraint for all types that can be stored in SIMD lanes.
type Lanes interface {
	Floats | Integers
}

// Tag describes a vector shape: the element type and the number of active
// lanes. It carries no data and is cheap to copy.
type Tag[T Lanes] struct {
	n int
}

// Full returns a Tag using every lane the current dispatch width allows.
func Full[T Lanes]() Tag[T] {
	return Tag[T]{n: MaxLanes[T]()}
}

// Capped returns a Tag with at most n lanes. The result always has at least
// one lane and never more than MaxLanes.
func Capped[T Lanes](n int) Tag[T] {
	return Tag[T]{n: max(1, min(n, MaxLanes[T]()))}
}

// Lanes returns the number of active lanes described by d.
func (d Tag[T]) Lanes() int {
	return d.n
}

// Vec is a vector handle holding up to maxLanes elements, of which only the
// first NumLanes are meaningful.
//
// Vec instances should not be created directly; use Load, Set, or Zero.
type Vec[T Lanes] struct {
	data [maxLanes]T
	n    int
}

// NumLanes returns the number of lanes (elements) in this vector.
func (v Vec[T]) NumLanes() int {
	return v.n
}

// Data returns a copy of the active lanes.
// This is primarily for testing and should not be used in performance-critical code.
func (v Vec[T]) Data() []T {
	out := make([]T, v.n)
	copy(out, v.data[:v.n])
	return out
}

// Store writes the vector's data to a slice.
// This is the method form of the hwy.Store function.
func (v Vec[T]) Store(dst []T) {
	Store(v, dst)
}
