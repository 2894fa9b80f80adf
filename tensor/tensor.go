// Copyright 2025 Grove ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for Grove's dense float32 tensors.
//
// Tensors are small, CPU-resident, and immutable in the forward path: every
// arithmetic method allocates a fresh result. They exist to carry parameters
// and activations for the module system, not to be a general array library.
//
// Example:
//
//	x := tensor.MustFromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	y := tensor.Ones(tensor.Shape{2, 2})
//	z := x.Add(y).MatMul(y.Transpose())
package tensor

import (
	"math/rand"

	"github.com/grove-ml/grove/internal/tensor"
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3} is a 2×3 matrix.
type Shape = tensor.Shape

// DataType identifies a tensor element type in serialized files.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Bool    DataType = tensor.Bool
)

// Tensor is a dense float32 tensor in row-major order.
//
// Arithmetic methods (Add, Mul, MatMul, ...) panic on shape mismatch, the
// same way the module system panics on misuse in the forward path.
type Tensor = tensor.Tensor

// New creates a zero-filled tensor with the given shape.
// It panics if the shape is invalid.
func New(shape Shape) *Tensor {
	return tensor.New(shape)
}

// FromSlice creates a tensor wrapping a copy of data.
// It returns an error if len(data) does not match the shape.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromSlice(data, shape)
}

// MustFromSlice is FromSlice that panics on error. Intended for literals
// in examples and tests.
func MustFromSlice(data []float32, shape Shape) *Tensor {
	return tensor.MustFromSlice(data, shape)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	return tensor.Zeros(shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape) *Tensor {
	return tensor.Ones(shape)
}

// Full creates a tensor filled with value.
func Full(shape Shape, value float32) *Tensor {
	return tensor.Full(shape, value)
}

// Randn creates a tensor with standard normal samples drawn from rng.
func Randn(shape Shape, rng *rand.Rand) *Tensor {
	return tensor.Randn(shape, rng)
}
