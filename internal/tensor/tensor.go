package tensor

import (
	"fmt"
	"math"
	"strings"
)

// Tensor is a dense float32 array with a shape.
//
// Data is stored row-major. Tensors own their data slice; operations that
// return a new Tensor never alias the inputs, and in-place mutation happens
// only through Data(), Set, and the explicit *InPlace helpers used by
// optimizers.
type Tensor struct {
	shape Shape
	data  []float32
}

// New creates a zero-filled tensor with the given shape.
//
// Panics if the shape is invalid; shape validity is a programmer invariant
// everywhere inside Grove, so the fallible path lives in FromSlice only.
func New(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor.New: %v", err))
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float32, shape.NumElements()),
	}
}

// FromSlice creates a tensor from a Go slice. The slice is copied.
func FromSlice(data []float32, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d",
			shape, shape.NumElements(), len(data))
	}
	t := New(shape)
	copy(t.data, data)
	return t, nil
}

// MustFromSlice is FromSlice for statically known data; it panics on error.
func MustFromSlice(data []float32, shape Shape) *Tensor {
	t, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Data returns the underlying data slice.
//
// Mutating the returned slice mutates the tensor. Optimizers rely on this
// for in-place parameter updates.
func (t *Tensor) Data() []float32 {
	return t.data
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return t.shape.NumElements()
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	c := New(t.shape)
	copy(c.data, t.data)
	return c
}

// Reshape returns a view-copy of the tensor with a new shape.
// The number of elements must match.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	shape := Shape(dims)
	if shape.NumElements() != t.NumElements() {
		panic(fmt.Sprintf("Reshape: cannot reshape %v to %v", t.shape, shape))
	}
	c := t.Clone()
	c.shape = shape.Clone()
	return c
}

// At returns the element at the given row-major indices.
func (t *Tensor) At(indices ...int) float32 {
	return t.data[t.index(indices)]
}

// Set stores a value at the given row-major indices.
func (t *Tensor) Set(value float32, indices ...int) {
	t.data[t.index(indices)] = value
}

func (t *Tensor) index(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("tensor: expected %d indices for shape %v, got %d",
			len(t.shape), t.shape, len(indices)))
	}
	idx := 0
	for i, ix := range indices {
		if ix < 0 || ix >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range for dimension %d of shape %v",
				ix, i, t.shape))
		}
		idx = idx*t.shape[i] + ix
	}
	return idx
}

// Equal reports whether two tensors have identical shapes and bit-identical data.
func (t *Tensor) Equal(other *Tensor) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i := range t.data {
		if t.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// AllClose reports whether two tensors have identical shapes and element-wise
// values within the given absolute tolerance.
func (t *Tensor) AllClose(other *Tensor, tol float32) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i := range t.data {
		diff := t.data[i] - other.data[i]
		if diff < 0 {
			diff = -diff
		}
		if diff > tol || math.IsNaN(float64(diff)) {
			return false
		}
	}
	return true
}

// String renders small tensors fully and large ones as shape + summary.
func (t *Tensor) String() string {
	const maxShown = 16
	var b strings.Builder
	fmt.Fprintf(&b, "Tensor%v [", t.shape)
	n := len(t.data)
	shown := n
	if shown > maxShown {
		shown = maxShown
	}
	for i := 0; i < shown; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%g", t.data[i])
	}
	if n > shown {
		fmt.Fprintf(&b, ", ... %d more", n-shown)
	}
	b.WriteString("]")
	return b.String()
}
