package tensor

import "fmt"

// Sum returns the sum of all elements.
func (t *Tensor) Sum() float32 {
	var s float32
	for _, v := range t.data {
		s += v
	}
	return s
}

// Mean returns the mean of all elements.
func (t *Tensor) Mean() float32 {
	return t.Sum() / float32(len(t.data))
}

func (t *Tensor) requireRows(op string) (rows, cols int) {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("%s: expected 2-D tensor, got %v", op, t.shape))
	}
	return t.shape[0], t.shape[1]
}

// SumAxis0 sums a 2-D tensor over its rows, returning shape [cols].
// This is the reduction used for bias gradients.
func (t *Tensor) SumAxis0() *Tensor {
	rows, cols := t.requireRows("SumAxis0")
	out := New(Shape{cols})
	for r := 0; r < rows; r++ {
		base := r * cols
		for c := 0; c < cols; c++ {
			out.data[c] += t.data[base+c]
		}
	}
	return out
}

// MeanAxis0 averages a 2-D tensor over its rows, returning shape [cols].
func (t *Tensor) MeanAxis0() *Tensor {
	rows, _ := t.requireRows("MeanAxis0")
	return t.SumAxis0().Scale(1 / float32(rows))
}

// VarAxis0 computes the per-column population variance of a 2-D tensor
// (dividing by rows, not rows-1, matching batch-statistics conventions).
func (t *Tensor) VarAxis0() *Tensor {
	rows, cols := t.requireRows("VarAxis0")
	mean := t.MeanAxis0()
	out := New(Shape{cols})
	for r := 0; r < rows; r++ {
		base := r * cols
		for c := 0; c < cols; c++ {
			d := t.data[base+c] - mean.data[c]
			out.data[c] += d * d
		}
	}
	return out.Scale(1 / float32(rows))
}
