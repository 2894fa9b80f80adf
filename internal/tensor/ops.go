package tensor

import "fmt"

// checkSameShape panics unless a and b have identical shapes.
//
// Element-wise operations require exact shape matches; the one broadcast the
// layers need (bias over rows) has its own dedicated operation, AddRow.
func checkSameShape(op string, a, b *Tensor) {
	if !a.shape.Equal(b.shape) {
		panic(fmt.Sprintf("%s: shape mismatch %v vs %v", op, a.shape, b.shape))
	}
}

// Add returns the element-wise sum a + b.
func (t *Tensor) Add(other *Tensor) *Tensor {
	checkSameShape("Add", t, other)
	out := New(t.shape)
	for i := range t.data {
		out.data[i] = t.data[i] + other.data[i]
	}
	return out
}

// Sub returns the element-wise difference a - b.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	checkSameShape("Sub", t, other)
	out := New(t.shape)
	for i := range t.data {
		out.data[i] = t.data[i] - other.data[i]
	}
	return out
}

// Mul returns the element-wise product a * b.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	checkSameShape("Mul", t, other)
	out := New(t.shape)
	for i := range t.data {
		out.data[i] = t.data[i] * other.data[i]
	}
	return out
}

// Div returns the element-wise quotient a / b.
func (t *Tensor) Div(other *Tensor) *Tensor {
	checkSameShape("Div", t, other)
	out := New(t.shape)
	for i := range t.data {
		out.data[i] = t.data[i] / other.data[i]
	}
	return out
}

// AddRow adds a 1-D tensor to every row of a 2-D tensor.
//
// Input shapes: t [rows, cols], row [cols]. This is the bias broadcast used
// by Linear and the normalization layers.
func (t *Tensor) AddRow(row *Tensor) *Tensor {
	if len(t.shape) != 2 || len(row.shape) != 1 || t.shape[1] != row.shape[0] {
		panic(fmt.Sprintf("AddRow: incompatible shapes %v and %v", t.shape, row.shape))
	}
	rows, cols := t.shape[0], t.shape[1]
	out := New(t.shape)
	for r := 0; r < rows; r++ {
		base := r * cols
		for c := 0; c < cols; c++ {
			out.data[base+c] = t.data[base+c] + row.data[c]
		}
	}
	return out
}

// MulRow multiplies every row of a 2-D tensor by a 1-D tensor.
func (t *Tensor) MulRow(row *Tensor) *Tensor {
	if len(t.shape) != 2 || len(row.shape) != 1 || t.shape[1] != row.shape[0] {
		panic(fmt.Sprintf("MulRow: incompatible shapes %v and %v", t.shape, row.shape))
	}
	rows, cols := t.shape[0], t.shape[1]
	out := New(t.shape)
	for r := 0; r < rows; r++ {
		base := r * cols
		for c := 0; c < cols; c++ {
			out.data[base+c] = t.data[base+c] * row.data[c]
		}
	}
	return out
}

// Scale returns t * s.
func (t *Tensor) Scale(s float32) *Tensor {
	out := New(t.shape)
	for i := range t.data {
		out.data[i] = t.data[i] * s
	}
	return out
}

// AddScalar returns t + s element-wise.
func (t *Tensor) AddScalar(s float32) *Tensor {
	out := New(t.shape)
	for i := range t.data {
		out.data[i] = t.data[i] + s
	}
	return out
}

// Neg returns -t.
func (t *Tensor) Neg() *Tensor {
	return t.Scale(-1)
}

// ApplyFunc returns a new tensor with fn applied to every element.
func (t *Tensor) ApplyFunc(fn func(float32) float32) *Tensor {
	out := New(t.shape)
	for i := range t.data {
		out.data[i] = fn(t.data[i])
	}
	return out
}

// AddInPlace accumulates other into t. Used for gradient accumulation.
func (t *Tensor) AddInPlace(other *Tensor) {
	checkSameShape("AddInPlace", t, other)
	for i := range t.data {
		t.data[i] += other.data[i]
	}
}
