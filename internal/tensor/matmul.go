package tensor

import (
	"fmt"

	"github.com/grove-ml/grove/internal/parallel"
)

// matmulParallel controls row parallelism for MatMul. Output rows are
// independent, so they split across cores without synchronization.
var matmulParallel = parallel.Default()

// MatMul performs 2-D matrix multiplication.
//
// Shapes: t [m, k] @ other [k, n] -> [m, n].
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	if len(t.shape) != 2 || len(other.shape) != 2 {
		panic(fmt.Sprintf("MatMul: expected 2-D tensors, got %v and %v", t.shape, other.shape))
	}
	m, k := t.shape[0], t.shape[1]
	k2, n := other.shape[0], other.shape[1]
	if k != k2 {
		panic(fmt.Sprintf("MatMul: inner dimension mismatch %v @ %v", t.shape, other.shape))
	}

	out := New(Shape{m, n})
	// ikj loop order keeps the inner loop sequential over both b and out.
	parallel.Rows(m, matmulParallel, func(i int) {
		aRow := t.data[i*k : (i+1)*k]
		outRow := out.data[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			a := aRow[p]
			if a == 0 {
				continue
			}
			bRow := other.data[p*n : (p+1)*n]
			for j := 0; j < n; j++ {
				outRow[j] += a * bRow[j]
			}
		}
	})
	return out
}

// Transpose returns the transpose of a 2-D tensor.
func (t *Tensor) Transpose() *Tensor {
	if len(t.shape) != 2 {
		panic(fmt.Sprintf("Transpose: expected 2-D tensor, got %v", t.shape))
	}
	rows, cols := t.shape[0], t.shape[1]
	out := New(Shape{cols, rows})
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			out.data[c*rows+r] = t.data[r*cols+c]
		}
	}
	return out
}
