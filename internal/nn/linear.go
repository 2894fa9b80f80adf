package nn

import (
	"fmt"

	"github.com/grove-ml/grove/internal/module"
	"github.com/grove-ml/grove/internal/tensor"
)

// Linear is a fully connected layer: y = x @ W.T + b.
//
// Shapes:
//   - x: [batch, in]
//   - w: [out, in] (parameter "w", Xavier uniform by default)
//   - b: [out]     (parameter "b", zeros; omitted when NoBias is set)
//   - y: [batch, out]
//
// In may be left zero, in which case it is inferred from the input on first
// use (the inferred value is then fixed by the parameter shapes in the tree).
//
// Example:
//
//	y := nn.Linear{Out: 128}.Forward(s.Enter("linear_0"), x)
type Linear struct {
	In     int
	Out    int
	NoBias bool

	// WInit and BInit override the default initializers when non-nil.
	WInit module.Initializer
	BInit module.Initializer
}

// Forward computes the affine transform and, while the scope is recording,
// pushes the exact backward step for it.
func (l Linear) Forward(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Linear: expected 2-D input [batch, features], got %v", shape))
	}
	in := l.In
	if in == 0 {
		in = shape[1]
	}
	if shape[1] != in {
		panic(fmt.Sprintf("Linear: expected input with %d features, got %d", in, shape[1]))
	}
	if l.Out <= 0 {
		panic("Linear: Out must be positive")
	}

	wInit := l.WInit
	if wInit == nil {
		wInit = XavierUniform(in, l.Out)
	}
	w := s.Parameter("w", tensor.Shape{l.Out, in}, wInit)

	y := x.MatMul(w.Transpose())

	var b *tensor.Tensor
	if !l.NoBias {
		bInit := l.BInit
		if bInit == nil {
			bInit = Zeros
		}
		b = s.Parameter("b", tensor.Shape{l.Out}, bInit)
		y = y.AddRow(b)
	}

	if s.Recording() {
		wName := s.FullName("w")
		bName := s.FullName("b")
		xCache := x
		noBias := l.NoBias
		s.PushBackward(func(up *tensor.Tensor) (*tensor.Tensor, map[string]*tensor.Tensor) {
			// y = x W^T + b:
			//   dx = up @ W, dW = up^T @ x, db = sum_rows(up)
			grads := map[string]*tensor.Tensor{
				wName: up.Transpose().MatMul(xCache),
			}
			if !noBias {
				grads[bName] = up.SumAxis0()
			}
			return up.MatMul(w), grads
		})
	}

	return y
}
