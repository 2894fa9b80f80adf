package nn

import (
	"fmt"

	"github.com/grove-ml/grove/internal/module"
	"github.com/grove-ml/grove/internal/tensor"
)

// MLP is a multi-layer perceptron: a stack of Linear layers with an
// activation between them.
//
// Widths lists the output size of every layer; input sizes are inferred.
// Child layers are scoped "linear_0" ... "linear_N-1", so an MLP under scope
// "mlp" owns parameters such as "mlp/linear_0/w".
//
// Example:
//
//	net := nn.MLP{Widths: []int{128, 128, 10}}
//	logits := net.Forward(s.Enter("mlp"), batch)
type MLP struct {
	Widths []int

	// Activation is applied between layers (and after the last layer when
	// ActivateFinal is set). Defaults to ReLU.
	Activation    Module
	ActivateFinal bool
}

// Forward applies every layer in order.
func (m MLP) Forward(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
	if len(m.Widths) == 0 {
		panic("MLP: Widths must not be empty")
	}
	act := m.Activation
	if act == nil {
		act = ReLU{}
	}

	for i, out := range m.Widths {
		x = Linear{Out: out}.Forward(s.Enter(fmt.Sprintf("linear_%d", i)), x)
		if i < len(m.Widths)-1 || m.ActivateFinal {
			x = act.Forward(s, x)
		}
	}
	return x
}
