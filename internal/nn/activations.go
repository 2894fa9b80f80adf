package nn

import (
	"math"

	"github.com/grove-ml/grove/internal/module"
	"github.com/grove-ml/grove/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
type ReLU struct{}

// Forward applies the activation.
func (ReLU) Forward(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
	y := x.ApplyFunc(func(v float32) float32 {
		if v > 0 {
			return v
		}
		return 0
	})
	if s.Recording() {
		xCache := x
		s.PushBackward(func(up *tensor.Tensor) (*tensor.Tensor, map[string]*tensor.Tensor) {
			down := tensor.New(up.Shape())
			upData, xData, downData := up.Data(), xCache.Data(), down.Data()
			for i := range upData {
				if xData[i] > 0 {
					downData[i] = upData[i]
				}
			}
			return down, nil
		})
	}
	return y
}

// Sigmoid applies 1/(1+e^-x) element-wise.
type Sigmoid struct{}

// Forward applies the activation.
func (Sigmoid) Forward(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
	y := x.ApplyFunc(func(v float32) float32 {
		return float32(1.0 / (1.0 + math.Exp(-float64(v))))
	})
	if s.Recording() {
		yCache := y
		s.PushBackward(func(up *tensor.Tensor) (*tensor.Tensor, map[string]*tensor.Tensor) {
			// dσ/dx = σ(1-σ)
			down := tensor.New(up.Shape())
			upData, yData, downData := up.Data(), yCache.Data(), down.Data()
			for i := range upData {
				downData[i] = upData[i] * yData[i] * (1 - yData[i])
			}
			return down, nil
		})
	}
	return y
}

// Tanh applies the hyperbolic tangent element-wise.
type Tanh struct{}

// Forward applies the activation.
func (Tanh) Forward(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
	y := x.ApplyFunc(func(v float32) float32 {
		return float32(math.Tanh(float64(v)))
	})
	if s.Recording() {
		yCache := y
		s.PushBackward(func(up *tensor.Tensor) (*tensor.Tensor, map[string]*tensor.Tensor) {
			// dtanh/dx = 1 - tanh²
			down := tensor.New(up.Shape())
			upData, yData, downData := up.Data(), yCache.Data(), down.Data()
			for i := range upData {
				downData[i] = upData[i] * (1 - yData[i]*yData[i])
			}
			return down, nil
		})
	}
	return y
}
