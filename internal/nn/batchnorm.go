package nn

import (
	"fmt"
	"math"

	"github.com/grove-ml/grove/internal/module"
	"github.com/grove-ml/grove/internal/tensor"
)

// BatchNorm normalizes a [batch, features] tensor per feature column:
//
//	y = scale · (x − μ) / sqrt(σ² + eps) + offset
//
// In training mode μ and σ² are the batch statistics, and running estimates
// of both are folded into the state collection through zero-debiased
// exponential moving averages (scoped "mean_ema" and "var_ema"). In
// evaluation mode the running estimates are used and the state is left
// untouched. During Init the layer creates its parameters and state but does
// not advance the running statistics.
//
// Parameters: "scale" (ones) and "offset" (zeros), both shape [features].
type BatchNorm struct {
	// Training selects batch statistics + running-average updates; when
	// false, the layer normalizes with the stored running statistics.
	Training bool

	// Decay of the running-average EMAs. Defaults to 0.99.
	Decay float32

	// Eps is the variance floor. Defaults to 1e-5.
	Eps float32
}

// Forward normalizes x and, while the scope is recording, pushes the exact
// backward step (through the batch statistics in training mode).
func (b BatchNorm) Forward(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("BatchNorm: expected 2-D input [batch, features], got %v", shape))
	}
	rows, cols := shape[0], shape[1]

	decay := b.Decay
	if decay == 0 {
		decay = 0.99
	}
	eps := b.Eps
	if eps == 0 {
		eps = 1e-5
	}

	scale := s.Parameter("scale", tensor.Shape{cols}, Ones)
	offset := s.Parameter("offset", tensor.Shape{cols}, Zeros)

	meanEMA := EMA{Decay: decay}
	varEMA := EMA{Decay: decay}
	featShape := tensor.Shape{cols}

	var mean, variance *tensor.Tensor
	useBatchStats := b.Training || s.Initializing()
	if useBatchStats {
		mean = x.MeanAxis0()
		variance = x.VarAxis0()
		// Advances only under Apply; Update is a pass-through during Init.
		// The running averages feed eval mode, not this output, so their
		// updates stay off the backward trace.
		meanEMA.Update(s.Enter("mean_ema").NoGrad(), mean)
		varEMA.Update(s.Enter("var_ema").NoGrad(), variance)
	} else {
		mean = meanEMA.Average(s.Enter("mean_ema"), featShape)
		variance = varEMA.Average(s.Enter("var_ema"), featShape)
	}

	invStd := variance.ApplyFunc(func(v float32) float32 {
		return float32(1.0 / math.Sqrt(float64(v)+float64(eps)))
	})

	xhat := x.AddRow(mean.Neg()).MulRow(invStd)
	y := xhat.MulRow(scale).AddRow(offset)

	if s.Recording() {
		scaleName := s.FullName("scale")
		offsetName := s.FullName("offset")
		s.PushBackward(func(up *tensor.Tensor) (*tensor.Tensor, map[string]*tensor.Tensor) {
			grads := map[string]*tensor.Tensor{
				scaleName:  up.Mul(xhat).SumAxis0(),
				offsetName: up.SumAxis0(),
			}

			dxhat := up.MulRow(scale)
			if !useBatchStats {
				// Running statistics are constants in eval mode.
				return dxhat.MulRow(invStd), grads
			}

			// Backward through batch mean and variance, per column:
			//   dx = invStd/N · (N·dxhat − Σdxhat − xhat·Σ(dxhat·xhat))
			sumD := dxhat.SumAxis0()
			sumDX := dxhat.Mul(xhat).SumAxis0()
			n := float32(rows)

			down := tensor.New(x.Shape())
			dData, dxhatData, xhatData := down.Data(), dxhat.Data(), xhat.Data()
			sumDData, sumDXData, invStdData := sumD.Data(), sumDX.Data(), invStd.Data()
			for r := 0; r < rows; r++ {
				base := r * cols
				for c := 0; c < cols; c++ {
					i := base + c
					dData[i] = invStdData[c] / n *
						(n*dxhatData[i] - sumDData[c] - xhatData[i]*sumDXData[c])
				}
			}
			return down, grads
		})
	}

	return y
}
