// Package optim implements gradient-descent optimizers over parameter trees.
//
// This package provides:
//   - Optimizer interface: the common update contract
//   - SGD: stochastic gradient descent with optional momentum
//   - Adam: adaptive moment estimation
//
// Optimizers update parameters in place, driven by a gradient tree whose
// names mirror the parameter tree. Only names present in the gradient tree
// are touched: to optimize a subset of a model (fine-tuning a head, freezing
// a trunk), partition the parameter tree and compute gradients for the
// partition - the optimizer never sees the frozen names.
//
// Example:
//
//	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
//	lossAndGrad := module.ValueAndGrad(lossFn)
//	for step := 0; step < steps; step++ {
//	    loss, grads, _ := lossAndGrad(p, st, batch)
//	    if err := opt.Step(p, grads); err != nil {
//	        return err
//	    }
//	}
package optim

import (
	"fmt"

	"github.com/grove-ml/grove/internal/params"
	"github.com/grove-ml/grove/internal/tensor"
)

// Optimizer is the interface implemented by all optimization algorithms.
type Optimizer interface {
	// Step applies one update to every parameter named in grads.
	// A gradient whose name is missing from p, or whose shape disagrees
	// with its parameter, is an error and leaves p partially updated.
	Step(p, grads params.Tree) error

	// LR returns the current learning rate.
	LR() float32

	// SetLR updates the learning rate (for schedules).
	SetLR(lr float32)

	// Type returns the algorithm name recorded in checkpoints ("SGD", "Adam").
	Type() string

	// StateDict exports the optimizer's internal buffers (momentum,
	// moment estimates) as a tree for checkpointing.
	StateDict() params.Tree

	// LoadStateDict restores buffers exported by StateDict.
	LoadStateDict(state params.Tree) error
}

// lookup resolves one gradient against the parameter tree, validating shapes.
func lookup(p params.Tree, name string, grad *tensor.Tensor) (*tensor.Tensor, error) {
	param, ok := p[name]
	if !ok {
		return nil, fmt.Errorf("gradient for unknown parameter %q", name)
	}
	if !param.Shape().Equal(grad.Shape()) {
		return nil, fmt.Errorf("gradient shape mismatch for %q: parameter %v, gradient %v",
			name, param.Shape(), grad.Shape())
	}
	return param, nil
}
