// Copyright 2025 Grove ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package grove provides the public API for the module transform system.
//
// Grove separates a network's structure from its numbers: a module function
// declares parameters and state through a Scope, and Transform turns it into
// a pure (Init, Apply) pair operating on explicit parameter trees.
//
// Example:
//
//	fwd := grove.Transform(func(s *grove.Scope, x *tensor.Tensor) *tensor.Tensor {
//	    h := nn.Linear{Out: 32}.Forward(s.Enter("hidden"), x)
//	    h = nn.ReLU{}.Forward(s, h)
//	    return nn.Linear{Out: 1}.Forward(s.Enter("out"), h)
//	})
//	p, st := fwd.Init(42, sample)
//	y, st2 := fwd.Apply(p, st, batch)
package grove

import (
	"github.com/grove-ml/grove/internal/module"
	"github.com/grove-ml/grove/internal/params"
	"github.com/grove-ml/grove/internal/tensor"
)

// Scope names parameters and state during a module function's execution.
// Scopes nest via Enter; full names join the path with slashes.
type Scope = module.Scope

// Fn is a module function: a computation over an input tensor that declares
// its parameters and state through the scope.
type Fn = module.Fn

// Transformed is the pure (Init, Apply) pair produced by Transform.
type Transformed = module.Transformed

// Initializer produces a parameter's initial value from its shape and the
// transform's seeded RNG.
type Initializer = module.Initializer

// BackwardStep propagates an upstream gradient through one recorded layer.
type BackwardStep = module.BackwardStep

// Transform turns a module function into a pure (Init, Apply) pair.
func Transform(f Fn) Transformed {
	return module.Transform(f)
}

// ValueAndGrad turns a module function returning a scalar loss into a
// function that also returns gradients for every participating parameter.
//
// Example:
//
//	lossFn := grove.ValueAndGrad(func(s *grove.Scope, x *tensor.Tensor) *tensor.Tensor {
//	    pred := model(s, x)
//	    return nn.MSE(s, pred, target)
//	})
//	loss, grads, st2 := lossFn(p, st, batch)
func ValueAndGrad(f Fn) func(p, st params.Tree, x *tensor.Tensor) (float32, params.Tree, params.Tree) {
	return module.ValueAndGrad(f)
}
