package module

import (
	"fmt"

	"github.com/grove-ml/grove/internal/params"
	"github.com/grove-ml/grove/internal/tensor"
)

// BackwardStep propagates an upstream gradient through one recorded layer.
//
// It returns the gradient with respect to the layer's input and, for layers
// with parameters, the gradients with respect to those parameters keyed by
// full name. Layers without parameters return a nil map.
type BackwardStep func(upstream *tensor.Tensor) (downstream *tensor.Tensor, paramGrads map[string]*tensor.Tensor)

// trace records one backward step per layer, in forward execution order.
//
// Grove deliberately stops short of operator-level automatic differentiation:
// each layer contributes a single analytic backward step, and steps compose
// in strict reverse order. This covers the sequential models the library
// ships; it is not a general computation-graph engine.
type trace struct {
	steps []BackwardStep
}

// Recording reports whether the current call records backward steps.
//
// Layers skip the bookkeeping (caching activations, building closures)
// entirely on plain Apply and Init calls.
func (s *Scope) Recording() bool {
	return s.ctx.trace != nil
}

// PushBackward records one backward step for the current layer.
//
// Layers call this once per Forward while Recording; steps must be pushed in
// forward execution order.
func (s *Scope) PushBackward(step BackwardStep) {
	if s.ctx.trace == nil {
		return
	}
	s.ctx.trace.steps = append(s.ctx.trace.steps, step)
}

// NoGrad returns a scope that never records backward steps.
//
// Layers use it for side computations that feed the state collection but not
// the differentiable output, such as running-statistics updates: recording a
// step for those would splice a spurious factor into the backward chain.
// Parameters and state remain shared with the parent scope.
func (s *Scope) NoGrad() *Scope {
	if s.ctx.trace == nil {
		return s
	}
	ctx := *s.ctx
	ctx.trace = nil
	return &Scope{path: s.path, ctx: &ctx}
}

// ValueAndGrad turns a module function that computes a scalar loss into a
// function that additionally returns the gradient tree.
//
// The returned function evaluates f via Apply while recording one backward
// step per layer, then walks the steps in reverse to accumulate parameter
// gradients. The gradient tree contains exactly the parameters that
// participated in the computation (a partitioned tree trains a subset;
// everything else simply receives no gradient). Parameters used more than
// once - shared weights - accumulate their gradients by summation.
//
// f must produce a scalar (a one-element tensor); anything else panics, since
// gradients of non-scalar outputs are undefined here.
func ValueAndGrad(f Fn) func(p, st params.Tree, x *tensor.Tensor) (float32, params.Tree, params.Tree) {
	return func(p, st params.Tree, x *tensor.Tensor) (float32, params.Tree, params.Tree) {
		ctx := &runContext{
			mode:   modeApply,
			params: p,
			state:  cloneOrEmpty(st),
			trace:  &trace{},
		}
		out := f(&Scope{ctx: ctx}, x)
		if out.NumElements() != 1 {
			panic(fmt.Sprintf("module: ValueAndGrad requires a scalar loss, got shape %v", out.Shape()))
		}

		grads := params.New()
		upstream := tensor.Ones(out.Shape())
		steps := ctx.trace.steps
		for i := len(steps) - 1; i >= 0; i-- {
			var paramGrads map[string]*tensor.Tensor
			upstream, paramGrads = steps[i](upstream)
			for name, g := range paramGrads {
				if existing, ok := grads[name]; ok {
					existing.AddInPlace(g)
				} else {
					grads[name] = g
				}
			}
		}

		return out.Data()[0], grads, ctx.state
	}
}
