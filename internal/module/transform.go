package module

import (
	"math/rand"

	"github.com/grove-ml/grove/internal/params"
	"github.com/grove-ml/grove/internal/tensor"
)

// Fn is a module function: a computation over an input tensor that declares
// its parameters and state through the scope.
type Fn func(s *Scope, x *tensor.Tensor) *tensor.Tensor

// Transformed is the pure (Init, Apply) pair produced by Transform.
type Transformed struct {
	f Fn
}

// Transform turns a module function into a Transformed pair.
//
// Example:
//
//	fwd := module.Transform(func(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
//	    return nn.Linear{In: 4, Out: 2}.Forward(s.Enter("linear"), x)
//	})
//	p, st := fwd.Init(42, sample)
//	y, st2 := fwd.Apply(p, st, batch)
func Transform(f Fn) Transformed {
	return Transformed{f: f}
}

// Init runs the module function in creation mode against a seeded RNG and a
// sample input, returning the parameter and state trees it declared.
//
// Init is deterministic for a fixed seed and sample shape. The sample input
// only drives shape discovery; its values do not influence initialization.
func (t Transformed) Init(seed int64, x *tensor.Tensor) (params.Tree, params.Tree) {
	ctx := &runContext{
		mode:   modeInit,
		rng:    rand.New(rand.NewSource(seed)),
		params: params.New(),
		state:  params.New(),
	}
	t.f(&Scope{ctx: ctx}, x)
	return ctx.params, ctx.state
}

// Apply runs the module function against existing parameter and state trees.
//
// Apply is pure with respect to its inputs: the parameter tree is read-only
// and the state tree is deep-copied before execution, so callers observe
// state changes only through the returned tree. A nil state tree is treated
// as empty.
func (t Transformed) Apply(p, st params.Tree, x *tensor.Tensor) (*tensor.Tensor, params.Tree) {
	ctx := &runContext{
		mode:   modeApply,
		params: p,
		state:  cloneOrEmpty(st),
	}
	out := t.f(&Scope{ctx: ctx}, x)
	return out, ctx.state
}

func cloneOrEmpty(st params.Tree) params.Tree {
	if st == nil {
		return params.New()
	}
	return st.Clone()
}
