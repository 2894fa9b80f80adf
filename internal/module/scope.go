// Package module implements parameter scoping and the init/apply transform.
//
// A module in Grove is any function that takes a *Scope and tensors. Inside
// the function, Scope.Parameter declares named parameters and Scope.GetState /
// Scope.SetState address the mutable state collection (running statistics and
// the like). Transform turns such a function into a pure (Init, Apply) pair:
// Init builds the parameter and state trees, Apply consumes them without
// mutation and returns the updated state alongside the output.
//
// Full names are slash-joined scope paths: a parameter "w" declared inside
// Enter("mlp").Enter("linear_0") gets the full name "mlp/linear_0/w".
// Declaring the same full name twice yields the same tensor - that is all
// weight sharing is.
package module

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/grove-ml/grove/internal/params"
	"github.com/grove-ml/grove/internal/tensor"
)

// Initializer produces an initialized tensor of the given shape.
// Implementations live in the nn package (Zeros, XavierUniform, ...).
type Initializer func(shape tensor.Shape, rng *rand.Rand) *tensor.Tensor

type mode int

const (
	modeInit mode = iota
	modeApply
)

// runContext is the per-Init/per-Apply execution state shared by all scopes
// of one call.
type runContext struct {
	mode   mode
	rng    *rand.Rand // non-nil only during Init
	params params.Tree
	state  params.Tree
	trace  *trace // non-nil only under ValueAndGrad
}

// Scope is a position in the module name hierarchy.
//
// Scopes are cheap values: Enter returns a child scope sharing the same run
// context. A Scope is only valid for the duration of the Init/Apply call that
// created it.
type Scope struct {
	path string // "" at root, "mlp/linear_0" nested
	ctx  *runContext
}

// Enter returns a child scope named name.
//
// Panics if name is empty or contains a slash; scope segments are single
// path components.
func (s *Scope) Enter(name string) *Scope {
	validateName("Enter", name)
	child := &Scope{ctx: s.ctx}
	if s.path == "" {
		child.path = name
	} else {
		child.path = s.path + "/" + name
	}
	return child
}

// FullName returns the full slash-scoped name of a parameter or state entry
// declared as name in this scope.
func (s *Scope) FullName(name string) string {
	if s.path == "" {
		return name
	}
	return s.path + "/" + name
}

// Parameter declares (or retrieves) the named parameter in this scope.
//
// During Init, the first declaration creates the tensor with init; later
// declarations of the same full name return the existing tensor, which is how
// modules share weights. During Apply, the parameter is looked up in the tree
// passed to Apply; a missing name panics with the full name, since calling a
// model with a parameter tree it was not initialized for is a programmer
// error.
//
// The returned tensor must not be mutated by module code; Apply treats the
// parameter tree as immutable input.
func (s *Scope) Parameter(name string, shape tensor.Shape, init Initializer) *tensor.Tensor {
	validateName("Parameter", name)
	full := s.FullName(name)

	if existing, ok := s.ctx.params[full]; ok {
		if !existing.Shape().Equal(shape) {
			panic(fmt.Sprintf("module: parameter %q redeclared with shape %v, have %v",
				full, shape, existing.Shape()))
		}
		return existing
	}

	if s.ctx.mode == modeApply {
		panic(fmt.Sprintf("module: parameter %q not found in parameter tree (was the model initialized with a different structure?)", full))
	}
	if init == nil {
		panic(fmt.Sprintf("module: parameter %q declared without an initializer", full))
	}

	t := init(shape, s.ctx.rng)
	if !t.Shape().Equal(shape) {
		panic(fmt.Sprintf("module: initializer for %q produced shape %v, want %v",
			full, t.Shape(), shape))
	}
	s.ctx.params[full] = t
	return t
}

// GetState retrieves the named state entry, creating it with init on first
// use during Init.
//
// During Apply, the entry must exist in the state tree returned by Init;
// missing state panics with the full name. The returned tensor is owned by
// the current call's state tree and may be replaced via SetState.
func (s *Scope) GetState(name string, shape tensor.Shape, init Initializer) *tensor.Tensor {
	validateName("GetState", name)
	full := s.FullName(name)

	if existing, ok := s.ctx.state[full]; ok {
		if !existing.Shape().Equal(shape) {
			panic(fmt.Sprintf("module: state %q requested with shape %v, have %v",
				full, shape, existing.Shape()))
		}
		return existing
	}

	if s.ctx.mode == modeApply {
		panic(fmt.Sprintf("module: state %q not found in state tree", full))
	}
	if init == nil {
		panic(fmt.Sprintf("module: state %q declared without an initializer", full))
	}

	t := init(shape, s.ctx.rng)
	s.ctx.state[full] = t
	return t
}

// SetState stores a new value for the named state entry in this scope.
//
// The updated value is visible to later GetState calls within the same
// Init/Apply and is returned to the caller in the output state tree. The
// state tree passed into Apply is never mutated.
func (s *Scope) SetState(name string, v *tensor.Tensor) {
	validateName("SetState", name)
	s.ctx.state[s.FullName(name)] = v
}

// Initializing reports whether the scope is executing under Init.
//
// Stateful layers branch on this: BatchNorm, for example, must not advance
// running statistics while shapes are still being discovered.
func (s *Scope) Initializing() bool {
	return s.ctx.mode == modeInit
}

func validateName(op, name string) {
	if name == "" {
		panic(fmt.Sprintf("module: %s with empty name", op))
	}
	if strings.Contains(name, "/") {
		panic(fmt.Sprintf("module: %s name %q must not contain '/'", op, name))
	}
}
