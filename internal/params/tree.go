// Package params implements the named parameter trees at the heart of Grove.
//
// A Tree maps slash-scoped full names (e.g. "mlp/linear_0/w") to tensors.
// Parameter trees and state trees share this representation: a state tree is
// simply a tree of non-trainable arrays (running statistics, counters).
//
// Trees are plain data. Modules never hold parameters; they fetch them from
// a tree by name on every call. This is what makes weight sharing, selective
// optimization, and serialization trivial: they are all tree operations.
package params

import (
	"fmt"
	"sort"
	"strings"

	"github.com/grove-ml/grove/internal/tensor"
)

// Tree maps full parameter names to tensors.
type Tree map[string]*tensor.Tensor

// New returns an empty tree.
func New() Tree {
	return make(Tree)
}

// Names returns all full names in the tree, sorted.
func (t Tree) Names() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the tensor stored under the full name, or an error if absent.
func (t Tree) Get(name string) (*tensor.Tensor, error) {
	v, ok := t[name]
	if !ok {
		return nil, fmt.Errorf("parameter %q not found in tree", name)
	}
	return v, nil
}

// Has reports whether the tree contains the full name.
func (t Tree) Has(name string) bool {
	_, ok := t[name]
	return ok
}

// Set stores a tensor under the full name, replacing any existing entry.
func (t Tree) Set(name string, v *tensor.Tensor) {
	t[name] = v
}

// Clone returns a deep copy of the tree (names and tensor data).
func (t Tree) Clone() Tree {
	c := make(Tree, len(t))
	for name, v := range t {
		c[name] = v.Clone()
	}
	return c
}

// Merge returns a new tree containing all entries of t overlaid with all
// entries of other. Entries of other win on name collisions. Tensors are
// shared, not copied.
func (t Tree) Merge(other Tree) Tree {
	m := make(Tree, len(t)+len(other))
	for name, v := range t {
		m[name] = v
	}
	for name, v := range other {
		m[name] = v
	}
	return m
}

// Filter returns a new tree with the entries whose name satisfies pred.
// Tensors are shared, not copied.
func (t Tree) Filter(pred func(name string) bool) Tree {
	f := make(Tree)
	for name, v := range t {
		if pred(name) {
			f[name] = v
		}
	}
	return f
}

// Partition splits the tree into (match, rest) by predicate. Tensors are
// shared, not copied.
//
// This is the mechanism behind selective per-parameter optimization: partition
// the parameter tree, compute gradients as usual, and step the optimizer on
// the matching subset only.
func (t Tree) Partition(pred func(name string) bool) (match, rest Tree) {
	match, rest = make(Tree), make(Tree)
	for name, v := range t {
		if pred(name) {
			match[name] = v
		} else {
			rest[name] = v
		}
	}
	return match, rest
}

// Map returns a new tree with fn applied to every tensor.
func (t Tree) Map(fn func(name string, v *tensor.Tensor) *tensor.Tensor) Tree {
	m := make(Tree, len(t))
	for name, v := range t {
		m[name] = fn(name, v)
	}
	return m
}

// NumTensors returns the number of entries in the tree.
func (t Tree) NumTensors() int {
	return len(t)
}

// NumElements returns the total element count across all tensors.
func (t Tree) NumElements() int {
	n := 0
	for _, v := range t {
		n += v.NumElements()
	}
	return n
}

// Equal reports whether two trees have identical names and bit-identical data.
func (t Tree) Equal(other Tree) bool {
	if len(t) != len(other) {
		return false
	}
	for name, v := range t {
		o, ok := other[name]
		if !ok || !v.Equal(o) {
			return false
		}
	}
	return true
}

// AllClose reports whether two trees have identical names and element-wise
// values within tol.
func (t Tree) AllClose(other Tree, tol float32) bool {
	if len(t) != len(other) {
		return false
	}
	for name, v := range t {
		o, ok := other[name]
		if !ok || !v.AllClose(o, tol) {
			return false
		}
	}
	return true
}

// ByModule groups entries by their module prefix (everything before the last
// slash). Entries without a slash group under "".
func (t Tree) ByModule() map[string]Tree {
	groups := make(map[string]Tree)
	for name, v := range t {
		module := ""
		if i := strings.LastIndex(name, "/"); i >= 0 {
			module = name[:i]
		}
		g, ok := groups[module]
		if !ok {
			g = make(Tree)
			groups[module] = g
		}
		g[name] = v
	}
	return groups
}

// String renders the tree as one "name: shape" line per entry, sorted by name.
func (t Tree) String() string {
	var b strings.Builder
	for _, name := range t.Names() {
		fmt.Fprintf(&b, "%s: %v\n", name, t[name].Shape())
	}
	return b.String()
}

// HasPrefix returns a predicate matching names under the given scope prefix.
// The prefix matches whole scope segments: HasPrefix("mlp") matches
// "mlp/linear_0/w" but not "mlp2/w".
func HasPrefix(prefix string) func(string) bool {
	return func(name string) bool {
		return name == prefix || strings.HasPrefix(name, prefix+"/")
	}
}
