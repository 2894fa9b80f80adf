// Copyright 2025 Grove ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package params provides the public API for Grove's parameter trees.
//
// A Tree is a flat map from slash-scoped names ("mlp/linear_0/w") to tensors.
// Trees are plain data: they carry no behavior beyond structural helpers, so
// they can be inspected, filtered, partitioned, and serialized freely.
//
// Example:
//
//	trainable, frozen := p.Partition(params.HasPrefix("mlp/linear_2"))
package params

import (
	"github.com/grove-ml/grove/internal/params"
)

// Tree is a flat map from scoped names to tensors.
type Tree = params.Tree

// New returns an empty tree.
func New() Tree {
	return params.New()
}

// HasPrefix returns a predicate for Filter and Partition that matches names
// under the given scope prefix. Matching is per path segment, so "mlp/linear"
// does not match "mlp/linear_0/w".
func HasPrefix(prefix string) func(string) bool {
	return params.HasPrefix(prefix)
}
