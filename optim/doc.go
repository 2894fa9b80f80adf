// Copyright 2025 Grove ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimizers operating on parameter trees.
//
// Optimizers update exactly the parameters named in the gradient tree, so
// selective optimization falls out of tree partitioning: pass gradients for
// a subtree and only that subtree moves. Optimizer buffers round-trip
// through StateDict/LoadStateDict for resumable checkpoints.
package optim
