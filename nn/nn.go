// Copyright 2025 Grove ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/grove-ml/grove/internal/module"
	"github.com/grove-ml/grove/internal/nn"
	"github.com/grove-ml/grove/internal/tensor"
)

// Module is anything with a scope-aware forward pass.
type Module = nn.Module

// Layers

// Linear is a fully connected layer: y = x@Wᵀ + b.
// The input width is inferred from the first input when In is zero.
type Linear = nn.Linear

// MLP is a stack of Linear layers with activations between them.
type MLP = nn.MLP

// EmbedBag looks up token embeddings and mean-pools them per row.
// Negative ids are treated as padding.
type EmbedBag = nn.EmbedBag

// Activations

// ReLU applies max(0, x) elementwise.
type ReLU = nn.ReLU

// Sigmoid applies 1/(1+e^-x) elementwise.
type Sigmoid = nn.Sigmoid

// Tanh applies tanh(x) elementwise.
type Tanh = nn.Tanh

// Stateful modules

// EMA maintains a zero-debiased exponential moving average in module state.
type EMA = nn.EMA

// BatchNorm normalizes activations per feature, tracking running statistics
// through nested EMA state.
type BatchNorm = nn.BatchNorm

// Losses

// MSE computes the mean squared error between pred and target as a scalar.
func MSE(s *module.Scope, pred, target *tensor.Tensor) *tensor.Tensor {
	return nn.MSE(s, pred, target)
}

// SoftmaxCrossEntropy computes softmax cross-entropy between logits and
// integer labels as a scalar.
func SoftmaxCrossEntropy(s *module.Scope, logits, labels *tensor.Tensor) *tensor.Tensor {
	return nn.SoftmaxCrossEntropy(s, logits, labels)
}
