// Copyright 2025 Grove ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers built on the module system.
//
// # Overview
//
// This package contains:
//   - Layers: Linear, MLP, EmbedBag
//   - Activations: ReLU, Sigmoid, Tanh
//   - Stateful modules: EMA, BatchNorm
//   - Loss functions: MSE, SoftmaxCrossEntropy
//   - Initializers: Zeros, Ones, Constant, RandomNormal, TruncatedNormal, XavierUniform
//
// Layers are plain structs configured by their fields; they hold no tensors.
// Calling Forward inside a transformed function declares the layer's
// parameters through the scope, so two layers sharing a scope name share
// weights.
//
// # Basic Usage
//
//	fwd := grove.Transform(func(s *grove.Scope, x *tensor.Tensor) *tensor.Tensor {
//	    return nn.MLP{Widths: []int{128, 10}}.Forward(s.Enter("mlp"), x)
//	})
//	p, st := fwd.Init(1, sample)
//	logits, _ := fwd.Apply(p, st, batch)
package nn
