// Package nn implements neural network layers for the Grove parameter-management library.
//
// This package provides building blocks for constructing networks on top of
// the module scoping API:
//   - Module interface: anything with a scoped forward pass
//   - Linear: fully connected layer
//   - MLP: multi-layer perceptron
//   - EmbedBag: embedding lookup with mean pooling
//   - BatchNorm: batch normalization backed by running statistics
//   - EMA: exponential moving average over an arbitrary tensor
//   - Activations: ReLU, Sigmoid, Tanh
//   - Losses: MSE, SoftmaxCrossEntropy
//   - Initializers: Zeros, Ones, Constant, RandomNormal, TruncatedNormal, XavierUniform
//
// Layers are plain values; all of their parameters and state live in the
// trees managed by the module package, addressed by scope name. Constructing
// a layer allocates nothing.
package nn

import (
	"github.com/grove-ml/grove/internal/module"
	"github.com/grove-ml/grove/internal/tensor"
)

// Module is the interface implemented by all layers.
//
// Forward computes the layer's output for the given input, declaring
// parameters and state through the scope. Layers that support training
// additionally record one backward step on the scope while it is recording.
type Module interface {
	Forward(s *module.Scope, x *tensor.Tensor) *tensor.Tensor
}
