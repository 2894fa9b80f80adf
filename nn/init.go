// Copyright 2025 Grove ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/grove-ml/grove/internal/module"
	"github.com/grove-ml/grove/internal/nn"
	"github.com/grove-ml/grove/internal/tensor"
)

// Initializers

// Zeros initializes a tensor with zeros.
func Zeros(shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	return nn.Zeros(shape, rng)
}

// Ones initializes a tensor with ones.
func Ones(shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
	return nn.Ones(shape, rng)
}

// Constant returns an initializer filling the tensor with value.
func Constant(value float32) module.Initializer {
	return nn.Constant(value)
}

// RandomNormal returns an initializer drawing from N(0, stddev²).
func RandomNormal(stddev float32) module.Initializer {
	return nn.RandomNormal(stddev)
}

// TruncatedNormal returns an initializer drawing from N(0, stddev²) with
// samples beyond two standard deviations redrawn.
func TruncatedNormal(stddev float32) module.Initializer {
	return nn.TruncatedNormal(stddev)
}

// XavierUniform returns the Xavier/Glorot uniform initializer for the given
// fan-in and fan-out.
func XavierUniform(fanIn, fanOut int) module.Initializer {
	return nn.XavierUniform(fanIn, fanOut)
}
