package nn

import (
	"math"
	"math/rand"

	"github.com/grove-ml/grove/internal/module"
	"github.com/grove-ml/grove/internal/tensor"
)

// Zeros initializes a tensor with zeros. This is the default for biases and
// for most state entries.
func Zeros(shape tensor.Shape, _ *rand.Rand) *tensor.Tensor {
	return tensor.Zeros(shape)
}

// Ones initializes a tensor with ones (e.g. normalization scales).
func Ones(shape tensor.Shape, _ *rand.Rand) *tensor.Tensor {
	return tensor.Ones(shape)
}

// Constant returns an initializer filling the tensor with value.
func Constant(value float32) module.Initializer {
	return func(shape tensor.Shape, _ *rand.Rand) *tensor.Tensor {
		return tensor.Full(shape, value)
	}
}

// RandomNormal returns an initializer drawing from N(0, stddev²).
func RandomNormal(stddev float32) module.Initializer {
	return func(shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
		return tensor.Randn(shape, rng).Scale(stddev)
	}
}

// TruncatedNormal returns an initializer drawing from N(0, stddev²) with
// samples beyond two standard deviations redrawn.
func TruncatedNormal(stddev float32) module.Initializer {
	return func(shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
		t := tensor.New(shape)
		data := t.Data()
		for i := range data {
			v := rng.NormFloat64()
			for v < -2 || v > 2 {
				v = rng.NormFloat64()
			}
			data[i] = float32(v) * stddev
		}
		return t
	}
}

// XavierUniform returns the Xavier/Glorot uniform initializer:
// U(-sqrt(6/(fanIn+fanOut)), sqrt(6/(fanIn+fanOut))).
//
// This keeps activation variance roughly constant across layers and is the
// default weight initializer for Linear.
func XavierUniform(fanIn, fanOut int) module.Initializer {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return func(shape tensor.Shape, rng *rand.Rand) *tensor.Tensor {
		t := tensor.New(shape)
		data := t.Data()
		for i := range data {
			data[i] = float32((rng.Float64()*2.0 - 1.0) * bound)
		}
		return t
	}
}
