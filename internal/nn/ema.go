package nn

import (
	"math"

	"github.com/grove-ml/grove/internal/module"
	"github.com/grove-ml/grove/internal/tensor"
)

// EMA maintains a zero-debiased exponential moving average of a tensor in
// the scope's state collection.
//
// State entries (per scope): "hidden" (the biased accumulator, same shape as
// the value) and "counter" (number of updates, shape [1]).
//
// With decay ρ, the t-th update computes
//
//	hidden = ρ·hidden + (1−ρ)·value
//	average = hidden / (1 − ρ^t)
//
// The division corrects the bias toward zero of the first few updates.
//
// Update advances the average only under Apply; during Init it creates the
// state entries and passes the value through, so initialization never depends
// on the sample input's values.
type EMA struct {
	Decay float32
}

// Update folds value into the moving average and returns the debiased average.
func (e EMA) Update(s *module.Scope, value *tensor.Tensor) *tensor.Tensor {
	if e.Decay < 0 || e.Decay >= 1 {
		panic("EMA: Decay must be in [0, 1)")
	}

	hidden := s.GetState("hidden", value.Shape(), Zeros)
	counter := s.GetState("counter", tensor.Shape{1}, Zeros)

	if s.Initializing() {
		return value
	}

	t := counter.Data()[0] + 1
	newCounter := tensor.Full(tensor.Shape{1}, t)
	newHidden := hidden.Scale(e.Decay).Add(value.Scale(1 - e.Decay))

	s.SetState("counter", newCounter)
	s.SetState("hidden", newHidden)

	debias := 1 - float32(math.Pow(float64(e.Decay), float64(t)))

	if s.Recording() {
		// output = (ρ·hidden + (1−ρ)·value) / (1 − ρ^t); hidden and the
		// counter are state, so the only differentiable input is value.
		grad := (1 - e.Decay) / debias
		s.PushBackward(func(up *tensor.Tensor) (*tensor.Tensor, map[string]*tensor.Tensor) {
			return up.Scale(grad), nil
		})
	}

	return newHidden.Scale(1 / debias)
}

// Average returns the current debiased average without advancing it.
//
// Before the first update the average is defined as zero.
func (e EMA) Average(s *module.Scope, shape tensor.Shape) *tensor.Tensor {
	hidden := s.GetState("hidden", shape, Zeros)
	counter := s.GetState("counter", tensor.Shape{1}, Zeros)

	t := counter.Data()[0]
	if t == 0 {
		return hidden.Clone()
	}
	debias := 1 - float32(math.Pow(float64(e.Decay), float64(t)))
	return hidden.Scale(1 / debias)
}
