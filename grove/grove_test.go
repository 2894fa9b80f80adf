// Copyright 2025 Grove ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package grove_test

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/grove-ml/grove/checkpoint"
	"github.com/grove-ml/grove/grove"
	"github.com/grove-ml/grove/nn"
	"github.com/grove-ml/grove/optim"
	"github.com/grove-ml/grove/params"
	"github.com/grove-ml/grove/tensor"
)

// TestEndToEnd drives the whole public API: transform a model, train it,
// fine-tune a partition, and round-trip the result through a checkpoint.
func TestEndToEnd(t *testing.T) {
	model := func(s *grove.Scope, x *tensor.Tensor) *tensor.Tensor {
		return nn.MLP{
			Widths:     []int{8, 1},
			Activation: nn.Tanh{},
		}.Forward(s.Enter("mlp"), x)
	}
	fwd := grove.Transform(model)

	rng := rand.New(rand.NewSource(5))
	x := tensor.Randn(tensor.Shape{32, 3}, rng)
	target := x.MatMul(tensor.Randn(tensor.Shape{1, 3}, rng).Transpose())

	p, st := fwd.Init(5, x)

	lossFn := grove.ValueAndGrad(func(s *grove.Scope, x *tensor.Tensor) *tensor.Tensor {
		return nn.MSE(s, model(s, x), target)
	})

	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	first, _, _ := lossFn(p, st, x)
	var last float32
	for i := 0; i < 200; i++ {
		var grads params.Tree
		last, grads, st = lossFn(p, st, x)
		if err := opt.Step(p, grads); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}
	if last >= first/10 {
		t.Fatalf("training did not converge: first loss %v, last loss %v", first, last)
	}

	// Head-only fine-tuning leaves the first layer untouched.
	body := p.Filter(params.HasPrefix("mlp/linear_0")).Clone()
	for i := 0; i < 10; i++ {
		_, grads, _ := lossFn(p, st, x)
		if err := opt.Step(p, grads.Filter(params.HasPrefix("mlp/linear_1"))); err != nil {
			t.Fatalf("Step failed: %v", err)
		}
	}
	if !p.Filter(params.HasPrefix("mlp/linear_0")).Equal(body) {
		t.Error("frozen layer changed during head-only training")
	}

	// Checkpoint round trip preserves behavior exactly.
	path := filepath.Join(t.TempDir(), "model.grove")
	if err := checkpoint.Save(path, "MLP", p, st, nil); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	p2, st2, err := checkpoint.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	y1, _ := fwd.Apply(p, st, x)
	y2, _ := fwd.Apply(p2, st2, x)
	if !y1.Equal(y2) {
		t.Error("reloaded model output differs")
	}
}
