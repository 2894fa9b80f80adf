package nn_test

import (
	"math"
	"testing"

	"github.com/grove-ml/grove/internal/module"
	"github.com/grove-ml/grove/internal/nn"
	"github.com/grove-ml/grove/internal/tensor"
)

func floatEqual(a, b, eps float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

func TestLinearShapes(t *testing.T) {
	fwd := module.Transform(func(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
		return nn.Linear{Out: 5}.Forward(s.Enter("linear"), x)
	})
	p, _ := fwd.Init(1, tensor.Zeros(tensor.Shape{2, 10}))

	w, err := p.Get("linear/w")
	if err != nil {
		t.Fatal(err)
	}
	if !w.Shape().Equal(tensor.Shape{5, 10}) {
		t.Errorf("w shape = %v, want (5, 10)", w.Shape())
	}
	b, err := p.Get("linear/b")
	if err != nil {
		t.Fatal(err)
	}
	if !b.Shape().Equal(tensor.Shape{5}) {
		t.Errorf("b shape = %v, want (5)", b.Shape())
	}

	y, _ := fwd.Apply(p, nil, tensor.Zeros(tensor.Shape{7, 10}))
	if !y.Shape().Equal(tensor.Shape{7, 5}) {
		t.Errorf("output shape = %v, want (7, 5)", y.Shape())
	}
}

func TestLinearNoBias(t *testing.T) {
	fwd := module.Transform(func(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
		return nn.Linear{Out: 3, NoBias: true}.Forward(s.Enter("linear"), x)
	})
	p, _ := fwd.Init(1, tensor.Zeros(tensor.Shape{1, 4}))

	if p.Has("linear/b") {
		t.Error("NoBias layer created a bias parameter")
	}
	if p.NumTensors() != 1 {
		t.Errorf("NoBias layer created %d parameters, want 1", p.NumTensors())
	}
}

func TestLinearBiasInitializedToZero(t *testing.T) {
	fwd := module.Transform(func(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
		return nn.Linear{Out: 4}.Forward(s.Enter("linear"), x)
	})
	p, _ := fwd.Init(1, tensor.Zeros(tensor.Shape{1, 4}))

	b, _ := p.Get("linear/b")
	for i, v := range b.Data() {
		if v != 0 {
			t.Errorf("b[%d] = %f, want 0", i, v)
		}
	}
}

func TestActivations(t *testing.T) {
	x := tensor.MustFromSlice([]float32{-2, -0.5, 0, 0.5, 2}, tensor.Shape{1, 5})

	run := func(m nn.Module) *tensor.Tensor {
		fwd := module.Transform(func(s *module.Scope, in *tensor.Tensor) *tensor.Tensor {
			return m.Forward(s, in)
		})
		y, _ := fwd.Apply(nil, nil, x)
		return y
	}

	relu := run(nn.ReLU{})
	for i, want := range []float32{0, 0, 0, 0.5, 2} {
		if relu.Data()[i] != want {
			t.Errorf("ReLU[%d] = %f, want %f", i, relu.Data()[i], want)
		}
	}

	sigmoid := run(nn.Sigmoid{})
	if !floatEqual(sigmoid.Data()[2], 0.5, 1e-6) {
		t.Errorf("Sigmoid(0) = %f, want 0.5", sigmoid.Data()[2])
	}
	if !floatEqual(sigmoid.Data()[4], float32(1/(1+math.Exp(-2))), 1e-6) {
		t.Errorf("Sigmoid(2) = %f", sigmoid.Data()[4])
	}

	tanh := run(nn.Tanh{})
	if tanh.Data()[2] != 0 {
		t.Errorf("Tanh(0) = %f, want 0", tanh.Data()[2])
	}
	if !floatEqual(tanh.Data()[4], float32(math.Tanh(2)), 1e-6) {
		t.Errorf("Tanh(2) = %f", tanh.Data()[4])
	}
}

func TestMLPWidthsAndNames(t *testing.T) {
	fwd := module.Transform(func(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
		return nn.MLP{Widths: []int{8, 4, 2}}.Forward(s.Enter("mlp"), x)
	})
	p, _ := fwd.Init(1, tensor.Zeros(tensor.Shape{1, 16}))

	shapes := map[string]tensor.Shape{
		"mlp/linear_0/w": {8, 16},
		"mlp/linear_1/w": {4, 8},
		"mlp/linear_2/w": {2, 4},
	}
	for name, want := range shapes {
		v, err := p.Get(name)
		if err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		if !v.Shape().Equal(want) {
			t.Errorf("%s shape = %v, want %v", name, v.Shape(), want)
		}
	}
}

func TestEMAConstantStream(t *testing.T) {
	// Zero-debiasing makes the average of a constant stream exactly that
	// constant from the very first update.
	fwd := module.Transform(func(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
		return nn.EMA{Decay: 0.9}.Update(s.Enter("avg"), x)
	})

	v := tensor.Full(tensor.Shape{3}, 5)
	_, st := fwd.Init(1, v)

	for i := 0; i < 4; i++ {
		var avg *tensor.Tensor
		avg, st = fwd.Apply(nil, st, v)
		for j := range avg.Data() {
			if !floatEqual(avg.Data()[j], 5, 1e-5) {
				t.Fatalf("update %d: average[%d] = %f, want 5", i+1, j, avg.Data()[j])
			}
		}
	}
	if got := st["avg/counter"].Data()[0]; got != 4 {
		t.Errorf("counter = %f, want 4", got)
	}
}

func TestEMAConverges(t *testing.T) {
	fwd := module.Transform(func(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
		return nn.EMA{Decay: 0.5}.Update(s.Enter("avg"), x)
	})

	_, st := fwd.Init(1, tensor.Zeros(tensor.Shape{1}))

	// Stream: 0 then 10 forever. Average must move toward 10.
	var avg *tensor.Tensor
	avg, st = fwd.Apply(nil, st, tensor.Zeros(tensor.Shape{1}))
	prev := avg.Data()[0]
	ten := tensor.Full(tensor.Shape{1}, 10)
	for i := 0; i < 10; i++ {
		avg, st = fwd.Apply(nil, st, ten)
		if avg.Data()[0] < prev {
			t.Fatalf("average moved away from the stream: %f -> %f", prev, avg.Data()[0])
		}
		prev = avg.Data()[0]
	}
	if prev < 9.9 {
		t.Errorf("average after 10 updates of 10 = %f, want > 9.9", prev)
	}
}

func TestBatchNormTrainingNormalizes(t *testing.T) {
	fwd := module.Transform(func(s *module.Scope, x *tensor.Tensor) *tensor.Tensor {
		return nn.BatchNorm{Training: true}.Forward(s.Enter("bn"), x)
	})

	x := tensor.MustFromSlice([]float32{
		1, 100,
		2, 200,
		3, 300,
		4, 400,
	}, tensor.Shape{4, 2})

	p, st := fwd.Init(1, x)
	y, _ := fwd.Apply(p, st, x)

	// With scale=1 offset=0, each column of the output has mean ~0, var ~1.
	mean := y.MeanAxis0()
	variance := y.VarAxis0()
	for c := 0; c < 2; c++ {
		if !floatEqual(mean.Data()[c], 0, 1e-4) {
			t.Errorf("column %d mean = %f, want 0", c, mean.Data()[c])
		}
		if !floatEqual(variance.Data()[c], 1, 1e-2) {
			t.Errorf("column %d variance = %f, want 1", c, variance.Data()[c])
		}
	}
}

func TestBatchNormStateAdvancesOnlyInTraining(t *testing.T) {
	x := tensor.MustFromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})

	train := module.Transform(func(s *module.Scope, in *tensor.Tensor) *tensor.Tensor {
		return nn.BatchNorm{Training: true}.Forward(s.Enter("bn"), in)
	})
	eval := module.Transform(func(s *module.Scope, in *tensor.Tensor) *tensor.Tensor {
		return nn.BatchNorm{}.Forward(s.Enter("bn"), in)
	})

	p, st0 := train.Init(1, x)

	_, st1 := train.Apply(p, st0, x)
	if st1.Equal(st0) {
		t.Error("training apply must advance running statistics")
	}

	_, st2 := eval.Apply(p, st1, x)
	if !st2.Equal(st1) {
		t.Error("eval apply must not advance running statistics")
	}
}

func TestBatchNormEvalUsesRunningStats(t *testing.T) {
	x := tensor.MustFromSlice([]float32{
		2, 10,
		4, 20,
		6, 30,
		8, 40,
	}, tensor.Shape{4, 2})

	train := module.Transform(func(s *module.Scope, in *tensor.Tensor) *tensor.Tensor {
		return nn.BatchNorm{Training: true, Decay: 0.5}.Forward(s.Enter("bn"), in)
	})
	eval := module.Transform(func(s *module.Scope, in *tensor.Tensor) *tensor.Tensor {
		return nn.BatchNorm{Decay: 0.5}.Forward(s.Enter("bn"), in)
	})

	p, st := train.Init(1, x)
	want, _ := train.Apply(p, st, x)

	// Feed the same batch repeatedly: the debiased running statistics equal
	// the batch statistics, so eval converges to the training output.
	for i := 0; i < 20; i++ {
		_, st = train.Apply(p, st, x)
	}
	got, _ := eval.Apply(p, st, x)

	if !got.AllClose(want, 1e-3) {
		t.Errorf("eval with converged running stats differs from batch normalization:\n got %v\nwant %v", got, want)
	}
}

func TestEmbedBagPooling(t *testing.T) {
	fwd := module.Transform(func(s *module.Scope, ids *tensor.Tensor) *tensor.Tensor {
		return nn.EmbedBag{Vocab: 4, Dim: 2}.Forward(s.Enter("embed"), ids)
	})

	ids := tensor.MustFromSlice([]float32{
		0, 1, -1, // pad at the end
		2, 2, 2,
		-1, -1, -1, // all padding
	}, tensor.Shape{3, 3})

	p, _ := fwd.Init(1, ids)
	table := tensor.MustFromSlice([]float32{
		1, 2,
		3, 4,
		5, 6,
		7, 8,
	}, tensor.Shape{4, 2})
	p.Set("embed/embeddings", table)

	y, _ := fwd.Apply(p, nil, ids)

	want := []float32{
		2, 3, // mean of rows 0 and 1
		5, 6, // row 2
		0, 0, // all padding pools to zero
	}
	for i := range want {
		if y.Data()[i] != want[i] {
			t.Errorf("pooled[%d] = %f, want %f", i, y.Data()[i], want[i])
		}
	}
}

func TestEmbedBagOutOfRangePanics(t *testing.T) {
	fwd := module.Transform(func(s *module.Scope, ids *tensor.Tensor) *tensor.Tensor {
		return nn.EmbedBag{Vocab: 2, Dim: 2}.Forward(s.Enter("embed"), ids)
	})
	defer func() {
		if recover() == nil {
			t.Error("token id beyond the vocabulary should panic")
		}
	}()
	fwd.Init(1, tensor.MustFromSlice([]float32{5}, tensor.Shape{1, 1}))
}

func TestMSEKnownValue(t *testing.T) {
	fwd := module.Transform(func(s *module.Scope, pred *tensor.Tensor) *tensor.Tensor {
		target := tensor.MustFromSlice([]float32{1, 1, 1, 1}, tensor.Shape{2, 2})
		return nn.MSE(s, pred, target)
	})

	pred := tensor.MustFromSlice([]float32{1, 2, 3, 1}, tensor.Shape{2, 2})
	loss, _ := fwd.Apply(nil, nil, pred)

	// ((0)² + (1)² + (2)² + (0)²) / 4 = 1.25
	if !floatEqual(loss.Data()[0], 1.25, 1e-6) {
		t.Errorf("MSE = %f, want 1.25", loss.Data()[0])
	}
}

func TestSoftmaxCrossEntropyUniformLogits(t *testing.T) {
	fwd := module.Transform(func(s *module.Scope, logits *tensor.Tensor) *tensor.Tensor {
		labels := tensor.MustFromSlice([]float32{0, 3}, tensor.Shape{2})
		return nn.SoftmaxCrossEntropy(s, logits, labels)
	})

	logits := tensor.Zeros(tensor.Shape{2, 4})
	loss, _ := fwd.Apply(nil, nil, logits)

	// Uniform logits over 4 classes: loss = ln(4).
	if !floatEqual(loss.Data()[0], float32(math.Log(4)), 1e-5) {
		t.Errorf("cross-entropy = %f, want ln(4) = %f", loss.Data()[0], math.Log(4))
	}
}
