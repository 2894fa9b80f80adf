package optim_test

import (
	"math"
	"testing"

	"github.com/grove-ml/grove/internal/optim"
	"github.com/grove-ml/grove/internal/params"
	"github.com/grove-ml/grove/internal/tensor"
)

func floatEqual(a, b, eps float32) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < eps
}

func singleParam(value float32) params.Tree {
	p := params.New()
	p.Set("x", tensor.Full(tensor.Shape{1}, value))
	return p
}

func singleGrad(value float32) params.Tree {
	g := params.New()
	g.Set("x", tensor.Full(tensor.Shape{1}, value))
	return g
}

func TestSGDSimpleUpdate(t *testing.T) {
	p := singleParam(2.0)
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1})

	if err := opt.Step(p, singleGrad(1.0)); err != nil {
		t.Fatal(err)
	}

	// x = 2.0 - 0.1*1.0 = 1.9
	if got := p["x"].Data()[0]; !floatEqual(got, 1.9, 1e-6) {
		t.Errorf("after step: x = %f, want 1.9", got)
	}
}

func TestSGDMomentum(t *testing.T) {
	p := singleParam(1.0)
	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// Step 1: v = 1, x = 1 - 0.1 = 0.9
	if err := opt.Step(p, singleGrad(1.0)); err != nil {
		t.Fatal(err)
	}
	if got := p["x"].Data()[0]; !floatEqual(got, 0.9, 1e-6) {
		t.Fatalf("after step 1: x = %f, want 0.9", got)
	}

	// Step 2: v = 0.9 + 1 = 1.9, x = 0.9 - 0.19 = 0.71
	if err := opt.Step(p, singleGrad(1.0)); err != nil {
		t.Fatal(err)
	}
	if got := p["x"].Data()[0]; !floatEqual(got, 0.71, 1e-6) {
		t.Errorf("after step 2: x = %f, want 0.71", got)
	}
}

func TestSGDDefaults(t *testing.T) {
	opt := optim.NewSGD(optim.SGDConfig{})
	if opt.LR() != 0.01 {
		t.Errorf("default LR = %f, want 0.01", opt.LR())
	}

	opt.SetLR(0.5)
	if opt.LR() != 0.5 {
		t.Errorf("SetLR: LR = %f, want 0.5", opt.LR())
	}
}

func TestStepTouchesOnlyNamedParams(t *testing.T) {
	p := params.New()
	p.Set("trainable/w", tensor.Full(tensor.Shape{2}, 1))
	p.Set("frozen/w", tensor.Full(tensor.Shape{2}, 1))

	g := params.New()
	g.Set("trainable/w", tensor.Full(tensor.Shape{2}, 1))

	opt := optim.NewSGD(optim.SGDConfig{LR: 0.5})
	if err := opt.Step(p, g); err != nil {
		t.Fatal(err)
	}

	if got := p["trainable/w"].Data()[0]; !floatEqual(got, 0.5, 1e-6) {
		t.Errorf("trainable param = %f, want 0.5", got)
	}
	if got := p["frozen/w"].Data()[0]; got != 1 {
		t.Errorf("frozen param = %f, want 1 (untouched)", got)
	}
}

func TestStepUnknownParameterErrors(t *testing.T) {
	p := singleParam(1)
	g := params.New()
	g.Set("ghost", tensor.Full(tensor.Shape{1}, 1))

	if err := optim.NewSGD(optim.SGDConfig{}).Step(p, g); err == nil {
		t.Error("Step with a gradient for an unknown parameter should fail")
	}
}

func TestStepShapeMismatchErrors(t *testing.T) {
	p := singleParam(1)
	g := params.New()
	g.Set("x", tensor.Full(tensor.Shape{2}, 1))

	if err := optim.NewSGD(optim.SGDConfig{}).Step(p, g); err == nil {
		t.Error("Step with a mismatched gradient shape should fail")
	}
}

func TestAdamFirstStepIsSignedLR(t *testing.T) {
	p := singleParam(1.0)
	opt := optim.NewAdam(optim.AdamConfig{LR: 0.001})

	if err := opt.Step(p, singleGrad(0.5)); err != nil {
		t.Fatal(err)
	}

	// Bias correction makes the first update lr·g/(|g|+eps) ≈ lr.
	if got := p["x"].Data()[0]; !floatEqual(got, 0.999, 1e-5) {
		t.Errorf("after first step: x = %f, want ~0.999", got)
	}
	if opt.Timestep() != 1 {
		t.Errorf("timestep = %d, want 1", opt.Timestep())
	}
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	// Minimize f(x) = x² from x = 3.
	p := singleParam(3.0)
	opt := optim.NewAdam(optim.AdamConfig{LR: 0.1})

	for i := 0; i < 400; i++ {
		x := p["x"].Data()[0]
		if err := opt.Step(p, singleGrad(2*x)); err != nil {
			t.Fatal(err)
		}
	}

	if got := p["x"].Data()[0]; float32(math.Abs(float64(got))) > 0.01 {
		t.Errorf("after 400 steps: x = %f, want ~0", got)
	}
}

func TestSGDStateDictRoundTrip(t *testing.T) {
	grad := singleGrad(1.0)

	// Continuous run: 4 momentum steps.
	pRef := singleParam(1.0)
	ref := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	for i := 0; i < 4; i++ {
		if err := ref.Step(pRef, grad); err != nil {
			t.Fatal(err)
		}
	}

	// Interrupted run: 2 steps, export, import into a fresh optimizer, 2 more.
	p := singleParam(1.0)
	first := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	for i := 0; i < 2; i++ {
		if err := first.Step(p, grad); err != nil {
			t.Fatal(err)
		}
	}
	second := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	if err := second.LoadStateDict(first.StateDict()); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if err := second.Step(p, grad); err != nil {
			t.Fatal(err)
		}
	}

	if !p.AllClose(pRef, 1e-6) {
		t.Errorf("resumed run diverged: %f vs %f", p["x"].Data()[0], pRef["x"].Data()[0])
	}
}

func TestAdamStateDictRoundTrip(t *testing.T) {
	grad := singleGrad(0.3)

	pRef := singleParam(1.0)
	ref := optim.NewAdam(optim.AdamConfig{LR: 0.01})
	for i := 0; i < 6; i++ {
		if err := ref.Step(pRef, grad); err != nil {
			t.Fatal(err)
		}
	}

	p := singleParam(1.0)
	first := optim.NewAdam(optim.AdamConfig{LR: 0.01})
	for i := 0; i < 3; i++ {
		if err := first.Step(p, grad); err != nil {
			t.Fatal(err)
		}
	}
	second := optim.NewAdam(optim.AdamConfig{LR: 0.01})
	if err := second.LoadStateDict(first.StateDict()); err != nil {
		t.Fatal(err)
	}
	if second.Timestep() != 3 {
		t.Errorf("restored timestep = %d, want 3", second.Timestep())
	}
	for i := 0; i < 3; i++ {
		if err := second.Step(p, grad); err != nil {
			t.Fatal(err)
		}
	}

	if !p.AllClose(pRef, 1e-6) {
		t.Errorf("resumed run diverged: %f vs %f", p["x"].Data()[0], pRef["x"].Data()[0])
	}
}

func TestSGDLoadStateDictRejectsUnknownEntries(t *testing.T) {
	state := params.New()
	state.Set("bogus/x", tensor.Full(tensor.Shape{1}, 1))

	if err := optim.NewSGD(optim.SGDConfig{}).LoadStateDict(state); err == nil {
		t.Error("LoadStateDict with unrecognized entries should fail")
	}
}

func TestSGDStepRejectsMismatchedVelocity(t *testing.T) {
	state := params.New()
	state.Set("velocity/x", tensor.Full(tensor.Shape{3}, 0.5))

	opt := optim.NewSGD(optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	if err := opt.LoadStateDict(state); err != nil {
		t.Fatal(err)
	}

	p := singleParam(1.0)
	if err := opt.Step(p, singleGrad(1.0)); err == nil {
		t.Error("Step with a restored velocity of the wrong shape should fail")
	}
	if got := p["x"].Data()[0]; got != 1.0 {
		t.Errorf("param = %f, want 1.0 (untouched)", got)
	}
}

func TestAdamStepRejectsMismatchedMoments(t *testing.T) {
	state := params.New()
	state.Set("t", tensor.Full(tensor.Shape{1}, 2))
	state.Set("m/x", tensor.Full(tensor.Shape{3}, 0.1))
	state.Set("v/x", tensor.Full(tensor.Shape{3}, 0.1))

	opt := optim.NewAdam(optim.AdamConfig{})
	if err := opt.LoadStateDict(state); err != nil {
		t.Fatal(err)
	}

	if err := opt.Step(singleParam(1.0), singleGrad(1.0)); err == nil {
		t.Error("Step with restored moments of the wrong shape should fail")
	}
}

func TestAdamLoadStateDictRejectsGarbage(t *testing.T) {
	state := params.New()
	state.Set("t", tensor.Full(tensor.Shape{1}, 1))
	state.Set("bogus", tensor.Full(tensor.Shape{1}, 1))

	if err := optim.NewAdam(optim.AdamConfig{}).LoadStateDict(state); err == nil {
		t.Error("LoadStateDict with unrecognized entries should fail")
	}
}
