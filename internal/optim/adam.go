package optim

import (
	"fmt"
	"math"

	"github.com/grove-ml/grove/internal/params"
	"github.com/grove-ml/grove/internal/tensor"
)

// Adam implements the Adam (adaptive moment estimation) optimizer.
//
// Update rule:
//
//	m = beta1·m + (1−beta1)·grad
//	v = beta2·v + (1−beta2)·grad²
//	m̂ = m / (1 − beta1^t)
//	v̂ = v / (1 − beta2^t)
//	param -= lr · m̂ / (sqrt(v̂) + eps)
//
// Reference: "Adam: A Method for Stochastic Optimization" (Kingma & Ba, 2014).
type Adam struct {
	lr    float32
	beta1 float32
	beta2 float32
	eps   float32
	t     int
	m     params.Tree // first moment estimates, keyed "m/<param name>"
	v     params.Tree // second moment estimates, keyed "v/<param name>"
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR    float32    // learning rate (default 0.001)
	Betas [2]float32 // moment decay coefficients (default 0.9, 0.999)
	Eps   float32    // numerical stability term (default 1e-8)
}

// NewAdam creates a new Adam optimizer with defaults applied.
func NewAdam(config AdamConfig) *Adam {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam{
		lr:    config.LR,
		beta1: config.Betas[0],
		beta2: config.Betas[1],
		eps:   config.Eps,
		m:     params.New(),
		v:     params.New(),
	}
}

// Step applies one Adam update to every parameter named in grads.
func (a *Adam) Step(p, grads params.Tree) error {
	a.t++
	bc1 := float32(1 - math.Pow(float64(a.beta1), float64(a.t)))
	bc2 := float32(1 - math.Pow(float64(a.beta2), float64(a.t)))

	for _, name := range grads.Names() {
		grad := grads[name]
		param, err := lookup(p, name, grad)
		if err != nil {
			return err
		}

		m, ok := a.m["m/"+name]
		if !ok {
			m = tensor.Zeros(param.Shape())
			a.m["m/"+name] = m
		} else if !m.Shape().Equal(param.Shape()) {
			return fmt.Errorf("first-moment shape mismatch for %q: parameter %v, buffer %v",
				name, param.Shape(), m.Shape())
		}
		v, ok := a.v["v/"+name]
		if !ok {
			v = tensor.Zeros(param.Shape())
			a.v["v/"+name] = v
		} else if !v.Shape().Equal(param.Shape()) {
			return fmt.Errorf("second-moment shape mismatch for %q: parameter %v, buffer %v",
				name, param.Shape(), v.Shape())
		}

		mData, vData := m.Data(), v.Data()
		pData, gData := param.Data(), grad.Data()
		for i := range pData {
			g := gData[i]
			mData[i] = a.beta1*mData[i] + (1-a.beta1)*g
			vData[i] = a.beta2*vData[i] + (1-a.beta2)*g*g

			mHat := mData[i] / bc1
			vHat := vData[i] / bc2
			pData[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
	return nil
}

// LR returns the current learning rate.
func (a *Adam) LR() float32 {
	return a.lr
}

// SetLR updates the learning rate.
func (a *Adam) SetLR(lr float32) {
	a.lr = lr
}

// Type returns "Adam".
func (a *Adam) Type() string {
	return "Adam"
}

// Timestep returns the number of steps taken, which drives bias correction.
func (a *Adam) Timestep() int {
	return a.t
}

// StateDict exports both moment trees and the timestep (as "t", shape [1]).
func (a *Adam) StateDict() params.Tree {
	state := a.m.Merge(a.v).Clone()
	state["t"] = tensor.Full(tensor.Shape{1}, float32(a.t))
	return state
}

// LoadStateDict restores moment estimates and the timestep. Buffer shapes
// are validated against parameters on the next Step.
func (a *Adam) LoadStateDict(state params.Tree) error {
	tTensor, ok := state["t"]
	if !ok {
		return fmt.Errorf("adam state missing timestep entry %q", "t")
	}
	a.t = int(tTensor.Data()[0])

	a.m = params.New()
	a.v = params.New()
	for name, val := range state {
		switch {
		case name == "t":
		case len(name) > 2 && name[:2] == "m/":
			a.m[name] = val.Clone()
		case len(name) > 2 && name[:2] == "v/":
			a.v[name] = val.Clone()
		default:
			return fmt.Errorf("unrecognized adam state entry %q", name)
		}
	}
	return nil
}
