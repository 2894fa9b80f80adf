package optim

import (
	"fmt"
	"strings"

	"github.com/grove-ml/grove/internal/params"
	"github.com/grove-ml/grove/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Update rule without momentum:
//
//	param -= lr · grad
//
// With momentum:
//
//	velocity = momentum · velocity + grad
//	param   -= lr · velocity
//
// Velocity buffers are created lazily per parameter name on first update.
type SGD struct {
	lr         float32
	momentum   float32
	velocities params.Tree
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float32 // learning rate (default 0.01)
	Momentum float32 // momentum factor in [0, 1) (default 0)
}

// NewSGD creates a new SGD optimizer.
func NewSGD(config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD{
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: params.New(),
	}
}

// Step applies one SGD update to every parameter named in grads.
func (s *SGD) Step(p, grads params.Tree) error {
	for _, name := range grads.Names() {
		grad := grads[name]
		param, err := lookup(p, name, grad)
		if err != nil {
			return err
		}

		update := grad
		if s.momentum != 0 {
			v, ok := s.velocities[velocityKey(name)]
			if !ok {
				v = tensor.Zeros(param.Shape())
				s.velocities[velocityKey(name)] = v
			} else if !v.Shape().Equal(param.Shape()) {
				return fmt.Errorf("velocity shape mismatch for %q: parameter %v, velocity %v",
					name, param.Shape(), v.Shape())
			}
			vData, gData := v.Data(), grad.Data()
			for i := range vData {
				vData[i] = s.momentum*vData[i] + gData[i]
			}
			update = v
		}

		pData, uData := param.Data(), update.Data()
		for i := range pData {
			pData[i] -= s.lr * uData[i]
		}
	}
	return nil
}

// LR returns the current learning rate.
func (s *SGD) LR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float32) {
	s.lr = lr
}

// Type returns "SGD".
func (s *SGD) Type() string {
	return "SGD"
}

// StateDict exports the velocity buffers, keyed "velocity/<param name>".
// Without momentum the state is empty.
func (s *SGD) StateDict() params.Tree {
	return s.velocities.Clone()
}

// LoadStateDict restores velocity buffers exported by StateDict. Entries for
// parameters the optimizer has not seen yet are simply adopted; shapes are
// validated against parameters on the next Step.
func (s *SGD) LoadStateDict(state params.Tree) error {
	for name := range state {
		if !strings.HasPrefix(name, "velocity/") {
			return fmt.Errorf("unrecognized sgd state entry %q", name)
		}
	}
	s.velocities = state.Clone()
	return nil
}

func velocityKey(name string) string {
	return "velocity/" + name
}
