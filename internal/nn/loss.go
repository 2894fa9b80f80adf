package nn

import (
	"fmt"
	"math"

	"github.com/grove-ml/grove/internal/module"
	"github.com/grove-ml/grove/internal/tensor"
)

// MSE returns the mean squared error between pred and target as a scalar
// tensor (shape [1]).
//
// When the scope is recording, MSE seeds the backward trace with
// d loss / d pred = 2·(pred − target) / N.
func MSE(s *module.Scope, pred, target *tensor.Tensor) *tensor.Tensor {
	if !pred.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("MSE: shape mismatch %v vs %v", pred.Shape(), target.Shape()))
	}

	diff := pred.Sub(target)
	loss := diff.Mul(diff).Mean()

	if s.Recording() {
		n := float32(pred.NumElements())
		s.PushBackward(func(up *tensor.Tensor) (*tensor.Tensor, map[string]*tensor.Tensor) {
			return diff.Scale(2 / n * up.Data()[0]), nil
		})
	}

	return tensor.Full(tensor.Shape{1}, loss)
}

// SoftmaxCrossEntropy returns the mean cross-entropy between logits
// [batch, classes] and integer class labels [batch] (stored as float32),
// as a scalar tensor (shape [1]).
//
// Softmax is folded into the loss, so the backward step is the numerically
// stable (softmax − onehot) / batch.
func SoftmaxCrossEntropy(s *module.Scope, logits, labels *tensor.Tensor) *tensor.Tensor {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("SoftmaxCrossEntropy: expected 2-D logits, got %v", shape))
	}
	if len(labels.Shape()) != 1 || labels.Shape()[0] != shape[0] {
		panic(fmt.Sprintf("SoftmaxCrossEntropy: expected labels [%d], got %v", shape[0], labels.Shape()))
	}
	batch, classes := shape[0], shape[1]

	probs := softmaxRows(logits)
	var loss float64
	for r := 0; r < batch; r++ {
		label := int(labels.At(r))
		if label < 0 || label >= classes {
			panic(fmt.Sprintf("SoftmaxCrossEntropy: label %d out of range for %d classes", label, classes))
		}
		loss += -math.Log(math.Max(float64(probs.At(r, label)), 1e-12))
	}
	loss /= float64(batch)

	if s.Recording() {
		s.PushBackward(func(up *tensor.Tensor) (*tensor.Tensor, map[string]*tensor.Tensor) {
			down := probs.Clone()
			data := down.Data()
			for r := 0; r < batch; r++ {
				data[r*classes+int(labels.At(r))] -= 1
			}
			return down.Scale(up.Data()[0] / float32(batch)), nil
		})
	}

	return tensor.Full(tensor.Shape{1}, float32(loss))
}

// softmaxRows computes a numerically stable softmax over each row.
func softmaxRows(logits *tensor.Tensor) *tensor.Tensor {
	shape := logits.Shape()
	batch, classes := shape[0], shape[1]
	out := tensor.New(shape)
	in, data := logits.Data(), out.Data()

	for r := 0; r < batch; r++ {
		base := r * classes
		maxV := in[base]
		for c := 1; c < classes; c++ {
			if in[base+c] > maxV {
				maxV = in[base+c]
			}
		}
		var sum float64
		for c := 0; c < classes; c++ {
			e := math.Exp(float64(in[base+c] - maxV))
			data[base+c] = float32(e)
			sum += e
		}
		for c := 0; c < classes; c++ {
			data[base+c] = float32(float64(data[base+c]) / sum)
		}
	}
	return out
}
