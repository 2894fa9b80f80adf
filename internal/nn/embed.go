package nn

import (
	"fmt"
	"math"

	"github.com/grove-ml/grove/internal/module"
	"github.com/grove-ml/grove/internal/tensor"
)

// EmbedBag is an embedding lookup with mean pooling.
//
// Input is a [batch, seq] tensor of token ids (stored as float32; ids must be
// integral and < Vocab). Negative ids mark padding and are excluded from the
// pool. The output is the [batch, dim] mean of the embeddings of each row's
// non-padding tokens; a row of only padding pools to zeros.
//
// The table is the parameter "embeddings" with shape [vocab, dim],
// initialized with a truncated normal scaled by 1/sqrt(dim) unless Init is
// set.
type EmbedBag struct {
	Vocab int
	Dim   int

	Init module.Initializer
}

// Forward pools embeddings for each row of token ids.
func (e EmbedBag) Forward(s *module.Scope, ids *tensor.Tensor) *tensor.Tensor {
	if e.Vocab <= 0 || e.Dim <= 0 {
		panic("EmbedBag: Vocab and Dim must be positive")
	}
	shape := ids.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("EmbedBag: expected 2-D ids [batch, seq], got %v", shape))
	}

	init := e.Init
	if init == nil {
		init = TruncatedNormal(float32(1.0 / math.Sqrt(float64(e.Dim))))
	}
	table := s.Parameter("embeddings", tensor.Shape{e.Vocab, e.Dim}, init)

	batch, seq := shape[0], shape[1]
	out := tensor.New(tensor.Shape{batch, e.Dim})
	counts := make([]float32, batch)
	tableData := table.Data()
	outData := out.Data()

	for r := 0; r < batch; r++ {
		for c := 0; c < seq; c++ {
			id := e.tokenAt(ids, r, c)
			if id < 0 {
				continue
			}
			counts[r]++
			base := id * e.Dim
			for d := 0; d < e.Dim; d++ {
				outData[r*e.Dim+d] += tableData[base+d]
			}
		}
		if counts[r] > 0 {
			for d := 0; d < e.Dim; d++ {
				outData[r*e.Dim+d] /= counts[r]
			}
		}
	}

	if s.Recording() {
		name := s.FullName("embeddings")
		s.PushBackward(func(up *tensor.Tensor) (*tensor.Tensor, map[string]*tensor.Tensor) {
			grad := tensor.New(tensor.Shape{e.Vocab, e.Dim})
			gradData := grad.Data()
			upData := up.Data()
			for r := 0; r < batch; r++ {
				if counts[r] == 0 {
					continue
				}
				inv := 1 / counts[r]
				for c := 0; c < seq; c++ {
					id := e.tokenAt(ids, r, c)
					if id < 0 {
						continue
					}
					base := id * e.Dim
					for d := 0; d < e.Dim; d++ {
						gradData[base+d] += upData[r*e.Dim+d] * inv
					}
				}
			}
			// ids carry no gradient; the chain ends here.
			return tensor.Zeros(ids.Shape()), map[string]*tensor.Tensor{name: grad}
		})
	}

	return out
}

func (e EmbedBag) tokenAt(ids *tensor.Tensor, r, c int) int {
	v := ids.At(r, c)
	if v < 0 {
		return -1
	}
	id := int(v)
	if id >= e.Vocab {
		panic(fmt.Sprintf("EmbedBag: token id %d out of range for vocab %d", id, e.Vocab))
	}
	return id
}
