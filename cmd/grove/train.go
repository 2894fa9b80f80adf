package main

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/grove-ml/grove/checkpoint"
	"github.com/grove-ml/grove/grove"
	"github.com/grove-ml/grove/internal/config"
	"github.com/grove-ml/grove/nn"
	"github.com/grove-ml/grove/optim"
	"github.com/grove-ml/grove/params"
	"github.com/grove-ml/grove/tensor"
)

// Input width of the synthetic regression task the trainer fits.
const taskInputDim = 4

// Batches drawn per epoch.
const stepsPerEpoch = 50

var trainCmd = &cobra.Command{
	Use:   "train <experiment.yaml>",
	Short: "Train a model from a YAML experiment file",
	Long: `Builds the configured MLP, fits it to a synthetic regression task, and
writes a resumable checkpoint with parameters, state, and optimizer buffers.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			return err
		}
		return runTrain(cfg)
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cfg config.Config) error {
	model := buildModel(cfg.Model, true)
	opt, err := buildOptimizer(cfg.Optimizer)
	if err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(cfg.Training.Seed))
	task := newRegressionTask(cfg.Model.Widths[len(cfg.Model.Widths)-1], rng)

	sample, _ := task.batch(cfg.Training.BatchSize, rng)
	p, st := grove.Transform(model).Init(cfg.Training.Seed, sample)
	fmt.Printf("initialized %d parameters in %d tensors\n", p.NumElements(), p.NumTensors())

	var target *tensor.Tensor
	lossFn := grove.ValueAndGrad(func(s *grove.Scope, x *tensor.Tensor) *tensor.Tensor {
		return nn.MSE(s, model(s, x), target)
	})

	var step int64
	var loss float32
	var grads params.Tree
	for epoch := 1; epoch <= cfg.Training.Epochs; epoch++ {
		var epochLoss float32
		for i := 0; i < stepsPerEpoch; i++ {
			var x *tensor.Tensor
			x, target = task.batch(cfg.Training.BatchSize, rng)
			loss, grads, st = lossFn(p, st, x)
			if err := opt.Step(p, grads); err != nil {
				return fmt.Errorf("optimizer step failed: %w", err)
			}
			epochLoss += loss
			step++
		}
		fmt.Printf("epoch %3d  loss %.6f\n", epoch, epochLoss/stepsPerEpoch)
	}

	meta := checkpoint.CheckpointMeta{
		Step:          step,
		Epoch:         cfg.Training.Epochs,
		Loss:          float64(loss),
		OptimizerType: opt.Type(),
		OptimizerConfig: map[string]float64{
			"lr":       float64(cfg.Optimizer.LR),
			"momentum": float64(cfg.Optimizer.Momentum),
		},
	}
	if err := checkpoint.SaveCheckpoint(
		cfg.Training.Checkpoint, "MLP", p, st, opt.StateDict(), meta, nil); err != nil {
		return err
	}
	fmt.Printf("saved checkpoint to %s\n", cfg.Training.Checkpoint)
	return nil
}

// buildModel assembles the configured MLP as a module function. BatchNorm,
// when enabled, sits between each hidden linear layer and its activation.
func buildModel(mc config.ModelConfig, training bool) grove.Fn {
	var act nn.Module
	switch mc.Activation {
	case "tanh":
		act = nn.Tanh{}
	case "sigmoid":
		act = nn.Sigmoid{}
	default:
		act = nn.ReLU{}
	}

	return func(s *grove.Scope, x *tensor.Tensor) *tensor.Tensor {
		h := x
		for i, width := range mc.Widths {
			h = nn.Linear{Out: width}.Forward(s.Enter(fmt.Sprintf("linear_%d", i)), h)
			if i == len(mc.Widths)-1 {
				break
			}
			if mc.BatchNorm {
				h = nn.BatchNorm{Training: training}.Forward(s.Enter(fmt.Sprintf("bn_%d", i)), h)
			}
			h = act.Forward(s, h)
		}
		return h
	}
}

func buildOptimizer(oc config.OptimizerConfig) (optim.Optimizer, error) {
	switch oc.Type {
	case "sgd":
		return optim.NewSGD(optim.SGDConfig{LR: oc.LR, Momentum: oc.Momentum}), nil
	case "adam":
		return optim.NewAdam(optim.AdamConfig{LR: oc.LR}), nil
	default:
		return nil, fmt.Errorf("unknown optimizer type %q", oc.Type)
	}
}

// regressionTask is a fixed random map from inputs to targets: y = tanh(x@Wᵀ).
// The trainer fits the configured MLP to it.
type regressionTask struct {
	w *tensor.Tensor // [outDim, taskInputDim]
}

func newRegressionTask(outDim int, rng *rand.Rand) regressionTask {
	return regressionTask{w: tensor.Randn(tensor.Shape{outDim, taskInputDim}, rng)}
}

func (t regressionTask) batch(size int, rng *rand.Rand) (x, y *tensor.Tensor) {
	x = tensor.Randn(tensor.Shape{size, taskInputDim}, rng)
	y = x.MatMul(t.w.Transpose()).ApplyFunc(func(v float32) float32 {
		return float32(math.Tanh(float64(v)))
	})
	return x, y
}
