package nn

import (
	"fmt"
	"math/rand"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// FeedForwardConfig configures a FeedForward network.
//
// Zero values are replaced with defaults:
//   - InnerSize: 20
//   - NLayers: 2
//   - Activation: Tanh
//
// When Layers is set it lists the hidden sizes explicitly and InnerSize and
// NLayers are ignored.
type FeedForwardConfig struct {
	InputDimensions  int
	OutputDimensions int
	InnerSize        int
	NLayers          int
	Layers           []int
	Activation       Activation
	NoBias           bool
	DType            tensor.DataType
	Rand             *rand.Rand
}

// FeedForward is a multi-layer perceptron:
//
//	Linear(in, h1) → act → Linear(h1, h2) → act → ... → Linear(hN, out)
//
// It is the default surrogate model of a PINN.
type FeedForward struct {
	*Sequential
	cfg FeedForwardConfig
}

// NewFeedForward creates a FeedForward network.
func NewFeedForward(cfg FeedForwardConfig, backend tensor.Backend) (*FeedForward, error) {
	if cfg.InputDimensions <= 0 || cfg.OutputDimensions <= 0 {
		return nil, fmt.Errorf("feedforward: input and output dimensions must be positive, got %d and %d",
			cfg.InputDimensions, cfg.OutputDimensions)
	}
	if cfg.InnerSize == 0 {
		cfg.InnerSize = 20
	}
	if cfg.NLayers == 0 {
		cfg.NLayers = 2
	}
	if cfg.Activation == nil {
		cfg.Activation, _ = ActivationByName("tanh")
	}

	hidden := cfg.Layers
	if len(hidden) == 0 {
		hidden = make([]int, cfg.NLayers)
		for i := range hidden {
			hidden[i] = cfg.InnerSize
		}
	}

	sizes := append([]int{cfg.InputDimensions}, hidden...)
	sizes = append(sizes, cfg.OutputDimensions)
	for _, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("feedforward: layer sizes must be positive, got %v", sizes)
		}
	}

	seq := NewSequential()
	lcfg := LinearConfig{NoBias: cfg.NoBias, DType: cfg.DType, Rand: cfg.Rand}
	for i := 0; i < len(sizes)-1; i++ {
		seq.Add(NewLinearWithConfig(sizes[i], sizes[i+1], backend, lcfg))
		if i < len(sizes)-2 {
			seq.Add(cfg.Activation(backend))
		}
	}

	cfg.Layers = hidden
	return &FeedForward{Sequential: seq, cfg: cfg}, nil
}

// Config returns the resolved configuration.
func (f *FeedForward) Config() FeedForwardConfig {
	return f.cfg
}
