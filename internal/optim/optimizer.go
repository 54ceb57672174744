// Package optim implements optimization algorithms for training neural networks.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//   - Scheduler: learning rate schedules (ConstantLR, StepLR)
//
// Example usage:
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
//
//	for epoch := range epochs {
//	    backend.Tape().Clear()
//	    loss := lossFunc.Forward(model.Forward(input), targets)
//	    grads := autodiff.Backward(loss, backend)
//	    optimizer.Step(grads)
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"fmt"
	"strings"

	"github.com/dario-coscia/PINA/internal/nn"
	"github.com/dario-coscia/PINA/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
//
// Optimizers update model parameters based on computed gradients to
// minimize the loss function during training.
type Optimizer interface {
	// Step applies gradient updates to all parameters.
	//
	// Takes a gradient map from Backward() and updates parameters in-place.
	// Parameters missing from the map are skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears all parameter gradients.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float64

	// SetLR updates the learning rate. Schedulers call it every epoch.
	SetLR(lr float64)
}

// Factory builds an optimizer for a parameter list. Solvers keep factories
// so the optimizer can be rebuilt after the model changes precision.
type Factory func(params []*nn.Parameter) Optimizer

// NewFactory resolves an optimizer by name ("adam" or "sgd").
// A zero lr keeps the optimizer's default.
func NewFactory(name string, lr float64) (Factory, error) {
	switch strings.ToLower(name) {
	case "adam", "":
		return func(params []*nn.Parameter) Optimizer {
			return NewAdam(params, AdamConfig{LR: lr})
		}, nil
	case "sgd":
		return func(params []*nn.Parameter) Optimizer {
			return NewSGD(params, SGDConfig{LR: lr})
		}, nil
	default:
		return nil, fmt.Errorf("unknown optimizer %q", name)
	}
}

// getGradient safely retrieves gradient for a parameter.
//
// Returns nil if no gradient is found (parameter wasn't part of computation graph).
func getGradient(param *nn.Parameter, grads map[*tensor.RawTensor]*tensor.RawTensor) *tensor.RawTensor {
	if param == nil {
		return nil
	}
	return grads[param.Tensor()]
}

func zeroGrad(params []*nn.Parameter) {
	for _, param := range params {
		param.ZeroGrad()
	}
}
