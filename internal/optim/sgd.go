package optim

import (
	"fmt"

	"github.com/dario-coscia/PINA/internal/nn"
	"github.com/dario-coscia/PINA/internal/tensor"
)

// SGD implements Stochastic Gradient Descent optimizer with optional momentum.
//
// Update rule without momentum:
//
//	param = param - lr * gradient
//
// Update rule with momentum:
//
//	velocity = momentum * velocity + gradient
//	param = param - lr * velocity
type SGD struct {
	params     []*nn.Parameter
	lr         float64
	momentum   float64
	velocities map[*nn.Parameter][]float64
}

// SGDConfig holds configuration for SGD optimizer.
type SGDConfig struct {
	LR       float64 // Learning rate (default: 0.01)
	Momentum float64 // Momentum factor (default: 0.0, range: [0, 1))
}

// NewSGD creates a new SGD optimizer.
//
// Panics if the momentum is outside [0, 1).
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	if config.LR == 0 {
		config.LR = 0.01
	}
	if config.Momentum < 0 || config.Momentum >= 1 {
		panic(fmt.Sprintf("SGD: momentum must be in [0, 1), got %f", config.Momentum))
	}

	return &SGD{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter][]float64),
	}
}

// Step performs a single optimization step.
func (s *SGD) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, param := range s.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}
		param.SetGrad(grad)

		gradData := grad.Float64s()
		paramData := param.Tensor().Float64s()

		if s.momentum == 0 {
			for i := range paramData {
				paramData[i] -= s.lr * gradData[i]
			}
		} else {
			vel, ok := s.velocities[param]
			if !ok {
				vel = make([]float64, len(paramData))
				s.velocities[param] = vel
			}
			for i := range paramData {
				vel[i] = s.momentum*vel[i] + gradData[i]
				paramData[i] -= s.lr * vel[i]
			}
		}
		param.Tensor().SetFloat64s(paramData)
	}
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD) ZeroGrad() {
	zeroGrad(s.params)
}

// GetLR returns the current learning rate.
func (s *SGD) GetLR() float64 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD) SetLR(lr float64) {
	s.lr = lr
}
