// Copyright 2025 The PINA Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides optimization algorithms and learning rate
// schedules.
//
//	optimizer := optim.NewAdam(model.Parameters(), optim.AdamConfig{LR: 0.001})
//	scheduler := optim.NewStepLR(optimizer, optim.StepLRConfig{StepSize: 100, Gamma: 0.5})
//
//	for epoch := range epochs {
//	    grads := autodiff.Backward(loss, backend)
//	    optimizer.Step(grads)
//	    optimizer.ZeroGrad()
//	    scheduler.Step()
//	}
package optim

import (
	"github.com/dario-coscia/PINA/internal/optim"
	"github.com/dario-coscia/PINA/nn"
)

// Optimizer interface defines the common interface for all optimizers.
type Optimizer = optim.Optimizer

// Factory builds an optimizer for a parameter list.
type Factory = optim.Factory

// SGD represents the SGD optimizer with optional momentum.
type SGD = optim.SGD

// SGDConfig contains configuration for SGD optimizer.
type SGDConfig = optim.SGDConfig

// Adam represents the Adam optimizer.
type Adam = optim.Adam

// AdamConfig contains configuration for Adam optimizer.
type AdamConfig = optim.AdamConfig

// Scheduler adjusts the learning rate once per epoch.
type Scheduler = optim.Scheduler

// SchedulerFactory binds a schedule to an optimizer.
type SchedulerFactory = optim.SchedulerFactory

// ConstantLR scales the learning rate for a fixed number of epochs.
type ConstantLR = optim.ConstantLR

// ConstantLRConfig configures ConstantLR.
type ConstantLRConfig = optim.ConstantLRConfig

// StepLR decays the learning rate every StepSize epochs.
type StepLR = optim.StepLR

// StepLRConfig configures StepLR.
type StepLRConfig = optim.StepLRConfig

// NewSGD creates a new SGD optimizer.
func NewSGD(params []*nn.Parameter, config SGDConfig) *SGD {
	return optim.NewSGD(params, config)
}

// NewAdam creates a new Adam optimizer with bias correction.
func NewAdam(params []*nn.Parameter, config AdamConfig) *Adam {
	return optim.NewAdam(params, config)
}

// NewFactory resolves an optimizer by name ("adam" or "sgd").
func NewFactory(name string, lr float64) (Factory, error) {
	return optim.NewFactory(name, lr)
}

// NewConstantLR creates a ConstantLR schedule.
func NewConstantLR(opt Optimizer, config ConstantLRConfig) *ConstantLR {
	return optim.NewConstantLR(opt, config)
}

// NewStepLR creates a StepLR schedule.
func NewStepLR(opt Optimizer, config StepLRConfig) *StepLR {
	return optim.NewStepLR(opt, config)
}
