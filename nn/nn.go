// Copyright 2025 The PINA Authors. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network building blocks.
//
// Modules are composed from Linear layers and activations:
//
//	model, err := nn.NewFeedForward(nn.FeedForwardConfig{
//	    InputDimensions:  2,
//	    OutputDimensions: 1,
//	    Layers:           []int{20, 20},
//	}, backend)
//
// Parameters are registered with the backend's tape by the caller; MSELoss
// and LpLoss build their value from backend ops so they can be
// differentiated.
package nn

import (
	"math/rand"

	"github.com/dario-coscia/PINA/internal/nn"
	"github.com/dario-coscia/PINA/tensor"
)

// Module is the interface implemented by all layers.
type Module = nn.Module

// Parameter is a trainable tensor with an optional gradient.
type Parameter = nn.Parameter

// Linear is a fully connected layer y = x W^T + b.
type Linear = nn.Linear

// LinearConfig holds optional Linear settings.
type LinearConfig = nn.LinearConfig

// Sequential chains modules.
type Sequential = nn.Sequential

// FeedForward is a multi-layer perceptron.
type FeedForward = nn.FeedForward

// FeedForwardConfig configures a FeedForward network.
type FeedForwardConfig = nn.FeedForwardConfig

// Activation builds an activation module for a backend.
type Activation = nn.Activation

// Loss compares predictions to targets.
type Loss = nn.Loss

// MSELoss is the mean squared error.
type MSELoss = nn.MSELoss

// LpLoss is the mean row-wise Lp norm of the error.
type LpLoss = nn.LpLoss

// NewParameter wraps a tensor as a trainable parameter.
func NewParameter(name string, t *tensor.RawTensor) *Parameter {
	return nn.NewParameter(name, t)
}

// NewLinear creates a Linear layer with Xavier initialization.
func NewLinear(inFeatures, outFeatures int, backend tensor.Backend, rng *rand.Rand) *Linear {
	return nn.NewLinear(inFeatures, outFeatures, backend, rng)
}

// NewSequential chains modules in order.
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// NewFeedForward builds a multi-layer perceptron.
func NewFeedForward(cfg FeedForwardConfig, backend tensor.Backend) (*FeedForward, error) {
	return nn.NewFeedForward(cfg, backend)
}

// ActivationByName resolves "tanh", "sigmoid", "softplus", "relu" or "sin".
func ActivationByName(name string) (Activation, error) {
	return nn.ActivationByName(name)
}

// NewMSELoss creates a mean squared error loss.
func NewMSELoss(backend tensor.Backend) *MSELoss {
	return nn.NewMSELoss(backend)
}

// NewLpLoss creates an Lp loss. Panics if p < 1.
func NewLpLoss(backend tensor.Backend, p float64, relative bool) *LpLoss {
	return nn.NewLpLoss(backend, p, relative)
}

// Cast converts every parameter of m to dtype.
func Cast(m Module, dtype tensor.DataType) {
	nn.Cast(m, dtype)
}

// NumParameters counts the scalar parameters of m.
func NumParameters(m Module) int {
	return nn.NumParameters(m)
}
