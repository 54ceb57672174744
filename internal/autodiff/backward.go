package autodiff

import (
	"errors"
	"fmt"

	"github.com/dario-coscia/PINA/internal/tensor"
)

var (
	// ErrNotRecording is returned by Grad when the tape is not recording.
	ErrNotRecording = errors.New("autodiff: tape is not recording")

	// ErrNotTracked is returned by Grad when the input is neither a tracked
	// leaf nor the output of a recorded operation.
	ErrNotTracked = errors.New("autodiff: input is not tracked for gradients")
)

// BackwardCapable is an interface for backends that support backward pass.
// AutodiffBackend implements this interface.
type BackwardCapable interface {
	tensor.Backend
	// GetTape returns the gradient tape for backward computation.
	GetTape() *GradientTape
}

// Differentiator is a backend that can differentiate a recorded output with
// respect to a tracked input. Operator code depends on this interface only.
type Differentiator interface {
	BackwardCapable
	RequireGrad(raw *tensor.RawTensor)
	IsTracked(raw *tensor.RawTensor) bool
	Grad(output, input, outputGrad *tensor.RawTensor, createGraph bool) (*tensor.RawTensor, error)
}

var _ Differentiator = (*AutodiffBackend[tensor.Backend])(nil)

// GetTape returns the gradient tape (implements BackwardCapable interface).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward computes gradients of a scalar output for every tensor recorded
// on the backend's tape.
//
// Parameters:
//   - output: The output tensor to compute gradients for (typically a loss)
//   - backend: The backend (must be AutodiffBackend or implement BackwardCapable)
//
// Returns a map from RawTensor to its gradient.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	loss := backend.Sum(backend.Mul(w, w))
//	gradients := autodiff.Backward(loss, backend)
//	grad := gradients[w] // 2w
func Backward(output *tensor.RawTensor, backend BackwardCapable) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()

	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}
	if !output.DType().IsFloat() {
		panic(fmt.Sprintf("backward: unsupported dtype %s (only float32/float64 supported)", output.DType()))
	}

	outputGrad := tensor.Ones(output.Shape(), output.DType(), backend.Device())
	return tape.Backward(output, outputGrad, backend)
}

// Grad computes the gradient of output with respect to input, seeded with
// outputGrad (ones when nil). Only operations that depend on input are
// differentiated.
//
// With createGraph the backward computation is recorded on the tape, so the
// returned gradient can be passed to Grad again. Without it the result is a
// constant.
//
// A tracked input that output does not depend on gets a zero gradient.
func (b *AutodiffBackend[B]) Grad(output, input, outputGrad *tensor.RawTensor, createGraph bool) (*tensor.RawTensor, error) {
	if !b.tape.IsRecording() {
		return nil, ErrNotRecording
	}
	if !b.tape.IsTracked(input) {
		return nil, fmt.Errorf("%w: %s", ErrNotTracked, input)
	}
	if outputGrad == nil {
		outputGrad = tensor.Ones(output.Shape(), output.DType(), b.Device())
	} else if !outputGrad.Shape().Equal(output.Shape()) {
		return nil, fmt.Errorf("autodiff: output gradient shape %v does not match output shape %v",
			outputGrad.Shape(), output.Shape())
	}
	if output == input {
		return outputGrad, nil
	}

	var backend tensor.Backend = b.inner
	if createGraph {
		backend = b
	}

	grads := b.tape.walk(output, outputGrad, backend, b.tape.dependents(input))
	if grad, ok := grads[input]; ok {
		return grad, nil
	}
	return tensor.Zeros(input.Shape(), input.DType(), b.Device()), nil
}
