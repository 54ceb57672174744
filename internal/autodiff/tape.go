package autodiff

import (
	"github.com/dario-coscia/PINA/internal/autodiff/ops"
	"github.com/dario-coscia/PINA/internal/tensor"
)

// GradientTape records operations during the forward pass and computes
// gradients during the backward pass using reverse-mode automatic differentiation.
//
// Usage:
//
//	tape := NewGradientTape()
//	tape.StartRecording()
//	// ... perform operations ...
//	gradients := tape.Backward(output, outputGrad, backend)
type GradientTape struct {
	operations []ops.Operation                // Recorded operations (in execution order)
	produced   map[*tensor.RawTensor]struct{} // Outputs of recorded operations
	watched    map[*tensor.RawTensor]struct{} // Leaves marked with RequireGrad
	recording  bool                           // Whether tape is currently recording
}

// NewGradientTape creates a new gradient tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{
		operations: make([]ops.Operation, 0, 64),
		produced:   make(map[*tensor.RawTensor]struct{}),
		watched:    make(map[*tensor.RawTensor]struct{}),
	}
}

// StartRecording enables operation recording.
func (t *GradientTape) StartRecording() {
	t.recording = true
}

// StopRecording disables operation recording.
func (t *GradientTape) StopRecording() {
	t.recording = false
}

// IsRecording returns true if the tape is currently recording operations.
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record adds an operation to the tape.
// Only records if the tape is currently recording.
func (t *GradientTape) Record(op ops.Operation) {
	if t.recording {
		t.operations = append(t.operations, op)
		t.produced[op.Output()] = struct{}{}
	}
}

// Watch marks a leaf tensor as requiring gradients.
func (t *GradientTape) Watch(raw *tensor.RawTensor) {
	t.watched[raw] = struct{}{}
}

// IsTracked reports whether raw is a watched leaf or the output of a
// recorded operation.
func (t *GradientTape) IsTracked(raw *tensor.RawTensor) bool {
	if _, ok := t.watched[raw]; ok {
		return true
	}
	_, ok := t.produced[raw]
	return ok
}

// Clear resets the tape, removing all recorded operations and watched leaves.
// Recording state is preserved.
func (t *GradientTape) Clear() {
	clear(t.operations)
	t.operations = t.operations[:0]
	clear(t.produced)
	clear(t.watched)
}

// NumOps returns the number of recorded operations.
func (t *GradientTape) NumOps() int {
	return len(t.operations)
}

// Backward computes gradients of output for every tensor on the tape by
// walking the tape in reverse.
//
// Algorithm:
//  1. Start with the output gradient (typically ones for scalar loss)
//  2. Walk operations in reverse order
//  3. For each operation, compute input gradients using chain rule
//  4. Accumulate gradients when the same tensor is used multiple times
//
// Recording is suspended during the walk, so the returned gradients are
// constants. Returns a map from RawTensor to its accumulated gradient.
func (t *GradientTape) Backward(
	output, outputGrad *tensor.RawTensor,
	backend tensor.Backend,
) map[*tensor.RawTensor]*tensor.RawTensor {
	wasRecording := t.recording
	t.recording = false
	defer func() {
		t.recording = wasRecording
	}()

	return t.walk(output, outputGrad, backend, nil)
}

// walk runs the reverse pass over the operations recorded so far. Operations
// appended while walking (backward ops recorded with createGraph) are not
// visited. When relevant is non-nil, only operations whose output is in the
// set propagate gradients.
func (t *GradientTape) walk(
	output, outputGrad *tensor.RawTensor,
	backend tensor.Backend,
	relevant map[*tensor.RawTensor]struct{},
) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	grads[output] = outputGrad

	n := len(t.operations)
	for i := n - 1; i >= 0; i-- {
		op := t.operations[i]
		opOutput := op.Output()
		if relevant != nil {
			if _, ok := relevant[opOutput]; !ok {
				continue
			}
		}
		opOutputGrad, hasGrad := grads[opOutput]
		if !hasGrad {
			continue
		}

		inputGrads := op.Backward(opOutputGrad, backend)
		for j, input := range op.Inputs() {
			if j >= len(inputGrads) || inputGrads[j] == nil {
				continue
			}
			if relevant != nil {
				if _, ok := relevant[input]; !ok {
					continue
				}
			}
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, inputGrads[j])
			} else {
				grads[input] = inputGrads[j]
			}
		}
	}

	return grads
}

// dependents returns the set of tensors on the tape that depend on input,
// input included.
func (t *GradientTape) dependents(input *tensor.RawTensor) map[*tensor.RawTensor]struct{} {
	set := map[*tensor.RawTensor]struct{}{input: {}}
	for _, op := range t.operations {
		for _, in := range op.Inputs() {
			if _, ok := set[in]; ok {
				set[op.Output()] = struct{}{}
				break
			}
		}
	}
	return set
}
