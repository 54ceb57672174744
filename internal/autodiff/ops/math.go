package ops

import "github.com/dario-coscia/PINA/internal/tensor"

// ExpOp represents output = e^x.
//
// Backward pass: grad_x = outputGrad * output
type ExpOp struct{ node }

// NewExpOp creates a new ExpOp.
func NewExpOp(x, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{unary(x, output)}
}

// Backward computes the input gradient for exp.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

// LogOp represents output = ln(x).
//
// Backward pass: grad_x = outputGrad / x
type LogOp struct{ node }

// NewLogOp creates a new LogOp.
func NewLogOp(x, output *tensor.RawTensor) *LogOp {
	return &LogOp{unary(x, output)}
}

// Backward computes the input gradient for log.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.inputs[0])}
}

// SinOp represents output = sin(x).
//
// Backward pass: grad_x = outputGrad * cos(x)
type SinOp struct{ node }

// NewSinOp creates a new SinOp.
func NewSinOp(x, output *tensor.RawTensor) *SinOp {
	return &SinOp{unary(x, output)}
}

// Backward computes the input gradient for sin.
func (op *SinOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Cos(op.inputs[0]))}
}

// CosOp represents output = cos(x).
//
// Backward pass: grad_x = -outputGrad * sin(x)
type CosOp struct{ node }

// NewCosOp creates a new CosOp.
func NewCosOp(x, output *tensor.RawTensor) *CosOp {
	return &CosOp{unary(x, output)}
}

// Backward computes the input gradient for cos.
func (op *CosOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Neg(backend.Mul(outputGrad, backend.Sin(op.inputs[0])))}
}
