package nn

import (
	"fmt"
	"math"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// Loss maps predictions and targets of equal shape to a scalar tensor.
// The computation goes through the backend so it is differentiable.
type Loss interface {
	Forward(predictions, targets *tensor.RawTensor) *tensor.RawTensor
}

// MSELoss computes Mean Squared Error loss.
//
// Loss = mean((predictions - targets)²)
//
// Example:
//
//	mse := nn.NewMSELoss(backend)
//	loss := mse.Forward(predictions, targets)
type MSELoss struct {
	backend tensor.Backend
}

// NewMSELoss creates a new MSE loss function.
func NewMSELoss(backend tensor.Backend) *MSELoss {
	return &MSELoss{
		backend: backend,
	}
}

// Forward computes the MSE loss as a scalar tensor.
func (m *MSELoss) Forward(predictions, targets *tensor.RawTensor) *tensor.RawTensor {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("MSELoss: predictions %v and targets %v must have the same shape",
			predictions.Shape(), targets.Shape()))
	}

	diff := m.backend.Sub(predictions, targets)
	sum := m.backend.Sum(m.backend.Mul(diff, diff))
	return m.backend.MulScalar(sum, 1/float64(predictions.NumElements()))
}

// LpLoss computes the mean over rows of the p-norm of the row error:
//
//	Loss = mean_i (sum_j |pred_ij - target_ij|^p)^(1/p)
//
// With Relative set, each row norm is divided by the target row norm.
type LpLoss struct {
	backend  tensor.Backend
	p        float64
	relative bool
}

// NewLpLoss creates an Lp loss. p must be >= 1.
func NewLpLoss(backend tensor.Backend, p float64, relative bool) *LpLoss {
	if p < 1 || math.IsInf(p, 0) {
		panic(fmt.Sprintf("LpLoss: p must be a finite value >= 1, got %v", p))
	}
	return &LpLoss{backend: backend, p: p, relative: relative}
}

// Forward computes the Lp loss as a scalar tensor.
func (l *LpLoss) Forward(predictions, targets *tensor.RawTensor) *tensor.RawTensor {
	if !predictions.Shape().Equal(targets.Shape()) {
		panic(fmt.Sprintf("LpLoss: predictions %v and targets %v must have the same shape",
			predictions.Shape(), targets.Shape()))
	}

	norm := l.rowNorm(l.backend.Sub(predictions, targets))
	if l.relative {
		norm = l.backend.Div(norm, l.backend.AddScalar(l.rowNorm(targets), 1e-12))
	}
	rows := predictions.Shape()[0]
	return l.backend.MulScalar(l.backend.Sum(norm), 1/float64(rows))
}

// rowNorm returns (sum_j |x_ij|^p)^(1/p) with shape [rows, 1]. |x|^p is
// written as (x²)^(p/2) so it stays differentiable through PowScalar.
func (l *LpLoss) rowNorm(x *tensor.RawTensor) *tensor.RawTensor {
	abs := l.backend.PowScalar(l.backend.Mul(x, x), l.p/2)
	return l.backend.PowScalar(l.backend.SumDim(abs, -1, true), 1/l.p)
}
