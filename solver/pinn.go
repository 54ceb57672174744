package solver

import (
	"github.com/dario-coscia/PINA/nn"
	"github.com/dario-coscia/PINA/problem"
	"github.com/dario-coscia/PINA/tensor"
)

// PINN is a physics-informed solver: every condition with an equation
// contributes the loss of its residual against zero, data conditions
// without one contribute the loss against their output points.
type PINN struct {
	*base
}

var _ Solver = (*PINN)(nil)

// NewPINN creates a PINN for p with the surrogate model.
func NewPINN(p *problem.Problem, model nn.Module, cfg Config) (*PINN, error) {
	b, err := newBase(p, model, cfg)
	if err != nil {
		return nil, err
	}
	return &PINN{base: b}, nil
}

// TrainingStep evaluates every condition, backpropagates the weighted sum
// of their losses and updates the model. A failing condition aborts the
// step without touching the model.
func (s *PINN) TrainingStep() (Losses, error) {
	return s.step(s.problem.ConditionNames(), func(name string) (*tensor.RawTensor, error) {
		c, _ := s.problem.Condition(name)
		in, err := s.inputs(name)
		if err != nil {
			return nil, err
		}
		if c.Kind() == problem.DataKind && c.Equation() == nil {
			return s.dataLoss(name, in)
		}
		return s.residualLoss(c, in)
	})
}
