package solver

import (
	"fmt"

	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/nn"
	"github.com/dario-coscia/PINA/problem"
	"github.com/dario-coscia/PINA/tensor"
)

// SupervisedSolver fits the model to the output points of data
// conditions. Other conditions are rejected.
type SupervisedSolver struct {
	*base
}

var _ Solver = (*SupervisedSolver)(nil)

// NewSupervisedSolver creates a supervised solver. Every condition of p
// must be a data condition.
func NewSupervisedSolver(p *problem.Problem, model nn.Module, cfg Config) (*SupervisedSolver, error) {
	b, err := newBase(p, model, cfg)
	if err != nil {
		return nil, err
	}
	data := conditionsOfKind(p, problem.DataKind)
	if len(data) != len(p.ConditionNames()) {
		return nil, fmt.Errorf("%w: supervised solver needs data conditions only, got %v",
			label.ErrValue, p.ConditionNames())
	}
	return &SupervisedSolver{base: b}, nil
}

// TrainingStep fits every data condition once.
func (s *SupervisedSolver) TrainingStep() (Losses, error) {
	return s.step(s.problem.ConditionNames(), func(name string) (*tensor.RawTensor, error) {
		in, err := s.inputs(name)
		if err != nil {
			return nil, err
		}
		return s.dataLoss(name, in)
	})
}
