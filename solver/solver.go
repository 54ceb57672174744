// Package solver turns a problem and a model into a trainable objective.
//
// A solver evaluates every condition of its problem, combines the
// per-condition losses and updates the model with an optimizer. PINN
// minimises equation residuals at sampled points; SupervisedSolver fits
// input/output pairs.
package solver

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/dario-coscia/PINA/autodiff"
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/nn"
	"github.com/dario-coscia/PINA/optim"
	"github.com/dario-coscia/PINA/problem"
	"github.com/dario-coscia/PINA/tensor"
)

// Solver is what the trainer drives.
type Solver interface {
	Problem() *problem.Problem
	Model() nn.Module
	Backend() autodiff.Differentiator
	Forward(x *label.LabelTensor) (*label.LabelTensor, error)
	TrainingStep() (Losses, error)
	PointwiseResidual(name string, points *label.LabelTensor) ([]float64, error)
	Cast(dtype tensor.DataType)
	DType() tensor.DataType
	Optimizer() optim.Optimizer
	SetOptimizer(factory optim.Factory)
}

// Losses are the values of one training step.
type Losses struct {
	Total      float64
	Conditions map[string]float64
}

// Config holds the training objects of a solver.
//
// Backend is required and must be the backend the model was built on.
// Nil fields are replaced with defaults:
//   - Loss: MSE
//   - Optimizer: Adam, lr 1e-3
//   - Scheduler: ConstantLR, factor 1
//
// Weights scale condition losses by name; missing names weigh 1.
type Config struct {
	Backend   autodiff.Differentiator
	Loss      nn.Loss
	Optimizer optim.Factory
	Scheduler optim.SchedulerFactory
	Weights   map[string]float64
}

// DefaultConfig returns the default training objects for backend.
func DefaultConfig(backend autodiff.Differentiator) Config {
	return Config{
		Backend: backend,
		Loss:    nn.NewMSELoss(backend),
		Optimizer: func(params []*nn.Parameter) optim.Optimizer {
			return optim.NewAdam(params, optim.AdamConfig{LR: 1e-3})
		},
		Scheduler: func(opt optim.Optimizer) optim.Scheduler {
			return optim.NewConstantLR(opt, optim.ConstantLRConfig{Factor: 1})
		},
	}
}

// base holds what PINN and SupervisedSolver share.
type base struct {
	problem *problem.Problem
	model   nn.Module
	backend autodiff.Differentiator
	loss    nn.Loss
	weights map[string]float64
	dtype   tensor.DataType

	optFactory   optim.Factory
	schedFactory optim.SchedulerFactory
	optimizer    optim.Optimizer
	scheduler    optim.Scheduler
}

func newBase(p *problem.Problem, model nn.Module, cfg Config) (*base, error) {
	if p == nil || model == nil {
		return nil, fmt.Errorf("%w: solver needs a problem and a model", label.ErrValue)
	}
	if cfg.Backend == nil {
		return nil, fmt.Errorf("%w: solver needs a differentiating backend", label.ErrValue)
	}
	if len(p.ConditionNames()) == 0 {
		return nil, fmt.Errorf("%w: problem has no conditions", label.ErrValue)
	}
	defaults := DefaultConfig(cfg.Backend)
	if cfg.Loss == nil {
		cfg.Loss = defaults.Loss
	}
	if cfg.Optimizer == nil {
		cfg.Optimizer = defaults.Optimizer
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = defaults.Scheduler
	}
	for name, w := range cfg.Weights {
		if _, ok := p.Condition(name); !ok {
			return nil, fmt.Errorf("%w: weight for unknown condition %q", label.ErrLookup, name)
		}
		if w < 0 || math.IsNaN(w) {
			return nil, fmt.Errorf("%w: weight of %q must be non-negative, got %v", label.ErrValue, name, w)
		}
	}

	dtype := tensor.Float32
	if params := model.Parameters(); len(params) > 0 {
		dtype = params[0].Tensor().DType()
	}
	b := &base{
		problem:      p,
		model:        model,
		backend:      cfg.Backend,
		loss:         cfg.Loss,
		weights:      maps.Clone(cfg.Weights),
		dtype:        dtype,
		optFactory:   cfg.Optimizer,
		schedFactory: cfg.Scheduler,
	}
	b.bindOptimizer()
	return b, nil
}

func (b *base) bindOptimizer() {
	b.optimizer = b.optFactory(b.model.Parameters())
	b.scheduler = b.schedFactory(b.optimizer)
}

// Problem returns the solved problem.
func (b *base) Problem() *problem.Problem { return b.problem }

// Model returns the surrogate model.
func (b *base) Model() nn.Module { return b.model }

// Backend returns the differentiating backend.
func (b *base) Backend() autodiff.Differentiator { return b.backend }

// DType returns the model precision.
func (b *base) DType() tensor.DataType { return b.dtype }

// Optimizer returns the current optimizer.
func (b *base) Optimizer() optim.Optimizer { return b.optimizer }

// SetOptimizer replaces the optimizer and rebinds the scheduler to it.
func (b *base) SetOptimizer(factory optim.Factory) {
	b.optFactory = factory
	b.bindOptimizer()
}

// Cast converts the model to dtype and rebuilds the optimizer state.
func (b *base) Cast(dtype tensor.DataType) {
	nn.Cast(b.model, dtype)
	b.dtype = dtype
	b.bindOptimizer()
}

// Forward evaluates the model on x. Columns are taken in the order of the
// problem's input variables; output columns are labeled with the output
// variables.
func (b *base) Forward(x *label.LabelTensor) (out *label.LabelTensor, err error) {
	defer recoverRuntime(&err)
	in, err := x.WithBackend(b.backend).Extract(b.problem.InputVariables()...)
	if err != nil {
		return nil, err
	}
	raw := b.model.Forward(in.Cast(b.dtype).Raw())
	return label.New(raw, b.problem.OutputVariables(), b.backend)
}

// step runs one optimisation step over the named conditions, using
// condLoss to build each scalar loss tensor.
func (b *base) step(names []string, condLoss func(name string) (*tensor.RawTensor, error)) (losses Losses, err error) {
	defer recoverRuntime(&err)
	tape := b.backend.GetTape()
	tape.Clear()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	losses.Conditions = make(map[string]float64, len(names))
	var total *tensor.RawTensor
	for _, name := range names {
		l, err := condLoss(name)
		if err != nil {
			return Losses{}, fmt.Errorf("condition %q: %w", name, err)
		}
		losses.Conditions[name] = l.Float64s()[0]
		if w, ok := b.weights[name]; ok {
			l = b.backend.MulScalar(l, w)
		}
		if total == nil {
			total = l
		} else {
			total = b.backend.Add(total, l)
		}
	}
	losses.Total = total.Float64s()[0]

	grads := autodiff.Backward(total, b.backend)
	b.optimizer.ZeroGrad()
	b.optimizer.Step(grads)
	b.scheduler.Step()
	return losses, nil
}

// inputs returns the stored points of a condition bound to the solver
// backend and watched for gradients.
func (b *base) inputs(name string) (*label.LabelTensor, error) {
	pts, err := b.problem.InputPoints(name)
	if err != nil {
		return nil, err
	}
	pts = pts.WithBackend(b.backend).Cast(b.dtype)
	if err := pts.RequireGrad(); err != nil {
		return nil, err
	}
	return pts, nil
}

func (b *base) residualLoss(c *problem.Condition, in *label.LabelTensor) (*tensor.RawTensor, error) {
	out, err := b.Forward(in)
	if err != nil {
		return nil, err
	}
	r, err := c.Equation().Residual(in, out)
	if err != nil {
		return nil, err
	}
	zeros := tensor.Zeros(r.Raw().Shape(), r.DType(), b.backend.Device())
	return b.loss.Forward(r.Raw(), zeros), nil
}

func (b *base) dataLoss(name string, in *label.LabelTensor) (*tensor.RawTensor, error) {
	target, err := b.problem.OutputPoints(name)
	if err != nil {
		return nil, err
	}
	out, err := b.Forward(in)
	if err != nil {
		return nil, err
	}
	pred, err := out.Extract(target.Labels()...)
	if err != nil {
		return nil, err
	}
	return b.loss.Forward(pred.Raw(), target.Cast(b.dtype).Raw()), nil
}

// PointwiseResidual returns the mean absolute residual of every point of
// the named condition evaluated at points.
func (b *base) PointwiseResidual(name string, points *label.LabelTensor) (mags []float64, err error) {
	defer recoverRuntime(&err)
	c, ok := b.problem.Condition(name)
	if !ok {
		return nil, fmt.Errorf("%w: no condition %q", label.ErrLookup, name)
	}
	if c.Equation() == nil {
		return nil, fmt.Errorf("%w: condition %q has no equation", label.ErrValue, name)
	}

	tape := b.backend.GetTape()
	tape.Clear()
	tape.StartRecording()
	defer func() {
		tape.StopRecording()
		tape.Clear()
	}()

	in := points.WithBackend(b.backend).Cast(b.dtype)
	if err := in.RequireGrad(); err != nil {
		return nil, err
	}
	out, err := b.Forward(in)
	if err != nil {
		return nil, err
	}
	r, err := c.Equation().Residual(in, out)
	if err != nil {
		return nil, err
	}

	return r.Abs().SumColumns("residual").MulScalar(1 / float64(r.Cols())).Float64s(), nil
}

func recoverRuntime(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", label.ErrRuntime, r)
	}
}

func conditionsOfKind(p *problem.Problem, kinds ...problem.Kind) []string {
	var names []string
	for _, name := range p.ConditionNames() {
		c, _ := p.Condition(name)
		if slices.Contains(kinds, c.Kind()) {
			names = append(names, name)
		}
	}
	return names
}
