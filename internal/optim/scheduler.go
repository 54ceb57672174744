package optim

import "math"

// Scheduler adjusts an optimizer's learning rate once per epoch.
type Scheduler interface {
	// Step advances the schedule by one epoch and updates the optimizer.
	Step()
	// LastLR returns the learning rate set by the latest step.
	LastLR() float64
}

// SchedulerFactory binds a schedule to an optimizer.
type SchedulerFactory func(opt Optimizer) Scheduler

// ConstantLR multiplies the base learning rate by Factor for the first
// TotalIters epochs and restores it afterwards.
type ConstantLR struct {
	opt    Optimizer
	base   float64
	factor float64
	total  int
	epoch  int
}

// ConstantLRConfig holds configuration for ConstantLR.
type ConstantLRConfig struct {
	Factor     float64 // Multiplier applied while epoch < TotalIters (default: 1)
	TotalIters int     // Number of epochs the factor applies
}

// NewConstantLR creates a ConstantLR schedule and applies the initial factor.
func NewConstantLR(opt Optimizer, config ConstantLRConfig) *ConstantLR {
	if config.Factor == 0 {
		config.Factor = 1
	}
	s := &ConstantLR{opt: opt, base: opt.GetLR(), factor: config.Factor, total: config.TotalIters}
	s.apply()
	return s
}

// Step advances the schedule by one epoch.
func (s *ConstantLR) Step() {
	s.epoch++
	s.apply()
}

// LastLR returns the current learning rate.
func (s *ConstantLR) LastLR() float64 {
	return s.opt.GetLR()
}

func (s *ConstantLR) apply() {
	if s.epoch < s.total {
		s.opt.SetLR(s.base * s.factor)
		return
	}
	s.opt.SetLR(s.base)
}

// StepLR decays the learning rate by Gamma every StepSize epochs.
type StepLR struct {
	opt   Optimizer
	base  float64
	size  int
	gamma float64
	epoch int
}

// StepLRConfig holds configuration for StepLR.
type StepLRConfig struct {
	StepSize int     // Epochs between decays (default: 1)
	Gamma    float64 // Multiplicative decay (default: 0.1)
}

// NewStepLR creates a StepLR schedule.
func NewStepLR(opt Optimizer, config StepLRConfig) *StepLR {
	if config.StepSize <= 0 {
		config.StepSize = 1
	}
	if config.Gamma == 0 {
		config.Gamma = 0.1
	}
	return &StepLR{opt: opt, base: opt.GetLR(), size: config.StepSize, gamma: config.Gamma}
}

// Step advances the schedule by one epoch.
func (s *StepLR) Step() {
	s.epoch++
	s.opt.SetLR(s.base * math.Pow(s.gamma, float64(s.epoch/s.size)))
}

// LastLR returns the current learning rate.
func (s *StepLR) LastLR() float64 {
	return s.opt.GetLR()
}
