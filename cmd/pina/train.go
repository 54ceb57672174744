package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"math"
	"math/rand"
	"slices"

	"github.com/dario-coscia/PINA/autodiff"
	"github.com/dario-coscia/PINA/backend/cpu"
	"github.com/dario-coscia/PINA/callbacks"
	"github.com/dario-coscia/PINA/geometry"
	"github.com/dario-coscia/PINA/internal/config"
	"github.com/dario-coscia/PINA/internal/serialization"
	"github.com/dario-coscia/PINA/internal/zoo"
	"github.com/dario-coscia/PINA/nn"
	"github.com/dario-coscia/PINA/optim"
	"github.com/dario-coscia/PINA/problem"
	"github.com/dario-coscia/PINA/solver"
	"github.com/dario-coscia/PINA/trainer"
)

// report summarises a finished run.
type report struct {
	problem    string
	runID      string
	epochs     int
	parameters int
	metrics    map[string]float64
	maxError   float64 // NaN without a known solution
}

func (r *report) write(w io.Writer) {
	fmt.Fprintf(w, "problem:    %s\n", r.problem)
	fmt.Fprintf(w, "run:        %s\n", r.runID)
	fmt.Fprintf(w, "epochs:     %d\n", r.epochs)
	fmt.Fprintf(w, "parameters: %d\n", r.parameters)
	for _, name := range slices.Sorted(maps.Keys(r.metrics)) {
		fmt.Fprintf(w, "%-11s %.6g\n", name+":", r.metrics[name])
	}
	if !math.IsNaN(r.maxError) {
		fmt.Fprintf(w, "max error:  %.6g\n", r.maxError)
	}
}

func train(ctx context.Context, cfg *config.Run, logger *slog.Logger) (*report, error) {
	dtype, err := trainer.ParsePrecision(cfg.Precision)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	p, err := zoo.New(cfg.Problem, zoo.Options{DType: dtype, Rand: rng})
	if err != nil {
		return nil, err
	}
	for _, d := range cfg.Discretisation {
		mode, err := geometry.ParseMode(d.Mode)
		if err != nil {
			return nil, err
		}
		if err := p.DiscretiseDomain(d.N, mode, d.Variables, d.Locations); err != nil {
			return nil, fmt.Errorf("discretising: %w", err)
		}
	}

	backend := autodiff.New(cpu.New())
	activation, err := nn.ActivationByName(cfg.Model.Activation)
	if err != nil {
		return nil, err
	}
	model, err := nn.NewFeedForward(nn.FeedForwardConfig{
		InputDimensions:  len(p.InputVariables()),
		OutputDimensions: len(p.OutputVariables()),
		Layers:           cfg.Model.Layers,
		Activation:       activation,
		DType:            dtype,
		Rand:             rng,
	}, backend)
	if err != nil {
		return nil, err
	}
	if path := cfg.Checkpoint.Load; path != "" {
		if _, err := serialization.Load(path, model); err != nil {
			return nil, fmt.Errorf("loading checkpoint: %w", err)
		}
		logger.Info("warm start", "path", path)
	}

	scfg := solver.DefaultConfig(backend)
	if scfg.Optimizer, err = optim.NewFactory(cfg.Optimizer.Name, cfg.Optimizer.LR); err != nil {
		return nil, err
	}
	if cfg.Scheduler.Name == "step" {
		step := optim.StepLRConfig{StepSize: cfg.Scheduler.StepSize, Gamma: cfg.Scheduler.Gamma}
		scfg.Scheduler = func(opt optim.Optimizer) optim.Scheduler { return optim.NewStepLR(opt, step) }
	}
	s, err := solver.NewPINN(p, model, scfg)
	if err != nil {
		return nil, err
	}

	var cbs []trainer.Callback
	if ref := cfg.Refinement; ref != nil {
		cb, err := refinement(ref)
		if err != nil {
			return nil, err
		}
		cbs = append(cbs, cb)
	}

	t, err := trainer.New(s, trainer.Config{
		MaxEpochs: cfg.Epochs,
		Precision: cfg.Precision,
		LogEvery:  cfg.LogEvery,
		Logger:    logger.With("problem", cfg.Problem),
		Callbacks: cbs,
	})
	if err != nil {
		return nil, err
	}
	if err := t.Train(ctx); err != nil {
		return nil, err
	}

	if path := cfg.Checkpoint.Save; path != "" {
		meta := map[string]string{
			"problem":   cfg.Problem,
			"run":       t.RunID(),
			"precision": cfg.Precision,
		}
		if err := serialization.Save(path, model, meta); err != nil {
			return nil, fmt.Errorf("saving checkpoint: %w", err)
		}
		logger.Info("checkpoint saved", "path", path)
	}

	r := &report{
		problem:    cfg.Problem,
		runID:      t.RunID(),
		epochs:     t.Epoch() + 1,
		parameters: nn.NumParameters(model),
		metrics:    t.Metrics(),
		maxError:   math.NaN(),
	}
	if p.Solution() != nil {
		if r.maxError, err = maxError(s, p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func refinement(ref *config.Refinement) (trainer.Callback, error) {
	switch ref.Kind {
	case "r3":
		return callbacks.NewR3Refinement(ref.SampleEvery, ref.Locations...)
	case "dynamic":
		d, err := callbacks.NewDynamicPointsRefinement(ref.SampleEvery, ref.Locations...)
		if err != nil || ref.Candidates == 0 {
			return d, err
		}
		return d.WithCandidates(ref.Candidates)
	}
	return nil, fmt.Errorf("unknown refinement %q", ref.Kind)
}

// maxError compares the model with the known solution on every sampled
// point.
func maxError(s solver.Solver, p *problem.Problem) (float64, error) {
	var worst float64
	for _, name := range p.ConditionNames() {
		pts, err := p.InputPoints(name)
		if err != nil {
			return 0, err
		}
		want, err := p.Solution()(pts)
		if err != nil {
			return 0, err
		}
		got, err := s.Forward(pts)
		if err != nil {
			return 0, err
		}
		g := got.Float64s()
		for i, v := range want.Float64s() {
			worst = math.Max(worst, math.Abs(v-g[i]))
		}
	}
	return worst, nil
}
