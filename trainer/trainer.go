// Package trainer runs the epoch loop of a solver and dispatches callback
// hooks around it.
//
//	t, err := trainer.New(pinn, trainer.Config{
//	    MaxEpochs: 1000,
//	    Callbacks: []trainer.Callback{r3},
//	})
//	if err != nil {
//	    return err
//	}
//	err = t.Train(ctx)
package trainer

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"

	"github.com/google/uuid"

	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/solver"
	"github.com/dario-coscia/PINA/tensor"
)

// Metric names logged every epoch, besides "<condition>_loss".
const (
	MetricTrainLoss = "train_loss"
	MetricMeanLoss  = "mean_loss"
)

// Callback receives training hooks. A returned error stops training.
// Epochs are numbered from 0.
type Callback interface {
	OnTrainStart(t *Trainer) error
	OnTrainEpochStart(t *Trainer, epoch int) error
	OnTrainEpochEnd(t *Trainer, epoch int) error
	OnTrainEnd(t *Trainer) error
}

// NopCallback implements Callback with no-op hooks. Embed it to implement
// only some of them.
type NopCallback struct{}

func (NopCallback) OnTrainStart(*Trainer) error           { return nil }
func (NopCallback) OnTrainEpochStart(*Trainer, int) error { return nil }
func (NopCallback) OnTrainEpochEnd(*Trainer, int) error   { return nil }
func (NopCallback) OnTrainEnd(*Trainer) error             { return nil }

// Config configures a Trainer.
//
// Zero values are replaced with defaults:
//   - MaxEpochs: 1000
//   - Precision: "32-true"
//   - Accelerator: "cpu"
//   - Logger: discards records
//
// LogEvery is the epoch interval of progress records; 0 disables them.
type Config struct {
	MaxEpochs   int
	Precision   string
	Accelerator string
	LogEvery    int
	Logger      *slog.Logger
	Callbacks   []Callback
}

// Trainer drives a solver for a fixed number of epochs.
type Trainer struct {
	solver solver.Solver
	cfg    Config
	dtype  tensor.DataType
	logger *slog.Logger

	runID   string
	epoch   int
	metrics map[string]float64
	stop    bool
}

// New validates cfg and creates a trainer for s.
func New(s solver.Solver, cfg Config) (*Trainer, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: trainer needs a solver", label.ErrValue)
	}
	if cfg.MaxEpochs == 0 {
		cfg.MaxEpochs = 1000
	}
	if cfg.MaxEpochs < 0 {
		return nil, fmt.Errorf("%w: max epochs must be positive, got %d", label.ErrValue, cfg.MaxEpochs)
	}
	if cfg.LogEvery < 0 {
		return nil, fmt.Errorf("%w: log interval must not be negative, got %d", label.ErrValue, cfg.LogEvery)
	}
	dtype, err := ParsePrecision(cfg.Precision)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(cfg.Accelerator) {
	case "", "cpu", "auto":
		cfg.Accelerator = "cpu"
	default:
		return nil, fmt.Errorf("%w: unsupported accelerator %q", label.ErrValue, cfg.Accelerator)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Trainer{
		solver:  s,
		cfg:     cfg,
		dtype:   dtype,
		logger:  cfg.Logger,
		metrics: make(map[string]float64),
	}, nil
}

// ParsePrecision resolves "32-true" (the default) and "64-true".
func ParsePrecision(s string) (tensor.DataType, error) {
	switch s {
	case "", "32-true", "32":
		return tensor.Float32, nil
	case "64-true", "64":
		return tensor.Float64, nil
	}
	return 0, fmt.Errorf("%w: unsupported precision %q", label.ErrValue, s)
}

// Solver returns the trained solver.
func (t *Trainer) Solver() solver.Solver { return t.solver }

// DType returns the training precision.
func (t *Trainer) DType() tensor.DataType { return t.dtype }

// MaxEpochs returns the configured epoch count.
func (t *Trainer) MaxEpochs() int { return t.cfg.MaxEpochs }

// RunID identifies the current or last run.
func (t *Trainer) RunID() string { return t.runID }

// Epoch returns the current epoch.
func (t *Trainer) Epoch() int { return t.epoch }

// Logger returns the run logger.
func (t *Trainer) Logger() *slog.Logger { return t.logger }

// Metrics returns a copy of the metrics logged at the last epoch.
func (t *Trainer) Metrics() map[string]float64 { return maps.Clone(t.metrics) }

// Stop ends training after the current epoch.
func (t *Trainer) Stop() { t.stop = true }

// Train casts the solver and its problem to the training precision and
// runs the epoch loop. The context is checked between epochs.
func (t *Trainer) Train(ctx context.Context) error {
	p := t.solver.Problem()
	if t.solver.DType() != t.dtype {
		t.solver.Cast(t.dtype)
	}
	if err := p.Prepare(t.dtype); err != nil {
		return err
	}

	t.runID = uuid.NewString()
	t.logger = t.cfg.Logger.With("run", t.runID)
	t.epoch, t.stop = 0, false
	clear(t.metrics)

	t.logger.Info("training started",
		"epochs", t.cfg.MaxEpochs,
		"precision", t.dtype,
		"accelerator", t.cfg.Accelerator,
		"conditions", p.ConditionNames())

	for _, cb := range t.cfg.Callbacks {
		if err := cb.OnTrainStart(t); err != nil {
			return err
		}
	}

	for epoch := 0; epoch < t.cfg.MaxEpochs && !t.stop; epoch++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("training stopped at epoch %d: %w", epoch, err)
		}
		t.epoch = epoch
		for _, cb := range t.cfg.Callbacks {
			if err := cb.OnTrainEpochStart(t, epoch); err != nil {
				return err
			}
		}

		losses, err := t.solver.TrainingStep()
		if err != nil {
			return fmt.Errorf("epoch %d: %w", epoch, err)
		}
		t.record(losses)
		if t.cfg.LogEvery > 0 && epoch%t.cfg.LogEvery == 0 {
			t.logger.Info("epoch", "epoch", epoch,
				MetricTrainLoss, losses.Total,
				MetricMeanLoss, t.metrics[MetricMeanLoss],
				"lr", t.solver.Optimizer().GetLR())
		}

		for _, cb := range t.cfg.Callbacks {
			if err := cb.OnTrainEpochEnd(t, epoch); err != nil {
				return err
			}
		}
	}

	for _, cb := range t.cfg.Callbacks {
		if err := cb.OnTrainEnd(t); err != nil {
			return err
		}
	}
	t.logger.Info("training finished", "epochs", t.epoch+1, MetricTrainLoss, t.metrics[MetricTrainLoss])
	return nil
}

func (t *Trainer) record(losses solver.Losses) {
	clear(t.metrics)
	var sum float64
	for name, v := range losses.Conditions {
		t.metrics[name+"_loss"] = v
		sum += v
	}
	t.metrics[MetricTrainLoss] = losses.Total
	if n := len(losses.Conditions); n > 0 {
		t.metrics[MetricMeanLoss] = sum / float64(n)
	}
}
