package callbacks

import (
	"fmt"

	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/optim"
	"github.com/dario-coscia/PINA/trainer"
)

// MetricTracker keeps the metrics the trainer logged at every epoch.
type MetricTracker struct {
	trainer.NopCallback
	history []map[string]float64
}

// NewMetricTracker creates an empty tracker.
func NewMetricTracker() *MetricTracker { return &MetricTracker{} }

// OnTrainStart drops the history of a previous run.
func (m *MetricTracker) OnTrainStart(*trainer.Trainer) error {
	m.history = m.history[:0]
	return nil
}

// OnTrainEpochEnd records the epoch metrics.
func (m *MetricTracker) OnTrainEpochEnd(t *trainer.Trainer, _ int) error {
	m.history = append(m.history, t.Metrics())
	return nil
}

// Epochs returns the number of recorded epochs.
func (m *MetricTracker) Epochs() int { return len(m.history) }

// Metrics returns the metrics of one epoch.
func (m *MetricTracker) Metrics(epoch int) (map[string]float64, error) {
	if epoch < 0 || epoch >= len(m.history) {
		return nil, fmt.Errorf("%w: epoch %d not recorded (%d epochs)", label.ErrLookup, epoch, len(m.history))
	}
	return m.history[epoch], nil
}

// Series returns one metric over all recorded epochs.
func (m *MetricTracker) Series(name string) ([]float64, error) {
	out := make([]float64, len(m.history))
	for i, epoch := range m.history {
		v, ok := epoch[name]
		if !ok {
			return nil, fmt.Errorf("%w: metric %q missing at epoch %d", label.ErrLookup, name, i)
		}
		out[i] = v
	}
	return out, nil
}

// SwitchOptimizer replaces the solver optimizer at the start of a given
// epoch.
type SwitchOptimizer struct {
	trainer.NopCallback
	factory optim.Factory
	epoch   int
}

// NewSwitchOptimizer switches to the optimizer built by factory at epoch.
func NewSwitchOptimizer(factory optim.Factory, epoch int) (*SwitchOptimizer, error) {
	if factory == nil {
		return nil, fmt.Errorf("%w: nil optimizer factory", label.ErrValue)
	}
	if epoch < 1 {
		return nil, fmt.Errorf("%w: switch epoch must be at least 1, got %d", label.ErrValue, epoch)
	}
	return &SwitchOptimizer{factory: factory, epoch: epoch}, nil
}

// OnTrainEpochStart swaps the optimizer on the switch epoch.
func (s *SwitchOptimizer) OnTrainEpochStart(t *trainer.Trainer, epoch int) error {
	if epoch == s.epoch {
		t.Solver().SetOptimizer(s.factory)
		t.Logger().Info("optimizer switched", "epoch", epoch)
	}
	return nil
}
