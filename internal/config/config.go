// Package config loads YAML run files for the pina command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dario-coscia/PINA/geometry"
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/nn"
	"github.com/dario-coscia/PINA/optim"
	"github.com/dario-coscia/PINA/trainer"
)

// Run describes one training run.
type Run struct {
	Problem        string           `yaml:"problem"`
	Precision      string           `yaml:"precision"`
	Epochs         int              `yaml:"epochs"`
	Seed           int64            `yaml:"seed"`
	LogEvery       int              `yaml:"log_every"`
	Model          Model            `yaml:"model"`
	Optimizer      Optimizer        `yaml:"optimizer"`
	Scheduler      Scheduler        `yaml:"scheduler"`
	Discretisation []Discretisation `yaml:"discretisation"`
	Refinement     *Refinement      `yaml:"refinement,omitempty"`
	Checkpoint     Checkpoint       `yaml:"checkpoint"`
}

// Checkpoint names SafeTensors files for the model parameters. Load warm
// starts the model before training; Save is written after it.
type Checkpoint struct {
	Load string `yaml:"load"`
	Save string `yaml:"save"`
}

// Model configures the feed-forward surrogate.
type Model struct {
	Layers     []int  `yaml:"layers"`
	Activation string `yaml:"activation"`
}

// Optimizer names the optimizer and its learning rate.
type Optimizer struct {
	Name string  `yaml:"name"`
	LR   float64 `yaml:"lr"`
}

// Scheduler configures the learning rate schedule: "constant" or "step".
type Scheduler struct {
	Name     string  `yaml:"name"`
	StepSize int     `yaml:"step_size"`
	Gamma    float64 `yaml:"gamma"`
}

// Discretisation is one DiscretiseDomain call.
type Discretisation struct {
	N         int      `yaml:"n"`
	Mode      string   `yaml:"mode"`
	Variables []string `yaml:"variables"`
	Locations []string `yaml:"locations"`
}

// Refinement configures an adaptive refinement callback: "r3" or
// "dynamic".
type Refinement struct {
	Kind        string   `yaml:"kind"`
	SampleEvery int      `yaml:"sample_every"`
	Locations   []string `yaml:"locations"`
	Candidates  int      `yaml:"candidates"`
}

// Default returns the run used when no file is given.
func Default() Run {
	return Run{
		Problem:   "first-order-ode",
		Precision: "32-true",
		Epochs:    1000,
		Seed:      1,
		LogEvery:  100,
		Model:     Model{Layers: []int{20, 20}, Activation: "tanh"},
		Optimizer: Optimizer{Name: "adam", LR: 0.001},
		Scheduler: Scheduler{Name: "constant"},
		Discretisation: []Discretisation{
			{N: 100, Mode: "grid"},
		},
	}
}

// Load reads and validates a run file.
func Load(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a run from YAML over the defaults and validates it.
// Unknown keys are rejected.
func Parse(data []byte) (*Run, error) {
	run := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&run); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: config: %w", label.ErrValue, err)
	}
	if err := run.Validate(); err != nil {
		return nil, err
	}
	return &run, nil
}

// Validate checks every field that can be checked without building the
// problem.
func (r *Run) Validate() error {
	if r.Problem == "" {
		return fmt.Errorf("%w: config: problem is required", label.ErrValue)
	}
	if r.Epochs <= 0 {
		return fmt.Errorf("%w: config: epochs must be positive, got %d", label.ErrValue, r.Epochs)
	}
	if r.LogEvery < 0 {
		return fmt.Errorf("%w: config: log_every must not be negative", label.ErrValue)
	}
	if _, err := trainer.ParsePrecision(r.Precision); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	for _, size := range r.Model.Layers {
		if size <= 0 {
			return fmt.Errorf("%w: config: layer sizes must be positive, got %v", label.ErrValue, r.Model.Layers)
		}
	}
	if _, err := nn.ActivationByName(r.Model.Activation); err != nil {
		return fmt.Errorf("%w: config: %w", label.ErrValue, err)
	}
	if _, err := optim.NewFactory(r.Optimizer.Name, r.Optimizer.LR); err != nil {
		return fmt.Errorf("%w: config: %w", label.ErrValue, err)
	}
	if r.Optimizer.LR < 0 {
		return fmt.Errorf("%w: config: learning rate must not be negative", label.ErrValue)
	}
	switch r.Scheduler.Name {
	case "", "constant":
	case "step":
		if r.Scheduler.StepSize < 0 || r.Scheduler.Gamma < 0 {
			return fmt.Errorf("%w: config: step scheduler needs non-negative step_size and gamma", label.ErrValue)
		}
	default:
		return fmt.Errorf("%w: config: unknown scheduler %q", label.ErrValue, r.Scheduler.Name)
	}
	if len(r.Discretisation) == 0 {
		return fmt.Errorf("%w: config: no discretisation", label.ErrValue)
	}
	for i, d := range r.Discretisation {
		if d.N <= 0 {
			return fmt.Errorf("%w: config: discretisation %d: n must be positive", label.ErrValue, i)
		}
		if _, err := geometry.ParseMode(d.Mode); err != nil {
			return fmt.Errorf("config: discretisation %d: %w", i, err)
		}
	}
	if ref := r.Refinement; ref != nil {
		switch ref.Kind {
		case "r3", "dynamic":
		default:
			return fmt.Errorf("%w: config: unknown refinement %q", label.ErrValue, ref.Kind)
		}
		if ref.SampleEvery <= 0 {
			return fmt.Errorf("%w: config: refinement sample_every must be positive", label.ErrValue)
		}
		if ref.Candidates < 0 {
			return fmt.Errorf("%w: config: refinement candidates must not be negative", label.ErrValue)
		}
	}
	return nil
}
