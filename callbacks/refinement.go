// Package callbacks provides trainer callbacks: adaptive point refinement,
// metric tracking and optimizer switching.
package callbacks

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/dario-coscia/PINA/geometry"
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/problem"
	"github.com/dario-coscia/PINA/trainer"
)

// ErrConfiguration reports callback settings that do not fit the trained
// problem.
var ErrConfiguration = fmt.Errorf("callback configuration: %w", label.ErrRuntime)

// refinement holds the schedule and targets shared by refinement
// callbacks.
type refinement struct {
	trainer.NopCallback
	sampleEvery int
	locations   []string

	targets    []string
	population map[string]int
}

func newRefinement(sampleEvery int, locations []string) (refinement, error) {
	if sampleEvery <= 0 {
		return refinement{}, fmt.Errorf("%w: sample interval must be positive, got %d", label.ErrValue, sampleEvery)
	}
	return refinement{sampleEvery: sampleEvery, locations: slices.Clone(locations)}, nil
}

// resolve validates the targets against the trained problem and records
// their population.
func (r *refinement) resolve(t *trainer.Trainer) error {
	p := t.Solver().Problem()
	r.targets = r.locations
	if len(r.targets) == 0 {
		for _, name := range p.ConditionNames() {
			if c, _ := p.Condition(name); c.Kind() == problem.LocationKind {
				r.targets = append(r.targets, name)
			}
		}
	}
	if len(r.targets) == 0 {
		return fmt.Errorf("%w: problem has no location conditions to refine", ErrConfiguration)
	}

	r.population = make(map[string]int, len(r.targets))
	for _, name := range r.targets {
		c, ok := p.Condition(name)
		if !ok {
			return fmt.Errorf("%w: no condition %q", ErrConfiguration, name)
		}
		if c.Kind() != problem.LocationKind {
			return fmt.Errorf("%w: condition %q is %s-based; only location conditions can be refined",
				ErrConfiguration, name, c.Kind())
		}
		pts, err := p.InputPoints(name)
		if err != nil {
			return err
		}
		r.population[name] = pts.Rows()
	}
	return nil
}

func (r *refinement) due(epoch int) bool { return epoch%r.sampleEvery == 0 }

// Targets returns the refined conditions, resolved at training start.
func (r *refinement) Targets() []string { return slices.Clone(r.targets) }

// R3Refinement implements Retain-Resample-Release: every sampleEvery
// epochs, points whose residual exceeds the mean residual of all targets
// are kept and the others are replaced with uniform samples. The number
// of points per condition stays fixed.
type R3Refinement struct {
	refinement
}

// NewR3Refinement refines the named location conditions, or all of them
// when none are named.
func NewR3Refinement(sampleEvery int, locations ...string) (*R3Refinement, error) {
	r, err := newRefinement(sampleEvery, locations)
	if err != nil {
		return nil, err
	}
	return &R3Refinement{refinement: r}, nil
}

// OnTrainStart validates the targets.
func (r *R3Refinement) OnTrainStart(t *trainer.Trainer) error { return r.resolve(t) }

// OnTrainEpochEnd refines on schedule.
func (r *R3Refinement) OnTrainEpochEnd(t *trainer.Trainer, epoch int) error {
	if !r.due(epoch) {
		return nil
	}
	s := t.Solver()
	p := s.Problem()

	points := make(map[string]*label.LabelTensor, len(r.targets))
	residuals := make(map[string][]float64, len(r.targets))
	var all []float64
	for _, name := range r.targets {
		pts, err := p.InputPoints(name)
		if err != nil {
			return err
		}
		mags, err := s.PointwiseResidual(name, pts)
		if err != nil {
			return fmt.Errorf("r3 refinement of %q: %w", name, err)
		}
		points[name], residuals[name] = pts, mags
		all = append(all, mags...)
	}
	mean := stat.Mean(all, nil)

	for _, name := range r.targets {
		var retained []int
		for i, m := range residuals[name] {
			if m > mean {
				retained = append(retained, i)
			}
		}
		next, err := r.resample(p, name, points[name], retained)
		if err != nil {
			return fmt.Errorf("r3 refinement of %q: %w", name, err)
		}
		if err := p.SetInputPoints(name, next); err != nil {
			return err
		}
		t.Logger().Debug("r3 refinement", "epoch", epoch, "condition", name,
			"retained", len(retained), "resampled", next.Rows()-len(retained))
	}
	return nil
}

func (r *R3Refinement) resample(p *problem.Problem, name string, pts *label.LabelTensor, retained []int) (*label.LabelTensor, error) {
	released := r.population[name] - len(retained)
	if len(retained) == 0 {
		return p.Sample(name, r.population[name], geometry.Random)
	}
	kept, err := pts.SelectRows(retained)
	if err != nil {
		return nil, err
	}
	if released <= 0 {
		return kept, nil
	}
	fresh, err := p.Sample(name, released, geometry.Random)
	if err != nil {
		return nil, err
	}
	return label.VStack(kept, fresh.Cast(kept.DType()))
}

// DynamicPointsRefinement redraws the points of every target on schedule:
// a uniform pool of Candidates times the population is evaluated and the
// population is drawn from it without replacement, with probability
// proportional to the residual magnitude.
type DynamicPointsRefinement struct {
	refinement
	candidates int
}

// NewDynamicPointsRefinement refines the named location conditions, or all
// of them when none are named. The pool holds 10 candidates per point.
func NewDynamicPointsRefinement(sampleEvery int, locations ...string) (*DynamicPointsRefinement, error) {
	r, err := newRefinement(sampleEvery, locations)
	if err != nil {
		return nil, err
	}
	return &DynamicPointsRefinement{refinement: r, candidates: 10}, nil
}

// WithCandidates sets the pool size per point.
func (d *DynamicPointsRefinement) WithCandidates(k int) (*DynamicPointsRefinement, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: candidates per point must be positive, got %d", label.ErrValue, k)
	}
	d.candidates = k
	return d, nil
}

// OnTrainStart validates the targets.
func (d *DynamicPointsRefinement) OnTrainStart(t *trainer.Trainer) error { return d.resolve(t) }

// OnTrainEpochEnd refines on schedule.
func (d *DynamicPointsRefinement) OnTrainEpochEnd(t *trainer.Trainer, epoch int) error {
	if !d.due(epoch) {
		return nil
	}
	s := t.Solver()
	p := s.Problem()
	src := source(p)

	for _, name := range d.targets {
		n := d.population[name]
		pool, err := p.Sample(name, n*d.candidates, geometry.Random)
		if err != nil {
			return fmt.Errorf("dynamic refinement of %q: %w", name, err)
		}
		mags, err := s.PointwiseResidual(name, pool)
		if err != nil {
			return fmt.Errorf("dynamic refinement of %q: %w", name, err)
		}

		// Flat residuals still leave every candidate drawable.
		for i := range mags {
			mags[i] += 1e-12
		}
		w := sampleuv.NewWeighted(mags, src)
		idx := make([]int, 0, n)
		for range n {
			i, ok := w.Take()
			if !ok {
				break
			}
			idx = append(idx, i)
		}
		slices.Sort(idx)
		next, err := pool.SelectRows(idx)
		if err != nil {
			return err
		}
		if err := p.SetInputPoints(name, next); err != nil {
			return err
		}
		t.Logger().Debug("dynamic refinement", "epoch", epoch, "condition", name, "pool", pool.Rows())
	}
	return nil
}

// source derives a weighted-sampling source from the problem's sampling
// source, nil when the problem uses the global one.
func source(p *problem.Problem) rand.Source {
	rng := p.Rand()
	if rng == nil {
		return nil
	}
	return rand.NewPCG(rng.Uint64(), rng.Uint64())
}
