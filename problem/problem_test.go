package problem_test

import (
	"math/rand"
	"testing"

	"github.com/dario-coscia/PINA/backend/cpu"
	"github.com/dario-coscia/PINA/equation"
	"github.com/dario-coscia/PINA/geometry"
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/problem"
	"github.com/dario-coscia/PINA/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// poisson builds a 2-D problem on the unit square with one boundary edge
// and the interior.
func poisson(t *testing.T) *problem.Problem {
	t.Helper()
	p, err := problem.New(problem.Config{
		OutputVariables: []string{"u"},
		Spatial:         geometry.MustCartesianDomain(geometry.Range("x", 0, 1), geometry.Range("y", 0, 1)),
		Rand:            rand.New(rand.NewSource(1)),
	})
	require.NoError(t, err)

	edge, err := problem.NewLocationCondition(
		geometry.MustCartesianDomain(geometry.Range("x", 0, 1), geometry.Fixed("y", 0)),
		equation.FixedValue(0),
	)
	require.NoError(t, err)
	interior, err := problem.NewLocationCondition(
		geometry.MustCartesianDomain(geometry.Range("x", 0, 1), geometry.Range("y", 0, 1)),
		equation.Laplace(nil, nil),
	)
	require.NoError(t, err)

	require.NoError(t, p.AddCondition("gamma1", edge))
	require.NoError(t, p.AddCondition("D", interior))
	return p
}

func TestNew_Validation(t *testing.T) {
	x := geometry.MustCartesianDomain(geometry.Range("x", 0, 1))
	tests := []struct {
		name string
		cfg  problem.Config
	}{
		{"no outputs", problem.Config{Spatial: x}},
		{"no domain", problem.Config{OutputVariables: []string{"u"}}},
		{"duplicate outputs", problem.Config{OutputVariables: []string{"u", "u"}, Spatial: x}},
		{"shared variable", problem.Config{OutputVariables: []string{"u"}, Spatial: x, Parametric: x}},
		{"input is output", problem.Config{OutputVariables: []string{"x"}, Spatial: x}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := problem.New(tt.cfg)
			assert.ErrorIs(t, err, label.ErrValue)
		})
	}
}

func TestInputVariables_Order(t *testing.T) {
	p, err := problem.New(problem.Config{
		OutputVariables: []string{"u"},
		Parametric:      geometry.MustCartesianDomain(geometry.Range("mu", 1, 2)),
		Temporal:        geometry.MustCartesianDomain(geometry.Range("t", 0, 1)),
		Spatial:         geometry.MustCartesianDomain(geometry.Range("x", 0, 1)),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "t", "mu"}, p.InputVariables())
	assert.True(t, p.Has(problem.Temporal))
	assert.Equal(t, problem.Uninitialized, p.State())

	// A problem needs a condition before it counts as discretised.
	assert.False(t, p.IsDiscretised())
	assert.ErrorIs(t, p.Prepare(tensor.Float32), problem.ErrNotDiscretised)
	c, err := problem.NewLocationCondition(geometry.MustCartesianDomain(geometry.Range("x", 0, 1),
		geometry.Range("t", 0, 1), geometry.Range("mu", 1, 2)), equation.FixedValue(0))
	require.NoError(t, err)
	require.NoError(t, p.AddCondition("D", c))
	assert.Equal(t, problem.Uninitialized, p.State())
	require.NoError(t, p.DiscretiseDomain(2, geometry.Grid, nil, nil))
	assert.Equal(t, problem.DomainDiscretised, p.State())
}

func TestAddCondition_Errors(t *testing.T) {
	p := poisson(t)

	dup, err := problem.NewLocationCondition(geometry.MustCartesianDomain(
		geometry.Range("x", 0, 1), geometry.Range("y", 0, 1)), equation.FixedValue(0))
	require.NoError(t, err)
	assert.ErrorIs(t, p.AddCondition("D", dup), label.ErrValue)

	wrongVars, err := problem.NewLocationCondition(geometry.MustCartesianDomain(
		geometry.Range("x", 0, 1), geometry.Range("z", 0, 1)), equation.FixedValue(0))
	require.NoError(t, err)
	assert.ErrorIs(t, p.AddCondition("Z", wrongVars), label.ErrValue)

	in, err := label.FromRows([]string{"x", "y"}, [][]float64{{0, 0}}, tensor.Float32, p.Backend())
	require.NoError(t, err)
	out, err := label.FromRows([]string{"w"}, [][]float64{{1}}, tensor.Float32, p.Backend())
	require.NoError(t, err)
	data, err := problem.NewDataCondition(in, out, nil)
	require.NoError(t, err)
	assert.ErrorIs(t, p.AddCondition("data", data), label.ErrValue)

	assert.Equal(t, []string{"gamma1", "D"}, p.ConditionNames())
}

func TestNewDataCondition_RowMismatch(t *testing.T) {
	in, err := label.FromRows([]string{"x"}, [][]float64{{0}, {1}}, tensor.Float32, cpu.New())
	require.NoError(t, err)
	out, err := label.FromRows([]string{"u"}, [][]float64{{1}}, tensor.Float32, cpu.New())
	require.NoError(t, err)
	_, err = problem.NewDataCondition(in, out, nil)
	assert.ErrorIs(t, err, label.ErrValue)
}

func TestDiscretiseDomain(t *testing.T) {
	p := poisson(t)

	_, err := p.InputPoints("D")
	assert.ErrorIs(t, err, problem.ErrNotDiscretised)
	assert.ErrorIs(t, err, label.ErrRuntime)

	require.NoError(t, p.DiscretiseDomain(4, geometry.Grid, nil, nil))
	assert.Equal(t, problem.DomainDiscretised, p.State())

	d, err := p.InputPoints("D")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, d.Labels())
	assert.Equal(t, 16, d.Rows())

	g, err := p.InputPoints("gamma1")
	require.NoError(t, err)
	assert.Equal(t, 4, g.Rows())
	y, err := g.Column("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, y)
}

func TestDiscretiseDomain_PerVariable(t *testing.T) {
	p := poisson(t)

	require.NoError(t, p.DiscretiseDomain(3, geometry.Grid, []string{"x"}, []string{"D"}))
	assert.Equal(t, problem.Uninitialized, p.State())
	_, err := p.InputPoints("D")
	assert.ErrorIs(t, err, problem.ErrNotDiscretised)

	require.NoError(t, p.DiscretiseDomain(5, geometry.Random, []string{"y"}, []string{"D"}))
	d, err := p.InputPoints("D")
	require.NoError(t, err)
	assert.Equal(t, 15, d.Rows())

	ys, err := d.Column("y")
	require.NoError(t, err)
	wantY := distinct(ys)
	require.Len(t, wantY, 5)

	// Re-sampling x replaces it and keeps the y sample, however often it
	// happens.
	for range 3 {
		require.NoError(t, p.DiscretiseDomain(2, geometry.Grid, []string{"x"}, []string{"D"}))
		d, err = p.InputPoints("D")
		require.NoError(t, err)
		assert.Equal(t, 10, d.Rows())

		xs, err := d.Column("x")
		require.NoError(t, err)
		assert.ElementsMatch(t, []float64{0, 1}, distinct(xs))
		ys, err := d.Column("y")
		require.NoError(t, err)
		assert.ElementsMatch(t, wantY, distinct(ys))
	}
}

func TestDiscretiseDomain_ResampleJoint(t *testing.T) {
	p := poisson(t)

	// A joint draw keeps its rows when one of its variables is replaced.
	require.NoError(t, p.DiscretiseDomain(6, geometry.LatinHypercube, nil, []string{"D"}))
	d, err := p.InputPoints("D")
	require.NoError(t, err)
	ys, err := d.Column("y")
	require.NoError(t, err)

	require.NoError(t, p.DiscretiseDomain(3, geometry.Grid, []string{"x"}, []string{"D"}))
	d, err = p.InputPoints("D")
	require.NoError(t, err)
	assert.Equal(t, 18, d.Rows())
	got, err := d.Column("y")
	require.NoError(t, err)
	assert.ElementsMatch(t, distinct(ys), distinct(got))

	// Replacing every variable drops the old draw.
	require.NoError(t, p.DiscretiseDomain(4, geometry.Grid, nil, []string{"D"}))
	d, err = p.InputPoints("D")
	require.NoError(t, err)
	assert.Equal(t, 16, d.Rows())
}

func distinct(values []float64) []float64 {
	seen := make(map[float64]bool)
	var out []float64
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func TestDiscretiseDomain_Errors(t *testing.T) {
	p := poisson(t)
	assert.ErrorIs(t, p.DiscretiseDomain(3, geometry.Grid, nil, []string{"missing"}), label.ErrLookup)
	assert.ErrorIs(t, p.DiscretiseDomain(0, geometry.Grid, nil, nil), label.ErrValue)
	assert.ErrorIs(t, p.DiscretiseDomain(3, geometry.Grid, []string{"t"}, nil), label.ErrLookup)
}

func TestPrepare(t *testing.T) {
	p := poisson(t)
	require.NoError(t, p.DiscretiseDomain(3, geometry.Grid, nil, []string{"D"}))

	err := p.Prepare(tensor.Float64)
	require.ErrorIs(t, err, problem.ErrNotDiscretised)
	assert.Contains(t, err.Error(), "gamma1")
	assert.NotContains(t, err.Error(), "D,")

	require.NoError(t, p.DiscretiseDomain(3, geometry.Grid, nil, []string{"gamma1"}))
	require.NoError(t, p.Prepare(tensor.Float64))
	assert.Equal(t, problem.ReadyForTraining, p.State())

	d, err := p.InputPoints("D")
	require.NoError(t, err)
	assert.Equal(t, tensor.Float64, d.DType())

	assert.ErrorIs(t, p.Prepare(tensor.Int64), label.ErrValue)
}

func TestSetAndAddPoints(t *testing.T) {
	p := poisson(t)
	require.NoError(t, p.DiscretiseDomain(2, geometry.Grid, nil, nil))

	// Columns are reordered to the input variables.
	pts, err := label.FromRows([]string{"y", "x"}, [][]float64{{0.5, 0.25}}, tensor.Float32, cpu.New())
	require.NoError(t, err)
	require.NoError(t, p.SetInputPoints("D", pts))
	d, err := p.InputPoints("D")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, d.Labels())
	assert.Equal(t, []float64{0.25, 0.5}, d.Float64s())

	require.NoError(t, p.AddPoints("D", pts))
	d, err = p.InputPoints("D")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Rows())

	bad, err := label.FromRows([]string{"x"}, [][]float64{{0}}, tensor.Float32, cpu.New())
	require.NoError(t, err)
	assert.ErrorIs(t, p.SetInputPoints("D", bad), label.ErrValue)
	assert.ErrorIs(t, p.SetInputPoints("nope", pts), label.ErrLookup)
}

func TestInputAndDataConditions(t *testing.T) {
	p, err := problem.New(problem.Config{
		OutputVariables: []string{"u"},
		Spatial:         geometry.MustCartesianDomain(geometry.Range("x", 0, 1)),
	})
	require.NoError(t, err)

	in, err := label.FromRows([]string{"x"}, [][]float64{{0}, {1}}, tensor.Float32, cpu.New())
	require.NoError(t, err)
	out, err := label.FromRows([]string{"u"}, [][]float64{{1}, {2}}, tensor.Float32, cpu.New())
	require.NoError(t, err)

	fixed, err := problem.NewInputCondition(in, equation.FixedValue(0))
	require.NoError(t, err)
	data, err := problem.NewDataCondition(in, out, nil)
	require.NoError(t, err)
	require.NoError(t, p.AddCondition("fixed", fixed))
	require.NoError(t, p.AddCondition("data", data))

	// Nothing to sample.
	assert.True(t, p.IsDiscretised())
	require.NoError(t, p.Prepare(tensor.Float32))

	targets, err := p.OutputPoints("data")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, targets.Float64s())

	_, err = p.OutputPoints("fixed")
	assert.ErrorIs(t, err, label.ErrLookup)
	assert.ErrorIs(t, p.DiscretiseDomain(2, geometry.Grid, nil, []string{"fixed"}), label.ErrValue)
	assert.ErrorIs(t, p.AddPoints("data", in), label.ErrValue)
}

func TestSample(t *testing.T) {
	p := poisson(t)
	pts, err := p.Sample("gamma1", 7, geometry.Random)
	require.NoError(t, err)
	assert.Equal(t, 7, pts.Rows())
	assert.Equal(t, []string{"x", "y"}, pts.Labels())

	// Not stored.
	_, err = p.InputPoints("gamma1")
	assert.ErrorIs(t, err, problem.ErrNotDiscretised)
}
