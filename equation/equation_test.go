package equation_test

import (
	"errors"
	"testing"

	"github.com/dario-coscia/PINA/autodiff"
	"github.com/dario-coscia/PINA/backend/cpu"
	"github.com/dario-coscia/PINA/equation"
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup returns inputs (x, y) and outputs u = x y, v = x + y on a
// recording backend.
func setup(t *testing.T) (in, out *label.LabelTensor) {
	t.Helper()
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	in, err := label.FromRows([]string{"x", "y"}, [][]float64{{1, 2}, {3, -1}}, tensor.Float64, backend)
	require.NoError(t, err)
	require.NoError(t, in.RequireGrad())

	x, err := in.Extract("x")
	require.NoError(t, err)
	y, err := in.Extract("y")
	require.NoError(t, err)
	u, err := x.Mul(y).WithLabels("u")
	require.NoError(t, err)
	v, err := x.Add(y).WithLabels("v")
	require.NoError(t, err)
	out, err = label.HStack(u, v)
	require.NoError(t, err)
	return in, out
}

func TestFixedValue(t *testing.T) {
	in, out := setup(t)

	r, err := equation.FixedValue(1, "u").Residual(in, out)
	require.NoError(t, err)
	assert.Equal(t, []string{"u"}, r.Labels())
	assert.Equal(t, []float64{1, -4}, r.Float64s())

	all, err := equation.FixedValue(0).Residual(in, out)
	require.NoError(t, err)
	assert.Equal(t, out.Float64s(), all.Float64s())

	_, err = equation.FixedValue(0, "w").Residual(in, out)
	assert.ErrorIs(t, err, label.ErrLookup)
}

func TestFixedGradient(t *testing.T) {
	in, out := setup(t)

	r, err := equation.FixedGradient(1, []string{"u"}, []string{"x", "y"}).Residual(in, out)
	require.NoError(t, err)
	assert.Equal(t, []string{"dudx", "dudy"}, r.Labels())
	// ∇u = (y, x)
	assert.Equal(t, []float64{1, 0, -2, 2}, r.Float64s())
}

func TestFixedFlux(t *testing.T) {
	in, out := setup(t)

	r, err := equation.FixedFlux(0, nil, nil).Residual(in, out)
	require.NoError(t, err)
	// du/dx + dv/dy = y + 1
	assert.Equal(t, []float64{3, 0}, r.Float64s())
}

func TestLaplace(t *testing.T) {
	in, out := setup(t)

	r, err := equation.Laplace(nil, nil).Residual(in, out)
	require.NoError(t, err)
	assert.Equal(t, []string{"ddu", "ddv"}, r.Labels())
	assert.Equal(t, []float64{0, 0, 0, 0}, r.Float64s())
}

func TestSystem(t *testing.T) {
	in, out := setup(t)
	first := equation.FixedValue(1, "u")
	second := equation.FixedValue(2, "v")

	none, err := equation.NewSystem(equation.ReduceNone, first, second)
	require.NoError(t, err)
	r, err := none.Residual(in, out)
	require.NoError(t, err)
	assert.Equal(t, []string{"r0", "r1"}, r.Labels())
	assert.Equal(t, []float64{1, 1, -4, 0}, r.Float64s())

	sum, err := equation.NewSystem(equation.ReduceSum, first, second)
	require.NoError(t, err)
	r, err = sum.Residual(in, out)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, -4}, r.Float64s())

	mean, err := equation.NewSystem(equation.ReduceMean, first, second)
	require.NoError(t, err)
	r, err = mean.Residual(in, out)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, -2}, r.Float64s())

	wide, err := equation.NewSystem(equation.ReduceSum, first, equation.FixedValue(0))
	require.NoError(t, err)
	_, err = wide.Residual(in, out)
	assert.ErrorIs(t, err, label.ErrValue)

	_, err = equation.NewSystem(equation.ReduceNone)
	assert.ErrorIs(t, err, label.ErrValue)
}

func TestSystem_PropagatesErrors(t *testing.T) {
	in, out := setup(t)
	boom := errors.New("boom")
	failing := equation.Func(func(_, _ *label.LabelTensor) (*label.LabelTensor, error) { return nil, boom })

	sys, err := equation.NewSystem(equation.ReduceNone, equation.FixedValue(0), failing)
	require.NoError(t, err)
	_, err = sys.Residual(in, out)
	assert.ErrorIs(t, err, boom)
}

func TestParseReduction(t *testing.T) {
	r, err := equation.ParseReduction("mean")
	require.NoError(t, err)
	assert.Equal(t, equation.ReduceMean, r)
	_, err = equation.ParseReduction("max")
	assert.ErrorIs(t, err, label.ErrValue)
}
