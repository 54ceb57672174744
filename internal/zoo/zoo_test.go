package zoo_test

import (
	"math"
	"testing"

	"github.com/dario-coscia/PINA/backend/cpu"
	"github.com/dario-coscia/PINA/internal/zoo"
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert.Equal(t, []string{"first-order-ode", "poisson"}, zoo.Names())

	p, err := zoo.New("poisson", zoo.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma1", "gamma2", "gamma3", "gamma4", "D"}, p.ConditionNames())
	assert.Equal(t, []string{"x", "y"}, p.InputVariables())

	_, err = zoo.New("heat", zoo.Options{})
	assert.ErrorIs(t, err, label.ErrLookup)
}

func TestFirstOrderODE_Solution(t *testing.T) {
	p, err := zoo.FirstOrderODE(zoo.Options{DType: tensor.Float64})
	require.NoError(t, err)
	assert.Equal(t, []string{"x0", "D"}, p.ConditionNames())

	x, err := label.FromColumns([]string{"x"}, [][]float64{{0, 1, 2}}, tensor.Float64, cpu.New())
	require.NoError(t, err)
	y, err := p.Solution()(x)
	require.NoError(t, err)
	assert.Equal(t, []string{"y"}, y.Labels())
	for i, xv := range []float64{0, 1, 2} {
		assert.InDelta(t, xv-1+2*math.Exp(-xv), y.Float64s()[i], 1e-12)
	}
}

func TestPoisson_SolutionVanishesOnEdges(t *testing.T) {
	p, err := zoo.Poisson(zoo.Options{DType: tensor.Float64})
	require.NoError(t, err)

	pts, err := label.FromRows([]string{"x", "y"}, [][]float64{{0, 0.3}, {1, 0.7}, {0.5, 0}, {0.5, 0.5}},
		tensor.Float64, cpu.New())
	require.NoError(t, err)
	u, err := p.Solution()(pts)
	require.NoError(t, err)
	values := u.Float64s()
	for _, v := range values[:3] {
		assert.InDelta(t, 0, v, 1e-12)
	}
	assert.InDelta(t, -1/(2*math.Pi*math.Pi), values[3], 1e-12)
}
