package label_test

import (
	"math/rand"
	"testing"

	"github.com/dario-coscia/PINA/autodiff"
	"github.com/dario-coscia/PINA/backend/cpu"
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func xyz(t *testing.T, backend tensor.Backend) *label.LabelTensor {
	t.Helper()
	lt, err := label.FromRows([]string{"x", "y", "z"}, [][]float64{
		{1, 2, 3},
		{4, 5, 6},
	}, tensor.Float64, backend)
	require.NoError(t, err)
	return lt
}

func TestNew_Validation(t *testing.T) {
	backend := cpu.New()
	raw := tensor.Zeros(tensor.Shape{2, 2}, tensor.Float64, tensor.CPU)

	_, err := label.New(raw, []string{"a"}, backend)
	assert.ErrorIs(t, err, label.ErrValue)

	_, err = label.New(raw, []string{"a", "a"}, backend)
	assert.ErrorIs(t, err, label.ErrValue)

	_, err = label.New(tensor.Zeros(tensor.Shape{4}, tensor.Float64, tensor.CPU), []string{"a"}, backend)
	assert.ErrorIs(t, err, label.ErrValue)

	lt, err := label.New(raw, []string{"a", "b"}, backend)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lt.Labels())
	assert.Equal(t, 2, lt.Rows())
	assert.Equal(t, 2, lt.Cols())
}

func TestFromColumns(t *testing.T) {
	lt, err := label.FromColumns([]string{"a", "b"}, [][]float64{{1, 2, 3}, {4, 5, 6}}, tensor.Float32, cpu.New())
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, lt.Float64s())
	assert.Equal(t, tensor.Float32, lt.DType())

	_, err = label.FromColumns([]string{"a", "b"}, [][]float64{{1, 2}, {3}}, tensor.Float32, cpu.New())
	assert.ErrorIs(t, err, label.ErrValue)
}

func TestExtract_ReordersColumns(t *testing.T) {
	lt := xyz(t, cpu.New())

	got, err := lt.Extract("z", "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "x"}, got.Labels())
	assert.Equal(t, []float64{3, 1, 6, 4}, got.Float64s())

	col, err := lt.Column("y")
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 5}, col)
}

func TestExtract_RoundTripsPermutations(t *testing.T) {
	backend := cpu.New()
	labels := []string{"a", "b", "c", "d"}
	values := make([]float64, 5*len(labels))
	for i := range values {
		values[i] = float64(i)
	}
	lt, err := label.FromValues(labels, values, tensor.Float64, backend)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for range 20 {
		perm := make([]string, len(labels))
		for i, j := range rng.Perm(len(labels)) {
			perm[i] = labels[j]
		}
		shuffled, err := lt.Extract(perm...)
		require.NoError(t, err)
		back, err := shuffled.Extract(lt.Labels()...)
		require.NoError(t, err)
		assert.Equal(t, lt.Labels(), back.Labels())
		assert.Equal(t, lt.Float64s(), back.Float64s(), "permutation %v", perm)
	}
}

func TestExtract_Errors(t *testing.T) {
	lt := xyz(t, cpu.New())

	_, err := lt.Extract("x", "w")
	assert.ErrorIs(t, err, label.ErrLookup)

	_, err = lt.Column("w")
	assert.ErrorIs(t, err, label.ErrLookup)

	dup, err := lt.Extract("y", "x", "y")
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "x"}, dup.Labels())
}

func TestExtract_IsDifferentiable(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	lt := xyz(t, backend)
	require.NoError(t, lt.RequireGrad())

	y, err := lt.Extract("y")
	require.NoError(t, err)
	g, err := backend.Grad(y.Raw(), lt.Raw(), nil, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 0, 0, 1, 0}, g.Float64s())
}

func TestRequireGrad_NeedsDifferentiator(t *testing.T) {
	err := xyz(t, cpu.New()).RequireGrad()
	assert.ErrorIs(t, err, label.ErrRuntime)
}

func TestStacking(t *testing.T) {
	backend := cpu.New()
	lt := xyz(t, backend)
	x, err := lt.Extract("x")
	require.NoError(t, err)
	yz, err := lt.Extract("y", "z")
	require.NoError(t, err)

	joined, err := label.HStack(yz, x)
	require.NoError(t, err)
	assert.Equal(t, []string{"y", "z", "x"}, joined.Labels())
	assert.Equal(t, []float64{2, 3, 1, 5, 6, 4}, joined.Float64s())

	_, err = label.HStack(lt, x)
	assert.ErrorIs(t, err, label.ErrValue)

	rows, err := label.VStack(lt, lt)
	require.NoError(t, err)
	assert.Equal(t, 4, rows.Rows())
	assert.Equal(t, lt.Labels(), rows.Labels())

	reordered, err := lt.Extract("z", "y", "x")
	require.NoError(t, err)
	_, err = label.VStack(lt, reordered)
	assert.ErrorIs(t, err, label.ErrValue)
}

func TestSetLabels(t *testing.T) {
	lt := xyz(t, cpu.New())

	assert.ErrorIs(t, lt.SetLabels([]string{"a", "b"}), label.ErrValue)
	assert.ErrorIs(t, lt.SetLabels([]string{"a", "b", "a"}), label.ErrValue)
	assert.Equal(t, []string{"x", "y", "z"}, lt.Labels())

	require.NoError(t, lt.SetLabels([]string{"u", "v", "w"}))
	assert.True(t, lt.Has("v"))
	assert.False(t, lt.Has("x"))
}

func TestSelectRows(t *testing.T) {
	lt := xyz(t, cpu.New())

	got, err := lt.SelectRows([]int{1, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{4, 5, 6, 4, 5, 6, 1, 2, 3}, got.Float64s())

	_, err = lt.SelectRows([]int{2})
	assert.ErrorIs(t, err, label.ErrLookup)
}

func TestArithmetic(t *testing.T) {
	lt := xyz(t, cpu.New())
	x, err := lt.Extract("x")
	require.NoError(t, err)

	sum := lt.Add(x)
	assert.Equal(t, lt.Labels(), sum.Labels())
	assert.Equal(t, []float64{2, 3, 4, 8, 9, 10}, sum.Float64s())

	// a single-column receiver takes the wider operand's labels
	diff := x.Sub(lt)
	assert.Equal(t, lt.Labels(), diff.Labels())
	assert.Equal(t, []float64{0, -1, -2, 0, -1, -2}, diff.Float64s())

	assert.Equal(t, []float64{2, 14}, x.Mul(x).AddScalar(2).Sub(x).Float64s())
	assert.Equal(t, []float64{1, 16}, x.Pow(2).Float64s())
	assert.Equal(t, []float64{-2, -8}, x.MulScalar(2).Neg().Float64s())

	total := lt.SumColumns("s")
	assert.Equal(t, []string{"s"}, total.Labels())
	assert.Equal(t, []float64{6, 15}, total.Float64s())
}

func TestAbs(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()
	lt, err := label.FromRows([]string{"r"}, [][]float64{{-2}, {0}, {3}}, tensor.Float64, backend)
	require.NoError(t, err)
	require.NoError(t, lt.RequireGrad())

	abs := lt.Abs()
	assert.Equal(t, []string{"r"}, abs.Labels())
	assert.Equal(t, []float64{2, 0, 3}, abs.Float64s())

	g, err := backend.Grad(abs.Raw(), lt.Raw(), nil, false)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1, 0, 1}, g.Float64s())
}

func TestCastAndDetach(t *testing.T) {
	lt := xyz(t, cpu.New())

	f32 := lt.Cast(tensor.Float32)
	assert.Equal(t, tensor.Float32, f32.DType())
	assert.Same(t, lt, lt.Cast(tensor.Float64))

	detached := lt.Detach()
	assert.NotSame(t, lt.Raw(), detached.Raw())
	assert.Equal(t, lt.Float64s(), detached.Float64s())
	assert.Contains(t, lt.String(), "x,y,z")
}
