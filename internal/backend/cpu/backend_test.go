package cpu_test

import (
	"math"
	"testing"

	"github.com/dario-coscia/PINA/internal/backend/cpu"
	"github.com/dario-coscia/PINA/internal/parallel"
	"github.com/dario-coscia/PINA/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw(t *testing.T, data []float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.FromSlice(data, tensor.Shape(shape), tensor.CPU)
	require.NoError(t, err)
	return r
}

func TestCPUBackend_New(t *testing.T) {
	backend := cpu.New()
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
	assert.NotEmpty(t, backend.Features().String())
}

func TestCPUBackend_Binary(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2, 3, 4}, 2, 2)
	b := raw(t, []float64{5, 6, 7, 8}, 2, 2)

	tests := []struct {
		name string
		op   func(a, b *tensor.RawTensor) *tensor.RawTensor
		want []float64
	}{
		{"add", backend.Add, []float64{6, 8, 10, 12}},
		{"sub", backend.Sub, []float64{-4, -4, -4, -4}},
		{"mul", backend.Mul, []float64{5, 12, 21, 32}},
		{"div", backend.Div, []float64{0.2, 2.0 / 6, 3.0 / 7, 0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.op(a, b)
			assert.InDeltaSlice(t, tt.want, got.Float64s(), 1e-12)
			assert.Equal(t, []float64{1, 2, 3, 4}, a.Float64s(), "inputs must not change")
		})
	}
}

func TestCPUBackend_Broadcast(t *testing.T) {
	backend := cpu.New()
	x := raw(t, []float64{1, 2, 3, 4, 5, 6}, 3, 2)

	col := raw(t, []float64{10, 20, 30}, 3, 1)
	assert.Equal(t, []float64{11, 12, 23, 24, 35, 36}, backend.Add(x, col).Float64s())

	row := raw(t, []float64{1, 2}, 2)
	assert.Equal(t, []float64{1, 4, 3, 8, 5, 12}, backend.Mul(x, row).Float64s())

	scalar := backend.Sum(raw(t, []float64{2}, 1))
	assert.Equal(t, []float64{2, 4, 6, 8, 10, 12}, backend.Mul(scalar, x).Float64s())

	assert.Panics(t, func() { backend.Add(x, raw(t, []float64{1, 2, 3}, 3)) })
}

func TestCPUBackend_ParallelMatchesSequential(t *testing.T) {
	seq := cpu.NewWithConfig(parallel.Config{})
	par := cpu.NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 8})

	n := 1000
	data := make([]float64, n)
	for i := range data {
		data[i] = float64(i) / 7
	}
	x := raw(t, data, n/4, 4)
	bias := raw(t, []float64{1, -1, 2, -2}, 4)

	assert.Equal(t, seq.Add(x, bias).Float64s(), par.Add(x, bias).Float64s())
	assert.Equal(t, seq.Tanh(x).Float64s(), par.Tanh(x).Float64s())
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	b := raw(t, []float64{7, 8, 9, 10, 11, 12}, 3, 2)

	got := backend.MatMul(a, b)
	assert.Equal(t, tensor.Shape{2, 2}, got.Shape())
	assert.Equal(t, []float64{58, 64, 139, 154}, got.Float64s())

	a32 := backend.Cast(a, tensor.Float32)
	b32 := backend.Cast(b, tensor.Float32)
	assert.Equal(t, []float32{58, 64, 139, 154}, backend.MatMul(a32, b32).AsFloat32())

	assert.Panics(t, func() { backend.MatMul(a, a) })
}

func TestCPUBackend_Transpose(t *testing.T) {
	backend := cpu.New()
	x := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)
	got := backend.Transpose(x)
	assert.Equal(t, tensor.Shape{3, 2}, got.Shape())
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, got.Float64s())
}

func TestCPUBackend_ReshapeCopies(t *testing.T) {
	backend := cpu.New()
	x := raw(t, []float64{1, 2, 3, 4}, 2, 2)
	y := backend.Reshape(x, tensor.Shape{4, 1})
	y.AsFloat64()[0] = 100
	assert.Equal(t, 1.0, x.AsFloat64()[0])
	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{3}) })
}

func TestCPUBackend_Expand(t *testing.T) {
	backend := cpu.New()
	x := raw(t, []float64{1, 2}, 2, 1)
	got := backend.Expand(x, tensor.Shape{2, 3})
	assert.Equal(t, []float64{1, 1, 1, 2, 2, 2}, got.Float64s())
	assert.Panics(t, func() { backend.Expand(x, tensor.Shape{3, 3}) })
}

func TestCPUBackend_Scalar(t *testing.T) {
	backend := cpu.New()
	x := raw(t, []float64{1, 2, 3}, 3)
	assert.Equal(t, []float64{3, 4, 5}, backend.AddScalar(x, 2).Float64s())
	assert.Equal(t, []float64{-2, -4, -6}, backend.MulScalar(x, -2).Float64s())
	assert.Equal(t, []float64{1, 4, 9}, backend.PowScalar(x, 2).Float64s())
	assert.InDeltaSlice(t, []float64{1, math.Sqrt(2), math.Sqrt(3)}, backend.PowScalar(x, 0.5).Float64s(), 1e-12)
	assert.Equal(t, []float64{-1, -2, -3}, backend.Neg(x).Float64s())
}

func TestCPUBackend_Activations(t *testing.T) {
	backend := cpu.New()
	x := raw(t, []float64{-800, -1, 0, 1, 800}, 5)

	sig := backend.Sigmoid(x).Float64s()
	assert.InDelta(t, 0, sig[0], 1e-12)
	assert.InDelta(t, 0.5, sig[2], 1e-12)
	assert.InDelta(t, 1, sig[4], 1e-12)

	sp := backend.Softplus(x).Float64s()
	assert.InDelta(t, math.Log(2), sp[2], 1e-12)
	assert.InDelta(t, 800, sp[4], 1e-9)
	assert.False(t, math.IsInf(sp[4], 0))

	assert.Equal(t, []float64{0, 0, 0, 1, 800}, backend.ReLU(x).Float64s())
	assert.InDelta(t, math.Tanh(1), backend.Tanh(x).Float64s()[3], 1e-12)
}

func TestCPUBackend_Reductions(t *testing.T) {
	backend := cpu.New()
	x := raw(t, []float64{1, 2, 3, 4, 5, 6}, 2, 3)

	sum := backend.Sum(x)
	assert.Empty(t, sum.Shape())
	assert.Equal(t, []float64{21}, sum.Float64s())

	rows := backend.SumDim(x, 1, true)
	assert.Equal(t, tensor.Shape{2, 1}, rows.Shape())
	assert.Equal(t, []float64{6, 15}, rows.Float64s())

	cols := backend.SumDim(x, 0, false)
	assert.Equal(t, tensor.Shape{3}, cols.Shape())
	assert.Equal(t, []float64{5, 7, 9}, cols.Float64s())

	last := backend.SumDim(x, -1, false)
	assert.Equal(t, []float64{6, 15}, last.Float64s())
}

func TestCPUBackend_CatAndIndex(t *testing.T) {
	backend := cpu.New()
	a := raw(t, []float64{1, 2, 3, 4}, 2, 2)
	b := raw(t, []float64{5, 6}, 2, 1)

	cat := backend.Cat([]*tensor.RawTensor{a, b}, 1)
	assert.Equal(t, tensor.Shape{2, 3}, cat.Shape())
	assert.Equal(t, []float64{1, 2, 5, 3, 4, 6}, cat.Float64s())

	rows := backend.Cat([]*tensor.RawTensor{a, a}, 0)
	assert.Equal(t, tensor.Shape{4, 2}, rows.Shape())

	sel := backend.IndexSelect(cat, 1, []int{2, 0})
	assert.Equal(t, []float64{5, 1, 6, 3}, sel.Float64s())

	back := backend.IndexScatter(sel, 1, []int{2, 0}, 3)
	assert.Equal(t, []float64{1, 0, 5, 3, 0, 6}, back.Float64s())

	dup := backend.IndexScatter(raw(t, []float64{1, 2}, 1, 2), 1, []int{0, 0}, 2)
	assert.Equal(t, []float64{3, 0}, dup.Float64s())

	assert.Panics(t, func() { backend.IndexSelect(cat, 1, []int{3}) })
}

func TestCPUBackend_Cast(t *testing.T) {
	backend := cpu.New()
	x := raw(t, []float64{1.5, 2.5}, 2)
	f32 := backend.Cast(x, tensor.Float32)
	assert.Equal(t, tensor.Float32, f32.DType())
	assert.Equal(t, []float32{1.5, 2.5}, f32.AsFloat32())

	same := backend.Cast(x, tensor.Float64)
	assert.NotSame(t, x, same)
}
