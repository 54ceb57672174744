package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/dario-coscia/PINA/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawTensorZeroCopyViews(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{3, 2}, tensor.Int64, tensor.CPU)
	require.NoError(t, err)

	data := raw.AsInt64()
	require.Len(t, data, 6)
	data[0] = 42
	assert.Equal(t, int64(42), raw.AsInt64()[0])

	f, err := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	f.AsFloat32()[3] = 1.5
	assert.Equal(t, []float64{0, 0, 0, 1.5}, f.Float64s())
}

func TestRawTensorWrongDTypePanics(t *testing.T) {
	raw := tensor.Zeros(tensor.Shape{2}, tensor.Float64, tensor.CPU)
	assert.Panics(t, func() { raw.AsFloat32() })
	assert.Panics(t, func() { raw.AsInt64() })
}

func TestNewRawInvalidShape(t *testing.T) {
	_, err := tensor.NewRaw(tensor.Shape{2, 0}, tensor.Float32, tensor.CPU)
	assert.Error(t, err)
}

func TestRawTensorRowsCols(t *testing.T) {
	raw := tensor.Zeros(tensor.Shape{5, 3}, tensor.Float64, tensor.CPU)
	assert.Equal(t, 5, raw.Rows())
	assert.Equal(t, 3, raw.Cols())
	assert.Equal(t, 15*8, raw.ByteSize())

	vec := tensor.Zeros(tensor.Shape{4}, tensor.Float64, tensor.CPU)
	assert.Panics(t, func() { vec.Rows() })
}

func TestRawTensorCloneIsDeep(t *testing.T) {
	raw, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{3, 1}, tensor.CPU)
	require.NoError(t, err)

	clone := raw.Clone()
	clone.AsFloat64()[0] = 99
	assert.Equal(t, 1.0, raw.AsFloat64()[0])
	assert.True(t, clone.Shape().Equal(raw.Shape()))
}

func TestRawTensorReshapedSharesBuffer(t *testing.T) {
	raw, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, tensor.CPU)
	require.NoError(t, err)

	view, err := raw.Reshaped(tensor.Shape{3, 2})
	require.NoError(t, err)
	assert.NotSame(t, raw, view)
	view.AsFloat32()[5] = 60
	assert.Equal(t, float32(60), raw.AsFloat32()[5])

	_, err = raw.Reshaped(tensor.Shape{4, 2})
	assert.Error(t, err)
}

func TestFromSliceLengthMismatch(t *testing.T) {
	_, err := tensor.FromSlice([]float64{1, 2, 3}, tensor.Shape{2, 2}, tensor.CPU)
	assert.Error(t, err)
}

func TestFromFloat64sConverts(t *testing.T) {
	raw, err := tensor.FromFloat64s([]float64{1.5, -2}, tensor.Shape{2}, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2}, raw.AsFloat32())
}

func TestFullAndOnes(t *testing.T) {
	assert.Equal(t, []float64{3, 3, 3, 3}, tensor.Full(tensor.Shape{2, 2}, 3, tensor.Float64, tensor.CPU).Float64s())
	assert.Equal(t, []int64{1, 1}, tensor.Ones(tensor.Shape{2}, tensor.Int64, tensor.CPU).AsInt64())
}

func TestRandRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	raw := tensor.Rand(tensor.Shape{100}, -1, 2, tensor.Float64, tensor.CPU, rng)
	for _, v := range raw.Float64s() {
		assert.GreaterOrEqual(t, v, -1.0)
		assert.Less(t, v, 2.0)
	}
}

func TestRandnMoments(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	raw := tensor.Randn(tensor.Shape{4001}, tensor.Float64, tensor.CPU, rng)
	var mean float64
	for _, v := range raw.Float64s() {
		mean += v
	}
	mean /= float64(raw.NumElements())
	assert.InDelta(t, 0, mean, 0.1)
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		name      string
		a, b      tensor.Shape
		want      tensor.Shape
		broadcast bool
		wantErr   bool
	}{
		{"same", tensor.Shape{3, 5}, tensor.Shape{3, 5}, tensor.Shape{3, 5}, false, false},
		{"column", tensor.Shape{3, 1}, tensor.Shape{3, 5}, tensor.Shape{3, 5}, true, false},
		{"rank", tensor.Shape{5}, tensor.Shape{3, 5}, tensor.Shape{3, 5}, true, false},
		{"scalar", tensor.Shape{}, tensor.Shape{2, 2}, tensor.Shape{2, 2}, true, false},
		{"incompatible", tensor.Shape{3, 4}, tensor.Shape{3, 5}, nil, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, broadcast, err := tensor.BroadcastShapes(tt.a, tt.b)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v", got)
			assert.Equal(t, tt.broadcast, broadcast)
		})
	}
}

func TestBroadcastStrides(t *testing.T) {
	assert.Equal(t, []int{0, 1}, tensor.Shape{4}.BroadcastStrides(tensor.Shape{3, 4}))
	assert.Equal(t, []int{1, 0}, tensor.Shape{3, 1}.BroadcastStrides(tensor.Shape{3, 4}))
	assert.Equal(t, []int{4, 1}, tensor.Shape{3, 4}.BroadcastStrides(tensor.Shape{3, 4}))
}
