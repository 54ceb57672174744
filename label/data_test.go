package label_test

import (
	"testing"

	"github.com/dario-coscia/PINA/backend/cpu"
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangleData(t *testing.T) *label.Data {
	t.Helper()
	backend := cpu.New()
	edges, err := tensor.FromSlice([]int64{0, 1, 1, 2, 1, 0, 2, 1}, tensor.Shape{2, 4}, tensor.CPU)
	require.NoError(t, err)
	edgeIndex, err := label.New(edges, []string{"e1", "e2", "e3", "e4"}, backend)
	require.NoError(t, err)
	x, err := label.FromValues([]string{"u"}, []float64{-1, 0, 1}, tensor.Float32, backend)
	require.NoError(t, err)
	return &label.Data{X: x, EdgeIndex: edgeIndex}
}

func TestData_Graph(t *testing.T) {
	data := triangleData(t)

	assert.Equal(t, []string{label.SlotX, label.SlotEdgeIndex}, data.Keys())
	assert.Equal(t, 3, data.NumNodes())
	assert.Equal(t, 4, data.NumEdges())
	assert.Equal(t, 1, data.NumNodeFeatures())
	assert.False(t, data.IsDirected())
	assert.False(t, data.HasIsolatedNodes())

	got, ok := data.Get(label.SlotX)
	require.True(t, ok)
	assert.Same(t, data.X, got)
	_, ok = data.Get(label.SlotEdgeAttr)
	assert.False(t, ok)
}

func TestData_DirectedAndIsolated(t *testing.T) {
	backend := cpu.New()
	edges, err := tensor.FromSlice([]int64{0, 1}, tensor.Shape{2, 1}, tensor.CPU)
	require.NoError(t, err)
	edgeIndex, err := label.New(edges, []string{"e"}, backend)
	require.NoError(t, err)
	pos, err := label.FromValues([]string{"px", "py"}, []float64{0, 0, 1, 0, 5, 5}, tensor.Float64, backend)
	require.NoError(t, err)

	data := &label.Data{EdgeIndex: edgeIndex, Pos: pos}
	assert.Equal(t, 3, data.NumNodes())
	assert.True(t, data.IsDirected())
	assert.True(t, data.HasIsolatedNodes())
	assert.Equal(t, 0, data.NumNodeFeatures())
}

func TestData_SetRejectsNonLabelTensor(t *testing.T) {
	slots := []string{
		label.SlotX, label.SlotEdgeIndex, label.SlotEdgeAttr,
		label.SlotY, label.SlotPos, label.SlotTime, "weights",
	}
	values := []any{
		tensor.Zeros(tensor.Shape{2, 2}, tensor.Float32, tensor.CPU),
		[]float64{1, 2},
		"x",
		nil,
		label.LabelTensor{},
	}
	data := triangleData(t)
	for _, slot := range slots {
		for _, v := range values {
			err := data.Set(slot, v)
			assert.ErrorIs(t, err, label.ErrType, "slot %s value %T", slot, v)
		}
	}
	assert.NotNil(t, data.X, "failed assignment keeps the slot")
}

func TestData_SetAcceptsLabelTensor(t *testing.T) {
	data := triangleData(t)
	y, err := label.FromValues([]string{"target"}, []float64{1, 2, 3}, tensor.Float32, cpu.New())
	require.NoError(t, err)

	require.NoError(t, data.Set(label.SlotY, y))
	assert.Same(t, y, data.Y)

	require.NoError(t, data.Set("mask", y))
	got, ok := data.Get("mask")
	require.True(t, ok)
	assert.Same(t, y, got)
	assert.Equal(t, []string{label.SlotX, label.SlotEdgeIndex, label.SlotY, "mask"}, data.Keys())

	require.NoError(t, data.Set(label.SlotY, (*label.LabelTensor)(nil)))
	require.NoError(t, data.Set("mask", (*label.LabelTensor)(nil)))
	assert.Nil(t, data.Y)
	assert.Equal(t, []string{label.SlotX, label.SlotEdgeIndex}, data.Keys())
}
