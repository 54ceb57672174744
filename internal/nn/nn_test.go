package nn_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/dario-coscia/PINA/internal/autodiff"
	"github.com/dario-coscia/PINA/internal/backend/cpu"
	"github.com/dario-coscia/PINA/internal/nn"
	"github.com/dario-coscia/PINA/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromSlice(t *testing.T, data []float64, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.FromSlice(data, tensor.Shape(shape), tensor.CPU)
	require.NoError(t, err)
	return raw
}

// TestParameter tests Parameter creation and methods.
func TestParameter(t *testing.T) {
	data := fromSlice(t, []float64{1, 2, 3}, 3)
	param := nn.NewParameter("test_param", data)

	assert.Equal(t, "test_param", param.Name())
	assert.Same(t, data, param.Tensor())
	assert.Nil(t, param.Grad())

	grad := fromSlice(t, []float64{0.1, 0.2, 0.3}, 3)
	param.SetGrad(grad)
	assert.Same(t, grad, param.Grad())

	param.ZeroGrad()
	assert.Nil(t, param.Grad())
}

func TestParameter_Cast(t *testing.T) {
	param := nn.NewParameter("w", fromSlice(t, []float64{1.5, -2}, 2))
	param.SetGrad(fromSlice(t, []float64{1, 1}, 2))

	param.Cast(tensor.Float32)
	assert.Equal(t, tensor.Float32, param.Tensor().DType())
	assert.Equal(t, []float32{1.5, -2}, param.Tensor().AsFloat32())
	assert.Nil(t, param.Grad())
}

func TestXavierBounds(t *testing.T) {
	w := nn.Xavier(4, 6, tensor.Shape{6, 4}, tensor.Float64, tensor.CPU, rand.New(rand.NewSource(3)))
	bound := math.Sqrt(6.0 / 10)
	for _, v := range w.Float64s() {
		assert.LessOrEqual(t, math.Abs(v), bound)
	}

	again := nn.Xavier(4, 6, tensor.Shape{6, 4}, tensor.Float64, tensor.CPU, rand.New(rand.NewSource(3)))
	assert.Equal(t, w.Float64s(), again.Float64s(), "same seed, same weights")
}

func TestLinear_Forward(t *testing.T) {
	backend := cpu.New()
	layer := nn.NewLinearWithConfig(2, 3, backend, nn.LinearConfig{DType: tensor.Float64})
	layer.Weight().Tensor().SetFloat64s([]float64{1, 0, 0, 1, 1, 1})
	layer.Bias().Tensor().SetFloat64s([]float64{0.5, -0.5, 0})

	out := layer.Forward(fromSlice(t, []float64{1, 2, 3, 4}, 2, 2))
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, []float64{1.5, 1.5, 3, 3.5, 3.5, 7}, out.Float64s())
	assert.Len(t, layer.Parameters(), 2)

	noBias := nn.NewLinearWithConfig(2, 3, backend, nn.LinearConfig{NoBias: true})
	assert.Len(t, noBias.Parameters(), 1)
	assert.Nil(t, noBias.Bias())

	assert.Panics(t, func() { layer.Forward(fromSlice(t, []float64{1, 2, 3}, 1, 3)) })
}

func TestActivationByName(t *testing.T) {
	backend := cpu.New()
	x := fromSlice(t, []float64{-1, 0.5}, 1, 2)

	tests := []struct {
		name string
		want func(float64) float64
	}{
		{"tanh", math.Tanh},
		{"sigmoid", func(v float64) float64 { return 1 / (1 + math.Exp(-v)) }},
		{"softplus", func(v float64) float64 { return math.Log1p(math.Exp(v)) }},
		{"relu", func(v float64) float64 { return math.Max(v, 0) }},
		{"sin", math.Sin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act, err := nn.ActivationByName(tt.name)
			require.NoError(t, err)
			module := act(backend)
			assert.Empty(t, module.Parameters())
			got := module.Forward(x).Float64s()
			for i, v := range x.Float64s() {
				assert.InDelta(t, tt.want(v), got[i], 1e-12)
			}
		})
	}

	_, err := nn.ActivationByName("gelu")
	assert.Error(t, err)
}

func TestFeedForward_Defaults(t *testing.T) {
	backend := cpu.New()
	model, err := nn.NewFeedForward(nn.FeedForwardConfig{InputDimensions: 2, OutputDimensions: 1}, backend)
	require.NoError(t, err)

	cfg := model.Config()
	assert.Equal(t, 20, cfg.InnerSize)
	assert.Equal(t, []int{20, 20}, cfg.Layers)
	// Linear, Tanh, Linear, Tanh, Linear
	assert.Equal(t, 5, model.Len())
	assert.Equal(t, 2*20+20+20*20+20+20*1+1, nn.NumParameters(model))

	out := model.Forward(tensor.Zeros(tensor.Shape{7, 2}, tensor.Float32, tensor.CPU))
	assert.Equal(t, tensor.Shape{7, 1}, out.Shape())
}

func TestFeedForward_ExplicitLayers(t *testing.T) {
	backend := cpu.New()
	model, err := nn.NewFeedForward(nn.FeedForwardConfig{
		InputDimensions:  3,
		OutputDimensions: 2,
		Layers:           []int{8, 4},
		NoBias:           true,
	}, backend)
	require.NoError(t, err)
	assert.Equal(t, 3*8+8*4+4*2, nn.NumParameters(model))

	_, err = nn.NewFeedForward(nn.FeedForwardConfig{InputDimensions: 0, OutputDimensions: 1}, backend)
	assert.Error(t, err)
	_, err = nn.NewFeedForward(nn.FeedForwardConfig{InputDimensions: 1, OutputDimensions: 1, Layers: []int{-1}}, backend)
	assert.Error(t, err)
}

func TestCastModule(t *testing.T) {
	backend := cpu.New()
	model, err := nn.NewFeedForward(nn.FeedForwardConfig{InputDimensions: 1, OutputDimensions: 1, InnerSize: 4}, backend)
	require.NoError(t, err)

	nn.Cast(model, tensor.Float64)
	for _, p := range model.Parameters() {
		assert.Equal(t, tensor.Float64, p.Tensor().DType())
	}
	out := model.Forward(tensor.Ones(tensor.Shape{3, 1}, tensor.Float64, tensor.CPU))
	assert.Equal(t, tensor.Float64, out.DType())
}

func TestMSELoss(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	pred := fromSlice(t, []float64{1, 2, 3, 4}, 2, 2)
	target := fromSlice(t, []float64{0, 2, 5, 4}, 2, 2)
	loss := nn.NewMSELoss(backend).Forward(pred, target)
	assert.InDelta(t, 5.0/4, loss.Float64s()[0], 1e-12)

	grads := autodiff.Backward(loss, backend)
	// d/dpred = 2 (pred - target) / n
	assert.InDeltaSlice(t, []float64{0.5, 0, -1, 0}, grads[pred].Float64s(), 1e-12)

	assert.Panics(t, func() { nn.NewMSELoss(backend).Forward(pred, fromSlice(t, []float64{1}, 1, 1)) })
}

func TestLpLoss(t *testing.T) {
	backend := cpu.New()
	pred := fromSlice(t, []float64{3, 4, 0, 0}, 2, 2)
	target := fromSlice(t, []float64{0, 0, 0, 1}, 2, 2)

	l2 := nn.NewLpLoss(backend, 2, false).Forward(pred, target)
	// row norms: 5 and 1
	assert.InDelta(t, 3.0, l2.Float64s()[0], 1e-12)

	l1 := nn.NewLpLoss(backend, 1, false).Forward(pred, target)
	assert.InDelta(t, 4.0, l1.Float64s()[0], 1e-9)

	assert.Panics(t, func() { nn.NewLpLoss(backend, 0.5, false) })
}

func TestFeedForward_TrainsWithBackward(t *testing.T) {
	backend := autodiff.New(cpu.New())
	model, err := nn.NewFeedForward(nn.FeedForwardConfig{
		InputDimensions:  1,
		OutputDimensions: 1,
		InnerSize:        5,
		NLayers:          1,
		DType:            tensor.Float64,
		Rand:             rand.New(rand.NewSource(11)),
	}, backend)
	require.NoError(t, err)

	backend.Tape().StartRecording()
	x := fromSlice(t, []float64{-1, 0, 1}, 3, 1)
	loss := nn.NewMSELoss(backend).Forward(model.Forward(x), tensor.Zeros(tensor.Shape{3, 1}, tensor.Float64, tensor.CPU))
	grads := autodiff.Backward(loss, backend)

	for _, p := range model.Parameters() {
		g, ok := grads[p.Tensor()]
		require.True(t, ok, "missing gradient for %s", p.Name())
		assert.True(t, g.Shape().Equal(p.Tensor().Shape()))
	}
}
