package nn

import (
	"fmt"
	"math/rand"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output tensor with shape [batch_size, out_features]
//
// Weights are initialized using Xavier/Glorot initialization.
// Biases are initialized to zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features], nil without bias
	backend     tensor.Backend
}

// LinearConfig holds optional Linear settings.
type LinearConfig struct {
	NoBias bool            // Skip the bias term
	DType  tensor.DataType // Parameter dtype (zero value: Float32)
	Rand   *rand.Rand      // Initialization source (nil: global math/rand)
}

// NewLinear creates a new float32 Linear layer with bias.
//
// rng seeds the Xavier initialization; nil uses the global source.
func NewLinear(inFeatures, outFeatures int, backend tensor.Backend, rng *rand.Rand) *Linear {
	return NewLinearWithConfig(inFeatures, outFeatures, backend, LinearConfig{Rand: rng})
}

// NewLinearWithConfig creates a new Linear layer.
func NewLinearWithConfig(inFeatures, outFeatures int, backend tensor.Backend, cfg LinearConfig) *Linear {
	weightShape := tensor.Shape{outFeatures, inFeatures}
	weight := NewParameter("weight",
		Xavier(inFeatures, outFeatures, weightShape, cfg.DType, backend.Device(), cfg.Rand))

	var bias *Parameter
	if !cfg.NoBias {
		bias = NewParameter("bias", tensor.Zeros(tensor.Shape{outFeatures}, cfg.DType, backend.Device()))
	}

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      weight,
		bias:        bias,
		backend:     backend,
	}
}

// Forward computes the output of the linear layer.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear) Forward(input *tensor.RawTensor) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 2 {
		panic(fmt.Sprintf("Linear.Forward: expected 2D input [batch, features], got shape %v", inputShape))
	}
	if inputShape[1] != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, inputShape[1]))
	}

	// [batch, in] @ [in, out] = [batch, out]
	output := l.backend.MatMul(input, l.backend.Transpose(l.weight.Tensor()))

	if l.bias != nil {
		// [out] broadcasts over the batch dimension.
		output = l.backend.Add(output, l.bias.Tensor())
	}

	return output
}

// Parameters returns the trainable parameters of this layer.
//
// Returns [weight, bias] if bias is present, otherwise [weight].
func (l *Linear) Parameters() []*Parameter {
	if l.bias != nil {
		return []*Parameter{l.weight, l.bias}
	}
	return []*Parameter{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
