package nn

import (
	"math"
	"math/rand"

	"github.com/dario-coscia/PINA/internal/tensor"
)

// Xavier (Glorot) initialization for weights.
//
// Initializes weights with values drawn from a uniform distribution:
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out)))
//
// A nil rng draws from the global math/rand source.
func Xavier(fanIn, fanOut int, shape tensor.Shape, dtype tensor.DataType, device tensor.Device, rng *rand.Rand) *tensor.RawTensor {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	//nolint:gosec // Using math/rand for weight initialization (not security-critical)
	uniform := rand.Float64
	if rng != nil {
		uniform = rng.Float64
	}

	t := tensor.Zeros(shape, dtype, device)
	values := make([]float64, t.NumElements())
	for i := range values {
		values[i] = (uniform()*2.0 - 1.0) * bound
	}
	t.SetFloat64s(values)
	return t
}
