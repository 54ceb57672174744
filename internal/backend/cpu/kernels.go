package cpu

import (
	"github.com/dario-coscia/PINA/internal/parallel"
	"github.com/dario-coscia/PINA/internal/tensor"
)

func add[T tensor.Float](x, y T) T { return x + y }
func sub[T tensor.Float](x, y T) T { return x - y }
func mul[T tensor.Float](x, y T) T { return x * y }
func div[T tensor.Float](x, y T) T { return x / y }

// values returns the typed view of r. The dtype must match T.
func values[T tensor.Float](r *tensor.RawTensor) []T {
	var zero T
	switch any(zero).(type) {
	case float32:
		return any(r.AsFloat32()).([]T)
	default:
		return any(r.AsFloat64()).([]T)
	}
}

// broadcastIndex maps a flat output index to the flat index of an operand
// whose broadcast strides are given.
func broadcastIndex(i int, outStrides, inStrides []int) int {
	idx := 0
	for d, s := range outStrides {
		coord := i / s
		i %= s
		idx += coord * inStrides[d]
	}
	return idx
}

func binaryKernel[T tensor.Float](out, a, b *tensor.RawTensor, f func(x, y T) T, cfg parallel.Config) {
	o, x, y := values[T](out), values[T](a), values[T](b)
	shape := out.Shape()

	if a.Shape().Equal(shape) && b.Shape().Equal(shape) {
		parallel.ForRange(len(o), func(start, end int) {
			for i := start; i < end; i++ {
				o[i] = f(x[i], y[i])
			}
		}, cfg)
		return
	}

	outStrides := shape.ComputeStrides()
	aStrides := a.Shape().BroadcastStrides(shape)
	bStrides := b.Shape().BroadcastStrides(shape)
	parallel.ForRange(len(o), func(start, end int) {
		for i := start; i < end; i++ {
			o[i] = f(x[broadcastIndex(i, outStrides, aStrides)], y[broadcastIndex(i, outStrides, bStrides)])
		}
	}, cfg)
}

func unaryKernel[T tensor.Float](out, x *tensor.RawTensor, f func(float64) float64, cfg parallel.Config) {
	o, in := values[T](out), values[T](x)
	parallel.ForRange(len(o), func(start, end int) {
		for i := start; i < end; i++ {
			o[i] = T(f(float64(in[i])))
		}
	}, cfg)
}

// broadcastCopy fills out (shape already broadcast) from x.
func broadcastCopy[T tensor.Float](out, x *tensor.RawTensor) {
	o, in := values[T](out), values[T](x)
	shape := out.Shape()
	outStrides := shape.ComputeStrides()
	inStrides := x.Shape().BroadcastStrides(shape)
	for i := range o {
		o[i] = in[broadcastIndex(i, outStrides, inStrides)]
	}
}
