package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Every operation returns a new RawTensor and leaves its inputs untouched.
// Misuse (incompatible shapes, unsupported dtype) panics with an "op: reason"
// message.
type Backend interface {
	// Element-wise binary operations with NumPy broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations on 2-D tensors.
	MatMul(a, b *RawTensor) *RawTensor
	Transpose(x *RawTensor) *RawTensor

	// Shape operations.
	Reshape(x *RawTensor, shape Shape) *RawTensor
	Expand(x *RawTensor, shape Shape) *RawTensor // broadcast to shape

	// Scalar operations.
	AddScalar(x *RawTensor, s float64) *RawTensor
	MulScalar(x *RawTensor, s float64) *RawTensor
	PowScalar(x *RawTensor, p float64) *RawTensor

	// Element-wise math.
	Neg(x *RawTensor) *RawTensor
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sin(x *RawTensor) *RawTensor
	Cos(x *RawTensor) *RawTensor

	// Activation functions.
	Tanh(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	Softplus(x *RawTensor) *RawTensor
	ReLU(x *RawTensor) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor // all elements, scalar result
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Indexing and joining.
	Cat(ts []*RawTensor, dim int) *RawTensor
	IndexSelect(x *RawTensor, dim int, indices []int) *RawTensor
	// IndexScatter is the adjoint of IndexSelect: it places the slices of x at
	// indices of a zero tensor whose dim has the given size, adding duplicates.
	IndexScatter(x *RawTensor, dim int, indices []int, size int) *RawTensor

	// Type conversion.
	Cast(x *RawTensor, dtype DataType) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
