// Package label provides tensors with named columns.
//
// A LabelTensor is a 2-D tensor (rows are samples, columns are variables)
// plus one unique label per column. Every operation returns a new
// LabelTensor built through the tensor's backend, so when the backend
// records a gradient tape, derivatives flow through extraction, stacking
// and arithmetic.
//
//	x, _ := label.FromColumns([]string{"x", "y"}, [][]float64{{0, 1}, {2, 3}}, tensor.Float64, backend)
//	y, _ := x.Extract("y")
package label

import (
	"fmt"
	"strings"

	"github.com/dario-coscia/PINA/autodiff"
	"github.com/dario-coscia/PINA/tensor"
)

// LabelTensor is a 2-D tensor with one unique label per column.
//
// The label count always equals the column count and labels are unique.
// A LabelTensor is never modified in place except through SetLabels,
// which re-validates both invariants.
type LabelTensor struct {
	raw     *tensor.RawTensor
	labels  []string
	backend tensor.Backend
}

// New wraps a 2-D raw tensor with column labels.
func New(raw *tensor.RawTensor, labels []string, backend tensor.Backend) (*LabelTensor, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: nil tensor", ErrValue)
	}
	if backend == nil {
		return nil, fmt.Errorf("%w: nil backend", ErrValue)
	}
	if len(raw.Shape()) != 2 {
		return nil, fmt.Errorf("%w: labeled tensors are 2-D, got shape %v", ErrValue, raw.Shape())
	}
	if err := checkLabels(labels, raw.Shape()[1]); err != nil {
		return nil, err
	}
	return &LabelTensor{raw: raw, labels: clone(labels), backend: backend}, nil
}

// FromRows builds a LabelTensor from row-major values.
func FromRows(labels []string, rows [][]float64, dtype tensor.DataType, backend tensor.Backend) (*LabelTensor, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrValue)
	}
	values := make([]float64, 0, len(rows)*len(labels))
	for i, row := range rows {
		if len(row) != len(labels) {
			return nil, fmt.Errorf("%w: row %d has %d values, want %d", ErrValue, i, len(row), len(labels))
		}
		values = append(values, row...)
	}
	return FromValues(labels, values, dtype, backend)
}

// FromColumns builds a LabelTensor from one slice per label.
func FromColumns(labels []string, columns [][]float64, dtype tensor.DataType, backend tensor.Backend) (*LabelTensor, error) {
	if len(columns) != len(labels) {
		return nil, fmt.Errorf("%w: %d columns for %d labels", ErrValue, len(columns), len(labels))
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrValue)
	}
	n := len(columns[0])
	values := make([]float64, n*len(columns))
	for j, col := range columns {
		if len(col) != n {
			return nil, fmt.Errorf("%w: column %q has %d values, want %d", ErrValue, labels[j], len(col), n)
		}
		for i, v := range col {
			values[i*len(columns)+j] = v
		}
	}
	return FromValues(labels, values, dtype, backend)
}

// FromValues builds a LabelTensor from row-major values; the row count is
// len(values) / len(labels).
func FromValues(labels []string, values []float64, dtype tensor.DataType, backend tensor.Backend) (*LabelTensor, error) {
	if len(labels) == 0 || len(values)%len(labels) != 0 {
		return nil, fmt.Errorf("%w: %d values do not fill %d columns", ErrValue, len(values), len(labels))
	}
	raw, err := tensor.FromFloat64s(values, tensor.Shape{len(values) / len(labels), len(labels)}, dtype, tensor.CPU)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValue, err)
	}
	return New(raw, labels, backend)
}

func checkLabels(labels []string, cols int) error {
	if len(labels) != cols {
		return fmt.Errorf("%w: %d labels for %d columns", ErrValue, len(labels), cols)
	}
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, dup := seen[l]; dup {
			return fmt.Errorf("%w: duplicate label %q", ErrValue, l)
		}
		seen[l] = struct{}{}
	}
	return nil
}

func clone(labels []string) []string {
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// Raw returns the underlying tensor.
func (t *LabelTensor) Raw() *tensor.RawTensor { return t.raw }

// Backend returns the backend operations are dispatched to.
func (t *LabelTensor) Backend() tensor.Backend { return t.backend }

// Labels returns a copy of the column labels.
func (t *LabelTensor) Labels() []string { return clone(t.labels) }

// Rows returns the number of samples.
func (t *LabelTensor) Rows() int { return t.raw.Shape()[0] }

// Cols returns the number of labeled columns.
func (t *LabelTensor) Cols() int { return t.raw.Shape()[1] }

// DType returns the element type.
func (t *LabelTensor) DType() tensor.DataType { return t.raw.DType() }

// Float64s returns a row-major copy of the values.
func (t *LabelTensor) Float64s() []float64 { return t.raw.Float64s() }

// Has reports whether label names a column.
func (t *LabelTensor) Has(label string) bool {
	return t.index(label) >= 0
}

func (t *LabelTensor) index(label string) int {
	for i, l := range t.labels {
		if l == label {
			return i
		}
	}
	return -1
}

// SetLabels replaces the labels after checking count and uniqueness.
func (t *LabelTensor) SetLabels(labels []string) error {
	if err := checkLabels(labels, t.Cols()); err != nil {
		return err
	}
	t.labels = clone(labels)
	return nil
}

// WithLabels returns a LabelTensor sharing the same raw tensor under new labels.
func (t *LabelTensor) WithLabels(labels ...string) (*LabelTensor, error) {
	return New(t.raw, labels, t.backend)
}

// WithBackend returns a LabelTensor sharing the same raw tensor whose
// operations run on backend.
func (t *LabelTensor) WithBackend(backend tensor.Backend) *LabelTensor {
	return &LabelTensor{raw: t.raw, labels: clone(t.labels), backend: backend}
}

// Column returns a copy of the values of one column.
func (t *LabelTensor) Column(label string) ([]float64, error) {
	j := t.index(label)
	if j < 0 {
		return nil, fmt.Errorf("%w: label %q not in %v", ErrLookup, label, t.labels)
	}
	values := t.raw.Float64s()
	cols := t.Cols()
	out := make([]float64, t.Rows())
	for i := range out {
		out[i] = values[i*cols+j]
	}
	return out, nil
}

// Extract returns the columns named by labels, in the requested order.
// A label requested twice yields one column at its first position, so the
// result keeps unique labels.
func (t *LabelTensor) Extract(labels ...string) (*LabelTensor, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: no labels to extract", ErrValue)
	}
	indices := make([]int, 0, len(labels))
	selected := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, dup := seen[l]; dup {
			continue
		}
		j := t.index(l)
		if j < 0 {
			return nil, fmt.Errorf("%w: label %q not in %v", ErrLookup, l, t.labels)
		}
		seen[l] = struct{}{}
		indices = append(indices, j)
		selected = append(selected, l)
	}
	return &LabelTensor{
		raw:     t.backend.IndexSelect(t.raw, 1, indices),
		labels:  selected,
		backend: t.backend,
	}, nil
}

// SelectRows returns the rows at indices, in order.
func (t *LabelTensor) SelectRows(indices []int) (*LabelTensor, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: no rows selected", ErrValue)
	}
	for _, i := range indices {
		if i < 0 || i >= t.Rows() {
			return nil, fmt.Errorf("%w: row %d out of range [0, %d)", ErrLookup, i, t.Rows())
		}
	}
	return t.derive(t.backend.IndexSelect(t.raw, 0, indices)), nil
}

// HStack concatenates tensors along columns. Label sets must be disjoint
// and row counts equal.
func HStack(ts ...*LabelTensor) (*LabelTensor, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("%w: nothing to stack", ErrValue)
	}
	seen := make(map[string]struct{})
	var labels []string
	raws := make([]*tensor.RawTensor, len(ts))
	for i, t := range ts {
		if t.Rows() != ts[0].Rows() {
			return nil, fmt.Errorf("%w: hstack row mismatch %d != %d", ErrValue, t.Rows(), ts[0].Rows())
		}
		for _, l := range t.labels {
			if _, dup := seen[l]; dup {
				return nil, fmt.Errorf("%w: hstack requires disjoint labels, %q repeated", ErrValue, l)
			}
			seen[l] = struct{}{}
			labels = append(labels, l)
		}
		raws[i] = t.raw
	}
	if len(ts) == 1 {
		return ts[0], nil
	}
	return &LabelTensor{raw: ts[0].backend.Cat(raws, 1), labels: labels, backend: ts[0].backend}, nil
}

// VStack concatenates tensors along rows. Every tensor must carry the same
// label sequence.
func VStack(ts ...*LabelTensor) (*LabelTensor, error) {
	if len(ts) == 0 {
		return nil, fmt.Errorf("%w: nothing to stack", ErrValue)
	}
	raws := make([]*tensor.RawTensor, len(ts))
	for i, t := range ts {
		if !equalLabels(t.labels, ts[0].labels) {
			return nil, fmt.Errorf("%w: vstack label mismatch %v != %v", ErrValue, t.labels, ts[0].labels)
		}
		raws[i] = t.raw
	}
	if len(ts) == 1 {
		return ts[0], nil
	}
	return ts[0].derive(ts[0].backend.Cat(raws, 0)), nil
}

func equalLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// RequireGrad registers the tensor with the backend's gradient tape.
// It fails with ErrRuntime when the backend cannot differentiate.
func (t *LabelTensor) RequireGrad() error {
	d, ok := t.backend.(autodiff.Differentiator)
	if !ok {
		return fmt.Errorf("%w: backend %s does not track gradients", ErrRuntime, t.backend.Name())
	}
	d.RequireGrad(t.raw)
	return nil
}

// Detach returns a deep copy that is not connected to any recorded op.
func (t *LabelTensor) Detach() *LabelTensor {
	return t.derive(t.raw.Clone())
}

// Cast converts the values to dtype.
func (t *LabelTensor) Cast(dtype tensor.DataType) *LabelTensor {
	if t.DType() == dtype {
		return t
	}
	return t.derive(t.backend.Cast(t.raw, dtype))
}

// String formats the labels and shape.
func (t *LabelTensor) String() string {
	return fmt.Sprintf("LabelTensor[%s](%d×%d, %s)", strings.Join(t.labels, ","), t.Rows(), t.Cols(), t.DType())
}

func (t *LabelTensor) derive(raw *tensor.RawTensor) *LabelTensor {
	return &LabelTensor{raw: raw, labels: clone(t.labels), backend: t.backend}
}
