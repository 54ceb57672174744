package geometry

import (
	"fmt"
	"slices"

	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/tensor"
)

// Points is a set of sampled locations: one column per variable, values
// stored row-major.
type Points struct {
	Labels []string
	Data   []float64
}

// Rows returns the number of points.
func (p *Points) Rows() int {
	if len(p.Labels) == 0 {
		return 0
	}
	return len(p.Data) / len(p.Labels)
}

// Column returns the values of one variable.
func (p *Points) Column(name string) ([]float64, error) {
	j := slices.Index(p.Labels, name)
	if j < 0 {
		return nil, fmt.Errorf("%w: variable %q not in %v", label.ErrLookup, name, p.Labels)
	}
	cols := len(p.Labels)
	out := make([]float64, p.Rows())
	for i := range out {
		out[i] = p.Data[i*cols+j]
	}
	return out, nil
}

// Reorder returns the columns named by labels in that order.
func (p *Points) Reorder(labels ...string) (*Points, error) {
	idx := make([]int, len(labels))
	for k, l := range labels {
		idx[k] = slices.Index(p.Labels, l)
		if idx[k] < 0 {
			return nil, fmt.Errorf("%w: variable %q not in %v", label.ErrLookup, l, p.Labels)
		}
	}
	rows, cols := p.Rows(), len(p.Labels)
	data := make([]float64, 0, rows*len(labels))
	for i := range rows {
		for _, j := range idx {
			data = append(data, p.Data[i*cols+j])
		}
	}
	return &Points{Labels: slices.Clone(labels), Data: data}, nil
}

// Without drops the named columns. Unknown names are ignored.
func (p *Points) Without(labels ...string) *Points {
	var keep []string
	for _, l := range p.Labels {
		if !slices.Contains(labels, l) {
			keep = append(keep, l)
		}
	}
	if len(keep) == 0 {
		return &Points{}
	}
	out, _ := p.Reorder(keep...)
	return out
}

// Product returns the cartesian product of p and q: every row of p joined
// with every row of q. Label sets must be disjoint.
func (p *Points) Product(q *Points) (*Points, error) {
	for _, l := range q.Labels {
		if slices.Contains(p.Labels, l) {
			return nil, fmt.Errorf("%w: variable %q sampled twice", label.ErrValue, l)
		}
	}
	if p.Rows() == 0 {
		return q.clone(), nil
	}
	if q.Rows() == 0 {
		return p.clone(), nil
	}
	pc, qc := len(p.Labels), len(q.Labels)
	data := make([]float64, 0, p.Rows()*q.Rows()*(pc+qc))
	for i := range p.Rows() {
		for k := range q.Rows() {
			data = append(data, p.Data[i*pc:(i+1)*pc]...)
			data = append(data, q.Data[k*qc:(k+1)*qc]...)
		}
	}
	return &Points{Labels: append(slices.Clone(p.Labels), q.Labels...), Data: data}, nil
}

func (p *Points) clone() *Points {
	return &Points{Labels: slices.Clone(p.Labels), Data: slices.Clone(p.Data)}
}

// LabelTensor converts the points to a labeled tensor of dtype.
func (p *Points) LabelTensor(dtype tensor.DataType, backend tensor.Backend) (*label.LabelTensor, error) {
	if p.Rows() == 0 {
		return nil, fmt.Errorf("%w: no points", label.ErrValue)
	}
	return label.FromValues(p.Labels, p.Data, dtype, backend)
}
