// Package graph builds graph topologies over point clouds.
//
// A Handler connects points that lie within a radius of each other, or
// each point to its K nearest neighbours, and packs the result into a
// label.Data: Pos holds the points, EdgeIndex the 2×E int64 connectivity
// and EdgeAttr the E×1 edge lengths.
package graph

import (
	"fmt"
	"math"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/dario-coscia/PINA/internal/parallel"
	"github.com/dario-coscia/PINA/label"
	"github.com/dario-coscia/PINA/tensor"
)

// Kind selects how a handler reacts to moving points.
type Kind int

const (
	// Static keeps the topology built first.
	Static Kind = iota
	// Dynamic rebuilds the topology from the current positions.
	Dynamic
)

func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// AttrDistance labels the edge length column of EdgeAttr.
const AttrDistance = "distance"

// Config configures a Handler. Exactly one of Radius and K must be set.
type Config struct {
	Kind     Kind
	Radius   float64
	K        int
	Parallel parallel.Config // zero value: sequential
}

// Handler builds and maintains graph topology.
type Handler interface {
	// BuildGraph connects pos. x holds node features and may be nil.
	BuildGraph(pos, x *label.LabelTensor) (*label.Data, error)
	// UpdateTopology refreshes the edges of data after its Pos changed.
	UpdateTopology(data *label.Data) error
}

// New returns the handler for cfg.Kind.
func New(cfg Config) (Handler, error) {
	switch {
	case cfg.Radius < 0 || math.IsNaN(cfg.Radius):
		return nil, fmt.Errorf("%w: radius must be positive, got %v", label.ErrValue, cfg.Radius)
	case cfg.K < 0:
		return nil, fmt.Errorf("%w: neighbour count must be positive, got %d", label.ErrValue, cfg.K)
	case (cfg.Radius > 0) == (cfg.K > 0):
		return nil, fmt.Errorf("%w: set exactly one of radius and neighbour count", label.ErrValue)
	}
	b := builder{cfg: cfg}
	switch cfg.Kind {
	case Static:
		return &staticHandler{b}, nil
	case Dynamic:
		return &dynamicHandler{b}, nil
	}
	return nil, fmt.Errorf("%w: unknown graph kind %v", label.ErrValue, cfg.Kind)
}

type staticHandler struct{ builder }

// UpdateTopology keeps the existing edges.
func (h *staticHandler) UpdateTopology(data *label.Data) error {
	if data == nil || data.Pos == nil {
		return fmt.Errorf("%w: graph has no positions", label.ErrValue)
	}
	return nil
}

type dynamicHandler struct{ builder }

// UpdateTopology rebuilds the edges from data.Pos.
func (h *dynamicHandler) UpdateTopology(data *label.Data) error {
	if data == nil || data.Pos == nil {
		return fmt.Errorf("%w: graph has no positions", label.ErrValue)
	}
	index, attr, err := h.edges(data.Pos)
	if err != nil {
		return err
	}
	data.EdgeIndex, data.EdgeAttr = index, attr
	return nil
}

type builder struct {
	cfg Config
}

func (b builder) BuildGraph(pos, x *label.LabelTensor) (*label.Data, error) {
	if pos == nil {
		return nil, fmt.Errorf("%w: nil positions", label.ErrValue)
	}
	if x != nil && x.Rows() != pos.Rows() {
		return nil, fmt.Errorf("%w: %d feature rows for %d nodes", label.ErrValue, x.Rows(), pos.Rows())
	}
	index, attr, err := b.edges(pos)
	if err != nil {
		return nil, err
	}
	return &label.Data{X: x, Pos: pos, EdgeIndex: index, EdgeAttr: attr}, nil
}

// edges connects the rows of pos. Edges run from a node to its
// neighbours, ordered by source then distance. A graph without edges has
// nil EdgeIndex and EdgeAttr.
func (b builder) edges(pos *label.LabelTensor) (index, attr *label.LabelTensor, err error) {
	n, dim := pos.Rows(), pos.Cols()
	values := pos.Float64s()
	row := func(i int) []float64 { return values[i*dim : (i+1)*dim] }

	type neighbour struct {
		node int
		dist float64
	}
	adj := make([][]neighbour, n)
	parallel.For(n, func(i int) {
		var near []neighbour
		for j := range n {
			if j == i {
				continue
			}
			near = append(near, neighbour{j, floats.Distance(row(i), row(j), 2)})
		}
		slices.SortStableFunc(near, func(a, c neighbour) int {
			switch {
			case a.dist < c.dist:
				return -1
			case a.dist > c.dist:
				return 1
			}
			return a.node - c.node
		})
		if b.cfg.K > 0 {
			near = near[:min(b.cfg.K, len(near))]
		} else {
			cut := len(near)
			for k, nb := range near {
				if nb.dist > b.cfg.Radius {
					cut = k
					break
				}
			}
			near = near[:cut]
		}
		adj[i] = near
	}, b.cfg.Parallel)

	var src, dst []int64
	var dist []float64
	for i, near := range adj {
		for _, nb := range near {
			src = append(src, int64(i))
			dst = append(dst, int64(nb.node))
			dist = append(dist, nb.dist)
		}
	}
	e := len(src)
	if e == 0 {
		return nil, nil, nil
	}

	raw, err := tensor.FromSlice(append(src, dst...), tensor.Shape{2, e}, tensor.CPU)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", label.ErrValue, err)
	}
	names := make([]string, e)
	for k := range names {
		names[k] = "e" + strconv.Itoa(k)
	}
	if index, err = label.New(raw, names, pos.Backend()); err != nil {
		return nil, nil, err
	}
	attr, err = label.FromValues([]string{AttrDistance}, dist, pos.DType(), pos.Backend())
	if err != nil {
		return nil, nil, err
	}
	return index, attr, nil
}
