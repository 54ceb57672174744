package label

import (
	"fmt"
	"slices"
)

// Slot names of a Data container.
const (
	SlotX         = "x"
	SlotEdgeIndex = "edge_index"
	SlotEdgeAttr  = "edge_attr"
	SlotY         = "y"
	SlotPos       = "pos"
	SlotTime      = "time"
)

// Data is a graph container whose slots only hold LabelTensors.
//
// The fixed slots are typed fields, so assigning anything else does not
// compile. Set is the dynamic entry point and rejects other types with
// ErrType. Extra slots are kept by name.
type Data struct {
	X         *LabelTensor // node features [num_nodes, num_node_features]
	EdgeIndex *LabelTensor // connectivity in COO format [2, num_edges], int64
	EdgeAttr  *LabelTensor // edge features [num_edges, num_edge_features]
	Y         *LabelTensor // targets
	Pos       *LabelTensor // node positions [num_nodes, num_dimensions]
	Time      *LabelTensor // timestamps [num_nodes or num_edges, 1]

	extra map[string]*LabelTensor
}

// Set assigns value to slot. Values that are not *LabelTensor fail with
// ErrType. A nil *LabelTensor clears the slot.
func (d *Data) Set(slot string, value any) error {
	t, ok := value.(*LabelTensor)
	if !ok {
		return fmt.Errorf("%w: slot %q expects *LabelTensor, got %T", ErrType, slot, value)
	}
	if p := d.field(slot); p != nil {
		*p = t
		return nil
	}
	if t == nil {
		delete(d.extra, slot)
		return nil
	}
	if d.extra == nil {
		d.extra = make(map[string]*LabelTensor)
	}
	d.extra[slot] = t
	return nil
}

// Get returns the tensor stored in slot.
func (d *Data) Get(slot string) (*LabelTensor, bool) {
	if p := d.field(slot); p != nil {
		return *p, *p != nil
	}
	t, ok := d.extra[slot]
	return t, ok
}

func (d *Data) field(slot string) **LabelTensor {
	switch slot {
	case SlotX:
		return &d.X
	case SlotEdgeIndex:
		return &d.EdgeIndex
	case SlotEdgeAttr:
		return &d.EdgeAttr
	case SlotY:
		return &d.Y
	case SlotPos:
		return &d.Pos
	case SlotTime:
		return &d.Time
	}
	return nil
}

// Keys returns the names of the populated slots: fixed slots in
// declaration order, then extra slots sorted.
func (d *Data) Keys() []string {
	var keys []string
	for _, slot := range []string{SlotX, SlotEdgeIndex, SlotEdgeAttr, SlotY, SlotPos, SlotTime} {
		if *d.field(slot) != nil {
			keys = append(keys, slot)
		}
	}
	extra := make([]string, 0, len(d.extra))
	for k := range d.extra {
		extra = append(extra, k)
	}
	slices.Sort(extra)
	return append(keys, extra...)
}

// NumNodes infers the node count from X, Pos, or the largest edge endpoint.
func (d *Data) NumNodes() int {
	switch {
	case d.X != nil:
		return d.X.Rows()
	case d.Pos != nil:
		return d.Pos.Rows()
	case d.EdgeIndex != nil:
		n := 0
		for _, v := range d.EdgeIndex.Float64s() {
			n = max(n, int(v)+1)
		}
		return n
	}
	return 0
}

// NumEdges returns the number of columns of EdgeIndex.
func (d *Data) NumEdges() int {
	if d.EdgeIndex == nil {
		return 0
	}
	return d.EdgeIndex.Cols()
}

// NumNodeFeatures returns the column count of X.
func (d *Data) NumNodeFeatures() int {
	if d.X == nil {
		return 0
	}
	return d.X.Cols()
}

func (d *Data) edges() (src, dst []int) {
	if d.EdgeIndex == nil {
		return nil, nil
	}
	values := d.EdgeIndex.Float64s()
	e := d.EdgeIndex.Cols()
	src = make([]int, e)
	dst = make([]int, e)
	for i := range e {
		src[i] = int(values[i])
		dst[i] = int(values[e+i])
	}
	return src, dst
}

// IsDirected reports whether some edge lacks its reverse.
func (d *Data) IsDirected() bool {
	src, dst := d.edges()
	type edge struct{ a, b int }
	set := make(map[edge]struct{}, len(src))
	for i := range src {
		set[edge{src[i], dst[i]}] = struct{}{}
	}
	for i := range src {
		if _, ok := set[edge{dst[i], src[i]}]; !ok {
			return true
		}
	}
	return false
}

// HasIsolatedNodes reports whether some node appears in no edge.
func (d *Data) HasIsolatedNodes() bool {
	n := d.NumNodes()
	connected := make([]bool, n)
	src, dst := d.edges()
	for i := range src {
		if src[i] < n && dst[i] < n {
			connected[src[i]] = true
			connected[dst[i]] = true
		}
	}
	return slices.Contains(connected, false)
}
