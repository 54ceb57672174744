package problem

import (
	"fmt"

	"github.com/dario-coscia/PINA/equation"
	"github.com/dario-coscia/PINA/geometry"
	"github.com/dario-coscia/PINA/label"
)

// Kind tells which shape a Condition has.
type Kind int

const (
	// LocationKind pairs a sampled location with an equation.
	LocationKind Kind = iota
	// InputKind pairs fixed input points with an equation.
	InputKind
	// DataKind pairs fixed input points with target outputs.
	DataKind
)

func (k Kind) String() string {
	switch k {
	case LocationKind:
		return "location"
	case InputKind:
		return "input_points"
	case DataKind:
		return "data"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Condition is one loss term of a problem. Its shape is fixed at
// construction: (location, equation), (input points, equation) or
// (input points, output points[, equation]).
type Condition struct {
	kind     Kind
	location geometry.Location
	equation equation.Equation
	input    *label.LabelTensor
	output   *label.LabelTensor
}

// NewLocationCondition builds a condition sampled from location.
func NewLocationCondition(location geometry.Location, eq equation.Equation) (*Condition, error) {
	if location == nil || eq == nil {
		return nil, fmt.Errorf("%w: location condition needs a location and an equation", label.ErrValue)
	}
	return &Condition{kind: LocationKind, location: location, equation: eq}, nil
}

// NewInputCondition builds a residual condition on fixed points.
func NewInputCondition(points *label.LabelTensor, eq equation.Equation) (*Condition, error) {
	if points == nil || eq == nil {
		return nil, fmt.Errorf("%w: input condition needs points and an equation", label.ErrValue)
	}
	return &Condition{kind: InputKind, input: points, equation: eq}, nil
}

// NewDataCondition builds a supervised condition. eq may be nil; when set,
// its residual is used instead of the output mismatch.
func NewDataCondition(input, output *label.LabelTensor, eq equation.Equation) (*Condition, error) {
	if input == nil || output == nil {
		return nil, fmt.Errorf("%w: data condition needs input and output points", label.ErrValue)
	}
	if input.Rows() != output.Rows() {
		return nil, fmt.Errorf("%w: %d input points for %d output points", label.ErrValue, input.Rows(), output.Rows())
	}
	return &Condition{kind: DataKind, input: input, output: output, equation: eq}, nil
}

// Kind returns the condition shape.
func (c *Condition) Kind() Kind { return c.kind }

// Location returns the sampling location, nil unless LocationKind.
func (c *Condition) Location() geometry.Location { return c.location }

// Equation returns the residual equation, possibly nil for DataKind.
func (c *Condition) Equation() equation.Equation { return c.equation }

// OutputPoints returns the targets of a DataKind condition.
func (c *Condition) OutputPoints() *label.LabelTensor { return c.output }
