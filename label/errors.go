package label

import "errors"

// Error kinds shared by every package of the module. Failures are wrapped
// with fmt.Errorf("...: %w", kind) so callers classify them with errors.Is.
var (
	// ErrType reports a value of the wrong type assigned to a labeled slot.
	ErrType = errors.New("type error")

	// ErrLookup reports a label that is not present on a tensor.
	ErrLookup = errors.New("lookup error")

	// ErrValue reports ambiguous or malformed arguments.
	ErrValue = errors.New("value error")

	// ErrRuntime reports an operation invoked before its precondition holds.
	ErrRuntime = errors.New("runtime error")
)
