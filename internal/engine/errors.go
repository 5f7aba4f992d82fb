package engine

import "fmt"

// Kind classifies fatal engine failures.
type Kind int

const (
	// KindModel covers model-server failures: connect, non-2xx, decode,
	// timeout.
	KindModel Kind = iota

	// KindMalformedToolCall covers a tool call whose query argument is
	// absent or empty.
	KindMalformedToolCall

	// KindIterationLimit means the model never produced a text-only
	// response within the iteration bound.
	KindIterationLimit

	// KindUnsupportedTools means the model explicitly rejected the tool
	// schema.
	KindUnsupportedTools
)

// String returns the kind's name for logs and error text.
func (k Kind) String() string {
	switch k {
	case KindModel:
		return "model"
	case KindMalformedToolCall:
		return "malformed_tool_call"
	case KindIterationLimit:
		return "iteration_limit"
	case KindUnsupportedTools:
		return "unsupported_tools"
	default:
		return "unknown"
	}
}

// Error is a fatal engine failure. Provider failures never become one;
// they are fed back to the model as tool output.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}
