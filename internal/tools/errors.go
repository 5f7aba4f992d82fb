// Package tools provides the tool registry and execution framework.
//
// This file defines sentinel error types for tool execution.
package tools

import "fmt"

// ErrToolUnavailable is returned when a tool call targets a tool that is
// not present in the registry. The engine reports it back to the model as
// the tool's output so the model can adjust, rather than aborting the
// whole exchange.
type ErrToolUnavailable struct {
	ToolName string
}

// Error implements the error interface.
func (e *ErrToolUnavailable) Error() string {
	return fmt.Sprintf("tool %q is not available", e.ToolName)
}

// ErrMalformedCall is returned when a tool call names a known tool but
// its arguments are unusable (a required argument absent or empty).
// Unlike ErrToolUnavailable, this is fatal to the engine run: the model
// produced a structurally broken invocation, not a recoverable mistake.
type ErrMalformedCall struct {
	ToolName string
	Reason   string
}

// Error implements the error interface.
func (e *ErrMalformedCall) Error() string {
	return fmt.Sprintf("malformed call to tool %q: %s", e.ToolName, e.Reason)
}
