package tool

import (
	"errors"
	"fmt"
)

// ErrNotCallable is returned by ToolCall.Call when the resolved spec carries
// no invocable function.
var ErrNotCallable = errors.New("tool: spec has no callable function")

// DocumentationError reports a parameter whose description is missing from
// the documentation block, or a documented parameter that does not exist.
type DocumentationError struct {
	Tool   string
	Param  string
	Reason string
}

func (e *DocumentationError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "parameter is not documented"
	}
	if e.Param == "" {
		return fmt.Sprintf("tool %q: %s", e.Tool, reason)
	}
	return fmt.Sprintf("tool %q: parameter %q: %s", e.Tool, e.Param, reason)
}

// UnsupportedTypeError reports a parameter type with no function-calling
// schema representation.
type UnsupportedTypeError struct {
	Tool  string
	Param string
	Type  string
}

func (e *UnsupportedTypeError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("tool %q: unsupported type %s", e.Tool, e.Type)
	}
	return fmt.Sprintf("tool %q: parameter %q: unsupported type %s", e.Tool, e.Param, e.Type)
}

// UnknownToolError reports a tool call naming a tool that was not supplied.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("tool %q: unknown tool", e.Name)
}

// ArgumentDecodeError reports tool-call arguments that do not match the
// declared parameters.
type ArgumentDecodeError struct {
	Tool   string
	Param  string
	Reason string
}

func (e *ArgumentDecodeError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("tool %q: decode arguments: %s", e.Tool, e.Reason)
	}
	return fmt.Sprintf("tool %q: decode argument %q: %s", e.Tool, e.Param, e.Reason)
}
