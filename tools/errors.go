package tools

import (
	"errors"
	"fmt"
)

// Registry and argument errors.
var (
	// ErrToolAlreadyRegistered is returned when registering a duplicate name.
	ErrToolAlreadyRegistered = errors.New("tool already registered")

	// ErrInvalidDefinition is returned for a definition without name or handler.
	ErrInvalidDefinition = errors.New("invalid tool definition")

	// ErrUnknownTool is returned when an invocation names an unregistered tool.
	ErrUnknownTool = errors.New("tool not found")

	// ErrInvalidArguments is returned when arguments do not match the declared schema
	// or are semantically invalid.
	ErrInvalidArguments = errors.New("invalid arguments")
)

// Error codes carried by ToolError.
const (
	CodeUnknownTool      = "UNKNOWN_TOOL"
	CodeInvalidArguments = "INVALID_ARGUMENTS"
	CodeExecution        = "EXECUTION_ERROR"
	CodeTimeout          = "TIMEOUT"
)

// ToolError is the normalised failure of a tool invocation.
type ToolError struct {
	Tool    string `json:"tool"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
}

func (e *ToolError) Unwrap() error { return e.Err }
