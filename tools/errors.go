package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/inspirehep-mcp/inspire"
)

// Registry errors.
var (
	// ErrUnknownTool indicates no tool is registered under the requested name.
	ErrUnknownTool = errors.New("tools: unknown tool")

	// ErrDuplicateTool indicates a tool name is already registered.
	ErrDuplicateTool = errors.New("tools: duplicate tool")

	// ErrInvalidTool indicates a tool definition is missing its name or handler.
	ErrInvalidTool = errors.New("tools: invalid tool definition")

	// ErrInvalidArguments indicates call arguments are not a JSON object.
	ErrInvalidArguments = errors.New("tools: arguments must be a JSON object")
)

// InvalidArgumentError reports a tool argument that failed validation.
// Its message is shown to the caller verbatim.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string { return e.Message }

func invalidArg(format string, args ...any) error {
	return &InvalidArgumentError{Message: fmt.Sprintf(format, args...)}
}

// ErrorKind classifies a tool failure for telemetry: an inspire error kind,
// "invalid_argument", "timeout" or "canceled". Other errors yield "".
func ErrorKind(err error) string {
	var ia *InvalidArgumentError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ia):
		return "invalid_argument"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	if kind, ok := inspire.KindOf(err); ok {
		return string(kind)
	}
	return ""
}
