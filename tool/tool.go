// Package tool implements the capability subsystem: declaring tools with
// schema-validated inputs, building an explicit ordered registry, and
// dispatching model-requested calls with consistent error handling and a
// per-session audit trail.
package tool

import (
	"context"
	"fmt"

	"github.com/wintermute-agent/wintermute/core"
	"github.com/wintermute-agent/wintermute/model"
)

// HandlerFunc executes one tool call. Inputs have already been validated
// against the definition's required-field list. The returned string is the
// text surfaced to the model. Failures should be returned as *Error; any
// other error is wrapped with KindExecution.
type HandlerFunc func(ctx context.Context, call *Call) (string, error)

// Call carries the dispatch context into a handler: the validated inputs,
// the current session id, and a mutable reference to the session's action
// log (so the terminating tool can persist it).
type Call struct {
	Inputs    map[string]any
	SessionID int64
	Actions   *[]core.Action
}

// String returns the named input as a string, or "" when absent.
func (c *Call) String(key string) string {
	s, _ := c.Inputs[key].(string)
	return s
}

// Int returns the named input as an int, tolerating the float64 values JSON
// decoding produces. Returns def when absent.
func (c *Call) Int(key string, def int) int {
	switch v := c.Inputs[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return def
	}
}

// Definition declares one capability: its advertised schema and its handler.
type Definition struct {
	// Name is the unique tool identifier (snake_case).
	Name string
	// Description is shown to the model to guide tool selection.
	Description string
	// InputSchema is a minimal JSON-Schema object surfaced to the model
	// verbatim; the dispatcher enforces its required-field list.
	InputSchema map[string]any
	// Terminal marks the session-terminating capability.
	Terminal bool
	// Handler executes the call.
	Handler HandlerFunc
}

// ModelDefinition converts the declaration to the wire shape advertised to
// the model. It must exactly match what the dispatcher accepts.
func (d *Definition) ModelDefinition() model.ToolDefinition {
	return model.ToolDefinition{
		Name:        d.Name,
		Description: d.Description,
		InputSchema: d.InputSchema,
	}
}

// ErrorKind categorizes handler failures at the dispatch boundary.
type ErrorKind string

const (
	// KindValidation means the inputs did not satisfy the declared schema.
	KindValidation ErrorKind = "validation"
	// KindExecution means the handler (or a collaborator it called) failed.
	KindExecution ErrorKind = "execution"
)

// Error is the tagged failure type handlers return. The dispatcher converts
// it to the textual contract the model sees; it never escapes the loop.
type Error struct {
	Kind    ErrorKind
	Tool    string
	Message string
	// Err optionally wraps the underlying cause.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("tool error [%s] in %s: %s", e.Kind, e.Tool, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError creates an execution error for the given tool.
func NewError(tool, message string) *Error {
	return &Error{Kind: KindExecution, Tool: tool, Message: message}
}

// WrapError wraps an underlying failure as an execution error.
func WrapError(tool string, err error) *Error {
	return &Error{Kind: KindExecution, Tool: tool, Message: err.Error(), Err: err}
}
