package tool

import (
	"context"
	"errors"
	"fmt"

	"github.com/wintermute-agent/wintermute/core"
	"github.com/wintermute-agent/wintermute/internal/util"
	"github.com/wintermute-agent/wintermute/logging"
)

// Dispatcher resolves requested tool names against a registry and invokes
// handlers with exception sandboxing: the model only ever sees text results,
// and no handler failure aborts the session loop.
type Dispatcher struct {
	registry *Registry
	logger   logging.Logger
}

// NewDispatcher creates a dispatcher over the given registry.
func NewDispatcher(registry *Registry, logger logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Dispatcher{registry: registry, logger: logger}
}

// Registry returns the dispatcher's registry.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch executes one tool call and returns (resultText, shouldExit).
//
// The Action record is appended before anything else so a crashing handler
// still leaves an audit trail. Unknown names and handler failures are
// converted to plain text; shouldExit is true only when the terminating
// capability ran successfully.
func (d *Dispatcher) Dispatch(
	ctx context.Context,
	name string,
	inputs map[string]any,
	sessionID int64,
	actions *[]core.Action,
) (string, bool) {
	if inputs == nil {
		inputs = map[string]any{}
	}
	*actions = append(*actions, core.Action{Tool: name, Inputs: inputs})

	def := d.registry.Get(name)
	if def == nil {
		d.logger.Warn("unknown tool requested", "tool", name, "session_id", sessionID)
		return fmt.Sprintf("Unknown tool: %s", name), false
	}

	if err := util.ValidateParameters(inputs, def.InputSchema); err != nil {
		d.logger.Warn("tool input validation failed", "tool", name, "error", err)
		return errorText(name, &Error{Kind: KindValidation, Tool: name, Message: err.Error(), Err: err}), false
	}

	result, err := d.call(ctx, def, inputs, sessionID, actions)
	if err != nil {
		d.logger.Error("tool execution failed", "tool", name, "session_id", sessionID, "error", err)
		return errorText(name, err), false
	}

	d.logger.Info("tool executed", "tool", name, "session_id", sessionID)
	return result, def.Terminal
}

// call invokes the handler, recovering panics into execution errors so a
// misbehaving adapter cannot take down the session.
func (d *Dispatcher) call(
	ctx context.Context,
	def *Definition,
	inputs map[string]any,
	sessionID int64,
	actions *[]core.Action,
) (result string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &Error{Kind: KindExecution, Tool: def.Name, Message: fmt.Sprintf("panic: %v", r)}
		}
	}()

	return def.Handler(ctx, &Call{
		Inputs:    inputs,
		SessionID: sessionID,
		Actions:   actions,
	})
}

// errorText renders a failure in the fixed textual contract the model sees.
func errorText(name string, err error) string {
	var toolErr *Error
	if errors.As(err, &toolErr) {
		return fmt.Sprintf("Tool error (%s): %s", name, toolErr.Message)
	}
	return fmt.Sprintf("Tool error (%s): %s", name, err.Error())
}
