package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/wintermute-agent/wintermute/tool"
)

const (
	runTimeout     = 10 * time.Second
	maxOutputChars = 4000
)

func runPythonTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name: "run_python",
		Description: "Execute Python code in a subprocess and return its output. " +
			"10 second timeout, output capped at 4000 characters. Use for computation, " +
			"data analysis, or processing downloaded files.",
		InputSchema: objectSchema(map[string]any{
			"code": stringProp("The Python code to execute"),
		}, "code"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			return runPython(ctx, deps, call.String("code")), nil
		},
	}
}

// runPython never returns an error: timeouts and interpreter failures are all
// part of the output the agent reads.
func runPython(ctx context.Context, deps Deps, code string) string {
	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, deps.PythonBin, "-c", code)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Sprintf("Error: code execution timed out after %d seconds.", int(runTimeout.Seconds()))
	}

	output := stdout.String() + stderr.String()
	if output == "" {
		if err != nil {
			return fmt.Sprintf("Error running code: %s", err)
		}
		return "(no output)"
	}

	if len(output) > maxOutputChars {
		output = output[:maxOutputChars] + fmt.Sprintf("\n\n[... output truncated at %d chars ...]", maxOutputChars)
	}
	return output
}
