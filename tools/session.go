package tools

import (
	"context"

	"github.com/wintermute-agent/wintermute/tool"
)

func endSessionTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name: "end_session",
		Description: "End today's session. Write a summary of what you did and learned. " +
			"This exits the loop.",
		InputSchema: objectSchema(map[string]any{
			"summary": stringProp("A concise summary of today's session (2-5 sentences)"),
		}, "summary"),
		Terminal: true,
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			summary := call.String("summary")

			if err := deps.Store.EndSession(ctx, call.SessionID, summary, *call.Actions); err != nil {
				return "", tool.WrapError("end_session", err)
			}

			// Publishing the summary to the blog is best effort; the session
			// still ends cleanly when the blog is unreachable.
			if deps.Blog != nil {
				if err := deps.Blog.PushSessionSummary(ctx, call.SessionID, summary); err != nil {
					deps.Logger.Warn("could not push session summary to blog", "error", err)
				}
			}

			return summary, nil
		},
	}
}
