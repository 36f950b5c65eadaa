// Package tools contains the built-in capability adapters: each file wraps one
// external concern (search, browsing, market data, the blog, the inbox, the
// memory store) as tool definitions the dispatcher can serve. All wiring is
// explicit; nothing registers itself on import.
package tools

import (
	"net/http"
	"time"

	"github.com/wintermute-agent/wintermute/blog"
	"github.com/wintermute-agent/wintermute/logging"
	"github.com/wintermute-agent/wintermute/mail"
	"github.com/wintermute-agent/wintermute/store"
	"github.com/wintermute-agent/wintermute/tool"
)

const userAgent = "wintermute/1.0"

// Deps carries the collaborators the adapters close over.
type Deps struct {
	Store *store.Store
	Blog  *blog.Publisher
	Mail  *mail.Client

	// TavilyAPIKey enables web_search; empty means searches fail with a
	// clear message instead of silently degrading.
	TavilyAPIKey string
	// DownloadDir is where download_file saves files. Defaults to
	// /tmp/agent_downloads.
	DownloadDir string
	// PythonBin is the interpreter run_python invokes. Defaults to python3.
	PythonBin string

	Logger     logging.Logger
	HTTPClient *http.Client
}

func (d *Deps) defaults() {
	if d.Logger == nil {
		d.Logger = logging.NoOpLogger{}
	}
	if d.HTTPClient == nil {
		d.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if d.DownloadDir == "" {
		d.DownloadDir = "/tmp/agent_downloads"
	}
	if d.PythonBin == "" {
		d.PythonBin = "python3"
	}
}

// All returns the full capability set in the order it is advertised to the
// model. end_session is last and is the only terminal tool.
func All(deps Deps) []*tool.Definition {
	deps.defaults()
	return []*tool.Definition{
		webSearchTool(deps),
		webBrowseTool(deps),
		stockDataTool(deps),
		fetchRSSTool(deps),
		runPythonTool(deps),
		wikipediaTool(deps),
		weatherTool(deps),
		downloadFileTool(deps),
		writeBlogPostTool(deps),
		updateAboutTool(deps),
		readInboxTool(deps),
		replyEmailTool(deps),
		rememberTool(deps),
		recallTool(deps),
		deleteMemoryTool(deps),
		listPostsTool(deps),
		readPostTool(deps),
		setReminderTool(deps),
		endSessionTool(deps),
	}
}

// objectSchema builds the minimal JSON-Schema shape the model consumes.
func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func intProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}
