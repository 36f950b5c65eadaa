package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wintermute-agent/wintermute/tool"
)

const tavilySearchURL = "https://api.tavily.com/search"

func webSearchTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name: "web_search",
		Description: "Search the web for current information. Returns a synthesized " +
			"answer when available plus a list of results with titles, URLs, and snippets.",
		InputSchema: objectSchema(map[string]any{
			"query":       stringProp("The search query"),
			"max_results": intProp("Maximum number of results (default 5)"),
		}, "query"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			if deps.TavilyAPIKey == "" {
				return "", tool.NewError("web_search", "search API key not configured")
			}
			return tavilySearch(ctx, deps, call.String("query"), call.Int("max_results", 5))
		},
	}
}

func tavilySearch(ctx context.Context, deps Deps, query string, maxResults int) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"api_key":        deps.TavilyAPIKey,
		"query":          query,
		"max_results":    maxResults,
		"search_depth":   "basic",
		"include_answer": true,
	})
	if err != nil {
		return "", tool.WrapError("web_search", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, tavilySearchURL, bytes.NewReader(payload))
	if err != nil {
		return "", tool.WrapError("web_search", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := deps.HTTPClient.Do(req)
	if err != nil {
		return "", tool.WrapError("web_search", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return "", tool.NewError("web_search", fmt.Sprintf("search API status %d: %s", resp.StatusCode, string(raw)))
	}

	var result struct {
		Answer  string `json:"answer"`
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", tool.WrapError("web_search", err)
	}

	var b strings.Builder
	if result.Answer != "" {
		fmt.Fprintf(&b, "Answer: %s\n\n", result.Answer)
	}
	if len(result.Results) == 0 && result.Answer == "" {
		return "No results found.", nil
	}
	for i, r := range result.Results {
		snippet := r.Content
		if len(snippet) > 500 {
			snippet = snippet[:500]
		}
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, r.Title, r.URL, snippet)
	}
	return strings.TrimSpace(b.String()), nil
}
