package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/wintermute-agent/wintermute/tool"
)

const (
	wikiSummaryURL = "https://en.wikipedia.org/api/rest_v1/page/summary/%s"
	wikiSearchURL  = "https://en.wikipedia.org/w/api.php?action=opensearch&limit=1&format=json&search=%s"
)

func wikipediaTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name:        "get_wikipedia",
		Description: "Look up a Wikipedia article summary for a topic. Returns the title, extract, and URL.",
		InputSchema: objectSchema(map[string]any{
			"topic": stringProp("The topic or article title to look up"),
		}, "topic"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			return wikipediaSummary(ctx, deps, call.String("topic"), true)
		},
	}
}

// wikipediaSummary tries a direct page lookup and, on 404, falls through to
// opensearch once to resolve the canonical title.
func wikipediaSummary(ctx context.Context, deps Deps, topic string, allowSearch bool) (string, error) {
	encoded := url.PathEscape(strings.ReplaceAll(topic, " ", "_"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(wikiSummaryURL, encoded), nil)
	if err != nil {
		return "", tool.WrapError("get_wikipedia", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := deps.HTTPClient.Do(req)
	if err != nil {
		return "", tool.WrapError("get_wikipedia", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var page struct {
			Title       string `json:"title"`
			Extract     string `json:"extract"`
			ContentURLs struct {
				Desktop struct {
					Page string `json:"page"`
				} `json:"desktop"`
			} `json:"content_urls"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
			return "", tool.WrapError("get_wikipedia", err)
		}
		return fmt.Sprintf("%s\n\n%s\n\n%s", page.Title, page.Extract, page.ContentURLs.Desktop.Page), nil

	case resp.StatusCode == http.StatusNotFound && allowSearch:
		title, err := wikipediaOpenSearch(ctx, deps, topic)
		if err != nil {
			return "", err
		}
		if title == "" {
			return fmt.Sprintf("No Wikipedia page found for '%s'.", topic), nil
		}
		return wikipediaSummary(ctx, deps, title, false)

	default:
		return "", tool.NewError("get_wikipedia", fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}
}

func wikipediaOpenSearch(ctx context.Context, deps Deps, topic string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf(wikiSearchURL, url.QueryEscape(topic)), nil)
	if err != nil {
		return "", tool.WrapError("get_wikipedia", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := deps.HTTPClient.Do(req)
	if err != nil {
		return "", tool.WrapError("get_wikipedia", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", tool.NewError("get_wikipedia", fmt.Sprintf("search status %d", resp.StatusCode))
	}

	// Opensearch payload: [query, [titles], [descriptions], [urls]]
	var results []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return "", tool.WrapError("get_wikipedia", err)
	}
	if len(results) < 2 {
		return "", nil
	}
	var titles []string
	if err := json.Unmarshal(results[1], &titles); err != nil || len(titles) == 0 {
		return "", nil
	}
	return titles[0], nil
}
