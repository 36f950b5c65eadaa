package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/wintermute-agent/wintermute/tool"
)

const (
	browseMaxChars = 10000
	browserUA      = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

func webBrowseTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name: "web_browse",
		Description: "Fetch a web page and return its cleaned plain-text content. " +
			"Use after web_search to read a page in full.",
		InputSchema: objectSchema(map[string]any{
			"url": stringProp("The URL to fetch"),
		}, "url"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			return browsePage(ctx, deps, call.String("url"))
		},
	}
}

func browsePage(ctx context.Context, deps Deps, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", tool.WrapError("web_browse", err)
	}
	req.Header.Set("User-Agent", browserUA)

	resp, err := deps.HTTPClient.Do(req)
	if err != nil {
		return "", tool.WrapError("web_browse", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", tool.NewError("web_browse", fmt.Sprintf("status %d fetching %s", resp.StatusCode, url))
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, 5*1024*1024))
	if err != nil {
		return "", tool.WrapError("web_browse", err)
	}

	text := cleanText(extractText(doc))
	if text == "" {
		return "(page contained no readable text)", nil
	}
	if len(text) > browseMaxChars {
		text = text[:browseMaxChars] + "\n\n[... page truncated ...]"
	}
	return text, nil
}

// skippedTags are stripped wholesale before text extraction, matching the
// usual boilerplate regions of a page.
var skippedTags = map[string]bool{
	"script": true, "style": true, "nav": true, "footer": true,
	"header": true, "noscript": true,
}

func extractText(node *html.Node) string {
	if node.Type == html.ElementNode && skippedTags[node.Data] {
		return ""
	}
	if node.Type == html.TextNode {
		return node.Data
	}
	var b strings.Builder
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		b.WriteString(extractText(child))
		if child.Type == html.ElementNode && isBlockTag(child.Data) {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func isBlockTag(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "section", "article", "pre", "blockquote":
		return true
	}
	return false
}

var (
	multiNewline = regexp.MustCompile(`\n{3,}`)
	multiSpace   = regexp.MustCompile(`[ \t]+`)
)

func cleanText(text string) string {
	text = multiSpace.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	text = strings.Join(lines, "\n")
	text = multiNewline.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
