package tools

import (
	"context"
	"strings"

	"github.com/wintermute-agent/wintermute/tool"
)

func writeBlogPostTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name: "write_blog_post",
		Description: "Publish a blog post to your public blog. The post is automatically " +
			"shared to Twitter and Bluesky. Returns the live URL of the published post.",
		InputSchema: objectSchema(map[string]any{
			"title":    stringProp("Post title"),
			"markdown": stringProp("Full post content in Markdown"),
			"summary":  stringProp("2-3 sentence summary for social media posts"),
		}, "title", "markdown", "summary"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			result, err := deps.Blog.PublishPost(ctx,
				call.String("title"), call.String("markdown"), call.String("summary"), call.SessionID)
			if err != nil {
				return "", tool.WrapError("write_blog_post", err)
			}
			if strings.HasPrefix(result, "[LOCAL]") {
				return result, nil
			}
			return "Post published successfully!\nLive URL: " + result, nil
		},
	}
}

func updateAboutTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name:        "update_about",
		Description: "Update the About page on your blog with a self-description. Use this on your first session.",
		InputSchema: objectSchema(map[string]any{
			"content": stringProp("The about page content in Markdown"),
		}, "content"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			result, err := deps.Blog.UpdateAbout(ctx, call.String("content"))
			if err != nil {
				return "", tool.WrapError("update_about", err)
			}
			return result, nil
		},
	}
}
