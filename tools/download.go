package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"

	"github.com/wintermute-agent/wintermute/tool"
)

const maxDownloadBytes = 50 * 1024 * 1024

func downloadFileTool(deps Deps) *tool.Definition {
	return &tool.Definition{
		Name: "download_file",
		Description: "Download a file from a URL to local disk. Returns the local file path. " +
			"Use run_python to process the file afterward. 50 MB size limit.",
		InputSchema: objectSchema(map[string]any{
			"url": stringProp("The URL of the file to download"),
		}, "url"),
		Handler: func(ctx context.Context, call *tool.Call) (string, error) {
			localPath, err := downloadFile(ctx, deps, call.String("url"))
			if err != nil {
				return "", err
			}
			return "File downloaded to: " + localPath, nil
		},
	}
}

var unsafeNameChars = regexp.MustCompile(`[^\w.\-]`)

func downloadFile(ctx context.Context, deps Deps, rawURL string) (string, error) {
	if err := os.MkdirAll(deps.DownloadDir, 0o755); err != nil {
		return "", tool.WrapError("download_file", err)
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", tool.WrapError("download_file", err)
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" {
		name = "download"
	}
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if len(name) > 128 {
		name = name[:128]
	}
	localPath := filepath.Join(deps.DownloadDir, name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", tool.WrapError("download_file", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := deps.HTTPClient.Do(req)
	if err != nil {
		return "", tool.WrapError("download_file", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", tool.NewError("download_file", fmt.Sprintf("status %d fetching %s", resp.StatusCode, rawURL))
	}
	if resp.ContentLength > maxDownloadBytes {
		return "", tool.NewError("download_file",
			fmt.Sprintf("file too large: %d MB (limit 50 MB)", resp.ContentLength/(1024*1024)))
	}

	out, err := os.Create(localPath)
	if err != nil {
		return "", tool.WrapError("download_file", err)
	}
	defer out.Close()

	// Enforce the cap during streaming too; Content-Length is optional.
	written, err := io.Copy(out, io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		os.Remove(localPath)
		return "", tool.WrapError("download_file", err)
	}
	if written > maxDownloadBytes {
		os.Remove(localPath)
		return "", tool.NewError("download_file", "file exceeded 50 MB limit during download")
	}

	return localPath, nil
}
