// Package blog publishes posts and pages to a GitHub Pages (Jekyll) site via
// the GitHub contents API. In local mode everything is written under an output
// directory instead, so the agent can run without credentials.
package blog

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/wintermute-agent/wintermute/logging"
	"github.com/wintermute-agent/wintermute/social"
	"github.com/wintermute-agent/wintermute/store"
)

const (
	githubAPIBase     = "https://api.github.com"
	githubAPIVersion  = "2022-11-28"
	sessionLogPath    = "_data/sessions.json"
	sessionLogMaxDays = 90
	maxSlugLen        = 60
)

// Config configures a Publisher.
type Config struct {
	// Token is a GitHub token with contents write access to Repo.
	Token string
	// Repo is the blog repository in "owner/name" form.
	Repo string
	// PagesURL is the public base URL of the rendered site.
	PagesURL string
	// LocalMode writes files under LocalDir instead of calling GitHub.
	LocalMode bool
	// LocalDir is the local-mode output directory. Defaults to "output".
	LocalDir string
}

// Options holds optional Publisher collaborators.
type Options struct {
	Logger     logging.Logger
	HTTPClient *http.Client
	// Sharer announces published posts on social platforms. Nil disables
	// sharing.
	Sharer *social.Sharer
	// Clock is injectable for tests; defaults to time.Now.
	Clock func() time.Time
}

// Publisher pushes content to the blog repository and records published posts
// in the store.
type Publisher struct {
	config     Config
	store      *store.Store
	logger     logging.Logger
	httpClient *http.Client
	sharer     *social.Sharer
	clock      func() time.Time
}

// New creates a Publisher backed by the given store.
func New(config Config, st *store.Store, optFns ...func(o *Options)) *Publisher {
	opts := Options{
		Logger:     logging.NoOpLogger{},
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Clock:      time.Now,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if config.LocalDir == "" {
		config.LocalDir = "output"
	}
	return &Publisher{
		config:     config,
		store:      st,
		logger:     opts.Logger,
		httpClient: opts.HTTPClient,
		sharer:     opts.Sharer,
		clock:      opts.Clock,
	}
}

// PublishPost publishes a post, shares it to social platforms, records it in
// the store, and updates the session log. It returns the live URL (or the
// local path in local mode).
func (p *Publisher) PublishPost(ctx context.Context, title, markdown, summary string, sessionID int64) (string, error) {
	now := p.clock().UTC()
	dateStr := now.Format("2006-01-02")
	slug := Slugify(title)

	content := frontMatter(title, now.Format("2006-01-02 15:04:05 +0000"), slug) + "\n" + markdown
	filename := fmt.Sprintf("_posts/%s-%s.md", dateStr, slug)

	if p.config.LocalMode {
		localPath := filepath.Join(p.config.LocalDir, "posts", fmt.Sprintf("%s-%s.md", dateStr, slug))
		if err := writeLocal(localPath, content); err != nil {
			return "", err
		}
		if _, err := p.store.UpsertPost(ctx, &store.Post{
			Title: title, Slug: slug, Content: markdown, SessionID: sessionID,
		}); err != nil {
			return "", err
		}
		if err := p.appendSessionLog(ctx, sessionID, title, "[local] "+localPath, ""); err != nil {
			p.logger.Warn("session log update failed", "error", err)
		}
		return fmt.Sprintf("[LOCAL] Post written to %s", localPath), nil
	}

	if err := p.putFile(ctx, filename, content, "Post: "+title); err != nil {
		return "", err
	}

	postURL := fmt.Sprintf("%s/%s/%s/", strings.TrimRight(p.config.PagesURL, "/"), strings.ReplaceAll(dateStr, "-", "/"), slug)

	var shared social.ShareResult
	if p.sharer != nil {
		shared = p.sharer.SharePost(ctx, title, summary, postURL)
	}

	if _, err := p.store.UpsertPost(ctx, &store.Post{
		Title: title, Slug: slug, Content: markdown, SessionID: sessionID,
		TwitterURL: shared.TwitterURL, BlueskyURL: shared.BlueskyURL,
	}); err != nil {
		return "", err
	}

	if err := p.appendSessionLog(ctx, sessionID, title, postURL, ""); err != nil {
		p.logger.Warn("session log update failed", "error", err)
	}
	if err := p.PublishFeed(ctx); err != nil {
		p.logger.Warn("feed update failed", "error", err)
	}

	return postURL, nil
}

// UpdateAbout replaces the blog's about page.
func (p *Publisher) UpdateAbout(ctx context.Context, content string) (string, error) {
	if p.config.LocalMode {
		localPath := filepath.Join(p.config.LocalDir, "about.md")
		if err := writeLocal(localPath, content); err != nil {
			return "", err
		}
		return fmt.Sprintf("[LOCAL] About page written to %s", localPath), nil
	}

	full := fmt.Sprintf("---\nlayout: default\ntitle: About\npermalink: /about/\n---\n\n%s\n", content)
	if err := p.putFile(ctx, "about.md", full, "Update about page"); err != nil {
		return "", err
	}
	return "About page updated successfully.", nil
}

// PushSessionSummary records the end-of-session summary in the blog's session
// log. Called by the terminating tool; failures there are logged, not fatal.
func (p *Publisher) PushSessionSummary(ctx context.Context, sessionID int64, summary string) error {
	return p.appendSessionLog(ctx, sessionID, "", "", summary)
}

// sessionLogEntry is one day's row in _data/sessions.json.
type sessionLogEntry struct {
	Date      string `json:"date"`
	SessionID int64  `json:"session_id"`
	PostTitle string `json:"post_title,omitempty"`
	PostURL   string `json:"post_url,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// appendSessionLog merges today's entry into the session log, keeping the
// last 90 days.
func (p *Publisher) appendSessionLog(ctx context.Context, sessionID int64, postTitle, postURL, summary string) error {
	today := p.clock().UTC().Format("2006-01-02")

	sessions, err := p.readSessionLog(ctx)
	if err != nil {
		return err
	}

	merged := false
	for i := range sessions {
		if sessions[i].Date == today {
			sessions[i].SessionID = sessionID
			if postTitle != "" {
				sessions[i].PostTitle = postTitle
			}
			if postURL != "" {
				sessions[i].PostURL = postURL
			}
			if summary != "" {
				sessions[i].Summary = summary
			}
			merged = true
			break
		}
	}
	if !merged {
		sessions = append(sessions, sessionLogEntry{
			Date:      today,
			SessionID: sessionID,
			PostTitle: postTitle,
			PostURL:   postURL,
			Summary:   summary,
		})
	}
	if len(sessions) > sessionLogMaxDays {
		sessions = sessions[len(sessions)-sessionLogMaxDays:]
	}

	encoded, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return err
	}

	if p.config.LocalMode {
		return writeLocal(filepath.Join(p.config.LocalDir, "sessions.json"), string(encoded))
	}
	return p.putFile(ctx, sessionLogPath, string(encoded), "Session log: "+today)
}

func (p *Publisher) readSessionLog(ctx context.Context) ([]sessionLogEntry, error) {
	var raw []byte
	if p.config.LocalMode {
		data, err := os.ReadFile(filepath.Join(p.config.LocalDir, "sessions.json"))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		raw = data
	} else {
		content, _, err := p.getFile(ctx, sessionLogPath)
		if err != nil {
			return nil, err
		}
		if content == nil {
			return nil, nil
		}
		raw = content
	}

	var sessions []sessionLogEntry
	if err := json.Unmarshal(raw, &sessions); err != nil {
		return nil, fmt.Errorf("decode session log: %w", err)
	}
	return sessions, nil
}

// getFile fetches a file from the repo. A nil content with nil error means
// the file does not exist.
func (p *Publisher) getFile(ctx context.Context, path string) ([]byte, string, error) {
	url := fmt.Sprintf("%s/repos/%s/contents/%s", githubAPIBase, p.config.Repo, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	p.setHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", nil
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, "", fmt.Errorf("github API error %d: %s", resp.StatusCode, string(raw))
	}

	var file struct {
		Content string `json:"content"`
		SHA     string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, "", err
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return nil, "", err
	}
	return decoded, file.SHA, nil
}

// putFile creates or updates a file in the repo, fetching the blob SHA first
// when the file already exists.
func (p *Publisher) putFile(ctx context.Context, path, content, commitMessage string) error {
	_, sha, err := p.getFile(ctx, path)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"message": commitMessage,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
	}
	if sha != "" {
		payload["sha"] = sha
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/repos/%s/contents/%s", githubAPIBase, p.config.Repo, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	p.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return fmt.Errorf("github API error %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

func (p *Publisher) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.config.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
}

func writeLocal(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugSpace    = regexp.MustCompile(`[\s_]+`)
	slugCollapse = regexp.MustCompile(`-+`)
)

// Slugify derives a URL-safe slug from a post title, capped at 60 characters.
func Slugify(title string) string {
	slug := strings.ToLower(title)
	slug = slugStrip.ReplaceAllString(slug, "")
	slug = slugSpace.ReplaceAllString(slug, "-")
	slug = slugCollapse.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLen {
		slug = slug[:maxSlugLen]
	}
	return strings.Trim(slug, "-")
}

func frontMatter(title, date, slug string) string {
	escaped := strings.ReplaceAll(title, `"`, `\"`)
	return fmt.Sprintf("---\nlayout: post\ntitle: \"%s\"\ndate: %s\nslug: %s\n---\n", escaped, date, slug)
}
