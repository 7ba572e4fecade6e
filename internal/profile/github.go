package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ayush/devconnector/internal/apperr"
)

const (
	defaultGitHubURL     = "https://api.github.com"
	defaultGitHubTimeout = 10 * time.Second
	reposPerPage         = 5
	maxReposBytes        = 1 << 20
)

// GitHubClient proxies repository listings from the GitHub REST API. There
// is no retry and no cache.
type GitHubClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewGitHubClient builds a client. Empty baseURL and zero timeout fall back
// to the public API and ten seconds.
func NewGitHubClient(baseURL, token string, timeout time.Duration) *GitHubClient {
	if baseURL == "" {
		baseURL = defaultGitHubURL
	}
	if timeout <= 0 {
		timeout = defaultGitHubTimeout
	}
	return &GitHubClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchRepos returns the user's oldest public repositories as the raw
// upstream JSON array.
func (c *GitHubClient) FetchRepos(ctx context.Context, username string) (json.RawMessage, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.NotFound("No Github profile found")
	}

	q := url.Values{}
	q.Set("per_page", fmt.Sprint(reposPerPage))
	q.Set("sort", "created")
	q.Set("direction", "asc")
	endpoint := fmt.Sprintf("%s/users/%s/repos?%s", c.baseURL, url.PathEscape(username), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("github: build request: %w", err)
	}
	req.Header.Set("User-Agent", "devconnector")
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, "Github is unavailable", err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp); err != nil {
		slog.InfoContext(ctx, "github lookup failed", "username", username, "error", err)
		return nil, apperr.Wrap(apperr.KindNotFound, "No Github profile found", err)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReposBytes))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstreamUnavailable, "Github is unavailable", err)
	}
	if !json.Valid(body) {
		return nil, apperr.New(apperr.KindUpstreamUnavailable, "Github is unavailable")
	}
	return json.RawMessage(body), nil
}

// checkResp returns an error including the upstream body if the status is
// not 2xx.
func checkResp(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("github returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
