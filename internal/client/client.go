// Package client is a Go client for the DevConnector HTTP API.
//
// Credentials live on a Session rather than on the Client, so one Client can
// serve several users at once:
//
//	c := client.New("http://localhost:5000", nil)
//	s, err := c.Login(ctx, models.LoginRequest{Email: e, Password: p})
//	posts, err := s.Posts(ctx)
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ayush/devconnector/internal/apperr"
	"github.com/ayush/devconnector/internal/models"
)

const headerAuthToken = "x-auth-token"

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Msg        string
	Errors     []apperr.FieldError
}

func (e *APIError) Error() string {
	if e.Msg == "" && len(e.Errors) > 0 {
		return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Errors[0].Msg)
	}
	return fmt.Sprintf("api: %d: %s", e.StatusCode, e.Msg)
}

// Client talks to one API server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New builds a client. A nil httpClient gets a 30 second timeout.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// Session resumes a session from a previously issued token.
func (c *Client) Session(token string) *Session {
	return &Session{c: c, token: token}
}

// Register creates an account and returns a session for it.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*Session, error) {
	var out models.TokenResponse
	if err := c.do(ctx, "", http.MethodPost, "/api/users", req, &out); err != nil {
		return nil, err
	}
	return c.Session(out.Token), nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*Session, error) {
	var out models.TokenResponse
	if err := c.do(ctx, "", http.MethodPost, "/api/auth", req, &out); err != nil {
		return nil, err
	}
	return c.Session(out.Token), nil
}

// Profiles lists every profile.
func (c *Client) Profiles(ctx context.Context) ([]models.Profile, error) {
	var out []models.Profile
	err := c.do(ctx, "", http.MethodGet, "/api/profile", nil, &out)
	return out, err
}

// ProfileByUser returns the profile owned by userID.
func (c *Client) ProfileByUser(ctx context.Context, userID string) (*models.Profile, error) {
	var out models.Profile
	if err := c.do(ctx, "", http.MethodGet, "/api/profile/user/"+url.PathEscape(userID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GitHubRepos returns the upstream repository listing verbatim.
func (c *Client) GitHubRepos(ctx context.Context, username string) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, "", http.MethodGet, "/api/profile/github/"+url.PathEscape(username), nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, token, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s %s: encode: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(headerAuthToken, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := checkResp(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode: %w", method, path, err)
	}
	return nil
}

// checkResp turns a non-2xx response into an *APIError.
func checkResp(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Msg    string              `json:"msg"`
		Errors []apperr.FieldError `json:"errors"`
	}
	if json.Unmarshal(raw, &body) == nil {
		apiErr.Msg, apiErr.Errors = body.Msg, body.Errors
	} else {
		apiErr.Msg = strings.TrimSpace(string(raw))
	}
	return apiErr
}
