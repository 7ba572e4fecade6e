package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ayush/devconnector/internal/apperr"
)

func TestFetchRepos(t *testing.T) {
	var gotQuery, gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery, gotAuth = r.URL.Path, r.URL.RawQuery, r.Header.Get("Authorization")
		if r.URL.Path == "/users/ghost/repos" {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"first","html_url":"https://github.com/jane/first"}]`))
	}))
	defer srv.Close()

	c := NewGitHubClient(srv.URL, "gh-token", time.Second)
	repos, err := c.FetchRepos(context.Background(), "jane")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(repos) != `[{"name":"first","html_url":"https://github.com/jane/first"}]` {
		t.Fatalf("unexpected body %s", repos)
	}
	if gotPath != "/users/jane/repos" || gotQuery != "direction=asc&per_page=5&sort=created" {
		t.Fatalf("unexpected request %s?%s", gotPath, gotQuery)
	}
	if gotAuth != "Bearer gh-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}

	if _, err := c.FetchRepos(context.Background(), "ghost"); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected NotFound for missing user, got %v", err)
	}
}

func TestFetchReposUpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewGitHubClient(url, "", time.Second)
	if _, err := c.FetchRepos(context.Background(), "jane"); !apperr.Is(err, apperr.KindUpstreamUnavailable) {
		t.Fatalf("expected UpstreamUnavailable, got %v", err)
	}
}

func TestFetchReposTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewGitHubClient(srv.URL, "", 50*time.Millisecond)
	if _, err := c.FetchRepos(context.Background(), "jane"); !apperr.Is(err, apperr.KindUpstreamUnavailable) {
		t.Fatalf("expected UpstreamUnavailable on timeout, got %v", err)
	}
}
