package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestGitHubGetUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/user" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42, "login": "octocat", "name": "Mona", "avatar_url": "https://example.com/a.png"}`))
	}))
	defer srv.Close()

	p := NewGitHubProvider(&oauth2.Config{}, srv.URL)
	user, err := p.GetUserInfo(context.Background(), &oauth2.Token{AccessToken: "abc", TokenType: "Bearer"})
	if err != nil {
		t.Fatal(err)
	}
	if user.ID != "42" || user.Login != "octocat" || user.Name != "Mona" {
		t.Errorf("user = %+v", user)
	}

	if _, err := p.GetUserInfo(context.Background(), &oauth2.Token{AccessToken: "wrong", TokenType: "Bearer"}); err == nil {
		t.Error("expected an error for a rejected token")
	}
}

func TestGitHubAuthURL(t *testing.T) {
	p := NewGitHubProvider(&oauth2.Config{
		ClientID: "client",
		Endpoint: oauth2.Endpoint{AuthURL: "https://github.com/login/oauth/authorize"},
	}, GitHubAPIURL)

	url := p.GetAuthURL("xyz")
	if !strings.Contains(url, "state=xyz") || !strings.Contains(url, "client_id=client") {
		t.Errorf("auth url = %s", url)
	}
	if p.Name() != "github" {
		t.Errorf("Name() = %q", p.Name())
	}
}
