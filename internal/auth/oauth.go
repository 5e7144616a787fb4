package auth

import (
	"log/slog"

	"galaxy-server/internal/auth/providers"
	"galaxy-server/internal/shared/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

type OAuthConfig struct {
	GitHubConfig     *oauth2.Config
	GitHubProvider   *providers.GitHubProvider
	GitHubConfigured bool
}

func InitOAuth() *OAuthConfig {
	cfg := config.GlobalConfig
	logger := slog.With("component", "oauth", "operation", "init")
	logger.Debug("Initializing OAuth configuration")

	githubConfig := &oauth2.Config{
		ClientID:     cfg.OAuth.GitHub.ClientID,
		ClientSecret: cfg.OAuth.GitHub.ClientSecret,
		RedirectURL:  cfg.OAuth.GitHub.RedirectURL,
		Scopes:       cfg.OAuth.GitHub.Scopes,
		Endpoint:     github.Endpoint,
	}

	githubConfigured := cfg.GitHubOAuthConfigured()

	logger.Info("OAuth configuration completed",
		"github_configured", githubConfigured,
		"github_redirect", githubConfig.RedirectURL,
		"operators", len(cfg.Auth.OperatorLogins),
	)

	if !githubConfigured && cfg.Auth.Enabled {
		logger.Warn("GitHub OAuth not configured, operator routes are unreachable")
	}

	return &OAuthConfig{
		GitHubConfig:     githubConfig,
		GitHubProvider:   providers.NewGitHubProvider(githubConfig, providers.GitHubAPIURL),
		GitHubConfigured: githubConfigured,
	}
}
