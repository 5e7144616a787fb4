package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"galaxy-server/internal/auth"
	"galaxy-server/internal/auth/providers"
	"galaxy-server/internal/shared/config"
	"galaxy-server/internal/shared/cookies"
	"galaxy-server/internal/shared/errors"
	"galaxy-server/internal/shared/response"
)

type OAuthHandler struct {
	provider     providers.OAuthProvider
	states       auth.StateStore
	isConfigured bool
}

func NewOAuthHandler(provider providers.OAuthProvider, states auth.StateStore, isConfigured bool) *OAuthHandler {
	return &OAuthHandler{
		provider:     provider,
		states:       states,
		isConfigured: isConfigured,
	}
}

func (h *OAuthHandler) HandleAuth(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	logger := slog.With("handler", name+"_oauth_init")

	if !h.isConfigured {
		response.Error(w, r, logger, errors.External(fmt.Sprintf("%s OAuth is not properly configured", name)))
		return
	}

	state, err := h.states.Generate(r.Context(), name, r.UserAgent())
	if err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to initialize OAuth flow", err))
		return
	}

	http.Redirect(w, r, h.provider.GetAuthURL(state), http.StatusTemporaryRedirect)
}

func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	name := h.provider.Name()
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	errorParam := r.URL.Query().Get("error")

	logger := slog.With(
		"handler", name+"_oauth_callback",
		"user_agent", r.UserAgent(),
		"ip", r.RemoteAddr,
		"has_code", code != "",
		"has_state", state != "",
	)

	if errorParam != "" {
		logger.Warn("OAuth authorization denied",
			"oauth_error", errorParam,
			"error_description", r.URL.Query().Get("error_description"))
		redirectWithError(w, r, "oauth_denied")
		return
	}

	if _, err := h.states.Validate(r.Context(), state, name, r.UserAgent()); err != nil {
		logger.Warn("OAuth state validation failed", "error", err)
		redirectWithError(w, r, "oauth_error")
		return
	}

	if code == "" {
		logger.Error("OAuth callback missing authorization code")
		redirectWithError(w, r, "oauth_error")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	token, err := h.provider.ExchangeCode(ctx, code)
	if err != nil {
		logger.Error("Failed to exchange authorization code", "error", err)
		redirectWithError(w, r, "oauth_error")
		return
	}

	user, err := h.provider.GetUserInfo(ctx, token)
	if err != nil {
		logger.Error("Failed to get user info", "error", err)
		redirectWithError(w, r, "oauth_error")
		return
	}

	role := auth.RoleFor(user.Login)
	userLogger := logger.With("login", user.Login, "provider_user_id", user.ID, "role", role)

	jwtToken, err := auth.GenerateJWT(user.Login, role)
	if err != nil {
		userLogger.Error("Failed to generate JWT token", "error", err)
		redirectWithError(w, r, "auth_error")
		return
	}

	cookies.SetAuthCookie(w, jwtToken)

	userLogger.Info("OAuth authentication successful")

	successURL := fmt.Sprintf("%s/auth/callback?success=true", config.GlobalConfig.Frontend.URL)
	http.Redirect(w, r, successURL, http.StatusTemporaryRedirect)
}
