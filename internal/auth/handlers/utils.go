package handlers

import (
	"net/http"
	"net/url"

	"galaxy-server/internal/shared/config"
)

// redirectWithError sends the browser back to the frontend with an error code
func redirectWithError(w http.ResponseWriter, r *http.Request, errorType string) {
	errorURL := config.GlobalConfig.Frontend.URL + "/auth/error?error=" + url.QueryEscape(errorType)
	http.Redirect(w, r, errorURL, http.StatusTemporaryRedirect)
}
