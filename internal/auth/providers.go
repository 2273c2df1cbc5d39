package auth

import (
	"net/http"
	"slices"

	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"

	"codeberg.org/lunos/server/internal/config"
)

// registers the configured OAuth providers with goth and returns their names
//
// Providers without credentials are skipped, so a deployment may run with
// credentials sign-in only.
func InitializeProviders(cfg *config.Config) []string {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))

	// configure cookie for OAuth redirects
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   300, // 5 minutes, enough for OAuth flow
		HttpOnly: true,
		Secure:   cfg.SecureCookies(),
		SameSite: http.SameSiteLaxMode,
	}

	gothic.Store = store

	var providers []goth.Provider

	if cfg.OAuth.GoogleClientID != "" && cfg.OAuth.GoogleClientSecret != "" {
		providers = append(providers, google.New(
			cfg.OAuth.GoogleClientID,
			cfg.OAuth.GoogleClientSecret,
			cfg.BaseURL+"/api/v1/auth/google/callback",
			"email", "profile",
		))
	}

	if cfg.OAuth.GitHubClientID != "" && cfg.OAuth.GitHubClientSecret != "" {
		providers = append(providers, github.New(
			cfg.OAuth.GitHubClientID,
			cfg.OAuth.GitHubClientSecret,
			cfg.BaseURL+"/api/v1/auth/github/callback",
			"user:email",
		))
	}

	goth.ClearProviders()
	goth.UseProviders(providers...)

	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name())
	}
	slices.Sort(names)

	return names
}
