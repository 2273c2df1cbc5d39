package config

import (
	"strings"
	"time"
)

// session persistence strategies
const (
	SessionStrategyDatabase = "database"
	SessionStrategyJWT      = "jwt"
)

type Config struct {
	Environment string
	Port        string
	BaseURL     string

	DatabaseURL   string
	RunMigrations bool
	RedisURL      string

	SessionSecret    string
	JWTSecret        string
	SessionStrategy  string
	SessionMaxAge    time.Duration
	SessionUpdateAge time.Duration

	AuthRateLimit      string
	CORSAllowedOrigins []string

	// proxies whose X-Forwarded-For is believed, none when empty
	TrustedProxies []string

	OAuth OAuthConfig
}

// client credentials for the optional OAuth providers
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string
	GitHubClientID     string
	GitHubClientSecret string
}

type MigrateFlags struct {
	DatabaseURL string
	Steps       int
}

// reports whether the server is running behind https
func (c *Config) SecureCookies() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}

// reports whether running in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
