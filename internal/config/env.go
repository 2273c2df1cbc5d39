package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort             = "8080"
	defaultBaseURL          = "http://localhost:8080"
	defaultSessionMaxAge    = 30 * 24 * time.Hour
	defaultSessionUpdateAge = 24 * time.Hour
	defaultAuthRateLimit    = "20-M"
)

// loads configuration from environment variables
func LoadEnvironmentVariables() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		_ = err // not an error - production environments may not have .env file
	}

	return FromEnv(os.Getenv)
}

// builds the configuration from a lookup function so tests don't touch the process env
func FromEnv(getenv func(string) string) (*Config, error) {
	databaseURL := getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = getenv("SUPABASE_CONNECTION_STRING")
	}

	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	sessionSecret := getenv("SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET environment variable is required")
	}

	strategy := strings.ToLower(getenv("SESSION_STRATEGY"))
	if strategy == "" {
		strategy = SessionStrategyDatabase
	}

	if strategy != SessionStrategyDatabase && strategy != SessionStrategyJWT {
		return nil, fmt.Errorf("SESSION_STRATEGY must be %q or %q, got %q",
			SessionStrategyDatabase, SessionStrategyJWT, strategy)
	}

	jwtSecret := getenv("JWT_SECRET")
	if strategy == SessionStrategyJWT && jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required for the jwt session strategy")
	}

	maxAge, err := durationOrDefault(getenv("SESSION_MAX_AGE"), defaultSessionMaxAge)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_MAX_AGE: %w", err)
	}

	updateAge, err := durationOrDefault(getenv("SESSION_UPDATE_AGE"), defaultSessionUpdateAge)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_UPDATE_AGE: %w", err)
	}

	if updateAge > maxAge {
		return nil, fmt.Errorf("SESSION_UPDATE_AGE (%s) cannot exceed SESSION_MAX_AGE (%s)", updateAge, maxAge)
	}

	runMigrations := false
	if raw := getenv("RUN_MIGRATIONS"); raw != "" {
		runMigrations, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid RUN_MIGRATIONS: %w", err)
		}
	}

	environment := getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	return &Config{
		Environment:        environment,
		Port:               valueOrDefault(getenv("PORT"), defaultPort),
		BaseURL:            strings.TrimSuffix(valueOrDefault(getenv("BASE_URL"), defaultBaseURL), "/"),
		DatabaseURL:        databaseURL,
		RunMigrations:      runMigrations,
		RedisURL:           getenv("REDIS_URL"),
		SessionSecret:      sessionSecret,
		JWTSecret:          jwtSecret,
		SessionStrategy:    strategy,
		SessionMaxAge:      maxAge,
		SessionUpdateAge:   updateAge,
		AuthRateLimit:      valueOrDefault(getenv("AUTH_RATE_LIMIT"), defaultAuthRateLimit),
		CORSAllowedOrigins: splitList(getenv("CORS_ALLOWED_ORIGINS")),
		TrustedProxies:     splitList(getenv("TRUSTED_PROXIES")),
		OAuth: OAuthConfig{
			GoogleClientID:     getenv("GOOGLE_CLIENT_ID"),
			GoogleClientSecret: getenv("GOOGLE_CLIENT_SECRET"),
			GitHubClientID:     getenv("GITHUB_CLIENT_ID"),
			GitHubClientSecret: getenv("GITHUB_CLIENT_SECRET"),
		},
	}, nil
}

func valueOrDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}

// accepts go durations ("720h") or a plain number of seconds ("2592000")
func durationOrDefault(raw string, fallback time.Duration) (time.Duration, error) {
	if raw == "" {
		return fallback, nil
	}

	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0, fmt.Errorf("must be positive, got %d", seconds)
		}
		return time.Duration(seconds) * time.Second, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}

	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}

	return d, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}

	return out
}
