package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"codeberg.org/lunos/server/internal/auth"
	"codeberg.org/lunos/server/internal/config"
	"codeberg.org/lunos/server/internal/logger"
	"codeberg.org/lunos/server/internal/ratelimit"
	"codeberg.org/lunos/server/internal/storage"
	"codeberg.org/lunos/server/lunos/conversations"
	"codeberg.org/lunos/server/lunos/identity"
	"codeberg.org/lunos/server/lunos/preferences"
)

// how often expired database sessions are swept
const cleanupCheckInterval = time.Hour

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	if cfg.RunMigrations {
		if err := migrate(cfg.DatabaseURL); err != nil {
			return nil, err
		}
	}

	db, err := storage.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	limiter, err := ratelimit.NewStore(ctx, cfg.RedisURL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize rate limiter: %w", err)
	}

	authRateLimit, err := limiter.Middleware(cfg.AuthRateLimit)
	if err != nil {
		limiter.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		db.Close()
		return nil, fmt.Errorf("invalid AUTH_RATE_LIMIT: %w", err)
	}

	adapter := identity.NewPostgresAdapter(db)
	hasher := auth.NewBcryptHasher(auth.DefaultPasswordCost)

	sessions := auth.NewSessionManager(adapter, auth.SessionConfig{
		Strategy:  cfg.SessionStrategy,
		MaxAge:    cfg.SessionMaxAge,
		UpdateAge: cfg.SessionUpdateAge,
		JWTSecret: cfg.JWTSecret,
		Secure:    cfg.SecureCookies(),
	})

	// no mail transport is configured, the link is logged for the operator
	verification := auth.NewVerificationService(adapter, cfg.BaseURL, func(ctx context.Context, identifier, link string) {
		logger.FromContext(ctx).Info("email verification requested", "identifier", identifier, "link", link)
	})

	providers := auth.InitializeProviders(cfg)
	logger.Info("oauth providers configured", "providers", providers)

	if !cfg.IsProduction() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := newRouter(cfg)
	if err != nil {
		limiter.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		db.Close()
		return nil, err
	}

	server := &Server{
		db:             db,
		config:         cfg,
		router:         router,
		adapter:        adapter,
		sessions:       sessions,
		hasher:         hasher,
		credentials:    auth.NewCredentialsStrategy(adapter, hasher),
		oauth:          auth.NewOAuthLinker(adapter),
		verification:   verification,
		providers:      providers,
		limiter:        limiter,
		authRateLimit:  authRateLimit,
		conversations:  conversations.NewRepository(db),
		preferences:    preferences.NewRepository(db),
		cleanupService: identity.NewCleanupService(adapter, cleanupCheckInterval),
	}

	RegisterRoutes(router, server)

	return server, nil
}

// builds the engine; the client IP, and with it the rate limit key, only
// comes from X-Forwarded-For when the request arrives through a trusted proxy
func newRouter(cfg *config.Config) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery())

	if err := router.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	return router, nil
}

// applies pending schema migrations before the pool opens
func migrate(databaseURL string) error {
	migrator, err := storage.NewMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer migrator.Close() //nolint:errcheck // migrations already applied or failed

	if err := migrator.Up(); err != nil {
		return err
	}

	version, _, err := migrator.Version()
	if err != nil {
		return err
	}

	logger.Info("database migrated", "version", version)
	return nil
}

// releases the database pool and the rate limiter backend
func (s *Server) Close() {
	if err := s.limiter.Close(); err != nil {
		logger.ErrorErr(err, "failed to close rate limiter store")
	}

	s.db.Close()
}
