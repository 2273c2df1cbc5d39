package main

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"codeberg.org/lunos/server/internal/auth"
	"codeberg.org/lunos/server/internal/config"
	"codeberg.org/lunos/server/internal/ratelimit"
	"codeberg.org/lunos/server/lunos/conversations"
	"codeberg.org/lunos/server/lunos/identity"
	"codeberg.org/lunos/server/lunos/preferences"
)

// holds all dependencies and state for the API server
type Server struct {
	db     *pgxpool.Pool
	config *config.Config
	router *gin.Engine

	adapter        *identity.PostgresAdapter
	sessions       *auth.SessionManager
	hasher         *auth.BcryptHasher
	credentials    *auth.CredentialsStrategy
	oauth          *auth.OAuthLinker
	verification   *auth.VerificationService
	providers      []string
	limiter        *ratelimit.Store
	authRateLimit  gin.HandlerFunc
	conversations  *conversations.Repository
	preferences    *preferences.Repository
	cleanupService *identity.CleanupService
}
