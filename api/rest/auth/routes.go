package auth

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/lunos/server/internal/auth"
)

type Dependencies struct {
	Credentials  *auth.CredentialsStrategy
	Sessions     *auth.SessionManager
	OAuth        *auth.OAuthLinker
	Verification *auth.VerificationService
	Providers    []string

	// applied to every endpoint that checks a secret, may be nil
	RateLimit gin.HandlerFunc
}

// registers all authentication routes
func RegisterRoutes(router *gin.RouterGroup, deps Dependencies) {
	limit := deps.RateLimit
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}

	authGroup := router.Group("/auth")
	{
		authGroup.POST("/callback/credentials-signin", limit, CredentialsSignInHandler(deps))
		authGroup.POST("/callback/credentials-signup", limit, CredentialsSignUpHandler(deps))

		authGroup.GET("/session", auth.OptionalSession(deps.Sessions), SessionHandler())
		authGroup.POST("/signout", SignOutHandler(deps.Sessions))
		authGroup.GET("/providers", ProvidersHandler(deps.Providers))

		authGroup.POST("/verify-email/request", auth.RequireSession(deps.Sessions), limit, RequestVerificationHandler(deps.Verification))
		authGroup.POST("/verify-email", limit, VerifyEmailHandler(deps.Verification))

		authGroup.GET("/:provider", BeginAuthHandler(deps.Providers))
		authGroup.GET("/:provider/callback", CallbackHandler(deps))
	}
}
