package main

import (
	"github.com/gin-gonic/gin"

	authroutes "codeberg.org/lunos/server/api/rest/auth"
	"codeberg.org/lunos/server/api/rest/conversations"
	"codeberg.org/lunos/server/api/rest/health"
	"codeberg.org/lunos/server/api/rest/preferences"
	"codeberg.org/lunos/server/api/rest/users"
	"codeberg.org/lunos/server/internal/logger"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) {
	router.Use(CORSMiddleware(server.config.CORSAllowedOrigins))
	router.Use(logger.Middleware())

	router.GET("/health", health.Handler)
	router.GET("/ready", health.ReadyHandler(server.db))

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)

		authroutes.RegisterRoutes(v1, authroutes.Dependencies{
			Credentials:  server.credentials,
			Sessions:     server.sessions,
			OAuth:        server.oauth,
			Verification: server.verification,
			Providers:    server.providers,
			RateLimit:    server.authRateLimit,
		})

		users.RegisterRoutes(v1, users.Dependencies{
			Adapter:  server.adapter,
			Hasher:   server.hasher,
			Sessions: server.sessions,
			Usage:    server.preferences,
		})

		preferences.RegisterRoutes(v1, server.preferences, server.sessions)
		conversations.RegisterRoutes(v1, server.conversations, server.sessions)
	}
}
