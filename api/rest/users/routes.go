package users

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/lunos/server/internal/auth"
	"codeberg.org/lunos/server/lunos/identity"
)

type Dependencies struct {
	Adapter  identity.Adapter
	Hasher   auth.PasswordHasher
	Sessions *auth.SessionManager
	Usage    UsageStore
}

func RegisterRoutes(rg *gin.RouterGroup, deps Dependencies) {
	users := rg.Group("")
	users.Use(auth.RequireSession(deps.Sessions)) // all user routes require authentication

	users.GET("/profile", GetProfile(deps.Adapter))
	users.PUT("/profile", UpdateProfile(deps.Adapter, deps.Hasher))
	users.DELETE("/profile", DeleteProfile(deps.Adapter, deps.Sessions))

	users.GET("/usage", GetUsage(deps.Usage))
	users.POST("/usage", RecordUsage(deps.Usage))
}
