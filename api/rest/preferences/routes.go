package preferences

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/lunos/server/internal/auth"
)

func RegisterRoutes(rg *gin.RouterGroup, store Store, sessions *auth.SessionManager) {
	prefs := rg.Group("")
	prefs.Use(auth.RequireSession(sessions))

	prefs.GET("/preferences", GetPreferences(store))
	prefs.PUT("/preferences", UpdatePreferences(store))
	prefs.POST("/onboarding", CompleteOnboarding(store))
}
