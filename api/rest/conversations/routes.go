package conversations

import (
	"github.com/gin-gonic/gin"

	"codeberg.org/lunos/server/internal/auth"
)

func RegisterRoutes(rg *gin.RouterGroup, store Store, sessions *auth.SessionManager) {
	convs := rg.Group("/conversations")
	convs.Use(auth.RequireSession(sessions))

	convs.GET("", ListConversations(store))
	convs.POST("", CreateConversation(store))
	convs.GET("/:id/messages", GetMessages(store))
	convs.POST("/:id/messages", ReplaceMessages(store))
}
