package conversations

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/lunos/server/api/rest/pagination"
	"codeberg.org/lunos/server/internal/auth"
	"codeberg.org/lunos/server/internal/errors"
	"codeberg.org/lunos/server/lunos/conversations"
)

// ListConversations godoc
// @Summary List conversations
// @Description Returns the user's conversations, most recently updated first
// @Tags conversations
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Items to skip"
// @Success 200 {object} ConversationsListResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/conversations [get]
// @Security SessionCookie
func ListConversations(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		params, err := pagination.FromQuery(c, defaultPageSize, maxPageSize)
		if err != nil {
			errors.ValidationError(c, err)
			return
		}

		list, total, err := store.List(c.Request.Context(), userID, params.Limit, params.Offset)
		if err != nil {
			errors.InternalError(c, "failed to list conversations", err)
			return
		}

		c.JSON(http.StatusOK, ConversationsListResponse{
			Conversations: list,
			Pagination:    pagination.NewMeta(params, total),
		})
	}
}

// CreateConversation godoc
// @Summary Start a conversation
// @Tags conversations
// @Accept json
// @Produce json
// @Param request body CreateConversationRequest true "Title and opening messages"
// @Success 201 {object} ConversationResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /api/v1/conversations [post]
// @Security SessionCookie
func CreateConversation(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		var req CreateConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		conversation, err := store.Create(c.Request.Context(), userID, req.Title, req.Messages)
		if err != nil {
			if stderrors.Is(err, conversations.ErrUserNotFound) {
				errors.Unauthorized(c, "account no longer exists")
				return
			}

			errors.InternalError(c, "failed to create conversation", err)
			return
		}

		c.JSON(http.StatusCreated, ConversationResponse{Conversation: conversation})
	}
}

// GetMessages godoc
// @Summary Get conversation messages
// @Description Returns the messages of one of the user's conversations, oldest first
// @Tags conversations
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} MessagesResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/conversations/{id}/messages [get]
// @Security SessionCookie
func GetMessages(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		conversationID, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		messages, err := store.Messages(c.Request.Context(), userID, conversationID)
		if err != nil {
			respondStoreError(c, err)
			return
		}

		c.JSON(http.StatusOK, MessagesResponse{Messages: messages})
	}
}

// ReplaceMessages godoc
// @Summary Replace conversation messages
// @Description Replaces every message of the conversation and bumps its updated time
// @Tags conversations
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param request body ReplaceMessagesRequest true "Full message list"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/v1/conversations/{id}/messages [post]
// @Security SessionCookie
func ReplaceMessages(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, _ := auth.GetUserID(c)

		conversationID, ok := errors.ValidatePathUUID(c, "id")
		if !ok {
			return
		}

		var req ReplaceMessagesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		if req.Messages == nil {
			errors.BadRequest(c, "messages is required", nil)
			return
		}

		if err := store.ReplaceMessages(c.Request.Context(), userID, conversationID, req.Messages); err != nil {
			respondStoreError(c, err)
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "messages saved"})
	}
}

func respondStoreError(c *gin.Context, err error) {
	if stderrors.Is(err, conversations.ErrConversationNotFound) {
		errors.NotFound(c, "conversation")
		return
	}

	errors.InternalError(c, "failed to load conversation", err)
}
