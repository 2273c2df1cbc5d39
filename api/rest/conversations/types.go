package conversations

import (
	"context"

	"codeberg.org/lunos/server/api/rest/pagination"
	"codeberg.org/lunos/server/lunos/conversations"
)

type Store interface {
	List(ctx context.Context, userID string, limit, offset int) ([]conversations.Conversation, int, error)
	Create(ctx context.Context, userID, title string, messages []conversations.NewMessage) (*conversations.Conversation, error)
	Messages(ctx context.Context, userID, conversationID string) ([]conversations.Message, error)
	ReplaceMessages(ctx context.Context, userID, conversationID string, messages []conversations.NewMessage) error
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ConversationsListResponse struct {
	Conversations []conversations.Conversation `json:"conversations"`
	Pagination    pagination.Meta              `json:"pagination"`
}

type CreateConversationRequest struct {
	Title    string                     `json:"title" binding:"required,max=200"`
	Messages []conversations.NewMessage `json:"messages"`
}

type ConversationResponse struct {
	Conversation *conversations.Conversation `json:"conversation"`
}

type MessagesResponse struct {
	Messages []conversations.Message `json:"messages"`
}

type ReplaceMessagesRequest struct {
	Messages []conversations.NewMessage `json:"messages"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
