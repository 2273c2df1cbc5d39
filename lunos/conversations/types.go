package conversations

import "time"

// message authors
const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	Content        string    `json:"content"`
	Sender         string    `json:"sender"`
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"createdAt"`
}

// a message as submitted by the client
type NewMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// maps any role other than user to the assistant
func SenderFor(role string) string {
	if role == SenderUser {
		return SenderUser
	}

	return SenderAssistant
}
