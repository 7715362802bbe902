package coach

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleCoach Role = "coach"
)

const DefaultConversationTitle = "New Conversation"

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
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

type CreateConversationRequest struct {
	Title string `json:"title" validate:"omitempty,max=120"`
}

type SendMessageRequest struct {
	Content string `json:"content" validate:"required,max=4000"`
}

// Exchange is the pair of messages stored for one user turn.
type Exchange struct {
	UserMessage  *Message `json:"userMessage"`
	CoachMessage *Message `json:"coachMessage"`
	Source       string   `json:"source"`
}
