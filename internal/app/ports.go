package app

import (
	"context"
	"time"

	"repbep/internal/ai"
	"repbep/internal/model"
)

// Store lookups return (nil, nil) when nothing matches.

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (bool, error)
}

type ProjectStore interface {
	Create(ctx context.Context, project *model.Project) error
	ListByUserID(ctx context.Context, userID string, limit int) ([]model.Project, error)
	GetByIDAndUserID(ctx context.Context, id, userID string) (*model.Project, error)
	Update(ctx context.Context, id, userID string, update model.ProjectUpdate, at time.Time) (*model.Project, error)
	DeleteByIDAndUserID(ctx context.Context, id, userID string) (bool, error)
}

type ConversationStore interface {
	Create(ctx context.Context, conversation *model.Conversation) error
	GetByIDAndUserID(ctx context.Context, id, userID string) (*model.Conversation, error)
	ListByUserID(ctx context.Context, userID string, projectID *string, limit int) ([]model.Conversation, error)
	Touch(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type MessageStore interface {
	Create(ctx context.Context, message *model.Message) error
	ListByConversationID(ctx context.Context, conversationID string, limit int) ([]model.Message, error)
}

// HistoryCache holds the per-session context handed to the model. It is not the
// source of truth; losing it only shortens the assistant's memory.
type HistoryCache interface {
	Append(ctx context.Context, sessionID string, msg ai.ChatMessage) error
	Get(ctx context.Context, sessionID string) ([]ai.ChatMessage, error)
	Clear(ctx context.Context, sessionID string) error
}

type AssistantGateway interface {
	Generate(ctx context.Context, history []ai.ChatMessage, userMessage string) ai.Reply
}

type SessionLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

type ExchangePublisher interface {
	PublishExchange(ctx context.Context, event ExchangeEvent) error
}

// ExchangeEvent describes one completed user/assistant round trip.
type ExchangeEvent struct {
	ConversationID   string        `json:"conversationId"`
	UserID           string        `json:"userId"`
	ProjectID        *string       `json:"projectId,omitempty"`
	UserMessage      model.Message `json:"userMessage"`
	AssistantMessage model.Message `json:"assistantMessage"`
	Fallback         bool          `json:"fallback"`
}
