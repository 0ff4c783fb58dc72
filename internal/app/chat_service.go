package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"repbep/internal/ai"
	"repbep/internal/model"
)

const (
	titleMaxRunes           = 50
	titleEllipsis           = "..."
	maxListedConversations  = 100
	maxMessagesPerListEntry = 1000
	maxProjectIDLen         = 64
)

type ChatService struct {
	conversations ConversationStore
	messages      MessageStore
	history       HistoryCache
	gateway       AssistantGateway
	locks         SessionLocker
	publisher     ExchangePublisher
	log           *zap.Logger
	now           func() time.Time
}

type ChatDeps struct {
	Conversations ConversationStore
	Messages      MessageStore
	History       HistoryCache
	Gateway       AssistantGateway
	Locks         SessionLocker
	// Publisher is optional.
	Publisher ExchangePublisher
	Logger    *zap.Logger
	// Now defaults to a process-wide monotonic Clock.
	Now func() time.Time
}

func NewChatService(deps ChatDeps) *ChatService {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = NewClock(time.Now).Now
	}
	return &ChatService{
		conversations: deps.Conversations,
		messages:      deps.Messages,
		history:       deps.History,
		gateway:       deps.Gateway,
		locks:         deps.Locks,
		publisher:     deps.Publisher,
		log:           log.With(zap.String("module", "chat")),
		now:           now,
	}
}

type SendMessageInput struct {
	UserID         string
	Message        string
	ProjectID      *string
	ConversationID *string
}

type SendMessageResult struct {
	ConversationID string        `json:"conversationId"`
	Message        model.Message `json:"message"`
}

// ConversationView is a conversation as its owner sees it: no session id, messages attached.
type ConversationView struct {
	ID        string          `json:"id"`
	ProjectID *string         `json:"projectId,omitempty"`
	Title     string          `json:"title"`
	Messages  []model.Message `json:"messages"`
	CreatedAt time.Time       `json:"createdAt"`
}

// SendMessage runs one user turn: resolve the conversation, persist and cache the
// user message, ask the assistant, persist and cache the reply, bump lastModified.
// Assistant failures become fallback replies; only store failures and a missing or
// foreign conversation are returned as errors.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	if input.UserID == "" {
		return nil, ErrInvalidInput
	}

	ctx, span := otel.Tracer("repbep/chat").Start(ctx, "chat.send_message")
	defer span.End()

	conversation, isNew, err := s.resolveConversation(ctx, input)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "resolve conversation")
		return nil, err
	}

	unlock, err := s.locks.Lock(ctx, conversation.SessionID)
	if err != nil {
		return nil, fmt.Errorf("acquire session lock failed: %w", err)
	}
	defer unlock()

	// Once the user turn is written the pair must be completed even if the client goes away.
	ctx = context.WithoutCancel(ctx)

	if isNew {
		if err := s.conversations.Create(ctx, conversation); err != nil {
			return nil, err
		}
		s.log.Info("conversation created",
			zap.String("user_id", input.UserID),
			zap.String("conversation_id", conversation.ID),
		)
	}
	span.SetAttributes(attribute.String("conversation.id", conversation.ID))
	log := s.log.With(zap.String("user_id", input.UserID), zap.String("conversation_id", conversation.ID))

	userMessage := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.RoleUser,
		Content:        input.Message,
		Timestamp:      s.now(),
	}
	if err := s.messages.Create(ctx, userMessage); err != nil {
		log.Error("persist user message failed", zap.Error(err))
		if isNew {
			if delErr := s.conversations.Delete(ctx, conversation.ID); delErr != nil {
				log.Error("remove empty conversation failed", zap.Error(delErr))
			}
		}
		return nil, err
	}

	history, err := s.history.Get(ctx, conversation.SessionID)
	if err != nil {
		log.Warn("read session history failed", zap.Error(err))
		history = nil
	}
	s.appendHistory(ctx, log, conversation.SessionID, model.RoleUser, input.Message)

	reply := s.gateway.Generate(ctx, history, input.Message)
	if reply.Failed() {
		log.Warn("assistant replied with fallback", zap.Error(reply.Err))
	}

	assistantMessage := &model.Message{
		ConversationID: conversation.ID,
		Role:           model.RoleAssistant,
		Content:        reply.Text,
		Timestamp:      s.now(),
	}
	if err := s.messages.Create(ctx, assistantMessage); err != nil {
		log.Error("persist assistant message failed", zap.Error(err))
		return nil, err
	}
	s.appendHistory(ctx, log, conversation.SessionID, model.RoleAssistant, reply.Text)

	if err := s.conversations.Touch(ctx, conversation.ID, s.now()); err != nil {
		log.Error("update conversation metadata failed", zap.Error(err))
		return nil, err
	}

	if s.publisher != nil {
		event := ExchangeEvent{
			ConversationID:   conversation.ID,
			UserID:           input.UserID,
			ProjectID:        conversation.ProjectID,
			UserMessage:      *userMessage,
			AssistantMessage: *assistantMessage,
			Fallback:         reply.Failed(),
		}
		if err := s.publisher.PublishExchange(ctx, event); err != nil {
			log.Warn("publish exchange event failed", zap.Error(err))
		}
	}

	log.Info("chat exchange completed", zap.Bool("fallback", reply.Failed()), zap.Int("history_len", len(history)))

	return &SendMessageResult{
		ConversationID: conversation.ID,
		Message:        *assistantMessage,
	}, nil
}

// ListConversations returns the user's conversations, most recently active first.
// A non-nil projectID limits the result to that project.
func (s *ChatService) ListConversations(ctx context.Context, userID string, projectID *string) ([]ConversationView, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}

	conversations, err := s.conversations.ListByUserID(ctx, userID, projectID, maxListedConversations)
	if err != nil {
		return nil, err
	}

	views := make([]ConversationView, 0, len(conversations))
	for _, c := range conversations {
		messages, err := s.messages.ListByConversationID(ctx, c.ID, maxMessagesPerListEntry)
		if err != nil {
			return nil, err
		}
		views = append(views, ConversationView{
			ID:        c.ID,
			ProjectID: c.ProjectID,
			Title:     c.Title,
			Messages:  messages,
			CreatedAt: c.CreatedAt,
		})
	}
	return views, nil
}

// ClearSession drops the cached model context of a conversation. Stored messages stay.
func (s *ChatService) ClearSession(ctx context.Context, userID, conversationID string) error {
	if userID == "" || conversationID == "" {
		return ErrInvalidInput
	}
	conversation, err := s.conversations.GetByIDAndUserID(ctx, conversationID, userID)
	if err != nil {
		return err
	}
	if conversation == nil {
		return ErrConversationNotFound
	}

	unlock, err := s.locks.Lock(ctx, conversation.SessionID)
	if err != nil {
		return fmt.Errorf("acquire session lock failed: %w", err)
	}
	defer unlock()

	return s.history.Clear(ctx, conversation.SessionID)
}

// resolveConversation loads the caller's conversation, or builds a new one that the
// caller must insert. isNew reports the latter.
func (s *ChatService) resolveConversation(ctx context.Context, input SendMessageInput) (conversation *model.Conversation, isNew bool, err error) {
	if input.ConversationID != nil && *input.ConversationID != "" {
		conversation, err := s.conversations.GetByIDAndUserID(ctx, *input.ConversationID, input.UserID)
		if err != nil {
			return nil, false, err
		}
		if conversation == nil {
			return nil, false, ErrConversationNotFound
		}
		return conversation, false, nil
	}

	var projectID *string
	if input.ProjectID != nil && *input.ProjectID != "" {
		if len(*input.ProjectID) > maxProjectIDLen {
			return nil, false, fmt.Errorf("%w: project id longer than %d bytes", ErrInvalidInput, maxProjectIDLen)
		}
		id := *input.ProjectID
		projectID = &id
	}

	now := s.now()
	return &model.Conversation{
		UserID:       input.UserID,
		ProjectID:    projectID,
		Title:        ConversationTitle(input.Message),
		SessionID:    newSessionID(),
		CreatedAt:    now,
		LastModified: now,
	}, true, nil
}

func (s *ChatService) appendHistory(ctx context.Context, log *zap.Logger, sessionID, role, content string) {
	if err := s.history.Append(ctx, sessionID, ai.ChatMessage{Role: role, Content: content}); err != nil {
		log.Warn("append session history failed", zap.String("role", role), zap.Error(err))
	}
}

// ConversationTitle keeps messages of up to 50 characters as they are and cuts longer
// ones to their first 50 characters followed by "...".
func ConversationTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= titleMaxRunes {
		return message
	}
	return string(runes[:titleMaxRunes]) + titleEllipsis
}

func newSessionID() string {
	return "session_" + uuid.NewString()
}
