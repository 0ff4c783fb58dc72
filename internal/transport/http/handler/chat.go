package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"repbep/internal/app"
	"repbep/internal/transport/http/middleware"
	"repbep/internal/transport/http/response"
)

type ChatHandler struct {
	chatService *app.ChatService
}

// SendMessageRequest keeps Message as a pointer so an empty string is accepted while
// a missing field is rejected.
type SendMessageRequest struct {
	Message        *string `json:"message" binding:"required"`
	ProjectID      *string `json:"projectId"`
	ConversationID *string `json:"conversationId"`
}

func NewChatHandler(chatService *app.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), app.SendMessageInput{
		UserID:         userID,
		Message:        *req.Message,
		ProjectID:      req.ProjectID,
		ConversationID: req.ConversationID,
	})
	if err != nil {
		writeChatError(c, err, "send message failed")
		return
	}

	response.OK(c, result)
}

func (h *ChatHandler) ListConversations(c *gin.Context) {
	h.listConversations(c, nil)
}

func (h *ChatHandler) ListProjectConversations(c *gin.Context) {
	projectID := c.Param("id")
	h.listConversations(c, &projectID)
}

func (h *ChatHandler) listConversations(c *gin.Context, projectID *string) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	conversations, err := h.chatService.ListConversations(c.Request.Context(), userID, projectID)
	if err != nil {
		writeChatError(c, err, "list conversations failed")
		return
	}

	response.OK(c, conversations)
}

func (h *ChatHandler) ClearSession(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	conversationID := c.Param("id")
	if err := h.chatService.ClearSession(c.Request.Context(), userID, conversationID); err != nil {
		writeChatError(c, err, "clear session failed")
		return
	}

	response.OK(c, gin.H{"conversationId": conversationID})
}

func writeChatError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrConversationNotFound):
		response.Error(c, http.StatusNotFound, response.CodeConversationNotFound, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
