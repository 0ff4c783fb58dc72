package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"repbep/internal/app"
	"repbep/internal/model"
	"repbep/internal/transport/http/middleware"
	"repbep/internal/transport/http/response"
)

type ProfileHandler struct {
	authService *app.AuthService
}

type UpdateProfileRequest struct {
	DisplayName       *string                  `json:"displayName" binding:"omitempty,max=128"`
	Bio               *string                  `json:"bio"`
	Avatar            *string                  `json:"avatar" binding:"omitempty,max=512"`
	Theme             *string                  `json:"theme" binding:"omitempty,max=32"`
	ColorScheme       *string                  `json:"colorScheme" binding:"omitempty,max=32"`
	SocialLinks       *model.SocialLinks       `json:"socialLinks"`
	WorkspaceSettings *model.WorkspaceSettings `json:"workspaceSettings"`
}

func NewProfileHandler(authService *app.AuthService) *ProfileHandler {
	return &ProfileHandler{authService: authService}
}

func (h *ProfileHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, model.ProfileUpdate{
		DisplayName:       req.DisplayName,
		Bio:               req.Bio,
		Avatar:            req.Avatar,
		Theme:             req.Theme,
		ColorScheme:       req.ColorScheme,
		SocialLinks:       req.SocialLinks,
		WorkspaceSettings: req.WorkspaceSettings,
	})
	if err != nil {
		writeUserError(c, err, "update profile failed")
		return
	}

	response.OK(c, user)
}
