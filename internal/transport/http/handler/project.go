package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"repbep/internal/app"
	"repbep/internal/model"
	"repbep/internal/transport/http/middleware"
	"repbep/internal/transport/http/response"
)

type ProjectHandler struct {
	projectService *app.ProjectService
}

type CreateProjectRequest struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Description string   `json:"description"`
	Tech        []string `json:"tech"`
	Color       string   `json:"color" binding:"max=32"`
}

type UpdateProjectRequest struct {
	Name        *string   `json:"name" binding:"omitempty,max=255"`
	Description *string   `json:"description"`
	Status      *string   `json:"status" binding:"omitempty,max=32"`
	Tech        *[]string `json:"tech"`
	Color       *string   `json:"color" binding:"omitempty,max=32"`
}

func NewProjectHandler(projectService *app.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	projects, err := h.projectService.List(c.Request.Context(), userID)
	if err != nil {
		writeProjectError(c, err, "list projects failed")
		return
	}

	response.OK(c, projects)
}

func (h *ProjectHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	project, err := h.projectService.Create(c.Request.Context(), app.CreateProjectInput{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Tech:        req.Tech,
		Color:       req.Color,
	})
	if err != nil {
		writeProjectError(c, err, "create project failed")
		return
	}

	response.OK(c, project)
}

func (h *ProjectHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	project, err := h.projectService.Update(c.Request.Context(), userID, c.Param("id"), model.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		Tech:        req.Tech,
		Color:       req.Color,
	})
	if err != nil {
		writeProjectError(c, err, "update project failed")
		return
	}

	response.OK(c, project)
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	if err := h.projectService.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		writeProjectError(c, err, "delete project failed")
		return
	}

	response.OK(c, gin.H{"message": "Project deleted successfully"})
}

func writeProjectError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrInvalidInput):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrProjectNotFound):
		response.Error(c, http.StatusNotFound, response.CodeProjectNotFound, err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}
