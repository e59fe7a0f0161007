package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskflow-app/taskflow/internal/models"
	"github.com/taskflow-app/taskflow/internal/store"
)

type projectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Color       string    `json:"color"`
	Icon        string    `json:"icon"`
	IsFavorite  bool      `json:"isFavorite"`
	TaskCount   int       `json:"taskCount"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func newProjectResponse(project *models.Project, taskCount int) projectResponse {
	return projectResponse{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		Color:       project.Color,
		Icon:        project.Icon,
		IsFavorite:  project.IsFavorite,
		TaskCount:   taskCount,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

func (h *handlerImpl) HandleListProjects(c *gin.Context) {
	projects, err := h.store.ListProjects(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list projects")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	response := make([]projectResponse, 0, len(projects))
	for _, project := range projects {
		count, err := h.store.CountProjectTasks(c, project.ID)
		if err != nil {
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		response = append(response, newProjectResponse(project, count))
	}
	c.JSON(http.StatusOK, response)
}

type createProjectRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
}

func (h *handlerImpl) HandleCreateProject(c *gin.Context) {
	var req createProjectRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	project := &models.Project{Name: req.Name}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Color != nil {
		project.Color = *req.Color
	}
	if req.Icon != nil {
		project.Icon = *req.Icon
	}

	created, err := h.store.CreateProject(c, project)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("project_id", created.ID).
		Msg("created project")
	c.JSON(http.StatusCreated, newProjectResponse(created, 0))
}

func (h *handlerImpl) HandleGetProject(c *gin.Context) {
	projectID := c.Param("id")
	project, err := h.store.FindProjectByID(c, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Project not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	count, err := h.store.CountProjectTasks(c, projectID)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, newProjectResponse(project, count))
}

type updateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	IsFavorite  *bool   `json:"isFavorite,omitempty"`
}

func (h *handlerImpl) HandlePatchProject(c *gin.Context) {
	var req updateProjectRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	projectID := c.Param("id")
	project, err := h.store.UpdateProject(c, projectID, store.ProjectUpdate{
		Name:        req.Name,
		Description: req.Description,
		Color:       req.Color,
		Icon:        req.Icon,
		IsFavorite:  req.IsFavorite,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Project not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	count, err := h.store.CountProjectTasks(c, projectID)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("project_id", projectID).
		Msg("updated project")
	c.JSON(http.StatusOK, newProjectResponse(project, count))
}

func (h *handlerImpl) HandleDeleteProject(c *gin.Context) {
	projectID := c.Param("id")
	// Cascades to the project's tasks, their subtasks, comments and
	// label attachments.
	err := h.store.DeleteProject(c, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Project not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("project_id", projectID).
		Msg("deleted project")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
