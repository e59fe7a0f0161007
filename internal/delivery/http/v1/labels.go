package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskflow-app/taskflow/internal/models"
	"github.com/taskflow-app/taskflow/internal/store"
)

type labelResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Color     string  `json:"color"`
	ProjectID *string `json:"projectId"`
}

func newLabelResponse(label *models.Label) labelResponse {
	return labelResponse{
		ID:        label.ID,
		Name:      label.Name,
		Color:     label.Color,
		ProjectID: label.ProjectID,
	}
}

func (h *handlerImpl) HandleListLabels(c *gin.Context) {
	labels, err := h.store.ListLabels(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list labels")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	response := make([]labelResponse, 0, len(labels))
	for _, label := range labels {
		response = append(response, newLabelResponse(label))
	}
	c.JSON(http.StatusOK, response)
}

type createLabelRequest struct {
	Name      string  `json:"name" binding:"required,max=255"`
	Color     *string `json:"color,omitempty"`
	ProjectID *string `json:"projectId,omitempty"`
}

func (h *handlerImpl) HandleCreateLabel(c *gin.Context) {
	var req createLabelRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	// A project-scoped label requires the project to exist.
	if req.ProjectID != nil {
		_, err = h.store.FindProjectByID(c, *req.ProjectID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				abort(c, newBadRequestError("Project not found"))
				return
			}
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
	}

	label := &models.Label{
		Name:      req.Name,
		ProjectID: req.ProjectID,
	}
	if req.Color != nil {
		label.Color = *req.Color
	}

	created, err := h.store.CreateLabel(c, label)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("label_id", created.ID).
		Msg("created label")
	c.JSON(http.StatusCreated, newLabelResponse(created))
}

type updateLabelRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (h *handlerImpl) HandlePatchLabel(c *gin.Context) {
	var req updateLabelRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	labelID := c.Param("id")
	label, err := h.store.UpdateLabel(c, labelID, store.LabelUpdate{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Label not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("label_id", labelID).
		Msg("updated label")
	c.JSON(http.StatusOK, newLabelResponse(label))
}

func (h *handlerImpl) HandleDeleteLabel(c *gin.Context) {
	labelID := c.Param("id")
	err := h.store.DeleteLabel(c, labelID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Label not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("label_id", labelID).
		Msg("deleted label")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
