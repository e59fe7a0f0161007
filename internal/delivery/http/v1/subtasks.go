package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskflow-app/taskflow/internal/models"
	"github.com/taskflow-app/taskflow/internal/store"
)

type subtaskResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Order     int       `json:"order"`
	TaskID    string    `json:"taskId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newSubtaskResponse(subtask *models.Subtask) subtaskResponse {
	return subtaskResponse{
		ID:        subtask.ID,
		Title:     subtask.Title,
		Completed: subtask.Completed,
		Order:     subtask.Order,
		TaskID:    subtask.TaskID,
		CreatedAt: subtask.CreatedAt,
		UpdatedAt: subtask.UpdatedAt,
	}
}

func (h *handlerImpl) HandleListSubtasks(c *gin.Context) {
	subtasks, err := h.store.ListSubtasks(c, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list subtasks")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	response := make([]subtaskResponse, 0, len(subtasks))
	for _, subtask := range subtasks {
		response = append(response, newSubtaskResponse(subtask))
	}
	c.JSON(http.StatusOK, response)
}

type createSubtaskRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

func (h *handlerImpl) HandleCreateSubtask(c *gin.Context) {
	var req createSubtaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	taskID := c.Param("id")
	order, err := h.orders.NextSubtaskOrder(c, taskID)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	created, err := h.store.CreateSubtask(c, &models.Subtask{
		Title:  req.Title,
		Order:  order,
		TaskID: taskID,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Task not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("subtask_id", created.ID).
		Str("task_id", taskID).
		Msg("created subtask")
	c.JSON(http.StatusCreated, newSubtaskResponse(created))
}

type reorderSubtasksRequest struct {
	SubtaskIDs []string `json:"subtaskIds" binding:"required,min=1"`
}

func (h *handlerImpl) HandleReorderSubtasks(c *gin.Context) {
	var req reorderSubtasksRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	err = h.orders.ReorderSubtasks(c, req.SubtaskIDs)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlerImpl) HandleGetSubtask(c *gin.Context) {
	subtask, err := h.store.FindSubtaskByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Subtask not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, newSubtaskResponse(subtask))
}

type updateSubtaskRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Order     *int    `json:"order,omitempty"`
}

func (h *handlerImpl) HandlePatchSubtask(c *gin.Context) {
	var req updateSubtaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	subtaskID := c.Param("id")
	subtask, err := h.store.UpdateSubtask(c, subtaskID, store.SubtaskUpdate{
		Title:     req.Title,
		Completed: req.Completed,
		Order:     req.Order,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Subtask not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("subtask_id", subtaskID).
		Msg("updated subtask")
	c.JSON(http.StatusOK, newSubtaskResponse(subtask))
}

func (h *handlerImpl) HandleDeleteSubtask(c *gin.Context) {
	subtaskID := c.Param("id")
	err := h.store.DeleteSubtask(c, subtaskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Subtask not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("subtask_id", subtaskID).
		Msg("deleted subtask")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *handlerImpl) HandleToggleSubtask(c *gin.Context) {
	subtaskID := c.Param("id")
	subtask, err := h.store.FindSubtaskByID(c, subtaskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Subtask not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	completed := !subtask.Completed
	updated, err := h.store.UpdateSubtask(c, subtaskID, store.SubtaskUpdate{
		Completed: &completed,
	})
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("subtask_id", subtaskID).
		Bool("completed", completed).
		Msg("toggled subtask")
	c.JSON(http.StatusOK, newSubtaskResponse(updated))
}
