package v1

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskflow-app/taskflow/internal/models"
	"github.com/taskflow-app/taskflow/internal/store"
)

type taskResponse struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Completed   bool            `json:"completed"`
	Priority    string          `json:"priority"`
	DueDate     *time.Time      `json:"dueDate"`
	Order       int             `json:"order"`
	ProjectID   *string         `json:"projectId"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
	Labels      []labelResponse `json:"labels"`
}

func newTaskResponse(task *models.Task, labels []*models.Label) taskResponse {
	resp := taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Priority:    task.Priority,
		DueDate:     task.DueDate,
		Order:       task.Order,
		ProjectID:   task.ProjectID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Labels:      make([]labelResponse, 0, len(labels)),
	}
	for _, label := range labels {
		resp.Labels = append(resp.Labels, newLabelResponse(label))
	}
	return resp
}

// respondWithTask re-reads labels so the response reflects the
// current state (write, then read back).
func (h *handlerImpl) respondWithTask(c *gin.Context, status int, task *models.Task) {
	labels, err := h.store.ListTaskLabels(c, task.ID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Str("task_id", task.ID).
			Msg("failed to list task labels")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(status, newTaskResponse(task, labels))
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	var filter store.TaskFilter
	if projectID := c.Query("projectId"); projectID != "" {
		filter.ProjectID = &projectID
	}

	tasks, err := h.store.ListTasks(c, filter)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	response := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		labels, err := h.store.ListTaskLabels(c, task.ID)
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("task_id", task.ID).
				Msg("failed to list task labels")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		response = append(response, newTaskResponse(task, labels))
	}
	c.JSON(http.StatusOK, response)
}

type createTaskRequest struct {
	Title       string     `json:"title" binding:"required,max=255"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	ProjectID   *string    `json:"projectId,omitempty"`
	LabelIDs    []string   `json:"labelIds,omitempty"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	order, err := h.orders.NextTaskOrder(c, req.ProjectID)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	task := &models.Task{
		Title:     req.Title,
		Order:     order,
		ProjectID: req.ProjectID,
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	task.DueDate = req.DueDate

	created, err := h.store.CreateTask(c, task)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newBadRequestError("Project not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	if len(req.LabelIDs) > 0 {
		err = h.store.ReplaceTaskLabels(c, created.ID, req.LabelIDs)
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("task_id", created.ID).
				Msg("failed to attach task labels")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
	}

	h.logger.Info().
		Str("task_id", created.ID).
		Msg("created task")
	h.respondWithTask(c, http.StatusCreated, created)
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	task, err := h.store.FindTaskByID(c, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Task not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	h.respondWithTask(c, http.StatusOK, task)
}

type updateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Completed   *bool      `json:"completed,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Order       *int       `json:"order,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	ProjectID   *string    `json:"projectId,omitempty"`
	LabelIDs    *[]string  `json:"labelIds,omitempty"`
}

func (h *handlerImpl) HandlePatchTask(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	var req updateTaskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	// An explicit null is distinct from an absent field: null
	// projectId moves the task to the inbox, null dueDate clears it.
	var keys map[string]json.RawMessage
	_ = json.Unmarshal(body, &keys)
	_, hasProjectID := keys["projectId"]
	_, hasDueDate := keys["dueDate"]

	taskID := c.Param("id")
	upd := store.TaskUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Completed:    req.Completed,
		Priority:     req.Priority,
		Order:        req.Order,
		DueDate:      req.DueDate,
		SetDueDate:   hasDueDate,
		ProjectID:    req.ProjectID,
		SetProjectID: hasProjectID,
	}

	// A cross-scope move keeps the old order value until the next
	// reorder in the destination scope.
	task, err := h.store.UpdateTask(c, taskID, upd)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Task not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	if req.LabelIDs != nil {
		err = h.store.ReplaceTaskLabels(c, taskID, *req.LabelIDs)
		if err != nil {
			h.logger.Error().
				Err(err).
				Str("task_id", taskID).
				Msg("failed to replace task labels")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
	}

	h.logger.Info().
		Str("task_id", taskID).
		Msg("updated task")
	h.respondWithTask(c, http.StatusOK, task)
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	taskID := c.Param("id")
	err := h.store.DeleteTask(c, taskID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Task not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("task_id", taskID).
		Msg("deleted task")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type reorderTasksRequest struct {
	TaskIDs []string `json:"taskIds" binding:"required,min=1"`
}

func (h *handlerImpl) HandleReorderTasks(c *gin.Context) {
	var req reorderTasksRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	err = h.orders.ReorderTasks(c, req.TaskIDs)
	if err != nil {
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
