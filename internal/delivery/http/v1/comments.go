package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/taskflow-app/taskflow/internal/models"
	"github.com/taskflow-app/taskflow/internal/store"
)

type commentResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	TaskID    string    `json:"taskId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func newCommentResponse(comment *models.Comment) commentResponse {
	return commentResponse{
		ID:        comment.ID,
		Content:   comment.Content,
		TaskID:    comment.TaskID,
		CreatedAt: comment.CreatedAt,
		UpdatedAt: comment.UpdatedAt,
	}
}

func (h *handlerImpl) HandleListComments(c *gin.Context) {
	comments, err := h.store.ListComments(c, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list comments")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	response := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		response = append(response, newCommentResponse(comment))
	}
	c.JSON(http.StatusOK, response)
}

type createCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *handlerImpl) HandleCreateComment(c *gin.Context) {
	var req createCommentRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	taskID := c.Param("id")
	created, err := h.store.CreateComment(c, &models.Comment{
		Content: req.Content,
		TaskID:  taskID,
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
		Str("comment_id", created.ID).
		Str("task_id", taskID).
		Msg("created comment")
	c.JSON(http.StatusCreated, newCommentResponse(created))
}

type updateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *handlerImpl) HandlePatchComment(c *gin.Context) {
	var req updateCommentRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}

	commentID := c.Param("id")
	comment, err := h.store.UpdateComment(c, commentID, req.Content)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Comment not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("comment_id", commentID).
		Msg("updated comment")
	c.JSON(http.StatusOK, newCommentResponse(comment))
}

func (h *handlerImpl) HandleDeleteComment(c *gin.Context) {
	commentID := c.Param("id")
	err := h.store.DeleteComment(c, commentID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			abort(c, newNotFoundError("Comment not found"))
			return
		}
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	h.logger.Info().
		Str("comment_id", commentID).
		Msg("deleted comment")
	c.JSON(http.StatusOK, gin.H{"success": true})
}
