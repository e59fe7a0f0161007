// Package store exposes the entity store the engines and handlers
// work against. The postgres implementation is the durable one; the
// in-memory implementation backs tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/taskflow-app/taskflow/internal/models"
)

var ErrNotFound = errors.New("entity not found")

// TaskFilter narrows ListTasks. Nil fields impose no constraint.
// CreatedFrom and CreatedTo are inclusive bounds on CreatedAt.
type TaskFilter struct {
	ProjectID   *string
	Completed   *bool
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// Update structs carry partial updates: nil fields are left
// untouched. TaskUpdate additionally distinguishes "not supplied"
// from "explicitly null" for project and due date, since null
// projectId means "move to inbox".
type ProjectUpdate struct {
	Name        *string
	Description *string
	Color       *string
	Icon        *string
	IsFavorite  *bool
}

type LabelUpdate struct {
	Name         *string
	Color        *string
	ProjectID    *string
	SetProjectID bool
}

type TaskUpdate struct {
	Title        *string
	Description  *string
	Completed    *bool
	Priority     *string
	Order        *int
	DueDate      *time.Time
	SetDueDate   bool
	ProjectID    *string
	SetProjectID bool
}

type SubtaskUpdate struct {
	Title     *string
	Completed *bool
	Order     *int
}

type Store interface {
	CreateProject(ctx context.Context, project *models.Project) (*models.Project, error)
	FindProjectByID(ctx context.Context, id string) (*models.Project, error)
	FindProjectByName(ctx context.Context, name string) (*models.Project, error)
	ListProjects(ctx context.Context) ([]*models.Project, error)
	UpdateProject(ctx context.Context, id string, upd ProjectUpdate) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
	CountProjectTasks(ctx context.Context, projectID string) (int, error)

	CreateLabel(ctx context.Context, label *models.Label) (*models.Label, error)
	FindLabelByID(ctx context.Context, id string) (*models.Label, error)
	FindLabelByName(ctx context.Context, name string) (*models.Label, error)
	ListLabels(ctx context.Context) ([]*models.Label, error)
	UpdateLabel(ctx context.Context, id string, upd LabelUpdate) (*models.Label, error)
	DeleteLabel(ctx context.Context, id string) error

	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)
	FindTaskByID(ctx context.Context, id string) (*models.Task, error)
	FindTaskByTitle(ctx context.Context, title string) (*models.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*models.Task, error)
	UpdateTask(ctx context.Context, id string, upd TaskUpdate) (*models.Task, error)
	DeleteTask(ctx context.Context, id string) error

	// MaxTaskOrder reports the highest order value in a scope; ok is
	// false when the scope is empty. A nil projectID means the inbox.
	MaxTaskOrder(ctx context.Context, projectID *string) (max int, ok bool, err error)

	CreateSubtask(ctx context.Context, subtask *models.Subtask) (*models.Subtask, error)
	FindSubtaskByID(ctx context.Context, id string) (*models.Subtask, error)
	ListSubtasks(ctx context.Context, taskID string) ([]*models.Subtask, error)
	UpdateSubtask(ctx context.Context, id string, upd SubtaskUpdate) (*models.Subtask, error)
	DeleteSubtask(ctx context.Context, id string) error
	MaxSubtaskOrder(ctx context.Context, taskID string) (max int, ok bool, err error)

	CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	FindCommentByID(ctx context.Context, id string) (*models.Comment, error)
	ListComments(ctx context.Context, taskID string) ([]*models.Comment, error)
	UpdateComment(ctx context.Context, id string, content string) (*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error

	AddTaskLabel(ctx context.Context, taskID, labelID string) error
	ReplaceTaskLabels(ctx context.Context, taskID string, labelIDs []string) error
	ListTaskLabels(ctx context.Context, taskID string) ([]*models.Label, error)
}
