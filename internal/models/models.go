package models

import "time"

const (
	DefaultProjectColor = "#6366f1"
	DefaultLabelColor   = "#6b7280"
)

type Project struct {
	ID          string
	Name        string
	Description string
	Color       string
	Icon        string
	IsFavorite  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Label is scoped to a project when ProjectID is set,
// global otherwise.
type Label struct {
	ID        string
	Name      string
	Color     string
	ProjectID *string
}

// Task lives in a project, or in the inbox when ProjectID is nil.
type Task struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	Priority    string
	DueDate     *time.Time
	Order       int
	ProjectID   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Subtask struct {
	ID        string
	Title     string
	Completed bool
	Order     int
	TaskID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Comment struct {
	ID        string
	Content   string
	TaskID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TaskLabel is the task <-> label join row.
type TaskLabel struct {
	TaskID  string
	LabelID string
}
