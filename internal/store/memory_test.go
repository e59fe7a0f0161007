package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskflow-app/taskflow/internal/models"
)

func TestMemoryStoreTaskLifecycle(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	project, err := st.CreateProject(ctx, &models.Project{Name: "Work"})
	require.NoError(t, err)
	require.Equal(t, models.DefaultProjectColor, project.Color)

	task, err := st.CreateTask(ctx, &models.Task{
		Title:     "Write report",
		Priority:  "high",
		ProjectID: &project.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, task.ID)
	require.Equal(t, models.PriorityHigh, task.Priority)

	found, err := st.FindTaskByTitle(ctx, "Write report")
	require.NoError(t, err)
	require.Equal(t, task.ID, found.ID)

	count, err := st.CountProjectTasks(ctx, project.ID)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	_, err = st.FindTaskByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreCreateTaskUnknownProject(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	missing := "missing"
	_, err := st.CreateTask(ctx, &models.Task{Title: "Orphan", ProjectID: &missing})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStorePartialTaskUpdate(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	task, err := st.CreateTask(ctx, &models.Task{
		Title:       "Pay rent",
		Description: "march",
		DueDate:     &due,
	})
	require.NoError(t, err)

	title := "Pay rent early"
	updated, err := st.UpdateTask(ctx, task.ID, TaskUpdate{Title: &title})
	require.NoError(t, err)
	require.Equal(t, "Pay rent early", updated.Title)
	require.Equal(t, "march", updated.Description)
	require.NotNil(t, updated.DueDate)

	// An absent dueDate leaves it alone, an explicit null clears it.
	updated, err = st.UpdateTask(ctx, task.ID, TaskUpdate{SetDueDate: true})
	require.NoError(t, err)
	require.Nil(t, updated.DueDate)
}

func TestMemoryStoreExplicitNullProjectMovesToInbox(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	project, err := st.CreateProject(ctx, &models.Project{Name: "Work"})
	require.NoError(t, err)
	task, err := st.CreateTask(ctx, &models.Task{Title: "Call client", ProjectID: &project.ID})
	require.NoError(t, err)

	updated, err := st.UpdateTask(ctx, task.ID, TaskUpdate{SetProjectID: true})
	require.NoError(t, err)
	require.Nil(t, updated.ProjectID)

	inbox, err := st.ListTasks(ctx, TaskFilter{})
	require.NoError(t, err)
	require.Len(t, inbox, 1)
}

func TestMemoryStoreListTasksFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	project, err := st.CreateProject(ctx, &models.Project{Name: "Work"})
	require.NoError(t, err)

	first, err := st.CreateTask(ctx, &models.Task{Title: "b", Order: 1, ProjectID: &project.ID})
	require.NoError(t, err)
	second, err := st.CreateTask(ctx, &models.Task{Title: "a", Order: 0, ProjectID: &project.ID})
	require.NoError(t, err)
	_, err = st.CreateTask(ctx, &models.Task{Title: "inbox task"})
	require.NoError(t, err)

	tasks, err := st.ListTasks(ctx, TaskFilter{ProjectID: &project.ID})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	require.Equal(t, second.ID, tasks[0].ID)
	require.Equal(t, first.ID, tasks[1].ID)

	completed := true
	tasks, err = st.ListTasks(ctx, TaskFilter{Completed: &completed})
	require.NoError(t, err)
	require.Empty(t, tasks)
}

func TestMemoryStoreMaxTaskOrderPerScope(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	_, ok, err := st.MaxTaskOrder(ctx, nil)
	require.NoError(t, err)
	require.False(t, ok)

	project, err := st.CreateProject(ctx, &models.Project{Name: "Work"})
	require.NoError(t, err)
	_, err = st.CreateTask(ctx, &models.Task{Title: "a", Order: 4, ProjectID: &project.ID})
	require.NoError(t, err)
	_, err = st.CreateTask(ctx, &models.Task{Title: "b", Order: 2})
	require.NoError(t, err)

	max, ok, err := st.MaxTaskOrder(ctx, &project.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 4, max)

	max, ok, err = st.MaxTaskOrder(ctx, nil)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, max)
}

func TestMemoryStoreDeleteTaskCascades(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	task, err := st.CreateTask(ctx, &models.Task{Title: "Plan trip"})
	require.NoError(t, err)
	subtask, err := st.CreateSubtask(ctx, &models.Subtask{Title: "Book hotel", TaskID: task.ID})
	require.NoError(t, err)
	comment, err := st.CreateComment(ctx, &models.Comment{Content: "check prices", TaskID: task.ID})
	require.NoError(t, err)
	label, err := st.CreateLabel(ctx, &models.Label{Name: "travel"})
	require.NoError(t, err)
	require.NoError(t, st.AddTaskLabel(ctx, task.ID, label.ID))

	require.NoError(t, st.DeleteTask(ctx, task.ID))

	_, err = st.FindSubtaskByID(ctx, subtask.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = st.FindCommentByID(ctx, comment.ID)
	require.ErrorIs(t, err, ErrNotFound)

	// The label itself survives, only the attachment goes.
	_, err = st.FindLabelByID(ctx, label.ID)
	require.NoError(t, err)
}

func TestMemoryStoreDeleteProjectCascades(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	project, err := st.CreateProject(ctx, &models.Project{Name: "Work"})
	require.NoError(t, err)
	task, err := st.CreateTask(ctx, &models.Task{Title: "Write report", ProjectID: &project.ID})
	require.NoError(t, err)
	label, err := st.CreateLabel(ctx, &models.Label{Name: "office", ProjectID: &project.ID})
	require.NoError(t, err)
	keeper, err := st.CreateTask(ctx, &models.Task{Title: "inbox task"})
	require.NoError(t, err)

	require.NoError(t, st.DeleteProject(ctx, project.ID))

	_, err = st.FindTaskByID(ctx, task.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = st.FindLabelByID(ctx, label.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = st.FindTaskByID(ctx, keeper.ID)
	require.NoError(t, err)
}

func TestMemoryStoreReplaceTaskLabels(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	task, err := st.CreateTask(ctx, &models.Task{Title: "Read book"})
	require.NoError(t, err)
	a, err := st.CreateLabel(ctx, &models.Label{Name: "a"})
	require.NoError(t, err)
	b, err := st.CreateLabel(ctx, &models.Label{Name: "b"})
	require.NoError(t, err)

	require.NoError(t, st.ReplaceTaskLabels(ctx, task.ID, []string{a.ID}))
	require.NoError(t, st.ReplaceTaskLabels(ctx, task.ID, []string{b.ID}))

	labels, err := st.ListTaskLabels(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, labels, 1)
	require.Equal(t, "b", labels[0].Name)
}

func TestMemoryStoreSubtaskScopedToTask(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	_, err := st.CreateSubtask(ctx, &models.Subtask{Title: "orphan", TaskID: "missing"})
	require.ErrorIs(t, err, ErrNotFound)

	task, err := st.CreateTask(ctx, &models.Task{Title: "Clean house"})
	require.NoError(t, err)
	_, err = st.CreateSubtask(ctx, &models.Subtask{Title: "kitchen", Order: 1, TaskID: task.ID})
	require.NoError(t, err)
	_, err = st.CreateSubtask(ctx, &models.Subtask{Title: "bathroom", Order: 0, TaskID: task.ID})
	require.NoError(t, err)

	subtasks, err := st.ListSubtasks(ctx, task.ID)
	require.NoError(t, err)
	require.Len(t, subtasks, 2)
	require.Equal(t, "bathroom", subtasks[0].Title)

	max, ok, err := st.MaxSubtaskOrder(ctx, task.ID)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, max)
}
