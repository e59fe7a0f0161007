package services

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/taskflow-app/taskflow/internal/models"
	"github.com/taskflow-app/taskflow/internal/store"
)

func TestNextTaskOrder(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	orders := NewOrderService(zerolog.Nop(), st)

	// Empty scope starts at zero.
	order, err := orders.NextTaskOrder(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 0, order)

	_, err = st.CreateTask(ctx, &models.Task{Title: "a", Order: 3})
	require.NoError(t, err)

	order, err = orders.NextTaskOrder(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 4, order)

	// Project scopes are independent of the inbox.
	project, err := st.CreateProject(ctx, &models.Project{Name: "Work"})
	require.NoError(t, err)
	order, err = orders.NextTaskOrder(ctx, &project.ID)
	require.NoError(t, err)
	require.Equal(t, 0, order)
}

func TestNextSubtaskOrder(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	orders := NewOrderService(zerolog.Nop(), st)

	task, err := st.CreateTask(ctx, &models.Task{Title: "Clean house"})
	require.NoError(t, err)

	order, err := orders.NextSubtaskOrder(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, 0, order)

	_, err = st.CreateSubtask(ctx, &models.Subtask{Title: "kitchen", Order: 0, TaskID: task.ID})
	require.NoError(t, err)

	order, err = orders.NextSubtaskOrder(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, 1, order)
}

func TestReorderTasksAssignsIndexes(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	orders := NewOrderService(zerolog.Nop(), st)

	a, err := st.CreateTask(ctx, &models.Task{Title: "a", Order: 0})
	require.NoError(t, err)
	b, err := st.CreateTask(ctx, &models.Task{Title: "b", Order: 1})
	require.NoError(t, err)
	c, err := st.CreateTask(ctx, &models.Task{Title: "c", Order: 2})
	require.NoError(t, err)

	require.NoError(t, orders.ReorderTasks(ctx, []string{c.ID, a.ID, b.ID}))

	tasks, err := st.ListTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	require.Equal(t, c.ID, tasks[0].ID)
	require.Equal(t, a.ID, tasks[1].ID)
	require.Equal(t, b.ID, tasks[2].ID)
	for i, task := range tasks {
		require.Equal(t, i, task.Order)
	}

	// Repeating the same order is a no-op.
	require.NoError(t, orders.ReorderTasks(ctx, []string{c.ID, a.ID, b.ID}))
	again, err := st.ListTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	require.Equal(t, tasks[0].ID, again[0].ID)
}

func TestReorderTasksReportsProgressOnFailure(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	orders := NewOrderService(zerolog.Nop(), st)

	a, err := st.CreateTask(ctx, &models.Task{Title: "a", Order: 0})
	require.NoError(t, err)

	err = orders.ReorderTasks(ctx, []string{a.ID, "missing"})
	require.Error(t, err)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.Contains(t, err.Error(), "1 of 2")
}

func TestReorderSubtasks(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	orders := NewOrderService(zerolog.Nop(), st)

	task, err := st.CreateTask(ctx, &models.Task{Title: "Clean house"})
	require.NoError(t, err)
	first, err := st.CreateSubtask(ctx, &models.Subtask{Title: "kitchen", Order: 0, TaskID: task.ID})
	require.NoError(t, err)
	second, err := st.CreateSubtask(ctx, &models.Subtask{Title: "bathroom", Order: 1, TaskID: task.ID})
	require.NoError(t, err)

	require.NoError(t, orders.ReorderSubtasks(ctx, []string{second.ID, first.ID}))

	subtasks, err := st.ListSubtasks(ctx, task.ID)
	require.NoError(t, err)
	require.Equal(t, second.ID, subtasks[0].ID)
	require.Equal(t, 0, subtasks[0].Order)
	require.Equal(t, 1, subtasks[1].Order)
}
