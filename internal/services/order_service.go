package services

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/taskflow-app/taskflow/internal/store"
)

type orderServiceImpl struct {
	logger zerolog.Logger
	store  store.Store
}

func NewOrderService(logger zerolog.Logger, st store.Store) OrderService {
	return &orderServiceImpl{
		logger: logger,
		store:  st,
	}
}

func (s *orderServiceImpl) NextTaskOrder(ctx context.Context, projectID *string) (int, error) {
	max, ok, err := s.store.MaxTaskOrder(ctx, projectID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to get max task order")
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return max + 1, nil
}

func (s *orderServiceImpl) NextSubtaskOrder(ctx context.Context, taskID string) (int, error) {
	max, ok, err := s.store.MaxSubtaskOrder(ctx, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to get max subtask order")
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return max + 1, nil
}

func (s *orderServiceImpl) ReorderTasks(ctx context.Context, taskIDs []string) error {
	// Each update targets a disjoint entity; there is no rollback if
	// one fails mid-batch, the scope is left partially rewritten.
	for i, taskID := range taskIDs {
		order := i
		_, err := s.store.UpdateTask(ctx, taskID, store.TaskUpdate{Order: &order})
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("task_id", taskID).
				Int("applied", i).
				Msg("failed to reorder tasks")
			return fmt.Errorf("reorder stopped after %d of %d updates: %w", i, len(taskIDs), err)
		}
	}
	s.logger.Info().
		Int("count", len(taskIDs)).
		Msg("reordered tasks")

	return nil
}

func (s *orderServiceImpl) ReorderSubtasks(ctx context.Context, subtaskIDs []string) error {
	for i, subtaskID := range subtaskIDs {
		order := i
		_, err := s.store.UpdateSubtask(ctx, subtaskID, store.SubtaskUpdate{Order: &order})
		if err != nil {
			s.logger.Error().
				Err(err).
				Str("subtask_id", subtaskID).
				Int("applied", i).
				Msg("failed to reorder subtasks")
			return fmt.Errorf("reorder stopped after %d of %d updates: %w", i, len(subtaskIDs), err)
		}
	}
	s.logger.Info().
		Int("count", len(subtaskIDs)).
		Msg("reordered subtasks")

	return nil
}
