package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/taskflow-app/taskflow/internal/models"
)

type postgresStore struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func NewPostgres(logger zerolog.Logger, pgPool *pgxpool.Pool) Store {
	return &postgresStore{
		logger: logger,
		pgPool: pgPool,
	}
}

func newEntityID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.ForeignKeyViolation
	}
	return false
}

func (s *postgresStore) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	id, err := newEntityID()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate project id")
		return nil, err
	}

	now := time.Now()
	created := &models.Project{
		ID:          id,
		Name:        project.Name,
		Description: project.Description,
		Color:       project.Color,
		Icon:        project.Icon,
		IsFavorite:  project.IsFavorite,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if created.Color == "" {
		created.Color = models.DefaultProjectColor
	}

	const insertProjectQuery = `
INSERT INTO projects (id, name, description, color, icon, is_favorite, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertProjectQuery,
		created.ID,
		created.Name,
		created.Description,
		created.Color,
		created.Icon,
		created.IsFavorite,
		created.CreatedAt,
		created.UpdatedAt,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert project")
		return nil, err
	}
	s.logger.Debug().
		Str("project_id", created.ID).
		Msg("inserted project")

	return created, nil
}

const selectProjectColumns = `
SELECT id, name, description, color, icon, is_favorite, created_at, updated_at
FROM projects
`

func (s *postgresStore) scanProject(row pgx.Row) (*models.Project, error) {
	project := new(models.Project)
	err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Description,
		&project.Color,
		&project.Icon,
		&project.IsFavorite,
		&project.CreatedAt,
		&project.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *postgresStore) FindProjectByID(ctx context.Context, id string) (*models.Project, error) {
	row := s.pgPool.QueryRow(ctx, selectProjectColumns+"WHERE id = $1", id)
	return s.scanProject(row)
}

func (s *postgresStore) FindProjectByName(ctx context.Context, name string) (*models.Project, error) {
	row := s.pgPool.QueryRow(ctx, selectProjectColumns+"WHERE name = $1 LIMIT 1", name)
	return s.scanProject(row)
}

func (s *postgresStore) ListProjects(ctx context.Context) ([]*models.Project, error) {
	rows, err := s.pgPool.Query(ctx, selectProjectColumns+"ORDER BY created_at DESC")
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select projects")
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project, err := s.scanProject(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan project")
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

func (s *postgresStore) UpdateProject(ctx context.Context, id string, upd ProjectUpdate) (*models.Project, error) {
	const updateProjectQuery = `
UPDATE projects
SET name        = COALESCE($1, name),
    description = COALESCE($2, description),
    color       = COALESCE($3, color),
    icon        = COALESCE($4, icon),
    is_favorite = COALESCE($5, is_favorite),
    updated_at  = $6
WHERE id = $7
RETURNING id, name, description, color, icon, is_favorite, created_at, updated_at
`
	row := s.pgPool.QueryRow(
		ctx,
		updateProjectQuery,
		upd.Name,
		upd.Description,
		upd.Color,
		upd.Icon,
		upd.IsFavorite,
		time.Now(),
		id,
	)
	project, err := s.scanProject(row)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error().
				Err(err).
				Str("project_id", id).
				Msg("failed to update project")
		}
		return nil, err
	}
	s.logger.Debug().
		Str("project_id", id).
		Msg("updated project")

	return project, nil
}

func (s *postgresStore) DeleteProject(ctx context.Context, id string) error {
	// Tasks, subtasks, comments and task_labels go with it via
	// ON DELETE CASCADE.
	tag, err := s.pgPool.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", id).
			Msg("failed to delete project")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.logger.Debug().
		Str("project_id", id).
		Msg("deleted project")

	return nil
}

func (s *postgresStore) CountProjectTasks(ctx context.Context, projectID string) (int, error) {
	var count int
	err := s.pgPool.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM tasks WHERE project_id = $1`,
		projectID,
	).Scan(&count)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("project_id", projectID).
			Msg("failed to count project tasks")
		return 0, err
	}
	return count, nil
}

func (s *postgresStore) CreateLabel(ctx context.Context, label *models.Label) (*models.Label, error) {
	id, err := newEntityID()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate label id")
		return nil, err
	}

	created := &models.Label{
		ID:        id,
		Name:      label.Name,
		Color:     label.Color,
		ProjectID: label.ProjectID,
	}
	if created.Color == "" {
		created.Color = models.DefaultLabelColor
	}

	const insertLabelQuery = `
INSERT INTO labels (id, name, color, project_id)
VALUES ($1, $2, $3, $4)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertLabelQuery,
		created.ID,
		created.Name,
		created.Color,
		created.ProjectID,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Msg("failed to insert label")
		return nil, err
	}
	s.logger.Debug().
		Str("label_id", created.ID).
		Msg("inserted label")

	return created, nil
}

const selectLabelColumns = `
SELECT id, name, color, project_id
FROM labels
`

func (s *postgresStore) scanLabel(row pgx.Row) (*models.Label, error) {
	label := new(models.Label)
	err := row.Scan(
		&label.ID,
		&label.Name,
		&label.Color,
		&label.ProjectID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return label, nil
}

func (s *postgresStore) FindLabelByID(ctx context.Context, id string) (*models.Label, error) {
	row := s.pgPool.QueryRow(ctx, selectLabelColumns+"WHERE id = $1", id)
	return s.scanLabel(row)
}

func (s *postgresStore) FindLabelByName(ctx context.Context, name string) (*models.Label, error) {
	row := s.pgPool.QueryRow(ctx, selectLabelColumns+"WHERE name = $1 LIMIT 1", name)
	return s.scanLabel(row)
}

func (s *postgresStore) ListLabels(ctx context.Context) ([]*models.Label, error) {
	rows, err := s.pgPool.Query(ctx, selectLabelColumns+"ORDER BY name ASC")
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select labels")
		return nil, err
	}
	defer rows.Close()

	var labels []*models.Label
	for rows.Next() {
		label, err := s.scanLabel(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan label")
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

func (s *postgresStore) UpdateLabel(ctx context.Context, id string, upd LabelUpdate) (*models.Label, error) {
	const updateLabelQuery = `
UPDATE labels
SET name       = COALESCE($1, name),
    color      = COALESCE($2, color),
    project_id = CASE WHEN $3 THEN $4::text ELSE project_id END
WHERE id = $5
RETURNING id, name, color, project_id
`
	row := s.pgPool.QueryRow(ctx, updateLabelQuery, upd.Name, upd.Color, upd.SetProjectID, upd.ProjectID, id)
	label, err := s.scanLabel(row)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error().
				Err(err).
				Str("label_id", id).
				Msg("failed to update label")
		}
		return nil, err
	}
	s.logger.Debug().
		Str("label_id", id).
		Msg("updated label")

	return label, nil
}

func (s *postgresStore) DeleteLabel(ctx context.Context, id string) error {
	tag, err := s.pgPool.Exec(ctx, `DELETE FROM labels WHERE id = $1`, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("label_id", id).
			Msg("failed to delete label")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.logger.Debug().
		Str("label_id", id).
		Msg("deleted label")

	return nil
}

func (s *postgresStore) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	id, err := newEntityID()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate task id")
		return nil, err
	}

	now := time.Now()
	created := &models.Task{
		ID:          id,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Priority:    models.NormalizePriority(task.Priority),
		DueDate:     task.DueDate,
		Order:       task.Order,
		ProjectID:   task.ProjectID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	const insertTaskQuery = `
INSERT INTO tasks (id, title, description, completed, priority, due_date, "order", project_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertTaskQuery,
		created.ID,
		created.Title,
		created.Description,
		created.Completed,
		created.Priority,
		created.DueDate,
		created.Order,
		created.ProjectID,
		created.CreatedAt,
		created.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", created.ID).
		Msg("inserted task")

	return created, nil
}

const selectTaskColumns = `
SELECT id, title, description, completed, priority, due_date, "order", project_id, created_at, updated_at
FROM tasks
`

func (s *postgresStore) scanTask(row pgx.Row) (*models.Task, error) {
	task := new(models.Task)
	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.Priority,
		&task.DueDate,
		&task.Order,
		&task.ProjectID,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

func (s *postgresStore) FindTaskByID(ctx context.Context, id string) (*models.Task, error) {
	row := s.pgPool.QueryRow(ctx, selectTaskColumns+"WHERE id = $1", id)
	return s.scanTask(row)
}

func (s *postgresStore) FindTaskByTitle(ctx context.Context, title string) (*models.Task, error) {
	row := s.pgPool.QueryRow(ctx, selectTaskColumns+"WHERE title = $1 LIMIT 1", title)
	return s.scanTask(row)
}

func (s *postgresStore) ListTasks(ctx context.Context, filter TaskFilter) ([]*models.Task, error) {
	const selectTasksQuery = selectTaskColumns + `
WHERE ($1::text IS NULL OR project_id = $1)
  AND ($2::boolean IS NULL OR completed = $2)
  AND ($3::timestamptz IS NULL OR created_at >= $3)
  AND ($4::timestamptz IS NULL OR created_at <= $4)
ORDER BY "order" ASC, created_at ASC
`
	rows, err := s.pgPool.Query(
		ctx,
		selectTasksQuery,
		filter.ProjectID,
		filter.Completed,
		filter.CreatedFrom,
		filter.CreatedTo,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task")
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *postgresStore) UpdateTask(ctx context.Context, id string, upd TaskUpdate) (*models.Task, error) {
	const updateTaskQuery = `
UPDATE tasks
SET title       = COALESCE($1, title),
    description = COALESCE($2, description),
    completed   = COALESCE($3, completed),
    priority    = COALESCE($4, priority),
    "order"     = COALESCE($5, "order"),
    due_date    = CASE WHEN $6 THEN $7::timestamptz ELSE due_date END,
    project_id  = CASE WHEN $8 THEN $9::text ELSE project_id END,
    updated_at  = $10
WHERE id = $11
RETURNING id, title, description, completed, priority, due_date, "order", project_id, created_at, updated_at
`
	var priority *string
	if upd.Priority != nil {
		normalized := models.NormalizePriority(*upd.Priority)
		priority = &normalized
	}

	row := s.pgPool.QueryRow(
		ctx,
		updateTaskQuery,
		upd.Title,
		upd.Description,
		upd.Completed,
		priority,
		upd.Order,
		upd.SetDueDate,
		upd.DueDate,
		upd.SetProjectID,
		upd.ProjectID,
		time.Now(),
		id,
	)
	task, err := s.scanTask(row)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error().
				Err(err).
				Str("task_id", id).
				Msg("failed to update task")
		}
		return nil, err
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("updated task")

	return task, nil
}

func (s *postgresStore) DeleteTask(ctx context.Context, id string) error {
	tag, err := s.pgPool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", id).
			Msg("failed to delete task")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.logger.Debug().
		Str("task_id", id).
		Msg("deleted task")

	return nil
}

func (s *postgresStore) MaxTaskOrder(ctx context.Context, projectID *string) (int, bool, error) {
	const maxTaskOrderQuery = `
SELECT MAX("order")
FROM tasks
WHERE project_id IS NOT DISTINCT FROM $1
`
	var max *int
	err := s.pgPool.QueryRow(ctx, maxTaskOrderQuery, projectID).Scan(&max)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select max task order")
		return 0, false, err
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

func (s *postgresStore) CreateSubtask(ctx context.Context, subtask *models.Subtask) (*models.Subtask, error) {
	id, err := newEntityID()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate subtask id")
		return nil, err
	}

	now := time.Now()
	created := &models.Subtask{
		ID:        id,
		Title:     subtask.Title,
		Completed: subtask.Completed,
		Order:     subtask.Order,
		TaskID:    subtask.TaskID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const insertSubtaskQuery = `
INSERT INTO subtasks (id, title, completed, "order", task_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertSubtaskQuery,
		created.ID,
		created.Title,
		created.Completed,
		created.Order,
		created.TaskID,
		created.CreatedAt,
		created.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Msg("failed to insert subtask")
		return nil, err
	}
	s.logger.Debug().
		Str("subtask_id", created.ID).
		Msg("inserted subtask")

	return created, nil
}

const selectSubtaskColumns = `
SELECT id, title, completed, "order", task_id, created_at, updated_at
FROM subtasks
`

func (s *postgresStore) scanSubtask(row pgx.Row) (*models.Subtask, error) {
	subtask := new(models.Subtask)
	err := row.Scan(
		&subtask.ID,
		&subtask.Title,
		&subtask.Completed,
		&subtask.Order,
		&subtask.TaskID,
		&subtask.CreatedAt,
		&subtask.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return subtask, nil
}

func (s *postgresStore) FindSubtaskByID(ctx context.Context, id string) (*models.Subtask, error) {
	row := s.pgPool.QueryRow(ctx, selectSubtaskColumns+"WHERE id = $1", id)
	return s.scanSubtask(row)
}

func (s *postgresStore) ListSubtasks(ctx context.Context, taskID string) ([]*models.Subtask, error) {
	rows, err := s.pgPool.Query(
		ctx,
		selectSubtaskColumns+`WHERE task_id = $1 ORDER BY "order" ASC, created_at ASC`,
		taskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select subtasks")
		return nil, err
	}
	defer rows.Close()

	var subtasks []*models.Subtask
	for rows.Next() {
		subtask, err := s.scanSubtask(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan subtask")
			return nil, err
		}
		subtasks = append(subtasks, subtask)
	}
	return subtasks, rows.Err()
}

func (s *postgresStore) UpdateSubtask(ctx context.Context, id string, upd SubtaskUpdate) (*models.Subtask, error) {
	const updateSubtaskQuery = `
UPDATE subtasks
SET title      = COALESCE($1, title),
    completed  = COALESCE($2, completed),
    "order"    = COALESCE($3, "order"),
    updated_at = $4
WHERE id = $5
RETURNING id, title, completed, "order", task_id, created_at, updated_at
`
	row := s.pgPool.QueryRow(
		ctx,
		updateSubtaskQuery,
		upd.Title,
		upd.Completed,
		upd.Order,
		time.Now(),
		id,
	)
	subtask, err := s.scanSubtask(row)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error().
				Err(err).
				Str("subtask_id", id).
				Msg("failed to update subtask")
		}
		return nil, err
	}
	s.logger.Debug().
		Str("subtask_id", id).
		Msg("updated subtask")

	return subtask, nil
}

func (s *postgresStore) DeleteSubtask(ctx context.Context, id string) error {
	tag, err := s.pgPool.Exec(ctx, `DELETE FROM subtasks WHERE id = $1`, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("subtask_id", id).
			Msg("failed to delete subtask")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.logger.Debug().
		Str("subtask_id", id).
		Msg("deleted subtask")

	return nil
}

func (s *postgresStore) MaxSubtaskOrder(ctx context.Context, taskID string) (int, bool, error) {
	var max *int
	err := s.pgPool.QueryRow(
		ctx,
		`SELECT MAX("order") FROM subtasks WHERE task_id = $1`,
		taskID,
	).Scan(&max)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select max subtask order")
		return 0, false, err
	}
	if max == nil {
		return 0, false, nil
	}
	return *max, true, nil
}

func (s *postgresStore) CreateComment(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	id, err := newEntityID()
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to generate comment id")
		return nil, err
	}

	now := time.Now()
	created := &models.Comment{
		ID:        id,
		Content:   comment.Content,
		TaskID:    comment.TaskID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	const insertCommentQuery = `
INSERT INTO comments (id, content, task_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5)
`
	_, err = s.pgPool.Exec(
		ctx,
		insertCommentQuery,
		created.ID,
		created.Content,
		created.TaskID,
		created.CreatedAt,
		created.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Msg("failed to insert comment")
		return nil, err
	}
	s.logger.Debug().
		Str("comment_id", created.ID).
		Msg("inserted comment")

	return created, nil
}

const selectCommentColumns = `
SELECT id, content, task_id, created_at, updated_at
FROM comments
`

func (s *postgresStore) scanComment(row pgx.Row) (*models.Comment, error) {
	comment := new(models.Comment)
	err := row.Scan(
		&comment.ID,
		&comment.Content,
		&comment.TaskID,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return comment, nil
}

func (s *postgresStore) FindCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	row := s.pgPool.QueryRow(ctx, selectCommentColumns+"WHERE id = $1", id)
	return s.scanComment(row)
}

func (s *postgresStore) ListComments(ctx context.Context, taskID string) ([]*models.Comment, error) {
	rows, err := s.pgPool.Query(
		ctx,
		selectCommentColumns+"WHERE task_id = $1 ORDER BY created_at ASC",
		taskID,
	)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select comments")
		return nil, err
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		comment, err := s.scanComment(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan comment")
			return nil, err
		}
		comments = append(comments, comment)
	}
	return comments, rows.Err()
}

func (s *postgresStore) UpdateComment(ctx context.Context, id string, content string) (*models.Comment, error) {
	const updateCommentQuery = `
UPDATE comments
SET content = $1, updated_at = $2
WHERE id = $3
RETURNING id, content, task_id, created_at, updated_at
`
	row := s.pgPool.QueryRow(ctx, updateCommentQuery, content, time.Now(), id)
	comment, err := s.scanComment(row)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error().
				Err(err).
				Str("comment_id", id).
				Msg("failed to update comment")
		}
		return nil, err
	}
	s.logger.Debug().
		Str("comment_id", id).
		Msg("updated comment")

	return comment, nil
}

func (s *postgresStore) DeleteComment(ctx context.Context, id string) error {
	tag, err := s.pgPool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("comment_id", id).
			Msg("failed to delete comment")
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	s.logger.Debug().
		Str("comment_id", id).
		Msg("deleted comment")

	return nil
}

func (s *postgresStore) AddTaskLabel(ctx context.Context, taskID, labelID string) error {
	const insertTaskLabelQuery = `
INSERT INTO task_labels (task_id, label_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`
	_, err := s.pgPool.Exec(ctx, insertTaskLabelQuery, taskID, labelID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrNotFound
		}
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Str("label_id", labelID).
			Msg("failed to insert task label")
		return err
	}
	return nil
}

func (s *postgresStore) ReplaceTaskLabels(ctx context.Context, taskID string, labelIDs []string) error {
	_, err := s.pgPool.Exec(ctx, `DELETE FROM task_labels WHERE task_id = $1`, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to delete task labels")
		return err
	}

	for _, labelID := range labelIDs {
		if err := s.AddTaskLabel(ctx, taskID, labelID); err != nil {
			return err
		}
	}
	s.logger.Debug().
		Str("task_id", taskID).
		Int("count", len(labelIDs)).
		Msg("replaced task labels")

	return nil
}

func (s *postgresStore) ListTaskLabels(ctx context.Context, taskID string) ([]*models.Label, error) {
	const selectTaskLabelsQuery = `
SELECT l.id, l.name, l.color, l.project_id
FROM task_labels tl
JOIN labels l ON l.id = tl.label_id
WHERE tl.task_id = $1
ORDER BY l.name ASC
`
	rows, err := s.pgPool.Query(ctx, selectTaskLabelsQuery, taskID)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("task_id", taskID).
			Msg("failed to select task labels")
		return nil, err
	}
	defer rows.Close()

	var labels []*models.Label
	for rows.Next() {
		label, err := s.scanLabel(rows)
		if err != nil {
			s.logger.Error().
				Err(err).
				Msg("failed to scan task label")
			return nil, err
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}
