package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow-app/taskflow/internal/models"
)

// MemoryStore keeps the whole entity graph in process memory. It
// honors the same contract as the postgres store, including cascade
// deletes, which it performs explicitly.
type MemoryStore struct {
	mu         sync.RWMutex
	projects   map[string]*models.Project
	labels     map[string]*models.Label
	tasks      map[string]*models.Task
	subtasks   map[string]*models.Subtask
	comments   map[string]*models.Comment
	taskLabels []models.TaskLabel
}

func NewMemory() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string]*models.Project),
		labels:   make(map[string]*models.Label),
		tasks:    make(map[string]*models.Task),
		subtasks: make(map[string]*models.Subtask),
		comments: make(map[string]*models.Comment),
	}
}

func memoryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func cloneProject(p *models.Project) *models.Project {
	c := *p
	return &c
}

func cloneLabel(l *models.Label) *models.Label {
	c := *l
	if l.ProjectID != nil {
		id := *l.ProjectID
		c.ProjectID = &id
	}
	return &c
}

func cloneTask(t *models.Task) *models.Task {
	c := *t
	if t.ProjectID != nil {
		id := *t.ProjectID
		c.ProjectID = &id
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return &c
}

func cloneSubtask(s *models.Subtask) *models.Subtask {
	c := *s
	return &c
}

func cloneComment(c *models.Comment) *models.Comment {
	cp := *c
	return &cp
}

func (m *MemoryStore) CreateProject(_ context.Context, project *models.Project) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	created := &models.Project{
		ID:          memoryID(),
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
	m.projects[created.ID] = created
	return cloneProject(created), nil
}

func (m *MemoryStore) FindProjectByID(_ context.Context, id string) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	project, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneProject(project), nil
}

func (m *MemoryStore) FindProjectByName(_ context.Context, name string) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, project := range m.sortedProjects() {
		if project.Name == name {
			return cloneProject(project), nil
		}
	}
	return nil, ErrNotFound
}

// sortedProjects returns projects newest first, matching the
// postgres list ordering. Callers must hold the lock.
func (m *MemoryStore) sortedProjects() []*models.Project {
	projects := make([]*models.Project, 0, len(m.projects))
	for _, project := range m.projects {
		projects = append(projects, project)
	}
	sort.Slice(projects, func(i, j int) bool {
		if !projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].CreatedAt.After(projects[j].CreatedAt)
		}
		return projects[i].ID > projects[j].ID
	})
	return projects
}

func (m *MemoryStore) ListProjects(_ context.Context) ([]*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var projects []*models.Project
	for _, project := range m.sortedProjects() {
		projects = append(projects, cloneProject(project))
	}
	return projects, nil
}

func (m *MemoryStore) UpdateProject(_ context.Context, id string, upd ProjectUpdate) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	project, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		project.Name = *upd.Name
	}
	if upd.Description != nil {
		project.Description = *upd.Description
	}
	if upd.Color != nil {
		project.Color = *upd.Color
	}
	if upd.Icon != nil {
		project.Icon = *upd.Icon
	}
	if upd.IsFavorite != nil {
		project.IsFavorite = *upd.IsFavorite
	}
	project.UpdatedAt = time.Now()
	return cloneProject(project), nil
}

func (m *MemoryStore) DeleteProject(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[id]; !ok {
		return ErrNotFound
	}
	delete(m.projects, id)

	for labelID, label := range m.labels {
		if label.ProjectID != nil && *label.ProjectID == id {
			delete(m.labels, labelID)
			m.removeLabelRows(labelID)
		}
	}
	for taskID, task := range m.tasks {
		if task.ProjectID != nil && *task.ProjectID == id {
			m.deleteTaskLocked(taskID)
		}
	}
	return nil
}

func (m *MemoryStore) CountProjectTasks(_ context.Context, projectID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, task := range m.tasks {
		if task.ProjectID != nil && *task.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

func (m *MemoryStore) CreateLabel(_ context.Context, label *models.Label) (*models.Label, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if label.ProjectID != nil {
		if _, ok := m.projects[*label.ProjectID]; !ok {
			return nil, ErrNotFound
		}
	}
	created := cloneLabel(label)
	created.ID = memoryID()
	if created.Color == "" {
		created.Color = models.DefaultLabelColor
	}
	m.labels[created.ID] = created
	return cloneLabel(created), nil
}

func (m *MemoryStore) FindLabelByID(_ context.Context, id string) (*models.Label, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	label, ok := m.labels[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneLabel(label), nil
}

func (m *MemoryStore) FindLabelByName(_ context.Context, name string) (*models.Label, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, label := range m.sortedLabels() {
		if label.Name == name {
			return cloneLabel(label), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) sortedLabels() []*models.Label {
	labels := make([]*models.Label, 0, len(m.labels))
	for _, label := range m.labels {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Name != labels[j].Name {
			return labels[i].Name < labels[j].Name
		}
		return labels[i].ID < labels[j].ID
	})
	return labels
}

func (m *MemoryStore) ListLabels(_ context.Context) ([]*models.Label, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var labels []*models.Label
	for _, label := range m.sortedLabels() {
		labels = append(labels, cloneLabel(label))
	}
	return labels, nil
}

func (m *MemoryStore) UpdateLabel(_ context.Context, id string, upd LabelUpdate) (*models.Label, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	label, ok := m.labels[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Name != nil {
		label.Name = *upd.Name
	}
	if upd.Color != nil {
		label.Color = *upd.Color
	}
	if upd.SetProjectID {
		label.ProjectID = upd.ProjectID
	}
	return cloneLabel(label), nil
}

func (m *MemoryStore) DeleteLabel(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.labels[id]; !ok {
		return ErrNotFound
	}
	delete(m.labels, id)
	m.removeLabelRows(id)
	return nil
}

func (m *MemoryStore) removeLabelRows(labelID string) {
	rows := m.taskLabels[:0]
	for _, row := range m.taskLabels {
		if row.LabelID != labelID {
			rows = append(rows, row)
		}
	}
	m.taskLabels = rows
}

func (m *MemoryStore) removeTaskRows(taskID string) {
	rows := m.taskLabels[:0]
	for _, row := range m.taskLabels {
		if row.TaskID != taskID {
			rows = append(rows, row)
		}
	}
	m.taskLabels = rows
}

func (m *MemoryStore) CreateTask(_ context.Context, task *models.Task) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if task.ProjectID != nil {
		if _, ok := m.projects[*task.ProjectID]; !ok {
			return nil, ErrNotFound
		}
	}
	now := time.Now()
	created := cloneTask(task)
	created.ID = memoryID()
	created.Priority = models.NormalizePriority(task.Priority)
	created.CreatedAt = now
	created.UpdatedAt = now
	m.tasks[created.ID] = created
	return cloneTask(created), nil
}

func (m *MemoryStore) FindTaskByID(_ context.Context, id string) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneTask(task), nil
}

func (m *MemoryStore) FindTaskByTitle(_ context.Context, title string) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, task := range m.sortedTasks() {
		if task.Title == title {
			return cloneTask(task), nil
		}
	}
	return nil, ErrNotFound
}

// sortedTasks orders by "order" then creation time, the display
// order contract. Callers must hold the lock.
func (m *MemoryStore) sortedTasks() []*models.Task {
	tasks := make([]*models.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].Order != tasks[j].Order {
			return tasks[i].Order < tasks[j].Order
		}
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks
}

func (m *MemoryStore) ListTasks(_ context.Context, filter TaskFilter) ([]*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var tasks []*models.Task
	for _, task := range m.sortedTasks() {
		if filter.ProjectID != nil && (task.ProjectID == nil || *task.ProjectID != *filter.ProjectID) {
			continue
		}
		if filter.Completed != nil && task.Completed != *filter.Completed {
			continue
		}
		if filter.CreatedFrom != nil && task.CreatedAt.Before(*filter.CreatedFrom) {
			continue
		}
		if filter.CreatedTo != nil && task.CreatedAt.After(*filter.CreatedTo) {
			continue
		}
		tasks = append(tasks, cloneTask(task))
	}
	return tasks, nil
}

func (m *MemoryStore) UpdateTask(_ context.Context, id string, upd TaskUpdate) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}
	if upd.Priority != nil {
		task.Priority = models.NormalizePriority(*upd.Priority)
	}
	if upd.Order != nil {
		task.Order = *upd.Order
	}
	if upd.SetDueDate {
		task.DueDate = upd.DueDate
	}
	if upd.SetProjectID {
		task.ProjectID = upd.ProjectID
	}
	task.UpdatedAt = time.Now()
	return cloneTask(task), nil
}

func (m *MemoryStore) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return ErrNotFound
	}
	m.deleteTaskLocked(id)
	return nil
}

func (m *MemoryStore) deleteTaskLocked(id string) {
	delete(m.tasks, id)
	for subtaskID, subtask := range m.subtasks {
		if subtask.TaskID == id {
			delete(m.subtasks, subtaskID)
		}
	}
	for commentID, comment := range m.comments {
		if comment.TaskID == id {
			delete(m.comments, commentID)
		}
	}
	m.removeTaskRows(id)
}

func (m *MemoryStore) MaxTaskOrder(_ context.Context, projectID *string) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	max, found := 0, false
	for _, task := range m.tasks {
		if projectID == nil {
			if task.ProjectID != nil {
				continue
			}
		} else if task.ProjectID == nil || *task.ProjectID != *projectID {
			continue
		}
		if !found || task.Order > max {
			max, found = task.Order, true
		}
	}
	return max, found, nil
}

func (m *MemoryStore) CreateSubtask(_ context.Context, subtask *models.Subtask) (*models.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[subtask.TaskID]; !ok {
		return nil, ErrNotFound
	}
	now := time.Now()
	created := cloneSubtask(subtask)
	created.ID = memoryID()
	created.CreatedAt = now
	created.UpdatedAt = now
	m.subtasks[created.ID] = created
	return cloneSubtask(created), nil
}

func (m *MemoryStore) FindSubtaskByID(_ context.Context, id string) (*models.Subtask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	subtask, ok := m.subtasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneSubtask(subtask), nil
}

func (m *MemoryStore) ListSubtasks(_ context.Context, taskID string) ([]*models.Subtask, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var subtasks []*models.Subtask
	for _, subtask := range m.subtasks {
		if subtask.TaskID == taskID {
			subtasks = append(subtasks, cloneSubtask(subtask))
		}
	}
	sort.Slice(subtasks, func(i, j int) bool {
		if subtasks[i].Order != subtasks[j].Order {
			return subtasks[i].Order < subtasks[j].Order
		}
		if !subtasks[i].CreatedAt.Equal(subtasks[j].CreatedAt) {
			return subtasks[i].CreatedAt.Before(subtasks[j].CreatedAt)
		}
		return subtasks[i].ID < subtasks[j].ID
	})
	return subtasks, nil
}

func (m *MemoryStore) UpdateSubtask(_ context.Context, id string, upd SubtaskUpdate) (*models.Subtask, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subtask, ok := m.subtasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Title != nil {
		subtask.Title = *upd.Title
	}
	if upd.Completed != nil {
		subtask.Completed = *upd.Completed
	}
	if upd.Order != nil {
		subtask.Order = *upd.Order
	}
	subtask.UpdatedAt = time.Now()
	return cloneSubtask(subtask), nil
}

func (m *MemoryStore) DeleteSubtask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.subtasks[id]; !ok {
		return ErrNotFound
	}
	delete(m.subtasks, id)
	return nil
}

func (m *MemoryStore) MaxSubtaskOrder(_ context.Context, taskID string) (int, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	max, found := 0, false
	for _, subtask := range m.subtasks {
		if subtask.TaskID != taskID {
			continue
		}
		if !found || subtask.Order > max {
			max, found = subtask.Order, true
		}
	}
	return max, found, nil
}

func (m *MemoryStore) CreateComment(_ context.Context, comment *models.Comment) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[comment.TaskID]; !ok {
		return nil, ErrNotFound
	}
	now := time.Now()
	created := cloneComment(comment)
	created.ID = memoryID()
	created.CreatedAt = now
	created.UpdatedAt = now
	m.comments[created.ID] = created
	return cloneComment(created), nil
}

func (m *MemoryStore) FindCommentByID(_ context.Context, id string) (*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	comment, ok := m.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneComment(comment), nil
}

func (m *MemoryStore) ListComments(_ context.Context, taskID string) ([]*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var comments []*models.Comment
	for _, comment := range m.comments {
		if comment.TaskID == taskID {
			comments = append(comments, cloneComment(comment))
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		if !comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].CreatedAt.Before(comments[j].CreatedAt)
		}
		return comments[i].ID < comments[j].ID
	})
	return comments, nil
}

func (m *MemoryStore) UpdateComment(_ context.Context, id string, content string) (*models.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	comment, ok := m.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	comment.Content = content
	comment.UpdatedAt = time.Now()
	return cloneComment(comment), nil
}

func (m *MemoryStore) DeleteComment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.comments[id]; !ok {
		return ErrNotFound
	}
	delete(m.comments, id)
	return nil
}

func (m *MemoryStore) AddTaskLabel(_ context.Context, taskID, labelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[taskID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.labels[labelID]; !ok {
		return ErrNotFound
	}
	for _, row := range m.taskLabels {
		if row.TaskID == taskID && row.LabelID == labelID {
			return nil
		}
	}
	m.taskLabels = append(m.taskLabels, models.TaskLabel{TaskID: taskID, LabelID: labelID})
	return nil
}

func (m *MemoryStore) ReplaceTaskLabels(ctx context.Context, taskID string, labelIDs []string) error {
	m.mu.Lock()
	m.removeTaskRows(taskID)
	m.mu.Unlock()

	for _, labelID := range labelIDs {
		if err := m.AddTaskLabel(ctx, taskID, labelID); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStore) ListTaskLabels(_ context.Context, taskID string) ([]*models.Label, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var labels []*models.Label
	for _, row := range m.taskLabels {
		if row.TaskID != taskID {
			continue
		}
		if label, ok := m.labels[row.LabelID]; ok {
			labels = append(labels, cloneLabel(label))
		}
	}
	sort.Slice(labels, func(i, j int) bool {
		if labels[i].Name != labels[j].Name {
			return labels[i].Name < labels[j].Name
		}
		return labels[i].ID < labels[j].ID
	})
	return labels, nil
}
