package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow-app/taskflow/internal/models"
	"github.com/taskflow-app/taskflow/internal/store"
)

const exportVersion = "1.0"

const (
	dateFormat      = "2006-01-02"
	dateTimeFormat  = "2006-01-02 15:04:05"
	shortDateFormat = "Jan 2"
)

type exportServiceImpl struct {
	logger zerolog.Logger
	store  store.Store
}

func NewExportService(logger zerolog.Logger, st store.Store) ExportService {
	return &exportServiceImpl{
		logger: logger,
		store:  st,
	}
}

// exportTask is a task flattened for serialization: label names are
// resolved and joined, subtasks reduced to title/completed pairs.
type exportTask struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Completed   bool            `json:"completed"`
	Priority    string          `json:"priority"`
	DueDate     string          `json:"dueDate"`
	CreatedAt   string          `json:"createdAt"`
	UpdatedAt   string          `json:"updatedAt"`
	ProjectID   string          `json:"projectId"`
	ProjectName string          `json:"projectName"`
	Labels      string          `json:"labels"`
	Subtasks    []exportSubtask `json:"subtasks"`

	createdAt time.Time
	dueDate   *time.Time
}

type exportSubtask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type exportProject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	IsFavorite  bool   `json:"isFavorite"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type exportLabel struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	ProjectID string `json:"projectId"`
}

type exportFile struct {
	ExportDate string          `json:"exportDate"`
	Version    string          `json:"version"`
	Projects   []exportProject `json:"projects"`
	Labels     []exportLabel   `json:"labels"`
	Tasks      []exportTask    `json:"tasks"`
}

func (s *exportServiceImpl) Export(ctx context.Context, params ExportParams) (*ExportResult, error) {
	switch params.Format {
	case FormatJSON, FormatCSV, FormatMarkdown:
	default:
		return nil, ErrInvalidExportFormat
	}

	// The project and label catalogs are exported unfiltered; only
	// the task set honors the filters.
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	labels, err := s.store.ListLabels(ctx)
	if err != nil {
		return nil, err
	}

	filter := store.TaskFilter{
		ProjectID:   params.ProjectID,
		CreatedFrom: params.StartDate,
		CreatedTo:   params.EndDate,
	}
	if params.CompletedOnly {
		completed := true
		filter.Completed = &completed
	}
	tasks, err := s.store.ListTasks(ctx, filter)
	if err != nil {
		return nil, err
	}

	projectNames := make(map[string]string, len(projects))
	for _, project := range projects {
		projectNames[project.ID] = project.Name
	}

	exportTasks := make([]exportTask, 0, len(tasks))
	for _, task := range tasks {
		view, err := s.buildTaskView(ctx, task, projectNames)
		if err != nil {
			return nil, err
		}
		exportTasks = append(exportTasks, view)
	}

	now := time.Now()
	datePart := now.Format(dateFormat)

	var result *ExportResult
	switch params.Format {
	case FormatJSON:
		result, err = buildJSONExport(now, projects, labels, exportTasks)
	case FormatCSV:
		result = buildCSVExport(exportTasks, datePart)
	case FormatMarkdown:
		result = buildMarkdownExport(now, exportTasks)
	}
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("format", params.Format).
			Msg("failed to build export")
		return nil, err
	}

	s.logger.Info().
		Str("format", params.Format).
		Int("tasks", len(exportTasks)).
		Str("filename", result.Filename).
		Msg("built export")

	return result, nil
}

func (s *exportServiceImpl) buildTaskView(ctx context.Context, task *models.Task, projectNames map[string]string) (exportTask, error) {
	taskLabels, err := s.store.ListTaskLabels(ctx, task.ID)
	if err != nil {
		return exportTask{}, err
	}
	labelNames := make([]string, 0, len(taskLabels))
	for _, label := range taskLabels {
		labelNames = append(labelNames, label.Name)
	}

	subtasks, err := s.store.ListSubtasks(ctx, task.ID)
	if err != nil {
		return exportTask{}, err
	}
	exportSubtasks := make([]exportSubtask, 0, len(subtasks))
	for _, subtask := range subtasks {
		exportSubtasks = append(exportSubtasks, exportSubtask{
			Title:     subtask.Title,
			Completed: subtask.Completed,
		})
	}

	view := exportTask{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Priority:    task.Priority,
		CreatedAt:   task.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   task.UpdatedAt.Format(time.RFC3339),
		Labels:      strings.Join(labelNames, ", "),
		Subtasks:    exportSubtasks,

		createdAt: task.CreatedAt,
		dueDate:   task.DueDate,
	}
	if task.DueDate != nil {
		view.DueDate = task.DueDate.Format(time.RFC3339)
	}
	if task.ProjectID != nil {
		view.ProjectID = *task.ProjectID
		view.ProjectName = projectNames[*task.ProjectID]
	}
	return view, nil
}

func buildJSONExport(now time.Time, projects []*models.Project, labels []*models.Label, tasks []exportTask) (*ExportResult, error) {
	file := exportFile{
		ExportDate: now.Format(time.RFC3339),
		Version:    exportVersion,
		Projects:   make([]exportProject, 0, len(projects)),
		Labels:     make([]exportLabel, 0, len(labels)),
		Tasks:      tasks,
	}
	for _, project := range projects {
		file.Projects = append(file.Projects, exportProject{
			ID:          project.ID,
			Name:        project.Name,
			Description: project.Description,
			Color:       project.Color,
			Icon:        project.Icon,
			IsFavorite:  project.IsFavorite,
			CreatedAt:   project.CreatedAt.Format(time.RFC3339),
			UpdatedAt:   project.UpdatedAt.Format(time.RFC3339),
		})
	}
	for _, label := range labels {
		view := exportLabel{
			ID:    label.ID,
			Name:  label.Name,
			Color: label.Color,
		}
		if label.ProjectID != nil {
			view.ProjectID = *label.ProjectID
		}
		file.Labels = append(file.Labels, view)
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		Filename:    fmt.Sprintf("taskflow-export-%s.json", now.Format(dateFormat)),
		ContentType: "application/json",
		Data:        data,
	}, nil
}

func buildCSVExport(tasks []exportTask, datePart string) *ExportResult {
	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, "Title,Description,Priority,Due Date,Status,Project,Labels,Created Date")

	for _, task := range tasks {
		status := "Incomplete"
		if task.Completed {
			status = "Completed"
		}
		dueDate := ""
		if task.dueDate != nil {
			dueDate = task.dueDate.Format(dateFormat)
		}
		lines = append(lines, strings.Join([]string{
			escapeCSVField(task.Title),
			escapeCSVField(task.Description),
			task.Priority,
			dueDate,
			status,
			escapeCSVField(task.ProjectName),
			escapeCSVField(task.Labels),
			task.createdAt.Format(dateFormat),
		}, ","))
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("taskflow-tasks-%s.csv", datePart),
		ContentType: "text/csv",
		Data:        []byte(strings.Join(lines, "\n")),
	}
}

// escapeCSVField wraps a field in double quotes when it contains a
// comma, quote or newline, doubling any inner quotes.
func escapeCSVField(field string) string {
	if strings.ContainsAny(field, ",\"\n") {
		return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return field
}

func buildMarkdownExport(now time.Time, tasks []exportTask) *ExportResult {
	var b strings.Builder
	b.WriteString("# TaskFlow Export\n\n")
	fmt.Fprintf(&b, "Export Date: %s\n\n", now.Format(dateTimeFormat))

	var inbox []exportTask
	var projectOrder []string
	byProject := make(map[string][]exportTask)
	for _, task := range tasks {
		if task.ProjectID == "" {
			inbox = append(inbox, task)
			continue
		}
		name := task.ProjectName
		if name == "" {
			name = "Unknown"
		}
		if _, seen := byProject[name]; !seen {
			projectOrder = append(projectOrder, name)
		}
		byProject[name] = append(byProject[name], task)
	}

	if len(inbox) > 0 {
		b.WriteString("## Inbox\n\n")
		b.WriteString(tasksToMarkdown(inbox))
		b.WriteString("\n\n")
	}
	for _, name := range projectOrder {
		fmt.Fprintf(&b, "## %s\n\n", name)
		b.WriteString(tasksToMarkdown(byProject[name]))
		b.WriteString("\n\n")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("taskflow-export-%s.md", now.Format(dateFormat)),
		ContentType: "text/markdown",
		Data:        []byte(b.String()),
	}
}

func tasksToMarkdown(tasks []exportTask) string {
	lines := make([]string, 0, len(tasks))
	for _, task := range tasks {
		var b strings.Builder
		if task.Completed {
			b.WriteString("- [x]")
		} else {
			b.WriteString("- [ ]")
		}
		if task.Priority != models.PriorityNone {
			fmt.Fprintf(&b, " [%s]", task.Priority[:1])
		}
		b.WriteString(" ")
		b.WriteString(task.Title)
		if task.dueDate != nil {
			fmt.Fprintf(&b, " 📅 %s", task.dueDate.Format(shortDateFormat))
		}
		if task.Labels != "" {
			fmt.Fprintf(&b, " 🏷️ %s", task.Labels)
		}
		for _, subtask := range task.Subtasks {
			checkbox := "[ ]"
			if subtask.Completed {
				checkbox = "[x]"
			}
			fmt.Fprintf(&b, "\n  - %s %s", checkbox, subtask.Title)
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}
