package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow-app/taskflow/internal/models"
	"github.com/taskflow-app/taskflow/internal/store"
)

const largeDatasetThreshold = 1000

type importServiceImpl struct {
	logger zerolog.Logger
	store  store.Store
	orders OrderService
}

func NewImportService(logger zerolog.Logger, st store.Store, orders OrderService) ImportService {
	return &importServiceImpl{
		logger: logger,
		store:  st,
		orders: orders,
	}
}

// importedFile mirrors the JSON export layout. Projects and labels
// stay raw so a malformed section degrades to "no entities of that
// kind" instead of failing the whole import; only a broken tasks
// array is fatal.
type importedFile struct {
	Version  string          `json:"version"`
	Projects json.RawMessage `json:"projects"`
	Labels   json.RawMessage `json:"labels"`
	Tasks    json.RawMessage `json:"tasks"`
}

type importedProject struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	IsFavorite  bool   `json:"isFavorite"`
}

type importedLabel struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	ProjectID string `json:"projectId"`
}

type importedSubtask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type importedTask struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Completed   bool              `json:"completed"`
	Priority    string            `json:"priority"`
	DueDate     string            `json:"dueDate"`
	ProjectID   string            `json:"projectId"`
	Labels      labelNameList     `json:"labels"`
	Subtasks    []importedSubtask `json:"subtasks"`
}

// labelNameList accepts either a comma-separated string or a list of
// names, both of which appear in the wild.
type labelNameList []string

func (l *labelNameList) UnmarshalJSON(data []byte) error {
	var asList []string
	if err := json.Unmarshal(data, &asList); err == nil {
		*l = asList
		return nil
	}

	var asString string
	if err := json.Unmarshal(data, &asString); err != nil {
		return err
	}
	*l = nil
	for _, name := range strings.Split(asString, ",") {
		if name = strings.TrimSpace(name); name != "" {
			*l = append(*l, name)
		}
	}
	return nil
}

// isJSONArray reports whether the raw message is present and holds a
// JSON array. A missing key, an explicit null and any non-list value
// all fail the check, since none of them carries importable tasks.
func isJSONArray(raw json.RawMessage) bool {
	for _, b := range raw {
		switch b {
		case ' ', '\t', '\r', '\n':
			continue
		default:
			return b == '['
		}
	}
	return false
}

func normalizePolicy(logger zerolog.Logger, policy string) string {
	switch policy {
	case PolicyOverwrite:
		return PolicyOverwrite
	case PolicyMerge:
		logger.Info().Msg("merge policy has no distinct semantics, treating as skip")
		return PolicySkip
	default:
		return PolicySkip
	}
}

func (s *importServiceImpl) Import(ctx context.Context, filename string, data []byte, policy string) (*ImportSummary, error) {
	policy = normalizePolicy(s.logger, policy)

	var summary *ImportSummary
	var err error
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".json"):
		summary, err = s.importJSON(ctx, data, policy)
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		summary, err = s.importCSV(ctx, data, policy)
	default:
		return nil, ErrUnsupportedFile
	}
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("filename", filename).
			Msg("import failed")
		return nil, err
	}

	s.logger.Info().
		Str("filename", filename).
		Str("policy", policy).
		Int("imported", summary.Imported).
		Int("skipped", summary.Skipped).
		Int("errors", len(summary.Errors)).
		Msg("finished import")

	return summary, nil
}

func (s *importServiceImpl) importJSON(ctx context.Context, data []byte, policy string) (*ImportSummary, error) {
	var file importedFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON: %v", ErrInvalidPayload, err)
	}

	var tasks []importedTask
	if !isJSONArray(file.Tasks) || json.Unmarshal(file.Tasks, &tasks) != nil {
		return nil, fmt.Errorf("%w: missing or invalid tasks array", ErrInvalidPayload)
	}

	summary := &ImportSummary{Errors: []string{}}

	// Old ids from the file are remapped to store ids so tasks can
	// attach to their (possibly pre-existing) projects.
	var projects []importedProject
	if len(file.Projects) > 0 {
		// A malformed projects section degrades to none.
		_ = json.Unmarshal(file.Projects, &projects)
	}
	projectMap := make(map[string]string, len(projects))
	for _, project := range projects {
		if err := s.importProject(ctx, project, policy, projectMap, summary); err != nil {
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("Failed to import project %q: %v", project.Name, err))
		}
	}

	var labels []importedLabel
	if len(file.Labels) > 0 {
		_ = json.Unmarshal(file.Labels, &labels)
	}
	labelMap := make(map[string]string, len(labels))
	for _, label := range labels {
		if err := s.importLabel(ctx, label, policy, projectMap, labelMap, summary); err != nil {
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("Failed to import label %q: %v", label.Name, err))
		}
	}

	for _, task := range tasks {
		if err := s.importTask(ctx, task, policy, projectMap, summary); err != nil {
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("Failed to import task %q: %v", task.Title, err))
		}
	}

	return summary, nil
}

func (s *importServiceImpl) importProject(
	ctx context.Context,
	project importedProject,
	policy string,
	projectMap map[string]string,
	summary *ImportSummary,
) error {
	existing, err := s.store.FindProjectByName(ctx, project.Name)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if existing != nil {
		projectMap[project.ID] = existing.ID
		if policy == PolicyOverwrite {
			_, err = s.store.UpdateProject(ctx, existing.ID, store.ProjectUpdate{
				Name:        &project.Name,
				Description: &project.Description,
				Color:       &project.Color,
				Icon:        &project.Icon,
				IsFavorite:  &project.IsFavorite,
			})
			if err != nil {
				return err
			}
		}
		// Overwriting counts as skipped too: no new entity exists.
		summary.Skipped++
		return nil
	}

	created, err := s.store.CreateProject(ctx, &models.Project{
		Name:        project.Name,
		Description: project.Description,
		Color:       project.Color,
		Icon:        project.Icon,
		IsFavorite:  project.IsFavorite,
	})
	if err != nil {
		return err
	}
	projectMap[project.ID] = created.ID
	summary.Imported++
	return nil
}

func (s *importServiceImpl) importLabel(
	ctx context.Context,
	label importedLabel,
	policy string,
	projectMap map[string]string,
	labelMap map[string]string,
	summary *ImportSummary,
) error {
	// An unmapped project reference degrades to a global label.
	var projectID *string
	if label.ProjectID != "" {
		if mapped, ok := projectMap[label.ProjectID]; ok {
			projectID = &mapped
		}
	}

	existing, err := s.store.FindLabelByName(ctx, label.Name)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if existing != nil {
		labelMap[label.ID] = existing.ID
		if policy == PolicyOverwrite {
			_, err = s.store.UpdateLabel(ctx, existing.ID, store.LabelUpdate{
				Name:         &label.Name,
				Color:        &label.Color,
				ProjectID:    projectID,
				SetProjectID: true,
			})
			if err != nil {
				return err
			}
		}
		summary.Skipped++
		return nil
	}

	created, err := s.store.CreateLabel(ctx, &models.Label{
		Name:      label.Name,
		Color:     label.Color,
		ProjectID: projectID,
	})
	if err != nil {
		return err
	}
	labelMap[label.ID] = created.ID
	summary.Imported++
	return nil
}

func (s *importServiceImpl) importTask(
	ctx context.Context,
	task importedTask,
	policy string,
	projectMap map[string]string,
	summary *ImportSummary,
) error {
	existing, err := s.store.FindTaskByTitle(ctx, task.Title)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}

	if existing != nil && policy == PolicySkip {
		// Subtasks from the input are not imported on this branch.
		summary.Skipped++
		return nil
	}

	var projectID *string
	if task.ProjectID != "" {
		if mapped, ok := projectMap[task.ProjectID]; ok {
			projectID = &mapped
		}
	}

	// Unmatched label names are dropped, not created.
	var labelIDs []string
	for _, name := range task.Labels {
		label, err := s.store.FindLabelByName(ctx, name)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return err
		}
		labelIDs = append(labelIDs, label.ID)
	}

	order, err := s.orders.NextTaskOrder(ctx, projectID)
	if err != nil {
		return err
	}

	created, err := s.store.CreateTask(ctx, &models.Task{
		Title:       task.Title,
		Description: task.Description,
		Completed:   task.Completed,
		Priority:    models.NormalizePriority(task.Priority),
		DueDate:     parseImportedDate(task.DueDate),
		Order:       order,
		ProjectID:   projectID,
	})
	if err != nil {
		return err
	}

	for _, labelID := range labelIDs {
		if err := s.store.AddTaskLabel(ctx, created.ID, labelID); err != nil {
			return err
		}
	}

	for _, subtask := range task.Subtasks {
		subtaskOrder, err := s.orders.NextSubtaskOrder(ctx, created.ID)
		if err != nil {
			return err
		}
		_, err = s.store.CreateSubtask(ctx, &models.Subtask{
			Title:     subtask.Title,
			Completed: subtask.Completed,
			Order:     subtaskOrder,
			TaskID:    created.ID,
		})
		if err != nil {
			return err
		}
	}

	if existing != nil && policy == PolicyOverwrite {
		// The fresh copy replaces the matched one; net effect is one
		// task, counted as skipped since no extra entity survives.
		if err := s.store.DeleteTask(ctx, existing.ID); err != nil {
			return err
		}
		summary.Skipped++
		return nil
	}
	summary.Imported++
	return nil
}

func (s *importServiceImpl) importCSV(ctx context.Context, data []byte, policy string) (*ImportSummary, error) {
	summary := &ImportSummary{Errors: []string{}}

	records, err := readCSV(data)
	if err != nil {
		summary.Errors = append(summary.Errors, fmt.Sprintf("Invalid CSV: %v", err))
		return summary, nil
	}
	if len(records) < 2 {
		return summary, nil
	}

	columns := columnIndex(records[0])
	for i, record := range records[1:] {
		row := csvRow{columns: columns, record: record}
		if err := s.importCSVRow(ctx, row, policy, summary); err != nil {
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("Failed to import row %d: %v", i+1, err))
		}
	}

	return summary, nil
}

func (s *importServiceImpl) importCSVRow(ctx context.Context, row csvRow, policy string, summary *ImportSummary) error {
	title := row.get("title")
	if title == "" {
		// Blank titles are silently skipped, not erred.
		return nil
	}

	existing, err := s.store.FindTaskByTitle(ctx, title)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return err
	}
	if existing != nil && policy == PolicySkip {
		summary.Skipped++
		return nil
	}

	var projectID *string
	if projectName := row.get("project"); projectName != "" {
		project, err := s.findOrCreateProject(ctx, projectName)
		if err != nil {
			return err
		}
		projectID = &project.ID
	}

	var labelIDs []string
	for _, name := range strings.Split(row.get("labels"), ",") {
		if name = strings.TrimSpace(name); name == "" {
			continue
		}
		label, err := s.findOrCreateLabel(ctx, name)
		if err != nil {
			return err
		}
		labelIDs = append(labelIDs, label.ID)
	}

	status := strings.ToLower(row.get("status"))
	order, err := s.orders.NextTaskOrder(ctx, projectID)
	if err != nil {
		return err
	}

	created, err := s.store.CreateTask(ctx, &models.Task{
		Title:       title,
		Description: row.get("description"),
		Completed:   status == "completed" || status == "done",
		Priority:    models.PriorityFromFreeText(row.get("priority")),
		DueDate:     parseImportedDate(row.get("due date", "duedate", "due_date")),
		Order:       order,
		ProjectID:   projectID,
	})
	if err != nil {
		return err
	}

	for _, labelID := range labelIDs {
		if err := s.store.AddTaskLabel(ctx, created.ID, labelID); err != nil {
			return err
		}
	}

	if existing != nil && policy == PolicyOverwrite {
		if err := s.store.DeleteTask(ctx, existing.ID); err != nil {
			return err
		}
		summary.Skipped++
		return nil
	}
	summary.Imported++
	return nil
}

func (s *importServiceImpl) findOrCreateProject(ctx context.Context, name string) (*models.Project, error) {
	project, err := s.store.FindProjectByName(ctx, name)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return s.store.CreateProject(ctx, &models.Project{
		Name:  name,
		Color: models.DefaultProjectColor,
	})
}

func (s *importServiceImpl) findOrCreateLabel(ctx context.Context, name string) (*models.Label, error) {
	label, err := s.store.FindLabelByName(ctx, name)
	if err == nil {
		return label, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return s.store.CreateLabel(ctx, &models.Label{
		Name:  name,
		Color: models.DefaultLabelColor,
	})
}

func parseImportedDate(value string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, dateFormat} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func readCSV(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

// columnIndex maps lowercased header names to positions, so "Title"
// and "title" resolve the same way.
func columnIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}

type csvRow struct {
	columns map[string]int
	record  []string
}

// get returns the first non-empty cell among the named columns.
func (r csvRow) get(names ...string) string {
	for _, name := range names {
		idx, ok := r.columns[name]
		if !ok || idx >= len(r.record) {
			continue
		}
		if value := strings.TrimSpace(r.record[idx]); value != "" {
			return value
		}
	}
	return ""
}

func (s *importServiceImpl) Validate(_ context.Context, filename string, data []byte) (*ValidationReport, error) {
	var report *ValidationReport
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".json"):
		report = validateJSON(data)
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		report = validateCSV(data)
	default:
		report = &ValidationReport{
			Valid:    false,
			Format:   "unknown",
			Errors:   []string{"Unsupported file format. Use JSON or CSV."},
			Warnings: []string{},
		}
	}

	s.logger.Debug().
		Str("filename", filename).
		Str("format", report.Format).
		Bool("valid", report.Valid).
		Int("records", report.RecordCount).
		Msg("validated import file")

	return report, nil
}

type validatedTask struct {
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Priority  string `json:"priority"`
	DueDate   string `json:"dueDate"`
}

type validatedNamed struct {
	Name string `json:"name"`
}

func validateJSON(data []byte) *ValidationReport {
	report := &ValidationReport{
		Format:   FormatJSON,
		Errors:   []string{},
		Warnings: []string{},
	}

	var file struct {
		Version  string           `json:"version"`
		Projects []validatedNamed `json:"projects"`
		Labels   []validatedNamed `json:"labels"`
		Tasks    json.RawMessage  `json:"tasks"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return report
	}

	var tasks []validatedTask
	if !isJSONArray(file.Tasks) || json.Unmarshal(file.Tasks, &tasks) != nil {
		report.Errors = append(report.Errors, "Invalid JSON: missing or invalid tasks array")
		return report
	}
	report.RecordCount = len(tasks)

	for i, task := range tasks {
		if task.Title == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("Task at index %d is missing a title", i))
		}
		if i < 5 {
			title := task.Title
			if title == "" {
				title = "(no title)"
			}
			priority := task.Priority
			if priority == "" {
				priority = models.PriorityNone
			}
			report.Preview = append(report.Preview, map[string]any{
				"title":     title,
				"completed": task.Completed,
				"priority":  priority,
				"dueDate":   task.DueDate,
			})
		}
	}

	for i, project := range file.Projects {
		if project.Name == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("Project at index %d is missing a name", i))
		}
	}
	for i, label := range file.Labels {
		if label.Name == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("Label at index %d is missing a name", i))
		}
	}

	if len(tasks) > largeDatasetThreshold {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Large dataset: %d tasks may take some time to import", len(tasks)))
	}
	if file.Version == "" {
		report.Warnings = append(report.Warnings, "Export version not specified")
	}

	report.Valid = len(report.Errors) == 0
	return report
}

func validateCSV(data []byte) *ValidationReport {
	report := &ValidationReport{
		Format:   FormatCSV,
		Errors:   []string{},
		Warnings: []string{},
	}

	records, err := readCSV(data)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Invalid CSV: %v", err))
		return report
	}
	if len(records) == 0 {
		report.Errors = append(report.Errors, `CSV missing required "Title" column`)
		return report
	}

	columns := columnIndex(records[0])
	if _, ok := columns["title"]; !ok {
		report.Errors = append(report.Errors, `CSV missing required "Title" column`)
	}

	rows := records[1:]
	report.RecordCount = len(rows)
	for i, record := range rows {
		row := csvRow{columns: columns, record: record}
		title := row.get("title")
		if title == "" {
			report.Errors = append(report.Errors, fmt.Sprintf("Row %d is missing a Title column", i+1))
		}
		if i < 5 {
			previewTitle := title
			if previewTitle == "" {
				previewTitle = "(no title)"
			}
			priority := row.get("priority")
			if priority == "" {
				priority = models.PriorityNone
			}
			report.Preview = append(report.Preview, map[string]any{
				"title":    previewTitle,
				"priority": priority,
				"status":   row.get("status"),
				"dueDate":  row.get("due date", "duedate", "due_date"),
			})
		}
	}

	if len(rows) > largeDatasetThreshold {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Large dataset: %d rows may take some time to import", len(rows)))
	}
	if _, ok := columns["project"]; !ok {
		report.Warnings = append(report.Warnings,
			`No "Project" column found. All tasks will be imported to inbox.`)
	}

	report.Valid = len(report.Errors) == 0
	return report
}
