package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/taskflow-app/taskflow/internal/services"
	"github.com/taskflow-app/taskflow/internal/store"
)

func newTestServer() *gin.Engine {
	gin.SetMode(gin.TestMode)

	st := store.NewMemory()
	logger := zerolog.Nop()
	orderService := services.NewOrderService(logger, st)
	exportService := services.NewExportService(logger, st)
	importService := services.NewImportService(logger, st, orderService)
	handler := New(logger, st, exportService, importService, orderService)

	router := gin.New()
	api := router.Group("/api/v1")

	tasks := api.Group("/tasks")
	tasks.GET("", handler.HandleListTasks)
	tasks.POST("", handler.HandleCreateTask)
	tasks.PUT("/reorder", handler.HandleReorderTasks)
	tasks.GET("/:id", handler.HandleGetTask)
	tasks.PATCH("/:id", handler.HandlePatchTask)
	tasks.DELETE("/:id", handler.HandleDeleteTask)
	tasks.GET("/:id/subtasks", handler.HandleListSubtasks)
	tasks.POST("/:id/subtasks", handler.HandleCreateSubtask)
	tasks.PUT("/:id/subtasks/reorder", handler.HandleReorderSubtasks)
	tasks.GET("/:id/comments", handler.HandleListComments)
	tasks.POST("/:id/comments", handler.HandleCreateComment)

	subtasks := api.Group("/subtasks")
	subtasks.GET("/:id", handler.HandleGetSubtask)
	subtasks.PATCH("/:id", handler.HandlePatchSubtask)
	subtasks.DELETE("/:id", handler.HandleDeleteSubtask)
	subtasks.POST("/:id/toggle", handler.HandleToggleSubtask)

	projects := api.Group("/projects")
	projects.GET("", handler.HandleListProjects)
	projects.POST("", handler.HandleCreateProject)
	projects.GET("/:id", handler.HandleGetProject)
	projects.PATCH("/:id", handler.HandlePatchProject)
	projects.DELETE("/:id", handler.HandleDeleteProject)

	labels := api.Group("/labels")
	labels.GET("", handler.HandleListLabels)
	labels.POST("", handler.HandleCreateLabel)
	labels.PATCH("/:id", handler.HandlePatchLabel)
	labels.DELETE("/:id", handler.HandleDeleteLabel)

	comments := api.Group("/comments")
	comments.PATCH("/:id", handler.HandlePatchComment)
	comments.DELETE("/:id", handler.HandleDeleteComment)

	api.GET("/export", handler.HandleExport)
	api.POST("/import", handler.HandleImport)
	api.POST("/import/validate", handler.HandleValidateImport)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doRaw(t *testing.T, router *gin.Engine, method, path, contentType string, body []byte) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type errorResponse struct {
	Error string `json:"error"`
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateTaskAssignsNextOrder(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"title": "first"})
	require.Equal(t, http.StatusCreated, w.Code)
	first := decodeBody[taskResponse](t, w)
	require.Equal(t, 0, first.Order)
	require.Nil(t, first.ProjectID)
	require.NotNil(t, first.Labels)

	w = doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"title": "second"})
	require.Equal(t, http.StatusCreated, w.Code)
	second := decodeBody[taskResponse](t, w)
	require.Equal(t, 1, second.Order)
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"description": "no title"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTaskUnknownProject(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{
		"title":     "orphan",
		"projectId": "ghost",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody[errorResponse](t, w)
	require.Equal(t, "Project not found", resp.Error)
}

func TestCreateTaskAttachesLabels(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPost, "/api/v1/labels", gin.H{"name": "urgent"})
	require.Equal(t, http.StatusCreated, w.Code)
	label := decodeBody[labelResponse](t, w)

	w = doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{
		"title":    "call client",
		"labelIds": []string{label.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	task := decodeBody[taskResponse](t, w)
	require.Len(t, task.Labels, 1)
	require.Equal(t, "urgent", task.Labels[0].Name)
}

func TestListTasksFiltersByProject(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPost, "/api/v1/projects", gin.H{"name": "Work"})
	require.Equal(t, http.StatusCreated, w.Code)
	project := decodeBody[projectResponse](t, w)

	doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"title": "in project", "projectId": project.ID})
	doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"title": "in inbox"})

	w = doJSON(t, router, http.MethodGet, "/api/v1/tasks?projectId="+project.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := decodeBody[[]taskResponse](t, w)
	require.Len(t, tasks, 1)
	require.Equal(t, "in project", tasks[0].Title)
}

func TestPatchTaskExplicitNulls(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPost, "/api/v1/projects", gin.H{"name": "Work"})
	project := decodeBody[projectResponse](t, w)

	w = doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{
		"title":     "call client",
		"projectId": project.ID,
		"dueDate":   "2026-03-15T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	task := decodeBody[taskResponse](t, w)
	require.NotNil(t, task.ProjectID)
	require.NotNil(t, task.DueDate)

	// Omitting both fields leaves them untouched.
	w = doRaw(t, router, http.MethodPatch, "/api/v1/tasks/"+task.ID, "application/json",
		[]byte(`{"title": "call the client"}`))
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeBody[taskResponse](t, w)
	require.Equal(t, "call the client", updated.Title)
	require.NotNil(t, updated.ProjectID)
	require.NotNil(t, updated.DueDate)

	// Explicit nulls move to inbox and clear the due date.
	w = doRaw(t, router, http.MethodPatch, "/api/v1/tasks/"+task.ID, "application/json",
		[]byte(`{"projectId": null, "dueDate": null}`))
	require.Equal(t, http.StatusOK, w.Code)
	updated = decodeBody[taskResponse](t, w)
	require.Nil(t, updated.ProjectID)
	require.Nil(t, updated.DueDate)
}

func TestPatchTaskNotFound(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPatch, "/api/v1/tasks/ghost", gin.H{"title": "x"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestReorderTasksEndpoint(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"title": "a"})
	a := decodeBody[taskResponse](t, w)
	w = doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"title": "b"})
	b := decodeBody[taskResponse](t, w)

	w = doJSON(t, router, http.MethodPut, "/api/v1/tasks/reorder", gin.H{
		"taskIds": []string{b.ID, a.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/tasks", nil)
	tasks := decodeBody[[]taskResponse](t, w)
	require.Equal(t, "b", tasks[0].Title)
	require.Equal(t, "a", tasks[1].Title)

	w = doJSON(t, router, http.MethodPut, "/api/v1/tasks/reorder", gin.H{"taskIds": []string{}})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteProjectCascades(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPost, "/api/v1/projects", gin.H{"name": "Work"})
	project := decodeBody[projectResponse](t, w)
	doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"title": "doomed", "projectId": project.ID})

	w = doJSON(t, router, http.MethodDelete, "/api/v1/projects/"+project.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/tasks", nil)
	tasks := decodeBody[[]taskResponse](t, w)
	require.Empty(t, tasks)
}

func TestProjectTaskCount(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPost, "/api/v1/projects", gin.H{"name": "Work"})
	project := decodeBody[projectResponse](t, w)
	require.Equal(t, 0, project.TaskCount)

	doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"title": "one", "projectId": project.ID})
	doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"title": "two", "projectId": project.ID})

	w = doJSON(t, router, http.MethodGet, "/api/v1/projects/"+project.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	project = decodeBody[projectResponse](t, w)
	require.Equal(t, 2, project.TaskCount)
}

func TestCreateLabelUnknownProject(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPost, "/api/v1/labels", gin.H{
		"name":      "office",
		"projectId": "ghost",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody[errorResponse](t, w)
	require.Equal(t, "Project not found", resp.Error)
}

func TestSubtaskLifecycle(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"title": "clean house"})
	task := decodeBody[taskResponse](t, w)

	w = doJSON(t, router, http.MethodPost, "/api/v1/tasks/"+task.ID+"/subtasks", gin.H{"title": "kitchen"})
	require.Equal(t, http.StatusCreated, w.Code)
	first := decodeBody[subtaskResponse](t, w)
	require.Equal(t, 0, first.Order)

	w = doJSON(t, router, http.MethodPost, "/api/v1/tasks/"+task.ID+"/subtasks", gin.H{"title": "bathroom"})
	second := decodeBody[subtaskResponse](t, w)
	require.Equal(t, 1, second.Order)

	w = doJSON(t, router, http.MethodPost, "/api/v1/subtasks/"+first.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	toggled := decodeBody[subtaskResponse](t, w)
	require.True(t, toggled.Completed)

	w = doJSON(t, router, http.MethodPut, "/api/v1/tasks/"+task.ID+"/subtasks/reorder", gin.H{
		"subtaskIds": []string{second.ID, first.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/tasks/"+task.ID+"/subtasks", nil)
	subtasks := decodeBody[[]subtaskResponse](t, w)
	require.Len(t, subtasks, 2)
	require.Equal(t, "bathroom", subtasks[0].Title)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/subtasks/"+first.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodGet, "/api/v1/subtasks/"+first.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestSubtaskUnknownTask(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPost, "/api/v1/tasks/ghost/subtasks", gin.H{"title": "orphan"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentLifecycle(t *testing.T) {
	router := newTestServer()

	w := doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"title": "plan trip"})
	task := decodeBody[taskResponse](t, w)

	w = doJSON(t, router, http.MethodPost, "/api/v1/tasks/"+task.ID+"/comments", gin.H{"content": "check prices"})
	require.Equal(t, http.StatusCreated, w.Code)
	comment := decodeBody[commentResponse](t, w)

	w = doJSON(t, router, http.MethodPatch, "/api/v1/comments/"+comment.ID, gin.H{"content": "prices checked"})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeBody[commentResponse](t, w)
	require.Equal(t, "prices checked", updated.Content)

	w = doJSON(t, router, http.MethodGet, "/api/v1/tasks/"+task.ID+"/comments", nil)
	comments := decodeBody[[]commentResponse](t, w)
	require.Len(t, comments, 1)

	w = doJSON(t, router, http.MethodDelete, "/api/v1/comments/"+comment.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/tasks/"+task.ID+"/comments", nil)
	comments = decodeBody[[]commentResponse](t, w)
	require.Empty(t, comments)
}

func TestExportEndpoint(t *testing.T) {
	router := newTestServer()
	doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"title": "write report"})

	w := doJSON(t, router, http.MethodGet, "/api/v1/export?format=markdown", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/markdown", w.Header().Get("Content-Type"))
	require.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	require.Contains(t, w.Body.String(), "write report")

	// The default format is JSON.
	w = doJSON(t, router, http.MethodGet, "/api/v1/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Disposition"), ".json")

	w = doJSON(t, router, http.MethodGet, "/api/v1/export?format=xml", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/export?startDate=not-a-date", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportEndpointDateRangeFormats(t *testing.T) {
	router := newTestServer()
	doJSON(t, router, http.MethodPost, "/api/v1/tasks", gin.H{"title": "write report"})

	// Clients send full ISO-8601 timestamps; bare dates work too.
	w := doJSON(t, router, http.MethodGet,
		"/api/v1/export?format=csv&startDate=2026-01-01T00:00:00.000Z", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "write report")

	w = doJSON(t, router, http.MethodGet, "/api/v1/export?format=csv&startDate=2026-01-01", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "write report")

	// A future lower bound filters everything out but still succeeds.
	w = doJSON(t, router, http.MethodGet,
		"/api/v1/export?format=csv&startDate=2100-01-01T00:00:00Z", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotContains(t, w.Body.String(), "write report")
}

func multipartFile(t *testing.T, filename string, content []byte, fields map[string]string) (string, []byte) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	require.NoError(t, writer.Close())
	return writer.FormDataContentType(), buf.Bytes()
}

func TestImportEndpoint(t *testing.T) {
	router := newTestServer()

	payload := []byte(`{"tasks": [{"title": "imported task"}]}`)
	contentType, body := multipartFile(t, "export.json", payload, map[string]string{
		"duplicateHandling": "skip",
	})

	w := doRaw(t, router, http.MethodPost, "/api/v1/import", contentType, body)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody[services.ImportSummary](t, w)
	require.Equal(t, 1, summary.Imported)

	w = doJSON(t, router, http.MethodGet, "/api/v1/tasks", nil)
	tasks := decodeBody[[]taskResponse](t, w)
	require.Len(t, tasks, 1)
	require.Equal(t, "imported task", tasks[0].Title)
}

func TestImportEndpointRejectsBadInput(t *testing.T) {
	router := newTestServer()

	w := doRaw(t, router, http.MethodPost, "/api/v1/import", "application/json", []byte(`{}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeBody[errorResponse](t, w)
	require.Equal(t, "No file provided", resp.Error)

	contentType, body := multipartFile(t, "notes.txt", []byte("x"), nil)
	w = doRaw(t, router, http.MethodPost, "/api/v1/import", contentType, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp = decodeBody[errorResponse](t, w)
	require.True(t, strings.Contains(resp.Error, "JSON or CSV"), fmt.Sprintf("got %q", resp.Error))
}

func TestValidateImportEndpoint(t *testing.T) {
	router := newTestServer()

	contentType, body := multipartFile(t, "export.json", []byte(`{"tasks": [{}]}`), nil)
	w := doRaw(t, router, http.MethodPost, "/api/v1/import/validate", contentType, body)
	require.Equal(t, http.StatusOK, w.Code)

	report := decodeBody[services.ValidationReport](t, w)
	require.False(t, report.Valid)
	require.Equal(t, 1, report.RecordCount)
	require.NotEmpty(t, report.Errors)
}
