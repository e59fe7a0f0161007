package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/taskflow-app/taskflow/internal/services"
	"github.com/taskflow-app/taskflow/internal/store"
)

type Handler interface {
	HandleListTasks(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandlePatchTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleReorderTasks(c *gin.Context)

	HandleListSubtasks(c *gin.Context)
	HandleCreateSubtask(c *gin.Context)
	HandleReorderSubtasks(c *gin.Context)
	HandleGetSubtask(c *gin.Context)
	HandlePatchSubtask(c *gin.Context)
	HandleDeleteSubtask(c *gin.Context)
	HandleToggleSubtask(c *gin.Context)

	HandleListProjects(c *gin.Context)
	HandleCreateProject(c *gin.Context)
	HandleGetProject(c *gin.Context)
	HandlePatchProject(c *gin.Context)
	HandleDeleteProject(c *gin.Context)

	HandleListLabels(c *gin.Context)
	HandleCreateLabel(c *gin.Context)
	HandlePatchLabel(c *gin.Context)
	HandleDeleteLabel(c *gin.Context)

	HandleListComments(c *gin.Context)
	HandleCreateComment(c *gin.Context)
	HandlePatchComment(c *gin.Context)
	HandleDeleteComment(c *gin.Context)

	HandleExport(c *gin.Context)
	HandleImport(c *gin.Context)
	HandleValidateImport(c *gin.Context)
}

type handlerImpl struct {
	logger  zerolog.Logger
	store   store.Store
	exports services.ExportService
	imports services.ImportService
	orders  services.OrderService
}

func New(
	logger zerolog.Logger,
	st store.Store,
	exportService services.ExportService,
	importService services.ImportService,
	orderService services.OrderService,
) Handler {
	return &handlerImpl{
		logger:  logger,
		store:   st,
		exports: exportService,
		imports: importService,
		orders:  orderService,
	}
}
