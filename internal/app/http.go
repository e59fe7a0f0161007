package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/taskflow-app/taskflow/internal/config"
	v1 "github.com/taskflow-app/taskflow/internal/delivery/http/v1"
	"github.com/taskflow-app/taskflow/internal/services"
	"github.com/taskflow-app/taskflow/internal/store"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	st := store.NewPostgres(globalLogger, globalPostgresPool)
	orderService := services.NewOrderService(globalLogger, st)
	exportService := services.NewExportService(globalLogger, st)
	importService := services.NewImportService(globalLogger, st, orderService)

	v1Handler := v1.New(
		globalLogger,
		st,
		exportService,
		importService,
		orderService,
	)
	router = router.Group("/api/v1")

	tasksRouter := router.Group("/tasks")
	tasksRouter.GET("", v1Handler.HandleListTasks)
	tasksRouter.POST("", v1Handler.HandleCreateTask)
	tasksRouter.PUT("/reorder", v1Handler.HandleReorderTasks)
	tasksRouter.GET("/:id", v1Handler.HandleGetTask)
	tasksRouter.PATCH("/:id", v1Handler.HandlePatchTask)
	tasksRouter.DELETE("/:id", v1Handler.HandleDeleteTask)
	tasksRouter.GET("/:id/subtasks", v1Handler.HandleListSubtasks)
	tasksRouter.POST("/:id/subtasks", v1Handler.HandleCreateSubtask)
	tasksRouter.PUT("/:id/subtasks/reorder", v1Handler.HandleReorderSubtasks)
	tasksRouter.GET("/:id/comments", v1Handler.HandleListComments)
	tasksRouter.POST("/:id/comments", v1Handler.HandleCreateComment)

	subtasksRouter := router.Group("/subtasks")
	subtasksRouter.GET("/:id", v1Handler.HandleGetSubtask)
	subtasksRouter.PATCH("/:id", v1Handler.HandlePatchSubtask)
	subtasksRouter.DELETE("/:id", v1Handler.HandleDeleteSubtask)
	subtasksRouter.POST("/:id/toggle", v1Handler.HandleToggleSubtask)

	projectsRouter := router.Group("/projects")
	projectsRouter.GET("", v1Handler.HandleListProjects)
	projectsRouter.POST("", v1Handler.HandleCreateProject)
	projectsRouter.GET("/:id", v1Handler.HandleGetProject)
	projectsRouter.PATCH("/:id", v1Handler.HandlePatchProject)
	projectsRouter.DELETE("/:id", v1Handler.HandleDeleteProject)

	labelsRouter := router.Group("/labels")
	labelsRouter.GET("", v1Handler.HandleListLabels)
	labelsRouter.POST("", v1Handler.HandleCreateLabel)
	labelsRouter.PATCH("/:id", v1Handler.HandlePatchLabel)
	labelsRouter.DELETE("/:id", v1Handler.HandleDeleteLabel)

	commentsRouter := router.Group("/comments")
	commentsRouter.PATCH("/:id", v1Handler.HandlePatchComment)
	commentsRouter.DELETE("/:id", v1Handler.HandleDeleteComment)

	router.GET("/export", v1Handler.HandleExport)
	router.POST("/import", v1Handler.HandleImport)
	router.POST("/import/validate", v1Handler.HandleValidateImport)
}
