package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campusops/ta-proctor-api/api/swagger"
	"github.com/campusops/ta-proctor-api/internal/handler"
	internalmiddleware "github.com/campusops/ta-proctor-api/internal/middleware"
	"github.com/campusops/ta-proctor-api/internal/repository"
	"github.com/campusops/ta-proctor-api/internal/service"
	"github.com/campusops/ta-proctor-api/pkg/cache"
	"github.com/campusops/ta-proctor-api/pkg/config"
	"github.com/campusops/ta-proctor-api/pkg/database"
	"github.com/campusops/ta-proctor-api/pkg/jobs"
	"github.com/campusops/ta-proctor-api/pkg/logger"
	corsmiddleware "github.com/campusops/ta-proctor-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusops/ta-proctor-api/pkg/middleware/requestid"
)

// @title TA Proctoring API
// @version 1.0.0
// @description Proctoring assignment and swap engine for teaching assistants
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect to redis", zap.Error(err))
		}
		repo := repository.NewCacheRepository(redisClient, logr)
		defer repo.Close() //nolint:errcheck
		cacheRepo = repo
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	taRepo := repository.NewTARepository(db)
	examRepo := repository.NewExamRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db, taRepo)
	swapRepo := repository.NewSwapRepository(db, taRepo)
	leaveRepo := repository.NewLeaveRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)

	notifications := service.NewNotificationService(jobs.QueueConfig{
		Workers:    cfg.Notifications.Workers,
		BufferSize: cfg.Notifications.BufferSize,
		MaxRetries: cfg.Notifications.MaxRetries,
		RetryDelay: cfg.Notifications.RetryDelay,
		Logger:     logr,
	}, metrics, logr)
	notifications.Start(context.Background())
	defer notifications.Stop()

	availabilitySvc := service.NewAvailabilityService(
		scheduleRepo, leaveRepo, assignmentRepo,
		cfg.Engine.MinDutyGap, cfg.Engine.PreferOutsideDepartment, logr)
	workloadSvc := service.NewWorkloadService(taRepo, cacheSvc, cfg.Engine.PartTimeTarget, logr)
	assignmentSvc := service.NewAssignmentService(
		examRepo, taRepo, assignmentRepo, scheduleRepo, availabilitySvc,
		workloadSvc, notifications, metrics, cfg.Engine.CreditWeight, nil, logr)
	swapSvc := service.NewSwapService(
		swapRepo, assignmentRepo, examRepo, taRepo, availabilitySvc,
		workloadSvc, notifications, metrics,
		cfg.Engine.SwapCutoff, cfg.Engine.MaxSwapDepth, cfg.Engine.CreditWeight, nil, logr)
	taSvc := service.NewTAService(taRepo, examRepo, availabilitySvc, logr)
	exportSvc := service.NewExportService(assignmentSvc, workloadSvc, cfg.Export.Enabled, logr)

	sweep := service.NewCompletionSweep(assignmentRepo, notifications, metrics, cfg.Engine.SweepInterval, logr)
	sweep.Start()
	defer sweep.Stop()

	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	swapHandler := handler.NewSwapHandler(swapSvc)
	taHandler := handler.NewTAHandler(taSvc, workloadSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/exams/:examId/assignments/auto", assignmentHandler.AutoAssign)
		api.POST("/exams/:examId/assignments", assignmentHandler.ManualAssign)
		api.GET("/exams/:examId/assignments", assignmentHandler.ListByExam)
		api.GET("/exams/:examId/assignments/export", exportHandler.ExamRoster)

		api.POST("/assignments/:id/confirm", assignmentHandler.Confirm)
		api.POST("/assignments/:id/decline", assignmentHandler.Decline)
		api.GET("/assignments/:id/swaps", swapHandler.ListByAssignment)

		api.POST("/swaps", swapHandler.Create)
		api.POST("/swaps/:id/accept", swapHandler.Accept)
		api.POST("/swaps/:id/reject", swapHandler.Reject)
		api.POST("/swaps/:id/cancel", swapHandler.Cancel)

		api.GET("/tas", taHandler.List)
		api.GET("/tas/:taId", taHandler.Get)
		api.GET("/tas/:taId/workload", taHandler.Workload)
		api.GET("/tas/:taId/availability", taHandler.Availability)
		api.GET("/tas/:taId/assignments", assignmentHandler.ListByTA)
		api.GET("/tas/:taId/swaps/incoming", swapHandler.ListIncoming)

		api.GET("/workload/report", taHandler.WorkloadReport)
		api.GET("/workload/report/export", exportHandler.WorkloadReport)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("forced shutdown", zap.Error(err))
	}
}
