package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-schedule-optimizer/api/swagger"
	"github.com/noah-isme/sma-schedule-optimizer/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-schedule-optimizer/internal/middleware"
	"github.com/noah-isme/sma-schedule-optimizer/internal/repository"
	"github.com/noah-isme/sma-schedule-optimizer/internal/service"
	"github.com/noah-isme/sma-schedule-optimizer/pkg/cache"
	"github.com/noah-isme/sma-schedule-optimizer/pkg/config"
	"github.com/noah-isme/sma-schedule-optimizer/pkg/database"
	"github.com/noah-isme/sma-schedule-optimizer/pkg/jobs"
	"github.com/noah-isme/sma-schedule-optimizer/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-schedule-optimizer/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-schedule-optimizer/pkg/middleware/requestid"
)

// @title SMA Schedule Optimizer API
// @version 0.1.0
// @description Genetic timetable optimization engine with structural violation analysis
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	courseRepo := repository.NewCourseRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	slotRepo := repository.NewScheduleSlotRepository(db)
	configRepo := repository.NewOptimizationConfigRepository(db)
	resultRepo := repository.NewOptimizationResultRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	snapshotSvc := service.NewSnapshotService(courseRepo, teacherRepo, roomRepo, timeSlotRepo)
	violationSvc := service.NewViolationService(snapshotSvc, cacheRepo, metricsSvc, logr, cfg.Violations.CacheTTL)
	actionSvc := service.NewActionService(courseRepo, teacherRepo, roomRepo, db, violationSvc, logr)
	optimizationSvc := service.NewOptimizationService(
		snapshotSvc,
		configRepo,
		resultRepo,
		slotRepo,
		cacheRepo,
		violationSvc,
		db,
		metricsSvc,
		logr,
		cfg.Optimizer,
		cfg.Exports,
	)

	runCtx, stopRuns := context.WithCancel(context.Background())
	defer stopRuns()

	queue := jobs.NewQueue("optimization", optimizationSvc.HandleJob, jobs.QueueConfig{Workers: 1})
	queue.Start(runCtx)
	optimizationSvc.BindQueue(queue)

	if cfg.Optimizer.ResultRetentionDays > 0 {
		go purgeLoop(runCtx, optimizationSvc, logr)
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	optimizationHandler := handler.NewOptimizationHandler(optimizationSvc)
	violationHandler := handler.NewViolationHandler(violationSvc, actionSvc)

	api := r.Group(cfg.APIPrefix)
	{
		optimizations := api.Group("/optimizations")
		{
			optimizations.POST("", optimizationHandler.Start)
			optimizations.GET("/health", optimizationHandler.Health)
			optimizations.GET("/results", optimizationHandler.ListResults)
			optimizations.DELETE("/results/:runId", optimizationHandler.DeleteResult)
			optimizations.GET("/configs", optimizationHandler.ListConfigs)
			optimizations.POST("/configs", optimizationHandler.CreateConfig)
			optimizations.PUT("/configs/:id", optimizationHandler.UpdateConfig)
			optimizations.DELETE("/configs/:id", optimizationHandler.DeleteConfig)
			optimizations.GET("/:runId", optimizationHandler.Result)
			optimizations.DELETE("/:runId", optimizationHandler.Cancel)
			optimizations.GET("/:runId/progress", optimizationHandler.Progress)
			optimizations.GET("/:runId/timetable", optimizationHandler.Timetable)
			optimizations.GET("/:runId/export", optimizationHandler.Export)
		}

		violations := api.Group("/violations")
		{
			violations.GET("", violationHandler.Analyze)
			violations.POST("/actions", violationHandler.ApplyAction)
		}
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}

	stopRuns()
	queue.Stop()
}

func purgeLoop(ctx context.Context, svc *service.OptimizationService, logr *zap.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.PurgeOldResults(ctx); err != nil {
				logr.Sugar().Warnw("result purge failed", "error", err)
			}
		}
	}
}
