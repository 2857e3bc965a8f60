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
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/handler"
	"github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/migrations"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description Weekly timetables per promotion with conflict-checked session synchronization
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Database.AutoMigrate {
		version, err := database.MigrateUp(cfg.Database, migrations.FS)
		if err != nil {
			return err
		}
		logr.Info("migrations applied", zap.Uint("version", version))
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close() //nolint:errcheck
	}

	metricsSvc := service.NewMetricsService()
	validate := validator.New()

	timetableRepo := repository.NewTimetableRepository(db)
	sessionRepo := repository.NewCourseSessionRepository(db)

	cacheSvc := service.NewCacheService(
		repository.NewCacheRepository(redisClient),
		metricsSvc,
		cfg.Scheduling.TeacherCacheTTL,
		logr,
		cfg.Scheduling.TeacherCacheEnabled && redisClient != nil,
	)

	publicationWorker := newPublicationWorker(redisClient, cfg.Notify.Channel, metricsSvc, logr)
	publicationQueue := jobs.NewQueue("publications", publicationWorker.Handle, jobs.QueueConfig{
		Workers:    cfg.Notify.Workers,
		MaxRetries: cfg.Notify.MaxRetries,
		RetryDelay: cfg.Notify.RetryDelay,
		Logger:     logr,
	})
	publicationQueue.Start(context.Background())

	authSvc := service.NewAuthService(logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	})
	weekRepo := repository.NewWeekRepository(db)
	timetableSvc := service.NewTimetableService(
		timetableRepo,
		repository.NewPromotionRepository(db),
		weekRepo,
		sessionRepo,
		validate,
		logr,
	)
	syncSvc := service.NewSessionSyncService(service.SessionSyncServiceParams{
		Tx:         database.NewTransactor(db, cfg.Scheduling.SyncMaxAttempts, logr),
		Timetables: timetableRepo,
		Sessions:   sessionRepo,
		Catalog:    repository.NewCatalogRepository(db),
		Users:      repository.NewUserRepository(db),
		Notifier:   service.NewNotificationService(publicationQueue, logr),
		Cache:      cacheSvc,
		Metrics:    metricsSvc,
		Validator:  validate,
		Logger:     logr,
		Config:     service.SessionSyncConfig{BatchConflictCheck: cfg.Scheduling.BatchConflictCheck},
	})
	scheduleSvc := service.NewTeacherScheduleService(sessionRepo, weekRepo, cacheSvc, cfg.Scheduling.TeacherCacheTTL, logr)

	router := newRouter(cfg, logr, routerDeps{
		auth:      authSvc,
		metrics:   metricsSvc,
		timetable: handler.NewTimetableHandler(timetableSvc, syncSvc),
		schedule:  handler.NewTeacherScheduleHandler(scheduleSvc),
		health:    handler.NewHealthHandler(metricsSvc, readinessChecks(db, redisClient)),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Scheduling.ShutdownGracePeriod)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown incomplete", zap.Error(err))
	}
	if err := publicationQueue.Stop(shutdownCtx); err != nil {
		logr.Warn("publication queue not drained", zap.Error(err))
	}
	logr.Info("server stopped")
	return nil
}

type routerDeps struct {
	auth      middleware.TokenValidator
	metrics   *service.MetricsService
	timetable *handler.TimetableHandler
	schedule  *handler.TeacherScheduleHandler
	health    *handler.HealthHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routerDeps) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	r.GET("/health", deps.health.Health)
	r.GET("/ready", deps.health.Ready)
	r.GET("/metrics", deps.health.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix, middleware.WithResponseMeta(), middleware.JWT(deps.auth))

	admin := api.Group("/timetables", middleware.RequireRoles(models.RoleAdmin))
	admin.POST("/check-or-create", middleware.Audit(logr, "timetable.open", "timetable"), deps.timetable.CheckOrCreate)
	admin.GET("/:id", deps.timetable.Get)
	admin.GET("/:id/sessions", deps.timetable.ListSessions)
	admin.POST("/:id/sessions/sync", middleware.Audit(logr, "timetable.sessions.sync", "timetable"), deps.timetable.Sync)

	api.GET("/teacher-schedule", middleware.RequireRoles(models.RoleTeacher), deps.schedule.Mine)

	return r
}

func newPublicationWorker(client *redis.Client, channel string, metrics *service.MetricsService, logr *zap.Logger) *service.PublicationWorker {
	if client == nil {
		return service.NewPublicationWorker(nil, channel, metrics, logr)
	}
	return service.NewPublicationWorker(repository.NewEventPublisher(client), channel, metrics, logr)
}

func readinessChecks(db *sqlx.DB, client *redis.Client) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if client != nil {
		checks["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
	}
	return checks
}
