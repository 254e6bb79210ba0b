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
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-ledger-api/api/swagger"
	"github.com/noah-isme/campus-ledger-api/internal/handler"
	internalmiddleware "github.com/noah-isme/campus-ledger-api/internal/middleware"
	"github.com/noah-isme/campus-ledger-api/internal/models"
	"github.com/noah-isme/campus-ledger-api/internal/repository"
	"github.com/noah-isme/campus-ledger-api/internal/service"
	"github.com/noah-isme/campus-ledger-api/pkg/cache"
	"github.com/noah-isme/campus-ledger-api/pkg/config"
	"github.com/noah-isme/campus-ledger-api/pkg/database"
	"github.com/noah-isme/campus-ledger-api/pkg/events"
	"github.com/noah-isme/campus-ledger-api/pkg/jobs"
	"github.com/noah-isme/campus-ledger-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-ledger-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-ledger-api/pkg/middleware/requestid"
)

// @title Campus Ledger API
// @version 1.0.0
// @description Grade ledger, enrollment and announcement service for a university.
// @BasePath /
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.RunMigrations {
		migrator, err := database.NewMigrator(db)
		if err != nil {
			return fmt.Errorf("init migrations: %w", err)
		}
		if err := migrator.Up(); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		version, dirty, _ := migrator.Version()
		logr.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}

	var redisClient redis.UniversalClient
	if cfg.Dashboard.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		} else {
			redisClient = client
			defer client.Close()
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		amqpPublisher, err := events.Dial(cfg.Events.URL, cfg.Events.Exchange, logr)
		if err != nil {
			logr.Warn("event broker unavailable, events disabled", zap.Error(err))
		} else {
			publisher = amqpPublisher
		}
	}
	defer publisher.Close()

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	txManager := repository.NewTxManager(db)
	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	departmentRepo := repository.NewDepartmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	gradeRepo := repository.NewGradeRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	dashboardRepo := repository.NewDashboardRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, redisClient != nil)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, profileRepo, txManager, validate, logr)
	catalogSvc := service.NewCatalogService(departmentRepo, courseRepo, validate, logr)
	ledgerSvc := service.NewLedgerService(service.LedgerServiceParams{
		Tx:          txManager,
		Assignments: assignmentRepo,
		Enrollments: enrollmentRepo,
		Grades:      gradeRepo,
		Students:    profileRepo,
		Audit:       userRepo,
		Events:      publisher,
		Cache:       cacheSvc,
		Metrics:     metricsSvc,
		Validator:   validate,
		Logger:      logr,
	})
	enrollmentSvc := service.NewEnrollmentService(service.EnrollmentServiceParams{
		Tx:          txManager,
		Enrollments: enrollmentRepo,
		Courses:     courseRepo,
		Profiles:    profileRepo,
		Audit:       userRepo,
		Events:      publisher,
		Cache:       cacheSvc,
		Metrics:     metricsSvc,
		Validator:   validate,
		Logger:      logr,
	})
	assignmentSvc := service.NewAssignmentService(assignmentRepo, courseRepo, profileRepo, enrollmentRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(txManager, attendanceRepo, enrollmentRepo, cacheSvc, metricsSvc, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, txManager, metricsSvc, logr)

	fanout := jobs.NewQueue[models.Announcement]("notifications", notificationSvc.Fanout, jobs.QueueConfig{
		Workers:    cfg.Notify.Workers,
		MaxRetries: cfg.Notify.MaxRetries,
		RetryDelay: cfg.Notify.RetryDelay,
		Logger:     logr,
	})
	fanout.Start(ctx)
	defer fanout.Stop()

	announcementSvc := service.NewAnnouncementService(service.AnnouncementServiceParams{
		Repo:        announcementRepo,
		Departments: profileRepo,
		Courses:     enrollmentRepo,
		Fanout:      fanout,
		Events:      publisher,
		Cache:       cacheSvc,
		Validator:   validate,
		Logger:      logr,
	})
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Counts:        dashboardRepo,
		Courses:       courseRepo,
		Assignments:   assignmentRepo,
		Grades:        gradeRepo,
		Ledger:        ledgerSvc,
		Enrollments:   enrollmentRepo,
		Attendance:    attendanceRepo,
		Announcements: announcementSvc,
		Cache:         cacheSvc,
		Logger:        logr,
	})
	exportSvc := service.NewExportService(ledgerSvc, logr, nil, nil)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	health := handler.NewHealthHandler(metricsSvc.Handler(), db)
	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/metrics", health.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r.Group(cfg.APIPrefix), handler.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Users:         handler.NewUserHandler(userSvc),
		Grades:        handler.NewGradeHandler(ledgerSvc),
		Enrollments:   handler.NewEnrollmentHandler(enrollmentSvc),
		Announcements: handler.NewAnnouncementHandler(announcementSvc),
		Catalog:       handler.NewCatalogHandler(catalogSvc),
		Assignments:   handler.NewAssignmentHandler(assignmentSvc),
		Attendance:    handler.NewAttendanceHandler(attendanceSvc),
		Notifications: handler.NewNotificationHandler(notificationSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
		Export:        handler.NewExportHandler(exportSvc),
	}, handler.RouteDeps{Tokens: authSvc, Audit: userRepo, Logger: logr})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
