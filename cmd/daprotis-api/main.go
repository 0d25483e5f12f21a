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
	"go.uber.org/zap"

	_ "github.com/noah-isme/daprotis-api/api/swagger"
	"github.com/noah-isme/daprotis-api/internal/handler"
	"github.com/noah-isme/daprotis-api/internal/models"
	"github.com/noah-isme/daprotis-api/internal/repository"
	"github.com/noah-isme/daprotis-api/internal/service"
	"github.com/noah-isme/daprotis-api/pkg/cache"
	"github.com/noah-isme/daprotis-api/pkg/config"
	"github.com/noah-isme/daprotis-api/pkg/database"
	"github.com/noah-isme/daprotis-api/pkg/export"
	"github.com/noah-isme/daprotis-api/pkg/logger"
	"github.com/noah-isme/daprotis-api/pkg/observability"
)

// @title Daprotis API
// @version 1.0.0
// @description Enrollment, payments and schedules for the Daprotis training school
// @BasePath /api/v1
// @schemes http https
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

	flush, err := observability.InitSentry(cfg)
	if err != nil {
		logr.Warn("sentry disabled", zap.Error(err))
	}
	defer flush()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db.DB); err != nil {
			observability.CaptureErr(err)
			logr.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Cache.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, running without cache", zap.Error(err))
		} else {
			redisRepo := repository.NewCacheRepository(client)
			defer redisRepo.Close() //nolint:errcheck
			cacheRepo = redisRepo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	loc := cfg.School.Location()
	validate := service.NewValidator()

	userRepo := repository.NewUserRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	profileSvc := service.NewProfileService(profileRepo, cacheSvc, validate, logr, loc)
	authSvc := service.NewAuthService(userRepo, profileSvc, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	scheduleSvc := service.NewScheduleService(scheduleRepo, enrollmentRepo, cacheSvc, metricsSvc, validate, logr, cfg.School.DefaultCapacity)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, scheduleRepo, scheduleSvc, profileSvc,
		service.NewEligibilityEvaluator(cfg.School.GracePeriodDays), metricsSvc, logr, loc)
	paymentSvc := service.NewPaymentService(paymentRepo, cacheSvc, validate, logr, models.PaymentInstructions{
		CBU:       cfg.School.PaymentCBU,
		Alias:     cfg.School.PaymentAlias,
		Holder:    cfg.School.PaymentHolder,
		Contact:   cfg.School.PaymentContact,
		Reference: cfg.School.PaymentReference,
	}, loc)
	statsSvc := service.NewStatsService(statsRepo, metricsSvc, logr, loc)
	exportSvc := service.NewExportService(enrollmentSvc, logr, loc,
		export.NewCSVExporter(), export.NewPDFExporter(), export.NewXLSXExporter())

	r := newRouter(cfg, logr, metricsSvc, authSvc, routeHandlers{
		auth:       handler.NewAuthHandler(authSvc),
		profiles:   handler.NewProfileHandler(profileSvc),
		schedules:  handler.NewScheduleHandler(scheduleSvc),
		enrollment: handler.NewEnrollmentHandler(enrollmentSvc, exportSvc),
		payments:   handler.NewPaymentHandler(paymentSvc),
		stats:      handler.NewStatsHandler(statsSvc),
		metrics:    handler.NewMetricsHandler(metricsSvc),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "timezone", loc.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.CaptureErr(err)
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		observability.CaptureErr(err)
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
