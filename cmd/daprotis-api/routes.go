package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/daprotis-api/internal/handler"
	"github.com/noah-isme/daprotis-api/internal/middleware"
	"github.com/noah-isme/daprotis-api/internal/models"
	"github.com/noah-isme/daprotis-api/internal/service"
	"github.com/noah-isme/daprotis-api/pkg/config"
	"github.com/noah-isme/daprotis-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/daprotis-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/daprotis-api/pkg/middleware/requestid"
	"github.com/noah-isme/daprotis-api/pkg/observability"
)

type routeHandlers struct {
	auth       *handler.AuthHandler
	profiles   *handler.ProfileHandler
	schedules  *handler.ScheduleHandler
	enrollment *handler.EnrollmentHandler
	payments   *handler.PaymentHandler
	stats      *handler.StatsHandler
	metrics    *handler.MetricsHandler
}

func newRouter(cfg *config.Config, logr *zap.Logger, metricsSvc *service.MetricsService, tokens middleware.TokenValidator, h routeHandlers) *gin.Engine {
	r := gin.New()
	r.Use(reqidmiddleware.Middleware())
	r.Use(observability.GinMiddleware(logr))
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", h.metrics.Health)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", h.auth.Register)
	auth.POST("/login", h.auth.Login)
	auth.POST("/refresh", h.auth.Refresh)

	api.GET("/schedules", h.schedules.ListActive)
	api.GET("/payments/instructions", h.payments.Instructions)

	authed := api.Group("")
	authed.Use(middleware.JWT(tokens))
	authed.POST("/auth/logout", h.auth.Logout)
	authed.GET("/auth/me", h.auth.Me)

	me := authed.Group("/me")
	me.GET("/profile", h.profiles.GetMe)
	me.PUT("/profile", h.profiles.UpdateMe)
	me.GET("/dashboard", h.enrollment.Dashboard)
	me.GET("/enrollments", h.enrollment.ListMine)

	self := me.Group("")
	self.Use(middleware.RequireCapability(models.CapEnrollmentSelf))
	self.POST("/enrollments", h.enrollment.Enroll)
	self.DELETE("/enrollments/:scheduleId", h.enrollment.Unenroll)
	self.POST("/enrollments/:scheduleId/toggle", h.enrollment.Toggle)
	self.GET("/payments", h.payments.ListMine)
	self.POST("/payments", h.payments.Report)

	admin := authed.Group("/admin")

	profiles := admin.Group("/profiles", middleware.RequireCapability(models.CapProfilesManage))
	profiles.GET("", h.profiles.List)
	profiles.PUT("/:id/payment-date", h.profiles.SetPaymentDate)
	profiles.PUT("/:id/weekly-allowance", h.profiles.SetWeeklyAllowance)

	schedules := admin.Group("/schedules", middleware.RequireCapability(models.CapSchedulesManage))
	schedules.GET("", h.schedules.Occupancy)
	schedules.POST("", h.schedules.Create)
	schedules.PUT("/:id", h.schedules.Update)
	schedules.DELETE("/:id", h.schedules.Delete)
	admin.GET("/schedules/:id/students", middleware.RequireCapability(models.CapEnrollmentsView), h.schedules.Students)

	enrollments := admin.Group("/enrollments", middleware.RequireCapability(models.CapEnrollmentsView))
	enrollments.GET("", h.enrollment.Roster)
	enrollments.GET("/export", h.enrollment.Export)

	payments := admin.Group("/payments", middleware.RequireCapability(models.CapPaymentsReview))
	payments.GET("", h.payments.List)
	payments.PUT("/:id", h.payments.Review)

	admin.GET("/stats", middleware.RequireCapability(models.CapStatsView), h.stats.Admin)

	return r
}
