package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/Gilbert-2/security-threat-detection-sub000/internal/detector"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/handler"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/middleware"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/models"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/repository"
	"github.com/Gilbert-2/security-threat-detection-sub000/internal/service"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/config"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/logger"
	corsmiddleware "github.com/Gilbert-2/security-threat-detection-sub000/pkg/middleware/cors"
	reqidmiddleware "github.com/Gilbert-2/security-threat-detection-sub000/pkg/middleware/requestid"
	"github.com/Gilbert-2/security-threat-detection-sub000/pkg/storage"
)

// Server wires repositories, services and HTTP routes together and owns the
// background workers that must start and stop with the process.
type Server struct {
	engine  *gin.Engine
	cfg     *config.Config
	logger  *zap.Logger
	rules   *service.RuleEngine
	reports *service.ReportService
}

// New builds the full dependency graph on top of the shared database and
// cache handles.
func New(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client) (*Server, error) {
	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	ruleRepo := repository.NewResponseRuleRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	reportRepo := repository.NewReportRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, validate, logr)

	ruleEngine := service.NewRuleEngine(ruleRepo, alertRepo, userRepo, notificationSvc, metricsSvc, logr, service.RuleEngineConfig{
		Workers:    cfg.Rules.WorkerConcurrency,
		MaxRetries: cfg.Rules.WorkerRetries,
	})

	alertSvc := service.NewAlertService(alertRepo, userRepo, ruleEngine, metricsSvc, validate, logr)
	ruleSvc := service.NewResponseRuleService(ruleRepo, userRepo, validate, logr)
	activitySvc := service.NewActivityService(activityRepo, logr)
	analyticsSvc := service.NewAnalyticsService(analyticsRepo, cacheRepo, metricsSvc, logr, cfg.Analytics.CacheTTL)
	dashboardSvc := service.NewDashboardService(analyticsRepo, cacheRepo, metricsSvc, logr, cfg.Dashboard.CacheTTL)
	navigationSvc := service.NewNavigationService(logr)

	clipStore, err := storage.NewLocalStorage(cfg.Detector.ClipStorageDir)
	if err != nil {
		return nil, fmt.Errorf("clip storage: %w", err)
	}
	detectorClient := detector.NewClient(cfg.Detector.BaseURL, cfg.Detector.Timeout)
	detectionSvc := service.NewDetectionService(detectorClient, clipStore, alertSvc, userRepo, metricsSvc, logr, service.DetectionConfig{
		Threshold:    cfg.Detector.Threshold,
		MaxClipBytes: cfg.Detector.MaxClipSizeBytes,
	})

	reportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("report storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	reportSvc := service.NewReportService(reportRepo, alertRepo, activityRepo, reportStore, signer, logr, service.ReportConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
	})

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	alertHandler := handler.NewAlertHandler(alertSvc)
	ruleHandler := handler.NewResponseRuleHandler(ruleSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	navigationHandler := handler.NewNavigationHandler(navigationSvc)
	detectionHandler := handler.NewDetectionHandler(detectionSvc)
	reportHandler := handler.NewReportHandler(reportSvc)

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	api := r.Group(prefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/register", authHandler.Register)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/profile", middleware.JWT(authSvc), authHandler.Profile)
	}

	// Download tokens are self authenticating, the route stays outside JWT.
	api.GET("/reports/download/:token", reportHandler.Download)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/navigation", navigationHandler.Entries)
	authed.GET("/dashboard/summary", dashboardHandler.Summary)

	notifications := authed.Group("/notifications")
	{
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.POST("", middleware.RBAC(
			string(models.RoleOperator), string(models.RoleSupervisor),
			string(models.RoleManager), string(models.RoleAdmin),
		), notificationHandler.Create)
		notifications.PATCH("/:id/read", notificationHandler.MarkRead)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
		notifications.DELETE("/:id", notificationHandler.Delete)
	}

	staff := middleware.RBAC(
		string(models.RoleOperator), string(models.RoleSupervisor),
		string(models.RoleManager), string(models.RoleAdmin),
	)
	supervision := middleware.RBAC(
		string(models.RoleSupervisor), string(models.RoleManager), string(models.RoleAdmin),
	)
	management := middleware.RBAC(string(models.RoleManager), string(models.RoleAdmin))

	alerts := authed.Group("/alerts", staff)
	{
		alerts.GET("", alertHandler.List)
		alerts.GET("/:id", alertHandler.Get)
		alerts.POST("", alertHandler.Create)
		alerts.PATCH("/:id/status", alertHandler.UpdateStatus)
		alerts.PATCH("/:id/assign", supervision, alertHandler.Assign)
	}

	authed.POST("/detect", staff, detectionHandler.Predict)

	rules := authed.Group("/response-rules", management)
	{
		rules.GET("", ruleHandler.List)
		rules.GET("/:id", ruleHandler.Get)
		rules.POST("", ruleHandler.Create)
		rules.PUT("/:id", ruleHandler.Update)
		rules.POST("/:id/activate", ruleHandler.Activate)
		rules.POST("/:id/deactivate", ruleHandler.Deactivate)
		rules.DELETE("/:id", ruleHandler.Delete)
	}

	activity := authed.Group("/activity")
	{
		activity.GET("", supervision, activityHandler.List)
		activity.GET("/history", staff, activityHandler.History)
		activity.GET("/me", activityHandler.MyActivity)
	}

	analytics := authed.Group("/analytics", supervision)
	{
		analytics.GET("/alerts", analyticsHandler.Alerts)
		analytics.GET("/notifications", analyticsHandler.Notifications)
		analytics.GET("/system", analyticsHandler.System)
	}

	reports := authed.Group("/reports", supervision)
	{
		reports.GET("", reportHandler.List)
		reports.GET("/:id", reportHandler.Get)
		reports.POST("", middleware.Audit(userRepo, models.AuditActionReportRequest, "reports"), reportHandler.Request)
	}

	users := authed.Group("/users")
	{
		users.GET("", middleware.RBAC(string(models.RoleAdmin)), userHandler.List)
		users.GET("/:id", middleware.RBAC(string(models.RoleAdmin), middleware.SelfRole), userHandler.Get)
		users.POST("", middleware.RBAC(string(models.RoleAdmin)), userHandler.Create)
		users.PUT("/:id", middleware.RBAC(string(models.RoleAdmin), middleware.SelfRole), userHandler.Update)
		users.DELETE("/:id", middleware.RBAC(string(models.RoleAdmin)), userHandler.Delete)
	}

	return &Server{
		engine:  r,
		cfg:     cfg,
		logger:  logr,
		rules:   ruleEngine,
		reports: reportSvc,
	}, nil
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start launches the background workers.
func (s *Server) Start(ctx context.Context) {
	if s.cfg.Rules.Enabled {
		s.rules.Start(ctx)
	}
	if s.cfg.Reports.Enabled {
		s.reports.Start(ctx)
	}
}

// Stop drains the background workers.
func (s *Server) Stop() {
	s.rules.Stop()
	s.reports.Stop()
}

// Run serves HTTP until the listener fails or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	srv := &http.Server{Addr: addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Sugar().Infow("server starting", "addr", addr, "env", s.cfg.Env)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
