package main

import (
	"context"
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

	_ "github.com/rotaboard/rota-api/api/swagger"
	"github.com/rotaboard/rota-api/internal/handler"
	"github.com/rotaboard/rota-api/internal/middleware"
	"github.com/rotaboard/rota-api/internal/models"
	"github.com/rotaboard/rota-api/internal/repository"
	"github.com/rotaboard/rota-api/internal/service"
	"github.com/rotaboard/rota-api/pkg/cache"
	"github.com/rotaboard/rota-api/pkg/config"
	"github.com/rotaboard/rota-api/pkg/database"
	"github.com/rotaboard/rota-api/pkg/logger"
	corsmiddleware "github.com/rotaboard/rota-api/pkg/middleware/cors"
	reqidmiddleware "github.com/rotaboard/rota-api/pkg/middleware/requestid"
	"github.com/rotaboard/rota-api/pkg/storage"
)

// @title Rota API
// @version 1.0.0
// @description Weekly shift coverage resolution and assignment ledger
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
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	slotRepo := repository.NewSlotRepository(db)
	preferenceRepo := repository.NewPreferenceRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	locker := service.NewWeekLocker()
	metricsSvc := service.NewMetricsService()

	catalogSvc := service.NewCatalogService(slotRepo, cacheRepo, nil, logr, cfg.Scheduler.CatalogCacheTTL)
	matcherSvc := service.NewMatcherService(rosterRepo, preferenceRepo, catalogSvc, cfg.Scheduler, logr)
	ledgerSvc := service.NewLedgerService(assignmentRepo, locker, logr)
	overrideSvc := service.NewOverrideService(assignmentRepo, rosterRepo, slotRepo, catalogSvc, locker, cfg.Scheduler, logr)
	preferenceSvc := service.NewPreferenceService(preferenceRepo, rosterRepo, catalogSvc, nil, logr)
	rosterSvc := service.NewRosterService(rosterRepo, nil, logr)
	exportSvc := service.NewExportService(assignmentRepo, rosterRepo, catalogSvc, exportStore, signer, logr)
	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      cfg.JWT.Issuer,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalogSvc.StartNotifications(ctx)
	defer catalogSvc.StopNotifications()

	authHandler := handler.NewAuthHandler(authSvc)
	catalogHandler := handler.NewCatalogHandler(catalogSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc)
	preferenceHandler := handler.NewPreferenceHandler(preferenceSvc)
	coverageHandler := handler.NewCoverageHandler(matcherSvc, ledgerSvc, overrideSvc, metricsSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	authed.GET("/auth/me", authHandler.Me)

	admin := middleware.RequireRoles(models.RoleAdmin)

	authed.GET("/catalog/slots", catalogHandler.ListSlots)
	authed.POST("/catalog/slots", admin, catalogHandler.CreateSlot)
	authed.PUT("/catalog/slots/:key", admin, catalogHandler.UpdateSlot)

	authed.GET("/roster", rosterHandler.List)
	authed.GET("/roster/:id", rosterHandler.Get)
	authed.POST("/roster", admin, rosterHandler.Create)
	authed.PUT("/roster/:id", admin, rosterHandler.Update)

	weeks := authed.Group("/weeks/:week")
	weeks.GET("/slots", catalogHandler.ListInstances)
	weeks.GET("/preferences", admin, preferenceHandler.ListWeek)
	weeks.GET("/preferences/mine", preferenceHandler.Get)
	weeks.POST("/preferences", preferenceHandler.Submit)
	weeks.POST("/auto-assign", admin, coverageHandler.AutoAssign)
	weeks.GET("/assignments", coverageHandler.GetWeek)
	weeks.POST("/publish", admin, coverageHandler.Publish)
	weeks.POST("/assignments/toggle", admin, coverageHandler.ToggleCell)
	weeks.POST("/long-shift", admin, coverageHandler.ToggleLongShift)
	weeks.POST("/slots/:key/cancel", admin, coverageHandler.CancelSlot)
	weeks.POST("/export", exportHandler.ExportWeek)

	authed.POST("/assignments/:id/confirm", coverageHandler.Confirm)
	authed.POST("/assignments/:id/swap-request", coverageHandler.RequestSwap)
	authed.POST("/assignments/:id/swap-resolve", admin, coverageHandler.ResolveSwap)

	api.GET("/exports/download", exportHandler.Download)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
