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

	_ "github.com/campusfees/fee-management-api/api/swagger"
	"github.com/campusfees/fee-management-api/internal/handler"
	"github.com/campusfees/fee-management-api/internal/middleware"
	"github.com/campusfees/fee-management-api/internal/models"
	"github.com/campusfees/fee-management-api/internal/repository"
	"github.com/campusfees/fee-management-api/internal/service"
	"github.com/campusfees/fee-management-api/internal/store"
	"github.com/campusfees/fee-management-api/pkg/cache"
	"github.com/campusfees/fee-management-api/pkg/config"
	"github.com/campusfees/fee-management-api/pkg/database"
	appErrors "github.com/campusfees/fee-management-api/pkg/errors"
	"github.com/campusfees/fee-management-api/pkg/jobs"
	"github.com/campusfees/fee-management-api/pkg/logger"
	corsmiddleware "github.com/campusfees/fee-management-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusfees/fee-management-api/pkg/middleware/requestid"
	"github.com/campusfees/fee-management-api/pkg/response"
	"github.com/campusfees/fee-management-api/pkg/storage"
)

// @title Fee Management API
// @version 1.0.0
// @description College fee management: categories, payments, notifications, receipts
// @BasePath /api
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// persistence backend for the fee state store
	var kv store.KV
	var cacheRepo *repository.CacheRepository
	switch cfg.Store.Backend {
	case config.StoreBackendFile:
		fileKV, err := storage.NewFileKV(cfg.Store.FileDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init file store backend", "error", err)
		}
		kv = fileKV
		logr.Sugar().Infow("store backend ready", "backend", "file", "dir", cfg.Store.FileDir)
	default:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect redis", "error", err)
		}
		kv = repository.NewRedisKV(client, "feestore")
		cacheRepo = repository.NewCacheRepository(client, logr)
		logr.Sugar().Infow("store backend ready", "backend", "redis")
	}

	// postgres is optional: without it the roster is served from the seed
	// data and admin auth plus receipt jobs are disabled
	db, dbErr := database.NewPostgres(cfg.Database)
	if dbErr != nil {
		logr.Sugar().Warnw("postgres unavailable, running store-only", "error", dbErr)
		db = nil
	}

	var studentRepo *repository.StudentRepository
	var userRepo *repository.UserRepository
	if db != nil {
		studentRepo = repository.NewStudentRepository(db)
		userRepo = repository.NewUserRepository(db)
	}

	roster := store.SeedRoster()
	if studentRepo != nil {
		if dbRoster, _, err := studentRepo.List(ctx, models.StudentFilter{Page: 1, PageSize: 500}); err != nil {
			logr.Sugar().Warnw("failed to load roster from database, using seed", "error", err)
		} else if len(dbRoster) > 0 {
			roster = dbRoster
		}
	}

	st := store.New(ctx, kv, roster, logr)

	metricsSvc := service.NewMetricsService()
	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)
	}

	authCfg := service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	}
	var authSvc *service.AuthService
	var studentSvc *service.StudentService
	if db != nil {
		authSvc = service.NewAuthService(userRepo, st, nil, logr, authCfg)
		studentSvc = service.NewStudentService(studentRepo, st, cacheSvc, metricsSvc, logr)
	} else {
		authSvc = service.NewAuthService(nil, st, nil, logr, authCfg)
		studentSvc = service.NewStudentService(nil, st, cacheSvc, metricsSvc, logr)
	}
	feeSvc := service.NewFeeService(st, nil, metricsSvc, logr)
	paymentSvc := service.NewPaymentService(st, nil, metricsSvc, logr)
	notificationSvc := service.NewNotificationService(st, nil, metricsSvc, logr)

	// asynchronous receipt export pipeline
	var receiptSvc *service.ReceiptService
	var receiptQueue *jobs.Queue
	if cfg.Receipts.Enabled && db != nil {
		files, err := storage.NewLocalStorage(cfg.Receipts.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init receipt storage", "error", err)
		}
		secret := cfg.Receipts.SignedURLSecret
		if secret == "" {
			secret = cfg.JWT.Secret
		}
		signer := storage.NewSignedURLSigner(secret, cfg.Receipts.SignedURLTTL)
		exportSvc := service.NewExportService(st, files, signer, service.ExportConfig{
			APIPrefix: cfg.APIPrefix,
			ResultTTL: cfg.Receipts.SignedURLTTL,
		}, logr, nil, nil)

		receiptRepo := repository.NewReceiptJobRepository(db)
		worker := service.NewReceiptWorker(receiptRepo, exportSvc, cfg.Receipts.WorkerRetries, logr)
		receiptQueue = jobs.NewQueue("receipts", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Receipts.WorkerConcurrency,
			MaxRetries: cfg.Receipts.WorkerRetries,
			Logger:     logr,
		})
		receiptQueue.Start(ctx)

		receiptSvc = service.NewReceiptService(receiptRepo, receiptQueue, exportSvc, logr, service.ReceiptServiceConfig{
			ResultTTL:       cfg.Receipts.SignedURLTTL,
			CleanupInterval: cfg.Receipts.CleanupInterval,
			MaxRetries:      cfg.Receipts.WorkerRetries,
		})
		receiptSvc.RecoverPendingJobs(ctx)
		receiptSvc.StartCleanup(ctx)
	}

	if cfg.Overdue.Enabled {
		service.NewOverdueSweeper(paymentSvc, cfg.Overdue.Interval, logr).Start(ctx)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc, authSvc)
	feeHandler := handler.NewFeeHandler(feeSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, st, db)

	r := gin.New()
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logr.Sugar().Errorw("panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "something went wrong, please refresh the page"))
	}))
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		auth := api.Group("/auth")
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", middleware.JWT(authSvc), authHandler.Logout)
		auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

		students := api.Group("/students")
		students.POST("/login", studentHandler.Login)
		students.POST("/logout", middleware.JWT(authSvc), studentHandler.Logout)
		students.POST("/seed", studentHandler.Seed)
		students.GET("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), studentHandler.List)
		students.GET("/:regNo", middleware.JWT(authSvc), studentHandler.Get)
		students.GET("/:regNo/fee-status", middleware.JWT(authSvc), studentHandler.FeeStatus)

		fees := api.Group("/fees")
		fees.GET("", middleware.JWT(authSvc), feeHandler.List)
		fees.POST("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), feeHandler.Create)
		fees.PUT("/:id", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), feeHandler.Update)
		fees.DELETE("/:id", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), feeHandler.Delete)

		payments := api.Group("/payments")
		payments.GET("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), paymentHandler.List)
		payments.POST("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), paymentHandler.Assign)
		payments.GET("/student/:studentId", middleware.JWT(authSvc), middleware.RBAC(string(models.RoleAdmin), "SELF"), paymentHandler.ListForStudent)
		payments.POST("/:id/pay", middleware.JWT(authSvc), paymentHandler.Pay)

		notifications := api.Group("/notifications")
		notifications.GET("", middleware.JWT(authSvc), notificationHandler.List)
		notifications.POST("", middleware.JWT(authSvc), middleware.RequireRoles(models.RoleAdmin), notificationHandler.Broadcast)
		notifications.POST("/:id/read", middleware.JWT(authSvc), notificationHandler.MarkRead)
		notifications.DELETE("/:id", middleware.JWT(authSvc), notificationHandler.Delete)

		if receiptSvc != nil {
			receiptHandler := handler.NewReceiptHandler(receiptSvc)
			receipts := api.Group("/receipts")
			receipts.POST("", middleware.JWT(authSvc), receiptHandler.Create)
			receipts.GET("/download/:token", receiptHandler.Download)
			receipts.GET("/:id", middleware.JWT(authSvc), receiptHandler.Status)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store_backend", cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
	if receiptQueue != nil {
		receiptQueue.Stop()
	}
	if db != nil {
		if err := db.Close(); err != nil {
			logr.Sugar().Warnw("closing database failed", "error", err)
		}
	}
	logr.Sugar().Infow("shutdown complete")
}
