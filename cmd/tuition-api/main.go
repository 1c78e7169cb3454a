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
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/smart-tuition/api/swagger"
	"github.com/noah-isme/smart-tuition/internal/handler"
	"github.com/noah-isme/smart-tuition/internal/middleware"
	"github.com/noah-isme/smart-tuition/internal/repository"
	"github.com/noah-isme/smart-tuition/internal/service"
	"github.com/noah-isme/smart-tuition/pkg/cache"
	"github.com/noah-isme/smart-tuition/pkg/config"
	"github.com/noah-isme/smart-tuition/pkg/database"
	"github.com/noah-isme/smart-tuition/pkg/github"
	"github.com/noah-isme/smart-tuition/pkg/jobs"
	"github.com/noah-isme/smart-tuition/pkg/kvstore"
	"github.com/noah-isme/smart-tuition/pkg/logger"
	corsmiddleware "github.com/noah-isme/smart-tuition/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/smart-tuition/pkg/middleware/requestid"
)

// @title Smart Tuition API
// @version 1.0.0
// @description Tuition ledger: students, fees, attendance, receipts and backup sync.
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()

	store, closeStore, err := openStore(ctx, cfg, logr)
	if err != nil {
		logr.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer closeStore()
	store = kvstore.WithObserver(kvstore.WithPrefix(store, cfg.Storage.KeyPrefix), metricsSvc.ObserveStorage)

	validate := validator.New()
	docs := repository.NewDocumentRepository(store)
	settingsRepo := repository.NewSettingsRepository(docs)

	ledgerSvc := service.NewLedgerService(
		repository.NewStudentRepository(docs),
		repository.NewPaymentRepository(docs),
		service.LedgerConfig{SeedSessions: cfg.Attendance.SeedSessions, ClampSeed: cfg.Attendance.ClampSeed},
		validate,
		logr.Named("ledger"),
	)
	ledgerSvc.UseGauge(metricsSvc)
	if err := ledgerSvc.Init(ctx); err != nil {
		logr.Fatal("failed to load ledger", zap.Error(err))
	}

	authSvc := service.NewAuthService(settingsRepo, validate, logr.Named("auth"), service.AuthConfig{
		Enabled:        cfg.Auth.Enabled,
		SecretCodeHash: cfg.Auth.SecretCodeHash,
	})
	profileSvc := service.NewProfileService(settingsRepo, validate, logr.Named("profiles"))
	if _, err := profileSvc.EnsureDefault(ctx); err != nil {
		logr.Warn("failed to create default profile", zap.Error(err))
	}
	backupSvc := service.NewBackupService(docs, ledgerSvc, cfg.Backup.Version, logr.Named("backup"))
	remote := github.NewClient(cfg.Sync.APIBaseURL, nil, cfg.Sync.Timeout)
	syncSvc := service.NewSyncService(remote, settingsRepo, backupSvc, metricsSvc, cfg.Sync.DefaultPath, logr.Named("sync"))
	importSvc := service.NewImportService(ledgerSvc, nil, logr.Named("import"))
	exportSvc := service.NewExportService(ledgerSvc, logr.Named("export"), nil, nil, nil)
	receiptSvc := service.NewReceiptService(ledgerSvc, settingsRepo, nil, cfg.Receipt.QRBaseURL, logr.Named("receipt"))

	syncQueue := jobs.NewQueue("sync", syncSvc.HandleJob, jobs.QueueConfig{
		Workers: 1,
		Logger:  logr.Named("jobs"),
	})
	syncQueue.Start(ctx)
	defer syncQueue.Stop()
	if cfg.Sync.AutoSyncOnRun {
		if err := syncQueue.Enqueue(jobs.Job{ID: uuid.NewString(), Type: service.JobAutoSync}); err != nil {
			logr.Warn("failed to queue auto-sync", zap.Error(err))
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc, func(ctx context.Context) error {
		_, err := store.Get(ctx, repository.KeyStudents)
		if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
			return err
		}
		return nil
	})
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r.Group(cfg.APIPrefix), handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Students:   handler.NewStudentHandler(ledgerSvc),
		Attendance: handler.NewAttendanceHandler(ledgerSvc),
		Backup:     handler.NewBackupHandler(backupSvc),
		Sync:       handler.NewSyncHandler(syncSvc),
		Settings:   handler.NewSettingsHandler(profileSvc),
		Reports:    handler.NewReportHandler(importSvc, exportSvc, receiptSvc),
	}, middleware.AuthGate(authSvc))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}

// openStore selects the persistence backend named by STORAGE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (kvstore.Store, func(), error) {
	noop := func() {}
	switch cfg.Storage.Driver {
	case config.StorageMemory:
		logr.Warn("memory storage selected; data is lost on restart")
		return kvstore.NewMemoryStore(), noop, nil
	case config.StorageFile, "":
		store, err := kvstore.NewFileStore(cfg.Storage.Dir)
		if err != nil {
			return nil, noop, err
		}
		return store, noop, nil
	case config.StorageRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		store := kvstore.NewRedisStore(client)
		return store, func() { _ = store.Close() }, nil
	case config.StoragePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		store := kvstore.NewPostgresStore(db)
		if err := store.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return store, func() { _ = db.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
