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
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	_ "github.com/noah-isme/learner-hub-api/api/swagger"
	"github.com/noah-isme/learner-hub-api/internal/handler"
	"github.com/noah-isme/learner-hub-api/internal/middleware"
	"github.com/noah-isme/learner-hub-api/internal/repository"
	"github.com/noah-isme/learner-hub-api/internal/service"
	"github.com/noah-isme/learner-hub-api/pkg/cache"
	"github.com/noah-isme/learner-hub-api/pkg/config"
	"github.com/noah-isme/learner-hub-api/pkg/database"
	"github.com/noah-isme/learner-hub-api/pkg/jobs"
	"github.com/noah-isme/learner-hub-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/learner-hub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/learner-hub-api/pkg/middleware/requestid"
	"github.com/noah-isme/learner-hub-api/pkg/storage"
	"github.com/noah-isme/learner-hub-api/pkg/tracing"
)

// @title Learner Hub API
// @version 1.0.0
// @description IQA sampling, question bank, session types, acknowledgements and exports.
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

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, cfg.Env, logr)
	if err != nil {
		logr.Warn("tracing disabled", zap.Error(err))
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownTracing != nil {
			_ = shutdownTracing(flushCtx)
		}
	}()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, tag cache disabled", zap.Error(err))
		} else {
			repo := repository.NewCacheRepository(redisClient, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled)

	files, err := storage.NewLocalStorage(cfg.Storage.Dir)
	if err != nil {
		logr.Fatal("failed to init storage", zap.Error(err))
	}
	exportFiles, err := storage.NewLocalStorage(cfg.Exports.Dir)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)
	policy := storage.NewUploadPolicy(cfg.Storage.MaxFileSizeBytes, cfg.Storage.AllowedMIMEs)

	jobMux := jobs.NewMux()
	jobMux.Handle(service.JobStorageDelete, service.StorageDeleteHandler(files, logr))
	queue := jobs.NewQueue("storage", observeJobs(metricsSvc, jobMux.Dispatch), jobs.QueueConfig{
		Workers:       cfg.Workers.Concurrency,
		MaxRetries:    cfg.Workers.Retries,
		RetryDelay:    2 * time.Second,
		MaxRetryDelay: time.Minute,
		OnExhausted: func(job jobs.Job, err error) {
			metricsSvc.ObserveJobAbandoned(job.Type)
		},
		Logger: logr,
	})
	queue.Start(ctx)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		queue.Shutdown(drainCtx)
	}()

	validate := validator.New()
	auditRepo := repository.NewAuditRepository(db)
	planRepo := repository.NewSamplePlanRepository(db)

	planSvc := service.NewSamplePlanService(planRepo, cacheSvc, auditRepo, queue, validate, logr).WithMetrics(metricsSvc)
	detailSvc := service.NewSampleDetailService(repository.NewSampleDetailRepository(db), planRepo, files, signer, auditRepo, queue, validate, logr,
		service.SampleDetailConfig{Policy: policy, APIPrefix: cfg.APIPrefix})
	questionSvc := service.NewIQAQuestionService(repository.NewIQAQuestionRepository(db), cacheSvc, auditRepo, validate, logr)
	sessionTypeSvc := service.NewSessionTypeService(repository.NewSessionTypeRepository(db), cacheSvc, auditRepo, validate, logr)
	ackSvc := service.NewAcknowledgementService(repository.NewAcknowledgementRepository(db), files, signer, cacheSvc, auditRepo, queue, validate, logr,
		service.AcknowledgementConfig{Policy: policy, APIPrefix: cfg.APIPrefix})
	exportSvc := service.NewExportService(repository.NewExportSourceRepository(db), exportFiles, files, metricsSvc,
		service.ExportConfig{ResultTTL: cfg.Exports.ResultTTL}, logr)

	go runExportCleanup(ctx, exportSvc, cfg.Exports.CleanupInterval, logr)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	deps := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		deps["redis"] = redisPinger{client: redisClient}
	}

	registerRoutes(r, cfg.APIPrefix, routeDeps{
		Tokens:           service.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer),
		Audit:            auditRepo,
		Logger:           logr,
		Metrics:          handler.NewMetricsHandler(metricsSvc, deps),
		SamplePlans:      handler.NewSamplePlanHandler(planSvc),
		SampleDetails:    handler.NewSampleDetailHandler(detailSvc),
		Questions:        handler.NewIQAQuestionHandler(questionSvc),
		SessionTypes:     handler.NewSessionTypeHandler(sessionTypeSvc),
		Acknowledgements: handler.NewAcknowledgementHandler(ackSvc),
		Exports:          handler.NewExportHandler(exportSvc),
	})

	if !cfg.IsProduction() {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) PingContext(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

func observeJobs(metrics *service.MetricsService, next jobs.Handler) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		err := next(ctx, job)
		metrics.ObserveJob(job.Type, err)
		return err
	}
}

func runExportCleanup(ctx context.Context, exports *service.ExportService, interval time.Duration, logr *zap.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := exports.Cleanup(0)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(removed) > 0 {
				logr.Info("export cleanup", zap.Int("removed", len(removed)))
			}
		}
	}
}
