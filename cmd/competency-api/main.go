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

	_ "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/api/swagger"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/handler"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/repository"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/server"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/service"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/cache"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/config"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/database"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/jobs"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/logger"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/middleware/ratelimit"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/storage"
)

// @title Student Competency API
// @version 1.0.0
// @description Records student achievements and computes competency scores.
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const (
	cachePrefix    = "competency"
	recalcQueue    = "competency-recalc"
	tokenIssuer    = "student-competency-api"
	recalcTimeout  = 30 * time.Second
	shutdownWindow = 10 * time.Second
)

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, overview caching disabled", zap.Error(err))
	} else {
		defer client.Close()
		cacheSvc = service.NewCacheService(repository.NewCacheRepository(client, cachePrefix, logr), metrics, cfg.Competency.CacheTTL, logr, true)
	}

	accountRepo := repository.NewAccountRepository(db)
	academicRepo := repository.NewAcademicRepository(db)
	languageRepo := repository.NewLanguageRepository(db)
	trainingRepo := repository.NewTrainingRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	peerRepo := repository.NewPeerEvaluationRepository(db)
	competencyRepo := repository.NewCompetencyRepository(db)
	announcementRepo := repository.NewAnnouncementRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)

	scoringCfg := service.ScoringConfigFrom(cfg.Scoring)

	authSvc := service.NewAuthService(accountRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             tokenIssuer,
	})
	accountSvc := service.NewAccountService(accountRepo, nil, logr)
	academicSvc := service.NewAcademicService(academicRepo, accountRepo, scoringCfg.Grades, nil, logr)
	languageSvc := service.NewLanguageService(languageRepo, nil, logr)
	trainingSvc := service.NewTrainingService(trainingRepo, nil, logr)
	activitySvc := service.NewActivityService(activityRepo, nil, logr)
	peerSvc := service.NewPeerService(peerRepo, accountRepo, scoringCfg.Collaboration, nil, logr)
	announcementSvc := service.NewAnnouncementService(announcementRepo, accountRepo, nil, logr)

	competencySvc := service.NewCompetencyService(service.CompetencySources{
		Accounts:   accountRepo,
		Academic:   academicRepo,
		Language:   languageRepo,
		Trainings:  trainingRepo,
		Activities: activityRepo,
		Peers:      peerRepo,
		Snapshots:  competencyRepo,
		Audit:      accountRepo,
	}, scoringCfg, cacheSvc, metrics, logr)

	queue := jobs.NewQueue(recalcQueue, competencySvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Competency.WorkerConcurrency,
		BufferSize: cfg.Competency.QueueBuffer,
		MaxRetries: cfg.Competency.WorkerRetries,
		RetryDelay: 2 * time.Second,
		JobTimeout: recalcTimeout,
		Logger:     logr,
	})
	competencySvc.SetQueue(queue)
	metrics.RegisterQueue(recalcQueue, queue.Stats)
	queue.Start(ctx)
	defer queue.Stop()

	overviewSvc := service.NewOverviewService(competencySvc, cacheSvc, service.OverviewConfig{
		CacheTTL:    cfg.Competency.CacheTTL,
		Threshold:   cfg.Competency.LowScoreThreshold,
		Concurrency: cfg.Competency.WorkerConcurrency,
	}, logr)
	exportSvc := service.NewExportService(overviewSvc, logr)

	store, err := storage.NewLocalStorage(cfg.Attachments.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare attachment storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Attachments.SignedURLSecret, cfg.Attachments.SignedURLTTL)
	attachmentSvc := service.NewAttachmentService(attachmentRepo, store, signer, accountRepo, service.AttachmentConfig{
		MaxFileSizeBytes: cfg.Attachments.MaxFileSizeBytes,
		AllowedMIMEs:     cfg.Attachments.AllowedMIMEs,
		BasePath:         cfg.APIPrefix + "/attachments",
		PurgeRetention:   cfg.Attachments.PurgeRetention,
	}, logr)
	go attachmentSvc.RunPurge(ctx, cfg.Attachments.PurgeInterval)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.New(ratelimit.Config{
			PerMinute:    cfg.RateLimit.LoginPerMinute,
			Burst:        cfg.RateLimit.LoginBurst,
			IdleEviction: cfg.RateLimit.IdleEviction,
			OnReject:     metrics.IncRateLimited,
		})
		go limiter.Run(ctx, cfg.RateLimit.CleanupInterval)
	}

	router := server.New(server.Handlers{
		Auth:          handler.NewAuthHandler(authSvc),
		Accounts:      handler.NewAccountHandler(accountSvc),
		Academic:      handler.NewAcademicHandler(academicSvc),
		Records:       handler.NewRecordsHandler(languageSvc, trainingSvc, activitySvc),
		Peers:         handler.NewPeerHandler(peerSvc),
		Competency:    handler.NewCompetencyHandler(competencySvc, overviewSvc, exportSvc),
		Announcements: handler.NewAnnouncementHandler(announcementSvc, accountSvc),
		Attachments:   handler.NewAttachmentHandler(attachmentSvc, cfg.Attachments.MaxFileSizeBytes),
		System:        handler.NewSystemHandler(metrics, db),
	}, server.Options{
		APIPrefix:      cfg.APIPrefix,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		EnableDocs:     cfg.Env != config.EnvProduction,
		Logger:         logr,
		Metrics:        metrics,
		Tokens:         authSvc,
		Audit:          accountRepo,
		LoginLimiter:   limiter,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWindow)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
