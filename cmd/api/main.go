// Poll API server entrypoint: loads configuration, connects the backing
// stores, wires the service graph and serves HTTP until interrupted.
//
//	@title			Poll API
//	@version		1.0
//	@description	Poll creation service with credential and session lifecycle.
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/pollwise/poll-api/internal/api"
	"github.com/pollwise/poll-api/internal/core/ports"
	"github.com/pollwise/poll-api/internal/core/service"
	"github.com/pollwise/poll-api/internal/infrastructure/config"
	mongodb "github.com/pollwise/poll-api/internal/infrastructure/db/mongo"
	redisdb "github.com/pollwise/poll-api/internal/infrastructure/db/redis"
	"github.com/pollwise/poll-api/internal/infrastructure/email"
	"github.com/pollwise/poll-api/internal/infrastructure/queue"
	"github.com/pollwise/poll-api/internal/infrastructure/sso"
	"github.com/pollwise/poll-api/internal/infrastructure/storage"
	"github.com/pollwise/poll-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		panic(err)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Backing stores ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	pollRepo := mongodb.NewPollRepository(db)
	templateRepo := mongodb.NewTemplateRepository(db)
	logRepo := mongodb.NewLogRepository(db)

	for name, ensure := range map[string]func(context.Context) error{
		"users": userRepo.EnsureIndexes,
		"polls": pollRepo.EnsureIndexes,
		"logs":  logRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Str("collection", name).Msg("index creation failed")
		}
	}

	// --- Async audit trail ---
	dispatcher := queue.NewDispatcher(0, logRepo, log)
	dispatcher.Start(ctx)

	// --- External adapters ---
	var federated ports.FederatedVerifier = sso.Disabled{}
	if cfg.Google.ClientID != "" {
		verifier, err := sso.NewGoogleVerifier(ctx, cfg.Google.ClientID)
		if err != nil {
			log.Fatal().Err(err).Msg("google verifier setup failed")
		}
		federated = verifier
	} else {
		log.Warn().Msg("google login disabled, no client id configured")
	}

	fileStore, err := storage.NewS3Store(ctx, storage.Config{
		Region:    cfg.S3.Region,
		Bucket:    cfg.S3.Bucket,
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		PublicURL: cfg.S3.PublicURL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("file store setup failed")
	}

	mailer := email.NewSMTPSender(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})

	throttle := redisdb.NewResetThrottle(rdb, cfg.Auth.ResetCooldown)

	// --- Core services ---
	tokens := service.NewJWTIssuer(service.TokenConfig{
		AccessSecret:  cfg.Auth.AccessSecret,
		RefreshSecret: cfg.Auth.RefreshSecret,
		ResetSecret:   cfg.Auth.ResetSecret,
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
		ResetTTL:      cfg.Auth.ResetTTL,
	})
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)

	sessions := service.NewSessionService(userRepo, tokens, hasher, federated, dispatcher, log)
	accounts := service.NewAccountService(userRepo, hasher, dispatcher, log)
	resets := service.NewResetService(userRepo, tokens, hasher, mailer, throttle, dispatcher, log, cfg.Auth.ResetURL)
	profiles := service.NewProfileService(userRepo, fileStore, dispatcher, log)
	polls := service.NewPollService(pollRepo, templateRepo, userRepo, dispatcher, log)

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Config:   cfg,
		Logger:   log,
		Mongo:    db,
		Redis:    rdb,
		Tokens:   tokens,
		Users:    userRepo,
		Sessions: sessions,
		Accounts: accounts,
		Resets:   resets,
		Profiles: profiles,
		Polls:    polls,
		Logs:     logRepo,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
	dispatcher.Wait()
}
