package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/quiz-api/internal/auth"
	"github.com/gokatarajesh/quiz-api/internal/auth/jwt"
	"github.com/gokatarajesh/quiz-api/internal/config"
	"github.com/gokatarajesh/quiz-api/internal/db/migrations"
	"github.com/gokatarajesh/quiz-api/internal/db/repository"
	"github.com/gokatarajesh/quiz-api/internal/db/store"
	"github.com/gokatarajesh/quiz-api/internal/leaderboard"
	"github.com/gokatarajesh/quiz-api/internal/logging"
	"github.com/gokatarajesh/quiz-api/internal/metrics"
	"github.com/gokatarajesh/quiz-api/internal/question"
	"github.com/gokatarajesh/quiz-api/internal/quiz"
	"github.com/gokatarajesh/quiz-api/internal/round"
	"github.com/gokatarajesh/quiz-api/internal/server"
	"github.com/gokatarajesh/quiz-api/internal/storage"
	"github.com/gokatarajesh/quiz-api/internal/tag"
	"github.com/gokatarajesh/quiz-api/internal/user"
	"github.com/gokatarajesh/quiz-api/pkg/http/validate"
)

// Application aggregates shared infrastructure (DB, cache, HTTP server).
type Application struct {
	cfg    *config.App
	logger zerolog.Logger

	pool  *pgxpool.Pool
	redis *redis.Client
	http  *http.Server

	syncWorker *leaderboard.SyncWorker
	bgCancels  []context.CancelFunc
}

// New bootstraps configs, logger, Postgres, Redis and HTTP server.
func New(ctx context.Context, cfg *config.App) (*Application, error) {
	logger := logging.New(cfg.Name, cfg.Env)
	logger.Info().Msg("starting application bootstrap")

	pool, err := pgxpool.New(ctx, cfg.Postgres.ConnString())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if cfg.AutoMigrate {
		db := stdlib.OpenDBFromPool(pool)
		err := migrations.Up(ctx, db)
		_ = db.Close()
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
		logger.Info().Msg("migrations applied")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	queries := store.New(pool)
	txRunner := store.NewTxRunner(pool)

	userRepo := repository.NewUserRepository(queries)
	tokenRepo := repository.NewTokenRepository(queries)
	quizRepo := repository.NewQuizRepository(queries)
	questionRepo := repository.NewQuestionRepository(queries)
	tagRepo := repository.NewTagRepository(queries, txRunner)
	roundRepo := repository.NewRoundRepository(queries, txRunner)

	appMetrics := metrics.New()
	validator := validate.New()

	authSvc := auth.NewService(userRepo, tokenRepo, auth.ServiceOptions{
		TokenConfig: jwt.TokenConfig{
			AccessSecret: []byte(cfg.Security.AccessTokenSecret),
			AccessTTL:    cfg.Security.AccessTokenTTL,
			LinkTTL:      cfg.Security.SecureLinkTTL,
			Issuer:       cfg.Name,
		},
		RefreshTTL: cfg.Security.RefreshTokenTTL,
		BcryptCost: cfg.Security.BcryptCost,
	}, logger)

	providers := auth.ProvidersFromConfig(cfg.OAuth)
	if len(providers) == 0 {
		logger.Warn().Msg("no oauth providers configured")
	}
	oauthSvc := auth.NewOAuthService(providers, auth.NewStateStore(redisClient, cfg.Security.OAuthStateTTL), authSvc, logger)

	cookies := auth.CookieConfig{
		Secure:     cfg.Cookies.Secure,
		Domain:     cfg.Cookies.Domain,
		RefreshTTL: cfg.Security.RefreshTokenTTL,
	}

	mailer := auth.NewEmailService(auth.EmailConfig{
		SMTPHost:     cfg.SMTP.Host,
		SMTPPort:     cfg.SMTP.Port,
		SMTPUsername: cfg.SMTP.Username,
		SMTPPassword: cfg.SMTP.Password,
		FromEmail:    cfg.SMTP.FromEmail,
	}, logger)

	var images storage.ObjectStore
	if cfg.Storage.Enabled() {
		s3Store, err := storage.NewS3Store(ctx, cfg.Storage, logger)
		if err != nil {
			pool.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init object storage: %w", err)
		}
		images = s3Store
	} else {
		logger.Warn().Msg("S3_BUCKET not set; image uploads disabled")
	}

	leaderboardSvc := leaderboard.NewService(redisClient, userRepo, logger, leaderboard.ServiceOptions{
		Key:          cfg.Leaderboard.Key,
		DefaultLimit: cfg.Leaderboard.DefaultLimit,
		RebuildTopN:  cfg.Leaderboard.RebuildTopN,
	})

	roundSvc := round.NewService(roundRepo, quizRepo, questionRepo, leaderboardSvc, appMetrics, nil, logger)
	userSvc := user.NewService(userRepo, leaderboardSvc, authSvc.Tokens(), authSvc.Hasher(), mailer, images, user.Options{
		PublicOrigin:  cfg.Security.PublicOrigin,
		MaxImageBytes: cfg.Storage.MaxImageBytes,
	}, logger)
	tagSvc := tag.NewService(tagRepo, logger)
	quizSvc := quiz.NewService(quizRepo, images, logger)
	questionSvc := question.NewService(questionRepo, quizSvc, logger)

	apiServer := server.NewHTTPServer(cfg, logger, pool, redisClient, appMetrics, server.Handlers{
		Middleware:  auth.NewMiddleware(authSvc, cookies, logger),
		Auth:        auth.NewHTTPHandlers(authSvc, oauthSvc, validator, cookies, cfg.Security.OAuthSuccessURL, logger),
		Round:       round.NewHTTPHandlers(roundSvc, validator, logger),
		User:        user.NewHTTPHandlers(userSvc, validator, logger),
		Tag:         tag.NewHTTPHandlers(tagSvc, validator, logger),
		Quiz:        quiz.NewHTTPHandlers(quizSvc, validator, cfg.Storage.MaxImageBytes, logger),
		Question:    question.NewHTTPHandlers(questionSvc, validator, logger),
		Leaderboard: leaderboard.NewHTTPHandler(leaderboardSvc, validator, logger),
	})

	return &Application{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		redis:      redisClient,
		http:       apiServer,
		syncWorker: leaderboard.NewSyncWorker(leaderboardSvc, cfg.Leaderboard.SyncInterval, logger),
		bgCancels:  make([]context.CancelFunc, 0, 1),
	}, nil
}

// Run starts the HTTP server and waits for termination signals.
func (a *Application) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	a.startBackgroundWorkers(ctx)

	go func() {
		a.logger.Info().Str("addr", a.cfg.HTTPAddr).Msg("http server listening")
		if err := a.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		a.logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
		a.logger.Warn().Msg("context canceled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.GracefulShutdownTimeout)
	defer cancel()

	if err := a.http.Shutdown(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("http shutdown error")
	}

	for _, cancel := range a.bgCancels {
		cancel()
	}

	a.pool.Close()
	if err := a.redis.Close(); err != nil {
		a.logger.Error().Err(err).Msg("redis shutdown error")
	}

	a.logger.Info().Msg("shutdown complete")
	return nil
}

func (a *Application) startBackgroundWorkers(ctx context.Context) {
	bgCtx, cancel := context.WithCancel(ctx)
	a.bgCancels = append(a.bgCancels, cancel)
	go func() {
		if err := a.syncWorker.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			a.logger.Warn().Err(err).Msg("leaderboard sync worker stopped")
		}
	}()
}
