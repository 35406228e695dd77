package cli

import (
	"context"
	"fmt"
	"time"

	"forklift-training-service/internal/app"
	"forklift-training-service/internal/config"
	"forklift-training-service/internal/infra/branding"
	"forklift-training-service/internal/infra/file"
	"forklift-training-service/internal/infra/memory"
	"forklift-training-service/internal/infra/postgres"
	infraredis "forklift-training-service/internal/infra/redis"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// stores groups the persistence adapters selected by config.
type stores struct {
	users     app.UserStore
	questions app.QuestionStore
	scores    app.ScoreStore
	logos     app.LogoStore
	sessions  app.SessionRepository

	closers []func()
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

type collections interface {
	app.UserStore
	app.QuestionStore
	app.ScoreStore
}

func buildStores(ctx context.Context, cfg config.Config, log *zap.Logger) (*stores, error) {
	st := &stores{}

	var base collections
	switch cfg.Data.Backend {
	case "memory":
		base = memory.NewStore()
	case "file":
		fs, err := file.NewStore(cfg.Data.Dir)
		if err != nil {
			return nil, err
		}
		base = fs
	case "postgres":
		if err := runMigrationsWithConfig(ctx, cfg, log); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		st.closers = append(st.closers, pool.Close)
		base = postgres.NewStore(pool)
	default:
		return nil, fmt.Errorf("unknown data backend %q", cfg.Data.Backend)
	}
	st.users = base
	st.scores = base

	cacheTTL := config.TTLDuration(cfg.Questions.CacheTTL, time.Minute)
	sessionTTL := config.TTLDuration(cfg.Session.TTL, config.TTLDuration(cfg.Redis.TTL, 12*time.Hour))
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			st.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		st.closers = append(st.closers, func() { _ = client.Close() })
		st.sessions = infraredis.NewSessionStore(client, sessionTTL)
		st.questions = infraredis.NewQuestionCache(client, base, cacheTTL, log)
	} else {
		sessions := memory.NewSessionStore(sessionTTL)
		stopSweep := make(chan struct{})
		go sessions.Cleanup(time.Minute, stopSweep)
		st.closers = append(st.closers, func() { close(stopSweep) })
		st.sessions = sessions
		st.questions = memory.NewQuestionCache(base, cacheTTL)
	}

	logos, err := buildLogoStore(ctx, cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	st.logos = logos

	log.Info("stores ready",
		zap.String("backend", cfg.Data.Backend),
		zap.Bool("redis", cfg.Redis.Addr != ""),
		zap.String("branding", cfg.Branding.Type))
	return st, nil
}

func buildLogoStore(ctx context.Context, cfg config.Config) (app.LogoStore, error) {
	switch cfg.Branding.Type {
	case "minio":
		ms, err := branding.NewMinioStore(branding.MinioConfig{
			Endpoint:  cfg.Branding.MinioEndpoint,
			AccessKey: cfg.Branding.MinioAccessKey,
			SecretKey: cfg.Branding.MinioSecretKey,
			Bucket:    cfg.Branding.MinioBucket,
			UseSSL:    cfg.Branding.MinioUseSSL,
		})
		if err != nil {
			return nil, err
		}
		if err := ms.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return ms, nil
	case "local":
		return branding.NewLocalStore(cfg.Branding.LocalDir)
	default:
		return nil, fmt.Errorf("unknown branding type %q", cfg.Branding.Type)
	}
}

// services is the application layer built on top of the stores.
type services struct {
	auth     *app.AuthService
	sessions *app.SessionService
	scores   *app.ScoreService
	quiz     *app.QuizService
	admin    *app.AdminService
}

func buildServices(st *stores, log *zap.Logger, opts ...app.QuizOption) *services {
	auth := app.NewAuthService(st.users, log)
	sessions := app.NewSessionService(st.sessions, auth, log)
	scores := app.NewScoreService(st.scores, log)
	opts = append([]app.QuizOption{app.WithLogoStore(st.logos)}, opts...)
	return &services{
		auth:     auth,
		sessions: sessions,
		scores:   scores,
		quiz:     app.NewQuizService(sessions, st.questions, scores, log, opts...),
		admin:    app.NewAdminService(st.users, st.questions, st.scores, st.logos, auth, log),
	}
}
