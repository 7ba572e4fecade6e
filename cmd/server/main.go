package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ayush/devconnector/internal/auth"
	"github.com/ayush/devconnector/internal/config"
	"github.com/ayush/devconnector/internal/profile"
	"github.com/ayush/devconnector/internal/server"
	"github.com/ayush/devconnector/internal/store"
	"github.com/ayush/devconnector/internal/store/memory"
)

func main() {
	cfg := config.Load()
	setupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		fatal("invalid configuration", err)
	}

	ctx := context.Background()
	deps := server.Deps{
		Tokens:             auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL),
		GitHub:             profile.NewGitHubClient(cfg.GitHubAPIURL, cfg.GitHubToken, cfg.GitHubTimeout),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSOrigins:        cfg.CORSOrigins,
	}

	// ── Documents ────────────────────────────────────────────
	switch cfg.DataBackend {
	case config.BackendMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		mongoClient, err := store.NewMongoClient(connectCtx, cfg.MongoURI)
		cancel()
		if err != nil {
			fatal("mongo connect", err)
		}
		defer mongoClient.Disconnect(ctx)

		db := mongoClient.Database(cfg.MongoDB)
		if err := store.EnsureIndexes(ctx, db); err != nil {
			fatal("mongo indexes", err)
		}
		deps.Users = store.NewMongoUserStore(db)
		deps.Profiles = store.NewMongoProfileStore(db)
		deps.Posts = store.NewMongoPostStore(db)
		slog.Info("using mongo backend", "db", cfg.MongoDB)
	case config.BackendMemory:
		deps.Users = memory.NewUserStore()
		deps.Profiles = memory.NewProfileStore()
		deps.Posts = memory.NewPostStore()
		slog.Warn("using in-memory backend; data is lost on restart")
	}

	// ── PostgreSQL users ─────────────────────────────────────
	if cfg.UserBackend == config.BackendPostgres {
		pgPool, err := store.NewPostgresPool(ctx, cfg.PostgresDSN)
		if err != nil {
			fatal("postgres connect", err)
		}
		defer pgPool.Close()
		pgStore := store.NewPostgresStore(pgPool)
		if err := pgStore.Migrate(ctx); err != nil {
			fatal("postgres migrate", err)
		}
		deps.Users = pgStore
		slog.Info("using postgres for users")
	}

	// ── Redis ────────────────────────────────────────────────
	if cfg.RedisAddr != "" {
		rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			fatal("redis connect", err)
		}
		defer rdb.Close()
		deps.RateCounter = store.NewRedisCounter(rdb)
	} else {
		deps.RateCounter = memory.NewCounter()
	}

	// ── MinIO ────────────────────────────────────────────────
	if cfg.MinioEndpoint != "" {
		minioStore, err := store.NewMinioStore(
			ctx, cfg.MinioEndpoint, cfg.MinioAccessKey,
			cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			fatal("minio connect", err)
		}
		deps.Avatars = minioStore
	} else {
		slog.Info("MINIO_ENDPOINT not set; avatar uploads disabled")
	}

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("server error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}

func setupLogger(cfg *config.Config) {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	var handler slog.Handler
	if cfg.LogFormat == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
