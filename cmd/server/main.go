package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/clinichub/accounts-api/internal/api"
	"github.com/clinichub/accounts-api/internal/core/domain"
	"github.com/clinichub/accounts-api/internal/core/secret"
	"github.com/clinichub/accounts-api/internal/core/service"
	"github.com/clinichub/accounts-api/internal/core/token"
	"github.com/clinichub/accounts-api/internal/infrastructure/config"
	mongostore "github.com/clinichub/accounts-api/internal/infrastructure/db/mongo"
	redisstore "github.com/clinichub/accounts-api/internal/infrastructure/db/redis"
	"github.com/clinichub/accounts-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "accounts-api",
		Pretty:  cfg.Env == "development",
	})

	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	roleRepo := mongostore.NewRoleRepository(db)
	if err := roleRepo.Seed(ctx, domain.DefaultRoles()); err != nil {
		log.Fatal().Err(err).Msg("role seed failed")
	}
	userRepo := mongostore.NewUserRepository(db)

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	// --- Core services ---
	hasher := secret.NewBcryptHasher(cfg.BcryptCost)
	codec := token.NewCodec(cfg.JWTSecret, cfg.TokenTTL)
	limiter := redisstore.NewLoginLimiter(rdb, cfg.Login.MaxAttempts, cfg.Login.Window)

	authService := service.NewAuthService(userRepo, roleRepo, hasher, codec, limiter, logger.With("auth"))
	userService := service.NewUserService(userRepo, roleRepo, hasher, logger.With("users"))
	roleService := service.NewRoleService(roleRepo, logger.With("roles"))

	e, err := api.NewRouter(ctx, api.Dependencies{
		Users:       userRepo,
		Roles:       roleRepo,
		AuthService: authService,
		UserService: userService,
		RoleService: roleService,
		Codec:       codec,
		Mongo:       db,
		Redis:       rdb,
		Logger:      log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router configuration failed")
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("accounts api started")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
