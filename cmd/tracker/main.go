package main

import (
	"fmt"
	"log"
	"time"

	"github.com/Aworminator/Project-Tracker/api"
	"github.com/Aworminator/Project-Tracker/config"
	"github.com/Aworminator/Project-Tracker/flow"
	"github.com/Aworminator/Project-Tracker/logger"
	"github.com/Aworminator/Project-Tracker/persistence"
	"github.com/Aworminator/Project-Tracker/session"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger.InitLogger(cfg.LogLevel)
	defer logger.Log.Sync()

	logger.Log.Info("Starting Project-Tracker",
		zap.Int("port", cfg.Port),
		zap.String("db_type", cfg.DBType),
	)

	repo, err := persistence.Open(cfg.DBType, cfg.DSN, !cfg.SkipAutoMigrate)
	if err != nil {
		logger.Log.Fatal("failed to initialize repository", zap.Error(err))
	}

	hasher := flow.NewBcryptHasher(cfg.BcryptCost)
	generator := func() string { return uuid.New().String() }

	registration := flow.NewRegistrationFlow(repo, hasher, generator, repo)
	login := flow.NewLoginFlow(repo, hasher, repo)

	// Shared lockout counters when Redis is configured, in-process
	// counters otherwise.
	var lockoutStore flow.LockoutStore = flow.NewMemoryLockoutStore()
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		lockoutStore = flow.NewRedisLockoutStore(client, "")
		logger.Log.Info("using redis lockout store", zap.String("addr", cfg.RedisAddr))
	}
	authenticator := flow.NewLockoutAuthenticator(login, lockoutStore, flow.LockoutConfig{
		MaxFailures:     cfg.LockoutMaxFailures,
		LockoutDuration: time.Duration(cfg.LockoutDurationMinutes) * time.Minute,
	})

	sessions := session.NewManager(session.NewHS256Strategy(
		cfg.SessionSecret,
		time.Duration(cfg.SessionTTLHours)*time.Hour,
	))

	h := api.NewHandler(registration, authenticator, sessions, repo)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	g := e.Group("/api/v1")
	h.RegisterRoutes(g)

	logger.Log.Info("Server is starting", zap.Int("port", cfg.Port))
	if err := e.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil {
		logger.Log.Fatal("server failed to start", zap.Error(err))
	}
}
