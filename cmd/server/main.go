package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"groupchat/internal/api"
	"groupchat/internal/config"
	"groupchat/internal/db"
	"groupchat/internal/observ"
	"groupchat/internal/repository/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// Startup has no deadline; once serving, every request carries its
	// own context.
	database, err := db.New(context.Background(), cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	pool := database.Pool()
	userRepo := postgres.NewUserStore(pool)
	groupRepo := postgres.NewGroupStore(pool)
	membershipRepo := postgres.NewMembershipStore(pool)
	messageRepo := postgres.NewMessageStore(pool)
	likeRepo := postgres.NewLikeStore(pool)

	handlers := api.Handlers{
		Auth:       api.NewAuthHandler(userRepo, cfg.JWTSecret, cfg.JWTTTL, logger),
		User:       api.NewUserHandler(userRepo, logger),
		Group:      api.NewGroupHandler(groupRepo, membershipRepo, logger),
		Membership: api.NewMembershipHandler(groupRepo, userRepo, membershipRepo, logger),
		Message:    api.NewMessageHandler(groupRepo, membershipRepo, messageRepo, logger),
		Like:       api.NewLikeHandler(groupRepo, messageRepo, likeRepo, logger),
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := gin.New()
	srv.Use(gin.Recovery(), observ.Metrics())

	// Public, unauthenticated: load balancers hit /health, Prometheus
	// scrapes /metrics.
	srv.GET("/health", func(c *gin.Context) {
		if err := database.Health(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	srv.GET("/metrics", observ.MetricsHandler())

	api.RegisterRoutes(srv, handlers, cfg.JWTSecret, userRepo, logger)

	logger.Info("starting server",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.Env),
	)

	return srv.Run(":" + cfg.Port)
}
