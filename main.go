package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/authgate/authgate/handlers"
	"github.com/authgate/authgate/internal/config"
	"github.com/authgate/authgate/internal/database"
	"github.com/authgate/authgate/internal/oauth"
	"github.com/authgate/authgate/internal/tokens"
	"github.com/authgate/authgate/internal/users"
	"github.com/authgate/authgate/pkg/logger"
	"github.com/authgate/authgate/pkg/metrics"
)

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	// Retry/backoff when connecting to MongoDB to tolerate startup races
	const maxAttempts = 5
	backoff := time.Second
	var client *mongo.Client
	var errConn error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if errConn == nil {
			break
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	if errConn != nil {
		logger.Fatalf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	usersCol := client.Database(cfg.MongoDB.Database).Collection("users")
	repo := users.NewMongoRepository(usersCol)
	if err := repo.EnsureIndexes(ctx); err != nil {
		logger.Fatalf("failed to ensure user indexes: %v", err)
	}
	userSvc := users.NewService(repo)

	oauthClient, err := oauth.NewClient(cfg.Google)
	if err != nil {
		logger.Fatalf("failed to build oauth client: %v", err)
	}
	codec := tokens.NewCodec(cfg.JWT.Secret)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Basic health endpoint
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// store-backed health check
	r.GET("/api/v1/health_check", func(c *gin.Context) {
		pctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := client.Ping(pctx, nil); err != nil {
			logger.Warnf("health_check: mongo ping failed: %v", err)
			c.String(http.StatusOK, "NOK")
			return
		}
		c.String(http.StatusOK, "OK")
	})

	h := handlers.NewAuthHandler(cfg, oauthClient, userSvc, codec)
	h.Register(r.Group("/"))

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting auth gateway on %s (env=%s)", addr, cfg.Server.Environment)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
