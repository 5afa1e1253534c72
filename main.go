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
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/groupchat/groupchat/handlers"
	"github.com/groupchat/groupchat/internal/chat"
	"github.com/groupchat/groupchat/internal/config"
	"github.com/groupchat/groupchat/internal/database"
	"github.com/groupchat/groupchat/internal/groups"
	"github.com/groupchat/groupchat/internal/hub"
	"github.com/groupchat/groupchat/internal/sessions"
	"github.com/groupchat/groupchat/internal/storage"
	"github.com/groupchat/groupchat/internal/tokens"
	"github.com/groupchat/groupchat/internal/users"
	"github.com/groupchat/groupchat/pkg/logger"
	"github.com/groupchat/groupchat/pkg/metrics"
	"github.com/groupchat/groupchat/pkg/middleware"
)

var startTime = time.Now()

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v minio=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Permissive CORS for dev/test; production deployments sit behind a
	// stricter proxy policy.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	ctx := context.Background()

	// Connect to Redis early so the blacklist and rate limiter can use it.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	var blacklist sessions.Blacklist
	if redisClient != nil {
		blacklist = sessions.NewRedisBlacklist(redisClient, "")
		logger.Infof("using Redis-backed token blacklist")
	} else {
		blacklist = sessions.NewMemoryBlacklist()
		logger.Infof("using in-memory token blacklist")
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimit(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimit(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	issuer := tokens.NewIssuer(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL)

	// Connect to MongoDB with retry/backoff to tolerate startup races. The
	// service still starts without Mongo; API handlers are simply absent and
	// /ready reports not ready.
	var mongoClient *mongo.Client
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			mongoClient, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
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
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
			mongoClient = nil
		}
	}

	var (
		usersSvc  *users.Service
		groupsSvc *groups.Service
		chatSvc   *chat.Service
	)
	if mongoClient != nil {
		defer func() { _ = mongoClient.Disconnect(ctx) }()
		db := mongoClient.Database(cfg.MongoDB.Database)

		usersRepo := users.NewMongoRepository(db.Collection("users"))
		usersSvc = users.NewService(usersRepo)

		groupsRepo := groups.NewMongoRepository(db.Collection("groups"), db.Collection("group_members"))
		groupsSvc = groups.NewService(groupsRepo, usersRepo)

		chatRepo := chat.NewMongoRepository(db.Collection("messages"), db.Collection("message_likes"))
		chatSvc = chat.NewService(chatRepo, groupsSvc, groupsRepo)
	}

	var attachments *storage.AttachmentStore
	if cfg.MinIO.Endpoint != "" {
		attachments, err = storage.NewAttachmentStore(cfg.MinIO)
		if err != nil {
			logger.Warnf("attachment storage unavailable: %v", err)
			attachments = nil
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"mongo": usersSvc != nil,
			"redis": !(cfg.RateLimit.UseRedis && redisClient == nil),
		}
		ready := deps["mongo"] && deps["redis"]
		code := http.StatusOK
		status := "ready"
		if !ready {
			code = http.StatusServiceUnavailable
			status = "not_ready"
		}
		c.JSON(code, gin.H{"status": status, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	roomHub := hub.New()
	go roomHub.Run(ctx)
	handlers.NewWSHandler(roomHub, issuer, blacklist).Register(r)

	if usersSvc != nil {
		authH := handlers.NewAuthHandler(cfg, usersSvc, issuer, blacklist)

		public := r.Group("/api")
		authH.Register(public)

		protected := r.Group("/api")
		protected.Use(middleware.AuthGate(issuer, blacklist, middleware.GateConfig{}))
		authH.RegisterProtected(protected)
		handlers.NewUsersHandler(usersSvc).Register(protected)
		handlers.NewGroupsHandler(groupsSvc).Register(protected)
		handlers.NewChatHandler(chatSvc, attachments).Register(protected)
	} else {
		logger.Warnf("API handlers not registered because MongoDB is unavailable")
	}

	handlers.RegisterSwagger(r)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting groupchat service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
