package main

// @title           MeetLink Core API
// @version         1.0
// @description     Third-party meeting connection API. MeetLink Core manages OAuth connections to Zoom, Google Meet, and Microsoft Teams and provisions meetings through them.

// @contact.name   Nimbus Labs
// @contact.url    https://github.com/nimbus-labs/meetlink-core/issues

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/nimbus-labs/meetlink-core/internal/adapters/driven/auth"
	"github.com/nimbus-labs/meetlink-core/internal/adapters/driven/postgres"
	"github.com/nimbus-labs/meetlink-core/internal/adapters/driven/providers"
	"github.com/nimbus-labs/meetlink-core/internal/adapters/driven/providers/google"
	"github.com/nimbus-labs/meetlink-core/internal/adapters/driven/providers/microsoft"
	"github.com/nimbus-labs/meetlink-core/internal/adapters/driven/providers/zoom"
	redisadapter "github.com/nimbus-labs/meetlink-core/internal/adapters/driven/redis"
	"github.com/nimbus-labs/meetlink-core/internal/adapters/driving/http"
	"github.com/nimbus-labs/meetlink-core/internal/config"
	"github.com/nimbus-labs/meetlink-core/internal/core/ports/driven"
	"github.com/nimbus-labs/meetlink-core/internal/core/services"
)

var version = "dev"

func main() {
	log.Printf("meetlink-core %s starting", version)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Version != "" {
		version = cfg.Version
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ===== Initialize PostgreSQL =====
	log.Println("Connecting to PostgreSQL...")
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize schema (idempotent)
	if err := db.InitSchema(ctx); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	log.Println("PostgreSQL connected and schema initialized")

	// ===== Initialize Redis (optional) =====
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
		log.Println("Redis connected")
	}

	// ===== Token encryption =====
	if cfg.TokenEncryptionKey == "" {
		log.Println("Warning: TOKEN_ENCRYPTION_KEY is not set; connections cannot be stored")
	}
	secretBox := postgres.NewSecretBox(func() string { return cfg.TokenEncryptionKey })

	// ===== Stores =====
	connectionStore := postgres.NewConnectionStore(db.DB, secretBox)

	// ===== Provider registry =====
	registry := providers.NewRegistry()
	registry.Register(zoom.NewHandler(zoom.DefaultConfig()), providers.Credentials{
		ClientID:     cfg.Zoom.ClientID,
		ClientSecret: cfg.Zoom.ClientSecret,
	})
	registry.Register(google.NewHandler(google.DefaultConfig()), providers.Credentials{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
	})
	registry.Register(microsoft.NewHandler(microsoft.DefaultConfig()), providers.Credentials{
		ClientID:     cfg.Microsoft.ClientID,
		ClientSecret: cfg.Microsoft.ClientSecret,
	})
	for _, p := range registry.Configured() {
		log.Printf("Provider configured: %s", p)
	}

	// ===== Services =====
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	states := services.NewStateCodec(cfg.StateSigningSecret)
	oauthService := services.NewOAuthService(services.OAuthServiceConfig{
		Registry:         registry,
		Connections:      connectionStore,
		States:           states,
		Secrets:          secretBox,
		BaseURL:          cfg.BaseURL(),
		DefaultReturnURL: cfg.DefaultReturnURL,
		Logger:           logger,
	})
	meetingService := services.NewMeetingService(services.MeetingServiceConfig{
		Registry:    registry,
		Connections: connectionStore,
		Logger:      logger,
	})

	// ===== HTTP server =====
	verifier := auth.NewVerifier(cfg.APIJWTSecret)

	var rateLimiter driven.RateLimiter
	var redisPinger http.Pinger
	if redisClient != nil {
		limiter := redisadapter.NewRateLimiter(redisClient, cfg.RateLimitPerWindow, cfg.RateLimitWindow)
		rateLimiter = limiter
		redisPinger = limiter
		log.Println("Redis rate limiting enabled")
	}

	server := http.NewServer(http.Config{
		Host:             cfg.Host,
		Port:             cfg.Port,
		Version:          version,
		DefaultReturnURL: cfg.DefaultReturnURL,
		Logger:           logger,
	}, oauthService, meetingService, verifier, rateLimiter, db, redisPinger)

	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
