package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/hongminglow/marketplace-auth/internal/auth"
	"github.com/hongminglow/marketplace-auth/internal/config"
	"github.com/hongminglow/marketplace-auth/internal/mail"
	"github.com/hongminglow/marketplace-auth/internal/ratelimit"
	"github.com/hongminglow/marketplace-auth/internal/server"
	"github.com/hongminglow/marketplace-auth/internal/service"
	"github.com/hongminglow/marketplace-auth/internal/storage"
	"github.com/hongminglow/marketplace-auth/internal/storage/memory"
	"github.com/hongminglow/marketplace-auth/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx := context.Background()
	registry, closeStore := openStorage(ctx, cfg)
	defer closeStore()

	hasher, err := auth.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		log.Fatalf("init hasher: %v", err)
	}

	dispatcher := mail.NewDispatcher(mail.LogSender{From: cfg.MailFrom, WithBody: cfg.MailLogBody}, 10*time.Second)

	deps := service.Deps{
		Registry: registry,
		Hasher:   hasher,
		OTPs:     auth.NewOTPManager(config.OTPTTL),
		Tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, config.SessionTTL),
		Mailer:   dispatcher,
		AdminPIN: cfg.AdminPIN,
		OTPTTL:   config.OTPTTL,
	}
	if limiter, closeRedis := openLimiter(ctx, cfg); limiter != nil {
		defer closeRedis()
		deps.Throttle = limiter
	}

	srv := server.New(cfg, service.NewAuthService(deps))

	go func() {
		log.Printf("marketplace auth listening on %s (storage=%s)", cfg.HTTPAddress(), cfg.StorageDriver)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Printf("graceful shutdown error: %v", err)
	}
	if err := dispatcher.Close(ctxShutdown); err != nil {
		log.Printf("mail dispatcher did not drain: %v", err)
	}
}

func openStorage(ctx context.Context, cfg config.Config) (*storage.Registry, func()) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Println("using in-memory storage; accounts are lost on restart")
		return memory.NewStores().Registry(), func() {}
	}
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	return store.Registry(), store.Close
}

func openLimiter(ctx context.Context, cfg config.Config) (*ratelimit.Limiter, func()) {
	if cfg.RedisURL == "" {
		log.Println("REDIS_URL not set; login and OTP throttling disabled")
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("parse REDIS_URL: %v", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis ping failed, throttling will fail open until it recovers: %v", err)
	}
	limiter := ratelimit.New(client, ratelimit.Config{
		LoginFailures: ratelimit.Rule{Limit: cfg.LoginFailureLimit, Window: cfg.LoginFailureWindow},
		OTPRequests:   ratelimit.Rule{Limit: cfg.OTPRequestLimit, Window: cfg.OTPRequestWindow},
	})
	return limiter, func() { _ = client.Close() }
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
