package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/wedshare/media-service/internal/api"
	"github.com/wedshare/media-service/internal/api/handlers"
	"github.com/wedshare/media-service/internal/configuration"
	"github.com/wedshare/media-service/internal/ratelimit"
	"github.com/wedshare/media-service/internal/services"
	"github.com/wedshare/media-service/internal/storage"
	"github.com/wedshare/media-service/internal/upload"
)

func main() {
	cfg := configuration.Load()

	// The upload directory is the record store; without it there is no
	// service.
	store, err := storage.New(cfg.Upload.Dir, cfg.Upload.MaxFileSizeBytes)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}
	log.Printf("Storing uploads in %s", store.Dir())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := &handlers.Handler{
		Store: store,
		Validator: upload.NewValidator(
			cfg.Upload.BannedExtensions,
			cfg.Upload.AllowedExtensions,
			cfg.Upload.MaxFileSizeBytes,
		),
		MaxFilesPerRequest: cfg.Upload.MaxFilesPerRequest,
	}

	if cfg.NATSURL != "" {
		events, err := services.ConnectEvents(cfg.NATSURL)
		if err != nil {
			log.Printf("Warning: NATS unavailable, events disabled: %v", err)
		} else {
			defer events.Close()
			h.Events = events
		}
	}

	if cfg.MinIO.Endpoint != "" {
		archiver, err := services.NewArchiver(
			cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey,
			cfg.MinIO.BucketName, cfg.MinIO.UseSSL, store,
		)
		if err != nil {
			log.Printf("Warning: MinIO unavailable, archiving disabled: %v", err)
		} else {
			archiver.Start(ctx)
			h.Archiver = archiver
		}
	}

	if cfg.ClamAVURL != "" {
		scanner := services.NewScanner(cfg.ClamAVURL, store)
		scanner.Start(ctx)
		h.Scanner = scanner
	}

	if cfg.RetentionDays > 0 {
		sweeper := storage.NewSweeper(store,
			time.Duration(cfg.RetentionDays)*24*time.Hour, time.Hour)
		go sweeper.Run(ctx)
	}

	r := gin.Default()
	api.RegisterRoutes(r, api.Deps{
		Handler:         h,
		Limiter:         buildLimiter(cfg),
		MaxRequestBytes: cfg.Upload.MaxRequestBytes,
		AdminPassword:   cfg.AdminPassword,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	waitForShutdown(srv, cancel)
}

// buildLimiter picks the limiter backend: Redis when an address is
// configured (multi-process deployments), the in-memory fixed window
// otherwise.
func buildLimiter(cfg *configuration.Config) ratelimit.Limiter {
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		log.Printf("Rate limiting via Redis at %s", cfg.RedisAddr)
		return ratelimit.NewRedisLimiter(client, "ratelimit:upload:",
			cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}
	return ratelimit.NewFixedWindow(cfg.RateLimit.Requests, cfg.RateLimit.Window)
}

func waitForShutdown(srv *http.Server, cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("Shutting down gracefully...")
	cancel()

	// In-flight uploads get a grace period to finish their writes;
	// partials past it are cleaned up by the storage layer.
	ctx, done := context.WithTimeout(context.Background(), 30*time.Second)
	defer done()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
