// Command server runs the Natural Masterpieces API: product catalog, gallery,
// reviews, admin sessions, uploads, photo analysis, and order notifications.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"masterpieces-api/internal/api"
	"masterpieces-api/internal/auth"
	"masterpieces-api/internal/notify"
	"masterpieces-api/internal/observability/logging"
	"masterpieces-api/internal/observability/metrics"
	"masterpieces-api/internal/server"
	"masterpieces-api/internal/storage"
	"masterpieces-api/internal/vision"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address")
	postgresDSN := flag.String("postgres-dsn", "", "Postgres connection string")
	postgresMaxConns := flag.Int("postgres-max-conns", 0, "maximum connections in the Postgres pool")
	postgresMinConns := flag.Int("postgres-min-conns", -1, "minimum idle connections maintained by the Postgres pool")
	postgresAppName := flag.String("postgres-app-name", "", "application_name reported to Postgres")
	adminPassword := flag.String("admin-password", "", "admin panel password")
	sessionTTL := flag.Duration("session-ttl", auth.DefaultSessionTTL, "absolute admin session lifetime")
	sessionStoreDriver := flag.String("session-store", "", "session store driver (memory or redis)")
	sessionRedisURL := flag.String("session-redis-url", "", "Redis URL for the session store")
	objectEndpoint := flag.String("object-endpoint", "", "S3-compatible object storage endpoint")
	objectRegion := flag.String("object-region", "", "object storage region")
	objectBucket := flag.String("object-bucket", "", "object storage bucket")
	objectAccessKey := flag.String("object-access-key", "", "object storage access key")
	objectSecretKey := flag.String("object-secret-key", "", "object storage secret key")
	cdnBaseURL := flag.String("cdn-base-url", "", "public CDN base URL for uploaded objects")
	visionAPIKey := flag.String("vision-api-key", "", "vision model API key")
	visionModel := flag.String("vision-model", "", "vision model identifier")
	visionBaseURL := flag.String("vision-base-url", "", "vision model API base URL")
	telegramBotToken := flag.String("telegram-bot-token", "", "Telegram bot token for order notifications")
	telegramOwnerID := flag.String("telegram-owner-id", "", "Telegram chat ID that receives order notifications")
	logLevel := flag.String("log-level", "", "log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "log format (json or text)")
	flag.Parse()

	logger := logging.Init(logging.Config{
		Level:  firstNonEmpty(*logLevel, os.Getenv("MASTERPIECES_LOG_LEVEL")),
		Format: firstNonEmpty(*logFormat, os.Getenv("MASTERPIECES_LOG_FORMAT")),
	})

	listenAddr := firstNonEmpty(*addr, os.Getenv("MASTERPIECES_ADDR"), ":8080")
	dsn := firstNonEmpty(*postgresDSN, os.Getenv("MASTERPIECES_POSTGRES_DSN"), os.Getenv("DATABASE_URL"))

	store, storeCloser, err := configureStore(dsn, *postgresMaxConns, *postgresMinConns,
		firstNonEmpty(*postgresAppName, os.Getenv("MASTERPIECES_POSTGRES_APP_NAME")), logger)
	if err != nil {
		logger.Error("configure datastore", "error", err)
		os.Exit(1)
	}

	password := firstNonEmpty(*adminPassword, os.Getenv("MASTERPIECES_ADMIN_PASSWORD"), os.Getenv("ADMIN_PASSWORD"))
	if password == "" {
		logger.Error("admin password is required (set -admin-password or ADMIN_PASSWORD)")
		os.Exit(1)
	}

	sessionOpts, sessionCloser, err := configureSessionStore(
		firstNonEmpty(*sessionStoreDriver, os.Getenv("MASTERPIECES_SESSION_STORE")),
		firstNonEmpty(*sessionRedisURL, os.Getenv("MASTERPIECES_SESSION_REDIS_URL")),
	)
	if err != nil {
		logger.Error("configure session store", "error", err)
		os.Exit(1)
	}
	sessions, err := auth.NewSessionManager(password, *sessionTTL, sessionOpts...)
	if err != nil {
		logger.Error("configure session manager", "error", err)
		os.Exit(1)
	}

	uploader := storage.NewUploader(storage.ObjectStorageConfig{
		Endpoint:      firstNonEmpty(*objectEndpoint, os.Getenv("MASTERPIECES_OBJECT_ENDPOINT")),
		Region:        firstNonEmpty(*objectRegion, os.Getenv("MASTERPIECES_OBJECT_REGION")),
		Bucket:        firstNonEmpty(*objectBucket, os.Getenv("MASTERPIECES_OBJECT_BUCKET")),
		AccessKey:     firstNonEmpty(*objectAccessKey, os.Getenv("MASTERPIECES_OBJECT_ACCESS_KEY"), os.Getenv("AWS_ACCESS_KEY_ID")),
		SecretKey:     firstNonEmpty(*objectSecretKey, os.Getenv("MASTERPIECES_OBJECT_SECRET_KEY"), os.Getenv("AWS_SECRET_ACCESS_KEY")),
		UseSSL:        true,
		PublicBaseURL: firstNonEmpty(*cdnBaseURL, os.Getenv("MASTERPIECES_CDN_BASE_URL")),
	})
	if !uploader.Enabled() {
		logger.Warn("object storage not configured; uploads disabled")
	}

	var visionOpts []vision.Option
	if model := firstNonEmpty(*visionModel, os.Getenv("MASTERPIECES_VISION_MODEL")); model != "" {
		visionOpts = append(visionOpts, vision.WithModel(model))
	}
	if baseURL := firstNonEmpty(*visionBaseURL, os.Getenv("MASTERPIECES_VISION_BASE_URL")); baseURL != "" {
		visionOpts = append(visionOpts, vision.WithBaseURL(baseURL))
	}
	visionClient := vision.NewClient(
		firstNonEmpty(*visionAPIKey, os.Getenv("MASTERPIECES_VISION_API_KEY"), os.Getenv("VISION_API_KEY")),
		visionOpts...,
	)
	if !visionClient.Enabled() {
		logger.Warn("vision API key not configured; photo analysis disabled")
	}

	notifier := notify.NewNotifier(
		firstNonEmpty(*telegramBotToken, os.Getenv("MASTERPIECES_TELEGRAM_BOT_TOKEN"), os.Getenv("TELEGRAM_BOT_TOKEN")),
		firstNonEmpty(*telegramOwnerID, os.Getenv("MASTERPIECES_TELEGRAM_OWNER_ID"), os.Getenv("TELEGRAM_OWNER_ID")),
	)
	if !notifier.Enabled() {
		logger.Warn("telegram bot not configured; order notifications disabled")
	}

	recorder := metrics.Default()
	handler := &api.Handler{
		Store:    store,
		Sessions: sessions,
		Objects:  uploader,
		Vision:   visionClient,
		Notifier: notifier,
		Metrics:  recorder,
		Logger:   logging.WithComponent(logger, "api"),
	}

	srv := server.New(handler, server.Config{
		Addr:    listenAddr,
		Logger:  logging.WithComponent(logger, "http"),
		Metrics: recorder,
	})

	errs := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", listenAddr)
		errs <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errs:
		logger.Error("server error", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}
	if storeCloser != nil {
		if err := storeCloser(ctx); err != nil {
			logger.Warn("failed to close datastore", "error", err)
		}
	}
	if sessionCloser != nil {
		if err := sessionCloser(); err != nil {
			logger.Warn("failed to close session store", "error", err)
		}
	}
	logger.Info("server stopped")
}

func configureStore(dsn string, maxConns, minConns int, appName string, logger *slog.Logger) (storage.Repository, func(context.Context) error, error) {
	if strings.TrimSpace(dsn) == "" {
		logger.Warn("no Postgres DSN configured; using in-memory repository")
		return storage.NewMemoryRepository(), nil, nil
	}
	var opts []storage.Option
	if maxConns > 0 {
		opts = append(opts, storage.WithMaxConnections(int32(maxConns)))
	}
	if minConns >= 0 {
		opts = append(opts, storage.WithMinConnections(int32(minConns)))
	}
	if appName != "" {
		opts = append(opts, storage.WithApplicationName(appName))
	}
	repo, err := storage.NewPostgresRepository(dsn, opts...)
	if err != nil {
		return nil, nil, err
	}
	return repo, repo.Close, nil
}

func configureSessionStore(driver, redisURL string) ([]auth.SessionOption, func() error, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "memory":
		return nil, nil, nil
	case "redis":
		if strings.TrimSpace(redisURL) == "" {
			return nil, nil, fmt.Errorf("redis session store selected without -session-redis-url")
		}
		store, err := auth.NewRedisSessionStore(redisURL)
		if err != nil {
			return nil, nil, err
		}
		return []auth.SessionOption{auth.WithStore(store)}, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported session store driver %q", driver)
	}
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
