package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"vitasurvey/internal/cache"
	"vitasurvey/internal/config"
	"vitasurvey/internal/logging"
	"vitasurvey/internal/repository"
	"vitasurvey/internal/service"
	"vitasurvey/internal/transport/rest"
	"vitasurvey/internal/transport/ws"
)

// @title VitaSurvey API
// @version 1.0
// @description Adaptive health survey sessions for storefront members
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", os.Getenv("SURVEY_CONFIG"), "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return fmt.Errorf("connect to MongoDB: %w", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		return fmt.Errorf("ping MongoDB: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("ping Redis: %w", err)
	}
	logger.Info("connected to Redis", zap.String("addr", cfg.RedisAddr))

	wsHub := ws.NewHub(logger)
	defer wsHub.Close()

	// Initialize repositories
	categoryRepo := repository.NewCategoryRepo(db)
	memberRepo := repository.NewMemberRepo(db)
	submissionRepo := repository.NewSubmissionRepo(db)

	// Initialize caches
	treeCache := cache.NewTreeCache(rdb, cfg.TreeCacheTTL, cfg.CatalogPinTTL)
	sessionCache := cache.NewSessionCache(rdb, cfg.SessionTTL)

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	surveySvc := service.NewSurveyService(categoryRepo, memberRepo, submissionRepo, treeCache, sessionCache, cfg.Rules, logger)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	surveySvc.SetBroadcaster(wsHub)
	if cfg.Forward.URL != "" {
		forwarder := service.NewSubmissionForwarder(cfg.Forward.URL, cfg.Forward.Token, cfg.Forward.Timeout, cfg.Forward.MaxRetries, logger)
		surveySvc.SetForwarder(forwarder)
		surveySvc.SetSubmitTimeout(forwarder.MaxDuration() + time.Minute)
		logger.Info("forwarding submissions", zap.String("url", cfg.Forward.URL))
	}

	router := rest.NewRouter(&rest.Container{
		AuthService:   authSvc,
		SurveyService: surveySvc,
		WSHub:         wsHub,
		CORS:          cfg.CORS,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		logger.Info("shutting down server", zap.String("signal", sig.String()))
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}
