package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/cache"
	"github.com/SAP-F-2025/interview-service/internal/config"
	"github.com/SAP-F-2025/interview-service/internal/handlers"
	"github.com/SAP-F-2025/interview-service/internal/interview"
	"github.com/SAP-F-2025/interview-service/internal/llm"
	"github.com/SAP-F-2025/interview-service/internal/monitoring"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/SAP-F-2025/interview-service/internal/utils"
	"github.com/SAP-F-2025/interview-service/internal/validator"
	"github.com/SAP-F-2025/interview-service/pkg"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		autoMigrate, _ := cmd.Flags().GetBool("migrate")
		return runServer(cmd.Context(), autoMigrate)
	},
}

func init() {
	serveCmd.Flags().Bool("migrate", true, "Run database migrations before serving")
}

func runServer(ctx context.Context, autoMigrate bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	appLogger := utils.NewLogger(cfg.Environment)
	logger := utils.ToSlogLogger(appLogger)

	v := validator.New()
	if err := v.Question().ValidateBank(interview.DefaultBank); err != nil {
		return fmt.Errorf("question bank is invalid: %w", err)
	}

	monitoring.Init()

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.close(context.Background())

	if autoMigrate {
		if err := store.migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	cacheService, sessionStore, closeRedis := openCache(ctx, cfg, logger)
	defer closeRedis()

	publisher, err := cfg.Events.CreateEventPublisher(logger)
	if err != nil {
		return fmt.Errorf("create event publisher: %w", err)
	}
	defer publisher.Close()

	provider, err := llm.NewProvider(cfg.AI, logger)
	if err != nil {
		return err
	}
	if provider == nil {
		logger.Info("No AI provider configured, feedback uses the fallback")
	}

	manager := services.NewServiceManager(services.Dependencies{
		Attempts:     store.attempts,
		Progress:     store.progress,
		Cache:        cacheService,
		SessionStore: sessionStore,
		Publisher:    publisher,
		Provider:     provider,
		MaxTokens:    cfg.AI.MaxOutputTokens,
		Validator:    v,
		Logger:       logger,
		Room: services.RoomConfig{
			QuestionTime:       cfg.QuestionTime,
			IdleTimeout:        cfg.SessionIdleTimeout,
			CompletedRetention: cfg.SessionRetention,
		},
		BackendURL: cfg.BackendURL,
	})
	defer manager.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(
		gin.Recovery(),
		utils.ContextLogger(appLogger),
		utils.LoggerMiddleware(appLogger),
		monitoring.MetricsMiddleware(),
	)
	handlers.NewHandlerManager(manager, appLogger).SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Interview service listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openCache uses Redis when reachable and in-memory stores otherwise
func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.CacheService, cache.SessionStore, func()) {
	client, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", "error", err)
		return cache.NewMemoryCache(), cache.NewMemorySessionStore(), func() {}
	}
	logger.Info("Connected to Redis")
	return cache.NewRedisCache(client, logger), cache.NewRedisSessionStore(client, logger), func() { _ = client.Close() }
}
