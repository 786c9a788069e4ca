// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"spatialintel/internal/adapter/memstore"
	"spatialintel/internal/adapter/messaging"
	"spatialintel/internal/adapter/storage"
	"spatialintel/internal/config"
	"spatialintel/internal/domain/event"
	"spatialintel/internal/logger"
	ratelimit "spatialintel/internal/middleware"
	"spatialintel/internal/server"
	"spatialintel/internal/service/events"
	trendService "spatialintel/internal/service/trend"
)

var (
	backend string
	port    int
)

var rootCmd = &cobra.Command{
	Use:           "spatial-intel",
	Short:         "Spatial event ingestion and windowed trend API",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the PostGIS schema and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "store backend override (postgis|memory)")
	rootCmd.PersistentFlags().IntVar(&port, "port", 0, "listen port override")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger.L().Error("fatal", "error", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("failed to load configuration: %w", err)
	}

	switch backend {
	case "":
	case config.BackendPostGIS, config.BackendMemory:
		cfg.Database.Backend = backend
	default:
		return cfg, fmt.Errorf("unknown backend %q", backend)
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger.SetupWith(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	return cfg, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	db, err := storage.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return storage.EnsureSchema(ctx, db)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := logger.L()

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, closeStore, err := initStore(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeStore()

	gateway := events.NewGateway(store)

	var analyzerOpts []trendService.Option
	if cfg.NATS.URL != "" {
		natsConn, err := messaging.Connect(cfg.NATS)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsConn.Close()

		publisher := messaging.NewTrendPublisher(natsConn, cfg.Trend.EventsTopic)
		analyzerOpts = append(analyzerOpts, trendService.WithPublisher(publisher))
		log.Info("trend_publisher_enabled", "subject", publisher.Subject())
	}
	analyzer := trendService.NewAnalyzer(gateway, analyzerOpts...)

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewTokenBucket(cfg.RateLimit.PerSecond)
		if cfg.Redis.Addr != "" {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer rdb.Close()
			limiter = ratelimit.NewRedisLimiter(rdb, "spatialintel:ratelimit:events", cfg.RateLimit.PerSecond)
		}
		log.Info("rate_limit_enabled", "per_second", cfg.RateLimit.PerSecond, "redis", cfg.Redis.Addr != "")
	}

	httpServer := server.NewServer(cfg.Server, server.Deps{
		Gateway:              gateway,
		Analyzer:             analyzer,
		Limiter:              limiter,
		DefaultWindowMinutes: cfg.Trend.DefaultWindowMinutes,
		Logger:               log,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("http_listen", "addr", httpServer.Addr(), "backend", cfg.Database.Backend)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown_signal")
	case err := <-errCh:
		return fmt.Errorf("HTTP server error: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http_shutdown_failed", "error", err)
	}

	log.Info("shutdown_complete")
	return nil
}

// initStore picks the configured backend; the returned func releases it
func initStore(ctx context.Context, cfg config.DatabaseConfig) (event.Store, func(), error) {
	if cfg.Backend == config.BackendMemory {
		logger.L().Warn("memory_store_in_use", "note", "events are lost on exit")
		return memstore.NewEventStore(), func() {}, nil
	}

	db, err := storage.Connect(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := storage.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return storage.NewEventStore(db), db.Close, nil
}
