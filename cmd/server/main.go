package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rl1809/sofa-configurator/internal/adapter/handler"
	"github.com/rl1809/sofa-configurator/internal/adapter/storage"
	"github.com/rl1809/sofa-configurator/internal/config"
	"github.com/rl1809/sofa-configurator/internal/core/catalog"
	"github.com/rl1809/sofa-configurator/internal/core/service"
	"github.com/rl1809/sofa-configurator/internal/logger"
	"github.com/rl1809/sofa-configurator/internal/port"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, closeSource, err := catalogSource(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSource()

	store := catalog.NewStore(nil)
	catalogs := service.NewCatalogService(source, store, log)
	if err := catalogs.Reload(ctx); err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	rules := service.DefaultPricingRules()
	rules.SeasonalSaleActive = cfg.Pricing.SeasonalSaleActive
	engine, err := service.NewPricingEngine(rules)
	if err != nil {
		return fmt.Errorf("pricing rules: %w", err)
	}

	var cache port.QuoteCache
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			PoolSize: 100,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// The cache is optional; pricing still works without it.
			log.Warn("redis unavailable, quote cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		} else {
			cache = storage.NewRedisAdapter(rdb)
			log.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	configurator, err := service.NewConfiguratorService(service.ConfiguratorServiceDeps{
		Catalogs: catalogs,
		Pricing:  engine,
		Cache:    cache,
		CacheTTL: cfg.Redis.QuoteTTL,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	var grpcServer *grpc.Server
	if cfg.GRPCEnabled() {
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(handler.UnaryLogger(log)))
		handler.RegisterConfiguratorServer(grpcServer, handler.NewGRPCHandler(configurator, log))
		healthServer := health.NewServer()
		healthpb.RegisterHealthServer(grpcServer, healthServer)

		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			return fmt.Errorf("listen grpc: %w", err)
		}
		go func() {
			log.Info("gRPC server listening", zap.String("port", cfg.GRPCPort))
			if err := grpcServer.Serve(lis); err != nil {
				log.Error("gRPC server error", zap.Error(err))
			}
		}()
	}

	httpHandler := handler.NewHTTPHandler(configurator, log, !cfg.IsProduction())
	httpServer := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           httpHandler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening",
			zap.String("port", cfg.HTTPPort),
			zap.String("environment", cfg.Environment),
			zap.String("catalog_source", cfg.Catalog.Source),
		)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
			cancel()
		}
	}()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for running := true; running; {
		select {
		case <-reload:
			reloadCtx, reloadCancel := context.WithTimeout(ctx, 30*time.Second)
			if err := catalogs.Reload(reloadCtx); err != nil {
				log.Error("catalog reload failed, keeping current catalog", zap.Error(err))
			}
			reloadCancel()
		case sig := <-quit:
			log.Info("shutting down", zap.String("signal", sig.String()))
			running = false
		case <-ctx.Done():
			running = false
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown", zap.Error(err))
	}
	log.Info("HTTP server stopped")

	if grpcServer != nil {
		grpcServer.GracefulStop()
		log.Info("gRPC server stopped")
	}

	return nil
}

// catalogSource builds the configured source. The returned close function
// releases any connection the source holds.
func catalogSource(ctx context.Context, cfg config.Config, log *zap.Logger) (port.CatalogSource, func(), error) {
	noop := func() {}

	switch cfg.Catalog.Source {
	case config.CatalogSourceFile:
		return storage.NewFileAdapter(cfg.Catalog.File), noop, nil
	case config.CatalogSourceMySQL:
		db, err := sql.Open("mysql", cfg.MySQL.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("ping mysql: %w", err)
		}
		log.Info("connected to mysql")

		adapter := storage.NewMySQLAdapter(db)
		if err := adapter.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("mysql schema: %w", err)
		}
		if _, err := adapter.Load(ctx); errors.Is(err, storage.ErrEmptyCatalog) {
			if err := adapter.Seed(ctx, catalog.Default()); err != nil {
				db.Close()
				return nil, noop, fmt.Errorf("seed mysql catalog: %w", err)
			}
			log.Info("seeded empty mysql catalog with defaults")
		}
		return adapter, func() { db.Close() }, nil
	default:
		return storage.NewStaticAdapter(), noop, nil
	}
}
