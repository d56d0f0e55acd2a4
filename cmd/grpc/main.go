package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-stall-service/config"
	posv1 "github.com/fekuna/omnipos-stall-service/internal/api/posv1"
	"github.com/fekuna/omnipos-stall-service/internal/auth"
	"github.com/fekuna/omnipos-stall-service/internal/inventory"
	"github.com/fekuna/omnipos-stall-service/internal/memstore"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/broker"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/cache"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/i18n"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/logger"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/middleware"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/observability"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/postgres"
	"github.com/fekuna/omnipos-stall-service/internal/pkg/search"
	"github.com/fekuna/omnipos-stall-service/internal/product"
	"github.com/fekuna/omnipos-stall-service/internal/sales"
	"github.com/fekuna/omnipos-stall-service/internal/sales/publisher"

	invH "github.com/fekuna/omnipos-stall-service/internal/inventory/handler"
	invRepoPkg "github.com/fekuna/omnipos-stall-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-stall-service/internal/inventory/usecase"

	prodH "github.com/fekuna/omnipos-stall-service/internal/product/handler"
	prodRepoPkg "github.com/fekuna/omnipos-stall-service/internal/product/repository"
	prodUCPkg "github.com/fekuna/omnipos-stall-service/internal/product/usecase"

	salesH "github.com/fekuna/omnipos-stall-service/internal/sales/handler"
	salesRepoPkg "github.com/fekuna/omnipos-stall-service/internal/sales/repository"
	salesUCPkg "github.com/fekuna/omnipos-stall-service/internal/sales/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "omnipos-stall-service"

// txManager is satisfied by both storage backends.
type txManager interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type storage struct {
	products  product.Repository
	inventory inventory.Repository
	sales     sales.Repository
	tx        txManager
	close     func()
}

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()

	// 2. Initialize i18n. An operator override file is optional.
	i18n.Init()
	if path := os.Getenv("I18N_OVERRIDE_FILE"); path != "" {
		if err := i18n.Load(path); err != nil {
			log.Printf("failed to load locale override %s: %v", path, err)
		}
	}

	// 3. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev",
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 4. Tracing
	if cfg.Tracing.Endpoint != "" {
		_, shutdown, err := observability.SetupTracingSDK(context.Background(), &observability.Config{
			ServiceName:    serviceName,
			ServiceVersion: "v1",
			Endpoint:       cfg.Tracing.Endpoint,
			URLPath:        cfg.Tracing.URLPath,
			AuthHeader:     cfg.Tracing.AuthHeader,
			Insecure:       cfg.Tracing.Insecure,
		})
		if err != nil {
			appLogger.Fatal("Could not set up tracing", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				appLogger.Warn("Tracing shutdown failed", zap.Error(err))
			}
		}()
		appLogger.Info("Tracing enabled", zap.String("endpoint", cfg.Tracing.Endpoint))
	}

	// 5. Storage backend
	store := openStorage(cfg, appLogger)
	defer store.close()

	// 6. Optional collaborators: sale cache, product search, sale events
	salesRepo := store.sales
	if cfg.Redis.Addr != "" {
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Redis, sale cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			salesRepo = salesRepoPkg.NewCachedRepository(salesRepo, redisClient, cfg.Redis.SaleCacheTTL, appLogger)
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}

	var indexer product.Indexer
	if len(cfg.Elastic.Addresses) > 0 {
		esClient, err := search.NewClient(&search.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
		})
		if err != nil {
			appLogger.Warn("Could not connect to Elasticsearch, product search uses the database", zap.Error(err))
		} else {
			indexer = prodRepoPkg.NewESRepository(esClient)
			appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
		}
	}

	var salePublisher sales.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
		})
		defer producer.Close()
		salePublisher = publisher.NewKafkaPublisher(producer)
		appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	// 7. Initialize UseCases
	resolver := invUCPkg.NewResolver(store.inventory)
	checker := invUCPkg.NewAvailabilityChecker(store.inventory, resolver)
	invUC := invUCPkg.NewInventoryUseCase(store.inventory, resolver, checker, appLogger)
	prodUC := prodUCPkg.NewProductUseCase(store.products, store.tx, resolver, indexer, appLogger)
	salesUC := salesUCPkg.NewSalesUseCase(salesRepo, store.inventory, checker, store.tx, salePublisher, appLogger)

	// 8. Initialize Handlers
	invHandler := invH.NewInventoryHandler(invUC, appLogger)
	prodHandler := prodH.NewProductHandler(prodUC, appLogger)
	salesHandler := salesH.NewSalesHandler(salesUC, appLogger)

	// 9. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RecoveryInterceptor(appLogger),
			middleware.LoggingInterceptor(appLogger),
			auth.UnaryServerInterceptor(cfg.Auth.APIKey),
		),
	)

	posv1.RegisterCheckoutServiceServer(grpcServer, salesHandler)
	posv1.RegisterSalesServiceServer(grpcServer, salesHandler)
	posv1.RegisterInventoryServiceServer(grpcServer, invHandler)
	posv1.RegisterProductServiceServer(grpcServer, prodHandler)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server",
		zap.String("port", port),
		zap.String("storage", cfg.Storage.Driver),
	)

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(cfg.Server.ShutdownTimeout):
		appLogger.Warn("Graceful stop timed out, forcing", zap.Duration("timeout", cfg.Server.ShutdownTimeout))
		grpcServer.Stop()
	}
	appLogger.Info("Server stopped")
}

func openStorage(cfg *config.Config, appLogger logger.ZapLogger) *storage {
	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		appLogger.Warn("Using in-memory storage, data is lost on restart")
		mem := memstore.NewStore()
		return &storage{
			products:  memstore.NewProductRepository(mem),
			inventory: memstore.NewInventoryRepository(mem),
			sales:     memstore.NewSalesRepository(mem),
			tx:        memstore.NewTxManager(mem),
			close:     func() {},
		}
	case config.StorageDriverPostgres:
		db, err := postgres.NewPostgres(&postgres.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))
		return &storage{
			products:  prodRepoPkg.NewPGRepository(db),
			inventory: invRepoPkg.NewPGRepository(db),
			sales:     salesRepoPkg.NewPGRepository(db),
			tx:        postgres.NewTxManager(db),
			close:     func() { db.Close() },
		}
	default:
		appLogger.Fatal("Unknown storage driver", zap.String("driver", cfg.Storage.Driver))
		return nil
	}
}
