package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-availability-service/config"
	"github.com/fekuna/omnipos-availability-service/migrations"
	"github.com/fekuna/omnipos-availability-service/pkg/broker"
	"github.com/fekuna/omnipos-availability-service/pkg/cache"
	"github.com/fekuna/omnipos-availability-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-availability-service/pkg/i18n"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"github.com/fekuna/omnipos-availability-service/pkg/mail"
	"github.com/fekuna/omnipos-availability-service/pkg/search"

	"github.com/fekuna/omnipos-availability-service/internal/availability"
	availH "github.com/fekuna/omnipos-availability-service/internal/availability/handler"
	availRepoPkg "github.com/fekuna/omnipos-availability-service/internal/availability/repository"
	availUCPkg "github.com/fekuna/omnipos-availability-service/internal/availability/usecase"

	"github.com/fekuna/omnipos-availability-service/internal/currentavailability"
	caJob "github.com/fekuna/omnipos-availability-service/internal/currentavailability/job"
	caRepoPkg "github.com/fekuna/omnipos-availability-service/internal/currentavailability/repository"
	caUCPkg "github.com/fekuna/omnipos-availability-service/internal/currentavailability/usecase"

	"github.com/fekuna/omnipos-availability-service/internal/order"
	orderH "github.com/fekuna/omnipos-availability-service/internal/order/handler"
	orderListenerPkg "github.com/fekuna/omnipos-availability-service/internal/order/listener"
	orderRepoPkg "github.com/fekuna/omnipos-availability-service/internal/order/repository"
	orderUCPkg "github.com/fekuna/omnipos-availability-service/internal/order/usecase"

	"github.com/fekuna/omnipos-availability-service/internal/plan"
	planH "github.com/fekuna/omnipos-availability-service/internal/plan/handler"
	planNotifier "github.com/fekuna/omnipos-availability-service/internal/plan/notifier"
	planRepoPkg "github.com/fekuna/omnipos-availability-service/internal/plan/repository"
	planUCPkg "github.com/fekuna/omnipos-availability-service/internal/plan/usecase"

	shopH "github.com/fekuna/omnipos-availability-service/internal/shop/handler"
	shopRepoPkg "github.com/fekuna/omnipos-availability-service/internal/shop/repository"
	shopUCPkg "github.com/fekuna/omnipos-availability-service/internal/shop/usecase"

	"github.com/fekuna/omnipos-availability-service/internal/server"
	"github.com/fekuna/omnipos-availability-service/internal/shopify"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	if cfg.Shopify.APISecret == "" {
		appLogger.Warn("SHOPIFY_API_SECRET is empty, every webhook will be rejected")
	}

	// 2.5 Initialize i18n
	bundle, err := i18n.New()
	if err != nil {
		appLogger.Fatal("Could not load locales", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Connect to Database
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
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if cfg.Server.AutoMigrate {
		if err := migrations.Migrate(ctx, db, appLogger); err != nil {
			appLogger.Fatal("Could not migrate database", zap.Error(err))
		}
	}

	// 4. Initialize Repositories
	shopRepo := shopRepoPkg.NewPGRepository(db)
	availRepo := availRepoPkg.NewPGRepository(db)
	orderRepo := orderRepoPkg.NewPGRepository(db)
	caRepo := caRepoPkg.NewPGRepository(db)
	planRepo := planRepoPkg.NewPGRepository(db)

	// 5. Initialize Redis
	redisClient, err := cache.NewRedisClient(&cache.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))

	// 5.5 Initialize Kafka Consumer
	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 5.8 Initialize Elasticsearch. Search is optional; listings fall back to the database.
	var indexer currentavailability.SearchIndexer
	esClient, err := search.NewClient(&search.Config{
		Addresses: cfg.Elastic.Addresses,
		Username:  cfg.Elastic.Username,
		Password:  cfg.Elastic.Password,
	})
	if err != nil {
		appLogger.Warn("Could not connect to Elasticsearch (resource search disabled)", zap.Error(err))
		esClient = nil
	} else {
		if err := shopUCPkg.EnsureResourceIndex(ctx, esClient); err != nil {
			appLogger.Warn("Could not create resource index", zap.Error(err))
		}
		indexer = esClient
		appLogger.Info("Connected to Elasticsearch", zap.Strings("addresses", cfg.Elastic.Addresses))
	}

	// 6. Initialize UseCases
	var widgetCache availability.WidgetCache = redisClient

	caUC := caUCPkg.NewCurrentAvailabilityUseCase(caRepo, shopRepo, availRepo, orderRepo, widgetCache, indexer, time.Now, appLogger)
	shopUC := shopUCPkg.NewShopUseCase(shopRepo, caUC, esClient, appLogger)
	availUC := availUCPkg.NewAvailabilityUseCase(availRepo, orderRepo, shopUC, caUC, widgetCache, cfg.Widget.CacheTTL, time.Now, appLogger)

	var notifier plan.Notifier
	if cfg.SendGrid.APIKey != "" {
		mailer := mail.NewSendGridClient(cfg.SendGrid.APIKey, cfg.SendGrid.From, cfg.SendGrid.FromName)
		notifier = planNotifier.NewEmailNotifier(mailer, bundle, appLogger)
	} else {
		appLogger.Warn("SENDGRID_API_KEY is empty, plan notices are recorded but not mailed")
	}
	planUC := planUCPkg.NewPlanUseCase(planRepo, shopUC, notifier, time.Now, appLogger)

	var tagger order.Tagger = shopify.NewClient(cfg.Shopify.APIVersion, cfg.Shopify.ClientTimeout)
	orderUC := orderUCPkg.NewOrderUseCase(orderRepo, shopUC, tagger, caUC, planUC, appLogger)

	// 6.5 Initialize Listeners and Jobs
	orderListener := orderListenerPkg.NewOrderListener(kafkaConsumer, orderUC, appLogger)
	go orderListener.Start(ctx)

	sweep := caJob.NewSweepJob(caUC, redisClient, cfg.Sweep.Spec, cfg.Sweep.LockTTL, appLogger)
	if err := sweep.Start(); err != nil {
		appLogger.Fatal("Could not schedule availability sweep", zap.Error(err))
	}

	// 7. Initialize Handlers
	router := server.NewRouter(&server.Handlers{
		Availability: availH.NewAvailabilityHandler(availUC, shopUC, appLogger),
		Shop:         shopH.NewShopHandler(shopUC, appLogger),
		Plan:         planH.NewPlanHandler(planUC, appLogger),
		Webhook:      orderH.NewWebhookHandler(orderUC, cfg.Shopify.APISecret, appLogger),
	}, shopUC, cfg.Server.RequestTimeout, appLogger)

	httpServer := &http.Server{
		Addr:              cfg.Server.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 8. Start gRPC Server (health checks only)
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	// Graceful Shutdown
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
	cancel()
	sweep.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}
