package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yashrajoria/E-Commerce-backend/storefront/common/auth"
	apperrors "github.com/yashrajoria/E-Commerce-backend/storefront/common/errors"
	"github.com/yashrajoria/E-Commerce-backend/storefront/common/logger"
	commonmw "github.com/yashrajoria/E-Commerce-backend/storefront/common/middleware"
	"github.com/yashrajoria/E-Commerce-backend/storefront/config"
	"github.com/yashrajoria/E-Commerce-backend/storefront/controllers"
	"github.com/yashrajoria/E-Commerce-backend/storefront/database"
	"github.com/yashrajoria/E-Commerce-backend/storefront/kafka"
	"github.com/yashrajoria/E-Commerce-backend/storefront/middleware"
	"github.com/yashrajoria/E-Commerce-backend/storefront/models"
	awspkg "github.com/yashrajoria/E-Commerce-backend/storefront/pkg/aws"
	dynamopkg "github.com/yashrajoria/E-Commerce-backend/storefront/pkg/dynamodb"
	"github.com/yashrajoria/E-Commerce-backend/storefront/repository"
	"github.com/yashrajoria/E-Commerce-backend/storefront/routes"
	"github.com/yashrajoria/E-Commerce-backend/storefront/services"
)

// closer releases a backend on shutdown.
type closer struct {
	name  string
	close func(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx := context.Background()

	awsCfg, err := awspkg.LoadAWSConfig(ctx)
	if err != nil {
		log.Fatalf("failed to load AWS config: %v", err)
	}

	// --- Logger (stdout, plus CloudWatch Logs when enabled) ---
	cwLogs, err := awspkg.NewCloudWatchLogsClient(ctx, awsCfg, services.ServiceName, cfg.CloudWatchLogGroup, cfg.CloudWatchEnabled)
	if err != nil {
		log.Printf("CloudWatch logs disabled: %v", err)
		cwLogs = nil
	}
	var zapLogger *zap.Logger
	if cwLogs != nil && cwLogs.IsEnabled() {
		zapLogger, err = logger.InitializeWithWriter(cfg.AppEnv, cwLogs)
	} else {
		zapLogger, err = logger.Initialize(cfg.AppEnv)
	}
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()

	var closers []closer

	// --- Redis (idempotency, product cache, and optionally carts) ---
	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("Redis connection failed", zap.Error(err))
	}
	closers = append(closers, closer{"redis", func(context.Context) error { return redisClient.Close() }})

	cartRepo, repoCloser, err := buildCartRepository(ctx, cfg, awsCfg, redisClient)
	if err != nil {
		zapLogger.Fatal("Cart store init failed", zap.String("store", cfg.CartStore), zap.Error(err))
	}
	if repoCloser != nil {
		closers = append(closers, *repoCloser)
	}
	zapLogger.Info("cart store ready", zap.String("store", cfg.CartStore))

	// --- CloudWatch metrics ---
	metricsClient := awspkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)

	// --- Product catalog ---
	catalog := services.NewCachedCatalog(
		services.NewHTTPProductCatalog(cfg.ProductServiceURL, cfg.ProductTimeout, zapLogger),
		redisClient, cfg.ProductCacheTTL, metricsClient, zapLogger,
	)

	// --- Checkout publisher ---
	publisher, pubCloser, err := buildPublisher(cfg, awsCfg)
	if err != nil {
		zapLogger.Fatal("Checkout publisher init failed", zap.String("transport", cfg.CheckoutTransport), zap.Error(err))
	}
	if pubCloser != nil {
		closers = append(closers, *pubCloser)
	}
	zapLogger.Info("checkout transport ready", zap.String("transport", cfg.CheckoutTransport))

	// --- Reviews database ---
	db, err := database.ConnectPostgres(database.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPassword,
		DBName:   cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSLMode,
		TimeZone: cfg.PostgresTimeZone,
	}, zapLogger, &models.Review{})
	if err != nil {
		zapLogger.Fatal("DB connection failed", zap.Error(err))
	}
	closers = append(closers, closer{"postgres", func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}})

	// --- Dependency injection ---
	cartService := services.NewCartService(
		cartRepo,
		database.NewRedisIdempotencyStore(redisClient),
		catalog,
		publisher,
		metricsClient,
		cfg.IdempotencyTTL,
		zapLogger,
	)
	reviewService := services.NewReviewService(repository.NewGormReviewRepository(db), catalog, metricsClient, zapLogger)

	cartController := controllers.NewCartController(cartService)
	reviewController := controllers.NewReviewController(reviewService)

	// --- HTTP router ---
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	rootCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()

	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(commonmw.RequestLogger(zapLogger))
	r.Use(commonmw.SecurityHeaders())
	r.Use(commonmw.Compression())
	r.Use(commonmw.CORSMiddleware(cfg.AllowedOrigins))
	r.Use(commonmw.RateLimitMiddleware(rootCtx, cfg.RateLimitPerMinute, cfg.RateLimitBurst))
	r.Use(commonmw.MetricsMiddleware(metricsClient, services.ServiceName))
	r.Use(commonmw.Timeout(30 * time.Second))
	r.Use(apperrors.ErrorMiddleware())

	authMiddleware := middleware.AuthMiddleware(auth.NewTokenValidator(cfg.JWTSecret))
	routes.RegisterCartRoutes(r, cartController, authMiddleware)
	routes.RegisterReviewRoutes(r, reviewController, authMiddleware)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": services.ServiceName})
	})

	// --- HTTP server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zapLogger.Info("Storefront service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server shutdown error", zap.Error(err))
	}
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].close(shutdownCtx); err != nil {
			zapLogger.Error("close failed", zap.String("backend", closers[i].name), zap.Error(err))
		}
	}
	zapLogger.Info("Server shutdown complete")
}

func buildCartRepository(ctx context.Context, cfg *config.Config, awsCfg sdkaws.Config, redisClient *redis.Client) (database.CartRepository, *closer, error) {
	switch cfg.CartStore {
	case config.StoreDynamo:
		client := dynamopkg.NewClientFromConfig(awsCfg, cfg.DynamoEndpoint)
		if err := dynamopkg.EnsureTable(ctx, client, cfg.CartDynamoTable, "user_id"); err != nil {
			return nil, nil, err
		}
		return database.NewDynamoCartRepository(client, cfg.CartDynamoTable, cfg.CartTTL), nil, nil

	case config.StoreMongo:
		client, err := database.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		c := &closer{"mongo", func(ctx context.Context) error { return client.Disconnect(ctx) }}
		return database.NewMongoCartRepository(client.Database(cfg.MongoDB)), c, nil

	case config.StoreRedis:
		return database.NewRedisCartRepository(redisClient, cfg.CartTTL), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown cart store %q", cfg.CartStore)
}

func buildPublisher(cfg *config.Config, awsCfg sdkaws.Config) (services.CheckoutPublisher, *closer, error) {
	switch cfg.CheckoutTransport {
	case config.TransportSQS:
		return services.NewSQSCheckoutPublisher(awspkg.NewSQSSender(awsCfg, cfg.CheckoutQueueURL)), nil, nil

	case config.TransportKafka:
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		return producer, &closer{"kafka", func(context.Context) error { return producer.Close() }}, nil

	case config.TransportSNS:
		return services.NewSNSCheckoutPublisher(awspkg.NewSNSClient(awsCfg), cfg.CheckoutSNSTopicARN), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown checkout transport %q", cfg.CheckoutTransport)
}
