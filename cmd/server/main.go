package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/zvMateo/Maikekai-surf/internal/availability"
	"github.com/zvMateo/Maikekai-surf/internal/booking"
	"github.com/zvMateo/Maikekai-surf/internal/cache"
	"github.com/zvMateo/Maikekai-surf/internal/cart"
	"github.com/zvMateo/Maikekai-surf/internal/checkout"
	"github.com/zvMateo/Maikekai-surf/internal/config"
	"github.com/zvMateo/Maikekai-surf/internal/events"
	h "github.com/zvMateo/Maikekai-surf/internal/http"
	"github.com/zvMateo/Maikekai-surf/internal/notify"
	"github.com/zvMateo/Maikekai-surf/internal/payment"
	"github.com/zvMateo/Maikekai-surf/internal/repository"
	"github.com/zvMateo/Maikekai-surf/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Orders, bookings and availability windows live in Postgres.
	cred := &repository.Credentials{
		Host:              cfg.PostgresHost,
		Port:              cfg.PostgresPort,
		User:              cfg.PostgresUser,
		Password:          cfg.PostgresPassword,
		DBName:            cfg.PostgresDBName,
		MigrationsDirPath: cfg.MigrationsDirPath,
	}
	repo, err := repository.NewRepository(cred)
	if err != nil {
		logger.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer repo.Close()
	if err := repo.RunMigrations(cred); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("connected to postgres", zap.String("host", cfg.PostgresHost))

	// Cart storage: MongoDB when configured, in-memory otherwise.
	var cartStorage cart.Storage
	if cfg.MongoURI != "" {
		mongoDB, err := cart.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		defer mongoDB.Client().Disconnect(ctx)
		mongoStorage := cart.NewMongoStorage(mongoDB)
		if err := mongoStorage.CreateIndexes(ctx); err != nil {
			logger.Fatal("failed to create cart indexes", zap.Error(err))
		}
		cartStorage = mongoStorage
		logger.Info("connected to MongoDB")
	} else {
		logger.Warn("MONGO_URI not set, carts are held in memory only")
		cartStorage = cart.NewMemoryStorage()
	}

	var cartCache cache.CartCache = cache.Noop{}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       0,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Fatal("redis connection failed", zap.Error(err))
		}
		cartCache = cache.NewRedisCache(redisClient)
		logger.Info("redis ping succeeded")
	}

	cartService := cart.NewService(cartStorage, cartCache, logger)

	capacitySource := availability.NewBreakerSource(availability.NewPostgresSource(repo.DB()))
	checker := availability.NewChecker(capacitySource, cfg.StrictAvailability, logger)
	orchestrator := booking.NewOrchestrator(checker, cartService, logger)

	gateway := payment.NewStripeGateway(cfg.StripeAPIKey, cfg.StripeWebhookSecret)
	builder := checkout.NewBuilder(gateway, cfg.PublicBaseURL, logger)

	var notifier notify.Notifier = notify.Noop{}
	if cfg.SMTPHost != "" {
		notifier = notify.NewSMTPNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom)
		logger.Info("smtp notifier configured", zap.String("host", cfg.SMTPHost))
	}

	var publisher webhook.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := events.NewProducer(logger, cfg.KafkaBrokers...)
		defer producer.Close()
		publisher = producer

		consumer := events.NewConsumer(cartService, logger, cfg.KafkaBrokers...)
		defer consumer.Close()
		consumerCtx, cancelConsumer := context.WithCancel(ctx)
		defer cancelConsumer()
		go consumer.Run(consumerCtx)
		logger.Info("kafka confirmation events enabled", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	webhookHandler := webhook.NewHandler(gateway, repo, repo, notifier, publisher, logger)

	router := h.NewRouter(&h.RouterConfig{
		CartHandler:     h.NewCartHandler(cartService, orchestrator, logger),
		CheckoutHandler: h.NewCheckoutHandler(builder, logger),
		WebhookHandler:  h.NewWebhookHandler(webhookHandler, logger),
		OrdersHandler:   h.NewOrdersHandler(repo, logger),
		RequestTimeout:  cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(router, "surf-booking"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("booking server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
