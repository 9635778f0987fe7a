package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/forgedesk/inventory-service/config"
	"github.com/forgedesk/inventory-service/internal/pkg/broker"
	"github.com/forgedesk/inventory-service/internal/pkg/cache"
	"github.com/forgedesk/inventory-service/internal/pkg/database/postgres"
	"github.com/forgedesk/inventory-service/internal/pkg/logger"

	ledgerH "github.com/forgedesk/inventory-service/internal/ledger/handler"
	ledgerListenerPkg "github.com/forgedesk/inventory-service/internal/ledger/listener"
	ledgerRepoPkg "github.com/forgedesk/inventory-service/internal/ledger/repository"
	ledgerUCPkg "github.com/forgedesk/inventory-service/internal/ledger/usecase"

	resH "github.com/forgedesk/inventory-service/internal/reservation/handler"
	resRepoPkg "github.com/forgedesk/inventory-service/internal/reservation/repository"
	resUCPkg "github.com/forgedesk/inventory-service/internal/reservation/usecase"

	poH "github.com/forgedesk/inventory-service/internal/purchasing/handler"
	poRepoPkg "github.com/forgedesk/inventory-service/internal/purchasing/repository"
	poUCPkg "github.com/forgedesk/inventory-service/internal/purchasing/usecase"

	replH "github.com/forgedesk/inventory-service/internal/replenishment/handler"
	replRepoPkg "github.com/forgedesk/inventory-service/internal/replenishment/repository"
	replUCPkg "github.com/forgedesk/inventory-service/internal/replenishment/usecase"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "dev" || cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

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

	// 4. Initialize Repositories
	ledgerRepo := ledgerRepoPkg.NewPGRepository(db)
	resRepo := resRepoPkg.NewPGRepository(db)
	poRepo := poRepoPkg.NewPGRepository(db)
	replRepo := replRepoPkg.NewPGRepository(db, poRepo)

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

	// 6. Initialize UseCases
	ledgerUC := ledgerUCPkg.NewLedgerUseCase(ledgerRepo, redisClient, appLogger)
	resUC := resUCPkg.NewReservationUseCase(resRepo, redisClient, appLogger)
	poUC := poUCPkg.NewPurchasingUseCase(poRepo, redisClient, appLogger)
	replUC := replUCPkg.NewReplenishmentUseCase(replRepo, cfg.Usage.WindowDays, appLogger)

	// 6.5 Initialize Listeners
	ledgerListener := ledgerListenerPkg.NewLedgerListener(kafkaConsumer, ledgerUC, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go ledgerListener.Start(ctx)

	// 7. Initialize Handlers
	ledgerHandler := ledgerH.NewLedgerHandler(ledgerUC, appLogger)
	resHandler := resH.NewReservationHandler(resUC, appLogger)
	poHandler := poH.NewPurchasingHandler(poUC, appLogger)
	replHandler := replH.NewReplenishmentHandler(replUC, appLogger)

	// 8. Start HTTP Server
	if cfg.Server.AppEnv != "dev" && cfg.Server.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	ledgerHandler.Register(api)
	resHandler.Register(api)
	poHandler.Register(api)
	replHandler.Register(api)

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	server := &http.Server{
		Addr:         port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	appLogger.Info("Starting HTTP server", zap.String("port", port))

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("forced shutdown", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
