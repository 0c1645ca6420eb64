package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/JustJirka/P6PP/internal/config"
	kafka_handler "github.com/JustJirka/P6PP/internal/handler/kafka"
	"github.com/JustJirka/P6PP/internal/infrastructure/database"
	kafka_infra "github.com/JustJirka/P6PP/internal/infrastructure/kafka"
	"github.com/JustJirka/P6PP/internal/repository/notifications_repo"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	appLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	appLogger.Info("Notification service starting...")

	dbConfig := database.DBConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.Name,
		SSLMode:  cfg.DBConfig.SSLMode,
	}

	var db *sql.DB
	maxRetries := 10
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = database.NewPostgresDB(dbConfig)
		if err == nil {
			appLogger.Info("Connected to PostgreSQL database.")
			break
		}
		appLogger.Warn(fmt.Sprintf("Failed to connect to database (attempt %d/%d): %v. Retrying in %s...", i+1, maxRetries, err, retryDelay))
		time.Sleep(retryDelay)
	}
	if db == nil {
		appLogger.Fatal("Could not connect to database after multiple retries. Exiting.", zap.Error(err))
	}
	defer db.Close()

	// Both binaries run migrations, so either one can come up first
	// against a fresh database.
	appLogger.Info("Running database migrations...")
	m, err := migrate.New(cfg.MigrationsPath, cfg.GetDBMigrationConnectionString())
	if err != nil {
		appLogger.Fatal("Failed to create migrate instance", zap.Error(err))
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	appLogger.Info("Database migrations completed.")

	notificationRepo := notifications_repo.NewNotificationLogRepository(db)

	handler := kafka_handler.PaymentEventHandler(
		notificationRepo,
		appLogger.With(zap.String("component", "PaymentEventHandler")),
	)

	consumer := kafka_infra.NewConsumer(
		cfg.GetKafkaBrokers(),
		cfg.KafkaPaymentEventsTopic,
		cfg.KafkaConsumerGroup,
		handler,
		appLogger.With(zap.String("component", "PaymentEventsConsumer")),
	)

	ctxMain, cancelMain := context.WithCancel(context.Background())

	go func() {
		if err := consumer.Consume(ctxMain); err != nil && err != context.Canceled {
			appLogger.Error("Payment events consumer failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	appLogger.Info("Shutting down notification service...")

	cancelMain()
	if err := consumer.Close(); err != nil {
		appLogger.Error("Error closing payment events consumer", zap.Error(err))
	}
	appLogger.Info("Notification service shut down.")
}
