package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"hris/internal/employee"
	"hris/internal/events"
	"hris/internal/messaging/kafka"
	"hris/internal/messaging/kafka/consumer"
	"hris/internal/rbac"
	"hris/internal/rbac/infra"
	"hris/internal/shared/connection"
	"hris/internal/shared/sequence"
	"hris/internal/user"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// RunConsumer re-warms the employee options cache whenever an
// employee_created event lands on the lifecycle topic.
func RunConsumer() error {
	logger := zap.L().Named("app.consumer")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	kafkaBroker := os.Getenv("KAFKA_BROKER")
	if kafkaBroker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}

	userRepo := user.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(sqlDB)
	numberGen := sequence.NewEmployeeNumberGenerator(gormDB)
	rbacService := rbac.NewService(rbac.NewRepository(gormDB), enforcer, redisClient)
	employeeService := employee.NewService(sqlDB, employeeRepo, userRepo, numberGen, outboxRepo, rbacService, redisClient)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:        []string{kafkaBroker},
		Topic:          events.EmployeeCreatedTopic,
		GroupID:        "hris-employee-options",
		CommitInterval: 0,
		StartOffset:    kafkago.FirstOffset,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go consumer.ConsumeEmployeeLifecycle(ctx, reader, employeeService, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("consumer shutting down")
	cancel()

	return nil
}
