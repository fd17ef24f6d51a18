package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightdata/config"
	"github.com/Domenick1991/flightdata/internal/audit"
	"github.com/Domenick1991/flightdata/internal/kafka"
	"github.com/Domenick1991/flightdata/internal/logging"
	"go.uber.org/zap"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.FlightEventsTopic == "" {
		logger.Fatal("kafka brokers and flight_events_topic are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.FlightEventsTopic)
	defer consumer.Close()

	recorder := audit.NewRecorder(logger)

	logger.Info("audit worker started",
		zap.String("topic", cfg.Kafka.FlightEventsTopic),
		zap.String("group_id", cfg.Kafka.GroupID),
	)
	if err := consumer.Consume(ctx, recorder.HandleMessage); err != nil {
		logger.Error("consumer stopped", zap.Error(err))
		return
	}
	logger.Info("audit worker stopped")
}
