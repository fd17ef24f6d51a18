package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightdata/config"
	"github.com/Domenick1991/flightdata/internal/bootstrap"
	"github.com/Domenick1991/flightdata/internal/kafka"
	"github.com/Domenick1991/flightdata/internal/logging"
	"github.com/Domenick1991/flightdata/internal/metrics"
	"github.com/Domenick1991/flightdata/internal/service/flights"
	"github.com/gin-gonic/gin"
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

	if cfg.Log.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open flight store", zap.Error(err))
	}
	defer store.Close()

	reg := metrics.NewRegistry()
	opts := []flights.FlightServiceOption{flights.WithMetrics(reg)}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.FlightEventsTopic != "" {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logger.Warn("kafka unreachable, events will be dropped until it recovers", zap.Error(err))
		}
		opts = append(opts, flights.WithEventPublisher(producer, cfg.Kafka.FlightEventsTopic))
	}
	flightService := flights.NewFlightService(store.Repository, logger, opts...)

	router := bootstrap.NewRouter(bootstrap.RouterDeps{
		Flights:    flightService,
		Metrics:    reg,
		Logger:     logger,
		Ping:       store.Ping,
		SwaggerDir: cfg.HTTP.SwaggerDir,
	})

	if err := bootstrap.Run(ctx, cfg, router, logger); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
