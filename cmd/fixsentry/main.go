package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fixsecurity/fixsentry/api"
	"github.com/fixsecurity/fixsentry/internal/anomaly"
	"github.com/fixsecurity/fixsentry/internal/compliance"
	"github.com/fixsecurity/fixsentry/internal/config"
	"github.com/fixsecurity/fixsentry/internal/fix"
	"github.com/fixsecurity/fixsentry/internal/messaging"
	"github.com/fixsecurity/fixsentry/internal/platform"
	"github.com/fixsecurity/fixsentry/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	var producer messaging.Producer = messaging.NopProducer{}
	if cfg.Kafka.Enabled {
		kafkaCfg := messaging.DefaultConfig()
		kafkaCfg.Brokers = cfg.Kafka.Brokers
		producer = messaging.NewKafkaProducer(kafkaCfg, log)
		log.Info("kafka publishing enabled", zap.Strings("brokers", cfg.Kafka.Brokers))
	}

	engine := compliance.NewEngine(log,
		&compliance.BestExecutionRule{},
		&compliance.OrderSizeLimitRule{MaxOrderQty: decimal.NewFromFloat(cfg.Compliance.MaxOrderQty)},
		&compliance.RequiredFieldsRule{},
	)

	baselines := anomaly.NewStore()
	detectorCfg := anomaly.DefaultConfig()
	detectorCfg.VolumeThreshold = cfg.Anomaly.VolumeThreshold
	detectorCfg.MinTypeShare = cfg.Anomaly.MinTypeShare
	detectorCfg.MaxSeqGap = cfg.Anomaly.MaxSeqGap
	detector := anomaly.NewDetector(baselines, detectorCfg, log)

	service := platform.NewService(log, fix.NewDecoder(), engine, detector, producer)
	history := api.NewMessageStore(cfg.History.MaxMessages)
	server := api.NewServer(log, service, baselines, history, cfg.Server.RateLimit)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("starting fixsentry", zap.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	if err := producer.Close(); err != nil {
		log.Error("failed to close producer", zap.Error(err))
	}
	log.Info("stopped")
}
