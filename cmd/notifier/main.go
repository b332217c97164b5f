package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/example/shipment-tracking/internal/config"
	"github.com/example/shipment-tracking/internal/infrastructure/kafka"
	"github.com/example/shipment-tracking/internal/notification"
	"github.com/example/shipment-tracking/internal/platform/logger"
	"github.com/example/shipment-tracking/internal/platform/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if !cfg.KafkaEnabled() {
		log.Fatal("KAFKA_BROKERS is required for the notifier")
	}

	metrics.Register()

	log.Info("starting shipment notifier",
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_topic", cfg.KafkaTopic,
		"group", cfg.KafkaGroup,
	)

	handler := notification.NewHandler(log.With("component", "notifier"))

	consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroup, log)
	defer consumer.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              cfg.NotifierMetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("metrics server started", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", "error", err)
		}
	}()

	// Start consuming
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Consume(ctx, handler.HandleEvent); err != nil && ctx.Err() == nil {
			log.Error("consumer stopped", "error", err)
			cancel()
		}
	}()

	// Wait for shutdown signal or consumer failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	log.Info("shutting down")
	cancel()
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}
