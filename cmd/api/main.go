package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/shipment-tracking/internal/api"
	"github.com/example/shipment-tracking/internal/command"
	"github.com/example/shipment-tracking/internal/config"
	"github.com/example/shipment-tracking/internal/infrastructure/kafka"
	"github.com/example/shipment-tracking/internal/infrastructure/store"
	"github.com/example/shipment-tracking/internal/platform/logger"
	"github.com/example/shipment-tracking/internal/platform/metrics"
	"github.com/example/shipment-tracking/internal/query"
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

	metrics.Register()

	log.Info("starting shipment tracking api",
		"port", cfg.Port,
		"store", cfg.StoreBackend,
		"db_driver", cfg.DBDriver,
		"kafka_brokers", cfg.KafkaBrokers,
		"kafka_topic", cfg.KafkaTopic,
	)

	// Initialize store
	var st store.Store
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn("using in-memory store; data is lost on restart")
		st = store.NewMemoryStore()
	default:
		db, err := openPostgres(ctx, cfg, log)
		if err != nil {
			log.Fatal("failed to initialize postgres", "error", err)
		}
		defer db.Close()
		st = store.NewPostgresStore(db)
	}

	// Initialize Kafka producer
	var publisher command.Publisher
	if cfg.KafkaEnabled() {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		async := command.NewAsyncPublisher(producer, cfg.PublishQueueSize, cfg.PublishTimeout, log.With("component", "publisher"))
		defer async.Close()
		publisher = async
	} else {
		log.Info("KAFKA_BROKERS not set; shipment notifications disabled")
	}

	// Initialize handlers
	cmdHandler := command.NewHandler(st, publisher, log.With("component", "command"))
	queryHandler := query.NewHandler(st)

	handlers := api.NewHandlers(cmdHandler, queryHandler, log.With("component", "api"))
	router := api.NewRouter(handlers, api.RouterConfig{
		APIToken: cfg.APIToken,
		Logger:   log.With("component", "http"),
	})

	// Start HTTP server
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server started", "addr", server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// openPostgres connects with retries and applies the schema.
func openPostgres(ctx context.Context, cfg config.Config, log *logger.Logger) (*sql.DB, error) {
	db, err := store.ConnectPostgres(ctx, store.ConnectOptions{
		Driver:  cfg.DBDriver,
		URL:     cfg.DatabaseURL,
		Retries: cfg.ConnectRetries,
		Delay:   cfg.ConnectDelay,
	}, log)
	if err != nil {
		return nil, err
	}
	log.Info("connected to postgres")

	if err := store.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("schema migrated")
	return db, nil
}
