package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tuanvumaihuynh/planner-shop/internal/config"
	"github.com/tuanvumaihuynh/planner-shop/internal/event"
	"github.com/tuanvumaihuynh/planner-shop/internal/http"
	"github.com/tuanvumaihuynh/planner-shop/internal/importer"
	"github.com/tuanvumaihuynh/planner-shop/internal/importfile"
	"github.com/tuanvumaihuynh/planner-shop/internal/log"
	"github.com/tuanvumaihuynh/planner-shop/internal/relay"
	"github.com/tuanvumaihuynh/planner-shop/internal/repository"
	"github.com/tuanvumaihuynh/planner-shop/internal/service"
	"github.com/tuanvumaihuynh/planner-shop/internal/storage/db"
	"github.com/tuanvumaihuynh/planner-shop/internal/storage/disk"
	"github.com/tuanvumaihuynh/planner-shop/internal/storage/mq"
	"github.com/tuanvumaihuynh/planner-shop/internal/telemetry"
	"github.com/tuanvumaihuynh/planner-shop/pkg/cmdutil"
	"github.com/tuanvumaihuynh/planner-shop/pkg/validator"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("error running standalone application: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	time.Local = time.UTC

	type Config struct {
		Log      config.Log
		Postgres config.Postgres
		HTTP     config.HTTP
		Relay    config.Relay
		Kafka    config.Kafka
		Otel     config.Otel
		Storage  config.Storage
		Import   config.Import
	}
	cfg, err := config.New[Config]()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	logger := log.NewSlogLogger(cfg.Log)

	cleanupTracer, err := telemetry.InitTracer(ctx, cfg.Otel)
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	defer func() {
		if err := cleanupTracer(ctx); err != nil {
			logger.ErrorContext(ctx, "error cleaning up tracer", slog.Any("error", err))
		}
	}()

	pgxPool, err := db.NewPgxPool(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("error creating pgx pool: %w", err)
	}
	defer pgxPool.Close()

	dbClient := db.NewClient(pgxPool)

	storageDisk, err := disk.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("error creating storage disk: %w", err)
	}

	kafkaProducer, err := mq.NewKafkaProducer(ctx, cfg.Kafka)
	if err != nil {
		return fmt.Errorf("error creating kafka producer: %w", err)
	}
	defer kafkaProducer.Close()

	kafkaConsumer, err := mq.NewKafkaConsumer(ctx, cfg.Kafka, logger)
	if err != nil {
		return fmt.Errorf("error creating kafka consumer: %w", err)
	}
	defer kafkaConsumer.Close()

	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("error creating validator: %w", err)
	}

	productRepository := repository.NewProductRepository(dbClient)
	categoryRepository := repository.NewCategoryRepository(dbClient)
	outboxMsgRepository := repository.NewOutboxMsgRepository(dbClient)

	productService := service.NewProductService(logger, dbClient, storageDisk, cfg.Storage.ImageDir, v, productRepository, outboxMsgRepository)
	categoryService := service.NewCategoryService(v, categoryRepository)

	importFiles := importfile.NewStore(logger, storageDisk, cfg.Storage.ImportDir)
	productImporter := importer.New(logger, productService, importFiles, importer.Options{
		Policy: importer.Policy{
			RequirePositivePrice:   cfg.Import.RequirePositivePrice,
			RequireAlphanumericSku: cfg.Import.RequireAlphanumericSku,
		},
		KeepInvalidFiles: cfg.Import.KeepInvalidFiles,
	})

	interruptChan := cmdutil.InterruptChan()
	var wg sync.WaitGroup

	wg.Go(func() {
		svc := event.New(logger, kafkaConsumer)
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running event service: %w", err))
		}
		logger.InfoContext(ctx, "event service started")

		<-interruptChan

		logger.InfoContext(ctx, "event service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "event service is stopped")
	})

	wg.Go(func() {
		svc := http.New(cfg.HTTP, logger, prometheus.DefaultRegisterer, prometheus.DefaultGatherer, http.Deps{
			ProductSvc:  productService,
			CategorySvc: categoryService,
			Importer:    productImporter,
			ImportFiles: importFiles,
			Health:      dbClient,
		})
		cleanup, err := svc.Run(ctx)
		if err != nil {
			panic(fmt.Errorf("error running http service: %w", err))
		}

		logger.InfoContext(ctx, "http service started", slog.String("address", fmt.Sprintf(":%d", cfg.HTTP.Port)))

		<-interruptChan

		logger.InfoContext(ctx, "http service is shutting down")
		if err := cleanup(ctx); err != nil {
			logger.ErrorContext(ctx, "error shutting down http service", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "http service is stopped")
	})

	wg.Go(func() {
		svc := relay.NewService(cfg.Relay, logger, dbClient, outboxMsgRepository, kafkaProducer)
		cleanup := svc.Run(ctx)
		logger.InfoContext(ctx, "relay service started")

		<-interruptChan

		logger.InfoContext(ctx, "relay service is shutting down")
		cleanup()

		logger.InfoContext(ctx, "relay service is stopped")
	})

	wg.Wait()

	return nil
}
