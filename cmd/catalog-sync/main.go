package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	calendarrepo "washbook/internal/calendar/repository"
	calendarservice "washbook/internal/calendar/service"
	calendarvalidator "washbook/internal/calendar/validator"
	"washbook/internal/catalog/consumer"
	catalogrepo "washbook/internal/catalog/repository"
	catalogservice "washbook/internal/catalog/service"
	"washbook/pkg/config"
	"washbook/pkg/kafka"
	kafka_config "washbook/pkg/kafka/config"
	kafka_middleware "washbook/pkg/kafka/middleware"
)

const ServiceName = "catalog-sync"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	calendarService := calendarservice.NewCalendarService(
		calendarrepo.NewMongoProviderRepository(cfg),
		calendarvalidator.NewCalendarValidator(cfg.Log),
		cfg,
	)
	catalogService := catalogservice.NewCatalogService(catalogrepo.NewMongoServiceRepository(cfg), cfg)
	catalogSync := consumer.NewCatalogSync(calendarService, catalogService, cfg.Log)

	c, err := kafka.NewConsumer(kafkaCfg, cfg.CatalogEventsTopic, cfg.CatalogConsumerGroup, cfg.CatalogDLQTopic, catalogSync.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create catalog consumer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		c.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		c.Use(metrics.Consumer())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go metrics.Report(ctx, cfg.Log, time.Minute)

	cfg.Log.Info("Starting catalog sync consumer",
		"topic", cfg.CatalogEventsTopic,
		"group", cfg.CatalogConsumerGroup,
		"dlq", cfg.CatalogDLQTopic,
	)
	if err := c.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Catalog consumer stopped", "error", err)
	}

	if err := c.Close(); err != nil {
		cfg.Log.Error("Failed to close catalog consumer", "error", err)
	}
	cfg.Log.Info("Catalog sync consumer stopped")
}
