package main

import (
	"context"
	"time"

	"washbook/internal/availability"
	availabilityhandler "washbook/internal/availability/handler"
	bookinghandler "washbook/internal/bookings/handler"
	"washbook/internal/bookings/lock"
	bookingrepo "washbook/internal/bookings/repository"
	bookingservice "washbook/internal/bookings/service"
	bookingvalidator "washbook/internal/bookings/validator"
	calendarhandler "washbook/internal/calendar/handler"
	calendarrepo "washbook/internal/calendar/repository"
	calendarservice "washbook/internal/calendar/service"
	calendarvalidator "washbook/internal/calendar/validator"
	catalogrepo "washbook/internal/catalog/repository"
	catalogservice "washbook/internal/catalog/service"
	"washbook/internal/events"
	statshandler "washbook/internal/stats/handler"
	statsservice "washbook/internal/stats/service"
	"washbook/pkg/app"
	"washbook/pkg/config"
	"washbook/pkg/contracts"
	"washbook/pkg/kafka"
	kafka_config "washbook/pkg/kafka/config"
	kafka_middleware "washbook/pkg/kafka/middleware"
)

const ServiceName = "scheduling"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting Scheduling service")
	serverApp := app.NewApplication(cfg)

	publisher := initPublisher(cfg, serverApp)
	handlers := initHandlers(cfg, publisher)

	var cachePing func(ctx context.Context) error
	if cfg.Client.Redis != nil {
		cachePing = func(ctx context.Context) error {
			return cfg.Client.Redis.Ping(ctx).Err()
		}
	}
	serverApp.SetApp(app.NewHealthHandler(cfg.Client.Mongo, cachePing, cfg.Log), handlers...)
	serverApp.Run()
}

func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
		return events.NewNoopPublisher(cfg.Log)
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(metrics.Producer())
	}

	ctx, stopReport := context.WithCancel(context.Background())
	go metrics.Report(ctx, cfg.Log, time.Minute)

	serverApp.OnShutdown(func() {
		stopReport()
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	cfg.Log.Info("Booking events publisher initialized", "topic", producer.Topic())
	return events.NewKafkaPublisher(producer, ServiceName)
}

func initHandlers(cfg *config.Config, publisher events.Publisher) []contracts.Handler {
	providerRepo := calendarrepo.NewMongoProviderRepository(cfg)
	serviceRepo := catalogrepo.NewMongoServiceRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewBookingLockRepository(cfg)

	calendarService := calendarservice.NewCalendarService(
		providerRepo,
		calendarvalidator.NewCalendarValidator(cfg.Log),
		cfg,
	)
	catalogService := catalogservice.NewCatalogService(serviceRepo, cfg)

	resolver := availability.NewResolver(calendarService, catalogService, bookingRepo, cfg)

	locker := lock.NewLocker(lockRepo, cfg.BookingLockTTL, cfg.BookingLockWait, cfg.Log)
	bookingService := bookingservice.NewBookingService(
		bookingRepo,
		locker,
		calendarService,
		catalogService,
		publisher,
		bookingvalidator.NewBookingValidator(cfg.Log),
		cfg,
	)

	statsService := statsservice.NewStatsService(bookingRepo, cfg)

	cfg.Log.Info("Scheduling services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		calendarhandler.NewCalendarHandler(calendarService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(resolver, cfg.Log),
		bookinghandler.NewBookingHandler(bookingService, cfg.Log),
		statshandler.NewStatsHandler(statsService, cfg.Log),
	}
}
