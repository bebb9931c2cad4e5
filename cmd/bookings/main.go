package main

import (
	"context"
	"errors"

	"voyago/internal/bookings/handler"
	"voyago/internal/bookings/repository"
	"voyago/internal/bookings/service"
	"voyago/internal/bookings/validator"
	triprepository "voyago/internal/trips/repository"
	"voyago/pkg/app"
	"voyago/pkg/config"
	"voyago/pkg/kafka"
	kafka_config "voyago/pkg/kafka/config"
	kafka_middleware "voyago/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	cfg.Log.Info("Starting Bookings service")

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQ)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware())
	}

	bookingService, sweeper, reconciler := initServices(cfg, producer)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.PaymentOutcomesTopic,
		cfg.PaymentConsumerGroup,
		"", // every delivery is acknowledged, nothing ever reaches a DLQ
		reconciler.MessageHandler(),
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware())
	}

	serverApp := app.NewApplication(cfg)
	serverApp.AddWorker(sweeper.Run)
	serverApp.AddWorker(func(ctx context.Context) {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Error("Payment outcomes consumer stopped", "error", err)
		}
	})
	serverApp.AddCleanup(func() {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})

	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		handler.NewWebhookHandler(reconciler, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config, producer *kafka.Producer) (service.BookingService, *service.Sweeper, *service.Reconciler) {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewEntityLockRepository(cfg)
	tripRepo := triprepository.NewMongoTripRepository(cfg)
	publisher := service.NewKafkaEventPublisher(producer, ServiceName)

	bookingService := service.NewBookingService(
		bookingRepo,
		lockRepo,
		tripRepo,
		bookingValidator,
		publisher,
		cfg,
	)
	sweeper := service.NewSweeper(bookingRepo, bookingService, cfg)
	reconciler := service.NewReconciler(bookingService, cfg)

	cfg.Log.Info("Booking service initialized", "database", cfg.MongoDatabaseName)
	return bookingService, sweeper, reconciler
}
