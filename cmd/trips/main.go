package main

import (
	"voyago/internal/trips/handler"
	"voyago/internal/trips/repository"
	"voyago/internal/trips/service"
	"voyago/internal/trips/validator"
	"voyago/pkg/app"
	"voyago/pkg/config"
)

const ServiceName = "trips"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Trips service")

	tripService := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewTripHandler(tripService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.TripService {
	tripValidator := validator.NewTripValidator(cfg.Log)
	tripRepo := repository.NewMongoTripRepository(cfg)
	tripService := service.NewTripService(tripRepo, tripValidator, cfg)

	cfg.Log.Info("Trip service initialized", "database", cfg.MongoDatabaseName)
	return tripService
}
