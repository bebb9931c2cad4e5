package service

import (
	"context"
	"errors"
	"sync"
	tripserrors "voyago/internal/trips/errors"
	"voyago/internal/trips/repository"
	"voyago/internal/trips/validator"
	"voyago/pkg/config"
	apperrors "voyago/pkg/errors"
	"voyago/pkg/model"
)

type TripService interface {
	Create(ctx context.Context, trip *model.Trip) error
	GetByID(ctx context.Context, id string) (*model.Trip, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Trip, int64, error)
	Update(ctx context.Context, id string, updates *model.TripUpdate) (*model.Trip, error)
	Publish(ctx context.Context, id string) (*model.Trip, error)
}

type tripService struct {
	repo      repository.TripRepository
	validator *validator.TripValidator
	cfg       *config.Config
}

func NewTripService(
	repo repository.TripRepository,
	validator *validator.TripValidator,
	cfg *config.Config,
) TripService {
	return &tripService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *tripService) Create(ctx context.Context, trip *model.Trip) error {
	if trip.Status == "" {
		trip.Status = model.TripStatusDraft
	}
	trip.AvailableSeats = trip.MaxCapacity

	if err := s.validator.Validate(trip); err != nil {
		s.cfg.Log.Warn("Trip validation failed", "error", err)
		return apperrors.Validation("Trip validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, trip); err != nil {
		s.cfg.Log.Error("Failed to create trip", "error", err)
		return apperrors.Internal("Failed to create trip", err)
	}

	s.cfg.Log.Info("Trip created successfully",
		"id", trip.ID,
		"title", trip.Title,
		"max_capacity", trip.MaxCapacity,
		"start_date", trip.StartDate,
	)
	return nil
}

func (s *tripService) GetByID(ctx context.Context, id string) (*model.Trip, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Trip ID cannot be empty")
	}

	trip, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapError(err, id)
	}

	return trip, nil
}

func (s *tripService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Trip, int64, error) {
	var count int64
	var trips []*model.Trip
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count trips", "error", errCount)
			errCount = apperrors.Internal("Failed to count trips", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		trips, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list trips", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve trips", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return trips, count, nil
}

func (s *tripService) Update(ctx context.Context, id string, updates *model.TripUpdate) (*model.Trip, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Trip ID cannot be empty")
	}

	if err := s.validator.ValidateUpdate(updates); err != nil {
		s.cfg.Log.Warn("Trip update validation failed", "id", id, "error", err)
		return nil, apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	trip, err := s.repo.Update(ctx, id, updates)
	if err != nil {
		s.cfg.Log.Error("Failed to update trip", "id", id, "error", err)
		return nil, s.mapError(err, id)
	}

	s.cfg.Log.Info("Trip updated successfully", "id", id)
	return trip, nil
}

func (s *tripService) Publish(ctx context.Context, id string) (*model.Trip, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Trip ID cannot be empty")
	}

	trip, err := s.repo.Publish(ctx, id)
	if err != nil {
		s.cfg.Log.Error("Failed to publish trip", "id", id, "error", err)
		return nil, s.mapError(err, id)
	}

	s.cfg.Log.Info("Trip published", "id", id, "title", trip.Title)
	return trip, nil
}

func (s *tripService) mapError(err error, id string) error {
	if errors.Is(err, tripserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Trip", id)
	}
	if errors.Is(err, tripserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid trip ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Failed to retrieve trip", err)
}
