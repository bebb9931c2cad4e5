package service

import (
	"context"
	"testing"
	"time"

	tripserrors "voyago/internal/trips/errors"
	"voyago/internal/trips/validator"
	"voyago/pkg/config"
	mongotx "voyago/pkg/db/mongo"
	apperrors "voyago/pkg/errors"
	"voyago/pkg/logger"
	"voyago/pkg/model"
)

const testTripID = "507f1f77bcf86cd799439011"

// Mock repository for testing
type mockTripRepository struct {
	createFunc   func(ctx context.Context, trip *model.Trip) error
	findByIDFunc func(ctx context.Context, id string) (*model.Trip, error)
	findAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Trip, error)
	updateFunc   func(ctx context.Context, id string, update *model.TripUpdate) (*model.Trip, error)
	publishFunc  func(ctx context.Context, id string) (*model.Trip, error)
	reserveFunc  func(ctx context.Context, id string, numSeats int) (bool, error)
	releaseFunc  func(ctx context.Context, id string, numSeats int) error
	countFunc    func(ctx context.Context) (int64, error)
}

func (m *mockTripRepository) Create(ctx context.Context, trip *model.Trip) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, trip)
	}
	trip.ID = testTripID
	return nil
}

func (m *mockTripRepository) FindByID(ctx context.Context, id string) (*model.Trip, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, tripserrors.ErrNotFound
}

func (m *mockTripRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Trip, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return []*model.Trip{}, nil
}

func (m *mockTripRepository) Update(ctx context.Context, id string, update *model.TripUpdate) (*model.Trip, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, update)
	}
	return nil, tripserrors.ErrNotFound
}

func (m *mockTripRepository) Publish(ctx context.Context, id string) (*model.Trip, error) {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, id)
	}
	return nil, tripserrors.ErrNotFound
}

func (m *mockTripRepository) Reserve(ctx context.Context, id string, numSeats int) (bool, error) {
	if m.reserveFunc != nil {
		return m.reserveFunc(ctx, id, numSeats)
	}
	return true, nil
}

func (m *mockTripRepository) Release(ctx context.Context, id string, numSeats int) error {
	if m.releaseFunc != nil {
		return m.releaseFunc(ctx, id, numSeats)
	}
	return nil
}

func (m *mockTripRepository) Count(ctx context.Context) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx)
	}
	return 0, nil
}

func (m *mockTripRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

func newTestService(repo *mockTripRepository) TripService {
	cfg := &config.Config{
		Log: logger.New(logger.Config{
			Level:   logger.ERROR,
			Format:  logger.JSON,
			Service: "test",
		}),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}
	return NewTripService(repo, validator.NewTripValidator(cfg.Log), cfg)
}

func newTrip() *model.Trip {
	return &model.Trip{
		Title:                     "Douro Valley",
		StartDate:                 time.Now().Add(30 * 24 * time.Hour),
		MaxCapacity:               12,
		PricePerSeat:              250,
		CancellationFeePercent:    10,
		RefundableUntilDaysBefore: 7,
	}
}

func TestCreate_DefaultsToDraftWithFullInventory(t *testing.T) {
	var created *model.Trip
	repo := &mockTripRepository{
		createFunc: func(ctx context.Context, trip *model.Trip) error {
			trip.ID = testTripID
			created = trip
			return nil
		},
	}
	service := newTestService(repo)

	trip := newTrip()
	if err := service.Create(context.Background(), trip); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created.Status != model.TripStatusDraft {
		t.Errorf("expected status DRAFT, got %s", created.Status)
	}
	if created.AvailableSeats != created.MaxCapacity {
		t.Errorf("expected available seats %d, got %d", created.MaxCapacity, created.AvailableSeats)
	}
}

func TestCreate_ValidationFailure(t *testing.T) {
	service := newTestService(&mockTripRepository{})

	trip := newTrip()
	trip.PricePerSeat = 0

	err := service.Create(context.Background(), trip)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidation, appErr.Code)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	service := newTestService(&mockTripRepository{})

	_, err := service.GetByID(context.Background(), testTripID)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.CodeNotFound {
		t.Errorf("expected code %s, got %s", apperrors.CodeNotFound, appErr.Code)
	}
}

func TestGetAll(t *testing.T) {
	repo := &mockTripRepository{
		countFunc: func(ctx context.Context) (int64, error) {
			return 25, nil
		},
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Trip, error) {
			return []*model.Trip{{ID: testTripID, Title: "Douro Valley"}}, nil
		},
	}
	service := newTestService(repo)

	trips, count, err := service.GetAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 25 {
		t.Errorf("expected count 25, got %d", count)
	}
	if len(trips) != 1 {
		t.Errorf("expected 1 trip, got %d", len(trips))
	}
}

func TestPublish(t *testing.T) {
	repo := &mockTripRepository{
		publishFunc: func(ctx context.Context, id string) (*model.Trip, error) {
			trip := newTrip()
			trip.ID = id
			trip.Status = model.TripStatusPublished
			return trip, nil
		},
	}
	service := newTestService(repo)

	trip, err := service.Publish(context.Background(), testTripID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !trip.IsPublished() {
		t.Errorf("expected trip to be published, got status %s", trip.Status)
	}
}

func TestUpdate_ValidatesInput(t *testing.T) {
	service := newTestService(&mockTripRepository{})

	badPrice := -10.0
	_, err := service.Update(context.Background(), testTripID, &model.TripUpdate{PricePerSeat: &badPrice})
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected code %s, got %s", apperrors.CodeValidation, appErr.Code)
	}
}
