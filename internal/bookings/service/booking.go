package service

import (
	"context"
	"errors"
	"math"
	"net/http"
	"sync"
	"time"
	bookingserrors "voyago/internal/bookings/errors"
	"voyago/internal/bookings/repository"
	"voyago/internal/bookings/validator"
	tripserrors "voyago/internal/trips/errors"
	triprepository "voyago/internal/trips/repository"
	"voyago/pkg/config"
	apperrors "voyago/pkg/errors"
	"voyago/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	Confirm(ctx context.Context, id string, paymentReference string) (*model.Booking, error)
	Expire(ctx context.Context, id string) (bool, error)
	Cancel(ctx context.Context, id string) (*model.CancellationResult, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.EntityLockRepository
	tripRepo  triprepository.TripRepository
	validator *validator.BookingValidator
	publisher EventPublisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.EntityLockRepository,
	tripRepo triprepository.TripRepository,
	validator *validator.BookingValidator,
	publisher EventPublisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		tripRepo:  tripRepo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func errNotPublished() *apperrors.AppError {
	return apperrors.New("NOT_PUBLISHED", "Trip is not open for booking", http.StatusConflict)
}

func errInsufficientSeats() *apperrors.AppError {
	return apperrors.New("INSUFFICIENT_SEATS", "Not enough seats available", http.StatusConflict)
}

func errAlreadyTerminal() *apperrors.AppError {
	return apperrors.New("ALREADY_TERMINAL", "Booking is in a terminal state", http.StatusConflict)
}

// Create reserves seats and inserts a PENDING_PAYMENT booking as one atomic
// unit. The trip lock is taken first; there is no booking lock yet because
// the booking does not exist until the unit commits.
func (s *bookingService) Create(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	if err := s.validator.ValidateRequest(req); err != nil {
		s.cfg.Log.Warn("Booking request validation failed", "error", err)
		return nil, apperrors.Validation("Invalid booking request", map[string]any{"error": err.Error()})
	}

	lockID := repository.TripLockID(req.TripID)
	if _, err := s.lockRepo.Acquire(ctx, lockID); err != nil {
		return nil, s.mapLockError(err)
	}
	defer s.releaseLock(ctx, lockID)

	booking := &model.Booking{
		TripID:         req.TripID,
		UserID:         req.UserID,
		NumSeats:       req.NumSeats,
		State:          model.BookingStatePendingPayment,
		IdempotencyKey: uuid.New().String(),
		ExpiresAt:      time.Now().UTC().Add(s.cfg.BookingTTL).Truncate(time.Millisecond),
	}

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		trip, err := s.tripRepo.FindByID(sessCtx, req.TripID)
		if err != nil {
			return s.mapTripError(err, req.TripID)
		}

		if !trip.IsPublished() {
			return errNotPublished()
		}

		reserved, err := s.tripRepo.Reserve(sessCtx, req.TripID, req.NumSeats)
		if err != nil {
			return apperrors.Internal("Failed to reserve seats", err)
		}
		if !reserved {
			return errInsufficientSeats()
		}

		booking.PriceAtBooking = round2(trip.PricePerSeat * float64(req.NumSeats))

		if err := s.repo.Create(sessCtx, booking); err != nil {
			if errors.Is(err, bookingserrors.ErrDuplicateKey) {
				return apperrors.Conflict("Idempotency key already in use")
			}
			return apperrors.Internal("Failed to create booking", err)
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "trip_id", req.TripID, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"trip_id", booking.TripID,
		"user_id", booking.UserID,
		"num_seats", booking.NumSeats,
		"expires_at", booking.ExpiresAt,
	)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapBookingError(err, id)
	}

	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

// Confirm moves a pending booking to CONFIRMED. A booking whose payment
// window already closed is expired instead; late success never confirms.
func (s *bookingService) Confirm(ctx context.Context, id string, paymentReference string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	lockID := repository.BookingLockID(id)
	if _, err := s.lockRepo.Acquire(ctx, lockID); err != nil {
		return nil, s.mapLockError(err)
	}
	defer s.releaseLock(ctx, lockID)

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapBookingError(err, id)
	}

	if booking.State != model.BookingStatePendingPayment {
		return nil, errAlreadyTerminal()
	}

	if !time.Now().Before(booking.ExpiresAt) {
		if _, err := s.expireLocked(ctx, booking); err != nil {
			s.cfg.Log.Error("Failed to expire overdue booking on confirm", "id", id, "error", err)
		}
		return nil, errAlreadyTerminal()
	}

	confirmed, err := s.repo.SetConfirmed(ctx, id, paymentReference)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStateChanged) {
			return nil, errAlreadyTerminal()
		}
		return nil, s.mapBookingError(err, id)
	}

	s.cfg.Log.Info("Booking confirmed", "id", id, "payment_reference", paymentReference)
	publishEvent(s.cfg.Log, s.publisher, newBookingEvent(model.EventBookingConfirmed, confirmed, 0))

	return confirmed, nil
}

// Expire moves a pending booking to EXPIRED and returns its seats to the
// trip. Returns false when the booking already left PENDING_PAYMENT, which
// is not an error: someone else resolved it first.
func (s *bookingService) Expire(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	lockID := repository.BookingLockID(id)
	if _, err := s.lockRepo.Acquire(ctx, lockID); err != nil {
		return false, s.mapLockError(err)
	}
	defer s.releaseLock(ctx, lockID)

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return false, s.mapBookingError(err, id)
	}

	if booking.State != model.BookingStatePendingPayment {
		return false, nil
	}

	return s.expireLocked(ctx, booking)
}

// expireLocked applies the expire transition. The caller must hold the
// booking lock.
func (s *bookingService) expireLocked(ctx context.Context, booking *model.Booking) (bool, error) {
	var expired *model.Booking

	err := s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var err error
		expired, err = s.repo.SetExpired(sessCtx, booking.ID)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrStateChanged) {
				return err
			}
			return apperrors.Internal("Failed to expire booking", err)
		}

		if err := s.tripRepo.Release(sessCtx, booking.TripID, booking.NumSeats); err != nil {
			return apperrors.Internal("Failed to release seats", err)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, bookingserrors.ErrStateChanged) {
			return false, nil
		}
		s.cfg.Log.Error("Failed to expire booking", "id", booking.ID, "error", err)
		return false, err
	}

	s.cfg.Log.Info("Booking expired", "id", booking.ID, "trip_id", booking.TripID, "num_seats", booking.NumSeats)
	publishEvent(s.cfg.Log, s.publisher, newBookingEvent(model.EventBookingExpired, expired, 0))

	return true, nil
}

// Cancel moves a pending or confirmed booking to CANCELLED. The refund and
// the seat release depend on the trip's policy as persisted right now, not
// on a snapshot from creation time.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.CancellationResult, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	lockID := repository.BookingLockID(id)
	if _, err := s.lockRepo.Acquire(ctx, lockID); err != nil {
		return nil, s.mapLockError(err)
	}
	defer s.releaseLock(ctx, lockID)

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapBookingError(err, id)
	}

	if booking.IsTerminal() {
		return nil, errAlreadyTerminal()
	}

	trip, err := s.tripRepo.FindByID(ctx, booking.TripID)
	if err != nil {
		return nil, s.mapTripError(err, booking.TripID)
	}

	days := daysUntilTrip(trip.StartDate, time.Now())
	refundable := days > trip.RefundableUntilDaysBefore

	var refund float64
	if refundable {
		refund = round2(booking.PriceAtBooking * (1 - trip.CancellationFeePercent/100))
	}

	var cancelled *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		var err error
		cancelled, err = s.repo.SetCancelled(sessCtx, id, booking.State, refund)
		if err != nil {
			if errors.Is(err, bookingserrors.ErrStateChanged) {
				return errAlreadyTerminal()
			}
			return apperrors.Internal("Failed to cancel booking", err)
		}

		// Seats reopen only before the refund cutoff. Close to departure
		// the inventory stays allocated even though the booking is gone.
		if refundable {
			if err := s.tripRepo.Release(sessCtx, booking.TripID, booking.NumSeats); err != nil {
				return apperrors.Internal("Failed to release seats", err)
			}
		}

		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking cancelled",
		"id", id,
		"refund_amount", refund,
		"is_refundable", refundable,
		"days_until_trip", days,
	)
	publishEvent(s.cfg.Log, s.publisher, newBookingEvent(model.EventBookingCancelled, cancelled, refund))

	return &model.CancellationResult{
		Booking:       cancelled,
		RefundAmount:  refund,
		IsRefundable:  refundable,
		DaysUntilTrip: days,
	}, nil
}

// --- Helpers ---

func (s *bookingService) releaseLock(ctx context.Context, lockID string) {
	if err := s.lockRepo.Release(ctx, lockID); err != nil {
		s.cfg.Log.Warn("Failed to release entity lock", "lock_id", lockID, "error", err)
	}
}

func (s *bookingService) mapLockError(err error) error {
	if errors.Is(err, bookingserrors.ErrLockNotAcquired) {
		return apperrors.Conflict("Entity is busy with another operation. Please try again.")
	}
	return apperrors.Internal("Failed to acquire entity lock", err)
}

func (s *bookingService) mapBookingError(err error, id string) error {
	if errors.Is(err, bookingserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Booking", id)
	}
	if errors.Is(err, bookingserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid booking ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Failed to retrieve booking", err)
}

func (s *bookingService) mapTripError(err error, id string) error {
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

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// daysUntilTrip returns the number of whole days between now and the trip
// start, rounded down. A trip starting in 23 hours is 0 days away.
func daysUntilTrip(startDate, now time.Time) int {
	return int(math.Floor(startDate.Sub(now).Hours() / 24))
}
