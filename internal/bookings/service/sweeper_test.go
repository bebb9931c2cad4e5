package service

import (
	"context"
	"testing"
	"time"

	apperrors "voyago/pkg/errors"
	"voyago/pkg/model"
)

func overdueBookings(ids ...string) []*model.Booking {
	bookings := make([]*model.Booking, 0, len(ids))
	for _, id := range ids {
		bookings = append(bookings, &model.Booking{
			ID:        id,
			TripID:    testTripID,
			State:     model.BookingStatePendingPayment,
			ExpiresAt: time.Now().Add(-time.Hour),
		})
	}
	return bookings
}

func TestSweepOnce_ExpiresBatch(t *testing.T) {
	repo := &mockBookingRepository{
		findExpiredFunc: func(ctx context.Context, now time.Time, limit int) ([]*model.Booking, error) {
			return overdueBookings("bk-1", "bk-2", "bk-3"), nil
		},
	}
	bookings := &mockBookingService{}
	sweeper := NewSweeper(repo, bookings, newTestConfig())

	expired, err := sweeper.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expired != 3 {
		t.Errorf("expected 3 expired, got %d", expired)
	}
	if bookings.expireCalls != 3 {
		t.Errorf("expected 3 expire calls, got %d", bookings.expireCalls)
	}
}

func TestSweepOnce_OneFailureDoesNotAbortBatch(t *testing.T) {
	repo := &mockBookingRepository{
		findExpiredFunc: func(ctx context.Context, now time.Time, limit int) ([]*model.Booking, error) {
			return overdueBookings("bk-1", "bk-2", "bk-3"), nil
		},
	}
	bookings := &mockBookingService{
		expireFunc: func(ctx context.Context, id string) (bool, error) {
			if id == "bk-2" {
				return false, apperrors.Internal("transition failed", nil)
			}
			return true, nil
		},
	}
	sweeper := NewSweeper(repo, bookings, newTestConfig())

	expired, err := sweeper.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expired != 2 {
		t.Errorf("expected 2 expired, got %d", expired)
	}
	if bookings.expireCalls != 3 {
		t.Errorf("expected the full batch to be attempted, got %d calls", bookings.expireCalls)
	}
}

func TestSweepOnce_SecondPassFindsNothing(t *testing.T) {
	pending := overdueBookings("bk-1", "bk-2")
	repo := &mockBookingRepository{
		findExpiredFunc: func(ctx context.Context, now time.Time, limit int) ([]*model.Booking, error) {
			remaining := make([]*model.Booking, 0, len(pending))
			for _, b := range pending {
				if b.State == model.BookingStatePendingPayment {
					remaining = append(remaining, b)
				}
			}
			return remaining, nil
		},
	}
	bookings := &mockBookingService{
		expireFunc: func(ctx context.Context, id string) (bool, error) {
			for _, b := range pending {
				if b.ID == id && b.State == model.BookingStatePendingPayment {
					b.State = model.BookingStateExpired
					return true, nil
				}
			}
			return false, nil
		},
	}
	sweeper := NewSweeper(repo, bookings, newTestConfig())

	first, err := sweeper.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error on first pass: %v", err)
	}
	if first != 2 {
		t.Errorf("expected 2 expired on first pass, got %d", first)
	}

	second, err := sweeper.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error on second pass: %v", err)
	}
	if second != 0 {
		t.Errorf("expected 0 expired on second pass, got %d", second)
	}
}

func TestSweepOnce_ConcurrentResolutionCountsOnce(t *testing.T) {
	repo := &mockBookingRepository{
		findExpiredFunc: func(ctx context.Context, now time.Time, limit int) ([]*model.Booking, error) {
			return overdueBookings("bk-1", "bk-2"), nil
		},
	}
	bookings := &mockBookingService{
		expireFunc: func(ctx context.Context, id string) (bool, error) {
			// bk-2 was resolved by the webhook between the listing and
			// the expire attempt.
			return id == "bk-1", nil
		},
	}
	sweeper := NewSweeper(repo, bookings, newTestConfig())

	expired, err := sweeper.SweepOnce(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expired != 1 {
		t.Errorf("expected 1 expired, got %d", expired)
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	cfg := newTestConfig()
	cfg.SweepInterval = 10 * time.Millisecond

	sweeps := make(chan struct{}, 16)
	repo := &mockBookingRepository{
		findExpiredFunc: func(ctx context.Context, now time.Time, limit int) ([]*model.Booking, error) {
			select {
			case sweeps <- struct{}{}:
			default:
			}
			return nil, nil
		},
	}
	sweeper := NewSweeper(repo, &mockBookingService{}, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	select {
	case <-sweeps:
	case <-time.After(time.Second):
		t.Fatal("expected at least one sweep")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected the sweeper to stop on cancel")
	}
}
