package service

import (
	"context"
	"time"
	"voyago/internal/bookings/repository"
	"voyago/pkg/config"
)

// Sweeper expires stale PENDING_PAYMENT bookings the payment provider never
// resolved. It is the safety net behind the webhook path: both converge on
// the same expire transition, so overlapping runs are harmless.
type Sweeper struct {
	repo     repository.BookingRepository
	bookings BookingService
	cfg      *config.Config
}

func NewSweeper(repo repository.BookingRepository, bookings BookingService, cfg *config.Config) *Sweeper {
	return &Sweeper{
		repo:     repo,
		bookings: bookings,
		cfg:      cfg,
	}
}

// SweepOnce expires one batch of overdue bookings and returns how many
// actually transitioned. A failure on one booking is logged and the rest of
// the batch still runs.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	overdue, err := s.repo.FindExpired(ctx, time.Now().UTC(), s.cfg.SweepBatch)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, booking := range overdue {
		done, err := s.bookings.Expire(ctx, booking.ID)
		if err != nil {
			s.cfg.Log.Error("Sweep failed to expire booking",
				"booking_id", booking.ID,
				"error", err,
			)
			continue
		}
		if done {
			expired++
		}
	}

	if expired > 0 || len(overdue) > 0 {
		s.cfg.Log.Info("Sweep completed",
			"candidates", len(overdue),
			"expired", expired,
		)
	}

	return expired, nil
}

// Run sweeps on the configured interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	s.cfg.Log.Info("Expiry sweeper started", "interval", s.cfg.SweepInterval)

	for {
		select {
		case <-ctx.Done():
			s.cfg.Log.Info("Expiry sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.cfg.Log.Error("Sweep failed", "error", err)
			}
		}
	}
}
