package service

import (
	"context"
	"time"
	"voyago/pkg/config"
	"voyago/pkg/kafka"
	"voyago/pkg/model"
)

// ReconcileResult describes what a payment outcome delivery did.
type ReconcileResult string

const (
	ReconcileConfirmed ReconcileResult = "confirmed"
	ReconcileExpired   ReconcileResult = "expired"
	ReconcileDuplicate ReconcileResult = "duplicate"
	ReconcileIgnored   ReconcileResult = "ignored"
)

// Reconciler maps payment outcomes onto booking transitions. Deliveries are
// at-least-once and unordered, so every path acknowledges: a malformed or
// stale event is dropped, never redelivered. Internal failures are logged
// and swallowed; the expiry sweeper restores correctness on the next pass.
type Reconciler struct {
	bookings BookingService
	cfg      *config.Config
}

func NewReconciler(bookings BookingService, cfg *config.Config) *Reconciler {
	return &Reconciler{
		bookings: bookings,
		cfg:      cfg,
	}
}

func (r *Reconciler) Reconcile(ctx context.Context, event *model.PaymentOutcomeEvent) ReconcileResult {
	if event == nil || event.BookingID == "" || event.IdempotencyKey == "" || event.Outcome == "" {
		r.cfg.Log.Warn("Payment outcome missing required fields, acknowledging",
			"booking_id", eventBookingID(event),
		)
		return ReconcileIgnored
	}

	booking, err := r.bookings.GetByID(ctx, event.BookingID)
	if err != nil {
		r.cfg.Log.Warn("Payment outcome for unknown booking, acknowledging",
			"booking_id", event.BookingID,
			"error", err,
		)
		return ReconcileIgnored
	}

	if booking.IdempotencyKey != event.IdempotencyKey {
		r.cfg.Log.Warn("Payment outcome idempotency key mismatch, acknowledging",
			"booking_id", event.BookingID,
		)
		return ReconcileIgnored
	}

	if booking.State != model.BookingStatePendingPayment {
		r.cfg.Log.Debug("Payment outcome for already resolved booking",
			"booking_id", event.BookingID,
			"state", booking.State,
		)
		return ReconcileDuplicate
	}

	// Expiry wins over late success. The transition re-checks state under
	// the booking lock, so a concurrent resolution degrades to a no-op.
	if !time.Now().Before(booking.ExpiresAt) {
		return r.expire(ctx, event.BookingID)
	}

	switch event.Outcome {
	case model.PaymentOutcomeSuccess:
		if _, err := r.bookings.Confirm(ctx, event.BookingID, event.PaymentReference); err != nil {
			r.cfg.Log.Error("Failed to confirm booking from payment outcome",
				"booking_id", event.BookingID,
				"error", err,
			)
			return ReconcileIgnored
		}
		return ReconcileConfirmed

	case model.PaymentOutcomeFailed:
		return r.expire(ctx, event.BookingID)

	default:
		r.cfg.Log.Warn("Unknown payment outcome, acknowledging",
			"booking_id", event.BookingID,
			"outcome", event.Outcome,
		)
		return ReconcileIgnored
	}
}

func (r *Reconciler) expire(ctx context.Context, bookingID string) ReconcileResult {
	expired, err := r.bookings.Expire(ctx, bookingID)
	if err != nil {
		r.cfg.Log.Error("Failed to expire booking from payment outcome",
			"booking_id", bookingID,
			"error", err,
		)
		return ReconcileIgnored
	}
	if !expired {
		return ReconcileDuplicate
	}
	return ReconcileExpired
}

// MessageHandler adapts the reconciler to the payment-outcomes topic.
// It always returns nil so the consumer commits the offset; redelivering a
// payment outcome can never change the result.
func (r *Reconciler) MessageHandler() kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event model.PaymentOutcomeEvent
		if err := msg.DecodeValue(&event); err != nil {
			r.cfg.Log.Warn("Failed to decode payment outcome message, acknowledging",
				"topic", msg.Topic,
				"offset", msg.Offset,
				"error", err,
			)
			return nil
		}

		result := r.Reconcile(ctx, &event)
		r.cfg.Log.Debug("Payment outcome processed",
			"booking_id", event.BookingID,
			"result", string(result),
		)
		return nil
	}
}

func eventBookingID(event *model.PaymentOutcomeEvent) string {
	if event == nil {
		return ""
	}
	return event.BookingID
}
