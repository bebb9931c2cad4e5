package model

import (
	"time"
)

// Booking lifecycle states. EXPIRED and CANCELLED are terminal.
const (
	BookingStatePendingPayment = "PENDING_PAYMENT"
	BookingStateConfirmed      = "CONFIRMED"
	BookingStateExpired        = "EXPIRED"
	BookingStateCancelled      = "CANCELLED"
)

type Booking struct {
	ID               string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TripID           string     `json:"trip_id" bson:"trip_id" validate:"required,mongodb"`
	UserID           string     `json:"user_id" bson:"user_id" validate:"required,min=1,max=100"`
	NumSeats         int        `json:"num_seats" bson:"num_seats" validate:"required,min=1,max=20"`
	State            string     `json:"state" bson:"state" validate:"required,oneof=PENDING_PAYMENT CONFIRMED EXPIRED CANCELLED"`
	PriceAtBooking   float64    `json:"price_at_booking" bson:"price_at_booking" validate:"min=0"`
	IdempotencyKey   string     `json:"idempotency_key" bson:"idempotency_key" validate:"required,min=1,max=200"`
	ExpiresAt        time.Time  `json:"expires_at" bson:"expires_at" validate:"required"`
	PaymentReference string     `json:"payment_reference,omitempty" bson:"payment_reference,omitempty"`
	RefundAmount     float64    `json:"refund_amount,omitempty" bson:"refund_amount,omitempty"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	ExpiredAt        *time.Time `json:"expired_at,omitempty" bson:"expired_at,omitempty"`
	CancelledAt      *time.Time `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
}

// IsTerminal reports whether the booking can no longer change state.
func (b *Booking) IsTerminal() bool {
	return b.State == BookingStateExpired || b.State == BookingStateCancelled
}

// BookingRequest is the payload for creating a booking. The idempotency
// key is generated server-side and handed to the payment provider.
type BookingRequest struct {
	TripID   string `json:"trip_id" validate:"required,mongodb"`
	UserID   string `json:"user_id" validate:"required,min=1,max=100"`
	NumSeats int    `json:"num_seats" validate:"required,min=1,max=20"`
}

// CancellationResult captures the outcome of a cancellation, including
// the refund computed from the trip's policy at the time of the call.
type CancellationResult struct {
	Booking       *Booking `json:"booking"`
	RefundAmount  float64  `json:"refund_amount"`
	IsRefundable  bool     `json:"is_refundable"`
	DaysUntilTrip int      `json:"days_until_trip"`
}
