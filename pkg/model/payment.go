package model

import "time"

// Payment outcomes reported by the external payment provider.
const (
	PaymentOutcomeSuccess = "success"
	PaymentOutcomeFailed  = "failed"
)

// PaymentOutcomeEvent is the payload delivered by the payment provider,
// either via the HTTP webhook or the payment-outcomes topic.
type PaymentOutcomeEvent struct {
	BookingID        string `json:"booking_id" validate:"required"`
	IdempotencyKey   string `json:"idempotency_key" validate:"required"`
	Outcome          string `json:"outcome" validate:"required,oneof=success failed"`
	PaymentReference string `json:"payment_reference,omitempty"`
}

// Booking event types published to the booking-events topic.
const (
	EventBookingConfirmed = "booking.confirmed"
	EventBookingExpired   = "booking.expired"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published whenever a booking reaches a new state.
type BookingEvent struct {
	EventType    string    `json:"event_type"`
	BookingID    string    `json:"booking_id"`
	TripID       string    `json:"trip_id"`
	UserID       string    `json:"user_id"`
	NumSeats     int       `json:"num_seats"`
	State        string    `json:"state"`
	RefundAmount float64   `json:"refund_amount,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
