package model

import (
	"time"
)

const (
	TripStatusDraft     = "DRAFT"
	TripStatusPublished = "PUBLISHED"
)

type Trip struct {
	ID                        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Title                     string    `json:"title" bson:"title" validate:"required,min=2,max=200"`
	Status                    string    `json:"status" bson:"status" validate:"required,oneof=DRAFT PUBLISHED"`
	StartDate                 time.Time `json:"start_date" bson:"start_date" validate:"required"`
	MaxCapacity               int       `json:"max_capacity" bson:"max_capacity" validate:"required,min=1,max=500"`
	AvailableSeats            int       `json:"available_seats" bson:"available_seats" validate:"min=0"`
	PricePerSeat              float64   `json:"price_per_seat" bson:"price_per_seat" validate:"required,gt=0"`
	CancellationFeePercent    float64   `json:"cancellation_fee_percent" bson:"cancellation_fee_percent" validate:"min=0,max=100"`
	RefundableUntilDaysBefore int       `json:"refundable_until_days_before" bson:"refundable_until_days_before" validate:"min=0"`
	CreatedAt                 time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt                 time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" validate:"omitempty"`
}

func (t *Trip) IsPublished() bool {
	return t.Status == TripStatusPublished
}

type TripUpdate struct {
	Title                     string     `json:"title,omitempty" validate:"omitempty,min=2,max=200"`
	StartDate                 *time.Time `json:"start_date,omitempty" validate:"omitempty"`
	PricePerSeat              *float64   `json:"price_per_seat,omitempty" validate:"omitempty,gt=0"`
	CancellationFeePercent    *float64   `json:"cancellation_fee_percent,omitempty" validate:"omitempty,min=0,max=100"`
	RefundableUntilDaysBefore *int       `json:"refundable_until_days_before,omitempty" validate:"omitempty,min=0"`
}
