package validator

import (
	"strings"
	"testing"
	"time"

	"voyago/pkg/logger"
	"voyago/pkg/model"
)

func newTestValidator() *TripValidator {
	log := logger.New(logger.Config{
		Level:   logger.ERROR,
		Format:  logger.JSON,
		Service: "test",
	})
	return NewTripValidator(log)
}

func validTrip() *model.Trip {
	return &model.Trip{
		Title:                     "Lisbon Coast",
		Status:                    model.TripStatusDraft,
		StartDate:                 time.Now().Add(30 * 24 * time.Hour),
		MaxCapacity:               20,
		AvailableSeats:            20,
		PricePerSeat:              199.99,
		CancellationFeePercent:    10,
		RefundableUntilDaysBefore: 7,
	}
}

func TestValidate_Valid(t *testing.T) {
	v := newTestValidator()

	if err := v.Validate(validTrip()); err != nil {
		t.Errorf("expected valid trip, got %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	v := newTestValidator()

	cases := []struct {
		name   string
		mutate func(*model.Trip)
		field  string
	}{
		{"missing title", func(tr *model.Trip) { tr.Title = "" }, "Title"},
		{"bad status", func(tr *model.Trip) { tr.Status = "ARCHIVED" }, "Status"},
		{"zero capacity", func(tr *model.Trip) { tr.MaxCapacity = 0 }, "MaxCapacity"},
		{"capacity too large", func(tr *model.Trip) { tr.MaxCapacity = 501 }, "MaxCapacity"},
		{"free trip", func(tr *model.Trip) { tr.PricePerSeat = 0 }, "PricePerSeat"},
		{"fee over 100", func(tr *model.Trip) { tr.CancellationFeePercent = 130 }, "CancellationFeePercent"},
		{"negative seats", func(tr *model.Trip) { tr.AvailableSeats = -1 }, "AvailableSeats"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			trip := validTrip()
			tc.mutate(trip)

			err := v.Validate(trip)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("expected error to mention %s, got %v", tc.field, err)
			}
		})
	}
}

func TestValidate_PastStartDate(t *testing.T) {
	v := newTestValidator()

	trip := validTrip()
	trip.StartDate = time.Now().Add(-24 * time.Hour)

	err := v.Validate(trip)
	if err == nil {
		t.Fatal("expected validation error for a past start date")
	}
	if !strings.Contains(err.Error(), "StartDate") {
		t.Errorf("expected error to mention StartDate, got %v", err)
	}
}

func TestValidateUpdate(t *testing.T) {
	v := newTestValidator()

	price := 149.50
	if err := v.ValidateUpdate(&model.TripUpdate{Title: "New Title", PricePerSeat: &price}); err != nil {
		t.Errorf("expected valid update, got %v", err)
	}

	badPrice := 0.0
	if err := v.ValidateUpdate(&model.TripUpdate{PricePerSeat: &badPrice}); err == nil {
		t.Error("expected validation error for zero price")
	}

	badFee := 150.0
	if err := v.ValidateUpdate(&model.TripUpdate{CancellationFeePercent: &badFee}); err == nil {
		t.Error("expected validation error for fee over 100")
	}
}
