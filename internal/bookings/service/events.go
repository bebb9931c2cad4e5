package service

import (
	"context"
	"time"
	"voyago/pkg/kafka"
	"voyago/pkg/logger"
	"voyago/pkg/model"
)

// EventPublisher emits booking lifecycle events. Publishing is best effort:
// callers log failures and move on, the booking state is already committed.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event *model.BookingEvent) error
}

type kafkaEventPublisher struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaEventPublisher(producer *kafka.Producer, source string) EventPublisher {
	return &kafkaEventPublisher{
		producer: producer,
		source:   source,
	}
}

func (p *kafkaEventPublisher) PublishBookingEvent(ctx context.Context, event *model.BookingEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	msg := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(event.EventType).
		WithSource(p.source).
		WithSchemaVersion("1").
		Build()

	return p.producer.Publish(ctx, msg)
}

// noopEventPublisher is used when no broker is configured (tests, local runs).
type noopEventPublisher struct{}

func NewNoopEventPublisher() EventPublisher {
	return noopEventPublisher{}
}

func (noopEventPublisher) PublishBookingEvent(context.Context, *model.BookingEvent) error {
	return nil
}

func newBookingEvent(eventType string, b *model.Booking, refund float64) *model.BookingEvent {
	return &model.BookingEvent{
		EventType:    eventType,
		BookingID:    b.ID,
		TripID:       b.TripID,
		UserID:       b.UserID,
		NumSeats:     b.NumSeats,
		State:        b.State,
		RefundAmount: refund,
		OccurredAt:   time.Now().UTC(),
	}
}

func publishEvent(log *logger.Logger, publisher EventPublisher, event *model.BookingEvent) {
	if publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := publisher.PublishBookingEvent(ctx, event); err != nil {
		log.Warn("Failed to publish booking event",
			"event_type", event.EventType,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}
