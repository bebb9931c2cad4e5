package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "voyago"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Unpaid reservations hold their seats for this long before the
	// sweep reclaims them.
	DefaultBookingTTL    = 15 * time.Minute
	DefaultSweepInterval = 60 * time.Second
	DefaultSweepBatch    = 100

	DefaultLockTTL           = 10 * time.Second
	DefaultLockRetryInterval = 50 * time.Millisecond
	DefaultLockWaitTimeout   = 2 * time.Second

	DefaultRateLimitRequests = 120
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultPaymentOutcomesTopic = "payment-outcomes"
	DefaultPaymentConsumerGroup = "voyago-bookings"
	DefaultBookingEventsTopic   = "booking-events"
	DefaultBookingEventsDLQ     = "booking-events-dlq"

	DefaultLogLevel = "info"

	DefaultPaginationLimit = 100
)
