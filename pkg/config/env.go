package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvBookingTTL    = "BOOKING_TTL"
	EnvSweepInterval = "SWEEP_INTERVAL"
	EnvSweepBatch    = "SWEEP_BATCH"

	EnvLockTTL           = "LOCK_TTL"
	EnvLockRetryInterval = "LOCK_RETRY_INTERVAL"
	EnvLockWaitTimeout   = "LOCK_WAIT_TIMEOUT"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvPaymentOutcomesTopic = "PAYMENT_OUTCOMES_TOPIC"
	EnvPaymentConsumerGroup = "PAYMENT_CONSUMER_GROUP"
	EnvBookingEventsTopic   = "BOOKING_EVENTS_TOPIC"
	EnvBookingEventsDLQ     = "BOOKING_EVENTS_DLQ_TOPIC"
)
