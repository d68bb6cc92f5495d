package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvAnonymousRateLimitRPS   = "ANON_RATE_LIMIT_RPS"
	EnvAnonymousRateLimitBurst = "ANON_RATE_LIMIT_BURST"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvDefaultTimeZone    = "DEFAULT_TIME_ZONE"
	EnvDefaultOpenTime    = "DEFAULT_OPEN_TIME"
	EnvDefaultCloseTime   = "DEFAULT_CLOSE_TIME"
	EnvDefaultWorkingDays = "DEFAULT_WORKING_DAYS"
	EnvDefaultAutoAccept  = "DEFAULT_AUTO_ACCEPT"

	EnvBookingLockTTL        = "BOOKING_LOCK_TTL"
	EnvBookingLockWait       = "BOOKING_LOCK_WAIT"
	EnvReadRetryAttempts     = "READ_RETRY_ATTEMPTS"
	EnvReadRetryBackoff      = "READ_RETRY_BACKOFF"
	EnvCancellationMinNotice = "CANCELLATION_MIN_NOTICE"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvKafkaEnabled          = "KAFKA_ENABLED"
	EnvBookingEventsTopic    = "BOOKING_EVENTS_TOPIC"
	EnvBookingEventsDLQTopic = "BOOKING_EVENTS_DLQ_TOPIC"
	EnvCatalogEventsTopic    = "CATALOG_EVENTS_TOPIC"
	EnvCatalogDLQTopic       = "CATALOG_EVENTS_DLQ_TOPIC"
	EnvCatalogConsumerGroup  = "CATALOG_CONSUMER_GROUP"
)
