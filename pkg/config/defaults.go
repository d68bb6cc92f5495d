package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "washbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultAnonymousRateLimitRPS   = 5.0
	DefaultAnonymousRateLimitBurst = 20

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultDefaultTimeZone    = "UTC"
	DefaultDefaultOpenTime    = "09:00"
	DefaultDefaultCloseTime   = "19:00"
	DefaultDefaultWorkingDays = "Monday,Tuesday,Wednesday,Thursday,Friday,Saturday"
	DefaultDefaultAutoAccept  = false

	DefaultBookingLockTTL        = 30 * time.Second
	DefaultBookingLockWait       = 3 * time.Second
	DefaultReadRetryAttempts     = 3
	DefaultReadRetryBackoff      = 50 * time.Millisecond
	DefaultCancellationMinNotice = time.Duration(0)

	DefaultRedisDB = 0

	DefaultKafkaEnabled          = false
	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingEventsDLQTopic = "booking-events-dlq"
	DefaultCatalogEventsTopic    = "catalog-events"
	DefaultCatalogDLQTopic       = "catalog-events-dlq"
	DefaultCatalogConsumerGroup  = "washbook-catalog-sync"

	DefaultPaginationLimit = 100
)
