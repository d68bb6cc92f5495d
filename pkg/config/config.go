package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"washbook/pkg/client"
	"washbook/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	AnonymousRateLimitRPS   float64
	AnonymousRateLimitBurst int

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	DefaultTimeZone    string
	DefaultOpenTime    string
	DefaultCloseTime   string
	DefaultWorkingDays []Weekday
	DefaultAutoAccept  bool

	BookingLockTTL        time.Duration
	BookingLockWait       time.Duration
	ReadRetryAttempts     int
	ReadRetryBackoff      time.Duration
	CancellationMinNotice time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaEnabled          bool
	BookingEventsTopic    string
	BookingEventsDLQTopic string
	CatalogEventsTopic    string
	CatalogDLQTopic       string
	CatalogConsumerGroup  string

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		AnonymousRateLimitRPS:   getEnvFloat(EnvAnonymousRateLimitRPS, DefaultAnonymousRateLimitRPS),
		AnonymousRateLimitBurst: getEnvNum(EnvAnonymousRateLimitBurst, DefaultAnonymousRateLimitBurst),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		DefaultTimeZone:    getEnvStr(EnvDefaultTimeZone, DefaultDefaultTimeZone),
		DefaultOpenTime:    getEnvStr(EnvDefaultOpenTime, DefaultDefaultOpenTime),
		DefaultCloseTime:   getEnvStr(EnvDefaultCloseTime, DefaultDefaultCloseTime),
		DefaultWorkingDays: parseWeekdays(getEnvStr(EnvDefaultWorkingDays, DefaultDefaultWorkingDays)),
		DefaultAutoAccept:  getEnvBool(EnvDefaultAutoAccept, DefaultDefaultAutoAccept),

		BookingLockTTL:        getEnvDuration(EnvBookingLockTTL, DefaultBookingLockTTL),
		BookingLockWait:       getEnvDuration(EnvBookingLockWait, DefaultBookingLockWait),
		ReadRetryAttempts:     getEnvNum(EnvReadRetryAttempts, DefaultReadRetryAttempts),
		ReadRetryBackoff:      getEnvDuration(EnvReadRetryBackoff, DefaultReadRetryBackoff),
		CancellationMinNotice: getEnvDuration(EnvCancellationMinNotice, DefaultCancellationMinNotice),

		RedisAddr:     getEnvStr(EnvRedisAddr, ""),
		RedisPassword: getEnvStr(EnvRedisPassword, ""),
		RedisDB:       getEnvNum(EnvRedisDB, DefaultRedisDB),

		KafkaEnabled:          getEnvBool(EnvKafkaEnabled, DefaultKafkaEnabled),
		BookingEventsTopic:    getEnvStr(EnvBookingEventsTopic, DefaultBookingEventsTopic),
		BookingEventsDLQTopic: getEnvStr(EnvBookingEventsDLQTopic, DefaultBookingEventsDLQTopic),
		CatalogEventsTopic:    getEnvStr(EnvCatalogEventsTopic, DefaultCatalogEventsTopic),
		CatalogDLQTopic:       getEnvStr(EnvCatalogDLQTopic, DefaultCatalogDLQTopic),
		CatalogConsumerGroup:  getEnvStr(EnvCatalogConsumerGroup, DefaultCatalogConsumerGroup),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	err := cfg.Validate()
	if err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

// SetRedis connects the optional shared idempotency store. An empty address
// or an unreachable server leaves Client.Redis nil.
func (cfg *Config) SetRedis() {
	if cfg.RedisAddr == "" {
		return
	}
	cfg.Client.SetRedis(cfg.Log, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.MongoConnTimeout)
}

func (cfg *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	timeRegex := regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)
	if !timeRegex.MatchString(cfg.DefaultOpenTime) {
		errors = append(errors, fmt.Sprintf("DefaultOpenTime must be in HH:MM format (00:00-23:59), got: %s", cfg.DefaultOpenTime))
	}
	if !timeRegex.MatchString(cfg.DefaultCloseTime) {
		errors = append(errors, fmt.Sprintf("DefaultCloseTime must be in HH:MM format (00:00-23:59), got: %s", cfg.DefaultCloseTime))
	}
	if timeRegex.MatchString(cfg.DefaultOpenTime) && timeRegex.MatchString(cfg.DefaultCloseTime) &&
		cfg.DefaultOpenTime >= cfg.DefaultCloseTime {
		errors = append(errors, fmt.Sprintf("DefaultOpenTime (%s) must be before DefaultCloseTime (%s)", cfg.DefaultOpenTime, cfg.DefaultCloseTime))
	}
	if _, err := time.LoadLocation(cfg.DefaultTimeZone); err != nil {
		errors = append(errors, fmt.Sprintf("DefaultTimeZone must be a valid IANA zone, got: %s", cfg.DefaultTimeZone))
	}
	if len(cfg.DefaultWorkingDays) == 0 {
		errors = append(errors, "DefaultWorkingDays must name at least one weekday")
	}

	if cfg.MongoURI == "" {
		errors = append(errors, "MongoURI cannot be empty")
	} else if len(cfg.MongoURI) < 10 || !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errors = append(errors, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errors = append(errors, "MongoDatabaseName cannot be empty")
	}

	if cfg.MongoConnTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("MongoConnTimeout must be positive, got: %s", cfg.MongoConnTimeout))
	}
	if cfg.RateLimitWindow <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitWindow must be positive, got: %s", cfg.RateLimitWindow))
	}
	if cfg.RequestTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("RequestTimeout must be positive, got: %s", cfg.RequestTimeout))
	}
	if cfg.IdempotencyTTL <= 0 {
		errors = append(errors, fmt.Sprintf("IdempotencyTTL must be positive, got: %s", cfg.IdempotencyTTL))
	}
	if cfg.ReadTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ReadTimeout must be positive, got: %s", cfg.ReadTimeout))
	}
	if cfg.WriteTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("WriteTimeout must be positive, got: %s", cfg.WriteTimeout))
	}
	if cfg.IdleTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("IdleTimeout must be positive, got: %s", cfg.IdleTimeout))
	}
	if cfg.ShutdownTimeout <= 0 {
		errors = append(errors, fmt.Sprintf("ShutdownTimeout must be positive, got: %s", cfg.ShutdownTimeout))
	}

	if cfg.RateLimitRequests <= 0 {
		errors = append(errors, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.AnonymousRateLimitRPS <= 0 {
		errors = append(errors, fmt.Sprintf("AnonymousRateLimitRPS must be positive, got: %g", cfg.AnonymousRateLimitRPS))
	}
	if cfg.AnonymousRateLimitBurst < 1 {
		errors = append(errors, fmt.Sprintf("AnonymousRateLimitBurst must be at least 1, got: %d", cfg.AnonymousRateLimitBurst))
	}
	if cfg.MaxRequestSize <= 0 {
		errors = append(errors, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.BookingLockTTL <= 0 {
		errors = append(errors, fmt.Sprintf("BookingLockTTL must be positive, got: %s", cfg.BookingLockTTL))
	} else if cfg.BookingLockTTL < cfg.ReadTimeout+cfg.WriteTimeout {
		errors = append(errors, fmt.Sprintf("BookingLockTTL must cover ReadTimeout+WriteTimeout (%s), got: %s",
			cfg.ReadTimeout+cfg.WriteTimeout, cfg.BookingLockTTL))
	}
	if cfg.BookingLockWait < 0 {
		errors = append(errors, fmt.Sprintf("BookingLockWait cannot be negative, got: %s", cfg.BookingLockWait))
	}
	if cfg.ReadRetryAttempts < 1 {
		errors = append(errors, fmt.Sprintf("ReadRetryAttempts must be at least 1, got: %d", cfg.ReadRetryAttempts))
	}
	if cfg.ReadRetryBackoff < 0 {
		errors = append(errors, fmt.Sprintf("ReadRetryBackoff cannot be negative, got: %s", cfg.ReadRetryBackoff))
	}
	if cfg.CancellationMinNotice < 0 {
		errors = append(errors, fmt.Sprintf("CancellationMinNotice cannot be negative, got: %s", cfg.CancellationMinNotice))
	}
	if cfg.RedisDB < 0 {
		errors = append(errors, fmt.Sprintf("RedisDB cannot be negative, got: %d", cfg.RedisDB))
	}

	if cfg.KafkaEnabled {
		if cfg.BookingEventsTopic == "" {
			errors = append(errors, "BookingEventsTopic cannot be empty when Kafka is enabled")
		}
		if cfg.CatalogEventsTopic == "" {
			errors = append(errors, "CatalogEventsTopic cannot be empty when Kafka is enabled")
		}
	}

	if len(errors) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, err := range errors {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, err)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"anonymous_rate_limit_rps", cfg.AnonymousRateLimitRPS,
		"anonymous_rate_limit_burst", cfg.AnonymousRateLimitBurst,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"default_time_zone", cfg.DefaultTimeZone,
		"default_open_time", cfg.DefaultOpenTime,
		"default_close_time", cfg.DefaultCloseTime,
		"default_working_days", cfg.DefaultWorkingDays,
		"default_auto_accept", cfg.DefaultAutoAccept,
		"booking_lock_ttl", cfg.BookingLockTTL,
		"booking_lock_wait", cfg.BookingLockWait,
		"read_retry_attempts", cfg.ReadRetryAttempts,
		"read_retry_backoff", cfg.ReadRetryBackoff,
		"cancellation_min_notice", cfg.CancellationMinNotice,
		"redis_enabled", cfg.RedisAddr != "",
		"kafka_enabled", cfg.KafkaEnabled,
		"booking_events_topic", cfg.BookingEventsTopic,
		"catalog_events_topic", cfg.CatalogEventsTopic,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown()
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
