package kafka_config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"washbook/pkg/logger"
)

type Config struct {
	Brokers          []string
	EnableMiddleware bool

	Producer ProducerConfig
	Consumer ConsumerConfig
}

// ProducerConfig tunes the booking events writer and every DLQ writer.
type ProducerConfig struct {
	MaxAttempts  int
	BatchTimeout time.Duration
	RequiredAcks int    // -1 all, 0 none, 1 leader
	Compression  string // none, gzip, snappy, lz4, zstd
	Async        bool
}

// ConsumerConfig tunes the catalog sync reader.
type ConsumerConfig struct {
	StartOffset       int64 // -1 newest, -2 oldest
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	CommitInterval    time.Duration
	HeartbeatInterval time.Duration
	SessionTimeout    time.Duration
	RebalanceTimeout  time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
}

var (
	compressions = []string{"none", "gzip", "snappy", "lz4", "zstd"}
	acks         = []int{-1, 0, 1}
)

func Load() (*Config, error) {
	cfg := &Config{
		Brokers:          splitBrokers(getEnvStr(EnvKafkaBrokers, DefaultKafkaBrokers)),
		EnableMiddleware: getEnvBool(EnvKafkaEnableMiddleware, DefaultEnableMiddleware),
		Producer: ProducerConfig{
			MaxAttempts:  getEnvInt(EnvKafkaProducerMaxAttempts, DefaultProducerMaxAttempts),
			BatchTimeout: getEnvDuration(EnvKafkaProducerBatchTimeout, DefaultProducerBatchTimeout),
			RequiredAcks: getEnvInt(EnvKafkaProducerRequireAcks, DefaultProducerRequireAcks),
			Compression:  strings.ToLower(getEnvStr(EnvKafkaProducerCompression, DefaultProducerCompression)),
			Async:        getEnvBool(EnvKafkaProducerAsync, DefaultProducerAsync),
		},
		Consumer: ConsumerConfig{
			StartOffset:       int64(getEnvInt(EnvKafkaConsumerStartOffset, DefaultConsumerStartOffset)),
			MinBytes:          getEnvInt(EnvKafkaConsumerMinBytes, DefaultConsumerMinBytes),
			MaxBytes:          getEnvInt(EnvKafkaConsumerMaxBytes, DefaultConsumerMaxBytes),
			MaxWait:           getEnvDuration(EnvKafkaConsumerMaxWait, DefaultConsumerMaxWait),
			CommitInterval:    getEnvDuration(EnvKafkaConsumerCommitInterval, DefaultConsumerCommitInterval),
			HeartbeatInterval: getEnvDuration(EnvKafkaConsumerHeartbeatInterval, DefaultConsumerHeartbeatInterval),
			SessionTimeout:    getEnvDuration(EnvKafkaConsumerSessionTimeout, DefaultConsumerSessionTimeout),
			RebalanceTimeout:  getEnvDuration(EnvKafkaConsumerRebalanceTimeout, DefaultConsumerRebalanceTimeout),
			MaxRetries:        getEnvInt(EnvKafkaConsumerMaxRetries, DefaultConsumerMaxRetries),
			RetryBackoff:      getEnvDuration(EnvKafkaConsumerRetryBackoff, DefaultConsumerRetryBackoff),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("kafka configuration validation failed: %w", err)
	}
	return cfg, nil
}

func splitBrokers(csv string) []string {
	var brokers []string
	for _, broker := range strings.Split(csv, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}

// Validate reports every problem at once.
func (cfg *Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	p, c := cfg.Producer, cfg.Consumer

	check(len(cfg.Brokers) > 0, "at least one broker is required")
	check(p.MaxAttempts > 0, "producer max attempts must be positive, got: %d", p.MaxAttempts)
	check(p.BatchTimeout > 0, "producer batch timeout must be positive, got: %s", p.BatchTimeout)
	check(slices.Contains(compressions, p.Compression), "producer compression must be one of %v, got: %q", compressions, p.Compression)
	check(slices.Contains(acks, p.RequiredAcks), "producer required acks must be one of %v, got: %d", acks, p.RequiredAcks)

	check(c.StartOffset >= -2, "consumer start offset must be -1 (newest), -2 (oldest) or >= 0, got: %d", c.StartOffset)
	check(c.MinBytes > 0 && c.MaxBytes >= c.MinBytes, "consumer byte bounds must satisfy 0 < min <= max, got: %d..%d", c.MinBytes, c.MaxBytes)
	for name, d := range map[string]time.Duration{
		"max wait":           c.MaxWait,
		"commit interval":    c.CommitInterval,
		"heartbeat interval": c.HeartbeatInterval,
		"session timeout":    c.SessionTimeout,
		"rebalance timeout":  c.RebalanceTimeout,
	} {
		check(d > 0, "consumer %s must be positive, got: %s", name, d)
	}
	check(c.HeartbeatInterval < c.SessionTimeout, "consumer heartbeat interval (%s) must be shorter than the session timeout (%s)", c.HeartbeatInterval, c.SessionTimeout)
	check(c.MaxRetries >= 0, "consumer max retries cannot be negative, got: %d", c.MaxRetries)
	check(c.RetryBackoff >= 0, "consumer retry backoff cannot be negative, got: %s", c.RetryBackoff)

	if len(problems) == 0 {
		return nil
	}
	slices.Sort(problems)
	return fmt.Errorf("%d problem(s): %s", len(problems), strings.Join(problems, "; "))
}

func (cfg *Config) LogConfiguration(log *logger.Logger) {
	log.Info("Kafka configuration loaded",
		"brokers", cfg.Brokers,
		"middleware", cfg.EnableMiddleware,
		"producer_compression", cfg.Producer.Compression,
		"producer_required_acks", cfg.Producer.RequiredAcks,
		"producer_async", cfg.Producer.Async,
		"consumer_start_offset", cfg.Consumer.StartOffset,
		"consumer_max_retries", cfg.Consumer.MaxRetries,
	)
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return fallback
}
