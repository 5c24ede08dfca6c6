package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/charging-need-service/internal/domain"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Dataset files. An empty CongestionPath disables the congestion layer.
	StationsPath   string
	SegmentsPath   string
	CongestionPath string
	DedupeStations bool

	// Need scoring defaults, overridable per request.
	Need           domain.NeedParams
	ScoringWorkers int
	LayerCacheSize int

	// Optional Kafka sink for computed layers.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaSinkTopic   string
	PublishBatchSize int
}

// Load reads configuration from environment variables, applying defaults where
// unset. Variables from a .env file in the working directory (or the file named
// by ENV_FILE) are loaded first and never override the real environment.
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	need, err := parseNeedParams()
	if err != nil {
		return nil, err
	}

	workers, err := parseIntInRange("SCORING_WORKERS", 4, 1, 256)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parseIntInRange("LAYER_CACHE_SIZE", 64, 0, 4096)
	if err != nil {
		return nil, err
	}

	batchSize, err := parseIntInRange("PUBLISH_BATCH_SIZE", 500, 1, 10000)
	if err != nil {
		return nil, err
	}

	dedupe, err := parseBool("DEDUPE_STATIONS", true)
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))
	kafkaEnabled, err := parseBool("KAFKA_ENABLED", len(brokers) > 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		StationsPath:   envOrDefault("STATIONS_PATH", "data/merged_ev_stations.json"),
		SegmentsPath:   envOrDefault("SEGMENTS_PATH", "data/tmja-rrnc-2024.json"),
		CongestionPath: os.Getenv("CONGESTION_PATH"),
		DedupeStations: dedupe,

		Need:           need,
		ScoringWorkers: workers,
		LayerCacheSize: cacheSize,

		KafkaEnabled:     kafkaEnabled,
		KafkaBrokers:     brokers,
		KafkaSinkTopic:   envOrDefault("KAFKA_SINK_TOPIC", "charging-need-points"),
		PublishBatchSize: batchSize,
	}

	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required when Kafka is enabled")
	}

	return cfg, nil
}

func loadEnvFile() error {
	if path := os.Getenv("ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load ENV_FILE %s: %w", path, err)
		}
		return nil
	}
	// A missing .env is the normal case in containers.
	_ = godotenv.Load()
	return nil
}

func parseNeedParams() (domain.NeedParams, error) {
	var (
		p   domain.NeedParams
		err error
	)
	if p.RadiusMeters, err = parseFloat("NEED_RADIUS_METERS", domain.DefaultRadiusMeters, true); err != nil {
		return p, err
	}
	if p.Alpha, err = parseFloat("NEED_ALPHA", domain.DefaultAlpha, false); err != nil {
		return p, err
	}
	if p.Beta, err = parseFloat("NEED_BETA", domain.DefaultBeta, false); err != nil {
		return p, err
	}
	if p.Gamma, err = parseFloat("NEED_GAMMA", domain.DefaultGamma, false); err != nil {
		return p, err
	}
	if p.Delta, err = parseFloat("NEED_DELTA", domain.DefaultDelta, false); err != nil {
		return p, err
	}
	return p, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseFloat reads a finite, non-negative float. With positive set, zero is
// rejected too.
func parseFloat(key string, fallback float64, positive bool) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || (positive && v == 0) {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return v, nil
}

func parseIntInRange(key string, fallback, lo, hi int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("invalid %s %q: must be between %d and %d", key, s, lo, hi)
	}
	return n, nil
}

func parsePositiveDuration(key, fallback string) (time.Duration, error) {
	s := envOrDefault(key, fallback)
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return d, nil
}

func parseBool(key string, fallback bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, s)
	}
	return b, nil
}

func parseBrokers(s string) []string {
	var brokers []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
