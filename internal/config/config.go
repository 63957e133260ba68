package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// Config represents runtime configuration derived from environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Dedup    DedupConfig
}

// ServerConfig holds HTTP server runtime parameters.
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
	ConnectTimeout     time.Duration
}

// LoggingConfig represents structured logging configuration.
type LoggingConfig struct {
	Level  slog.Level
	Format string
}

// DedupConfig exposes the engine's tunable thresholds. The defaults are
// the calibrated production values; they are configuration rather than
// hardcoded law so they can be tuned and tested independently.
type DedupConfig struct {
	// TitleThreshold is the minimum Jaccard similarity for a live title
	// match.
	TitleThreshold float64

	// TitleCandidateLimit bounds the prefix-matched candidate fetch.
	TitleCandidateLimit int

	// FingerprintSimilarity is the fixed similarity reported for a
	// content fingerprint match.
	FingerprintSimilarity float64

	// SimilarContentBits is the SimHash Hamming cutoff for "same content".
	SimilarContentBits int

	// NearDuplicateBits is the report generator's Hamming cutoff for a
	// near-duplicate edge.
	NearDuplicateBits int

	// BatchTitleThreshold is the recall-oriented title cutoff for
	// in-batch detection.
	BatchTitleThreshold float64
}

const (
	defaultPort            = "8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultShutdownTimeout = 5 * time.Second

	defaultMaxConnections     = 50
	defaultMaxIdleConnections = 10
	defaultConnMaxLifetime    = 5 * time.Minute
	defaultConnectTimeout     = 10 * time.Second

	defaultLogFormat = "json"

	defaultTitleThreshold        = 0.85
	defaultTitleCandidateLimit   = 10
	defaultFingerprintSimilarity = 0.95
	defaultSimilarContentBits    = 3
	defaultNearDuplicateBits     = 7
	defaultBatchTitleThreshold   = 0.75
)

// Load reads configuration from environment variables, applying defaults
// when values are not provided or invalid.
func Load() (Config, error) {
	port := getEnv("PORT", "")
	if port == "" {
		port = getEnv("SERVER_PORT", defaultPort)
	}

	cfg := Config{
		Server: ServerConfig{
			Port:            port,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
		Database: DatabaseConfig{
			URL:                os.Getenv("DATABASE_URL"),
			MaxConnections:     defaultMaxConnections,
			MaxIdleConnections: defaultMaxIdleConnections,
			ConnMaxLifetime:    defaultConnMaxLifetime,
			ConnectTimeout:     defaultConnectTimeout,
		},
		Logging: LoggingConfig{
			Level:  slog.LevelInfo,
			Format: defaultLogFormat,
		},
		Dedup: DedupConfig{
			TitleThreshold:        defaultTitleThreshold,
			TitleCandidateLimit:   defaultTitleCandidateLimit,
			FingerprintSimilarity: defaultFingerprintSimilarity,
			SimilarContentBits:    defaultSimilarContentBits,
			NearDuplicateBits:     defaultNearDuplicateBits,
			BatchTitleThreshold:   defaultBatchTitleThreshold,
		},
	}

	if v := os.Getenv("SERVER_READ_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_READ_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ReadTimeout = d
	}

	if v := os.Getenv("SERVER_WRITE_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_WRITE_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.WriteTimeout = d
	}

	if v := os.Getenv("SERVER_SHUTDOWN_TIMEOUT_SECONDS"); v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SERVER_SHUTDOWN_TIMEOUT_SECONDS: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	if v := os.Getenv("DATABASE_MAX_CONNECTIONS"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DATABASE_MAX_CONNECTIONS: %w", err)
		}
		cfg.Database.MaxConnections = n
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		level, err := parseLogLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
		}
		cfg.Logging.Level = level
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		switch v {
		case "json", "text":
			cfg.Logging.Format = v
		default:
			return Config{}, fmt.Errorf("invalid LOG_FORMAT: must be 'json' or 'text'")
		}
	}

	if v := os.Getenv("DEDUP_TITLE_THRESHOLD"); v != "" {
		f, err := parseRatio(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEDUP_TITLE_THRESHOLD: %w", err)
		}
		cfg.Dedup.TitleThreshold = f
	}

	if v := os.Getenv("DEDUP_TITLE_CANDIDATE_LIMIT"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEDUP_TITLE_CANDIDATE_LIMIT: %w", err)
		}
		cfg.Dedup.TitleCandidateLimit = n
	}

	if v := os.Getenv("DEDUP_SIMILAR_CONTENT_BITS"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEDUP_SIMILAR_CONTENT_BITS: %w", err)
		}
		cfg.Dedup.SimilarContentBits = n
	}

	if v := os.Getenv("DEDUP_NEAR_DUPLICATE_BITS"); v != "" {
		n, err := parsePositiveInt(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEDUP_NEAR_DUPLICATE_BITS: %w", err)
		}
		cfg.Dedup.NearDuplicateBits = n
	}

	if v := os.Getenv("DEDUP_BATCH_TITLE_THRESHOLD"); v != "" {
		f, err := parseRatio(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DEDUP_BATCH_TITLE_THRESHOLD: %w", err)
		}
		cfg.Dedup.BatchTitleThreshold = f
	}

	return cfg, nil
}

func parseSeconds(raw string) (time.Duration, error) {
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("must be a non-negative integer")
	}
	return time.Duration(seconds) * time.Second, nil
}

func parsePositiveInt(raw string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("must be a positive integer")
	}
	return n, nil
}

func parseRatio(raw string) (float64, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f <= 0 || f > 1 {
		return 0, fmt.Errorf("must be a number in (0, 1]")
	}
	return f, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) (slog.Level, error) {
	switch raw {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("must be one of debug, info, warn, error")
	}
}
