package config

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"

	"github.com/couchcryptid/dsr-impact-service/internal/domain"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Dashboard collaborator configuration. Compensation estimates are only
	// attached when the dashboard is enabled.
	DashboardBaseURL   string
	DashboardEnabled   bool
	DashboardTimeout   time.Duration
	DashboardCacheSize int
	DashboardCacheTTL  time.Duration

	RateTablePath   string
	SeverityWeights domain.SeverityWeights
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	dashboardTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("DASHBOARD_TIMEOUT", "5s"))
	if err != nil || dashboardTimeout <= 0 {
		return nil, errors.New("invalid DASHBOARD_TIMEOUT")
	}

	cacheTTL, err := time.ParseDuration(sharedcfg.EnvOrDefault("DASHBOARD_CACHE_TTL", "1m"))
	if err != nil || cacheTTL <= 0 {
		return nil, errors.New("invalid DASHBOARD_CACHE_TTL")
	}

	batchSize, err := sharedcfg.ParseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := sharedcfg.ParseBatchFlushInterval()
	if err != nil {
		return nil, err
	}

	weights, err := ParseSeverityWeights(os.Getenv("SEVERITY_WEIGHTS"))
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(os.Getenv("DASHBOARD_BASE_URL"), "/")
	dashboardEnabled := baseURL != ""
	if v := os.Getenv("DASHBOARD_ENABLED"); v != "" {
		dashboardEnabled = v == "true"
	}

	cfg := &Config{
		KafkaBrokers:       sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   sharedcfg.EnvOrDefault("KAFKA_SOURCE_TOPIC", "raw-situation-reports"),
		KafkaSinkTopic:     sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "dsr-impact-reports"),
		KafkaGroupID:       sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "dsr-impact"),
		HTTPAddr:           sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:          sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		DashboardBaseURL:   baseURL,
		DashboardEnabled:   dashboardEnabled,
		DashboardTimeout:   dashboardTimeout,
		DashboardCacheSize: parseDashboardCacheSize(),
		DashboardCacheTTL:  cacheTTL,

		RateTablePath:   os.Getenv("RATE_TABLE_PATH"),
		SeverityWeights: weights,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.DashboardEnabled && cfg.DashboardBaseURL == "" {
		return nil, errors.New("DASHBOARD_ENABLED is true but DASHBOARD_BASE_URL is not set")
	}
	if cfg.DashboardBaseURL != "" {
		if u, err := url.Parse(cfg.DashboardBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			return nil, errors.New("invalid DASHBOARD_BASE_URL: must be an absolute URL")
		}
	}

	return cfg, nil
}

func parseDashboardCacheSize() int {
	if s := os.Getenv("DASHBOARD_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 64
}

// ParseSeverityWeights reads a comma-separated list of name=value overrides
// on top of the default weights, e.g. "death=2,cattle=0". An empty string
// yields the defaults.
func ParseSeverityWeights(s string) (domain.SeverityWeights, error) {
	w := domain.DefaultSeverityWeights()
	if strings.TrimSpace(s) == "" {
		return w, nil
	}

	fields := map[string]*float64{
		"death":         &w.Death,
		"injury":        &w.Injury,
		"house_full":    &w.HouseFull,
		"house_partial": &w.HousePartial,
		"school":        &w.School,
		"other":         &w.Other,
		"cattle":        &w.Cattle,
	}

	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return w, fmt.Errorf("invalid SEVERITY_WEIGHTS: %q is not name=value", pair)
		}
		field, known := fields[strings.ToLower(strings.TrimSpace(name))]
		if !known {
			return w, fmt.Errorf("invalid SEVERITY_WEIGHTS: unknown weight %q", name)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return w, fmt.Errorf("invalid SEVERITY_WEIGHTS: weight %q must be a non-negative number", name)
		}
		*field = f
	}
	return w, nil
}
