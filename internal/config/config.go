// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/stocksentinel/alerts-core/backend/internal/domain"
)

// Config holds configuration knobs for the HTTP surface, storage backend and
// the alert pipeline.
type Config struct {
	HTTPAddr        string
	JWTSecret       string
	DBPath          string
	DBBackend       string
	CheckInterval   time.Duration
	Thresholds      domain.Thresholds
	RetentionDays   int
	AMQPURL         string
	AMQPQueue       string
	ShutdownTimeout time.Duration
	LogLevel        string
	LogDropFilters  []string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvs(key string, defSec int) time.Duration {
	sec := atoienv(key, defSec)
	return time.Duration(sec) * time.Second
}

// Load collects configuration from environment with defaults. Severity
// thresholds default to the standard cutoffs but stay overridable per
// deployment.
func Load() Config {
	cfg := Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		JWTSecret:       getenv("JWT_SECRET", "dev-secret-change-me"),
		DBPath:          getenv("HISTORY_DB_PATH", "./data/history.db"),
		DBBackend:       getenv("HISTORY_DB_BACKEND", "bolt"),
		CheckInterval:   durenvs("ALERT_CHECK_INTERVAL", 60),
		RetentionDays:   atoienv("HISTORY_RETENTION_DAYS", 90),
		AMQPURL:         getenv("AMQP_URL", ""),
		AMQPQueue:       getenv("AMQP_QUEUE", "inventory_changes_queue"),
		ShutdownTimeout: durenvs("SHUTDOWN_TIMEOUT", 15),
		LogLevel:        getenv("LOG_LEVEL", "info"),
	}

	defaults := domain.DefaultThresholds()
	cfg.Thresholds = domain.Thresholds{
		CriticalStock: atoienv("ALERT_CRITICAL_STOCK", defaults.CriticalStock),
		CriticalDays:  atoienv("ALERT_CRITICAL_DAYS", defaults.CriticalDays),
		WarningStock:  atoienv("ALERT_WARNING_STOCK", defaults.WarningStock),
		WarningDays:   atoienv("ALERT_WARNING_DAYS", defaults.WarningDays),
	}

	if filters := getenv("LOG_DROP_FILTERS", ""); filters != "" {
		for _, f := range strings.Split(filters, ",") {
			if f = strings.TrimSpace(f); f != "" {
				cfg.LogDropFilters = append(cfg.LogDropFilters, f)
			}
		}
	}

	return cfg
}
