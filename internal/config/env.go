package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: CLASSJS_[SECTION]_[KEY] (e.g., CLASSJS_CACHE_PATH).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.OutputDir, "CLASSJS_OUTPUT_DIR")

	// Generator
	setEnvString(&cfg.Generator.RuntimeNamespace, "CLASSJS_GENERATOR_RUNTIME_NAMESPACE")
	setEnvBool(&cfg.Generator.DisableMainCall, "CLASSJS_GENERATOR_DISABLE_MAIN_CALL")
	setEnvInt(&cfg.Generator.Workers, "CLASSJS_GENERATOR_WORKERS")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "CLASSJS_WATCH_DEBOUNCE")

	// Cache
	setEnvBoolPtr(&cfg.Cache.Enabled, "CLASSJS_CACHE_ENABLED")
	setEnvString(&cfg.Cache.Path, "CLASSJS_CACHE_PATH")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "CLASSJS_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "CLASSJS_OBSERVABILITY_OTLP_ENDPOINT")

	setEnvString(&cfg.Trace.Root, "CLASSJS_TRACE_ROOT")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = b
		}
	}
}

func setEnvBoolPtr(target **bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = &b
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
