package hotpath

import (
	"os"
	"strconv"
	"strings"
)

// Config holds every environment-tunable knob this profiler exposes.
// Loaded once by Start via LoadConfig and not re-read afterward; a running
// profiler has a fixed configuration for its whole lifetime.
type Config struct {
	AllocSelf           bool
	RecentLogs          int
	LogsLimit           int
	MetricsPort         int
	MetricsServerOff    bool
	ThreadsIntervalMs   int
	ForceJSON           bool
	ResultTruncateChars int
	LogLevel            string
}

// DefaultConfig returns the documented default configuration.
func DefaultConfig() Config {
	return Config{
		AllocSelf:           false,
		RecentLogs:          50,
		LogsLimit:           50,
		MetricsPort:         6770,
		MetricsServerOff:    false,
		ThreadsIntervalMs:   1000,
		ForceJSON:           false,
		ResultTruncateChars: 256,
		LogLevel:            "warn",
	}
}

// LoadConfig reads Config from the process environment, falling back to
// DefaultConfig for anything unset or unparsable.
func LoadConfig() Config {
	cfg := DefaultConfig()
	cfg.AllocSelf = envBool("HOTPATH_ALLOC_SELF", cfg.AllocSelf)
	cfg.RecentLogs = envInt("HOTPATH_RECENT_LOGS", cfg.RecentLogs)
	cfg.LogsLimit = envInt("HOTPATH_LOGS_LIMIT", cfg.LogsLimit)
	cfg.MetricsPort = envInt("HOTPATH_METRICS_PORT", cfg.MetricsPort)
	cfg.MetricsServerOff = envBool("HOTPATH_METRICS_SERVER_OFF", cfg.MetricsServerOff)
	cfg.ThreadsIntervalMs = envInt("HOTPATH_THREADS_INTERVAL", cfg.ThreadsIntervalMs)
	cfg.ForceJSON = envBool("HOTPATH_JSON", cfg.ForceJSON)
	cfg.ResultTruncateChars = envInt("HOTPATH_RESULT_TRUNCATE", cfg.ResultTruncateChars)
	if v, ok := os.LookupEnv("HOTPATH_LOG_LEVEL"); ok {
		cfg.LogLevel = v
	}
	return cfg
}

func envBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v = strings.TrimSpace(strings.ToLower(v))
	return v == "true" || v == "1"
}

func envInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}
