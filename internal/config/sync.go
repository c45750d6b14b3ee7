package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// SyncConfig is the surface consumed by the sync engine and scheduler.
type SyncConfig struct {
	BaseURL  string        // remote source base URL
	Currency string        // accepted currency code
	Window   time.Duration // trailing comparison window
	Interval time.Duration // fetch interval, runtime-reconfigurable
	PageSize int           // remote batch size
	Timeout  time.Duration // per fetch/store operation
}

func LoadSync() SyncConfig {
	return SyncConfig{
		BaseURL:  getenv("REVERB_BASE_URL", "https://api.reverb.com"),
		Currency: strings.ToUpper(getenv("ACCEPTED_CURRENCY", "USD")),
		Window:   time.Duration(getint("WINDOW_DAYS", 30)) * 24 * time.Hour,
		Interval: getdur("SYNC_INTERVAL", time.Hour),
		PageSize: getint("PAGE_SIZE", 300),
		Timeout:  getdur("SYNC_TIMEOUT", 30*time.Second),
	}
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// LoadRedis returns ok=false when no address is configured; the snapshot
// cache is then simply not wired.
func LoadRedis() (RedisConfig, bool) {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return RedisConfig{}, false
	}
	return RedisConfig{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       getint("REDIS_DB", 0),
		TTL:      getdur("SNAPSHOT_TTL", 2*time.Hour),
	}, true
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if x, err := strconv.Atoi(v); err == nil {
			return x
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if x, err := time.ParseDuration(v); err == nil {
			return x
		}
	}
	return def
}
