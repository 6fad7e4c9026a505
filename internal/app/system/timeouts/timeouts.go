// Package timeouts centralizes the context deadlines used by handlers
// when talking to Mongo, object storage, and other I/O.
//
// Rough guide:
//   - Ping: health checks
//   - Short: single-document reads
//   - Medium: list queries and simple writes
//   - Long: multi-collection writes (approve + provision, reject + notify)
//   - Batch: spreadsheet imports and report generation
package timeouts

import (
	"os"
	"sync"
	"time"
)

// Defaults used when Configure is never called.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
	DefaultBatch  = 60 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
	batch  = DefaultBatch
)

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single-document lookups.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for list queries and ordinary writes.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the timeout for writes that touch several collections.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}

// Batch returns the timeout for imports and workbook exports.
func Batch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return batch
}

// Config holds override values; zero fields keep the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
	Batch  time.Duration
}

// Configure applies non-zero overrides. Call during startup, before
// handlers are registered.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Long > 0 {
		long = cfg.Long
	}
	if cfg.Batch > 0 {
		batch = cfg.Batch
	}
}

// Reset restores defaults. Useful in tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	short = DefaultShort
	medium = DefaultMedium
	long = DefaultLong
	batch = DefaultBatch
}

// ConfigureFromEnv reads overrides from CREWHUB_TIMEOUT_* variables
// (Go duration syntax, e.g. "5s", "2m"). Invalid or missing values are
// ignored. Returns how many values were applied.
func ConfigureFromEnv() int {
	mu.Lock()
	defer mu.Unlock()
	applied := 0

	set := func(env string, dst *time.Duration) {
		if v := os.Getenv(env); v != "" {
			if d, err := time.ParseDuration(v); err == nil && d > 0 {
				*dst = d
				applied++
			}
		}
	}
	set("CREWHUB_TIMEOUT_PING", &ping)
	set("CREWHUB_TIMEOUT_SHORT", &short)
	set("CREWHUB_TIMEOUT_MEDIUM", &medium)
	set("CREWHUB_TIMEOUT_LONG", &long)
	set("CREWHUB_TIMEOUT_BATCH", &batch)

	return applied
}
