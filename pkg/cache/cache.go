// Package cache provides a generic, thread-safe cache with configurable
// eviction policies (LRU, LFU, TTL, size-based), memory-pressure handling,
// and a background sweep for expired entries.
//
// Statistics are always collected; Prometheus metric export is optional and
// enabled via functional options. Pre-tuned constructors exist for the three
// optimizer instances (paths, prices, inventory).
package cache

import (
	"time"
)

// Policy selects which entries are removed under pressure
type Policy string

const (
	PolicyLRU       Policy = "LRU"
	PolicyLFU       Policy = "LFU"
	PolicyTTL       Policy = "TTL"
	PolicySizeBased Policy = "SIZE_BASED"
)

// Default tuning values
const (
	DefaultPressureThreshold  = 0.8
	DefaultEmergencyThreshold = 0.9
	DefaultEmergencyFraction  = 0.2
	DefaultSweepInterval      = 30 * time.Second
	DefaultSweepBatchSize     = 256
	defaultEntryOverhead      = 128 // bookkeeping bytes charged per entry
)

// Config describes a cache instance
type Config struct {
	Name           string
	MaxEntries     int
	MaxMemoryBytes int64
	DefaultTTL     time.Duration
	Policy         Policy

	// PressureThreshold is the usage fraction above which inserts trigger
	// policy eviction before the hard limits are reached. Defaults to 0.8.
	PressureThreshold float64

	// EmergencyThreshold is the usage fraction above which the emergency
	// path runs: purge all expired entries, then force-evict
	// EmergencyFraction of the remaining entries per policy. Defaults to 0.9.
	EmergencyThreshold float64
	EmergencyFraction  float64

	// Background sweep of expired entries
	SweepInterval  time.Duration
	SweepBatchSize int
}

// withDefaults fills unset tuning fields
func (c Config) withDefaults() Config {
	if c.PressureThreshold <= 0 {
		c.PressureThreshold = DefaultPressureThreshold
	}
	if c.EmergencyThreshold <= 0 {
		c.EmergencyThreshold = DefaultEmergencyThreshold
	}
	if c.EmergencyFraction <= 0 {
		c.EmergencyFraction = DefaultEmergencyFraction
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	if c.SweepBatchSize <= 0 {
		c.SweepBatchSize = DefaultSweepBatchSize
	}
	return c
}

// Cache is the generic cache interface, parameterized by value type V.
type Cache[V any] interface {
	// Get retrieves a value by key. Returns the zero value and false on a
	// miss or an expired entry.
	Get(key string) (V, bool)

	// Set stores a value under the instance's default TTL.
	Set(key string, value V) error

	// SetWithTTL stores a value with an explicit TTL. A non-positive TTL
	// means the entry never expires.
	SetWithTTL(key string, value V, ttl time.Duration) error

	// SetDefaultTTL changes the TTL applied by Set to subsequent inserts.
	// Existing entries keep the TTL they were stored with.
	SetDefaultTTL(ttl time.Duration)

	// Delete removes an entry by key. Returns true if the key existed.
	Delete(key string) bool

	// Clear removes all entries.
	Clear()

	// Size returns the current number of entries.
	Size() int

	// Stats returns the live statistics tracker.
	Stats() *Statistics

	// Close stops the background sweeper and releases resources.
	Close()
}

// Sizer estimates the memory footprint of a value in bytes
type Sizer[V any] func(value V) int64

// Option configures cache behavior using the functional options pattern
type Option[V any] func(*options[V])

type options[V any] struct {
	sizer   Sizer[V]
	metrics *instrumentation
}

// WithSizer overrides the per-value size estimate used for the memory
// budget. Without it every value is charged a flat default.
func WithSizer[V any](sizer Sizer[V]) Option[V] {
	return func(o *options[V]) {
		o.sizer = sizer
	}
}
