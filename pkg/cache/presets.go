package cache

import "time"

// Pre-tuned configurations for the three optimizer cache instances.
// TTLs track data volatility: inventory changes fastest, paths slowest.

// PathCacheConfig returns the configuration for the procurement path cache
func PathCacheConfig() Config {
	return Config{
		Name:           "paths",
		MaxEntries:     2000,
		MaxMemoryBytes: 64 << 20,
		DefaultTTL:     5 * time.Minute,
		Policy:         PolicyLRU,
	}
}

// PriceCacheConfig returns the configuration for the unit price cache
func PriceCacheConfig() Config {
	return Config{
		Name:           "prices",
		MaxEntries:     5000,
		MaxMemoryBytes: 8 << 20,
		DefaultTTL:     2 * time.Minute,
		Policy:         PolicyLFU,
	}
}

// InventoryCacheConfig returns the configuration for the stock level cache
func InventoryCacheConfig() Config {
	return Config{
		Name:           "inventory",
		MaxEntries:     5000,
		MaxMemoryBytes: 8 << 20,
		DefaultTTL:     30 * time.Second,
		Policy:         PolicyTTL,
		SweepInterval:  10 * time.Second,
	}
}
