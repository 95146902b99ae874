package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// rollingWindowBuckets is the number of one-second buckets kept for the
// rolling hit-rate window.
const rollingWindowBuckets = 60

// latencySmoothing is the EWMA factor for access latency
const latencySmoothing = 0.2

// Statistics tracks cache performance counters. Lifetime counters use
// atomics; the rolling window and smoothed latency sit behind a mutex.
type Statistics struct {
	hits        int64
	misses      int64
	sets        int64
	evictions   int64
	expirations int64

	mu          sync.RWMutex
	startTime   time.Time
	currentSize int64
	memoryUsage int64

	// Per-second buckets for the rolling hit/miss rate
	bucketHits   [rollingWindowBuckets]int64
	bucketMisses [rollingWindowBuckets]int64
	bucketStamps [rollingWindowBuckets]int64 // unix second each bucket covers

	avgLatency time.Duration // exponentially smoothed access latency
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	return &Statistics{startTime: time.Now()}
}

// Hit records a cache hit and its access latency
func (s *Statistics) Hit(latency time.Duration) {
	atomic.AddInt64(&s.hits, 1)
	s.record(latency, true)
}

// Miss records a cache miss and its access latency
func (s *Statistics) Miss(latency time.Duration) {
	atomic.AddInt64(&s.misses, 1)
	s.record(latency, false)
}

// Set records a cache insert
func (s *Statistics) Set() {
	atomic.AddInt64(&s.sets, 1)
}

// Eviction records a policy eviction
func (s *Statistics) Eviction() {
	atomic.AddInt64(&s.evictions, 1)
}

// Expiration records a TTL expiry removal
func (s *Statistics) Expiration() {
	atomic.AddInt64(&s.expirations, 1)
}

// UpdateSize refreshes the size gauges
func (s *Statistics) UpdateSize(entries, memoryBytes int64) {
	s.mu.Lock()
	s.currentSize = entries
	s.memoryUsage = memoryBytes
	s.mu.Unlock()
}

func (s *Statistics) record(latency time.Duration, hit bool) {
	now := time.Now().Unix()
	idx := int(now % rollingWindowBuckets)

	s.mu.Lock()
	if s.bucketStamps[idx] != now {
		s.bucketStamps[idx] = now
		s.bucketHits[idx] = 0
		s.bucketMisses[idx] = 0
	}
	if hit {
		s.bucketHits[idx]++
	} else {
		s.bucketMisses[idx]++
	}
	if s.avgLatency == 0 {
		s.avgLatency = latency
	} else {
		s.avgLatency = time.Duration(float64(s.avgLatency)*(1-latencySmoothing) + float64(latency)*latencySmoothing)
	}
	s.mu.Unlock()
}

// Hits returns the lifetime hit count
func (s *Statistics) Hits() int64 { return atomic.LoadInt64(&s.hits) }

// Misses returns the lifetime miss count
func (s *Statistics) Misses() int64 { return atomic.LoadInt64(&s.misses) }

// Sets returns the lifetime insert count
func (s *Statistics) Sets() int64 { return atomic.LoadInt64(&s.sets) }

// Evictions returns the lifetime eviction count
func (s *Statistics) Evictions() int64 { return atomic.LoadInt64(&s.evictions) }

// Expirations returns the lifetime TTL expiry count
func (s *Statistics) Expirations() int64 { return atomic.LoadInt64(&s.expirations) }

// CurrentSize returns the current entry count
func (s *Statistics) CurrentSize() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentSize
}

// MemoryUsage returns the estimated memory usage in bytes
func (s *Statistics) MemoryUsage() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memoryUsage
}

// AverageLatency returns the exponentially smoothed access latency
func (s *Statistics) AverageLatency() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.avgLatency
}

// HitRate returns the hit ratio over the rolling window (0.0 to 1.0).
// Falls back to the lifetime ratio while the window is empty.
func (s *Statistics) HitRate() float64 {
	now := time.Now().Unix()

	s.mu.RLock()
	var hits, misses int64
	for i := 0; i < rollingWindowBuckets; i++ {
		if now-s.bucketStamps[i] < rollingWindowBuckets {
			hits += s.bucketHits[i]
			misses += s.bucketMisses[i]
		}
	}
	s.mu.RUnlock()

	if hits+misses == 0 {
		lifetimeHits := s.Hits()
		lifetimeTotal := lifetimeHits + s.Misses()
		if lifetimeTotal == 0 {
			return 0
		}
		return float64(lifetimeHits) / float64(lifetimeTotal)
	}
	return float64(hits) / float64(hits+misses)
}

// Uptime returns how long the tracker has been running
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Summary is a point-in-time snapshot of all statistics
type Summary struct {
	Hits           int64         `json:"hits"`
	Misses         int64         `json:"misses"`
	Sets           int64         `json:"sets"`
	Evictions      int64         `json:"evictions"`
	Expirations    int64         `json:"expirations"`
	CurrentSize    int64         `json:"current_size"`
	MemoryUsage    int64         `json:"memory_usage"`
	HitRate        float64       `json:"hit_rate"`
	AverageLatency time.Duration `json:"average_latency"`
	Uptime         time.Duration `json:"uptime"`
}

// Summary returns a snapshot of all statistics
func (s *Statistics) Summary() Summary {
	return Summary{
		Hits:           s.Hits(),
		Misses:         s.Misses(),
		Sets:           s.Sets(),
		Evictions:      s.Evictions(),
		Expirations:    s.Expirations(),
		CurrentSize:    s.CurrentSize(),
		MemoryUsage:    s.MemoryUsage(),
		HitRate:        s.HitRate(),
		AverageLatency: s.AverageLatency(),
		Uptime:         s.Uptime(),
	}
}
