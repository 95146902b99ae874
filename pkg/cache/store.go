package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// entry is the stored record with its bookkeeping metadata
type entry[V any] struct {
	key          string
	value        V
	createdAt    time.Time
	lastAccessed time.Time
	accessCount  int64
	expiresAt    time.Time // zero means no expiration
	sizeBytes    int64
}

// expired reports whether the entry's TTL has elapsed at time now
func (e *entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// store is the single cache implementation; the eviction policy is a
// configuration knob rather than a separate type per policy.
type store[V any] struct {
	mu     sync.Mutex
	cfg    Config
	items  map[string]*list.Element // key -> element holding *entry[V]
	order  *list.List               // recency order, front = most recent
	memory int64

	stats   *Statistics
	sizer   Sizer[V]
	metrics *instrumentation

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a cache with the given configuration and options
func New[V any](cfg Config, opts ...Option[V]) Cache[V] {
	o := &options[V]{}
	for _, opt := range opts {
		opt(o)
	}
	if o.sizer == nil {
		o.sizer = func(V) int64 { return defaultEntryOverhead }
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &store[V]{
		cfg:     cfg.withDefaults(),
		items:   make(map[string]*list.Element),
		order:   list.New(),
		stats:   NewStatistics(),
		sizer:   o.sizer,
		metrics: o.metrics,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	go s.sweepLoop(ctx)
	return s
}

// Get retrieves a value and updates recency/frequency bookkeeping
func (s *store[V]) Get(key string) (V, bool) {
	start := time.Now()
	s.mu.Lock()

	element, ok := s.items[key]
	if !ok {
		s.mu.Unlock()
		s.observeMiss(start)
		var zero V
		return zero, false
	}

	e := element.Value.(*entry[V])
	now := time.Now()
	if e.expired(now) {
		s.removeElement(element)
		s.mu.Unlock()
		s.observeMiss(start)
		var zero V
		return zero, false
	}

	e.lastAccessed = now
	e.accessCount++
	s.order.MoveToFront(element)
	value := e.value
	s.mu.Unlock()

	s.observeHit(start)
	return value, true
}

// Set stores a value under the configured default TTL
func (s *store[V]) Set(key string, value V) error {
	s.mu.Lock()
	ttl := s.cfg.DefaultTTL
	s.mu.Unlock()
	return s.SetWithTTL(key, value, ttl)
}

// SetWithTTL stores a value, making headroom per the eviction policy first
func (s *store[V]) SetWithTTL(key string, value V, ttl time.Duration) error {
	size := s.sizer(value) + defaultEntryOverhead
	now := time.Now()

	e := &entry[V]{
		key:          key,
		value:        value,
		createdAt:    now,
		lastAccessed: now,
		sizeBytes:    size,
	}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// An update is a readmission at the new size: unlink the old entry
	// first so a grown value faces the same budget check as a fresh insert.
	if element, exists := s.items[key]; exists {
		s.removeElement(element)
	}

	s.ensureHeadroom(size)

	element := s.order.PushFront(e)
	s.items[key] = element
	s.memory += size
	s.afterMutation()
	s.stats.Set()
	if s.metrics != nil {
		s.metrics.sets.Inc()
	}
	return nil
}

// SetDefaultTTL changes the TTL applied to subsequent Set calls
func (s *store[V]) SetDefaultTTL(ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.DefaultTTL = ttl
}

// Delete removes an entry by key
func (s *store[V]) Delete(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	element, ok := s.items[key]
	if !ok {
		return false
	}
	s.removeElement(element)
	s.afterMutation()
	return true
}

// Clear removes all entries
func (s *store[V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]*list.Element)
	s.order.Init()
	s.memory = 0
	s.afterMutation()
}

// Size returns the current number of entries
func (s *store[V]) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Stats returns the live statistics tracker
func (s *store[V]) Stats() *Statistics {
	return s.stats
}

// Close stops the background sweeper
func (s *store[V]) Close() {
	s.cancel()
	<-s.done
}

// ensureHeadroom evicts entries until the new entry fits inside the limits
// and usage sits below the pressure threshold. The emergency path runs
// first when usage crossed the hard threshold: purge everything expired,
// then force-evict a fraction of what remains.
// Must be called with the mutex held.
func (s *store[V]) ensureHeadroom(incoming int64) {
	if s.usageRatio(incoming) >= s.cfg.EmergencyThreshold {
		s.purgeExpired(len(s.items))
		if s.usageRatio(incoming) >= s.cfg.EmergencyThreshold {
			forced := int(float64(len(s.items)) * s.cfg.EmergencyFraction)
			for i := 0; i < forced && len(s.items) > 0; i++ {
				s.evictOne()
			}
		}
	}

	for len(s.items) > 0 && s.overBudget(incoming) {
		s.evictOne()
	}
}

// overBudget reports whether admitting incoming bytes would break a limit
// or keep usage above the pressure threshold.
func (s *store[V]) overBudget(incoming int64) bool {
	if s.cfg.MaxEntries > 0 && len(s.items)+1 > s.cfg.MaxEntries {
		return true
	}
	if s.cfg.MaxMemoryBytes > 0 && s.memory+incoming > s.cfg.MaxMemoryBytes {
		return true
	}
	return s.usageRatio(incoming) > s.cfg.PressureThreshold
}

// usageRatio returns the worse of the entry-count and memory usage ratios
// as if incoming bytes were already admitted.
func (s *store[V]) usageRatio(incoming int64) float64 {
	var ratio float64
	if s.cfg.MaxEntries > 0 {
		ratio = float64(len(s.items)+1) / float64(s.cfg.MaxEntries)
	}
	if s.cfg.MaxMemoryBytes > 0 {
		if mem := float64(s.memory+incoming) / float64(s.cfg.MaxMemoryBytes); mem > ratio {
			ratio = mem
		}
	}
	return ratio
}

// evictOne removes a single victim chosen by the configured policy.
// Must be called with the mutex held.
func (s *store[V]) evictOne() {
	var victim *list.Element

	switch s.cfg.Policy {
	case PolicyLRU:
		victim = s.order.Back()
	case PolicyLFU:
		var minCount int64 = -1
		for el := s.order.Back(); el != nil; el = el.Prev() {
			e := el.Value.(*entry[V])
			if minCount < 0 || e.accessCount < minCount {
				minCount = e.accessCount
				victim = el
			}
		}
	case PolicyTTL:
		var earliest time.Time
		for el := s.order.Back(); el != nil; el = el.Prev() {
			e := el.Value.(*entry[V])
			if e.expiresAt.IsZero() {
				continue
			}
			if earliest.IsZero() || e.expiresAt.Before(earliest) {
				earliest = e.expiresAt
				victim = el
			}
		}
		if victim == nil {
			victim = s.order.Back()
		}
	case PolicySizeBased:
		var maxSize int64 = -1
		for el := s.order.Back(); el != nil; el = el.Prev() {
			e := el.Value.(*entry[V])
			if e.sizeBytes > maxSize {
				maxSize = e.sizeBytes
				victim = el
			}
		}
	default:
		victim = s.order.Back()
	}

	if victim == nil {
		return
	}
	s.removeElement(victim)
	s.stats.Eviction()
	if s.metrics != nil {
		s.metrics.evictions.Inc()
	}
}

// purgeExpired removes up to limit expired entries.
// Must be called with the mutex held.
func (s *store[V]) purgeExpired(limit int) int {
	now := time.Now()
	purged := 0
	for el := s.order.Back(); el != nil && purged < limit; {
		prev := el.Prev()
		if el.Value.(*entry[V]).expired(now) {
			s.removeElement(el)
			s.stats.Expiration()
			purged++
		}
		el = prev
	}
	return purged
}

// removeElement unlinks an entry from the map, list, and memory budget.
// Must be called with the mutex held.
func (s *store[V]) removeElement(element *list.Element) {
	e := element.Value.(*entry[V])
	delete(s.items, e.key)
	s.order.Remove(element)
	s.memory -= e.sizeBytes
}

// afterMutation refreshes the size gauges.
// Must be called with the mutex held.
func (s *store[V]) afterMutation() {
	s.stats.UpdateSize(int64(len(s.items)), s.memory)
	if s.metrics != nil {
		s.metrics.size.Set(float64(len(s.items)))
		s.metrics.memory.Set(float64(s.memory))
	}
}

// sweepLoop purges expired entries in bounded batches without blocking
// callers for the full scan.
func (s *store[V]) sweepLoop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			s.purgeExpired(s.cfg.SweepBatchSize)
			s.afterMutation()
			s.mu.Unlock()
		}
	}
}

func (s *store[V]) observeHit(start time.Time) {
	s.stats.Hit(time.Since(start))
	if s.metrics != nil {
		s.metrics.hits.Inc()
	}
}

func (s *store[V]) observeMiss(start time.Time) {
	s.stats.Miss(time.Since(start))
	if s.metrics != nil {
		s.metrics.misses.Inc()
	}
}
