package config

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// debounceDelay coalesces rapid file events into one reload
const debounceDelay = 500 * time.Millisecond

// Duration parses YAML scalars like "2s" or "500ms" into a duration
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the value as a time.Duration
func (d Duration) Std() time.Duration { return time.Duration(d) }

// TuningValues are the optimizer knobs operators may adjust at runtime
// without restarting the service.
type TuningValues struct {
	Search struct {
		MaxDepth      int      `yaml:"maxDepth"`
		MaxPaths      int      `yaml:"maxPaths"`
		TimeBudget    Duration `yaml:"timeBudget"`
		DefaultPreset string   `yaml:"defaultPreset"`
	} `yaml:"search"`

	Batch struct {
		Size            int      `yaml:"size"`
		Workers         int      `yaml:"workers"`
		InterBatchPause Duration `yaml:"interBatchPause"`
	} `yaml:"batch"`

	Cache struct {
		PathTTL      Duration `yaml:"pathTTL"`
		PriceTTL     Duration `yaml:"priceTTL"`
		InventoryTTL Duration `yaml:"inventoryTTL"`
	} `yaml:"cache"`
}

// DefaultTuning returns the built-in tuning values
func DefaultTuning() TuningValues {
	var t TuningValues
	t.Search.MaxDepth = 10
	t.Search.MaxPaths = 5
	t.Search.TimeBudget = Duration(5 * time.Second)
	t.Search.DefaultPreset = "BALANCED"
	t.Batch.Size = 10
	t.Batch.Workers = 4
	t.Batch.InterBatchPause = Duration(100 * time.Millisecond)
	t.Cache.PathTTL = Duration(5 * time.Minute)
	t.Cache.PriceTTL = Duration(2 * time.Minute)
	t.Cache.InventoryTTL = Duration(30 * time.Second)
	return t
}

// Tuning serves the current tuning values and hot-reloads them when the
// backing YAML file changes. Without a file it serves the defaults.
type Tuning struct {
	current atomic.Pointer[TuningValues]
	path    string
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	stopCh  chan struct{}

	mu        sync.Mutex
	callbacks []func(TuningValues)
}

// NewTuning loads tuning from path (empty means defaults only) and starts
// watching the file for changes.
func NewTuning(path string, logger *zap.Logger) (*Tuning, error) {
	t := &Tuning{
		path:   path,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	values := DefaultTuning()
	if path != "" {
		loaded, err := loadTuningFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load tuning file: %w", err)
		}
		values = loaded
	}
	t.current.Store(&values)

	if path != "" {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		if err := watcher.Add(path); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("failed to watch tuning file: %w", err)
		}
		t.watcher = watcher
		go t.watchLoop()
		logger.Info("Tuning hot reload enabled", zap.String("file", path))
	}

	return t, nil
}

// Current returns the active tuning values
func (t *Tuning) Current() TuningValues {
	return *t.current.Load()
}

// OnChange registers a callback invoked after each successful reload
func (t *Tuning) OnChange(callback func(TuningValues)) {
	t.mu.Lock()
	t.callbacks = append(t.callbacks, callback)
	t.mu.Unlock()
}

// Stop stops the file watcher
func (t *Tuning) Stop() {
	if t.watcher != nil {
		close(t.stopCh)
		t.watcher.Close()
	}
}

// watchLoop reloads on write events, debounced
func (t *Tuning) watchLoop() {
	var debounce *time.Timer

	for {
		select {
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, t.reload)

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			t.logger.Error("Tuning file watcher error", zap.Error(err))

		case <-t.stopCh:
			return
		}
	}
}

// reload re-reads the tuning file; an invalid file keeps the prior values
func (t *Tuning) reload() {
	values, err := loadTuningFile(t.path)
	if err != nil {
		t.logger.Error("Tuning reload failed, keeping previous values",
			zap.String("file", t.path),
			zap.Error(err),
		)
		return
	}

	t.current.Store(&values)
	t.logger.Info("Tuning reloaded",
		zap.String("file", t.path),
		zap.Int("searchMaxDepth", values.Search.MaxDepth),
		zap.Duration("searchBudget", values.Search.TimeBudget.Std()),
		zap.Int("batchSize", values.Batch.Size),
	)

	t.mu.Lock()
	callbacks := make([]func(TuningValues), len(t.callbacks))
	copy(callbacks, t.callbacks)
	t.mu.Unlock()
	for _, cb := range callbacks {
		cb(values)
	}
}

// loadTuningFile parses a YAML tuning file over the defaults
func loadTuningFile(path string) (TuningValues, error) {
	values := DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		return values, err
	}
	if err := yaml.Unmarshal(data, &values); err != nil {
		return values, err
	}

	if values.Search.MaxDepth <= 0 || values.Search.MaxPaths <= 0 {
		return values, fmt.Errorf("search.maxDepth and search.maxPaths must be positive")
	}
	if values.Batch.Size <= 0 || values.Batch.Workers <= 0 {
		return values, fmt.Errorf("batch.size and batch.workers must be positive")
	}
	return values, nil
}
