// Package services orchestrates the procurement path optimizer: building
// the network snapshot, searching it for candidate paths, and running the
// end-to-end purchase flow against the external collaborators.
package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"supplynet-backend/application/ports"
	"supplynet-backend/domain/core/aggregates"
	"supplynet-backend/domain/core/entities"
	"supplynet-backend/domain/events"
	apperrors "supplynet-backend/pkg/errors"
)

// Builder tuning defaults
const (
	DefaultStalenessWindow = 60 * time.Second
	DefaultBuildTimeout    = 30 * time.Second
)

// NetworkBuilderConfig tunes snapshot freshness and build behavior
type NetworkBuilderConfig struct {
	StalenessWindow time.Duration
	BuildTimeout    time.Duration
}

func (c NetworkBuilderConfig) withDefaults() NetworkBuilderConfig {
	if c.StalenessWindow <= 0 {
		c.StalenessWindow = DefaultStalenessWindow
	}
	if c.BuildTimeout <= 0 {
		c.BuildTimeout = DefaultBuildTimeout
	}
	return c
}

// buildCall tracks one in-flight build so concurrent callers can await it
type buildCall struct {
	done    chan struct{}
	network *aggregates.Network
	err     error
}

// NetworkBuilder constructs and publishes immutable network snapshots from
// the external distributor directory.
//
// Builds are single-flight: concurrent requests await the one in-flight
// build instead of duplicating work. A successful build publishes a brand
// new snapshot by atomic reference swap; on failure the last good snapshot
// keeps serving.
type NetworkBuilder struct {
	directory ports.DistributorDirectory
	eventBus  ports.EventBus
	logger    *zap.Logger
	cfg       NetworkBuilderConfig

	current atomic.Pointer[aggregates.Network]
	version atomic.Int64

	mu       sync.Mutex
	inflight *buildCall
}

// NewNetworkBuilder creates a network builder
func NewNetworkBuilder(
	directory ports.DistributorDirectory,
	eventBus ports.EventBus,
	cfg NetworkBuilderConfig,
	logger *zap.Logger,
) *NetworkBuilder {
	return &NetworkBuilder{
		directory: directory,
		eventBus:  eventBus,
		cfg:       cfg.withDefaults(),
		logger:    logger,
	}
}

// Current returns the published snapshot, or a NetworkNotBuilt error
func (b *NetworkBuilder) Current() (*aggregates.Network, error) {
	if network := b.current.Load(); network != nil {
		return network, nil
	}
	return nil, apperrors.NewNetworkNotBuiltError()
}

// BuildGraph returns a fresh snapshot, rebuilding when the published one
// is older than the staleness window or forceRebuild is set.
func (b *NetworkBuilder) BuildGraph(ctx context.Context, forceRebuild bool) (*aggregates.Network, error) {
	if !forceRebuild {
		if network := b.current.Load(); network != nil && network.Age() < b.cfg.StalenessWindow {
			return network, nil
		}
	}

	b.mu.Lock()
	if call := b.inflight; call != nil {
		b.mu.Unlock()
		return b.await(ctx, call)
	}
	call := &buildCall{done: make(chan struct{})}
	b.inflight = call
	b.mu.Unlock()

	go b.runBuild(call, forceRebuild)

	return b.await(ctx, call)
}

// await blocks on an in-flight build until it completes or the caller's
// context expires. Abandoning the wait does not cancel the build; later
// callers still benefit from its result.
func (b *NetworkBuilder) await(ctx context.Context, call *buildCall) (*aggregates.Network, error) {
	select {
	case <-call.done:
		return call.network, call.err
	case <-ctx.Done():
		return nil, apperrors.NewTimeoutError("network build").WithCause(ctx.Err())
	}
}

// runBuild performs the actual fetch/assemble/publish cycle
func (b *NetworkBuilder) runBuild(call *buildCall, forced bool) {
	defer func() {
		b.mu.Lock()
		b.inflight = nil
		b.mu.Unlock()
		close(call.done)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), b.cfg.BuildTimeout)
	defer cancel()

	start := time.Now()
	network, err := b.assemble(ctx)
	if err != nil {
		call.err = err
		b.logger.Error("Network build failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)),
		)
		b.publishEvent(ctx, events.NewNetworkBuildFailed(err.Error()))
		return
	}

	b.current.Store(network)
	call.network = network

	nodeCount, edgeCount := network.Size()
	b.logger.Info("Network snapshot published",
		zap.Int64("version", network.Version()),
		zap.Int("nodes", nodeCount),
		zap.Int("edges", edgeCount),
		zap.Bool("forced", forced),
		zap.Duration("duration", time.Since(start)),
	)
	b.publishEvent(ctx, events.NewNetworkRebuilt(network.Version(), nodeCount, edgeCount, forced))
}

// assemble fetches the directory and constructs a validated snapshot
func (b *NetworkBuilder) assemble(ctx context.Context) (*aggregates.Network, error) {
	records, err := b.directory.FetchActiveDistributors(ctx)
	if err != nil {
		return nil, apperrors.NewExternalError("distributor directory", err)
	}

	nodes := make([]*entities.Distributor, 0, len(records))
	for _, record := range records {
		nodes = append(nodes, recordToNode(record))
	}

	return aggregates.NewNetwork(nodes, b.version.Add(1))
}

// IncrementalUpdate re-fetches the given nodes plus their direct neighbors
// and derives a patched snapshot. Any inconsistency falls back to a forced
// full rebuild rather than publishing a dubious patch.
func (b *NetworkBuilder) IncrementalUpdate(ctx context.Context, nodeIDs []string) (*aggregates.Network, error) {
	current := b.current.Load()
	if current == nil {
		return b.BuildGraph(ctx, true)
	}

	// Expand the id set with direct neighbors so edges stay consistent
	idSet := make(map[string]bool, len(nodeIDs)*3)
	for _, id := range nodeIDs {
		idSet[id] = true
		if parent, ok := current.GetParent(id); ok {
			idSet[parent.ID] = true
		}
		for _, child := range current.GetChildren(id) {
			idSet[child.ID] = true
		}
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	records, err := b.directory.FetchDistributors(ctx, ids)
	if err != nil {
		b.logger.Warn("Incremental fetch failed, forcing full rebuild", zap.Error(err))
		return b.BuildGraph(ctx, true)
	}

	patches := make(map[string]*entities.Distributor, len(idSet))
	for id := range idSet {
		patches[id] = nil // removed unless the fetch still reports it active
	}
	for _, record := range records {
		if record.Status == string(entities.StatusActive) {
			patches[record.ID] = recordToNode(record)
		}
	}

	patched, err := current.WithPatchedNodes(patches, b.version.Add(1))
	if err != nil {
		b.logger.Warn("Incremental patch produced inconsistent snapshot, forcing full rebuild",
			zap.Error(err),
			zap.Strings("nodeIds", nodeIDs),
		)
		return b.BuildGraph(ctx, true)
	}

	b.current.Store(patched)
	nodeCount, edgeCount := patched.Size()
	b.logger.Info("Network snapshot patched",
		zap.Int64("version", patched.Version()),
		zap.Int("patchedNodes", len(nodeIDs)),
		zap.Int("nodes", nodeCount),
		zap.Int("edges", edgeCount),
	)
	return patched, nil
}

// publishEvent emits a domain event best-effort; event delivery never
// affects build outcomes.
func (b *NetworkBuilder) publishEvent(ctx context.Context, event events.DomainEvent) {
	if b.eventBus == nil {
		return
	}
	if err := b.eventBus.Publish(ctx, event); err != nil {
		b.logger.Warn("Failed to publish network event",
			zap.Error(err),
			zap.String("eventType", event.GetEventType()),
		)
	}
}

// recordToNode converts a directory record into a domain node
func recordToNode(record ports.DirectoryRecord) *entities.Distributor {
	return &entities.Distributor{
		ID:       record.ID,
		Level:    entities.Level(record.Level),
		Status:   entities.Status(record.Status),
		ParentID: record.ParentID,
		Metadata: entities.DistributorMetadata{
			TotalSales: record.TotalSales,
			TeamSize:   record.TeamSize,
			JoinDate:   record.JoinDate,
			LastActive: record.LastActive,
		},
	}
}
