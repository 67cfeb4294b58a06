package services

import (
	"context"
	"fmt"
	"time"

	"spooltrack/application/builder"
	"spooltrack/application/merge"
	"spooltrack/application/ports"
	"spooltrack/domain/core/aggregates"
	"spooltrack/domain/events"
	"spooltrack/pkg/observability"

	"go.uber.org/zap"
)

// inventoryCacheKey holds the single materialized inventory
const inventoryCacheKey = "inventory:materialized"

// cacheTTLSeconds bounds staleness when invalidation is missed
const cacheTTLSeconds = 300

// AssemblyService runs the read pipeline: scan records through the graph
// builder, active overlays through the merge engine, out comes the
// materialized inventory. The result is cached until a mutation
// invalidates it; regeneration is idempotent so a cache miss is only a
// performance event, never a correctness one.
type AssemblyService struct {
	scanSource ports.ScanSource
	store      ports.OverlayStore
	builder    *builder.GraphBuilder
	merger     *merge.Merger
	cache      ports.Cache
	publisher  ports.EventPublisher
	logger     *zap.Logger
}

// NewAssemblyService creates a new assembly service
func NewAssemblyService(
	scanSource ports.ScanSource,
	store ports.OverlayStore,
	graphBuilder *builder.GraphBuilder,
	merger *merge.Merger,
	cache ports.Cache,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *AssemblyService {
	return &AssemblyService{
		scanSource: scanSource,
		store:      store,
		builder:    graphBuilder,
		merger:     merger,
		cache:      cache,
		publisher:  publisher,
		logger:     logger,
	}
}

// Inventory returns the materialized inventory, assembling it on first
// use or after invalidation
func (s *AssemblyService) Inventory(ctx context.Context) (*aggregates.Inventory, error) {
	if cached, ok := s.cache.Get(ctx, inventoryCacheKey); ok {
		if inv, ok := cached.(*aggregates.Inventory); ok {
			return inv, nil
		}
	}
	return s.assemble(ctx)
}

// Refresh drops the cached inventory and reassembles it
func (s *AssemblyService) Refresh(ctx context.Context) (*aggregates.Inventory, error) {
	s.Invalidate(ctx)
	return s.assemble(ctx)
}

// Invalidate drops the cached inventory; the next read reassembles
func (s *AssemblyService) Invalidate(ctx context.Context) {
	if err := s.cache.Delete(ctx, inventoryCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate inventory cache", zap.Error(err))
	}
}

func (s *AssemblyService) assemble(ctx context.Context) (*aggregates.Inventory, error) {
	started := time.Now()

	var inv *aggregates.Inventory
	err := observability.Capture(ctx, "assembly.materialize", func(ctx context.Context) error {
		scans, err := s.scanSource.ReadScans(ctx)
		if err != nil {
			return fmt.Errorf("reading scans: %w", err)
		}

		generated, err := s.builder.Generate(scans)
		if err != nil {
			return fmt.Errorf("generating components: %w", err)
		}

		overlays, err := s.store.GetActiveOverlays(ctx)
		if err != nil {
			return fmt.Errorf("loading overlays: %w", err)
		}

		inv, err = s.merger.Merge(generated, overlays)
		if err != nil {
			return fmt.Errorf("merging overlays: %w", err)
		}

		if err := s.cache.Set(ctx, inventoryCacheKey, inv, cacheTTLSeconds); err != nil {
			s.logger.Warn("Failed to cache materialized inventory", zap.Error(err))
		}

		event := events.NewInventoryAssembled(inv.Size(), len(generated), len(overlays), time.Now())
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish assembly event", zap.Error(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Assembled inventory",
		zap.Int("components", inv.Size()),
		zap.Duration("elapsed", time.Since(started)),
	)
	return inv, nil
}
