package ports

import (
	"context"

	"spooltrack/domain/core/entities"
	"spooltrack/domain/core/valueobjects"
	"spooltrack/domain/events"
	"spooltrack/domain/overlay"
	"spooltrack/domain/scan"
)

// OverlayStore is the port to the durable store of user-authored edits.
// This is the core's only durable side effect: generated components are
// never persisted, only overlays, measurements and relationship links.
type OverlayStore interface {
	// GetActiveOverlays returns every active overlay record
	GetActiveOverlays(ctx context.Context) ([]overlay.Record, error)

	// SaveComponent persists a component's user-authored state as an
	// overlay record (create or overwrite)
	SaveComponent(ctx context.Context, component *entities.Component) error

	// DeleteComponent deactivates the overlay record for a component
	DeleteComponent(ctx context.Context, id valueobjects.ComponentID) error

	// SaveMeasurement appends an immutable measurement record
	SaveMeasurement(ctx context.Context, measurement *entities.Measurement) error

	// GetMeasurements returns all measurements for a component, newest first
	GetMeasurements(ctx context.Context, componentID valueobjects.ComponentID) ([]*entities.Measurement, error)

	// AddChildComponent persists a parent/child link
	AddChildComponent(ctx context.Context, parentID, childID valueobjects.ComponentID) error

	// RemoveChildComponent removes a persisted parent/child link. For
	// generated child edges this records a tombstone instead.
	RemoveChildComponent(ctx context.Context, parentID, childID valueobjects.ComponentID) error
}

// ScanSource provides the finite sequence of decrypted scan records the
// graph builder consumes. The core only reads scan data.
type ScanSource interface {
	ReadScans(ctx context.Context) ([]scan.Record, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}

// MutationLock serializes structural mutations across service instances.
// A process-local implementation suffices for a single instance; the
// DynamoDB implementation covers multi-instance deployments.
type MutationLock interface {
	// Acquire blocks until the named lock is held or ctx is done. The
	// returned release function must be called exactly once.
	Acquire(ctx context.Context, name string) (release func(), err error)
}
