package memory

import (
	"context"
	"sort"
	"sync"

	"spooltrack/application/ports"
	"spooltrack/domain/core/entities"
	"spooltrack/domain/core/valueobjects"
	"spooltrack/domain/overlay"
	"spooltrack/domain/scan"
)

// OverlayStore is an in-memory ports.OverlayStore for local development
// and tests. Semantics mirror the DynamoDB store: full-record saves,
// tombstones for removed generated edges, deactivation instead of
// deletion.
type OverlayStore struct {
	mu           sync.RWMutex
	records      map[valueobjects.ComponentID]overlay.Record
	measurements map[valueobjects.ComponentID][]*entities.Measurement
}

// NewOverlayStore creates an empty in-memory overlay store
func NewOverlayStore() *OverlayStore {
	return &OverlayStore{
		records:      make(map[valueobjects.ComponentID]overlay.Record),
		measurements: make(map[valueobjects.ComponentID][]*entities.Measurement),
	}
}

// GetActiveOverlays returns every active overlay record
func (s *OverlayStore) GetActiveOverlays(ctx context.Context) ([]overlay.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]overlay.Record, 0, len(s.records))
	for _, rec := range s.records {
		if rec.Active {
			out = append(out, rec)
		}
	}
	return out, nil
}

// SaveComponent snapshots a component's state as its overlay record.
// Child-edge bookkeeping (AddedChildren/RemovedChildren) belongs to the
// edge methods and is carried over untouched, so a field save can never
// turn a generated edge into a user-added one.
func (s *OverlayStore) SaveComponent(ctx context.Context, component *entities.Component) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := recordFromComponent(component)
	if existing, ok := s.records[component.ID()]; ok {
		rec.AddedChildren = existing.AddedChildren
		rec.RemovedChildren = existing.RemovedChildren
		rec.CreatedAt = existing.CreatedAt
	}
	s.records[component.ID()] = rec
	return nil
}

// DeleteComponent deactivates the overlay record for a component
func (s *OverlayStore) DeleteComponent(ctx context.Context, id valueobjects.ComponentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[id]; ok {
		rec.Active = false
		s.records[id] = rec
	}
	return nil
}

// SaveMeasurement appends an immutable measurement record
func (s *OverlayStore) SaveMeasurement(ctx context.Context, measurement *entities.Measurement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := measurement.ComponentID()
	s.measurements[id] = append(s.measurements[id], measurement)
	return nil
}

// GetMeasurements returns all measurements for a component, newest first
func (s *OverlayStore) GetMeasurements(ctx context.Context, componentID valueobjects.ComponentID) ([]*entities.Measurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.measurements[componentID]
	out := make([]*entities.Measurement, len(stored))
	copy(out, stored)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MeasuredAt().After(out[j].MeasuredAt())
	})
	return out, nil
}

// AddChildComponent records a child edge on the parent's overlay
func (s *OverlayStore) AddChildComponent(ctx context.Context, parentID, childID valueobjects.ComponentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.recordFor(parentID)
	rec.RemovedChildren = removeID(rec.RemovedChildren, childID)
	if !containsID(rec.AddedChildren, childID) {
		rec.AddedChildren = append(rec.AddedChildren, childID)
	}
	s.records[parentID] = rec
	return nil
}

// RemoveChildComponent removes a recorded child edge, tombstoning edges
// the overlay never added
func (s *OverlayStore) RemoveChildComponent(ctx context.Context, parentID, childID valueobjects.ComponentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.recordFor(parentID)
	if containsID(rec.AddedChildren, childID) {
		rec.AddedChildren = removeID(rec.AddedChildren, childID)
	} else if !containsID(rec.RemovedChildren, childID) {
		rec.RemovedChildren = append(rec.RemovedChildren, childID)
	}
	s.records[parentID] = rec
	return nil
}

func (s *OverlayStore) recordFor(id valueobjects.ComponentID) overlay.Record {
	if rec, ok := s.records[id]; ok {
		return rec
	}
	return overlay.Record{ComponentID: id, Active: true}
}

func recordFromComponent(c *entities.Component) overlay.Record {
	name := c.Name()
	category := c.Category()
	manufacturer := c.Manufacturer()
	description := c.Description()
	tags := c.Tags()
	variable := c.VariableMass()

	rec := overlay.Record{
		ComponentID:  c.ID(),
		Name:         &name,
		Category:     &category,
		Manufacturer: &manufacturer,
		Description:  &description,
		Tags:         &tags,
		VariableMass: &variable,
		Active:       true,
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
	}

	if mass, ok := c.Mass(); ok {
		grams := mass.Grams()
		inferred := c.MassInferred()
		rec.MassGrams = &grams
		rec.MassInferred = &inferred
	}
	if full, ok := c.FullMass(); ok {
		grams := full.Grams()
		rec.FullMassGrams = &grams
	}
	if !c.ParentID().IsZero() {
		parent := c.ParentID()
		rec.ParentID = &parent
	}
	rec.Siblings = append(rec.Siblings, c.Siblings()...)

	if ident, ok := c.TrackingIdentifier(); ok {
		rec.TrackingIdentifier = &ident
	}
	return rec
}

func containsID(list []valueobjects.ComponentID, id valueobjects.ComponentID) bool {
	for _, v := range list {
		if v.Equals(id) {
			return true
		}
	}
	return false
}

func removeID(list []valueobjects.ComponentID, id valueobjects.ComponentID) []valueobjects.ComponentID {
	out := list[:0]
	for _, v := range list {
		if !v.Equals(id) {
			out = append(out, v)
		}
	}
	return out
}

// ScanSource serves a fixed slice of scan records
type ScanSource struct {
	mu      sync.RWMutex
	records []scan.Record
}

// NewScanSource creates a scan source over the given records
func NewScanSource(records []scan.Record) *ScanSource {
	return &ScanSource{records: records}
}

// ReadScans returns a copy of the stored records
func (s *ScanSource) ReadScans(ctx context.Context) ([]scan.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]scan.Record, len(s.records))
	copy(out, s.records)
	return out, nil
}

// SetScans replaces the stored records, simulating fresh acquisition
func (s *ScanSource) SetScans(records []scan.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
}

// LocalLock is a process-local ports.MutationLock for single-instance
// deployments and tests
type LocalLock struct {
	mu sync.Mutex
}

// NewLocalLock creates a new local lock
func NewLocalLock() *LocalLock {
	return &LocalLock{}
}

// Acquire takes the lock; name is ignored since a single mutex guards all
// mutations in-process
func (l *LocalLock) Acquire(ctx context.Context, name string) (func(), error) {
	l.mu.Lock()
	return func() { l.mu.Unlock() }, nil
}

var (
	_ ports.OverlayStore = (*OverlayStore)(nil)
	_ ports.ScanSource   = (*ScanSource)(nil)
	_ ports.MutationLock = (*LocalLock)(nil)
)
