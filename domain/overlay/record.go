package overlay

import (
	"time"

	"spooltrack/domain/core/valueobjects"
)

// Record is one persisted user edit, keyed by component id, applied on top
// of the regenerable generated set. Nil fields mean "no override"; set
// fields always win over generated values. Records survive regeneration of
// the underlying component, and a record whose generated twin has vanished
// still materializes as a standalone component so user edits are never
// lost.
type Record struct {
	// ComponentID keys the record. For overlays on generated components
	// this is the deterministic generated id.
	ComponentID valueobjects.ComponentID

	// TrackingIdentifier optionally correlates the record with a
	// generated component whose id changed (e.g. re-keyed scan data).
	TrackingIdentifier *valueobjects.Identifier

	// Field-level overrides
	Name         *string
	Category     *string
	Manufacturer *string
	Description  *string
	Tags         *[]string

	// Mass overrides
	MassGrams     *float64
	FullMassGrams *float64
	VariableMass  *bool
	MassInferred  *bool

	// Relationship edits. AddedChildren/Siblings are merged into the
	// generated relations; RemovedChildren are tombstones suppressing
	// generated child edges the user unlinked.
	ParentID        *valueobjects.ComponentID
	AddedChildren   []valueobjects.ComponentID
	RemovedChildren []valueobjects.ComponentID
	Siblings        []valueobjects.ComponentID

	Active    bool
	EditedBy  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsEmpty reports whether the record carries no overrides at all
func (r Record) IsEmpty() bool {
	return r.Name == nil && r.Category == nil && r.Manufacturer == nil &&
		r.Description == nil && r.Tags == nil &&
		r.MassGrams == nil && r.FullMassGrams == nil &&
		r.VariableMass == nil && r.MassInferred == nil &&
		r.ParentID == nil && len(r.AddedChildren) == 0 &&
		len(r.RemovedChildren) == 0 && len(r.Siblings) == 0
}
