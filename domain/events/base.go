package events

import (
	"time"

	"spooltrack/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Component Events

// ComponentCreated is raised when a new component is persisted
type ComponentCreated struct {
	BaseEvent
	ComponentID valueobjects.ComponentID `json:"component_id"`
	Name        string                   `json:"name"`
	Generated   bool                     `json:"generated"`
}

// NewComponentCreated creates a ComponentCreated event
func NewComponentCreated(id valueobjects.ComponentID, name string, generated bool, timestamp time.Time) ComponentCreated {
	return ComponentCreated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "component.created",
			Timestamp:   timestamp,
			Version:     1,
		},
		ComponentID: id,
		Name:        name,
		Generated:   generated,
	}
}

// ChildLinked is raised when a component is linked under a parent
type ChildLinked struct {
	BaseEvent
	ParentID valueobjects.ComponentID `json:"parent_id"`
	ChildID  valueobjects.ComponentID `json:"child_id"`
}

// NewChildLinked creates a ChildLinked event
func NewChildLinked(parentID, childID valueobjects.ComponentID, timestamp time.Time) ChildLinked {
	return ChildLinked{
		BaseEvent: BaseEvent{
			AggregateID: parentID.String(),
			EventType:   "component.child_linked",
			Timestamp:   timestamp,
			Version:     1,
		},
		ParentID: parentID,
		ChildID:  childID,
	}
}

// ChildUnlinked is raised when a child is removed from its parent
type ChildUnlinked struct {
	BaseEvent
	ParentID valueobjects.ComponentID `json:"parent_id"`
	ChildID  valueobjects.ComponentID `json:"child_id"`
}

// NewChildUnlinked creates a ChildUnlinked event
func NewChildUnlinked(parentID, childID valueobjects.ComponentID, timestamp time.Time) ChildUnlinked {
	return ChildUnlinked{
		BaseEvent: BaseEvent{
			AggregateID: parentID.String(),
			EventType:   "component.child_unlinked",
			Timestamp:   timestamp,
			Version:     1,
		},
		ParentID: parentID,
		ChildID:  childID,
	}
}

// SiblingsLinked is raised when two components are declared siblings
type SiblingsLinked struct {
	BaseEvent
	ComponentID valueobjects.ComponentID `json:"component_id"`
	SiblingID   valueobjects.ComponentID `json:"sibling_id"`
}

// NewSiblingsLinked creates a SiblingsLinked event
func NewSiblingsLinked(a, b valueobjects.ComponentID, timestamp time.Time) SiblingsLinked {
	return SiblingsLinked{
		BaseEvent: BaseEvent{
			AggregateID: a.String(),
			EventType:   "component.siblings_linked",
			Timestamp:   timestamp,
			Version:     1,
		},
		ComponentID: a,
		SiblingID:   b,
	}
}

// ComponentMoved is raised when a component changes parent
type ComponentMoved struct {
	BaseEvent
	ComponentID valueobjects.ComponentID `json:"component_id"`
	OldParentID valueobjects.ComponentID `json:"old_parent_id"`
	NewParentID valueobjects.ComponentID `json:"new_parent_id"`
}

// NewComponentMoved creates a ComponentMoved event
func NewComponentMoved(id, oldParent, newParent valueobjects.ComponentID, timestamp time.Time) ComponentMoved {
	return ComponentMoved{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "component.moved",
			Timestamp:   timestamp,
			Version:     1,
		},
		ComponentID: id,
		OldParentID: oldParent,
		NewParentID: newParent,
	}
}

// MassUpdated is raised when a component's current mass changes
type MassUpdated struct {
	BaseEvent
	ComponentID valueobjects.ComponentID `json:"component_id"`
	OldGrams    *float64                 `json:"old_grams"`
	NewGrams    *float64                 `json:"new_grams"`
	Inferred    bool                     `json:"inferred"`
}

// NewMassUpdated creates a MassUpdated event
func NewMassUpdated(id valueobjects.ComponentID, oldGrams, newGrams *float64, inferred bool, timestamp time.Time) MassUpdated {
	return MassUpdated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   "component.mass_updated",
			Timestamp:   timestamp,
			Version:     1,
		},
		ComponentID: id,
		OldGrams:    oldGrams,
		NewGrams:    newGrams,
		Inferred:    inferred,
	}
}

// MeasurementRecorded is raised when a measurement is appended
type MeasurementRecorded struct {
	BaseEvent
	MeasurementID string                   `json:"measurement_id"`
	ComponentID   valueobjects.ComponentID `json:"component_id"`
	Grams         float64                  `json:"grams"`
	Source        string                   `json:"source"`
}

// NewMeasurementRecorded creates a MeasurementRecorded event
func NewMeasurementRecorded(measurementID string, componentID valueobjects.ComponentID, grams float64, source string, timestamp time.Time) MeasurementRecorded {
	return MeasurementRecorded{
		BaseEvent: BaseEvent{
			AggregateID: componentID.String(),
			EventType:   "measurement.recorded",
			Timestamp:   timestamp,
			Version:     1,
		},
		MeasurementID: measurementID,
		ComponentID:   componentID,
		Grams:         grams,
		Source:        source,
	}
}

// InventoryAssembled is raised after the scan/merge pipeline materializes
// a fresh component set
type InventoryAssembled struct {
	BaseEvent
	ComponentCount int `json:"component_count"`
	GeneratedCount int `json:"generated_count"`
	OverlayCount   int `json:"overlay_count"`
}

// NewInventoryAssembled creates an InventoryAssembled event
func NewInventoryAssembled(componentCount, generatedCount, overlayCount int, timestamp time.Time) InventoryAssembled {
	return InventoryAssembled{
		BaseEvent: BaseEvent{
			AggregateID: "inventory",
			EventType:   "inventory.assembled",
			Timestamp:   timestamp,
			Version:     1,
		},
		ComponentCount: componentCount,
		GeneratedCount: generatedCount,
		OverlayCount:   overlayCount,
	}
}
