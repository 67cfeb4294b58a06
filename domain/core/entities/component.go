package entities

import (
	"fmt"
	"time"

	"spooltrack/domain/config"
	"spooltrack/domain/core/valueobjects"
	"spooltrack/domain/events"
	pkgerrors "spooltrack/pkg/errors"
)

// Metadata keys used for provenance flags on generated components
const (
	MetaGenerated   = "generated"
	MetaSourceScans = "source_scan_count"
	MetaAggregation = "generated_from_aggregation"
)

// Component is the main entity: one node in the inventory hierarchy,
// physical (spool, tag, core, box) or logical (tray aggregate).
// This is a rich domain model with encapsulated business logic.
type Component struct {
	// Private fields ensure encapsulation
	id           valueobjects.ComponentID
	identifiers  []valueobjects.Identifier
	name         string
	category     string
	manufacturer string
	description  string
	tags         []string

	// Mass state. massGrams is nil when unknown; inferredMass marks a
	// derived rather than measured value.
	massGrams     *valueobjects.Mass
	fullMassGrams *valueobjects.Mass
	variableMass  bool
	inferredMass  bool

	// Tree edges. children is authoritative; parentID is a derived
	// back-reference kept in agreement by every mutator.
	parentID valueobjects.ComponentID
	children []valueobjects.ComponentID

	// Symmetric, non-hierarchical references (e.g. two tags on one tray).
	siblings []valueobjects.ComponentID

	metadata  map[string]string
	createdAt time.Time
	updatedAt time.Time

	// Domain events that occurred during this entity's lifetime
	events []events.DomainEvent
}

// NewComponent creates a new user-authored component
func NewComponent(name, category string) (*Component, error) {
	cfg := config.DefaultDomainConfig()
	if len(name) < cfg.MinNameLength {
		return nil, pkgerrors.NewValidationError("component name cannot be empty")
	}
	if len(name) > cfg.MaxNameLength {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("component name exceeds %d characters", cfg.MaxNameLength))
	}

	now := time.Now()
	c := &Component{
		id:        valueobjects.NewComponentID(),
		name:      name,
		category:  category,
		metadata:  make(map[string]string),
		createdAt: now,
		updatedAt: now,
	}

	c.addEvent(events.NewComponentCreated(c.id, name, false, now))
	return c, nil
}

// NewGeneratedComponent creates an ephemeral component derived from scan
// data. The id must come from valueobjects.NewGeneratedComponentID so that
// regeneration is idempotent. Generated components raise no events; they
// are never persisted directly.
func NewGeneratedComponent(id valueobjects.ComponentID, name, category string) *Component {
	now := time.Now()
	return &Component{
		id:        id,
		name:      name,
		category:  category,
		metadata:  map[string]string{MetaGenerated: "true"},
		createdAt: now,
		updatedAt: now,
	}
}

// ReconstructComponent rebuilds a component from repository data with
// preserved timestamps. No events are raised.
func ReconstructComponent(
	id valueobjects.ComponentID,
	name, category, manufacturer, description string,
	createdAt, updatedAt time.Time,
) (*Component, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("component id is required for reconstruction")
	}
	if name == "" {
		return nil, pkgerrors.NewValidationError("component name is required for reconstruction")
	}
	return &Component{
		id:           id,
		name:         name,
		category:     category,
		manufacturer: manufacturer,
		description:  description,
		metadata:     make(map[string]string),
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}, nil
}

// ID returns the component's unique identifier
func (c *Component) ID() valueobjects.ComponentID {
	return c.id
}

// Name returns the display name
func (c *Component) Name() string {
	return c.name
}

// Category returns the component category
func (c *Component) Category() string {
	return c.category
}

// Manufacturer returns the manufacturer name
func (c *Component) Manufacturer() string {
	return c.manufacturer
}

// Description returns the free-form description
func (c *Component) Description() string {
	return c.description
}

// IsGenerated reports whether this component was derived from scan data
func (c *Component) IsGenerated() bool {
	return c.metadata[MetaGenerated] == "true"
}

// Identifiers returns a copy of the ordered identifier set
func (c *Component) Identifiers() []valueobjects.Identifier {
	out := make([]valueobjects.Identifier, len(c.identifiers))
	copy(out, c.identifiers)
	return out
}

// TrackingIdentifier returns the first tracking-purpose identifier, if any
func (c *Component) TrackingIdentifier() (valueobjects.Identifier, bool) {
	for _, ident := range c.identifiers {
		if ident.IsTracking() {
			return ident, true
		}
	}
	return valueobjects.Identifier{}, false
}

// Mass returns the current mass and whether it is known
func (c *Component) Mass() (valueobjects.Mass, bool) {
	if c.massGrams == nil {
		return valueobjects.Mass{}, false
	}
	return *c.massGrams, true
}

// FullMass returns the reference mass when full/new and whether it is set
func (c *Component) FullMass() (valueobjects.Mass, bool) {
	if c.fullMassGrams == nil {
		return valueobjects.Mass{}, false
	}
	return *c.fullMassGrams, true
}

// VariableMass reports whether this component's mass depletes over use
func (c *Component) VariableMass() bool {
	return c.variableMass
}

// MassInferred reports whether the current mass was derived rather than
// measured
func (c *Component) MassInferred() bool {
	return c.inferredMass
}

// ParentID returns the parent back-reference; zero for a root
func (c *Component) ParentID() valueobjects.ComponentID {
	return c.parentID
}

// IsRoot reports whether the component has no parent
func (c *Component) IsRoot() bool {
	return c.parentID.IsZero()
}

// Children returns a copy of the ordered child id list
func (c *Component) Children() []valueobjects.ComponentID {
	out := make([]valueobjects.ComponentID, len(c.children))
	copy(out, c.children)
	return out
}

// HasChild checks for a direct child edge
func (c *Component) HasChild(id valueobjects.ComponentID) bool {
	for _, child := range c.children {
		if child.Equals(id) {
			return true
		}
	}
	return false
}

// Siblings returns a copy of the sibling reference set
func (c *Component) Siblings() []valueobjects.ComponentID {
	out := make([]valueobjects.ComponentID, len(c.siblings))
	copy(out, c.siblings)
	return out
}

// HasSibling checks for a sibling reference
func (c *Component) HasSibling(id valueobjects.ComponentID) bool {
	for _, s := range c.siblings {
		if s.Equals(id) {
			return true
		}
	}
	return false
}

// Tags returns a copy of the tag set
func (c *Component) Tags() []string {
	out := make([]string, len(c.tags))
	copy(out, c.tags)
	return out
}

// Metadata returns a copy of the provenance metadata map
func (c *Component) Metadata() map[string]string {
	out := make(map[string]string, len(c.metadata))
	for k, v := range c.metadata {
		out[k] = v
	}
	return out
}

// CreatedAt returns when the component was created
func (c *Component) CreatedAt() time.Time {
	return c.createdAt
}

// UpdatedAt returns when the component was last updated
func (c *Component) UpdatedAt() time.Time {
	return c.updatedAt
}

// Rename updates the display name with validation
func (c *Component) Rename(name string) error {
	cfg := config.DefaultDomainConfig()
	if len(name) < cfg.MinNameLength {
		return pkgerrors.NewValidationError("component name cannot be empty")
	}
	if len(name) > cfg.MaxNameLength {
		return pkgerrors.NewValidationError(fmt.Sprintf("component name exceeds %d characters", cfg.MaxNameLength))
	}
	if name == c.name {
		return nil
	}
	c.name = name
	c.touch()
	return nil
}

// SetCategory updates the category
func (c *Component) SetCategory(category string) {
	c.category = category
	c.touch()
}

// SetManufacturer updates the manufacturer
func (c *Component) SetManufacturer(manufacturer string) {
	c.manufacturer = manufacturer
	c.touch()
}

// SetDescription updates the description
func (c *Component) SetDescription(description string) {
	c.description = description
	c.touch()
}

// AddIdentifier appends an identifier, skipping exact duplicates
func (c *Component) AddIdentifier(ident valueobjects.Identifier) error {
	cfg := config.DefaultDomainConfig()
	for _, existing := range c.identifiers {
		if existing.Equals(ident) {
			return nil
		}
	}
	if len(c.identifiers) >= cfg.MaxIdentifiers {
		return pkgerrors.NewValidationError(fmt.Sprintf("maximum identifiers reached: %d", cfg.MaxIdentifiers))
	}
	c.identifiers = append(c.identifiers, ident)
	c.touch()
	return nil
}

// AddTag adds a tag to the component
func (c *Component) AddTag(tag string) error {
	if tag == "" {
		return pkgerrors.NewValidationError("tag cannot be empty")
	}
	cfg := config.DefaultDomainConfig()
	for _, t := range c.tags {
		if t == tag {
			return nil
		}
	}
	if len(c.tags) >= cfg.MaxTagsPerComponent {
		return pkgerrors.NewValidationError(fmt.Sprintf("maximum tags reached: %d", cfg.MaxTagsPerComponent))
	}
	c.tags = append(c.tags, tag)
	c.touch()
	return nil
}

// RemoveTag removes a tag from the component
func (c *Component) RemoveTag(tag string) error {
	newTags := make([]string, 0, len(c.tags))
	found := false
	for _, t := range c.tags {
		if t != tag {
			newTags = append(newTags, t)
		} else {
			found = true
		}
	}
	if !found {
		return pkgerrors.NewNotFoundError("tag")
	}
	c.tags = newTags
	c.touch()
	return nil
}

// SetMass updates the current mass, recording whether it was inferred
func (c *Component) SetMass(mass valueobjects.Mass, inferred bool) {
	oldGrams := c.massGramsPtr()
	m := mass
	c.massGrams = &m
	c.inferredMass = inferred
	c.touch()
	newGrams := mass.Grams()
	c.addEvent(events.NewMassUpdated(c.id, oldGrams, &newGrams, inferred, c.updatedAt))
}

// ClearMass removes the current mass and the inferred flag
func (c *Component) ClearMass() {
	oldGrams := c.massGramsPtr()
	c.massGrams = nil
	c.inferredMass = false
	c.touch()
	c.addEvent(events.NewMassUpdated(c.id, oldGrams, nil, false, c.updatedAt))
}

// SetFullMass updates the reference mass when full/new.
// For fixed-mass components the current mass tracks the full mass unless
// an explicit current mass was already recorded.
func (c *Component) SetFullMass(mass valueobjects.Mass) {
	m := mass
	c.fullMassGrams = &m
	if !c.variableMass && c.massGrams == nil {
		c.massGrams = &m
	}
	c.touch()
}

// SetVariableMass marks whether the mass depletes over use
func (c *Component) SetVariableMass(variable bool) {
	c.variableMass = variable
	c.touch()
}

// SetParent records the parent back-reference. Callers must keep the
// parent's child list in agreement; the aggregate enforces this.
func (c *Component) SetParent(parentID valueobjects.ComponentID) {
	c.parentID = parentID
	c.touch()
}

// ClearParent makes the component a root
func (c *Component) ClearParent() {
	c.parentID = valueobjects.ComponentID{}
	c.touch()
}

// LinkChild appends a child id to the authoritative child list
func (c *Component) LinkChild(childID valueobjects.ComponentID) error {
	if childID.IsZero() {
		return pkgerrors.NewValidationError("child id cannot be empty")
	}
	if childID.Equals(c.id) {
		return pkgerrors.NewValidationError("component cannot be its own child")
	}
	cfg := config.DefaultDomainConfig()
	if !cfg.AllowDuplicateChild && c.HasChild(childID) {
		return pkgerrors.NewConflictError(fmt.Sprintf("component %s is already a child of %s", childID, c.id))
	}
	if len(c.children) >= cfg.MaxChildrenPerComponent {
		return pkgerrors.NewValidationError(fmt.Sprintf("maximum children reached: %d", cfg.MaxChildrenPerComponent))
	}
	c.children = append(c.children, childID)
	c.touch()
	c.addEvent(events.NewChildLinked(c.id, childID, c.updatedAt))
	return nil
}

// UnlinkChild removes a child id from the child list
func (c *Component) UnlinkChild(childID valueobjects.ComponentID) error {
	newChildren := make([]valueobjects.ComponentID, 0, len(c.children))
	found := false
	for _, child := range c.children {
		if !child.Equals(childID) {
			newChildren = append(newChildren, child)
		} else {
			found = true
		}
	}
	if !found {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("child %s of component %s", childID, c.id))
	}
	c.children = newChildren
	c.touch()
	c.addEvent(events.NewChildUnlinked(c.id, childID, c.updatedAt))
	return nil
}

// AddSiblingRef records a one-directional sibling reference. Symmetry is
// the aggregate's responsibility: it must add the mirror reference too.
func (c *Component) AddSiblingRef(siblingID valueobjects.ComponentID) error {
	cfg := config.DefaultDomainConfig()
	if !cfg.AllowSelfSibling && siblingID.Equals(c.id) {
		return pkgerrors.NewValidationError("component cannot be its own sibling")
	}
	if c.HasSibling(siblingID) {
		return nil
	}
	if len(c.siblings) >= cfg.MaxSiblingsPerComponent {
		return pkgerrors.NewValidationError(fmt.Sprintf("maximum siblings reached: %d", cfg.MaxSiblingsPerComponent))
	}
	c.siblings = append(c.siblings, siblingID)
	c.touch()
	return nil
}

// RemoveSiblingRef removes a one-directional sibling reference
func (c *Component) RemoveSiblingRef(siblingID valueobjects.ComponentID) error {
	newSiblings := make([]valueobjects.ComponentID, 0, len(c.siblings))
	found := false
	for _, s := range c.siblings {
		if !s.Equals(siblingID) {
			newSiblings = append(newSiblings, s)
		} else {
			found = true
		}
	}
	if !found {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("sibling reference %s on component %s", siblingID, c.id))
	}
	c.siblings = newSiblings
	c.touch()
	return nil
}

// SetMetadataValue records a provenance flag
func (c *Component) SetMetadataValue(key, value string) {
	c.metadata[key] = value
	c.touch()
}

// Clone returns a deep copy of the component without pending events.
// Undo snapshots and merge outputs rely on clones so that callers can
// never alias internal state.
func (c *Component) Clone() *Component {
	dup := &Component{
		id:           c.id,
		name:         c.name,
		category:     c.category,
		manufacturer: c.manufacturer,
		description:  c.description,
		variableMass: c.variableMass,
		inferredMass: c.inferredMass,
		parentID:     c.parentID,
		createdAt:    c.createdAt,
		updatedAt:    c.updatedAt,
	}
	dup.identifiers = make([]valueobjects.Identifier, len(c.identifiers))
	copy(dup.identifiers, c.identifiers)
	dup.tags = make([]string, len(c.tags))
	copy(dup.tags, c.tags)
	dup.children = make([]valueobjects.ComponentID, len(c.children))
	copy(dup.children, c.children)
	dup.siblings = make([]valueobjects.ComponentID, len(c.siblings))
	copy(dup.siblings, c.siblings)
	dup.metadata = make(map[string]string, len(c.metadata))
	for k, v := range c.metadata {
		dup.metadata[k] = v
	}
	if c.massGrams != nil {
		m := *c.massGrams
		dup.massGrams = &m
	}
	if c.fullMassGrams != nil {
		m := *c.fullMassGrams
		dup.fullMassGrams = &m
	}
	return dup
}

// GetUncommittedEvents returns all uncommitted domain events
func (c *Component) GetUncommittedEvents() []events.DomainEvent {
	return c.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (c *Component) MarkEventsAsCommitted() {
	c.events = nil
}

func (c *Component) addEvent(event events.DomainEvent) {
	c.events = append(c.events, event)
}

func (c *Component) massGramsPtr() *float64 {
	if c.massGrams == nil {
		return nil
	}
	g := c.massGrams.Grams()
	return &g
}

func (c *Component) touch() {
	c.updatedAt = time.Now()
}
