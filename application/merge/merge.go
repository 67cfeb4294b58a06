package merge

import (
	"sort"

	"spooltrack/domain/core/aggregates"
	"spooltrack/domain/core/entities"
	"spooltrack/domain/core/valueobjects"
	"spooltrack/domain/overlay"

	"go.uber.org/zap"
)

// Merger applies persisted overlay records on top of a freshly generated
// component set, producing the materialized inventory. Merging is pure:
// it never mutates its inputs and never touches storage. Overlay values
// always win over generated values. An overlay whose component id no
// longer exists is matched to its generated twin by tracking identifier
// when it carries one; only when that fails too does it materialize as a
// standalone component, so user edits are never lost.
type Merger struct {
	logger *zap.Logger
}

// NewMerger creates a new merger
func NewMerger(logger *zap.Logger) *Merger {
	return &Merger{logger: logger}
}

// Merge materializes an inventory from generated components and active
// overlay records. The generated components are cloned; callers may reuse
// them freely afterwards.
func (m *Merger) Merge(generated []*entities.Component, overlays []overlay.Record) (*aggregates.Inventory, error) {
	inv := aggregates.NewInventory()
	for _, c := range generated {
		if err := inv.ReplaceComponent(c.Clone()); err != nil {
			return nil, err
		}
	}

	// Sort so that the result is independent of overlay retrieval order
	active := make([]overlay.Record, 0, len(overlays))
	for _, rec := range overlays {
		if rec.Active {
			active = append(active, rec)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].ComponentID.String() < active[j].ComponentID.String()
	})

	// Resolve each record to the component it edits before anything is
	// materialized: the record's own id when that component was generated,
	// otherwise the generated component carrying the same tracking
	// identifier (the id changes when a scan key is re-derived).
	byIdent := make(map[string]valueobjects.ComponentID, len(generated))
	for _, c := range generated {
		if ident, ok := c.TrackingIdentifier(); ok {
			byIdent[identKey(ident)] = c.ID()
		}
	}
	targets := make([]valueobjects.ComponentID, len(active))
	for i, rec := range active {
		targets[i] = rec.ComponentID
		if inv.HasComponent(rec.ComponentID) || rec.TrackingIdentifier == nil {
			continue
		}
		if id, ok := byIdent[identKey(*rec.TrackingIdentifier)]; ok {
			targets[i] = id
		}
	}

	// First pass: field overrides and standalone materialization, so
	// every component the relationship pass references already exists.
	standalone := 0
	for i, rec := range active {
		if inv.HasComponent(targets[i]) {
			c, err := inv.GetComponent(targets[i])
			if err != nil {
				return nil, err
			}
			if err := applyFields(c, rec); err != nil {
				return nil, err
			}
			continue
		}
		c, err := materialize(rec)
		if err != nil {
			return nil, err
		}
		if err := inv.ReplaceComponent(c); err != nil {
			return nil, err
		}
		standalone++
	}

	// Second pass: relationship edits. Tombstones first so a re-added
	// edge is not suppressed by its own removal record.
	for i, rec := range active {
		for _, childID := range rec.RemovedChildren {
			if !inv.HasComponent(targets[i]) || !inv.HasComponent(childID) {
				continue
			}
			parent, _ := inv.GetComponent(targets[i])
			if parent.HasChild(childID) {
				if err := inv.UnlinkChild(targets[i], childID); err != nil {
					return nil, err
				}
			}
		}
	}

	for i, rec := range active {
		if rec.ParentID != nil {
			if err := m.applyParentOverride(inv, targets[i], *rec.ParentID); err != nil {
				return nil, err
			}
		}
		for _, childID := range rec.AddedChildren {
			if !inv.HasComponent(childID) {
				m.logger.Debug("Skipping child edit for missing component",
					zap.String("parentId", targets[i].String()),
					zap.String("childId", childID.String()))
				continue
			}
			parent, _ := inv.GetComponent(targets[i])
			child, _ := inv.GetComponent(childID)
			if parent.HasChild(childID) || !child.ParentID().IsZero() {
				continue
			}
			if err := inv.LinkChild(targets[i], childID); err != nil {
				return nil, err
			}
		}
		for _, sibID := range rec.Siblings {
			if !inv.HasComponent(sibID) {
				continue
			}
			a, _ := inv.GetComponent(targets[i])
			if a.HasSibling(sibID) {
				continue
			}
			if err := inv.LinkSiblings(targets[i], sibID); err != nil {
				return nil, err
			}
		}
	}

	// Materialization is not a user action; drop events raised while
	// assembling the graph.
	for _, c := range inv.Components() {
		c.MarkEventsAsCommitted()
	}

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	m.logger.Debug("Merged overlays into inventory",
		zap.Int("generated", len(generated)),
		zap.Int("overlays", len(active)),
		zap.Int("standalone", standalone),
		zap.Int("components", inv.Size()),
	)
	return inv, nil
}

// identKey builds the lookup key for a tracking identifier
func identKey(ident valueobjects.Identifier) string {
	return string(ident.Type()) + ":" + ident.Value()
}

// applyParentOverride relinks a component under the overridden parent.
// A zero parent id means the user detached the component to a root.
func (m *Merger) applyParentOverride(inv *aggregates.Inventory, id, parentID valueobjects.ComponentID) error {
	if !inv.HasComponent(id) {
		return nil
	}
	if parentID.IsZero() {
		return inv.MoveComponent(id, valueobjects.ComponentID{})
	}
	if !inv.HasComponent(parentID) {
		m.logger.Debug("Skipping parent override for missing parent",
			zap.String("componentId", id.String()),
			zap.String("parentId", parentID.String()))
		return nil
	}
	return inv.MoveComponent(id, parentID)
}

// applyFields copies the record's field-level overrides onto a component
func applyFields(c *entities.Component, rec overlay.Record) error {
	if rec.Name != nil {
		if err := c.Rename(*rec.Name); err != nil {
			return err
		}
	}
	if rec.Category != nil {
		c.SetCategory(*rec.Category)
	}
	if rec.Manufacturer != nil {
		c.SetManufacturer(*rec.Manufacturer)
	}
	if rec.Description != nil {
		c.SetDescription(*rec.Description)
	}
	if rec.Tags != nil {
		for _, t := range c.Tags() {
			_ = c.RemoveTag(t)
		}
		for _, t := range *rec.Tags {
			if err := c.AddTag(t); err != nil {
				return err
			}
		}
	}

	// Variable flag first so SetFullMass does not backfill current mass
	if rec.VariableMass != nil {
		c.SetVariableMass(*rec.VariableMass)
	}
	if rec.FullMassGrams != nil {
		full, err := valueobjects.NewMass(*rec.FullMassGrams)
		if err != nil {
			return err
		}
		c.SetFullMass(full)
	}
	if rec.MassGrams != nil {
		mass, err := valueobjects.NewMass(*rec.MassGrams)
		if err != nil {
			return err
		}
		inferred := rec.MassInferred != nil && *rec.MassInferred
		c.SetMass(mass, inferred)
	}

	if rec.TrackingIdentifier != nil {
		if err := c.AddIdentifier(*rec.TrackingIdentifier); err != nil {
			return err
		}
	}
	return nil
}

// materialize builds a standalone component from an overlay whose
// generated twin has vanished
func materialize(rec overlay.Record) (*entities.Component, error) {
	name := "Component " + rec.ComponentID.String()[:8]
	if rec.Name != nil {
		name = *rec.Name
	}
	category := ""
	if rec.Category != nil {
		category = *rec.Category
	}

	createdAt := rec.CreatedAt
	updatedAt := rec.UpdatedAt
	if createdAt.IsZero() {
		createdAt = updatedAt
	}
	c, err := entities.ReconstructComponent(rec.ComponentID, name, category, "", "", createdAt, updatedAt)
	if err != nil {
		return nil, err
	}

	// Re-apply the rest of the record so the standalone component carries
	// every override the user made
	stripped := rec
	stripped.Name = nil
	stripped.Category = nil
	if err := applyFields(c, stripped); err != nil {
		return nil, err
	}
	return c, nil
}
