package aggregates

import (
	"fmt"
	"sort"

	"spooltrack/domain/config"
	"spooltrack/domain/core/entities"
	"spooltrack/domain/core/valueobjects"
	pkgerrors "spooltrack/pkg/errors"
)

// Inventory is the aggregate root for the materialized component graph.
// It owns the consistency boundary: the parent/child edges always form a
// forest and sibling references are always symmetric.
type Inventory struct {
	components map[valueobjects.ComponentID]*entities.Component
}

// NewInventory creates an empty inventory
func NewInventory() *Inventory {
	return &Inventory{
		components: make(map[valueobjects.ComponentID]*entities.Component),
	}
}

// AddComponent adds a component to the inventory
func (inv *Inventory) AddComponent(c *entities.Component) error {
	if c == nil {
		return pkgerrors.NewValidationError("component cannot be nil")
	}
	if _, exists := inv.components[c.ID()]; exists {
		return pkgerrors.NewConflictError(fmt.Sprintf("component %s already exists", c.ID()))
	}
	cfg := config.DefaultDomainConfig()
	if len(inv.components) >= cfg.MaxComponentsPerInventory {
		return pkgerrors.NewValidationError(fmt.Sprintf("maximum components reached: %d", cfg.MaxComponentsPerInventory))
	}
	inv.components[c.ID()] = c
	return nil
}

// ReplaceComponent inserts or overwrites a component
func (inv *Inventory) ReplaceComponent(c *entities.Component) error {
	if c == nil {
		return pkgerrors.NewValidationError("component cannot be nil")
	}
	inv.components[c.ID()] = c
	return nil
}

// RemoveComponent detaches a component from its parent and siblings and
// removes it. Its own children become roots.
func (inv *Inventory) RemoveComponent(id valueobjects.ComponentID) error {
	c, exists := inv.components[id]
	if !exists {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("component %s", id))
	}

	if !c.ParentID().IsZero() {
		if parent, ok := inv.components[c.ParentID()]; ok {
			_ = parent.UnlinkChild(id)
		}
	}
	for _, sibID := range c.Siblings() {
		if sib, ok := inv.components[sibID]; ok {
			_ = sib.RemoveSiblingRef(id)
		}
	}
	for _, childID := range c.Children() {
		if child, ok := inv.components[childID]; ok {
			child.ClearParent()
		}
	}

	delete(inv.components, id)
	return nil
}

// GetComponent retrieves a component by ID
func (inv *Inventory) GetComponent(id valueobjects.ComponentID) (*entities.Component, error) {
	c, exists := inv.components[id]
	if !exists {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("component %s", id))
	}
	return c, nil
}

// HasComponent checks for existence without error
func (inv *Inventory) HasComponent(id valueobjects.ComponentID) bool {
	_, exists := inv.components[id]
	return exists
}

// Size returns the number of components
func (inv *Inventory) Size() int {
	return len(inv.components)
}

// Components returns all components sorted by id for deterministic
// iteration
func (inv *Inventory) Components() []*entities.Component {
	out := make([]*entities.Component, 0, len(inv.components))
	for _, c := range inv.components {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID().String() < out[j].ID().String()
	})
	return out
}

// Roots returns all components without a parent, sorted by id
func (inv *Inventory) Roots() []*entities.Component {
	out := make([]*entities.Component, 0)
	for _, c := range inv.components {
		if c.IsRoot() {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID().String() < out[j].ID().String()
	})
	return out
}

// Subtree returns the component and all its descendants, root first
func (inv *Inventory) Subtree(rootID valueobjects.ComponentID) ([]*entities.Component, error) {
	root, exists := inv.components[rootID]
	if !exists {
		return nil, pkgerrors.NewNotFoundError(fmt.Sprintf("component %s", rootID))
	}

	var members []*entities.Component
	queue := []*entities.Component{root}
	seen := map[valueobjects.ComponentID]bool{rootID: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		members = append(members, current)

		for _, childID := range current.Children() {
			if seen[childID] {
				continue
			}
			seen[childID] = true
			child, ok := inv.components[childID]
			if !ok {
				return nil, pkgerrors.NewInconsistentStateError(
					fmt.Sprintf("component %s lists missing child %s", current.ID(), childID))
			}
			queue = append(queue, child)
		}
	}
	return members, nil
}

// LinkChild creates a parent/child edge, preserving the forest invariant:
// the child must not already have a parent and the link must not create a
// cycle.
func (inv *Inventory) LinkChild(parentID, childID valueobjects.ComponentID) error {
	parent, exists := inv.components[parentID]
	if !exists {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("parent component %s", parentID))
	}
	child, exists := inv.components[childID]
	if !exists {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("child component %s", childID))
	}
	if !child.ParentID().IsZero() {
		return pkgerrors.NewConflictError(
			fmt.Sprintf("component %s already has parent %s", childID, child.ParentID()))
	}
	if inv.isAncestor(childID, parentID) {
		return pkgerrors.NewConflictError(
			fmt.Sprintf("linking %s under %s would create a cycle", childID, parentID))
	}

	if err := parent.LinkChild(childID); err != nil {
		return err
	}
	child.SetParent(parentID)
	return nil
}

// UnlinkChild removes a parent/child edge; the child becomes a root
func (inv *Inventory) UnlinkChild(parentID, childID valueobjects.ComponentID) error {
	parent, exists := inv.components[parentID]
	if !exists {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("parent component %s", parentID))
	}
	child, exists := inv.components[childID]
	if !exists {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("child component %s", childID))
	}

	if err := parent.UnlinkChild(childID); err != nil {
		return err
	}
	child.ClearParent()
	return nil
}

// MoveComponent relinks a component under a new parent. A zero newParentID
// makes it a root.
func (inv *Inventory) MoveComponent(componentID, newParentID valueobjects.ComponentID) error {
	c, exists := inv.components[componentID]
	if !exists {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("component %s", componentID))
	}

	oldParentID := c.ParentID()
	if oldParentID.Equals(newParentID) {
		return nil
	}

	if !oldParentID.IsZero() {
		if err := inv.UnlinkChild(oldParentID, componentID); err != nil {
			return err
		}
	}
	if newParentID.IsZero() {
		return nil
	}
	if err := inv.LinkChild(newParentID, componentID); err != nil {
		// Restore the previous edge so a failed move is not half applied
		if !oldParentID.IsZero() {
			_ = inv.LinkChild(oldParentID, componentID)
		}
		return err
	}
	return nil
}

// LinkSiblings adds symmetric sibling references between two components
func (inv *Inventory) LinkSiblings(a, b valueobjects.ComponentID) error {
	compA, exists := inv.components[a]
	if !exists {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("component %s", a))
	}
	compB, exists := inv.components[b]
	if !exists {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("component %s", b))
	}

	if err := compA.AddSiblingRef(b); err != nil {
		return err
	}
	if err := compB.AddSiblingRef(a); err != nil {
		_ = compA.RemoveSiblingRef(b)
		return err
	}
	return nil
}

// UnlinkSiblings removes the symmetric sibling references between two
// components
func (inv *Inventory) UnlinkSiblings(a, b valueobjects.ComponentID) error {
	compA, exists := inv.components[a]
	if !exists {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("component %s", a))
	}
	compB, exists := inv.components[b]
	if !exists {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("component %s", b))
	}

	if err := compA.RemoveSiblingRef(b); err != nil {
		return err
	}
	if err := compB.RemoveSiblingRef(a); err != nil {
		return err
	}
	return nil
}

// Clone deep-copies the whole inventory
func (inv *Inventory) Clone() *Inventory {
	dup := NewInventory()
	for id, c := range inv.components {
		dup.components[id] = c.Clone()
	}
	return dup
}

// Validate ensures inventory invariants: child lists and parent
// back-references agree, sibling references are symmetric, and the
// parent/child graph is a forest.
func (inv *Inventory) Validate() error {
	for id, c := range inv.components {
		for _, childID := range c.Children() {
			child, ok := inv.components[childID]
			if !ok {
				return pkgerrors.NewInconsistentStateError(
					fmt.Sprintf("component %s lists missing child %s", id, childID))
			}
			if !child.ParentID().Equals(id) {
				return pkgerrors.NewInconsistentStateError(
					fmt.Sprintf("child %s does not back-reference parent %s", childID, id))
			}
		}
		if !c.ParentID().IsZero() {
			parent, ok := inv.components[c.ParentID()]
			if !ok {
				return pkgerrors.NewInconsistentStateError(
					fmt.Sprintf("component %s references missing parent %s", id, c.ParentID()))
			}
			if !parent.HasChild(id) {
				return pkgerrors.NewInconsistentStateError(
					fmt.Sprintf("parent %s does not list child %s", c.ParentID(), id))
			}
		}
		for _, sibID := range c.Siblings() {
			sib, ok := inv.components[sibID]
			if !ok {
				return pkgerrors.NewInconsistentStateError(
					fmt.Sprintf("component %s references missing sibling %s", id, sibID))
			}
			if !sib.HasSibling(id) {
				return pkgerrors.NewInconsistentStateError(
					fmt.Sprintf("sibling reference %s -> %s is not symmetric", id, sibID))
			}
		}
	}

	// Cycle check: walking up from any node must terminate at a root
	for id := range inv.components {
		if inv.isAncestor(id, id) {
			return pkgerrors.NewInconsistentStateError(
				fmt.Sprintf("component %s participates in a parent cycle", id))
		}
	}
	return nil
}

// isAncestor reports whether candidate is an ancestor of (or equal to a
// proper ancestor of) nodeID when walking parent links up from nodeID.
func (inv *Inventory) isAncestor(candidate, nodeID valueobjects.ComponentID) bool {
	seen := make(map[valueobjects.ComponentID]bool)
	current, ok := inv.components[nodeID]
	if !ok {
		return false
	}
	parentID := current.ParentID()
	for !parentID.IsZero() {
		if parentID.Equals(candidate) {
			return true
		}
		if seen[parentID] {
			return true // already looping; treat as ancestor to block the link
		}
		seen[parentID] = true
		parent, ok := inv.components[parentID]
		if !ok {
			return false
		}
		parentID = parent.ParentID()
	}
	return false
}
