package commands

import (
	"spooltrack/pkg/utils"
)

// AddChildCommand creates a component and links it under a parent
type AddChildCommand struct {
	ParentID      string   `json:"parent_id" validate:"required,uuid"`
	Name          string   `json:"name" validate:"required,min=1,max=200"`
	Category      string   `json:"category" validate:"max=100"`
	Manufacturer  string   `json:"manufacturer" validate:"max=200"`
	Description   string   `json:"description" validate:"max=2000"`
	Tags          []string `json:"tags" validate:"max=20,dive,min=1,max=50"`
	MassGrams     *float64 `json:"mass_grams" validate:"omitempty,gte=0"`
	FullMassGrams *float64 `json:"full_mass_grams" validate:"omitempty,gte=0"`
	VariableMass  bool     `json:"variable_mass"`
}

// Validate validates the command
func (cmd AddChildCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// RemoveChildCommand unlinks and removes a child component
type RemoveChildCommand struct {
	ParentID string `json:"parent_id" validate:"required,uuid"`
	ChildID  string `json:"child_id" validate:"required,uuid"`
}

// Validate validates the command
func (cmd RemoveChildCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// CreateSiblingCommand declares two components siblings
type CreateSiblingCommand struct {
	ComponentA string `json:"component_a" validate:"required,uuid"`
	ComponentB string `json:"component_b" validate:"required,uuid,nefield=ComponentA"`
}

// Validate validates the command
func (cmd CreateSiblingCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// MoveComponentCommand relinks a component under a new parent. An empty
// NewParentID detaches it to a root.
type MoveComponentCommand struct {
	ComponentID string `json:"component_id" validate:"required,uuid"`
	NewParentID string `json:"new_parent_id" validate:"omitempty,uuid"`
}

// Validate validates the command
func (cmd MoveComponentCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// RecordMeasurementCommand appends a mass measurement for a component
type RecordMeasurementCommand struct {
	ComponentID string  `json:"component_id" validate:"required,uuid"`
	Grams       float64 `json:"grams" validate:"gte=0"`
	Type        string  `json:"type" validate:"required,oneof=manual scale derived"`
	Notes       string  `json:"notes" validate:"max=500"`
}

// Validate validates the command
func (cmd RecordMeasurementCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// InferAndApplyMassCommand runs mass inference for a subtree from one
// measured total and applies the resulting assignments as a batch
type InferAndApplyMassCommand struct {
	RootID     string  `json:"root_id" validate:"required,uuid"`
	TotalGrams float64 `json:"total_grams" validate:"gte=0"`
}

// Validate validates the command
func (cmd InferAndApplyMassCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// ApplyScaleReadingCommand feeds a live scale reading into inference and
// applies the result
type ApplyScaleReadingCommand struct {
	ComponentID string  `json:"component_id" validate:"required,uuid"`
	Value       float64 `json:"value" validate:"gte=0"`
	Unit        string  `json:"unit" validate:"required,oneof=g kg oz lb"`
	Stable      bool    `json:"stable"`
}

// Validate validates the command
func (cmd ApplyScaleReadingCommand) Validate() error {
	return utils.ValidateStruct(cmd)
}

// RefreshInventoryCommand forces regeneration from scan records and
// overlays, bypassing the cache
type RefreshInventoryCommand struct{}

// Validate validates the command
func (cmd RefreshInventoryCommand) Validate() error { return nil }

// UndoCommand reverses the most recent operation
type UndoCommand struct{}

// Validate validates the command
func (cmd UndoCommand) Validate() error { return nil }

// RedoCommand replays the most recently undone operation
type RedoCommand struct{}

// Validate validates the command
func (cmd RedoCommand) Validate() error { return nil }
