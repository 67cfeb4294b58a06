package queries

import (
	"spooltrack/pkg/utils"
)

// ListComponentsQuery lists the materialized inventory. RootsOnly limits
// the result to top-level components.
type ListComponentsQuery struct {
	RootsOnly bool `json:"roots_only"`
}

// Validate validates the query
func (q ListComponentsQuery) Validate() error { return nil }

// GetComponentQuery fetches a single component
type GetComponentQuery struct {
	ComponentID string `json:"component_id" validate:"required,uuid"`
}

// Validate validates the query
func (q GetComponentQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetSubtreeQuery fetches a component and all its descendants, root first
type GetSubtreeQuery struct {
	RootID string `json:"root_id" validate:"required,uuid"`
}

// Validate validates the query
func (q GetSubtreeQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// InferMassQuery previews mass inference for a subtree from one measured
// total without applying anything
type InferMassQuery struct {
	RootID     string  `json:"root_id" validate:"required,uuid"`
	TotalGrams float64 `json:"total_grams" validate:"gte=0"`
}

// Validate validates the query
func (q InferMassQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// PreviewScaleReadingQuery previews inference driven by a live scale
// reading
type PreviewScaleReadingQuery struct {
	ComponentID string  `json:"component_id" validate:"required,uuid"`
	Value       float64 `json:"value" validate:"gte=0"`
	Unit        string  `json:"unit" validate:"required,oneof=g kg oz lb"`
	Stable      bool    `json:"stable"`
}

// Validate validates the query
func (q PreviewScaleReadingQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// GetHistoryQuery returns undo/redo availability and the most recent
// operations
type GetHistoryQuery struct {
	Limit int `json:"limit" validate:"omitempty,min=1,max=100"`
}

// Validate validates the query
func (q GetHistoryQuery) Validate() error {
	return utils.ValidateStruct(q)
}

// ListMeasurementsQuery returns a component's measurement audit trail,
// newest first
type ListMeasurementsQuery struct {
	ComponentID string `json:"component_id" validate:"required,uuid"`
}

// Validate validates the query
func (q ListMeasurementsQuery) Validate() error {
	return utils.ValidateStruct(q)
}
