package queries

import (
	"time"

	"spooltrack/application/history"
	"spooltrack/application/inference"
	"spooltrack/domain/core/entities"
)

// IdentifierView is the read model of a physical identifier
type IdentifierView struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	Purpose string `json:"purpose"`
}

// ComponentView is the read model of a component
type ComponentView struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Category      string            `json:"category,omitempty"`
	Manufacturer  string            `json:"manufacturer,omitempty"`
	Description   string            `json:"description,omitempty"`
	Generated     bool              `json:"generated"`
	ParentID      string            `json:"parent_id,omitempty"`
	Children      []string          `json:"children,omitempty"`
	Siblings      []string          `json:"siblings,omitempty"`
	Tags          []string          `json:"tags,omitempty"`
	Identifiers   []IdentifierView  `json:"identifiers,omitempty"`
	MassGrams     *float64          `json:"mass_grams,omitempty"`
	MassInferred  bool              `json:"mass_inferred"`
	FullMassGrams *float64          `json:"full_mass_grams,omitempty"`
	VariableMass  bool              `json:"variable_mass"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ComponentListView wraps a list of components with its total
type ComponentListView struct {
	Components []ComponentView `json:"components"`
	Total      int             `json:"total"`
}

// OperationView is the read model of a recorded operation
type OperationView struct {
	Type        string    `json:"type"`
	ComponentID string    `json:"component_id,omitempty"`
	TargetID    string    `json:"target_id,omitempty"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// HistoryView reports undo/redo availability plus recent operations,
// newest first
type HistoryView struct {
	CanUndo    bool            `json:"can_undo"`
	CanRedo    bool            `json:"can_redo"`
	Operations []OperationView `json:"operations"`
}

// MeasurementView is the read model of a recorded measurement
type MeasurementView struct {
	ID          string    `json:"id"`
	ComponentID string    `json:"component_id"`
	Grams       float64   `json:"grams"`
	Type        string    `json:"type"`
	Notes       string    `json:"notes,omitempty"`
	MeasuredAt  time.Time `json:"measured_at"`
}

// AssignmentView is one proposed mass assignment from inference
type AssignmentView struct {
	ComponentID string  `json:"component_id"`
	Grams       float64 `json:"grams"`
}

// InferenceView is the read model of an inference run
type InferenceView struct {
	Success     bool             `json:"success"`
	Message     string           `json:"message,omitempty"`
	Assignments []AssignmentView `json:"assignments,omitempty"`
}

// NewComponentView maps a component entity to its read model
func NewComponentView(c *entities.Component) ComponentView {
	view := ComponentView{
		ID:           c.ID().String(),
		Name:         c.Name(),
		Category:     c.Category(),
		Manufacturer: c.Manufacturer(),
		Description:  c.Description(),
		Generated:    c.IsGenerated(),
		Tags:         c.Tags(),
		MassInferred: c.MassInferred(),
		VariableMass: c.VariableMass(),
		Metadata:     c.Metadata(),
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
	}
	if !c.ParentID().IsZero() {
		view.ParentID = c.ParentID().String()
	}
	for _, id := range c.Children() {
		view.Children = append(view.Children, id.String())
	}
	for _, id := range c.Siblings() {
		view.Siblings = append(view.Siblings, id.String())
	}
	for _, ident := range c.Identifiers() {
		view.Identifiers = append(view.Identifiers, IdentifierView{
			Type:    string(ident.Type()),
			Value:   ident.Value(),
			Purpose: string(ident.Purpose()),
		})
	}
	if mass, ok := c.Mass(); ok {
		grams := mass.Grams()
		view.MassGrams = &grams
	}
	if full, ok := c.FullMass(); ok {
		grams := full.Grams()
		view.FullMassGrams = &grams
	}
	return view
}

// NewOperationView maps a history operation to its read model
func NewOperationView(op history.Operation) OperationView {
	view := OperationView{
		Type:        string(op.Type),
		Description: op.Description,
		Timestamp:   op.Timestamp,
	}
	if !op.ComponentID.IsZero() {
		view.ComponentID = op.ComponentID.String()
	}
	if !op.TargetID.IsZero() {
		view.TargetID = op.TargetID.String()
	}
	return view
}

// NewMeasurementView maps a measurement entity to its read model
func NewMeasurementView(m *entities.Measurement) MeasurementView {
	return MeasurementView{
		ID:          m.ID(),
		ComponentID: m.ComponentID().String(),
		Grams:       m.MeasuredMass().Grams(),
		Type:        string(m.Type()),
		Notes:       m.Notes(),
		MeasuredAt:  m.MeasuredAt(),
	}
}

// NewInferenceView maps an inference result to its read model
func NewInferenceView(result inference.Result) InferenceView {
	view := InferenceView{
		Success: result.Success,
		Message: result.Message,
	}
	for _, a := range result.Assignments {
		view.Assignments = append(view.Assignments, AssignmentView{
			ComponentID: a.ComponentID.String(),
			Grams:       a.Grams,
		})
	}
	return view
}
