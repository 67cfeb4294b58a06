package commands

import (
	"context"

	"spooltrack/application/commands/bus"
	"spooltrack/application/services"
	"spooltrack/domain/core/entities"
	"spooltrack/domain/core/valueobjects"
	pkgerrors "spooltrack/pkg/errors"
)

// AddChildHandler handles AddChildCommand
type AddChildHandler struct {
	components *services.ComponentService
}

// NewAddChildHandler creates a new handler
func NewAddChildHandler(components *services.ComponentService) *AddChildHandler {
	return &AddChildHandler{components: components}
}

// Handle executes the command
func (h *AddChildHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(AddChildCommand)
	if !ok {
		return pkgerrors.NewInternalError("invalid command type for AddChildHandler")
	}

	parentID, err := valueobjects.NewComponentIDFromString(c.ParentID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	child, err := buildComponent(c)
	if err != nil {
		return err
	}
	return h.components.AddChildComponent(ctx, parentID, child)
}

// buildComponent constructs the child entity from the command fields
func buildComponent(c AddChildCommand) (*entities.Component, error) {
	child, err := entities.NewComponent(c.Name, c.Category)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	child.SetManufacturer(c.Manufacturer)
	child.SetDescription(c.Description)
	for _, tag := range c.Tags {
		if err := child.AddTag(tag); err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
	}

	// Variable-mass flag first so a full mass does not backfill the
	// current mass for containers
	child.SetVariableMass(c.VariableMass)
	if c.FullMassGrams != nil {
		full, err := valueobjects.NewMass(*c.FullMassGrams)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		child.SetFullMass(full)
	}
	if c.MassGrams != nil {
		mass, err := valueobjects.NewMass(*c.MassGrams)
		if err != nil {
			return nil, pkgerrors.NewValidationError(err.Error())
		}
		child.SetMass(mass, false)
	}

	child.MarkEventsAsCommitted()
	return child, nil
}

// RemoveChildHandler handles RemoveChildCommand
type RemoveChildHandler struct {
	components *services.ComponentService
}

// NewRemoveChildHandler creates a new handler
func NewRemoveChildHandler(components *services.ComponentService) *RemoveChildHandler {
	return &RemoveChildHandler{components: components}
}

// Handle executes the command
func (h *RemoveChildHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(RemoveChildCommand)
	if !ok {
		return pkgerrors.NewInternalError("invalid command type for RemoveChildHandler")
	}

	parentID, err := valueobjects.NewComponentIDFromString(c.ParentID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	childID, err := valueobjects.NewComponentIDFromString(c.ChildID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return h.components.RemoveChildComponent(ctx, parentID, childID)
}

// CreateSiblingHandler handles CreateSiblingCommand
type CreateSiblingHandler struct {
	components *services.ComponentService
}

// NewCreateSiblingHandler creates a new handler
func NewCreateSiblingHandler(components *services.ComponentService) *CreateSiblingHandler {
	return &CreateSiblingHandler{components: components}
}

// Handle executes the command
func (h *CreateSiblingHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(CreateSiblingCommand)
	if !ok {
		return pkgerrors.NewInternalError("invalid command type for CreateSiblingHandler")
	}

	a, err := valueobjects.NewComponentIDFromString(c.ComponentA)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	b, err := valueobjects.NewComponentIDFromString(c.ComponentB)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return h.components.CreateSiblingRelationship(ctx, a, b)
}

// MoveComponentHandler handles MoveComponentCommand
type MoveComponentHandler struct {
	components *services.ComponentService
}

// NewMoveComponentHandler creates a new handler
func NewMoveComponentHandler(components *services.ComponentService) *MoveComponentHandler {
	return &MoveComponentHandler{components: components}
}

// Handle executes the command
func (h *MoveComponentHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(MoveComponentCommand)
	if !ok {
		return pkgerrors.NewInternalError("invalid command type for MoveComponentHandler")
	}

	componentID, err := valueobjects.NewComponentIDFromString(c.ComponentID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	var newParentID valueobjects.ComponentID
	if c.NewParentID != "" {
		newParentID, err = valueobjects.NewComponentIDFromString(c.NewParentID)
		if err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}
	}
	return h.components.MoveComponentToParent(ctx, componentID, newParentID)
}

// RecordMeasurementHandler handles RecordMeasurementCommand
type RecordMeasurementHandler struct {
	components *services.ComponentService
}

// NewRecordMeasurementHandler creates a new handler
func NewRecordMeasurementHandler(components *services.ComponentService) *RecordMeasurementHandler {
	return &RecordMeasurementHandler{components: components}
}

// Handle executes the command
func (h *RecordMeasurementHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(RecordMeasurementCommand)
	if !ok {
		return pkgerrors.NewInternalError("invalid command type for RecordMeasurementHandler")
	}

	componentID, err := valueobjects.NewComponentIDFromString(c.ComponentID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	mass, err := valueobjects.NewMass(c.Grams)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return h.components.RecordMassMeasurement(ctx, componentID, mass, entities.MeasurementType(c.Type), c.Notes)
}

// InferAndApplyMassHandler handles InferAndApplyMassCommand
type InferAndApplyMassHandler struct {
	components *services.ComponentService
}

// NewInferAndApplyMassHandler creates a new handler
func NewInferAndApplyMassHandler(components *services.ComponentService) *InferAndApplyMassHandler {
	return &InferAndApplyMassHandler{components: components}
}

// Handle executes the command
func (h *InferAndApplyMassHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(InferAndApplyMassCommand)
	if !ok {
		return pkgerrors.NewInternalError("invalid command type for InferAndApplyMassHandler")
	}

	rootID, err := valueobjects.NewComponentIDFromString(c.RootID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	result, err := h.components.InferComponentMass(ctx, rootID, c.TotalGrams)
	if err != nil {
		return err
	}
	if !result.Success {
		return pkgerrors.NewInconsistentStateError(result.Message)
	}
	return h.components.ApplyInference(ctx, result)
}

// ApplyScaleReadingHandler handles ApplyScaleReadingCommand
type ApplyScaleReadingHandler struct {
	components *services.ComponentService
}

// NewApplyScaleReadingHandler creates a new handler
func NewApplyScaleReadingHandler(components *services.ComponentService) *ApplyScaleReadingHandler {
	return &ApplyScaleReadingHandler{components: components}
}

// Handle executes the command
func (h *ApplyScaleReadingHandler) Handle(ctx context.Context, cmd bus.Command) error {
	c, ok := cmd.(ApplyScaleReadingCommand)
	if !ok {
		return pkgerrors.NewInternalError("invalid command type for ApplyScaleReadingHandler")
	}

	componentID, err := valueobjects.NewComponentIDFromString(c.ComponentID)
	if err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}

	reading := valueobjects.WeightReading{
		Value:  c.Value,
		Unit:   valueobjects.WeightUnit(c.Unit),
		Stable: c.Stable,
	}
	result, err := h.components.ProcessScaleReading(ctx, componentID, reading)
	if err != nil {
		return err
	}
	if !result.Success {
		return pkgerrors.NewInconsistentStateError(result.Message)
	}
	return h.components.ApplyInference(ctx, result)
}

// RefreshInventoryHandler handles RefreshInventoryCommand
type RefreshInventoryHandler struct {
	assembly *services.AssemblyService
}

// NewRefreshInventoryHandler creates a new handler
func NewRefreshInventoryHandler(assembly *services.AssemblyService) *RefreshInventoryHandler {
	return &RefreshInventoryHandler{assembly: assembly}
}

// Handle executes the command
func (h *RefreshInventoryHandler) Handle(ctx context.Context, cmd bus.Command) error {
	if _, ok := cmd.(RefreshInventoryCommand); !ok {
		return pkgerrors.NewInternalError("invalid command type for RefreshInventoryHandler")
	}
	_, err := h.assembly.Refresh(ctx)
	return err
}

// UndoHandler handles UndoCommand
type UndoHandler struct {
	components *services.ComponentService
}

// NewUndoHandler creates a new handler
func NewUndoHandler(components *services.ComponentService) *UndoHandler {
	return &UndoHandler{components: components}
}

// Handle executes the command
func (h *UndoHandler) Handle(ctx context.Context, cmd bus.Command) error {
	if _, ok := cmd.(UndoCommand); !ok {
		return pkgerrors.NewInternalError("invalid command type for UndoHandler")
	}
	return h.components.Undo(ctx)
}

// RedoHandler handles RedoCommand
type RedoHandler struct {
	components *services.ComponentService
}

// NewRedoHandler creates a new handler
func NewRedoHandler(components *services.ComponentService) *RedoHandler {
	return &RedoHandler{components: components}
}

// Handle executes the command
func (h *RedoHandler) Handle(ctx context.Context, cmd bus.Command) error {
	if _, ok := cmd.(RedoCommand); !ok {
		return pkgerrors.NewInternalError("invalid command type for RedoHandler")
	}
	return h.components.Redo(ctx)
}
