package queries

import (
	"context"

	"spooltrack/application/queries/bus"
	"spooltrack/application/services"
	"spooltrack/domain/core/valueobjects"
	pkgerrors "spooltrack/pkg/errors"
)

// ListComponentsHandler handles ListComponentsQuery
type ListComponentsHandler struct {
	assembly *services.AssemblyService
}

// NewListComponentsHandler creates a new handler
func NewListComponentsHandler(assembly *services.AssemblyService) *ListComponentsHandler {
	return &ListComponentsHandler{assembly: assembly}
}

// Handle executes the query
func (h *ListComponentsHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(ListComponentsQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError("invalid query type for ListComponentsHandler")
	}

	inv, err := h.assembly.Inventory(ctx)
	if err != nil {
		return nil, err
	}

	components := inv.Components()
	if q.RootsOnly {
		components = inv.Roots()
	}

	views := make([]ComponentView, 0, len(components))
	for _, c := range components {
		views = append(views, NewComponentView(c))
	}
	return ComponentListView{Components: views, Total: len(views)}, nil
}

// GetComponentHandler handles GetComponentQuery
type GetComponentHandler struct {
	assembly *services.AssemblyService
}

// NewGetComponentHandler creates a new handler
func NewGetComponentHandler(assembly *services.AssemblyService) *GetComponentHandler {
	return &GetComponentHandler{assembly: assembly}
}

// Handle executes the query
func (h *GetComponentHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(GetComponentQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError("invalid query type for GetComponentHandler")
	}

	id, err := valueobjects.NewComponentIDFromString(q.ComponentID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	inv, err := h.assembly.Inventory(ctx)
	if err != nil {
		return nil, err
	}
	c, err := inv.GetComponent(id)
	if err != nil {
		return nil, err
	}
	return NewComponentView(c), nil
}

// GetSubtreeHandler handles GetSubtreeQuery
type GetSubtreeHandler struct {
	assembly *services.AssemblyService
}

// NewGetSubtreeHandler creates a new handler
func NewGetSubtreeHandler(assembly *services.AssemblyService) *GetSubtreeHandler {
	return &GetSubtreeHandler{assembly: assembly}
}

// Handle executes the query
func (h *GetSubtreeHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(GetSubtreeQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError("invalid query type for GetSubtreeHandler")
	}

	rootID, err := valueobjects.NewComponentIDFromString(q.RootID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	inv, err := h.assembly.Inventory(ctx)
	if err != nil {
		return nil, err
	}
	members, err := inv.Subtree(rootID)
	if err != nil {
		return nil, err
	}

	views := make([]ComponentView, 0, len(members))
	for _, c := range members {
		views = append(views, NewComponentView(c))
	}
	return ComponentListView{Components: views, Total: len(views)}, nil
}

// InferMassHandler handles InferMassQuery
type InferMassHandler struct {
	components *services.ComponentService
}

// NewInferMassHandler creates a new handler
func NewInferMassHandler(components *services.ComponentService) *InferMassHandler {
	return &InferMassHandler{components: components}
}

// Handle executes the query
func (h *InferMassHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(InferMassQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError("invalid query type for InferMassHandler")
	}

	rootID, err := valueobjects.NewComponentIDFromString(q.RootID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	result, err := h.components.InferComponentMass(ctx, rootID, q.TotalGrams)
	if err != nil {
		return nil, err
	}
	return NewInferenceView(result), nil
}

// PreviewScaleReadingHandler handles PreviewScaleReadingQuery
type PreviewScaleReadingHandler struct {
	components *services.ComponentService
}

// NewPreviewScaleReadingHandler creates a new handler
func NewPreviewScaleReadingHandler(components *services.ComponentService) *PreviewScaleReadingHandler {
	return &PreviewScaleReadingHandler{components: components}
}

// Handle executes the query
func (h *PreviewScaleReadingHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(PreviewScaleReadingQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError("invalid query type for PreviewScaleReadingHandler")
	}

	componentID, err := valueobjects.NewComponentIDFromString(q.ComponentID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	reading := valueobjects.WeightReading{
		Value:  q.Value,
		Unit:   valueobjects.WeightUnit(q.Unit),
		Stable: q.Stable,
	}
	result, err := h.components.ProcessScaleReading(ctx, componentID, reading)
	if err != nil {
		return nil, err
	}
	return NewInferenceView(result), nil
}

// GetHistoryHandler handles GetHistoryQuery
type GetHistoryHandler struct {
	components *services.ComponentService
}

// NewGetHistoryHandler creates a new handler
func NewGetHistoryHandler(components *services.ComponentService) *GetHistoryHandler {
	return &GetHistoryHandler{components: components}
}

// Handle executes the query
func (h *GetHistoryHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(GetHistoryQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError("invalid query type for GetHistoryHandler")
	}

	limit := q.Limit
	if limit == 0 {
		limit = 20
	}

	view := HistoryView{
		CanUndo:    h.components.CanUndo(),
		CanRedo:    h.components.CanRedo(),
		Operations: []OperationView{},
	}
	for _, op := range h.components.RecentOperations(limit) {
		view.Operations = append(view.Operations, NewOperationView(op))
	}
	return view, nil
}

// ListMeasurementsHandler handles ListMeasurementsQuery
type ListMeasurementsHandler struct {
	components *services.ComponentService
}

// NewListMeasurementsHandler creates a new handler
func NewListMeasurementsHandler(components *services.ComponentService) *ListMeasurementsHandler {
	return &ListMeasurementsHandler{components: components}
}

// Handle executes the query
func (h *ListMeasurementsHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(ListMeasurementsQuery)
	if !ok {
		return nil, pkgerrors.NewInternalError("invalid query type for ListMeasurementsHandler")
	}

	componentID, err := valueobjects.NewComponentIDFromString(q.ComponentID)
	if err != nil {
		return nil, pkgerrors.NewValidationError(err.Error())
	}

	measurements, err := h.components.GetMeasurements(ctx, componentID)
	if err != nil {
		return nil, err
	}

	views := make([]MeasurementView, 0, len(measurements))
	for _, m := range measurements {
		views = append(views, NewMeasurementView(m))
	}
	return views, nil
}
