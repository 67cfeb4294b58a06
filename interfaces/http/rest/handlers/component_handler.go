package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"spooltrack/application/commands"
	"spooltrack/application/commands/bus"
	"spooltrack/application/queries"
	querybus "spooltrack/application/queries/bus"
	pkgerrors "spooltrack/pkg/errors"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ComponentHandler handles component graph HTTP requests
type ComponentHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewComponentHandler creates a new component handler
func NewComponentHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *ComponentHandler {
	return &ComponentHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// AddChildRequest is the request body for adding a child component
type AddChildRequest struct {
	Name          string   `json:"name" validate:"required,min=1,max=200"`
	Category      string   `json:"category,omitempty" validate:"omitempty,max=100"`
	Manufacturer  string   `json:"manufacturer,omitempty" validate:"omitempty,max=200"`
	Description   string   `json:"description,omitempty" validate:"omitempty,max=2000"`
	Tags          []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
	MassGrams     *float64 `json:"mass_grams,omitempty" validate:"omitempty,gte=0"`
	FullMassGrams *float64 `json:"full_mass_grams,omitempty" validate:"omitempty,gte=0"`
	VariableMass  bool     `json:"variable_mass,omitempty"`
}

// MoveComponentRequest is the request body for moving a component. An
// empty new_parent_id detaches the component to a root.
type MoveComponentRequest struct {
	NewParentID string `json:"new_parent_id,omitempty" validate:"omitempty,uuid"`
}

// CreateSiblingRequest is the request body for linking two siblings
type CreateSiblingRequest struct {
	ComponentA string `json:"component_a" validate:"required,uuid"`
	ComponentB string `json:"component_b" validate:"required,uuid"`
}

// ListComponents handles GET /components
func (h *ComponentHandler) ListComponents(w http.ResponseWriter, r *http.Request) {
	query := queries.ListComponentsQuery{
		RootsOnly: r.URL.Query().Get("roots_only") == "true",
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to list components", zap.Error(err))
		respondAppError(w, err, "Failed to list components")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetComponent handles GET /components/{componentID}
func (h *ComponentHandler) GetComponent(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "componentID")
	if _, err := uuid.Parse(componentID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid component ID format")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetComponentQuery{ComponentID: componentID})
	if err != nil {
		h.logger.Error("Failed to get component", zap.String("componentID", componentID), zap.Error(err))
		respondAppError(w, err, "Failed to retrieve component")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// GetSubtree handles GET /components/{componentID}/subtree
func (h *ComponentHandler) GetSubtree(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "componentID")
	if _, err := uuid.Parse(componentID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid component ID format")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetSubtreeQuery{RootID: componentID})
	if err != nil {
		h.logger.Error("Failed to get subtree", zap.String("componentID", componentID), zap.Error(err))
		respondAppError(w, err, "Failed to retrieve subtree")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// AddChild handles POST /components/{componentID}/children
func (h *ComponentHandler) AddChild(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "componentID")
	if _, err := uuid.Parse(parentID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid component ID format")
		return
	}

	var req AddChildRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cmd := commands.AddChildCommand{
		ParentID:      parentID,
		Name:          req.Name,
		Category:      req.Category,
		Manufacturer:  req.Manufacturer,
		Description:   req.Description,
		Tags:          req.Tags,
		MassGrams:     req.MassGrams,
		FullMassGrams: req.FullMassGrams,
		VariableMass:  req.VariableMass,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to add child component", zap.String("parentID", parentID), zap.Error(err))
		respondAppError(w, err, "Failed to add child component")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "Child component added"})
}

// RemoveChild handles DELETE /components/{componentID}/children/{childID}
func (h *ComponentHandler) RemoveChild(w http.ResponseWriter, r *http.Request) {
	parentID := chi.URLParam(r, "componentID")
	childID := chi.URLParam(r, "childID")
	for _, id := range []string{parentID, childID} {
		if _, err := uuid.Parse(id); err != nil {
			respondError(w, http.StatusBadRequest, "Invalid component ID format")
			return
		}
	}

	cmd := commands.RemoveChildCommand{ParentID: parentID, ChildID: childID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to remove child component",
			zap.String("parentID", parentID),
			zap.String("childID", childID),
			zap.Error(err),
		)
		respondAppError(w, err, "Failed to remove child component")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MoveComponent handles PUT /components/{componentID}/parent
func (h *ComponentHandler) MoveComponent(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "componentID")
	if _, err := uuid.Parse(componentID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid component ID format")
		return
	}

	var req MoveComponentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cmd := commands.MoveComponentCommand{ComponentID: componentID, NewParentID: req.NewParentID}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to move component", zap.String("componentID", componentID), zap.Error(err))
		respondAppError(w, err, "Failed to move component")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Component moved"})
}

// CreateSibling handles POST /siblings
func (h *ComponentHandler) CreateSibling(w http.ResponseWriter, r *http.Request) {
	var req CreateSiblingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	cmd := commands.CreateSiblingCommand{ComponentA: req.ComponentA, ComponentB: req.ComponentB}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to link siblings",
			zap.String("componentA", req.ComponentA),
			zap.String("componentB", req.ComponentB),
			zap.Error(err),
		)
		respondAppError(w, err, "Failed to link siblings")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "Siblings linked"})
}

// RefreshInventory handles POST /inventory/refresh
func (h *ComponentHandler) RefreshInventory(w http.ResponseWriter, r *http.Request) {
	if err := h.commandBus.Send(r.Context(), commands.RefreshInventoryCommand{}); err != nil {
		h.logger.Error("Failed to refresh inventory", zap.Error(err))
		respondAppError(w, err, "Failed to refresh inventory")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Inventory refreshed"})
}

// Shared response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{
		"error":   true,
		"message": message,
		"code":    status,
	})
}

// respondAppError maps a typed application error to its HTTP status,
// falling back to 500 with a generic message
func respondAppError(w http.ResponseWriter, err error, fallback string) {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		respondJSON(w, appErr.HTTPStatus, map[string]interface{}{
			"error":   true,
			"message": appErr.Message,
			"code":    string(appErr.Type),
		})
		return
	}
	// Bus-level validation failures carry no AppError type
	if strings.Contains(err.Error(), "validation failed") {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, fallback)
}
