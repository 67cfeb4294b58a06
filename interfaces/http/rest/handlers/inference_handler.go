package handlers

import (
	"encoding/json"
	"net/http"

	"spooltrack/application/commands"
	"spooltrack/application/commands/bus"
	"spooltrack/application/queries"
	querybus "spooltrack/application/queries/bus"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InferenceHandler handles mass measurement and inference HTTP requests
type InferenceHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewInferenceHandler creates a new inference handler
func NewInferenceHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *InferenceHandler {
	return &InferenceHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// RecordMeasurementRequest is the request body for recording a mass
// measurement
type RecordMeasurementRequest struct {
	Grams float64 `json:"grams" validate:"gte=0"`
	Type  string  `json:"type,omitempty" validate:"omitempty,oneof=manual scale derived"`
	Notes string  `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// InferMassRequest is the request body for mass inference. Apply false
// previews the assignments without mutating anything.
type InferMassRequest struct {
	TotalGrams float64 `json:"total_grams" validate:"gte=0"`
	Apply      bool    `json:"apply,omitempty"`
}

// ScaleReadingRequest is the request body for a live scale reading
type ScaleReadingRequest struct {
	Value  float64 `json:"value" validate:"gte=0"`
	Unit   string  `json:"unit" validate:"required,oneof=g kg oz lb"`
	Stable bool    `json:"stable"`
	Apply  bool    `json:"apply,omitempty"`
}

// RecordMeasurement handles POST /components/{componentID}/measurements
func (h *InferenceHandler) RecordMeasurement(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "componentID")
	if _, err := uuid.Parse(componentID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid component ID format")
		return
	}

	var req RecordMeasurementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Type == "" {
		req.Type = "manual"
	}

	cmd := commands.RecordMeasurementCommand{
		ComponentID: componentID,
		Grams:       req.Grams,
		Type:        req.Type,
		Notes:       req.Notes,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Error("Failed to record measurement", zap.String("componentID", componentID), zap.Error(err))
		respondAppError(w, err, "Failed to record measurement")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "Measurement recorded"})
}

// ListMeasurements handles GET /components/{componentID}/measurements
func (h *InferenceHandler) ListMeasurements(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "componentID")
	if _, err := uuid.Parse(componentID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid component ID format")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.ListMeasurementsQuery{ComponentID: componentID})
	if err != nil {
		h.logger.Error("Failed to list measurements", zap.String("componentID", componentID), zap.Error(err))
		respondAppError(w, err, "Failed to list measurements")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// InferMass handles POST /components/{componentID}/infer-mass
func (h *InferenceHandler) InferMass(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "componentID")
	if _, err := uuid.Parse(componentID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid component ID format")
		return
	}

	var req InferMassRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Apply {
		cmd := commands.InferAndApplyMassCommand{RootID: componentID, TotalGrams: req.TotalGrams}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			h.logger.Error("Failed to apply mass inference", zap.String("componentID", componentID), zap.Error(err))
			respondAppError(w, err, "Failed to apply mass inference")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "Inferred masses applied"})
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.InferMassQuery{
		RootID:     componentID,
		TotalGrams: req.TotalGrams,
	})
	if err != nil {
		h.logger.Error("Failed to run mass inference", zap.String("componentID", componentID), zap.Error(err))
		respondAppError(w, err, "Failed to run mass inference")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ScaleReading handles POST /components/{componentID}/scale-reading
func (h *InferenceHandler) ScaleReading(w http.ResponseWriter, r *http.Request) {
	componentID := chi.URLParam(r, "componentID")
	if _, err := uuid.Parse(componentID); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid component ID format")
		return
	}

	var req ScaleReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Apply {
		cmd := commands.ApplyScaleReadingCommand{
			ComponentID: componentID,
			Value:       req.Value,
			Unit:        req.Unit,
			Stable:      req.Stable,
		}
		if err := h.commandBus.Send(r.Context(), cmd); err != nil {
			h.logger.Error("Failed to apply scale reading", zap.String("componentID", componentID), zap.Error(err))
			respondAppError(w, err, "Failed to apply scale reading")
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"message": "Scale reading applied"})
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.PreviewScaleReadingQuery{
		ComponentID: componentID,
		Value:       req.Value,
		Unit:        req.Unit,
		Stable:      req.Stable,
	})
	if err != nil {
		h.logger.Error("Failed to preview scale reading", zap.String("componentID", componentID), zap.Error(err))
		respondAppError(w, err, "Failed to preview scale reading")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
