package handlers

import (
	"net/http"
	"strconv"

	"spooltrack/application/commands"
	"spooltrack/application/commands/bus"
	"spooltrack/application/queries"
	querybus "spooltrack/application/queries/bus"

	"go.uber.org/zap"
)

// HistoryHandler handles undo/redo HTTP requests
type HistoryHandler struct {
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	logger     *zap.Logger
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	logger *zap.Logger,
) *HistoryHandler {
	return &HistoryHandler{
		commandBus: commandBus,
		queryBus:   queryBus,
		logger:     logger,
	}
}

// GetHistory handles GET /history
func (h *HistoryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.queryBus.Ask(r.Context(), queries.GetHistoryQuery{Limit: limit})
	if err != nil {
		h.logger.Error("Failed to get history", zap.Error(err))
		respondAppError(w, err, "Failed to retrieve history")
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Undo handles POST /history/undo
func (h *HistoryHandler) Undo(w http.ResponseWriter, r *http.Request) {
	if err := h.commandBus.Send(r.Context(), commands.UndoCommand{}); err != nil {
		h.logger.Warn("Undo failed", zap.Error(err))
		respondAppError(w, err, "Failed to undo")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Operation undone"})
}

// Redo handles POST /history/redo
func (h *HistoryHandler) Redo(w http.ResponseWriter, r *http.Request) {
	if err := h.commandBus.Send(r.Context(), commands.RedoCommand{}); err != nil {
		h.logger.Warn("Redo failed", zap.Error(err))
		respondAppError(w, err, "Failed to redo")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Operation redone"})
}
