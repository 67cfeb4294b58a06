package history

import (
	"time"

	"spooltrack/domain/config"
	"spooltrack/domain/core/entities"
	"spooltrack/domain/core/valueobjects"
)

// OperationType identifies a reversible mutation
type OperationType string

const (
	OpAddChild      OperationType = "ADD_CHILD"
	OpRemoveChild   OperationType = "REMOVE_CHILD"
	OpAddSibling    OperationType = "ADD_SIBLING"
	OpMoveComponent OperationType = "MOVE_COMPONENT"
	OpUpdateMass    OperationType = "UPDATE_MASS"
	OpBatch         OperationType = "BATCH"
)

// Payload is the closed set of reversal payloads. Each operation type
// carries exactly the strongly typed data needed to reverse itself, so
// replay never depends on runtime casts of loose data.
type Payload interface {
	isPayload()
}

// AddChildPayload snapshots the added child so the edge can be replayed
// in either direction: reversal unlinks and deletes it, replay persists
// and links it again.
type AddChildPayload struct {
	Child *entities.Component
}

// RemoveChildPayload snapshots the removed component so undo restores it
// fully, fields and identifiers included, not just the link
type RemoveChildPayload struct {
	Removed *entities.Component
}

// AddSiblingPayload reverses by removing both symmetric references
type AddSiblingPayload struct{}

// MovePayload remembers the previous parent; the operation's TargetID
// holds the new one. A zero OldParentID means the component was a root
// before the move.
type MovePayload struct {
	OldParentID valueobjects.ComponentID
}

// MassState is one side of a mass transition. Nil Grams means the mass
// was unknown.
type MassState struct {
	Grams    *float64
	Inferred bool
}

// UpdateMassPayload carries both sides of the transition so the same
// operation serves undo (apply Prev) and redo (apply Next)
type UpdateMassPayload struct {
	Prev MassState
	Next MassState
}

// BatchPayload wraps an ordered list of nested operations. Undo replays
// them in reverse order, redo in original order.
type BatchPayload struct {
	Operations []Operation
}

func (AddChildPayload) isPayload()    {}
func (RemoveChildPayload) isPayload() {}
func (AddSiblingPayload) isPayload()  {}
func (MovePayload) isPayload()        {}
func (UpdateMassPayload) isPayload()  {}
func (BatchPayload) isPayload()       {}

// Operation is one recorded, reversible mutation
type Operation struct {
	Type        OperationType
	ComponentID valueobjects.ComponentID
	TargetID    valueobjects.ComponentID
	Description string
	Payload     Payload
	Timestamp   time.Time
}

// NewOperation creates an operation stamped with the current time
func NewOperation(opType OperationType, componentID, targetID valueobjects.ComponentID, description string, payload Payload) Operation {
	return Operation{
		Type:        opType,
		ComponentID: componentID,
		TargetID:    targetID,
		Description: description,
		Payload:     payload,
		Timestamp:   time.Now(),
	}
}

// History owns the bounded undo and redo stacks. It is deliberately not
// safe for concurrent use; the owning service serializes access together
// with its graph mutations.
type History struct {
	undo         []Operation
	redo         []Operation
	maxUndoDepth int
	maxRedoDepth int
}

// NewHistory creates empty stacks bounded by the domain configuration
func NewHistory(cfg config.DomainConfig) *History {
	return &History{
		maxUndoDepth: cfg.MaxUndoDepth,
		maxRedoDepth: cfg.MaxRedoDepth,
	}
}

// Record pushes a freshly applied operation onto the undo stack and
// clears the redo stack: redo history is only valid against the state
// immediately preceding it.
func (h *History) Record(op Operation) {
	h.PushUndo(op)
	h.redo = nil
}

// PushUndo pushes without clearing redo, evicting the oldest entry when
// the stack is full. Used by redo replay and by failure restoration.
func (h *History) PushUndo(op Operation) {
	h.undo = append(h.undo, op)
	if len(h.undo) > h.maxUndoDepth {
		h.undo = h.undo[len(h.undo)-h.maxUndoDepth:]
	}
}

// PushRedo pushes onto the redo stack, evicting the oldest entry when the
// stack is full
func (h *History) PushRedo(op Operation) {
	h.redo = append(h.redo, op)
	if len(h.redo) > h.maxRedoDepth {
		h.redo = h.redo[len(h.redo)-h.maxRedoDepth:]
	}
}

// PopUndo removes and returns the most recent undoable operation
func (h *History) PopUndo() (Operation, bool) {
	if len(h.undo) == 0 {
		return Operation{}, false
	}
	op := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return op, true
}

// PopRedo removes and returns the most recent redoable operation
func (h *History) PopRedo() (Operation, bool) {
	if len(h.redo) == 0 {
		return Operation{}, false
	}
	op := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return op, true
}

// CanUndo reports whether an undoable operation exists
func (h *History) CanUndo() bool {
	return len(h.undo) > 0
}

// CanRedo reports whether a redoable operation exists
func (h *History) CanRedo() bool {
	return len(h.redo) > 0
}

// UndoDepth returns the current undo stack size
func (h *History) UndoDepth() int {
	return len(h.undo)
}

// RedoDepth returns the current redo stack size
func (h *History) RedoDepth() int {
	return len(h.redo)
}

// PeekUndo returns the next operation undo would reverse
func (h *History) PeekUndo() (Operation, bool) {
	if len(h.undo) == 0 {
		return Operation{}, false
	}
	return h.undo[len(h.undo)-1], true
}

// PeekRedo returns the next operation redo would replay
func (h *History) PeekRedo() (Operation, bool) {
	if len(h.redo) == 0 {
		return Operation{}, false
	}
	return h.redo[len(h.redo)-1], true
}

// Recent returns up to n most recent undoable operations, newest first
func (h *History) Recent(n int) []Operation {
	if n <= 0 || len(h.undo) == 0 {
		return nil
	}
	if n > len(h.undo) {
		n = len(h.undo)
	}
	out := make([]Operation, 0, n)
	for i := len(h.undo) - 1; i >= len(h.undo)-n; i-- {
		out = append(out, h.undo[i])
	}
	return out
}

// Clear drops both stacks
func (h *History) Clear() {
	h.undo = nil
	h.redo = nil
}
