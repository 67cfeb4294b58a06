package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"spooltrack/application/history"
	"spooltrack/application/inference"
	"spooltrack/application/ports"
	"spooltrack/domain/core/aggregates"
	"spooltrack/domain/core/entities"
	"spooltrack/domain/core/valueobjects"
	"spooltrack/domain/events"
	pkgerrors "spooltrack/pkg/errors"

	"go.uber.org/zap"
)

// graphMutationLock names the cross-instance lock guarding structural
// mutations
const graphMutationLock = "graph-mutations"

// ComponentService owns every structural and mass mutation of the
// inventory plus the undo/redo stacks. Mutations are serialized: the
// local mutex covers in-process callers and the mutation lock covers
// other instances sharing the overlay store. Each operation is atomic
// from the caller's view: either fully applied with a history entry, or
// not applied at all with an error. The history push always happens
// before the mutation's result is returned.
type ComponentService struct {
	assembly  *AssemblyService
	store     ports.OverlayStore
	publisher ports.EventPublisher
	lock      ports.MutationLock
	engine    *inference.Engine
	history   *history.History
	logger    *zap.Logger

	mu sync.Mutex
}

// NewComponentService creates a new component service
func NewComponentService(
	assembly *AssemblyService,
	store ports.OverlayStore,
	publisher ports.EventPublisher,
	lock ports.MutationLock,
	engine *inference.Engine,
	hist *history.History,
	logger *zap.Logger,
) *ComponentService {
	return &ComponentService{
		assembly:  assembly,
		store:     store,
		publisher: publisher,
		lock:      lock,
		engine:    engine,
		history:   hist,
		logger:    logger,
	}
}

// AddChildComponent persists the child (creating or overwriting) and
// links it under the parent
func (s *ComponentService) AddChildComponent(ctx context.Context, parentID valueobjects.ComponentID, child *entities.Component) error {
	if child == nil {
		return pkgerrors.NewValidationError("child component cannot be nil")
	}
	return s.mutate(ctx, func(inv *aggregates.Inventory) (history.Operation, error) {
		op := history.NewOperation(history.OpAddChild, parentID, child.ID(),
			fmt.Sprintf("add %s under %s", child.Name(), parentID),
			history.AddChildPayload{Child: child.Clone()})
		if err := s.applyAddChild(ctx, inv, parentID, child); err != nil {
			return history.Operation{}, err
		}
		return op, nil
	})
}

// RemoveChildComponent unlinks and removes the child, capturing a full
// snapshot so undo can restore it, not just the link
func (s *ComponentService) RemoveChildComponent(ctx context.Context, parentID, childID valueobjects.ComponentID) error {
	return s.mutate(ctx, func(inv *aggregates.Inventory) (history.Operation, error) {
		child, err := inv.GetComponent(childID)
		if err != nil {
			return history.Operation{}, err
		}
		op := history.NewOperation(history.OpRemoveChild, parentID, childID,
			fmt.Sprintf("remove %s from %s", child.Name(), parentID),
			history.RemoveChildPayload{Removed: child.Clone()})
		if err := s.applyRemoveChild(ctx, inv, parentID, childID); err != nil {
			return history.Operation{}, err
		}
		return op, nil
	})
}

// CreateSiblingRelationship adds symmetric sibling references between two
// components
func (s *ComponentService) CreateSiblingRelationship(ctx context.Context, a, b valueobjects.ComponentID) error {
	return s.mutate(ctx, func(inv *aggregates.Inventory) (history.Operation, error) {
		op := history.NewOperation(history.OpAddSibling, a, b,
			fmt.Sprintf("link siblings %s and %s", a, b),
			history.AddSiblingPayload{})
		if err := s.applyAddSibling(ctx, inv, a, b); err != nil {
			return history.Operation{}, err
		}
		return op, nil
	})
}

// MoveComponentToParent relinks a component under a new parent; a zero
// newParentID detaches it to a root
func (s *ComponentService) MoveComponentToParent(ctx context.Context, componentID, newParentID valueobjects.ComponentID) error {
	return s.mutate(ctx, func(inv *aggregates.Inventory) (history.Operation, error) {
		c, err := inv.GetComponent(componentID)
		if err != nil {
			return history.Operation{}, err
		}
		oldParentID := c.ParentID()
		op := history.NewOperation(history.OpMoveComponent, componentID, newParentID,
			fmt.Sprintf("move %s to %s", componentID, parentLabel(newParentID)),
			history.MovePayload{OldParentID: oldParentID})
		if err := s.applyMove(ctx, inv, componentID, oldParentID, newParentID); err != nil {
			return history.Operation{}, err
		}
		return op, nil
	})
}

// RecordMassMeasurement appends an immutable measurement and sets the
// component's measured mass
func (s *ComponentService) RecordMassMeasurement(ctx context.Context, componentID valueobjects.ComponentID, mass valueobjects.Mass, measType entities.MeasurementType, notes string) error {
	return s.mutate(ctx, func(inv *aggregates.Inventory) (history.Operation, error) {
		c, err := inv.GetComponent(componentID)
		if err != nil {
			return history.Operation{}, err
		}

		measurement, err := entities.NewMeasurement(componentID, mass, measType, notes)
		if err != nil {
			return history.Operation{}, err
		}

		grams := mass.Grams()
		prev := massStateOf(c)
		op := history.NewOperation(history.OpUpdateMass, componentID, valueobjects.ComponentID{},
			fmt.Sprintf("set mass of %s to %.2fg", componentID, grams),
			history.UpdateMassPayload{
				Prev: prev,
				Next: history.MassState{Grams: &grams, Inferred: false},
			})

		if err := s.applyMass(ctx, inv, componentID, history.MassState{Grams: &grams, Inferred: false}); err != nil {
			return history.Operation{}, err
		}
		if err := s.store.SaveMeasurement(ctx, measurement); err != nil {
			// Keep the graph and stacks in their pre-call state; prev was
			// captured before the forward apply mutated c
			_ = s.applyMass(ctx, inv, componentID, prev)
			return history.Operation{}, pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to save measurement")
		}

		s.publish(ctx, events.NewMeasurementRecorded(measurement.ID(), componentID, grams, string(measType), measurement.MeasuredAt()))
		return op, nil
	})
}

// InferComponentMass runs inference over the subtree rooted at rootID
// without mutating anything
func (s *ComponentService) InferComponentMass(ctx context.Context, rootID valueobjects.ComponentID, totalMeasuredGrams float64) (inference.Result, error) {
	inv, err := s.assembly.Inventory(ctx)
	if err != nil {
		return inference.Result{}, err
	}
	return s.engine.InferComponentMass(inv, rootID, totalMeasuredGrams), nil
}

// ProcessScaleReading validates a live scale reading and runs inference
// from it
func (s *ComponentService) ProcessScaleReading(ctx context.Context, componentID valueobjects.ComponentID, reading valueobjects.WeightReading) (inference.Result, error) {
	inv, err := s.assembly.Inventory(ctx)
	if err != nil {
		return inference.Result{}, err
	}
	return s.engine.ProcessScaleReading(inv, componentID, reading), nil
}

// ApplyInference applies an inference result's assignments as one BATCH
// of mass updates. Application is best effort: if an assignment fails
// partway, the recorded batch contains exactly the applied prefix so undo
// matches what actually happened, and the error is surfaced.
func (s *ComponentService) ApplyInference(ctx context.Context, result inference.Result) error {
	if !result.Success {
		return pkgerrors.NewValidationError("cannot apply a failed inference result: " + result.Message)
	}
	if len(result.Assignments) == 0 {
		return nil
	}
	return s.mutate(ctx, func(inv *aggregates.Inventory) (history.Operation, error) {
		applied := make([]history.Operation, 0, len(result.Assignments))
		fail := func(err error) (history.Operation, error) {
			if len(applied) == 0 {
				return history.Operation{}, err
			}
			return s.batchOp(applied, len(result.Assignments)), err
		}
		for _, assignment := range result.Assignments {
			c, err := inv.GetComponent(assignment.ComponentID)
			if err != nil {
				return fail(err)
			}
			grams := assignment.Grams
			next := history.MassState{Grams: &grams, Inferred: true}
			nested := history.NewOperation(history.OpUpdateMass, assignment.ComponentID, valueobjects.ComponentID{},
				fmt.Sprintf("infer mass of %s as %.2fg", assignment.ComponentID, grams),
				history.UpdateMassPayload{Prev: massStateOf(c), Next: next})
			if err := s.applyMass(ctx, inv, assignment.ComponentID, next); err != nil {
				return fail(err)
			}
			applied = append(applied, nested)
		}
		return s.batchOp(applied, len(result.Assignments)), nil
	})
}

// Undo reverses the most recent operation. On failure the operation is
// restored to the undo stack so the user can retry.
func (s *ComponentService) Undo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.lock.Acquire(ctx, graphMutationLock)
	if err != nil {
		return err
	}
	defer release()

	op, ok := s.history.PopUndo()
	if !ok {
		return pkgerrors.NewNotFoundError("operation to undo")
	}

	inv, err := s.assembly.Inventory(ctx)
	if err != nil {
		s.history.PushUndo(op)
		return err
	}
	if err := s.applyReverse(ctx, inv, op); err != nil {
		s.history.PushUndo(op)
		return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeInternal, fmt.Sprintf("failed to undo %s", op.Description))
	}

	s.history.PushRedo(op)
	s.logger.Info("Undid operation", zap.String("type", string(op.Type)), zap.String("description", op.Description))
	return nil
}

// Redo replays the most recently undone operation. On failure the
// operation is restored to the redo stack.
func (s *ComponentService) Redo(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.lock.Acquire(ctx, graphMutationLock)
	if err != nil {
		return err
	}
	defer release()

	op, ok := s.history.PopRedo()
	if !ok {
		return pkgerrors.NewNotFoundError("operation to redo")
	}

	inv, err := s.assembly.Inventory(ctx)
	if err != nil {
		s.history.PushRedo(op)
		return err
	}
	if err := s.applyForward(ctx, inv, op); err != nil {
		s.history.PushRedo(op)
		return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeInternal, fmt.Sprintf("failed to redo %s", op.Description))
	}

	s.history.PushUndo(op)
	s.logger.Info("Redid operation", zap.String("type", string(op.Type)), zap.String("description", op.Description))
	return nil
}

// CanUndo reports whether an operation is available to undo
func (s *ComponentService) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanUndo()
}

// CanRedo reports whether an operation is available to redo
func (s *ComponentService) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.CanRedo()
}

// RecentOperations returns up to n most recent undoable operations,
// newest first
func (s *ComponentService) RecentOperations(n int) []history.Operation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Recent(n)
}

// GetMeasurements returns the measurement audit trail for a component,
// newest first
func (s *ComponentService) GetMeasurements(ctx context.Context, componentID valueobjects.ComponentID) ([]*entities.Measurement, error) {
	return s.store.GetMeasurements(ctx, componentID)
}

// mutate wraps one mutation with serialization and the history push.
// The operation returned by fn is recorded only when fn succeeds.
func (s *ComponentService) mutate(ctx context.Context, fn func(inv *aggregates.Inventory) (history.Operation, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	release, err := s.lock.Acquire(ctx, graphMutationLock)
	if err != nil {
		return err
	}
	defer release()

	inv, err := s.assembly.Inventory(ctx)
	if err != nil {
		return err
	}

	op, err := fn(inv)
	if err != nil {
		// A best-effort batch still records its applied prefix so undo
		// matches what actually happened
		if op.Type != "" {
			s.history.Record(op)
		}
		return err
	}

	s.history.Record(op)
	s.logger.Info("Applied operation", zap.String("type", string(op.Type)), zap.String("description", op.Description))
	return nil
}

// batchOp wraps applied nested operations into a BATCH entry
func (s *ComponentService) batchOp(applied []history.Operation, requested int) history.Operation {
	return history.NewOperation(history.OpBatch, valueobjects.ComponentID{}, valueobjects.ComponentID{},
		fmt.Sprintf("apply inferred masses (%d of %d)", len(applied), requested),
		history.BatchPayload{Operations: applied})
}

// applyAddChild performs the ADD_CHILD effect: persist the child, then
// link the edge in memory and in the store
func (s *ComponentService) applyAddChild(ctx context.Context, inv *aggregates.Inventory, parentID valueobjects.ComponentID, child *entities.Component) error {
	if !inv.HasComponent(parentID) {
		return pkgerrors.NewNotFoundError(fmt.Sprintf("parent component %s", parentID))
	}

	alreadyPresent := inv.HasComponent(child.ID())
	if !alreadyPresent {
		if err := inv.AddComponent(child); err != nil {
			return err
		}
	}
	if err := inv.LinkChild(parentID, child.ID()); err != nil {
		if !alreadyPresent {
			_ = inv.RemoveComponent(child.ID())
		}
		return err
	}

	if err := s.store.SaveComponent(ctx, child); err != nil {
		_ = inv.UnlinkChild(parentID, child.ID())
		if !alreadyPresent {
			_ = inv.RemoveComponent(child.ID())
		}
		return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to persist child component")
	}
	if err := s.store.AddChildComponent(ctx, parentID, child.ID()); err != nil {
		_ = inv.UnlinkChild(parentID, child.ID())
		if !alreadyPresent {
			_ = inv.RemoveComponent(child.ID())
		}
		return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to persist child link")
	}

	s.drainEvents(ctx, inv, parentID, child.ID())
	return nil
}

// applyRemoveChild performs the REMOVE_CHILD effect: unlink the edge and
// remove the component entirely. A persistence failure puts the in-memory
// graph back so the served inventory never diverges from the store.
func (s *ComponentService) applyRemoveChild(ctx context.Context, inv *aggregates.Inventory, parentID, childID valueobjects.ComponentID) error {
	child, err := inv.GetComponent(childID)
	if err != nil {
		return err
	}
	snapshot := child.Clone()

	if err := inv.UnlinkChild(parentID, childID); err != nil {
		return err
	}
	if err := inv.RemoveComponent(childID); err != nil {
		_ = inv.LinkChild(parentID, childID)
		return err
	}

	if err := s.store.RemoveChildComponent(ctx, parentID, childID); err != nil {
		s.restoreGraph(inv, parentID, snapshot)
		return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to remove persisted child link")
	}
	if err := s.store.DeleteComponent(ctx, childID); err != nil {
		s.restoreGraph(inv, parentID, snapshot)
		// Compensate the edge removal that already went through
		if serr := s.store.AddChildComponent(ctx, parentID, childID); serr != nil {
			s.logger.Warn("Failed to restore persisted child link",
				zap.String("parentId", parentID.String()),
				zap.String("childId", childID.String()),
				zap.Error(serr))
		}
		return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to remove persisted component")
	}

	s.drainEvents(ctx, inv, parentID)
	return nil
}

// restoreGraph puts a removed component back into the in-memory inventory
// exactly as the snapshot recorded it, re-pointing the neighbors that
// RemoveComponent detached. In-memory only; callers own store compensation.
func (s *ComponentService) restoreGraph(inv *aggregates.Inventory, parentID valueobjects.ComponentID, snapshot *entities.Component) {
	restored := snapshot.Clone()
	_ = inv.ReplaceComponent(restored)

	if parent, err := inv.GetComponent(parentID); err == nil && !parent.HasChild(restored.ID()) {
		_ = parent.LinkChild(restored.ID())
		parent.MarkEventsAsCommitted()
	}
	for _, childID := range restored.Children() {
		if child, err := inv.GetComponent(childID); err == nil {
			child.SetParent(restored.ID())
		}
	}
	for _, sibID := range restored.Siblings() {
		if sib, err := inv.GetComponent(sibID); err == nil {
			_ = sib.AddSiblingRef(restored.ID())
		}
	}
}

// applyAddSibling links symmetric sibling references and persists both
// sides
func (s *ComponentService) applyAddSibling(ctx context.Context, inv *aggregates.Inventory, a, b valueobjects.ComponentID) error {
	if err := inv.LinkSiblings(a, b); err != nil {
		return err
	}
	if err := s.persistPair(ctx, inv, a, b); err != nil {
		_ = inv.UnlinkSiblings(a, b)
		return err
	}
	s.publish(ctx, events.NewSiblingsLinked(a, b, time.Now()))
	return nil
}

// applyRemoveSibling removes the symmetric references and persists both
// sides
func (s *ComponentService) applyRemoveSibling(ctx context.Context, inv *aggregates.Inventory, a, b valueobjects.ComponentID) error {
	if err := inv.UnlinkSiblings(a, b); err != nil {
		return err
	}
	if err := s.persistPair(ctx, inv, a, b); err != nil {
		_ = inv.LinkSiblings(a, b)
		return err
	}
	return nil
}

// applyMove relinks the component and persists both edge changes
func (s *ComponentService) applyMove(ctx context.Context, inv *aggregates.Inventory, componentID, oldParentID, newParentID valueobjects.ComponentID) error {
	if err := inv.MoveComponent(componentID, newParentID); err != nil {
		return err
	}

	if !oldParentID.IsZero() {
		if err := s.store.RemoveChildComponent(ctx, oldParentID, componentID); err != nil {
			_ = inv.MoveComponent(componentID, oldParentID)
			return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to remove old child link")
		}
	}
	if !newParentID.IsZero() {
		if err := s.store.AddChildComponent(ctx, newParentID, componentID); err != nil {
			_ = inv.MoveComponent(componentID, oldParentID)
			if !oldParentID.IsZero() {
				_ = s.store.AddChildComponent(ctx, oldParentID, componentID)
			}
			return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to persist new child link")
		}
	}

	s.publish(ctx, events.NewComponentMoved(componentID, oldParentID, newParentID, time.Now()))
	s.drainEvents(ctx, inv, oldParentID, newParentID, componentID)
	return nil
}

// applyMass sets or clears a component's mass and persists the component
func (s *ComponentService) applyMass(ctx context.Context, inv *aggregates.Inventory, componentID valueobjects.ComponentID, state history.MassState) error {
	c, err := inv.GetComponent(componentID)
	if err != nil {
		return err
	}

	prev := massStateOf(c)
	if state.Grams == nil {
		c.ClearMass()
	} else {
		mass, err := valueobjects.NewMass(*state.Grams)
		if err != nil {
			return pkgerrors.NewValidationError(err.Error())
		}
		c.SetMass(mass, state.Inferred)
	}

	if err := s.store.SaveComponent(ctx, c); err != nil {
		if prev.Grams == nil {
			c.ClearMass()
		} else {
			c.SetMass(valueobjects.MustMass(*prev.Grams), prev.Inferred)
		}
		c.MarkEventsAsCommitted()
		return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, "failed to persist mass update")
	}

	s.drainEvents(ctx, inv, componentID)
	return nil
}

// applyForward replays an operation in its original direction
func (s *ComponentService) applyForward(ctx context.Context, inv *aggregates.Inventory, op history.Operation) error {
	switch payload := op.Payload.(type) {
	case history.AddChildPayload:
		return s.applyAddChild(ctx, inv, op.ComponentID, payload.Child.Clone())
	case history.RemoveChildPayload:
		return s.applyRemoveChild(ctx, inv, op.ComponentID, op.TargetID)
	case history.AddSiblingPayload:
		return s.applyAddSibling(ctx, inv, op.ComponentID, op.TargetID)
	case history.MovePayload:
		return s.applyMove(ctx, inv, op.ComponentID, payload.OldParentID, op.TargetID)
	case history.UpdateMassPayload:
		return s.applyMass(ctx, inv, op.ComponentID, payload.Next)
	case history.BatchPayload:
		for _, nested := range payload.Operations {
			if err := s.applyForward(ctx, inv, nested); err != nil {
				return err
			}
		}
		return nil
	default:
		return pkgerrors.NewInconsistentStateError(fmt.Sprintf("operation %s carries no replayable payload", op.Type))
	}
}

// applyReverse replays an operation's compensating action
func (s *ComponentService) applyReverse(ctx context.Context, inv *aggregates.Inventory, op history.Operation) error {
	switch payload := op.Payload.(type) {
	case history.AddChildPayload:
		return s.applyRemoveChild(ctx, inv, op.ComponentID, op.TargetID)
	case history.RemoveChildPayload:
		return s.applyRestore(ctx, inv, op.ComponentID, payload.Removed)
	case history.AddSiblingPayload:
		return s.applyRemoveSibling(ctx, inv, op.ComponentID, op.TargetID)
	case history.MovePayload:
		return s.applyMove(ctx, inv, op.ComponentID, op.TargetID, payload.OldParentID)
	case history.UpdateMassPayload:
		return s.applyMass(ctx, inv, op.ComponentID, payload.Prev)
	case history.BatchPayload:
		for i := len(payload.Operations) - 1; i >= 0; i-- {
			if err := s.applyReverse(ctx, inv, payload.Operations[i]); err != nil {
				return err
			}
		}
		return nil
	default:
		return pkgerrors.NewInconsistentStateError(fmt.Sprintf("operation %s carries no reversible payload", op.Type))
	}
}

// applyRestore reverses REMOVE_CHILD. The snapshot still carries the
// parent back-reference and child edges it had when removed; those are
// stripped before insertion so LinkChild sees a free component, then the
// former children are relinked where they still exist as roots.
func (s *ComponentService) applyRestore(ctx context.Context, inv *aggregates.Inventory, parentID valueobjects.ComponentID, snapshot *entities.Component) error {
	restored := snapshot.Clone()
	formerChildren := restored.Children()
	formerSiblings := restored.Siblings()
	restored.ClearParent()
	for _, childID := range formerChildren {
		_ = restored.UnlinkChild(childID)
	}
	for _, sibID := range formerSiblings {
		_ = restored.RemoveSiblingRef(sibID)
	}
	restored.MarkEventsAsCommitted()

	if err := s.applyAddChild(ctx, inv, parentID, restored); err != nil {
		return err
	}

	for _, childID := range formerChildren {
		child, err := inv.GetComponent(childID)
		if err != nil || !child.IsRoot() {
			continue
		}
		if err := inv.LinkChild(restored.ID(), childID); err != nil {
			s.logger.Warn("Failed to relink restored child",
				zap.String("parentId", restored.ID().String()),
				zap.String("childId", childID.String()),
				zap.Error(err))
			continue
		}
		if err := s.store.AddChildComponent(ctx, restored.ID(), childID); err != nil {
			s.logger.Warn("Failed to persist restored child link", zap.Error(err))
		}
	}
	for _, sibID := range formerSiblings {
		if !inv.HasComponent(sibID) {
			continue
		}
		if err := inv.LinkSiblings(restored.ID(), sibID); err != nil {
			continue
		}
		if err := s.persistPair(ctx, inv, restored.ID(), sibID); err != nil {
			s.logger.Warn("Failed to persist restored sibling link", zap.Error(err))
		}
	}

	s.drainEvents(ctx, inv, restored.ID())
	return nil
}

// persistPair saves two components, failing on either
func (s *ComponentService) persistPair(ctx context.Context, inv *aggregates.Inventory, a, b valueobjects.ComponentID) error {
	for _, id := range []valueobjects.ComponentID{a, b} {
		c, err := inv.GetComponent(id)
		if err != nil {
			return err
		}
		if err := s.store.SaveComponent(ctx, c); err != nil {
			return pkgerrors.WrapWithType(err, pkgerrors.ErrorTypeDatabase, fmt.Sprintf("failed to persist component %s", id))
		}
	}
	return nil
}

// drainEvents publishes and clears pending domain events on the named
// components. Publish failures are logged, not surfaced: events are a
// notification channel, not part of the mutation's contract.
func (s *ComponentService) drainEvents(ctx context.Context, inv *aggregates.Inventory, ids ...valueobjects.ComponentID) {
	var pending []events.DomainEvent
	for _, id := range ids {
		if id.IsZero() {
			continue
		}
		c, err := inv.GetComponent(id)
		if err != nil {
			continue
		}
		pending = append(pending, c.GetUncommittedEvents()...)
		c.MarkEventsAsCommitted()
	}
	if len(pending) == 0 {
		return
	}
	if err := s.publisher.PublishBatch(ctx, pending); err != nil {
		s.logger.Warn("Failed to publish domain events", zap.Int("count", len(pending)), zap.Error(err))
	}
}

func (s *ComponentService) publish(ctx context.Context, event events.DomainEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish domain event", zap.String("type", event.GetEventType()), zap.Error(err))
	}
}

// massStateOf captures a component's current mass state for history
// payloads
func massStateOf(c *entities.Component) history.MassState {
	state := history.MassState{Inferred: c.MassInferred()}
	if mass, ok := c.Mass(); ok {
		grams := mass.Grams()
		state.Grams = &grams
	}
	return state
}

func parentLabel(id valueobjects.ComponentID) string {
	if id.IsZero() {
		return "root"
	}
	return id.String()
}
