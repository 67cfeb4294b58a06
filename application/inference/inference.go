package inference

import (
	"fmt"
	"math"

	"spooltrack/domain/config"
	"spooltrack/domain/core/aggregates"
	"spooltrack/domain/core/valueobjects"

	"go.uber.org/zap"
)

// Assignment is one proposed mass for a component. Applying assignments
// is the caller's job; the engine never mutates the inventory.
type Assignment struct {
	ComponentID valueobjects.ComponentID `json:"component_id"`
	Grams       float64                  `json:"grams"`
}

// Result reports the outcome of one inference run. A failed run carries a
// descriptive message and no assignments.
type Result struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message"`
	Assignments []Assignment `json:"assignments,omitempty"`
}

// Engine apportions one aggregate subtree measurement to members whose
// mass is unknown or previously inferred. Already-known measured masses
// are never touched.
type Engine struct {
	cfg    config.DomainConfig
	logger *zap.Logger
}

// NewEngine creates a new inference engine
func NewEngine(cfg config.DomainConfig, logger *zap.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logger}
}

// InferComponentMass solves for unknown member masses given one measured
// total for the subtree rooted at rootID.
//
// knownMass sums members with a measured (non-inferred) mass. With no
// unknown members the run succeeds trivially and reports any discrepancy
// between the measurement and the known sum. With exactly one unknown the
// remainder is assigned directly; a negative remainder fails the run
// instead of being clamped. With several unknowns the remainder is split
// proportionally to each member's full mass, or equally when none carry
// one.
func (e *Engine) InferComponentMass(inv *aggregates.Inventory, rootID valueobjects.ComponentID, totalMeasuredGrams float64) Result {
	if totalMeasuredGrams < 0 {
		return Result{Success: false, Message: fmt.Sprintf("measured mass cannot be negative: %.2fg", totalMeasuredGrams)}
	}

	members, err := inv.Subtree(rootID)
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("cannot infer mass for %s: %v", rootID, err)}
	}

	knownMass := 0.0
	var unknown []*memberInfo
	for _, m := range members {
		mass, hasMass := m.Mass()
		if hasMass && !m.MassInferred() {
			knownMass += mass.Grams()
			continue
		}
		info := &memberInfo{id: m.ID()}
		if full, ok := m.FullMass(); ok {
			info.fullGrams = full.Grams()
			info.hasFull = true
		}
		unknown = append(unknown, info)
	}

	if len(unknown) == 0 {
		discrepancy := totalMeasuredGrams - knownMass
		msg := fmt.Sprintf("all %d members of %s already have measured masses", len(members), rootID)
		if math.Abs(discrepancy) > e.cfg.MassEpsilon {
			msg = fmt.Sprintf("%s; measurement differs from known sum by %.2fg", msg, discrepancy)
		}
		return Result{Success: true, Message: msg}
	}

	remainder := totalMeasuredGrams - knownMass
	if remainder < 0 {
		return Result{
			Success: false,
			Message: fmt.Sprintf("measured total %.2fg is less than known member sum %.2fg for %s",
				totalMeasuredGrams, knownMass, rootID),
		}
	}

	assignments := e.apportion(unknown, remainder)

	e.logger.Debug("Inferred member masses",
		zap.String("rootId", rootID.String()),
		zap.Float64("totalGrams", totalMeasuredGrams),
		zap.Float64("knownGrams", knownMass),
		zap.Int("unknownMembers", len(unknown)),
	)

	return Result{
		Success: true,
		Message: fmt.Sprintf("inferred masses for %d of %d members of %s",
			len(assignments), len(members), rootID),
		Assignments: assignments,
	}
}

// ProcessScaleReading validates a live scale reading and forwards it to
// InferComponentMass. Unstable readings and unsupported units produce a
// failed result; transient data must never feed inference.
func (e *Engine) ProcessScaleReading(inv *aggregates.Inventory, componentID valueobjects.ComponentID, reading valueobjects.WeightReading) Result {
	if e.cfg.RequireStableReadings && !reading.Stable {
		return Result{
			Success: false,
			Message: fmt.Sprintf("reading %.2f%s for %s is not stable yet", reading.Value, reading.Unit, componentID),
		}
	}
	grams, err := reading.ToGrams()
	if err != nil {
		return Result{
			Success: false,
			Message: fmt.Sprintf("cannot convert reading for %s: %v", componentID, err),
		}
	}
	return e.InferComponentMass(inv, componentID, grams)
}

// apportion splits the remainder across the unknown members:
// proportionally to full mass when any member carries one, equally
// otherwise. A single unknown receives the whole remainder.
func (e *Engine) apportion(unknown []*memberInfo, remainder float64) []Assignment {
	assignments := make([]Assignment, 0, len(unknown))
	if len(unknown) == 1 {
		return append(assignments, Assignment{ComponentID: unknown[0].id, Grams: remainder})
	}

	totalFull := 0.0
	for _, info := range unknown {
		if info.hasFull {
			totalFull += info.fullGrams
		}
	}

	if totalFull > 0 {
		for _, info := range unknown {
			share := 0.0
			if info.hasFull {
				share = remainder * info.fullGrams / totalFull
			}
			assignments = append(assignments, Assignment{ComponentID: info.id, Grams: share})
		}
		return assignments
	}

	equal := remainder / float64(len(unknown))
	for _, info := range unknown {
		assignments = append(assignments, Assignment{ComponentID: info.id, Grams: equal})
	}
	return assignments
}

type memberInfo struct {
	id        valueobjects.ComponentID
	fullGrams float64
	hasFull   bool
}
