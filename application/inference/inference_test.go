package inference

import (
	"testing"

	"spooltrack/domain/config"
	"spooltrack/domain/core/aggregates"
	"spooltrack/domain/core/entities"
	"spooltrack/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEngine() *Engine {
	return NewEngine(config.DefaultDomainConfig(), zap.NewNop())
}

// buildSubtree creates a root with n children and returns the inventory
// plus the created components, root first
func buildSubtree(t *testing.T, n int) (*aggregates.Inventory, []*entities.Component) {
	t.Helper()
	inv := aggregates.NewInventory()

	root, err := entities.NewComponent("Tray", "tray")
	require.NoError(t, err)
	require.NoError(t, inv.AddComponent(root))

	components := []*entities.Component{root}
	for i := 0; i < n; i++ {
		child, err := entities.NewComponent("Tag", "tag")
		require.NoError(t, err)
		require.NoError(t, inv.AddComponent(child))
		require.NoError(t, inv.LinkChild(root.ID(), child.ID()))
		components = append(components, child)
	}
	return inv, components
}

func mustMass(t *testing.T, grams float64) valueobjects.Mass {
	t.Helper()
	m, err := valueobjects.NewMass(grams)
	require.NoError(t, err)
	return m
}

func TestInferComponentMass_SingleUnknownGetsRemainder(t *testing.T) {
	e := newTestEngine()
	inv, comps := buildSubtree(t, 2)
	root, tagA, tagB := comps[0], comps[1], comps[2]

	root.SetMass(mustMass(t, 20), false)
	tagA.SetMass(mustMass(t, 5), false)

	result := e.InferComponentMass(inv, root.ID(), 32)
	require.True(t, result.Success, result.Message)
	require.Len(t, result.Assignments, 1)
	assert.True(t, result.Assignments[0].ComponentID.Equals(tagB.ID()))
	assert.InDelta(t, 7.0, result.Assignments[0].Grams, 0.001)
}

func TestInferComponentMass_InferredMassesAreReassignable(t *testing.T) {
	e := newTestEngine()
	inv, comps := buildSubtree(t, 1)
	root, tag := comps[0], comps[1]

	root.SetMass(mustMass(t, 10), false)
	tag.SetMass(mustMass(t, 3), true) // inferred, so still an unknown

	result := e.InferComponentMass(inv, root.ID(), 18)
	require.True(t, result.Success, result.Message)
	require.Len(t, result.Assignments, 1)
	assert.True(t, result.Assignments[0].ComponentID.Equals(tag.ID()))
	assert.InDelta(t, 8.0, result.Assignments[0].Grams, 0.001)
}

func TestInferComponentMass_ProportionalToFullMass(t *testing.T) {
	e := newTestEngine()
	inv, comps := buildSubtree(t, 2)
	root, tagA, tagB := comps[0], comps[1], comps[2]

	root.SetMass(mustMass(t, 100), false)
	tagA.SetVariableMass(true)
	tagA.SetFullMass(mustMass(t, 750))
	tagB.SetVariableMass(true)
	tagB.SetFullMass(mustMass(t, 250))

	result := e.InferComponentMass(inv, root.ID(), 500)
	require.True(t, result.Success, result.Message)
	require.Len(t, result.Assignments, 2)

	byID := map[string]float64{}
	for _, a := range result.Assignments {
		byID[a.ComponentID.String()] = a.Grams
	}
	assert.InDelta(t, 300.0, byID[tagA.ID().String()], 0.001)
	assert.InDelta(t, 100.0, byID[tagB.ID().String()], 0.001)
}

func TestInferComponentMass_EqualSplitWithoutFullMasses(t *testing.T) {
	e := newTestEngine()
	inv, comps := buildSubtree(t, 2)
	root := comps[0]

	root.SetMass(mustMass(t, 10), false)

	result := e.InferComponentMass(inv, root.ID(), 30)
	require.True(t, result.Success, result.Message)
	require.Len(t, result.Assignments, 2)
	for _, a := range result.Assignments {
		assert.InDelta(t, 10.0, a.Grams, 0.001)
	}
}

func TestInferComponentMass_AllKnownSucceedsTrivially(t *testing.T) {
	e := newTestEngine()
	inv, comps := buildSubtree(t, 1)
	root, tag := comps[0], comps[1]

	root.SetMass(mustMass(t, 20), false)
	tag.SetMass(mustMass(t, 5), false)

	result := e.InferComponentMass(inv, root.ID(), 25)
	require.True(t, result.Success)
	assert.Empty(t, result.Assignments)

	// A discrepancy beyond epsilon is reported but does not fail the run
	result = e.InferComponentMass(inv, root.ID(), 30)
	require.True(t, result.Success)
	assert.Contains(t, result.Message, "differs from known sum")
}

func TestInferComponentMass_NegativeRemainderFails(t *testing.T) {
	e := newTestEngine()
	inv, comps := buildSubtree(t, 1)
	root := comps[0]

	root.SetMass(mustMass(t, 50), false)

	result := e.InferComponentMass(inv, root.ID(), 30)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "less than known member sum")
}

func TestInferComponentMass_NegativeMeasurementFails(t *testing.T) {
	e := newTestEngine()
	inv, comps := buildSubtree(t, 1)

	result := e.InferComponentMass(inv, comps[0].ID(), -1)
	assert.False(t, result.Success)
}

func TestInferComponentMass_UnknownRootFails(t *testing.T) {
	e := newTestEngine()
	inv := aggregates.NewInventory()

	result := e.InferComponentMass(inv, valueobjects.NewComponentID(), 100)
	assert.False(t, result.Success)
}

func TestProcessScaleReading_RejectsUnstable(t *testing.T) {
	e := newTestEngine()
	inv, comps := buildSubtree(t, 1)

	reading := valueobjects.WeightReading{Value: 100, Unit: valueobjects.UnitGrams, Stable: false}
	result := e.ProcessScaleReading(inv, comps[0].ID(), reading)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "not stable")
}

func TestProcessScaleReading_ConvertsUnits(t *testing.T) {
	e := newTestEngine()
	inv, comps := buildSubtree(t, 1)
	root, tag := comps[0], comps[1]

	root.SetMass(mustMass(t, 500), false)

	reading := valueobjects.WeightReading{Value: 1.5, Unit: valueobjects.UnitKilograms, Stable: true}
	result := e.ProcessScaleReading(inv, root.ID(), reading)
	require.True(t, result.Success, result.Message)
	require.Len(t, result.Assignments, 1)
	assert.True(t, result.Assignments[0].ComponentID.Equals(tag.ID()))
	assert.InDelta(t, 1000.0, result.Assignments[0].Grams, 0.001)
}

func TestProcessScaleReading_RejectsUnsupportedUnit(t *testing.T) {
	e := newTestEngine()
	inv, comps := buildSubtree(t, 1)

	reading := valueobjects.WeightReading{Value: 10, Unit: "stone", Stable: true}
	result := e.ProcessScaleReading(inv, comps[0].ID(), reading)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "cannot convert")
}
