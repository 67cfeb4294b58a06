package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"spooltrack/application/builder"
	"spooltrack/application/history"
	"spooltrack/application/inference"
	"spooltrack/application/merge"
	"spooltrack/application/ports"
	"spooltrack/domain/config"
	"spooltrack/domain/core/entities"
	"spooltrack/domain/core/valueobjects"
	"spooltrack/domain/scan"
	"spooltrack/infrastructure/messaging/eventbridge"
	"spooltrack/infrastructure/persistence/memory"
	pkgerrors "spooltrack/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mapCache is a minimal ports.Cache for tests; TTL is ignored
type mapCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func newMapCache() *mapCache {
	return &mapCache{items: make(map[string]interface{})}
}

func (c *mapCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *mapCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]interface{})
	return nil
}

// flakyStore wraps the in-memory store with per-method error injection
// for exercising persistence-failure paths
type flakyStore struct {
	*memory.OverlayStore
	saveMeasurementErr error
	removeChildErr     error
	deleteErr          error
}

func (f *flakyStore) SaveMeasurement(ctx context.Context, m *entities.Measurement) error {
	if f.saveMeasurementErr != nil {
		return f.saveMeasurementErr
	}
	return f.OverlayStore.SaveMeasurement(ctx, m)
}

func (f *flakyStore) RemoveChildComponent(ctx context.Context, parentID, childID valueobjects.ComponentID) error {
	if f.removeChildErr != nil {
		return f.removeChildErr
	}
	return f.OverlayStore.RemoveChildComponent(ctx, parentID, childID)
}

func (f *flakyStore) DeleteComponent(ctx context.Context, id valueobjects.ComponentID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	return f.OverlayStore.DeleteComponent(ctx, id)
}

type testEnv struct {
	assembly   *AssemblyService
	components *ComponentService
	store      ports.OverlayStore
	source     *memory.ScanSource
	cache      *mapCache
}

// defaultScans produce one tray with two tags
func defaultScans() []scan.Record {
	now := time.Now()
	return []scan.Record{
		{TagUID: "tag-a", TrayUID: "tray-1", Material: "PLA", ColorName: "Black", ScannedAt: now},
		{TagUID: "tag-b", TrayUID: "tray-1", ScannedAt: now},
	}
}

func newTestEnv(t *testing.T, scans []scan.Record) *testEnv {
	return newTestEnvWithStore(t, scans, memory.NewOverlayStore())
}

func newTestEnvWithStore(t *testing.T, scans []scan.Record, store ports.OverlayStore) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	source := memory.NewScanSource(scans)
	cache := newMapCache()
	publisher := eventbridge.NewNopPublisher()

	assembly := NewAssemblyService(
		source, store,
		builder.NewGraphBuilder(logger),
		merge.NewMerger(logger),
		cache, publisher, logger,
	)

	cfg := config.DefaultDomainConfig()
	components := NewComponentService(
		assembly, store, publisher,
		memory.NewLocalLock(),
		inference.NewEngine(cfg, logger),
		history.NewHistory(cfg),
		logger,
	)
	return &testEnv{
		assembly:   assembly,
		components: components,
		store:      store,
		source:     source,
		cache:      cache,
	}
}

func genTrayID() valueobjects.ComponentID {
	return valueobjects.NewGeneratedComponentID("tray", "tray-1")
}

func genTagID(uid string) valueobjects.ComponentID {
	return valueobjects.NewGeneratedComponentID("tag", uid)
}

func newChild(t *testing.T, name string) *entities.Component {
	t.Helper()
	c, err := entities.NewComponent(name, "accessory")
	require.NoError(t, err)
	c.MarkEventsAsCommitted()
	return c
}

func TestAddChildComponent_UndoRedo(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())
	svc := env.components

	child := newChild(t, "Desiccant Pack")
	require.NoError(t, svc.AddChildComponent(ctx, genTrayID(), child))

	inv, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)
	tray, err := inv.GetComponent(genTrayID())
	require.NoError(t, err)
	assert.True(t, tray.HasChild(child.ID()))
	assert.True(t, svc.CanUndo())

	require.NoError(t, svc.Undo(ctx))
	assert.False(t, tray.HasChild(child.ID()))
	assert.False(t, inv.HasComponent(child.ID()))
	assert.True(t, svc.CanRedo())

	require.NoError(t, svc.Redo(ctx))
	restored, err := inv.GetComponent(child.ID())
	require.NoError(t, err)
	assert.Equal(t, "Desiccant Pack", restored.Name())
	assert.True(t, restored.ParentID().Equals(genTrayID()))
}

func TestAddChildComponent_UnknownParent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())

	err := env.components.AddChildComponent(ctx, valueobjects.NewComponentID(), newChild(t, "Orphan"))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.False(t, env.components.CanUndo())
}

func TestRemoveChildComponent_UndoRestoresSnapshot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())
	svc := env.components

	// Give the tag a measured mass so undo must restore more than the edge
	mass, err := valueobjects.NewMass(12.5)
	require.NoError(t, err)
	require.NoError(t, svc.RecordMassMeasurement(ctx, genTagID("tag-b"), mass, entities.MeasurementManual, ""))

	require.NoError(t, svc.RemoveChildComponent(ctx, genTrayID(), genTagID("tag-b")))

	inv, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)
	assert.False(t, inv.HasComponent(genTagID("tag-b")))

	require.NoError(t, svc.Undo(ctx))
	restored, err := inv.GetComponent(genTagID("tag-b"))
	require.NoError(t, err)
	assert.True(t, restored.ParentID().Equals(genTrayID()))
	got, ok := restored.Mass()
	require.True(t, ok)
	assert.Equal(t, 12.5, got.Grams())

	ident, ok := restored.TrackingIdentifier()
	require.True(t, ok)
	assert.Equal(t, "tag-b", ident.Value())
}

func TestMoveComponentToParent_UndoRestoresOldParent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())
	svc := env.components

	require.NoError(t, svc.MoveComponentToParent(ctx, genTagID("tag-b"), valueobjects.ComponentID{}))

	inv, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)
	tagB, err := inv.GetComponent(genTagID("tag-b"))
	require.NoError(t, err)
	assert.True(t, tagB.IsRoot())

	require.NoError(t, svc.Undo(ctx))
	assert.True(t, tagB.ParentID().Equals(genTrayID()))

	require.NoError(t, svc.Redo(ctx))
	assert.True(t, tagB.IsRoot())
}

func TestCreateSiblingRelationship_UndoRemovesBothSides(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())
	svc := env.components

	require.NoError(t, svc.CreateSiblingRelationship(ctx, genTagID("tag-a"), genTagID("tag-b")))

	inv, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)
	tagA, err := inv.GetComponent(genTagID("tag-a"))
	require.NoError(t, err)
	tagB, err := inv.GetComponent(genTagID("tag-b"))
	require.NoError(t, err)
	assert.True(t, tagA.HasSibling(genTagID("tag-b")))
	assert.True(t, tagB.HasSibling(genTagID("tag-a")))

	require.NoError(t, svc.Undo(ctx))
	assert.False(t, tagA.HasSibling(genTagID("tag-b")))
	assert.False(t, tagB.HasSibling(genTagID("tag-a")))
}

func TestRecordMassMeasurement_AppendsAuditTrailAndUndoes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())
	svc := env.components

	mass, err := valueobjects.NewMass(640)
	require.NoError(t, err)
	require.NoError(t, svc.RecordMassMeasurement(ctx, genTrayID(), mass, entities.MeasurementScale, "after print"))

	inv, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)
	tray, err := inv.GetComponent(genTrayID())
	require.NoError(t, err)
	got, ok := tray.Mass()
	require.True(t, ok)
	assert.Equal(t, 640.0, got.Grams())
	assert.False(t, tray.MassInferred())

	measurements, err := svc.GetMeasurements(ctx, genTrayID())
	require.NoError(t, err)
	require.Len(t, measurements, 1)
	assert.Equal(t, entities.MeasurementScale, measurements[0].Type())
	assert.Equal(t, "after print", measurements[0].Notes())

	require.NoError(t, svc.Undo(ctx))
	_, ok = tray.Mass()
	assert.False(t, ok)

	// The measurement record is an audit trail, not graph state; it
	// survives the undo
	measurements, err = svc.GetMeasurements(ctx, genTrayID())
	require.NoError(t, err)
	assert.Len(t, measurements, 1)
}

func TestApplyInference_BatchUndoRedo(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())
	svc := env.components

	mass, err := valueobjects.NewMass(20)
	require.NoError(t, err)
	require.NoError(t, svc.RecordMassMeasurement(ctx, genTrayID(), mass, entities.MeasurementManual, ""))

	result, err := svc.InferComponentMass(ctx, genTrayID(), 32)
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)
	require.Len(t, result.Assignments, 2)

	require.NoError(t, svc.ApplyInference(ctx, result))

	inv, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)
	for _, uid := range []string{"tag-a", "tag-b"} {
		tag, err := inv.GetComponent(genTagID(uid))
		require.NoError(t, err)
		got, ok := tag.Mass()
		require.True(t, ok)
		assert.InDelta(t, 6.0, got.Grams(), 0.001)
		assert.True(t, tag.MassInferred())
	}

	require.NoError(t, svc.Undo(ctx))
	for _, uid := range []string{"tag-a", "tag-b"} {
		tag, err := inv.GetComponent(genTagID(uid))
		require.NoError(t, err)
		_, ok := tag.Mass()
		assert.False(t, ok)
	}

	require.NoError(t, svc.Redo(ctx))
	for _, uid := range []string{"tag-a", "tag-b"} {
		tag, err := inv.GetComponent(genTagID(uid))
		require.NoError(t, err)
		got, ok := tag.Mass()
		require.True(t, ok)
		assert.InDelta(t, 6.0, got.Grams(), 0.001)
	}
}

func TestApplyInference_RejectsFailedResult(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())

	err := env.components.ApplyInference(ctx, inference.Result{Success: false, Message: "nope"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestProcessScaleReading_FeedsInference(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())
	svc := env.components

	mass, err := valueobjects.NewMass(500)
	require.NoError(t, err)
	require.NoError(t, svc.RecordMassMeasurement(ctx, genTrayID(), mass, entities.MeasurementManual, ""))

	reading := valueobjects.WeightReading{Value: 0.7, Unit: valueobjects.UnitKilograms, Stable: true}
	result, err := svc.ProcessScaleReading(ctx, genTrayID(), reading)
	require.NoError(t, err)
	require.True(t, result.Success, result.Message)
	require.Len(t, result.Assignments, 2)

	total := 0.0
	for _, a := range result.Assignments {
		total += a.Grams
	}
	assert.InDelta(t, 200.0, total, 0.001)
}

func TestUndoRedo_EmptyStacks(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())

	err := env.components.Undo(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	err = env.components.Redo(ctx)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestMutation_ClearsRedoStack(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())
	svc := env.components

	require.NoError(t, svc.AddChildComponent(ctx, genTrayID(), newChild(t, "First")))
	require.NoError(t, svc.Undo(ctx))
	require.True(t, svc.CanRedo())

	require.NoError(t, svc.AddChildComponent(ctx, genTrayID(), newChild(t, "Second")))
	assert.False(t, svc.CanRedo())
}

func TestRecentOperations_NewestFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())
	svc := env.components

	require.NoError(t, svc.AddChildComponent(ctx, genTrayID(), newChild(t, "One")))
	require.NoError(t, svc.AddChildComponent(ctx, genTrayID(), newChild(t, "Two")))

	recent := svc.RecentOperations(10)
	require.Len(t, recent, 2)
	assert.Equal(t, history.OpAddChild, recent[0].Type)
	assert.Contains(t, recent[0].Description, "Two")
	assert.Contains(t, recent[1].Description, "One")
}

func TestMutations_SurviveReassembly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())
	svc := env.components

	mass, err := valueobjects.NewMass(333)
	require.NoError(t, err)
	require.NoError(t, svc.RecordMassMeasurement(ctx, genTrayID(), mass, entities.MeasurementManual, ""))
	require.NoError(t, svc.MoveComponentToParent(ctx, genTagID("tag-b"), valueobjects.ComponentID{}))
	require.NoError(t, svc.AddChildComponent(ctx, genTrayID(), newChild(t, "Spacer")))

	// Rebuild from scans plus overlays; every edit must reappear
	inv, err := env.assembly.Refresh(ctx)
	require.NoError(t, err)

	tray, err := inv.GetComponent(genTrayID())
	require.NoError(t, err)
	got, ok := tray.Mass()
	require.True(t, ok)
	assert.Equal(t, 333.0, got.Grams())

	tagB, err := inv.GetComponent(genTagID("tag-b"))
	require.NoError(t, err)
	assert.True(t, tagB.IsRoot())
	assert.False(t, tray.HasChild(genTagID("tag-b")))

	var spacer *entities.Component
	for _, c := range inv.Components() {
		if c.Name() == "Spacer" {
			spacer = c
		}
	}
	require.NotNil(t, spacer)
	assert.True(t, spacer.ParentID().Equals(genTrayID()))
}

func TestRecordMassMeasurement_SaveFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{OverlayStore: memory.NewOverlayStore()}
	env := newTestEnvWithStore(t, defaultScans(), store)
	svc := env.components

	mass, err := valueobjects.NewMass(10)
	require.NoError(t, err)
	require.NoError(t, svc.RecordMassMeasurement(ctx, genTagID("tag-b"), mass, entities.MeasurementManual, ""))

	store.saveMeasurementErr = errors.New("table unavailable")
	next, err := valueobjects.NewMass(640)
	require.NoError(t, err)
	err = svc.RecordMassMeasurement(ctx, genTagID("tag-b"), next, entities.MeasurementManual, "")
	require.Error(t, err)

	// Served inventory keeps the previous mass and no entry was recorded
	inv, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)
	tag, err := inv.GetComponent(genTagID("tag-b"))
	require.NoError(t, err)
	got, ok := tag.Mass()
	require.True(t, ok)
	assert.Equal(t, 10.0, got.Grams())
	assert.Len(t, svc.RecentOperations(10), 1)

	// The persisted overlay also still carries the previous mass
	store.saveMeasurementErr = nil
	fresh, err := env.assembly.Refresh(ctx)
	require.NoError(t, err)
	tag, err = fresh.GetComponent(genTagID("tag-b"))
	require.NoError(t, err)
	got, ok = tag.Mass()
	require.True(t, ok)
	assert.Equal(t, 10.0, got.Grams())

	measurements, err := svc.GetMeasurements(ctx, genTagID("tag-b"))
	require.NoError(t, err)
	assert.Len(t, measurements, 1)
}

func TestRemoveChildComponent_LinkPersistFailureKeepsGraph(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{OverlayStore: memory.NewOverlayStore(), removeChildErr: errors.New("table unavailable")}
	env := newTestEnvWithStore(t, defaultScans(), store)
	svc := env.components

	err := svc.RemoveChildComponent(ctx, genTrayID(), genTagID("tag-b"))
	require.Error(t, err)

	inv, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)
	require.True(t, inv.HasComponent(genTagID("tag-b")))
	tray, err := inv.GetComponent(genTrayID())
	require.NoError(t, err)
	assert.True(t, tray.HasChild(genTagID("tag-b")))
	tag, err := inv.GetComponent(genTagID("tag-b"))
	require.NoError(t, err)
	assert.True(t, tag.ParentID().Equals(genTrayID()))
	require.NoError(t, inv.Validate())
	assert.False(t, svc.CanUndo())
}

func TestRemoveChildComponent_DeletePersistFailureKeepsGraph(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{OverlayStore: memory.NewOverlayStore(), deleteErr: errors.New("table unavailable")}
	env := newTestEnvWithStore(t, defaultScans(), store)
	svc := env.components

	err := svc.RemoveChildComponent(ctx, genTrayID(), genTagID("tag-b"))
	require.Error(t, err)
	assert.False(t, svc.CanUndo())

	inv, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)
	tray, err := inv.GetComponent(genTrayID())
	require.NoError(t, err)
	assert.True(t, tray.HasChild(genTagID("tag-b")))
	require.NoError(t, inv.Validate())

	// The edge removal that succeeded before the failure was compensated,
	// so reassembly from the store still shows the child under the tray
	fresh, err := env.assembly.Refresh(ctx)
	require.NoError(t, err)
	tray, err = fresh.GetComponent(genTrayID())
	require.NoError(t, err)
	assert.True(t, tray.HasChild(genTagID("tag-b")))
}
