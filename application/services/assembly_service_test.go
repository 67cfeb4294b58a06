package services

import (
	"context"
	"testing"
	"time"

	"spooltrack/domain/scan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventory_CachesMaterializedResult(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())

	first, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)
	second, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestInvalidate_ForcesReassembly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())

	first, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)

	env.assembly.Invalidate(ctx)

	second, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, first.Size(), second.Size())
}

func TestRefresh_PicksUpNewScans(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())

	inv, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, inv.Size())

	env.source.SetScans(append(defaultScans(),
		scan.Record{TagUID: "tag-c", TrayUID: "tray-2", ScannedAt: time.Now()}))

	// Cached result does not see the new tray until a refresh
	stale, err := env.assembly.Inventory(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stale.Size())

	fresh, err := env.assembly.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, fresh.Size())
}

func TestRefresh_ReplaysOverlays(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, defaultScans())

	require.NoError(t, env.components.AddChildComponent(ctx, genTrayID(), newChild(t, "Clip")))

	inv, err := env.assembly.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, inv.Size())

	// A second refresh reproduces the identical structure
	again, err := env.assembly.Refresh(ctx)
	require.NoError(t, err)
	require.Equal(t, inv.Size(), again.Size())
	for _, c := range inv.Components() {
		twin, err := again.GetComponent(c.ID())
		require.NoError(t, err)
		assert.Equal(t, c.Name(), twin.Name())
		assert.True(t, c.ParentID().Equals(twin.ParentID()))
	}
}
