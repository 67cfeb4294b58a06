package builder

import (
	"testing"
	"time"

	"spooltrack/domain/scan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testScan(tagUID, trayUID string, scannedAt time.Time) scan.Record {
	return scan.Record{
		TagUID:    tagUID,
		TrayUID:   trayUID,
		ScannedAt: scannedAt,
	}
}

func TestGenerate_TrayWithTwoTags(t *testing.T) {
	b := NewGraphBuilder(zap.NewNop())
	now := time.Now()

	spoolWeight := 250.0
	scans := []scan.Record{
		{TagUID: "tag-a", TrayUID: "tray-1", Material: "PLA", ColorName: "Black", Manufacturer: "Acme", SpoolWeightGrams: &spoolWeight, ScannedAt: now},
		{TagUID: "tag-b", TrayUID: "tray-1", ScannedAt: now},
	}

	components, err := b.Generate(scans)
	require.NoError(t, err)
	require.Len(t, components, 3)

	tray := components[0]
	assert.Equal(t, "PLA Black", tray.Name())
	assert.Equal(t, "tray", tray.Category())
	assert.Equal(t, "Acme", tray.Manufacturer())
	assert.True(t, tray.IsGenerated())
	assert.True(t, tray.VariableMass())
	assert.Len(t, tray.Children(), 2)

	full, ok := tray.FullMass()
	require.True(t, ok)
	assert.Equal(t, 250.0, full.Grams())

	// Filament lives on the tray; tags carry no mass of their own
	for _, tag := range components[1:] {
		assert.Equal(t, "tag", tag.Category())
		assert.True(t, tag.ParentID().Equals(tray.ID()))
		_, hasMass := tag.Mass()
		assert.False(t, hasMass)
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	b := NewGraphBuilder(zap.NewNop())
	now := time.Now()

	scans := []scan.Record{
		testScan("tag-a", "tray-1", now),
		testScan("tag-b", "tray-1", now),
		testScan("tag-c", "tray-2", now),
	}

	first, err := b.Generate(scans)
	require.NoError(t, err)
	second, err := b.Generate(scans)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].ID().Equals(second[i].ID()))
		assert.Equal(t, first[i].Name(), second[i].Name())
	}
}

func TestGenerate_OrderIndependent(t *testing.T) {
	b := NewGraphBuilder(zap.NewNop())
	now := time.Now()

	scans := []scan.Record{
		testScan("tag-a", "tray-1", now),
		testScan("tag-c", "tray-2", now),
		testScan("tag-b", "tray-1", now),
	}
	reversed := []scan.Record{scans[2], scans[1], scans[0]}

	first, err := b.Generate(scans)
	require.NoError(t, err)
	second, err := b.Generate(reversed)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].ID().Equals(second[i].ID()))
	}
}

func TestGenerate_DeduplicatesByTagKeepingNewest(t *testing.T) {
	b := NewGraphBuilder(zap.NewNop())
	older := time.Now().Add(-time.Hour)
	newer := time.Now()

	scans := []scan.Record{
		{TagUID: "tag-a", TrayUID: "tray-1", Manufacturer: "Old", ScannedAt: older},
		{TagUID: "tag-a", TrayUID: "tray-1", Manufacturer: "New", ScannedAt: newer},
	}

	components, err := b.Generate(scans)
	require.NoError(t, err)
	require.Len(t, components, 2)

	tray := components[0]
	assert.Equal(t, "New", tray.Manufacturer())
	assert.Len(t, tray.Children(), 1)
}

func TestGenerate_OrphanTagWithoutTray(t *testing.T) {
	b := NewGraphBuilder(zap.NewNop())

	spoolWeight := 180.0
	scans := []scan.Record{
		{TagUID: "tag-x", Material: "PETG", ColorName: "Clear", SpoolWeightGrams: &spoolWeight, ScannedAt: time.Now()},
	}

	components, err := b.Generate(scans)
	require.NoError(t, err)
	require.Len(t, components, 1)

	orphan := components[0]
	assert.Equal(t, "PETG Clear", orphan.Name())
	assert.True(t, orphan.IsRoot())
	assert.True(t, orphan.VariableMass())

	full, ok := orphan.FullMass()
	require.True(t, ok)
	assert.Equal(t, 180.0, full.Grams())
}

func TestGenerate_SkipsUnreadableScans(t *testing.T) {
	b := NewGraphBuilder(zap.NewNop())

	scans := []scan.Record{
		{TagUID: "", TrayUID: "tray-1", ScannedAt: time.Now()},
		testScan("tag-a", "tray-1", time.Now()),
	}

	components, err := b.Generate(scans)
	require.NoError(t, err)
	assert.Len(t, components, 2) // tray plus one tag
}
