package history

import (
	"fmt"
	"testing"

	"spooltrack/domain/config"
	"spooltrack/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHistory(maxUndo, maxRedo int) *History {
	cfg := config.DefaultDomainConfig()
	cfg.MaxUndoDepth = maxUndo
	cfg.MaxRedoDepth = maxRedo
	return NewHistory(cfg)
}

func testOp(desc string) Operation {
	return NewOperation(OpUpdateMass, valueobjects.NewComponentID(), valueobjects.ComponentID{}, desc, UpdateMassPayload{})
}

func TestHistory_RecordClearsRedo(t *testing.T) {
	h := newTestHistory(10, 10)

	h.Record(testOp("first"))
	op, ok := h.PopUndo()
	require.True(t, ok)
	h.PushRedo(op)
	require.True(t, h.CanRedo())

	h.Record(testOp("second"))
	assert.False(t, h.CanRedo())
	assert.Equal(t, 1, h.UndoDepth())
}

func TestHistory_UndoEvictsOldestWhenFull(t *testing.T) {
	h := newTestHistory(3, 3)

	for i := 0; i < 5; i++ {
		h.Record(testOp(fmt.Sprintf("op-%d", i)))
	}

	assert.Equal(t, 3, h.UndoDepth())
	op, ok := h.PeekUndo()
	require.True(t, ok)
	assert.Equal(t, "op-4", op.Description)

	// Bottom of the stack is the oldest survivor
	var last Operation
	for {
		op, ok := h.PopUndo()
		if !ok {
			break
		}
		last = op
	}
	assert.Equal(t, "op-2", last.Description)
}

func TestHistory_RedoEvictsOldestWhenFull(t *testing.T) {
	h := newTestHistory(10, 2)

	for i := 0; i < 4; i++ {
		h.PushRedo(testOp(fmt.Sprintf("op-%d", i)))
	}

	assert.Equal(t, 2, h.RedoDepth())
	op, ok := h.PopRedo()
	require.True(t, ok)
	assert.Equal(t, "op-3", op.Description)
}

func TestHistory_PopOrderIsLIFO(t *testing.T) {
	h := newTestHistory(10, 10)

	h.Record(testOp("a"))
	h.Record(testOp("b"))
	h.Record(testOp("c"))

	for _, want := range []string{"c", "b", "a"} {
		op, ok := h.PopUndo()
		require.True(t, ok)
		assert.Equal(t, want, op.Description)
	}
	_, ok := h.PopUndo()
	assert.False(t, ok)
}

func TestHistory_PeekDoesNotPop(t *testing.T) {
	h := newTestHistory(10, 10)
	h.Record(testOp("only"))

	op, ok := h.PeekUndo()
	require.True(t, ok)
	assert.Equal(t, "only", op.Description)
	assert.Equal(t, 1, h.UndoDepth())
}

func TestHistory_RecentNewestFirst(t *testing.T) {
	h := newTestHistory(10, 10)
	for i := 0; i < 4; i++ {
		h.Record(testOp(fmt.Sprintf("op-%d", i)))
	}

	recent := h.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "op-3", recent[0].Description)
	assert.Equal(t, "op-2", recent[1].Description)

	assert.Len(t, h.Recent(100), 4)
	assert.Nil(t, h.Recent(0))
}

func TestHistory_Clear(t *testing.T) {
	h := newTestHistory(10, 10)
	h.Record(testOp("a"))
	h.PushRedo(testOp("b"))

	h.Clear()
	assert.False(t, h.CanUndo())
	assert.False(t, h.CanRedo())
}

func TestHistory_EmptyPops(t *testing.T) {
	h := newTestHistory(10, 10)

	_, ok := h.PopUndo()
	assert.False(t, ok)
	_, ok = h.PopRedo()
	assert.False(t, ok)
}
