package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeneratedComponentID_Deterministic(t *testing.T) {
	a := NewGeneratedComponentID("tray", "tray-1")
	b := NewGeneratedComponentID("tray", "tray-1")
	assert.True(t, a.Equals(b))

	// Keys are normalized before hashing
	c := NewGeneratedComponentID("tray", "  TRAY-1 ")
	assert.True(t, a.Equals(c))
}

func TestNewGeneratedComponentID_KindSeparatesNamespaces(t *testing.T) {
	a := NewGeneratedComponentID("tray", "x-1")
	b := NewGeneratedComponentID("tag", "x-1")
	assert.False(t, a.Equals(b))
}

func TestNewComponentID_Random(t *testing.T) {
	a := NewComponentID()
	b := NewComponentID()
	assert.False(t, a.IsZero())
	assert.False(t, a.Equals(b))
}

func TestNewComponentIDFromString(t *testing.T) {
	id := NewComponentID()

	parsed, err := NewComponentIDFromString(id.String())
	require.NoError(t, err)
	assert.True(t, id.Equals(parsed))

	_, err = NewComponentIDFromString("")
	assert.Error(t, err)

	_, err = NewComponentIDFromString("not-a-uuid")
	assert.Error(t, err)
}

func TestComponentID_JSONRoundTrip(t *testing.T) {
	id := NewGeneratedComponentID("tag", "tag-a")

	data, err := json.Marshal(id)
	require.NoError(t, err)

	var decoded ComponentID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, id.Equals(decoded))
}

func TestNewIdentifier(t *testing.T) {
	ident, err := NewIdentifier(IdentifierTypeTagUID, "04:A3:22:B1", PurposeTracking)
	require.NoError(t, err)
	assert.True(t, ident.IsTracking())
	assert.Equal(t, "04:A3:22:B1", ident.Value())

	// Purpose defaults to tracking
	ident, err = NewIdentifier(IdentifierTypeSerial, "SN-100", "")
	require.NoError(t, err)
	assert.Equal(t, PurposeTracking, ident.Purpose())

	_, err = NewIdentifier("", "v", PurposeSerial)
	assert.Error(t, err)

	_, err = NewIdentifier(IdentifierTypeSKU, "", PurposeSKU)
	assert.Error(t, err)
}
