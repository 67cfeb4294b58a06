package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultDomainConfig(t *testing.T) {
	cfg := DefaultDomainConfig()

	assert.Equal(t, 100, cfg.MaxUndoDepth)
	assert.Equal(t, 100, cfg.MaxRedoDepth)
	assert.True(t, cfg.RequireStableReadings)
	assert.False(t, cfg.AllowSelfSibling)
	assert.Greater(t, cfg.MassEpsilon, 0.0)
}

func TestDefaultDomainConfig_IsValueCopy(t *testing.T) {
	a := DefaultDomainConfig()
	a.MaxUndoDepth = 3

	b := DefaultDomainConfig()
	assert.Equal(t, 100, b.MaxUndoDepth)
}
