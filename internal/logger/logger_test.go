package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_IsUsable(t *testing.T) {
	l := New()
	require.NotNil(t, l.Log)
	l.Log.Info("discarded")
}

func TestInit_Levels(t *testing.T) {
	l := New()
	require.NoError(t, l.Init("Info"))
	assert.True(t, l.Log.Core().Enabled(zap.InfoLevel))
	assert.False(t, l.Log.Core().Enabled(zap.DebugLevel))

	require.NoError(t, l.Init("debug"))
	assert.True(t, l.Log.Core().Enabled(zap.DebugLevel))
}

func TestInit_BadLevel(t *testing.T) {
	l := New()
	before := l.Log
	assert.Error(t, l.Init("chatty"))
	assert.Same(t, before, l.Log)
}
