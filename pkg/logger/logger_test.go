package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_SetsGlobalLogger(t *testing.T) {
	require.NoError(t, Init("debug", "development"))
	assert.NotNil(t, Get())
}

func TestGet_LazyFallback(t *testing.T) {
	globalLogger = nil
	log := Get()
	require.NotNil(t, log)
	// second call returns the same instance
	assert.Same(t, log, Get())
}

func TestSync_Global(t *testing.T) {
	require.NoError(t, Init("info", "development"))
	// stderr sync errors are platform noise; the call itself must be
	// available on the package for shutdown paths
	_ = Sync()
}

func TestWith_PreservesTracker(t *testing.T) {
	require.NoError(t, Init("info", "development"))
	child := Get().With("component", "test")
	assert.NotNil(t, child)
}
