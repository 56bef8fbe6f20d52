package logging

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.ErrorContains(t, err, "chatty")
}

func TestNewLevelFilters(t *testing.T) {
	logger, err := New(Config{Level: "warn", OutputPaths: []string{filepath.Join(t.TempDir(), "state.log")}})
	require.NoError(t, err)

	assert.False(t, logger.Core().Enabled(zap.InfoLevel))
	assert.True(t, logger.Core().Enabled(zap.WarnLevel))
}

func TestFromLevelFallsBackToInfo(t *testing.T) {
	for _, dev := range []bool{false, true} {
		logger := FromLevel("not-a-level", dev)
		require.NotNil(t, logger)
		assert.True(t, logger.Core().Enabled(zap.InfoLevel))
		assert.False(t, logger.Core().Enabled(zap.DebugLevel))
	}
}

func TestComponentTagsLines(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := &Logger{Logger: zap.New(core)}

	logger.Component("persistence").Warn("durable write failed", zap.String("key", "desktopIcons"))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "persistence", entries[0].ContextMap()["component"])
	assert.Equal(t, "desktopIcons", entries[0].ContextMap()["key"])
}
