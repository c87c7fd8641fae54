package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewQuietIsNop(t *testing.T) {
	l, err := New("info", false)
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.ErrorLevel))
}

func TestNewVerbose(t *testing.T) {
	l, err := New("debug", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("error", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel), "verbose shows at least info")

	_, err = New("loud", true)
	assert.Error(t, err)
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tripgraph.log")

	l, err := NewFile(path, "info", false)
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("graph loaded", zap.Int("nodes", 3))
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"graph loaded"`)
	assert.Contains(t, string(data), `"nodes":3`)
	assert.NotContains(t, string(data), "hidden")

	l, err = NewFile(path, "warn", true)
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}
