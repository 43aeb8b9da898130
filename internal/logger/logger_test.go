package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	require.NoError(t, Init("development"))
	t.Cleanup(func() { _ = SetLevel("info") })

	require.NoError(t, SetLevel("warn"))
	assert.Equal(t, zapcore.WarnLevel, level.Level())
	assert.False(t, zap.L().Core().Enabled(zapcore.InfoLevel))

	require.NoError(t, SetLevel("debug"))
	assert.True(t, zap.L().Core().Enabled(zapcore.DebugLevel))

	assert.Error(t, SetLevel("loud"))
	assert.Equal(t, zapcore.DebugLevel, level.Level())
}
