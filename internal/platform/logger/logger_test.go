package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestLoggerConfig_ToZapLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for level, want := range tests {
		assert.Equal(t, want, (&LoggerConfig{Level: level}).ToZapLevel(), level)
	}
}

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "client.log")
	l := NewLogger(&LoggerConfig{Level: "warn", Format: "json", OutputFile: path})

	l.Named("Pipeline").With(zap.String("op", "list")).Warn("Catalog request failed")
	l.Info("dropped below level")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"Pipeline"`)
	assert.Contains(t, string(data), `"op":"list"`)
	assert.NotContains(t, string(data), "dropped below level")
}

func TestDefaultConfig_LogsToStderr(t *testing.T) {
	assert.Equal(t, "stderr", DefaultConfig().OutputFile)
}

func TestNewNop(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop().Named("x").With(zap.Int("n", 1)).Error("ignored")
	})
}
