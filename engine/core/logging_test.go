package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   LogLevelDebug,
		" WARN ":  LogLevelWarn,
		"error":   LogLevelError,
		"info":    LogLevelInfo,
		"verbose": LogLevelInfo,
		"":        LogLevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestConfigureLoggingMirrorsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "solo.log")
	require.NoError(t, ConfigureLogging(LogLevelWarn, path))
	t.Cleanup(func() {
		CloseLogging()
		_ = ConfigureLogging(LogLevelInfo, "")
	})

	LogInfo("filtered %d", 1)
	LogWarn("kept %d", 2)
	CloseLogging()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "filtered 1")
	assert.Contains(t, string(data), "kept 2")
}

func TestConfigureLoggingBadPath(t *testing.T) {
	err := ConfigureLogging(LogLevelInfo, filepath.Join(t.TempDir(), "missing", "solo.log"))
	assert.Error(t, err)
}
