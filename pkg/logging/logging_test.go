package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/decred/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDebugLevel(t *testing.T) {
	def, levels, err := ParseDebugLevel("warn,PRTY=debug,srvr=trace")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, def)
	assert.Equal(t, slog.LevelDebug, levels["PRTY"])
	assert.Equal(t, slog.LevelTrace, levels["SRVR"])

	def, levels, err = ParseDebugLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, def)
	assert.Empty(t, levels)

	_, _, err = ParseDebugLevel("loud")
	assert.Error(t, err)
}

func TestLoggerLevelsAndFile(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "logs", "coinched.log")
	lb, err := NewLogBackend(LogConfig{
		LogFile:    logFile,
		DebugLevel: "error,PRTY=debug",
		NoStdout:   true,
	})
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, lb.Logger("PRTY").Level())
	assert.Equal(t, slog.LevelError, lb.Logger("SRVR").Level())
	assert.Equal(t, lb.Logger("PRTY"), lb.Logger("PRTY"), "loggers are reused")

	lb.Logger("PRTY").Infof("party ready")
	require.NoError(t, lb.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "party ready")
}

func TestZeroBackendIsDisabled(t *testing.T) {
	var lb *LogBackend
	assert.Equal(t, slog.Disabled, lb.Logger("SRVR"))
	assert.NoError(t, lb.Close())
}
