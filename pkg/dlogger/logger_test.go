package dlogger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLogger(t *testing.T) {
	for _, level := range []string{LogLevelInfo, LogLevelDebug, LogLevelNone, "warn"} {
		l, err := GetLogger(level)
		require.NoError(t, err, level)
		require.NotNil(t, l)
	}

	_, err := GetLogger("chatty")
	assert.Error(t, err)

	assert.Panics(t, func() { _ = MustGetLogger("chatty") })
	assert.NotPanics(t, func() { _ = MustGetLogger(LogLevelNone) })
}

func TestLoggerOutputs(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		target := filepath.Join(dir, "json.log")
		l := MustGetLogger(LogLevelInfo, Component("core"), Outputs(target))
		l.Debug("hidden")
		l.Info("committed")
		_ = l.Sync()

		buf, err := os.ReadFile(target)
		require.NoError(t, err)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf, &entry), "only one entry is expected")
		assert.Equal(t, "strata.core", entry["logger"])
		assert.Equal(t, "committed", entry["msg"])
		assert.Equal(t, "info", entry["level"])
	})

	t.Run("console", func(t *testing.T) {
		target := filepath.Join(dir, "console.log")
		l := MustGetLogger(LogLevelDebug, Console(true), Outputs(target))
		l.Debug("restored")
		_ = l.Sync()

		buf, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(buf), "DEBUG")
		assert.Contains(t, string(buf), "\tstrata\t")
		assert.Contains(t, string(buf), "restored")
	})
}
