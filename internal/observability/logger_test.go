package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/v0xg/formfill/internal/config"
)

func TestGetLoggerBeforeInitialize(t *testing.T) {
	ResetForTest()
	assert.NotNil(t, GetLogger())
	GetLogger().Info("dropped")
}

func TestInitializeConsole(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "info", Format: "console"}, zapcore.AddSync(&buf))

	GetLogger().Info("Saved answers", zap.Int("added", 2))
	GetLogger().Debug("hidden")
	Sync()

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "formfill.")
	assert.Contains(t, out, "Saved answers")
	assert.Contains(t, out, `"added": 2`)
	assert.NotContains(t, out, "hidden")
}

func TestInitializeJSONWithFile(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	logFile := filepath.Join(t.TempDir(), "formfill.log")
	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "warn", Format: "json", File: logFile, MaxSize: 1}, zapcore.AddSync(&buf))

	GetLogger().Warn("Field not filled", zap.String("field", "resume"))
	GetLogger().Info("below level")
	Sync()

	var entry map[string]any
	line := strings.TrimSpace(buf.String())
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "resume", entry["field"])

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Field not filled")
	assert.NotContains(t, string(data), "below level")
}

func TestInitializeBadLevelFallsBackToWarn(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	var buf bytes.Buffer
	Initialize(config.LoggerConfig{Level: "chatty", Format: "json"}, zapcore.AddSync(&buf))

	GetLogger().Info("info")
	GetLogger().Warn("warn")
	Sync()

	assert.NotContains(t, buf.String(), `"msg":"info"`)
	assert.Contains(t, buf.String(), `"msg":"warn"`)
}
