package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LogLevelDebug},
		{"WARN", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"", LogLevelInfo},
		{"verbose", LogLevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "ParseLevel(%q)", tt.in)
	}
}

func TestProductionLogger_Structured(t *testing.T) {
	var buf bytes.Buffer
	l := NewProductionLoggerTo(&buf, "chat")

	l.Error("save failed", "session_id", "abc", "error", errors.New("disk full"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "chat", entry["service"])
	assert.Equal(t, "save failed", entry["message"])

	fields, ok := entry["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "abc", fields["session_id"])
	assert.Equal(t, "disk full", fields["error"])
}

func TestProductionLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := NewProductionLoggerTo(&buf, "chat")
	l.SetLevel(LogLevelWarn)

	l.Debug("hidden")
	l.Info("hidden")
	assert.Zero(t, buf.Len())

	l.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestProductionLogger_HumanReadable(t *testing.T) {
	var buf bytes.Buffer
	l := NewProductionLoggerTo(&buf, "chat")
	l.SetStructured(false)

	l.Info("listening", "port", 8080)

	line := buf.String()
	assert.True(t, strings.Contains(line, "INFO [chat] listening port=8080"), line)
}

func TestNewLogger_TestEnvIsSilent(t *testing.T) {
	t.Setenv("GO_ENV", "test")
	_, ok := NewLogger("chat").(*NoOpLogger)
	assert.True(t, ok)
}
