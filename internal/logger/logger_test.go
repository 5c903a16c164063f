package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/satishbabariya/sphinxql-go/pkg/client"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
		wantErr  bool
	}{
		{"debug", zapcore.DebugLevel, false},
		{"INFO", zapcore.InfoLevel, false},
		{"", zapcore.InfoLevel, false},
		{"warning", zapcore.WarnLevel, false},
		{"error", zapcore.ErrorLevel, false},
		{"trace", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLoggerTo(zapcore.AddSync(&buf), "sphinxql", LevelInfo, FormatJSON)
	require.NoError(t, err)

	log.Debug("hidden")
	log.With(String("index", "rt")).Info("executed", Int("rows", 3))
	require.NoError(t, log.Sync())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "sphinxql", entry["logger"])
	assert.Equal(t, "executed", entry["msg"])
	assert.Equal(t, "rt", entry["index"])
	assert.Equal(t, float64(3), entry["rows"])
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLoggerTo(zapcore.AddSync(&buf), "cli", LevelDebug, FormatConsole)
	require.NoError(t, err)

	log.Debug("connecting", String("address", "127.0.0.1:9306"))
	assert.Contains(t, buf.String(), "connecting")
	assert.Contains(t, buf.String(), "127.0.0.1:9306")
}

func TestNewLoggerInvalid(t *testing.T) {
	_, err := NewLogger("x", "loud", FormatJSON)
	assert.Error(t, err)

	_, err = NewLogger("x", LevelInfo, "xml")
	assert.Error(t, err)
}

func TestForClient(t *testing.T) {
	var buf bytes.Buffer
	log, err := NewLoggerTo(zapcore.AddSync(&buf), "client", LevelDebug, FormatJSON)
	require.NoError(t, err)

	var cl client.Logger = ForClient(log)
	cl.Error("statement failed",
		client.Field{Key: "query", Value: "SELEC"},
		client.Field{Key: "duration", Value: 2 * time.Millisecond},
		client.Field{Key: "error", Value: errors.New("syntax error")},
	)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "SELEC", entry["query"])
	assert.Equal(t, "2ms", entry["duration"])
	assert.Equal(t, "syntax error", entry["error"])
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Info("nothing")
	Cleanup(log)
}
