package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zezinho10632/DouglasApi/pkg/config"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "log line must be JSON: %s", buf.String())
	return entry
}

func TestNew(t *testing.T) {
	log := New(&config.Config{Env: "test", LogLevel: "debug", LogFormat: "json"})
	require.NotNil(t, log)
	assert.Equal(t, zerolog.DebugLevel, log.Zerolog().GetLevel())
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"panic", zerolog.PanicLevel},
		{"nonsense", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "test")

	log.Info("dropped")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	entry := decodeLine(t, &buf)
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "kept", entry["message"])
	assert.Equal(t, "douglas-api", entry["service"])
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", "test")

	log.WithFields(map[string]interface{}{
		"sector_id": "abc",
		"month":     6,
	}).WithField("year", 2035).Infof("period %s", "created")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "period created", entry["message"])
	assert.Equal(t, "abc", entry["sector_id"])
	assert.EqualValues(t, 6, entry["month"])
	assert.EqualValues(t, 2035, entry["year"])
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "debug", "test")

	log.WithError(errors.New("boom")).Error("write failed")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "error", entry["level"])
}

func TestNewNop(t *testing.T) {
	log := NewNop()
	assert.NotPanics(t, func() {
		log.WithField("k", "v").Info("ignored")
	})
}
