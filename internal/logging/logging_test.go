package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestFromConfigJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := FromConfig(&buf, "info", "json")
	require.NoError(t, err)

	logger.Debug("hidden")
	logger.Info("stage done", "stage", "price-range", "dropped", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "stage done", rec["msg"])
	assert.Equal(t, "price-range", rec["stage"])
	assert.Equal(t, float64(2), rec["dropped"])
}

func TestFromConfigText(t *testing.T) {
	var buf bytes.Buffer
	logger, err := FromConfig(&buf, "debug", "text")
	require.NoError(t, err)

	logger.Debug("boosting", "trees", 100)
	out := buf.String()
	assert.Contains(t, out, "boosting")
	assert.Contains(t, out, "trees=100")
	assert.NotContains(t, out, "\x1b[", "no color codes when not a terminal")
}

func TestFromConfigBadLevel(t *testing.T) {
	_, err := FromConfig(&bytes.Buffer{}, "chatty", "text")
	assert.Error(t, err)
}
