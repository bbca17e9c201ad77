package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.log")

	log := NewLogger(path, "info")
	log.With("service.name", "test").Info("hello", "http.request.id", "abc")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(raw, &line))
	assert.Equal(t, "hello", line["msg"])
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "test", line["service.name"])
	assert.Equal(t, "abc", line["http.request.id"])
}

func TestNewLoggerHonorsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.log")

	log := NewLogger(path, "warn")
	log.Info("dropped")
	log.Warn("kept")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	content := string(raw)
	assert.NotContains(t, content, "dropped")
	assert.Contains(t, content, "kept")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
	assert.Equal(t, "WARN", parseLevel("WARN").String())
	assert.Equal(t, "ERROR", parseLevel("error").String())
	assert.Equal(t, "INFO", parseLevel("anything else").String())
}

func TestNewLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.log")

	NewLogger(path, "info").Info("first")
	NewLogger(path, "info").Info("second")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "first")
	assert.Contains(t, lines[1], "second")
}
