package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	config "github.com/mwantia/mugenvault/internal/config/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	assert.Equal(t, Debug, Parse("debug"))
	assert.Equal(t, Info, Parse("INFO"))
	assert.Equal(t, Warn, Parse(" warning "))
	assert.Equal(t, Error, Parse("Error"))
	assert.Equal(t, Info, Parse("verbose"))
}

func TestLoggerService_FiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLoggerService("test", config.LogServerConfig{Level: "WARN"}, &buf)

	logger.Debug("hidden")
	logger.Info("hidden")
	logger.Warn("shown %d", 1)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 1")
	assert.Contains(t, out, "[test]")
}

func TestLoggerService_Named(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLoggerService("vault", config.LogServerConfig{Level: "DEBUG"}, &buf)

	logger.Named("collections").Info("refreshed")
	assert.Contains(t, buf.String(), "[vault/collections] refreshed")
}

func TestLoggerService_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLoggerService("vault", config.LogServerConfig{Level: "INFO", JSON: true}, &buf)

	logger.Error("evaluation of %q failed", "fighters")

	var entry logEntry
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "vault", entry.Service)
	assert.Equal(t, `evaluation of "fighters" failed`, entry.Message)
}

func TestLoggerService_MessageWithoutArgsIsNotFormatted(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLoggerService("", config.LogServerConfig{Level: "INFO"}, &buf)

	logger.Info("100% done")
	assert.Contains(t, buf.String(), "100% done")
}

func TestClose_NamedLoggerReleasesFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mugenvault.log")
	logger := NewLoggerService("vault", config.LogServerConfig{Level: "INFO", File: path, NoTerminal: true})

	child := logger.Named("cli")
	child.Info("opened")

	impl, ok := child.(*LoggerServiceImpl)
	require.True(t, ok)
	require.NotNil(t, impl.closer)
	assert.Same(t, logger.(*LoggerServiceImpl).closer, impl.closer)

	require.NoError(t, Close(child))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[vault/cli] opened")
}

func TestClose_WithoutFileWriter(t *testing.T) {
	assert.NoError(t, Close(NewDiscardLoggerService()))
}
