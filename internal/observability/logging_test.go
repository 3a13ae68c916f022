package observability

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/taleweaver/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taleweaver.log")
	logger, err := NewLogger(config.LoggingConfig{Level: "info", Format: "json", File: path})
	require.NoError(t, err)
	logger.Info("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := config.LoggingConfig{Level: level, Format: "json"}
		logger, err := NewLogger(cfg)
		require.NoError(t, err, "level %q should be valid", level)
		assert.NotNil(t, logger)
	}
}

func TestSetupTracing_DisabledIsNoop(t *testing.T) {
	shutdown, err := SetupTracing(context.Background(), config.TracingConfig{ServiceName: "test"})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetupTracing_EnabledFlushesCleanly(t *testing.T) {
	// non-routable address; nothing is exported before shutdown
	shutdown, err := SetupTracing(context.Background(), config.TracingConfig{
		Enabled:     true,
		Endpoint:    "http://192.0.2.1:4318",
		ServiceName: "test",
	})
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
