package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Astemirdum/cars-service/pkg/logger"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Sink(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "cars.log")
	log, err := logger.NewLogger(logger.Log{LogLevel: zapcore.InfoLevel, Sink: sink}, "test")
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("visible")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(sink)
	require.NoError(t, err)
	require.Contains(t, string(data), `"msg":"visible"`)
	require.Contains(t, string(data), `"logger":"test"`)
	require.NotContains(t, string(data), "hidden")
}

func TestNewLogger_BadSink(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "missing", "cars.log")
	log, err := logger.NewLogger(logger.Log{LogLevel: zapcore.InfoLevel, Sink: sink}, "test")
	require.Error(t, err)
	require.Nil(t, log)
}
