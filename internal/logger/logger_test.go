package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// Property: every entry written through a JSON core is structured and carries level and message
func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("log entries are valid JSON with level and message", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer

			encoderConfig := zap.NewProductionEncoderConfig()
			encoderConfig.MessageKey = "message"

			core := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(&buf),
				zapcore.DebugLevel,
			)

			logger := zap.New(core)
			defer logger.Sync()

			switch level {
			case "debug":
				logger.Debug(message)
			case "warn":
				logger.Warn(message)
			case "error":
				logger.Error(message)
			default:
				logger.Info(message)
			}

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				return false
			}

			return logEntry["level"] == level && logEntry["message"] == message
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestNewAppliesLevel(t *testing.T) {
	logger, err := New("production", "warn")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Error("Info level should be disabled when level is warn")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Error("Warn level should be enabled when level is warn")
	}
}

func TestNewDevelopmentDefaultsToDebug(t *testing.T) {
	logger, err := New("development", "")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("Development logger should enable debug level")
	}
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	if _, err := New("production", "loud"); err == nil {
		t.Error("Expected an error for an unknown log level")
	}
}

func TestNewWithDefaultsFallsBack(t *testing.T) {
	t.Setenv("SERVER_ENV", "production")
	t.Setenv("LOG_LEVEL", "not-a-level")

	if logger := NewWithDefaults(); logger == nil {
		t.Fatal("Logger should not be nil")
	}
}

func TestFromContextAddsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")
	FromContext(ctx, base).Info("handled")
	FromContext(context.Background(), base).Info("handled without id")

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "req-123" {
		t.Errorf("Expected request_id req-123, got %v", got)
	}
	if _, ok := entries[1].ContextMap()["request_id"]; ok {
		t.Error("Entry without request ID should not carry request_id")
	}
}
