package logger

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		level zapcore.Level
	}{
		{"Debug Console", Config{Level: "debug", Format: "console"}, zapcore.DebugLevel},
		{"Info JSON", Config{Level: "info", Format: "json"}, zapcore.InfoLevel},
		{"Warn", Config{Level: "warn"}, zapcore.WarnLevel},
		{"Empty Level", Config{}, zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(&tt.cfg)
			require.NoError(t, err)
			assert.True(t, l.Core().Enabled(tt.level))
			assert.False(t, l.Core().Enabled(tt.level-1))
		})
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New(&Config{Level: "loud"})
	assert.ErrorContains(t, err, "invalid log level")

	_, err = New(&Config{Level: "info", Format: "xml"})
	assert.ErrorContains(t, err, "invalid log format")
}

func TestWithUser(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	WithUser(zap.New(core), "u1").Info("reconciled")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "u1", logs.All()[0].ContextMap()["user_id"])
}

func TestWithRayID(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	base := zap.New(core)

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals("ray_id", "ray-123")
		WithRayID(base, c).Info("hello")
		return c.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/none", func(c *fiber.Ctx) error {
		WithRayID(base, c).Info("plain")
		return c.SendStatus(fiber.StatusNoContent)
	})

	_, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	_, err = app.Test(httptest.NewRequest("GET", "/none", nil))
	require.NoError(t, err)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "ray-123", entries[0].ContextMap()["ray_id"])
	assert.NotContains(t, entries[1].ContextMap(), "ray_id")
}
