package visits

import (
	"testing"

	"visit-tracker/core/lock"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestLoader(t *testing.T) {
	// Pass nil store as no route is exercised
	feature := NewFeature(NewService(nil, lock.NewLocal(), zap.NewNop()))

	assert.Equal(t, "visits", feature.Name())
	assert.True(t, feature.IsEnabled())
	assert.NotNil(t, feature.Service())

	app := fiber.New()
	err := feature.Load(app)
	assert.NoError(t, err)
}
