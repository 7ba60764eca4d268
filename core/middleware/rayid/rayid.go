// Package rayid tags every request with a ray id.
package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Header carries the ray id in both directions.
const Header = "X-Ray-ID"

// LocalKey is the fiber locals key holding the ray id.
const LocalKey = "ray_id"

// New returns a middleware that reuses an incoming X-Ray-ID or generates one,
// stores it in locals and echoes it in the response.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(LocalKey, id)
		c.Set(Header, id)
		return c.Next()
	}
}
