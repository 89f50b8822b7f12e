package middleware

import "github.com/gofiber/fiber/v2"

// NewCORSMiddleware stamps the CORS headers on every response of the group it
// is mounted on, errors included.
func (m *middleware) NewCORSMiddleware(methods, headers string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderAccessControlAllowMethods, methods)
		c.Set(fiber.HeaderAccessControlAllowHeaders, headers)

		return err
	}
}
