package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"github.com/brokerdesk/bd-wap/pkg/utils"
)

// AdminAuth guards the operator endpoints. The token travels either as the
// X-Admin-Token header or the ?token= query parameter, so the dashboard can
// be opened from a plain browser link.
func AdminAuth(adminToken string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Admin-Token")
		if token == "" {
			token = c.Query("token")
		}

		if adminToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(utils.ResponseData{
				Status:  401,
				Code:    "UNAUTHORIZED_ERROR",
				Message: "invalid admin token",
			})
		}
		return c.Next()
	}
}
