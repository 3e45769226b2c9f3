package middleware

import (
	"github.com/gofiber/fiber/v2"

	"github.com/brokerdesk/bd-wap/pkg/security"
)

// SessionCookieName carries the agent JWT for the inbox pages.
const SessionCookieName = "bdwap_session"

// AgentClaimsKey is the fiber locals key holding *security.AgentClaims.
const AgentClaimsKey = "agent_claims"

// AgentAuth guards the inbox pages with the session JWT; unauthenticated
// browsers are redirected to the login form.
func AgentAuth(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionCookieName)
		if token == "" {
			return c.Redirect("/inbox/login", fiber.StatusFound)
		}

		claims, err := security.ValidateAgentToken(secret, token)
		if err != nil {
			c.ClearCookie(SessionCookieName)
			return c.Redirect("/inbox/login", fiber.StatusFound)
		}

		c.Locals(AgentClaimsKey, claims)
		return c.Next()
	}
}

// AgentFromCtx returns the claims stored by AgentAuth, or nil.
func AgentFromCtx(c *fiber.Ctx) *security.AgentClaims {
	claims, _ := c.Locals(AgentClaimsKey).(*security.AgentClaims)
	return claims
}
